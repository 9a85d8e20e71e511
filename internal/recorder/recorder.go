package recorder

// FetchEvent describes one completed series request, whether served from the
// cache or fetched upstream.
type FetchEvent struct {
	Symbol     string
	Range      string
	Interval   string
	CacheHit   bool
	PointCount int
	Sharpe     *float64 // nil when not computable
	DurationMS int64
}

// Recorder persists request history for later inspection.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	Close() error
}
