// Package service is the single entry point used by the presentation layer.
// It wires the fetcher, cache, analysis engine, and recorder together.
package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"MarketLens/internal/analysis"
	"MarketLens/internal/cache"
	"MarketLens/internal/export"
	"MarketLens/internal/fetcher"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"
)

// SeriesResult is a series plus its analysis, annotated with cache provenance.
type SeriesResult struct {
	Series   model.PriceSeries
	Analysis model.AnalysisResult
	Cached   bool
	CachedAt time.Time
}

// Service orchestrates the fetch path: cache lookup, upstream fetch on miss,
// analysis, and insertion. A single instance is shared by the process.
type Service struct {
	fetcher  fetcher.Fetcher
	cache    *cache.Store
	recorder recorder.Recorder

	mu  sync.Mutex
	ttl time.Duration

	group singleflight.Group
}

// New creates a Service. ttl applies to records inserted from now on.
func New(f fetcher.Fetcher, c *cache.Store, rec recorder.Recorder, ttl time.Duration) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{
		fetcher:  f,
		cache:    c,
		recorder: rec,
		ttl:      ttl,
	}
}

// SetTTL changes the TTL for future insertions. Already-stored records keep
// the TTL they were inserted with.
func (s *Service) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

func (s *Service) currentTTL() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl
}

// FetchSeries returns the series and analysis for the fingerprint, serving
// from the cache when a live record exists. Concurrent requests for the same
// fingerprint share one upstream fetch; the cache lock is never held during
// the network call.
func (s *Service) FetchSeries(fp model.Fingerprint) (SeriesResult, error) {
	if err := fp.Validate(); err != nil {
		return SeriesResult{}, err
	}

	start := time.Now()
	if rec, ok := s.cache.Get(fp); ok {
		log.Printf("[INFO] cache hit: %s", fp.Key())
		res := SeriesResult{
			Series:   rec.Series,
			Analysis: rec.Analysis,
			Cached:   true,
			CachedAt: rec.InsertedAt,
		}
		s.record(fp, res, start)
		return res, nil
	}

	v, err, _ := s.group.Do(fp.Key(), func() (interface{}, error) {
		// A concurrent caller may have completed the fetch while this one
		// queued; serve its record rather than fetching twice.
		if rec, ok := s.cache.Get(fp); ok {
			return SeriesResult{
				Series:   rec.Series,
				Analysis: rec.Analysis,
				Cached:   true,
				CachedAt: rec.InsertedAt,
			}, nil
		}

		log.Printf("[INFO] cache miss: %s, fetching from %s", fp.Key(), s.fetcher.Name())
		series, err := s.fetcher.FetchSeries(fp)
		if err != nil {
			// The cache stays untouched on a failed fetch.
			return nil, err
		}

		result := analysis.Analyze(series, fp.PeriodsPerYear())
		s.cache.Put(fp, series, result, s.currentTTL())

		cachedAt := time.Now()
		if rec, ok := s.cache.Get(fp); ok {
			cachedAt = rec.InsertedAt
		}
		return SeriesResult{
			Series:   series,
			Analysis: result,
			Cached:   false,
			CachedAt: cachedAt,
		}, nil
	})
	if err != nil {
		return SeriesResult{}, err
	}

	res := v.(SeriesResult)
	s.record(fp, res, start)
	return res, nil
}

// Analyze returns only the analysis for the fingerprint, fetching the series
// first if no live record exists.
func (s *Service) Analyze(fp model.Fingerprint) (model.AnalysisResult, error) {
	res, err := s.FetchSeries(fp)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return res.Analysis, nil
}

// CacheStats returns the aggregate cache view.
func (s *Service) CacheStats() model.CacheStats {
	return s.cache.Stats()
}

// ClearCache removes everything and returns a human-readable summary.
func (s *Service) ClearCache() string {
	n := s.cache.Clear()
	return fmt.Sprintf("removed %d cache entries", n)
}

// RemoveExpired purges only expired records and returns a summary. Zero
// removals is a normal outcome.
func (s *Service) RemoveExpired() string {
	n := s.cache.RemoveExpired()
	return fmt.Sprintf("removed %d expired cache entries", n)
}

// ExportCSV writes the series and analysis for the fingerprint to path.
func (s *Service) ExportCSV(fp model.Fingerprint, path string) (string, error) {
	res, err := s.FetchSeries(fp)
	if err != nil {
		return "", err
	}
	return export.WriteCSV(res.Series, res.Analysis, path)
}

// ExportYAML writes the full report for the fingerprint to path.
func (s *Service) ExportYAML(fp model.Fingerprint, path string) (string, error) {
	res, err := s.FetchSeries(fp)
	if err != nil {
		return "", err
	}
	return export.WriteYAML(fp, res.Series, res.Analysis, s.fetcher.Name(), path)
}

func (s *Service) record(fp model.Fingerprint, res SeriesResult, start time.Time) {
	var sharpe *float64
	if res.Analysis.SharpeAnnual.Valid {
		v := res.Analysis.SharpeAnnual.Val
		sharpe = &v
	}
	evt := &recorder.FetchEvent{
		Symbol:     fp.Symbol,
		Range:      fp.Range,
		Interval:   fp.Interval,
		CacheHit:   res.Cached,
		PointCount: len(res.Series.Points),
		Sharpe:     sharpe,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err := s.recorder.RecordFetch(evt); err != nil {
		log.Printf("[WARN] record fetch event: %v", err)
	}
}

// DescribeCache logs a one-line cache summary, mainly for startup and
// shutdown diagnostics.
func (s *Service) DescribeCache() {
	st := s.cache.Stats()
	log.Printf("[INFO] cache: %d entries, %s of %s, session %s",
		st.EntryCount,
		humanize.Bytes(uint64(st.SizeBytes)),
		humanize.Bytes(uint64(st.MaxSizeBytes)),
		st.SessionID)
}
