package model

// CacheStats is a point-in-time view of the cache, recomputed on demand.
type CacheStats struct {
	EntryCount   int    `json:"entry_count"`
	SizeBytes    int    `json:"size_bytes"`
	MaxSizeBytes int    `json:"max_size_bytes"`
	SessionID    string `json:"session_id"`
}
