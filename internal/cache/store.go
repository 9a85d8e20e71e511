// Package cache implements the bounded, time-expiring store that sits
// between the series fetcher and the presentation layer. One store instance
// is shared by the whole process; all operations take a single store-wide
// lock, which is sufficient at desktop request rates.
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"MarketLens/internal/model"
)

// Record owns one fetched series plus the analysis derived from exactly that
// series. Records are read without mutation after insertion.
type Record struct {
	Series     model.PriceSeries
	Analysis   model.AnalysisResult
	InsertedAt time.Time
	TTL        time.Duration
}

// ExpiresAt returns the instant the record stops being servable.
func (r *Record) ExpiresAt() time.Time {
	return r.InsertedAt.Add(r.TTL)
}

// Expired reports whether the record's remaining lifetime is gone.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt())
}

type entry struct {
	rec  Record
	seq  uint64 // insertion order, breaks eviction ties
	size int
}

// Store is a keyed, size- and time-bounded in-memory cache.
type Store struct {
	mu         sync.Mutex
	records    map[string]*entry
	maxBytes   int
	maxEntries int
	curBytes   int
	seq        uint64
	sessionID  string
}

// New creates a Store bounded to maxEntries records and maxSizeMB megabytes.
// The session identifier is generated once and never changes for the store's
// lifetime.
func New(maxEntries, maxSizeMB int) *Store {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &Store{
		records:    make(map[string]*entry),
		maxBytes:   maxSizeMB * 1024 * 1024,
		maxEntries: maxEntries,
		sessionID:  uuid.NewString(),
	}
}

// Get returns the live record for the fingerprint. An expired record is
// removed on the spot and reported as a miss; a pure miss has no side effect.
func (s *Store) Get(fp model.Fingerprint) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fp.Key()
	e, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	if e.rec.Expired(time.Now()) {
		s.drop(key, e)
		return Record{}, false
	}
	return e.rec, true
}

// Put inserts or replaces the record for the fingerprint, stamping the
// current time as the insertion instant. If the store then exceeds its
// bounds, records are evicted soonest-expiry-first (ties: oldest insertion
// first) until it fits again.
func (s *Store) Put(fp model.Fingerprint, series model.PriceSeries, analysis model.AnalysisResult, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fp.Key()
	if old, ok := s.records[key]; ok {
		s.drop(key, old)
	}

	s.seq++
	e := &entry{
		rec: Record{
			Series:     series,
			Analysis:   analysis,
			InsertedAt: time.Now(),
			TTL:        ttl,
		},
		seq:  s.seq,
		size: estimateSize(series, analysis),
	}
	s.records[key] = e
	s.curBytes += e.size

	s.evictOverflow()
}

// Stats recomputes the aggregate view from the live records. Expired records
// found along the way are dropped first, so the entry count reflects only
// servable data.
func (s *Store) Stats() model.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeExpired()
	return model.CacheStats{
		EntryCount:   len(s.records),
		SizeBytes:    s.curBytes,
		MaxSizeBytes: s.maxBytes,
		SessionID:    s.sessionID,
	}
}

// Clear removes all records unconditionally and returns how many were held.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.records)
	freed := s.curBytes
	s.records = make(map[string]*entry)
	s.curBytes = 0
	log.Printf("[INFO] cache cleared: %d entries, %s freed", count, humanize.Bytes(uint64(freed)))
	return count
}

// RemoveExpired removes only the records whose remaining lifetime is gone and
// returns the count. Zero expired records is a normal outcome, not an error.
func (s *Store) RemoveExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeExpired()
}

// removeExpired requires s.mu held.
func (s *Store) removeExpired() int {
	now := time.Now()
	removed := 0
	for key, e := range s.records {
		if e.rec.Expired(now) {
			s.drop(key, e)
			removed++
		}
	}
	return removed
}

// evictOverflow requires s.mu held. It shrinks the store until both bounds
// hold, preferring to keep the records furthest from expiry: recency
// correlates with likely reuse within one analysis session.
func (s *Store) evictOverflow() {
	for (s.curBytes > s.maxBytes || len(s.records) > s.maxEntries) && len(s.records) > 0 {
		var victimKey string
		var victim *entry
		for key, e := range s.records {
			if victim == nil || sooner(e, victim) {
				victimKey, victim = key, e
			}
		}
		s.drop(victimKey, victim)
		log.Printf("[INFO] cache evicted %s (%s)", victimKey, humanize.Bytes(uint64(victim.size)))
	}
}

// sooner reports whether a should be evicted before b.
func sooner(a, b *entry) bool {
	ae, be := a.rec.ExpiresAt(), b.rec.ExpiresAt()
	if ae.Equal(be) {
		return a.seq < b.seq
	}
	return ae.Before(be)
}

// drop requires s.mu held.
func (s *Store) drop(key string, e *entry) {
	delete(s.records, key)
	s.curBytes -= e.size
	if s.curBytes < 0 {
		s.curBytes = 0
	}
}

// SessionID returns the identifier generated at construction.
func (s *Store) SessionID() string { return s.sessionID }

// estimateSize approximates a record's memory footprint by field cardinality:
// 8 bytes per price and per return, the formatted date text, and 16 bytes per
// optional moving-average slot. The estimate only needs to be deterministic
// and monotonic in series length, not exact.
func estimateSize(series model.PriceSeries, analysis model.AnalysisResult) int {
	const base = 64
	const dateLen = len("2006-01-02")
	size := base
	size += len(series.Points) * (8 + dateLen)
	size += len(analysis.Returns) * 8
	size += len(analysis.SMA5) * 16
	size += len(analysis.SMA20) * 16
	return size
}
