package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/errs"
	"MarketLens/internal/fetcher"
	"MarketLens/internal/model"
)

func testFingerprint() model.Fingerprint {
	return model.NewFingerprint("NVDA", "6mo", "1d")
}

func newTestService(f fetcher.Fetcher, ttl time.Duration) *Service {
	return New(f, cache.New(10, 10), nil, ttl)
}

func TestFetchSeries_MissThenHit(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: fetcher.GenerateSeries("NVDA", 100, 30)}
	svc := newTestService(mock, time.Hour)
	fp := testFingerprint()

	first, err := svc.FetchSeries(fp)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.Cached {
		t.Error("first call must be a miss")
	}

	second, err := svc.FetchSeries(fp)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.Cached {
		t.Error("second call must be a hit")
	}
	if mock.Calls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", mock.Calls)
	}
	if len(second.Series.Points) != len(first.Series.Points) {
		t.Error("hit must return the stored series unchanged")
	}
	if !second.CachedAt.Equal(first.CachedAt) {
		t.Errorf("hit must carry the original insertion timestamp: %v vs %v",
			second.CachedAt, first.CachedAt)
	}
}

func TestFetchSeries_InvalidFingerprint(t *testing.T) {
	mock := &fetcher.MockFetcher{}
	svc := newTestService(mock, time.Hour)

	cases := []model.Fingerprint{
		model.NewFingerprint("NVDA", "7mo", "1d"),
		model.NewFingerprint("NVDA", "6mo", "5m"),
		model.NewFingerprint("", "6mo", "1d"),
	}
	for _, fp := range cases {
		if _, err := svc.FetchSeries(fp); !errors.Is(err, errs.ErrBadFingerprint) {
			t.Errorf("%v: expected ErrBadFingerprint, got %v", fp, err)
		}
	}
	if mock.Calls != 0 {
		t.Errorf("invalid fingerprints must not reach the fetcher, got %d calls", mock.Calls)
	}
}

func TestFetchSeries_ErrorLeavesCacheUntouched(t *testing.T) {
	mock := &fetcher.MockFetcher{Err: fmt.Errorf("%w: connection refused", errs.ErrFetch)}
	svc := newTestService(mock, time.Hour)

	if _, err := svc.FetchSeries(testFingerprint()); !errors.Is(err, errs.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if st := svc.CacheStats(); st.EntryCount != 0 {
		t.Errorf("failed fetch must not poison the cache, got %d entries", st.EntryCount)
	}

	// Recovery: the next successful fetch stores normally.
	mock.Err = nil
	mock.Series = fetcher.GenerateSeries("NVDA", 100, 30)
	res, err := svc.FetchSeries(testFingerprint())
	if err != nil {
		t.Fatalf("recovery fetch: %v", err)
	}
	if res.Cached {
		t.Error("recovery fetch must be a miss")
	}
}

func TestFetchSeries_ExpiredRecordRefetches(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: fetcher.GenerateSeries("NVDA", 100, 30)}
	svc := newTestService(mock, 0) // records expire immediately

	for i := 0; i < 2; i++ {
		res, err := svc.FetchSeries(testFingerprint())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if res.Cached {
			t.Errorf("fetch %d: expired record must never be served as a hit", i)
		}
	}
	if mock.Calls != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", mock.Calls)
	}
}

func TestSetTTL_NotRetroactive(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: fetcher.GenerateSeries("NVDA", 100, 30)}
	svc := newTestService(mock, time.Hour)
	fp := testFingerprint()

	if _, err := svc.FetchSeries(fp); err != nil {
		t.Fatal(err)
	}
	svc.SetTTL(0)

	// The stored record keeps its one-hour TTL.
	res, err := svc.FetchSeries(fp)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached {
		t.Error("changing the TTL setting must not expire already-stored records")
	}
}

func TestAnalyze(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: fetcher.GenerateSeries("NVDA", 100, 30)}
	svc := newTestService(mock, time.Hour)

	res, err := svc.Analyze(testFingerprint())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Returns) != 29 {
		t.Errorf("expected 29 returns, got %d", len(res.Returns))
	}
	if !res.MeanReturn.Valid {
		t.Error("expected computable mean")
	}
	if mock.Calls != 1 {
		t.Errorf("expected analyze to fetch once, got %d calls", mock.Calls)
	}
}

func TestCacheMessages(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: fetcher.GenerateSeries("NVDA", 100, 30)}
	svc := newTestService(mock, time.Hour)

	if _, err := svc.FetchSeries(testFingerprint()); err != nil {
		t.Fatal(err)
	}
	if msg := svc.RemoveExpired(); msg != "removed 0 expired cache entries" {
		t.Errorf("unexpected purge message: %q", msg)
	}
	if msg := svc.ClearCache(); msg != "removed 1 cache entries" {
		t.Errorf("unexpected clear message: %q", msg)
	}
}

// gateFetcher blocks every upstream call until released, so the test can hold
// two requests in flight at once.
type gateFetcher struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gateFetcher) Name() string { return "gate" }

func (g *gateFetcher) FetchSeries(fp model.Fingerprint) (model.PriceSeries, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
	}
	<-g.release
	return fetcher.GenerateSeries(fp.Symbol, 100, 30), nil
}

func TestFetchSeries_ConcurrentRequestsShareOneFetch(t *testing.T) {
	gate := &gateFetcher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(gate, time.Hour)
	fp := testFingerprint()

	results := make(chan SeriesResult, 2)
	fail := make(chan error, 2)
	run := func() {
		res, err := svc.FetchSeries(fp)
		if err != nil {
			fail <- err
			return
		}
		results <- res
	}

	go run()
	<-gate.entered // first request is inside the fetcher
	go run()
	time.Sleep(50 * time.Millisecond) // let the second request join the flight
	close(gate.release)

	for i := 0; i < 2; i++ {
		select {
		case err := <-fail:
			t.Fatalf("request failed: %v", err)
		case res := <-results:
			if res.Cached {
				t.Error("coalesced requests share the miss result")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for results")
		}
	}

	gate.mu.Lock()
	calls := gate.calls
	gate.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected one upstream fetch for concurrent identical requests, got %d", calls)
	}
	if st := svc.CacheStats(); st.EntryCount != 1 {
		t.Errorf("expected a single record for the fingerprint, got %d", st.EntryCount)
	}
}
