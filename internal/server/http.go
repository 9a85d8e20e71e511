// Package server exposes the engine over a local JSON API. It is pure
// presentation glue: decode parameters, call the service, encode the result.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"MarketLens/internal/config"
	"MarketLens/internal/errs"
	"MarketLens/internal/model"
	"MarketLens/internal/service"
)

// Server handles the dashboard's HTTP requests.
type Server struct {
	Service *service.Service
	Config  *config.Config
}

// New creates a Server around the shared service.
func New(svc *service.Service, cfg *config.Config) *Server {
	return &Server{Service: svc, Config: cfg}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)
	mux.HandleFunc("POST /api/cache/purge", s.handleCachePurge)
	mux.HandleFunc("POST /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/export/yaml", s.handleExportYAML)
	mux.HandleFunc("GET /api/settings", s.handleSettings)
	return mux
}

// fingerprint builds the request fingerprint from query parameters, falling
// back to the configured defaults for missing fields.
func (s *Server) fingerprint(r *http.Request) model.Fingerprint {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	rng := q.Get("range")
	interval := q.Get("interval")
	if symbol == "" {
		symbol = s.Config.Defaults.Symbol
	}
	if rng == "" {
		rng = s.Config.Defaults.Range
	}
	if interval == "" {
		interval = s.Config.Defaults.Interval
	}
	return model.NewFingerprint(symbol, rng, interval)
}

// seriesPayload is the wire shape the dashboard renders.
type seriesPayload struct {
	Symbol   string    `json:"symbol"`
	Dates    []string  `json:"dates"`
	Prices   []float64 `json:"prices"`
	Cached   bool      `json:"cached"`
	CachedAt string    `json:"cached_at,omitempty"`
}

type analysisPayload struct {
	MeanReturnDaily *float64   `json:"mean_return_daily"`
	StdReturnDaily  *float64   `json:"std_return_daily"`
	SharpeAnnual    *float64   `json:"sharpe_annual"`
	Skew            *float64   `json:"skew"`
	SMA5            []*float64 `json:"sma5"`
	SMA20           []*float64 `json:"sma20"`
	Returns         []*float64 `json:"returns"`
	ExcludedReturns int        `json:"excluded_returns"`
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	fp := s.fingerprint(r)
	res, err := s.Service.FetchSeries(fp)
	if err != nil {
		writeError(w, err)
		return
	}
	payload := seriesPayload{
		Symbol: res.Series.Symbol,
		Dates:  res.Series.Dates(),
		Prices: res.Series.Closes(),
		Cached: res.Cached,
	}
	if res.Cached {
		payload.CachedAt = res.CachedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	fp := s.fingerprint(r)
	res, err := s.Service.Analyze(fp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisPayload{
		MeanReturnDaily: optional(res.MeanReturn),
		StdReturnDaily:  optional(res.StdReturn),
		SharpeAnnual:    optional(res.SharpeAnnual),
		Skew:            optional(res.Skew),
		SMA5:            optionals(res.SMA5),
		SMA20:           optionals(res.SMA20),
		Returns:         optionals(res.Returns),
		ExcludedReturns: res.ExcludedReturns,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Service.CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.Service.ClearCache()})
}

func (s *Server) handleCachePurge(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.Service.RemoveExpired()})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "csv", s.Service.ExportCSV)
}

func (s *Server) handleExportYAML(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "yaml", s.Service.ExportYAML)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ext string, write func(model.Fingerprint, string) (string, error)) {
	fp := s.fingerprint(r)
	if err := os.MkdirAll(s.Config.Export.Dir, 0755); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errs.ErrExport, err))
		return
	}
	path := filepath.Join(s.Config.Export.Dir, fmt.Sprintf("%s.%s", fp.Key(), ext))
	written, err := write(fp, path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": written})
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default_symbol":    s.Config.Defaults.Symbol,
		"default_range":     s.Config.Defaults.Range,
		"default_interval":  s.Config.Defaults.Interval,
		"cache_ttl_minutes": s.Config.Cache.TTLMinutes,
		"theme":             s.Config.Theme,
	})
}

func optional(v model.Value) *float64 {
	if !v.Valid {
		return nil
	}
	x := v.Val
	return &x
}

func optionals(vs []model.Value) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = optional(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrBadFingerprint):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrFetch), errors.Is(err, errs.ErrParse):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
