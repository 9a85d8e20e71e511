package model

import (
	"fmt"
	"strings"

	"MarketLens/internal/errs"
)

// Valid range and interval values accepted by the chart API.
var (
	validRanges = map[string]bool{
		"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true,
		"5y": true, "10y": true, "ytd": true, "max": true,
	}
	validIntervals = map[string]bool{
		"1d": true, "1wk": true, "1mo": true,
	}
)

// Fingerprint identifies one (symbol, range, interval) request. It is used
// verbatim as the cache key: two requests with equal fingerprints share a slot.
type Fingerprint struct {
	Symbol   string
	Range    string
	Interval string
}

// NewFingerprint builds a normalized fingerprint. The symbol is upper-cased
// and trimmed so that "nvda" and "NVDA " address the same cache slot.
func NewFingerprint(symbol, rng, interval string) Fingerprint {
	return Fingerprint{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Range:    strings.TrimSpace(rng),
		Interval: strings.TrimSpace(interval),
	}
}

// Validate checks the fingerprint against the supported range/interval sets.
func (f Fingerprint) Validate() error {
	if f.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", errs.ErrBadFingerprint)
	}
	if !validRanges[f.Range] {
		return fmt.Errorf("%w: unknown range %q", errs.ErrBadFingerprint, f.Range)
	}
	if !validIntervals[f.Interval] {
		return fmt.Errorf("%w: unknown interval %q", errs.ErrBadFingerprint, f.Interval)
	}
	return nil
}

// Key returns the cache key for this fingerprint.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%s_%s_%s", f.Symbol, f.Range, f.Interval)
}

// PeriodsPerYear returns the annualization factor implied by the interval:
// 252 trading days, 52 weeks, or 12 months. Using the wrong factor for the
// interval would silently mis-scale the Sharpe ratio.
func (f Fingerprint) PeriodsPerYear() float64 {
	switch f.Interval {
	case "1wk":
		return 52
	case "1mo":
		return 12
	default:
		return 252
	}
}
