package model

// Value is an optional statistic: Valid reports whether Val holds a computed
// number. An invalid Value means "not computable", which is distinct from a
// legitimate zero.
type Value struct {
	Val   float64
	Valid bool
}

// Some wraps a computed number.
func Some(v float64) Value { return Value{Val: v, Valid: true} }

// None is the absent statistic.
func None() Value { return Value{} }

// AnalysisResult holds the statistics derived from one price series. It is
// recomputed whenever its source series changes, never mutated in place.
type AnalysisResult struct {
	// Per-period log returns, length len(series)-1. Entries derived from a
	// non-positive price are invalid and excluded from the aggregates below.
	Returns []Value
	// ExcludedReturns counts the invalid entries in Returns.
	ExcludedReturns int

	MeanReturn   Value
	StdReturn    Value // sample (n-1) standard deviation
	SharpeAnnual Value
	Skew         Value // trailing-window skewness of returns

	// Simple moving averages over the price series, same length as the
	// series; entries before the window is full are invalid.
	SMA5  []Value
	SMA20 []Value
}
