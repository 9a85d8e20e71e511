// Package analysis derives return statistics from a price series. All
// functions are pure and safe to call concurrently.
package analysis

import (
	"math"

	"MarketLens/internal/model"
)

// SkewWindow is the trailing window used for the skewness statistic.
const SkewWindow = 30

// Analyze computes log returns, moving averages, and annualized risk
// statistics for the series. periodsPerYear is the annualization factor
// implied by the series interval (252 daily, 52 weekly, 12 monthly).
//
// Statistics that cannot be computed (too few points, zero dispersion,
// non-positive prices) come back as absent Values, never as zero or NaN.
func Analyze(series model.PriceSeries, periodsPerYear float64) model.AnalysisResult {
	prices := series.Closes()

	res := model.AnalysisResult{
		Returns: LogReturns(prices),
		SMA5:    SMA(prices, 5),
		SMA20:   SMA(prices, 20),
	}

	valid := make([]float64, 0, len(res.Returns))
	for _, r := range res.Returns {
		if r.Valid {
			valid = append(valid, r.Val)
		} else {
			res.ExcludedReturns++
		}
	}

	res.MeanReturn = Mean(valid)
	res.StdReturn = SampleStd(valid)
	res.SharpeAnnual = Sharpe(res.MeanReturn, res.StdReturn, periodsPerYear)
	res.Skew = Skewness(valid, SkewWindow)

	return res
}

// LogReturns computes per-period log returns ln(p[i]/p[i-1]). The result has
// length len(prices)-1 (zero for a series of one point or fewer). An entry
// touching a non-positive price is absent rather than NaN.
func LogReturns(prices []float64) []model.Value {
	if len(prices) < 2 {
		return nil
	}
	rets := make([]model.Value, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			continue
		}
		rets[i-1] = model.Some(math.Log(prices[i] / prices[i-1]))
	}
	return rets
}

// Mean returns the arithmetic mean, absent for an empty input.
func Mean(xs []float64) model.Value {
	if len(xs) == 0 {
		return model.None()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return model.Some(sum / float64(len(xs)))
}

// SampleStd returns the sample (n-1) standard deviation, absent for fewer
// than two observations.
func SampleStd(xs []float64) model.Value {
	if len(xs) < 2 {
		return model.None()
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return model.Some(math.Sqrt(ss / float64(len(xs)-1)))
}

// Sharpe annualizes mean/std by sqrt(periodsPerYear). Absent when either
// input is absent or the standard deviation is zero: a flat series has no
// meaningful risk-adjusted return, not an infinite one.
func Sharpe(mean, std model.Value, periodsPerYear float64) model.Value {
	if !mean.Valid || !std.Valid || std.Val == 0 {
		return model.None()
	}
	return model.Some(mean.Val / std.Val * math.Sqrt(periodsPerYear))
}

// SMA computes the simple moving average with window w at every index of
// prices. The entry at index i is the mean of prices[i-w+1..i] and is absent
// while the window is not yet full.
func SMA(prices []float64, w int) []model.Value {
	out := make([]model.Value, len(prices))
	if w <= 0 {
		return out
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= w {
			sum -= prices[i-w]
		}
		if i+1 >= w {
			out[i] = model.Some(sum / float64(w))
		}
	}
	return out
}
