package analysis

import (
	"math"

	"MarketLens/internal/model"
)

// Skewness computes the third standardized moment over the most recent k
// observations:
//
//	g1 = (1/k) * sum(((x - mean) / std)^3)
//
// where std is the population (divide-by-k) standard deviation. This
// deliberately differs from SampleStd's n-1 denominator: the two statistics
// follow different textbook definitions and must not be unified.
//
// Absent when fewer than k observations are available or the window has zero
// dispersion.
func Skewness(xs []float64, k int) model.Value {
	if k < 2 || len(xs) < k {
		return model.None()
	}
	tail := xs[len(xs)-k:]

	mean := 0.0
	for _, x := range tail {
		mean += x
	}
	mean /= float64(k)

	variance := 0.0
	for _, x := range tail {
		d := x - mean
		variance += d * d
	}
	variance /= float64(k)
	std := math.Sqrt(variance)
	if std == 0 {
		return model.None()
	}

	sum := 0.0
	for _, x := range tail {
		z := (x - mean) / std
		sum += z * z * z
	}
	return model.Some(sum / float64(k))
}

// RollingSkewness computes Skewness over a sliding window of size k across
// the whole sequence. Output has the same length as xs; entries before the
// window is full are absent.
func RollingSkewness(xs []float64, k int) []model.Value {
	out := make([]model.Value, len(xs))
	if k < 2 {
		return out
	}
	for i := k - 1; i < len(xs); i++ {
		out[i] = Skewness(xs[:i+1], k)
	}
	return out
}
