package analysis

import (
	"math"
	"testing"
	"time"

	"MarketLens/internal/model"
)

func seriesFrom(prices []float64) model.PriceSeries {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: p}
	}
	return model.PriceSeries{Symbol: "TEST", Points: points}
}

func near(t *testing.T, name string, got model.Value, want, tol float64) {
	t.Helper()
	if !got.Valid {
		t.Fatalf("%s: expected %.6f, got absent", name, want)
	}
	if math.Abs(got.Val-want) > tol {
		t.Errorf("%s: expected %.6f, got %.6f", name, want, got.Val)
	}
}

func TestAnalyze_KnownSeries(t *testing.T) {
	res := Analyze(seriesFrom([]float64{100, 105, 102}), 252)

	if len(res.Returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(res.Returns))
	}
	near(t, "return[0]", res.Returns[0], 0.0487902, 1e-6)
	near(t, "return[1]", res.Returns[1], -0.0289875, 1e-6)
	near(t, "mean", res.MeanReturn, 0.0099013, 1e-6)
	near(t, "std", res.StdReturn, 0.0549971, 1e-6)
	near(t, "sharpe", res.SharpeAnnual, 2.8579, 1e-3)
	if res.ExcludedReturns != 0 {
		t.Errorf("expected 0 excluded returns, got %d", res.ExcludedReturns)
	}
}

func TestAnalyze_AnnualizationFactor(t *testing.T) {
	weekly := Analyze(seriesFrom([]float64{100, 105, 102}), 52)
	daily := Analyze(seriesFrom([]float64{100, 105, 102}), 252)

	ratio := weekly.SharpeAnnual.Val / daily.SharpeAnnual.Val
	want := math.Sqrt(52.0 / 252.0)
	if math.Abs(ratio-want) > 1e-9 {
		t.Errorf("expected sharpe ratio scaling %.6f, got %.6f", want, ratio)
	}
}

func TestAnalyze_ShortSeries(t *testing.T) {
	for _, prices := range [][]float64{{}, {100}} {
		res := Analyze(seriesFrom(prices), 252)
		if len(res.Returns) != 0 {
			t.Errorf("len %d: expected empty returns", len(prices))
		}
		if res.MeanReturn.Valid || res.StdReturn.Valid || res.SharpeAnnual.Valid {
			t.Errorf("len %d: expected all statistics absent", len(prices))
		}
	}
}

func TestAnalyze_SingleReturnHasNoStd(t *testing.T) {
	res := Analyze(seriesFrom([]float64{100, 105}), 252)
	if !res.MeanReturn.Valid {
		t.Error("mean should be computable from one return")
	}
	if res.StdReturn.Valid {
		t.Error("sample std needs two returns, expected absent")
	}
	if res.SharpeAnnual.Valid {
		t.Error("sharpe without std should be absent")
	}
}

func TestAnalyze_ZeroStdSharpe(t *testing.T) {
	res := Analyze(seriesFrom([]float64{100, 100, 100, 100}), 252)
	if !res.StdReturn.Valid || res.StdReturn.Val != 0 {
		t.Fatalf("expected zero std, got %+v", res.StdReturn)
	}
	if res.SharpeAnnual.Valid {
		t.Errorf("sharpe with zero std must be absent, got %.6f", res.SharpeAnnual.Val)
	}
	if math.IsNaN(res.SharpeAnnual.Val) || math.IsInf(res.SharpeAnnual.Val, 0) {
		t.Error("absent sharpe must not carry NaN or Inf")
	}
}

func TestAnalyze_NonPositivePrices(t *testing.T) {
	res := Analyze(seriesFrom([]float64{100, 105, -5, 102, 103}), 252)

	if len(res.Returns) != 4 {
		t.Fatalf("expected 4 returns, got %d", len(res.Returns))
	}
	// Both returns touching the bad price are excluded.
	if res.Returns[1].Valid || res.Returns[2].Valid {
		t.Error("returns touching a non-positive price must be absent")
	}
	if !res.Returns[0].Valid || !res.Returns[3].Valid {
		t.Error("returns away from the bad price must be present")
	}
	if res.ExcludedReturns != 2 {
		t.Errorf("expected 2 excluded returns, got %d", res.ExcludedReturns)
	}
	// Aggregates use only the valid entries.
	want := (res.Returns[0].Val + res.Returns[3].Val) / 2
	near(t, "mean", res.MeanReturn, want, 1e-12)
}

func TestSMA_WindowBoundary(t *testing.T) {
	prices := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	sma5 := SMA(prices, 5)

	if len(sma5) != len(prices) {
		t.Fatalf("expected length %d, got %d", len(prices), len(sma5))
	}
	if sma5[3].Valid {
		t.Error("SMA5 at index 3 must be absent")
	}
	if !sma5[4].Valid || sma5[4].Val != 30 {
		t.Errorf("SMA5 at index 4: expected 30, got %+v", sma5[4])
	}
	if !sma5[9].Valid || sma5[9].Val != 80 {
		t.Errorf("SMA5 at index 9: expected 80, got %+v", sma5[9])
	}
}

func TestSMA_ShortInput(t *testing.T) {
	out := SMA([]float64{10, 20, 30}, 20)
	for i, v := range out {
		if v.Valid {
			t.Errorf("index %d: expected absent before window fills", i)
		}
	}
}

func TestMean_Empty(t *testing.T) {
	if Mean(nil).Valid {
		t.Error("mean of empty input must be absent")
	}
}
