package fetcher

import (
	"time"

	"MarketLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series model.PriceSeries
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(fp model.Fingerprint) (model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	if m.Series.Points != nil {
		s := m.Series
		if s.Symbol == "" {
			s.Symbol = fp.Symbol
		}
		return s, nil
	}
	return GenerateSeries(fp.Symbol, 100, 60), nil
}

// GenerateSeries produces a deterministic synthetic daily series for offline
// runs and tests.
func GenerateSeries(symbol string, basePrice float64, count int) model.PriceSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return model.PriceSeries{
		Symbol:    symbol,
		Points:    points,
		FetchedAt: time.Now(),
	}
}
