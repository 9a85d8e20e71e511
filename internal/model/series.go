package model

import "time"

// PricePoint is one closing price on one date.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries holds an ordered run of closing prices for one symbol.
// Dates are strictly increasing with no duplicates. A series is immutable
// once handed to the cache.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Closes extracts the closing prices in order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Dates extracts the dates formatted as YYYY-MM-DD.
func (s PriceSeries) Dates() []string {
	dates := make([]string, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date.Format("2006-01-02")
	}
	return dates
}
