package fetcher

import "MarketLens/internal/model"

// Fetcher retrieves an ordered price series for one fingerprint.
type Fetcher interface {
	FetchSeries(fp model.Fingerprint) (model.PriceSeries, error)
	Name() string
}
