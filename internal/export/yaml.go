package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"MarketLens/internal/errs"
	"MarketLens/internal/model"
)

// yamlReport is the single-document report layout: fingerprint parameters,
// the summary metrics, and the full per-date rows.
type yamlReport struct {
	Symbol      string      `yaml:"symbol"`
	Params      yamlParams  `yaml:"params"`
	GeneratedAt string      `yaml:"generated_at"`
	Metrics     yamlMetrics `yaml:"metrics"`
	Rows        []yamlRow   `yaml:"rows"`
}

type yamlParams struct {
	Range    string `yaml:"range"`
	Interval string `yaml:"interval"`
	Source   string `yaml:"source"`
}

type yamlMetrics struct {
	Count           int      `yaml:"count"`
	MeanReturnDaily *float64 `yaml:"mean_return_daily"`
	StdReturnDaily  *float64 `yaml:"std_return_daily"`
	SharpeAnnual    *float64 `yaml:"sharpe_annual"`
	Skew            *float64 `yaml:"skew"`
	ExcludedReturns int      `yaml:"excluded_returns"`
}

type yamlRow struct {
	Date   string   `yaml:"date"`
	Close  float64  `yaml:"close"`
	Return *float64 `yaml:"return"`
	SMA5   *float64 `yaml:"sma5"`
	SMA20  *float64 `yaml:"sma20"`
}

// WriteYAML writes the full fingerprint, series, and analysis as one YAML
// document and returns the written path. Absent statistics serialize as null.
func WriteYAML(fp model.Fingerprint, series model.PriceSeries, analysis model.AnalysisResult, source, path string) (string, error) {
	rows := make([]yamlRow, len(series.Points))
	for i, p := range series.Points {
		ret := model.None()
		if i > 0 && i-1 < len(analysis.Returns) {
			ret = analysis.Returns[i-1]
		}
		rows[i] = yamlRow{
			Date:   p.Date.Format("2006-01-02"),
			Close:  p.Close,
			Return: ptr(ret),
			SMA5:   ptr(at(analysis.SMA5, i)),
			SMA20:  ptr(at(analysis.SMA20, i)),
		}
	}

	report := yamlReport{
		Symbol: series.Symbol,
		Params: yamlParams{
			Range:    fp.Range,
			Interval: fp.Interval,
			Source:   source,
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Metrics: yamlMetrics{
			Count:           len(series.Points),
			MeanReturnDaily: ptr(analysis.MeanReturn),
			StdReturnDaily:  ptr(analysis.StdReturn),
			SharpeAnnual:    ptr(analysis.SharpeAnnual),
			Skew:            ptr(analysis.Skew),
			ExcludedReturns: analysis.ExcludedReturns,
		},
		Rows: rows,
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", errs.ErrExport, path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("%w: encode: %v", errs.ErrExport, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("%w: close encoder: %v", errs.ErrExport, err)
	}
	return path, nil
}

func ptr(v model.Value) *float64 {
	if !v.Valid {
		return nil
	}
	x := v.Val
	return &x
}
