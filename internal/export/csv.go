// Package export writes analysis results to CSV and YAML files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"MarketLens/internal/errs"
	"MarketLens/internal/model"
)

// csvHeader is the fixed column layout consumed by spreadsheet users.
var csvHeader = []string{"Date", "Close", "Return", "SMA5", "SMA20"}

// WriteCSV writes one row per date with the price, the return leading into
// that date, and both moving averages. Absent values render as empty cells.
// Returns the written path.
func WriteCSV(series model.PriceSeries, analysis model.AnalysisResult, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", errs.ErrExport, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("%w: write header: %v", errs.ErrExport, err)
	}

	for i, p := range series.Points {
		// Returns[i-1] is the return from point i-1 to point i; the first
		// row has none.
		ret := model.None()
		if i > 0 && i-1 < len(analysis.Returns) {
			ret = analysis.Returns[i-1]
		}
		row := []string{
			p.Date.Format("2006-01-02"),
			formatFloat(p.Close),
			formatValue(ret),
			formatValue(at(analysis.SMA5, i)),
			formatValue(at(analysis.SMA20, i)),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("%w: write row: %v", errs.ErrExport, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: flush: %v", errs.ErrExport, err)
	}
	return path, nil
}

func at(vs []model.Value, i int) model.Value {
	if i < len(vs) {
		return vs[i]
	}
	return model.None()
}

// formatFloat uses the shortest representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatValue(v model.Value) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Val)
}
