package insight

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/model"
)

// FallbackMessage is emitted when no rule triggers on any column.
const FallbackMessage = "No significant patterns detected."

// RuleBased scans every numeric column's mean/min/max against the configured
// ratios and emits zero, one, or two insights per column. The result is never
// empty: when nothing triggers it holds the single fallback message.
func RuleBased(d *dataset.Dataset, cfg model.InsightConfig) []string {
	var insights []string
	for _, c := range d.NumericColumns() {
		vals := c.Values()
		if len(vals) == 0 {
			continue
		}
		mean := stat.Mean(vals, nil)
		if floats.Max(vals) > mean*cfg.HighMaxRatio {
			insights = append(insights, fmt.Sprintf(
				"%s has unusually high max values compared to its mean.", c.Name))
		}
		if floats.Min(vals) < mean*cfg.LowMinRatio {
			insights = append(insights, fmt.Sprintf(
				"%s has unusually low min values compared to its mean.", c.Name))
		}
	}
	if len(insights) == 0 {
		return []string{FallbackMessage}
	}
	return insights
}
