package analysis

import (
	"github.com/glimpse-data/glimpse/internal/dataset"
)

// iqrFactor is Tukey's fence multiplier.
const iqrFactor = 1.5

// ColumnOutliers lists one numeric column's out-of-bound values in original
// row order, duplicates included. A column with no outliers still gets an
// entry with an empty Values slice.
type ColumnOutliers struct {
	Column string    `json:"column"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
	Values []float64 `json:"values"`
}

// OutlierReport holds one entry per numeric column, in dataset column order.
type OutlierReport []ColumnOutliers

// DetectOutliers applies the IQR rule to every numeric column: values
// strictly outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR] are outliers.
func DetectOutliers(d *dataset.Dataset) OutlierReport {
	report := OutlierReport{}
	for _, c := range d.NumericColumns() {
		report = append(report, detectColumn(c))
	}
	return report
}

func detectColumn(c *dataset.Column) ColumnOutliers {
	vals := c.Values()
	if len(vals) == 0 {
		return ColumnOutliers{Column: c.Name, Values: []float64{}}
	}
	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1

	out := ColumnOutliers{
		Column: c.Name,
		Lower:  q1 - iqrFactor*iqr,
		Upper:  q3 + iqrFactor*iqr,
		Values: []float64{},
	}
	for i, v := range c.Floats {
		if c.Missing[i] {
			continue
		}
		if v < out.Lower || v > out.Upper {
			out.Values = append(out.Values, v)
		}
	}
	return out
}
