package analysis

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/glimpse-data/glimpse/internal/dataset"
)

// CorrelationMatrix is the pairwise Pearson matrix over the dataset's numeric
// columns. Non-numeric columns are excluded by policy. Entries with fewer
// than two pairwise-complete observations, or a constant column, are NaN.
type CorrelationMatrix struct {
	Labels []string
	vals   *mat.SymDense
}

// Correlate computes the correlation matrix. With fewer than two numeric
// columns the matrix degenerates to 0x0 or 1x1; callers must render that
// without failing.
func Correlate(d *dataset.Dataset) *CorrelationMatrix {
	cols := d.NumericColumns()
	m := &CorrelationMatrix{Labels: make([]string, len(cols))}
	for i, c := range cols {
		m.Labels[i] = c.Name
	}
	if len(cols) == 0 {
		return m
	}

	m.vals = mat.NewSymDense(len(cols), nil)
	for i := range cols {
		for j := i; j < len(cols); j++ {
			m.vals.SetSym(i, j, pearson(cols[i], cols[j]))
		}
	}
	return m
}

// Dim returns the matrix dimension.
func (m *CorrelationMatrix) Dim() int { return len(m.Labels) }

// At returns the coefficient for column pair (i, j).
func (m *CorrelationMatrix) At(i, j int) float64 { return m.vals.At(i, j) }

// Cells returns the matrix as a row-major slice of rows.
func (m *CorrelationMatrix) Cells() [][]float64 {
	out := make([][]float64, m.Dim())
	for i := range out {
		out[i] = make([]float64, m.Dim())
		for j := range out[i] {
			out[i][j] = m.vals.At(i, j)
		}
	}
	return out
}

// MarshalJSON emits the labels plus a row-major matrix, with NaN entries as
// null so the result is valid JSON.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	rows := make([][]*float64, m.Dim())
	for i := range rows {
		rows[i] = make([]*float64, m.Dim())
		for j := range rows[i] {
			if v := m.At(i, j); !math.IsNaN(v) {
				vv := v
				rows[i][j] = &vv
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Matrix  [][]*float64 `json:"matrix"`
	}{m.Labels, rows})
}

// pearson computes the Pearson coefficient over pairwise-complete rows of two
// columns. The diagonal is exactly 1 for columns with nonzero variance.
func pearson(a, b *dataset.Column) float64 {
	var xs, ys []float64
	for i := range a.Floats {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Floats[i])
		ys = append(ys, b.Floats[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if a == b {
		if stat.Variance(xs, nil) == 0 {
			return math.NaN()
		}
		return 1
	}
	return stat.Correlation(xs, ys, nil)
}
