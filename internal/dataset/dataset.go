package dataset

import (
	"strconv"
	"time"
)

// Kind classifies a column's inferred value type.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindTime    Kind = "datetime"
	KindText    Kind = "text"
)

// Column is a single named column. Exactly one of the value slices is
// populated, chosen by Kind; Missing marks cells that stayed empty after
// forward-fill (leading gaps). All slices share the dataset's row count.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Times   []time.Time
	Strings []string
	Missing []bool
}

// Dataset is an ordered collection of equal-length columns. It is built once
// by Load and treated as read-only by every analysis.
type Dataset struct {
	cols []*Column
	rows int
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Cols returns the column count.
func (d *Dataset) Cols() int { return len(d.cols) }

// Columns returns the columns in their original order.
func (d *Dataset) Columns() []*Column { return d.cols }

// Names returns the normalized column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by its normalized name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// NumericColumns returns the numeric columns in original order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for _, c := range d.cols {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// NonNull returns the number of cells holding a value.
func (c *Column) NonNull() int {
	n := 0
	for _, m := range c.Missing {
		if !m {
			n++
		}
	}
	return n
}

// MissingCount returns the number of empty cells.
func (c *Column) MissingCount() int {
	return len(c.Missing) - c.NonNull()
}

// Values returns the non-missing numeric values in row order. It returns nil
// for non-numeric columns.
func (c *Column) Values() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// CellString formats one cell for display and CSV round-trips. Missing cells
// format as the empty string.
func (c *Column) CellString(i int) string {
	if c.Missing[i] {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case KindTime:
		t := c.Times[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return c.Strings[i]
	}
}

// Records renders the dataset back to CSV-shaped records, header first.
// Loading the result yields an identical dataset when the input was clean.
func (d *Dataset) Records() [][]string {
	recs := make([][]string, 0, d.rows+1)
	recs = append(recs, d.Names())
	for i := 0; i < d.rows; i++ {
		row := make([]string, len(d.cols))
		for j, c := range d.cols {
			row[j] = c.CellString(i)
		}
		recs = append(recs, row)
	}
	return recs
}

// Preview returns at most n leading rows as display strings.
func (d *Dataset) Preview(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.cols))
		for j, c := range d.cols {
			row[j] = c.CellString(i)
		}
		out = append(out, row)
	}
	return out
}
