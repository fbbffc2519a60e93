package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glimpse-data/glimpse/internal/dataset"
)

// Summarize produces the human-readable dataset report: shape, per-column
// type and null counts, a numeric describe table, and top-3 value frequencies
// for non-numeric columns.
func Summarize(d *dataset.Dataset) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dataset shape: %d rows x %d columns\n\n", d.Rows(), d.Cols())

	b.WriteString("Column info:\n")
	for _, c := range d.Columns() {
		fmt.Fprintf(&b, "  - %s: %s (non-null: %d)\n", c.Name, c.Kind, c.NonNull())
	}
	b.WriteString("\n")

	var missing []*dataset.Column
	for _, c := range d.Columns() {
		if c.MissingCount() > 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		b.WriteString("Missing values:\n")
		for _, c := range missing {
			fmt.Fprintf(&b, "  - %s: %d missing\n", c.Name, c.MissingCount())
		}
		b.WriteString("\n")
	}

	if numeric := d.NumericColumns(); len(numeric) > 0 {
		b.WriteString("Numerical summary:\n")
		writeDescribeTable(&b, numeric)
		b.WriteString("\n")
	}

	var categorical []*dataset.Column
	for _, c := range d.Columns() {
		if c.Kind != dataset.KindNumeric {
			categorical = append(categorical, c)
		}
	}
	if len(categorical) > 0 {
		b.WriteString("Categorical columns summary:\n")
		for _, c := range categorical {
			top := topValues(c, 3)
			fmt.Fprintf(&b, "  - %s: %d unique values\n", c.Name, distinctCount(c))
			parts := make([]string, len(top))
			for i, tv := range top {
				parts[i] = fmt.Sprintf("%s (%d)", tv.Value, tv.Count)
			}
			fmt.Fprintf(&b, "    Top %d values: %s\n", len(top), strings.Join(parts, ", "))
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// writeDescribeTable renders a pandas-style describe table, one numeric
// column per row.
func writeDescribeTable(b *strings.Builder, cols []*dataset.Column) {
	name := "column"
	width := len(name)
	for _, c := range cols {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}

	fmt.Fprintf(b, "  %-*s %8s %12s %12s %12s %12s %12s %12s %12s\n",
		width, name, "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, c := range cols {
		ds := describeValues(c.Values())
		fmt.Fprintf(b, "  %-*s %8d %12s %12s %12s %12s %12s %12s %12s\n",
			width, c.Name, ds.Count,
			fmtStat(ds.Mean), fmtStat(ds.Std), fmtStat(ds.Min), fmtStat(ds.Q1),
			fmtStat(ds.Median), fmtStat(ds.Q3), fmtStat(ds.Max))
	}
}

func fmtStat(v float64) string {
	if v != v { // NaN
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}

// valueCount pairs a categorical value with its frequency.
type valueCount struct {
	Value string
	Count int
}

func distinctCount(c *dataset.Column) int {
	seen := make(map[string]bool)
	for i := range c.Missing {
		if !c.Missing[i] {
			seen[c.CellString(i)] = true
		}
	}
	return len(seen)
}

// topValues returns the n most frequent values of a non-numeric column, ties
// broken by first-encountered order.
func topValues(c *dataset.Column, n int) []valueCount {
	counts := make(map[string]int)
	var order []string
	for i := range c.Missing {
		if c.Missing[i] {
			continue
		}
		v := c.CellString(i)
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	out := make([]valueCount, 0, len(order))
	for _, v := range order {
		out = append(out, valueCount{Value: v, Count: counts[v]})
	}
	// Stable sort keeps first-encountered order among equal counts.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
