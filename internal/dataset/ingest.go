package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseError indicates the input could not be read as CSV, or was empty.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse CSV: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse CSV: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// dateLayouts are tried in order during type inference.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// missingTokens are cell values treated as missing, lowercase.
var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true,
}

// Load reads CSV from r and builds a cleaned Dataset: the first record is the
// header (names trimmed and lowercased), exact duplicate rows are dropped
// keeping the first occurrence, and missing cells are forward-filled per
// column. Leading missing cells stay missing. A malformed or empty input
// returns a *ParseError.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: "malformed input", Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Reason: "empty input"}
	}

	return fromRecords(records)
}

// fromRecords builds a Dataset from raw records, header first.
func fromRecords(records [][]string) (*Dataset, error) {
	header := records[0]
	if len(header) == 0 {
		return nil, &ParseError{Reason: "no columns"}
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := dedupRows(records[1:])
	forwardFill(rows, len(names))

	d := &Dataset{rows: len(rows)}
	for j, name := range names {
		cells := make([]string, len(rows))
		for i, row := range rows {
			cells[i] = row[j]
		}
		d.cols = append(d.cols, buildColumn(name, cells))
	}
	return d, nil
}

// dedupRows drops rows that exactly repeat an earlier row.
func dedupRows(rows [][]string) [][]string {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

// forwardFill replaces each missing cell with the nearest preceding value in
// its column. Rows are mutated in place.
func forwardFill(rows [][]string, ncols int) {
	last := make([]string, ncols)
	have := make([]bool, ncols)
	for _, row := range rows {
		for j := 0; j < ncols && j < len(row); j++ {
			if isMissing(row[j]) {
				if have[j] {
					row[j] = last[j]
				}
				continue
			}
			last[j] = row[j]
			have[j] = true
		}
	}
}

func isMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// buildColumn infers the column type from its non-missing cells and parses
// them. A column where every non-missing cell parses as a number is numeric;
// failing that, dates are tried; anything else is text. An all-missing column
// is numeric, matching the usual dataframe convention.
func buildColumn(name string, cells []string) *Column {
	c := &Column{Name: name, Missing: make([]bool, len(cells))}

	any := false
	for i, cell := range cells {
		if isMissing(cell) {
			c.Missing[i] = true
		} else {
			any = true
		}
	}

	numeric := true
	for i, cell := range cells {
		if c.Missing[i] {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			numeric = false
			break
		}
	}

	datetime, layout := false, ""
	if !numeric {
		datetime = true
		for i, cell := range cells {
			if c.Missing[i] {
				continue
			}
			l, ok := matchLayout(strings.TrimSpace(cell), layout)
			if !ok {
				datetime = false
				break
			}
			layout = l
		}
	}

	switch {
	case numeric || !any:
		c.Kind = KindNumeric
		c.Floats = make([]float64, len(cells))
		for i, cell := range cells {
			if c.Missing[i] {
				continue
			}
			c.Floats[i], _ = strconv.ParseFloat(strings.TrimSpace(cell), 64)
		}
	case datetime:
		c.Kind = KindTime
		c.Times = make([]time.Time, len(cells))
		for i, cell := range cells {
			if c.Missing[i] {
				continue
			}
			c.Times[i], _ = time.Parse(layout, strings.TrimSpace(cell))
		}
	default:
		c.Kind = KindText
		c.Strings = make([]string, len(cells))
		for i, cell := range cells {
			if c.Missing[i] {
				continue
			}
			c.Strings[i] = cell
		}
	}
	return c
}

// matchLayout finds a layout parsing v. Once a column commits to a layout,
// every later cell must use the same one.
func matchLayout(v, committed string) (string, bool) {
	if committed != "" {
		if _, err := time.Parse(committed, v); err == nil {
			return committed, true
		}
		return "", false
	}
	for _, l := range dateLayouts {
		if _, err := time.Parse(l, v); err == nil {
			return l, true
		}
	}
	return "", false
}
