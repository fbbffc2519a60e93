package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

// linearCSV builds a date,value CSV where value = intercept + slope*i.
func linearCSV(t *testing.T, name string, days int, intercept, slope float64) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "date,%s\n", name)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, "%s,%g\n", start.AddDate(0, 0, i).Format("2006-01-02"), intercept+slope*float64(i))
	}
	return b.String()
}

func TestForecastLinear_RecoversLinearTrend(t *testing.T) {
	d := mustLoad(t, linearCSV(t, "sales", 30, 10, 2))

	f, err := ForecastLinear(d, "sales", 5)
	if err != nil {
		t.Fatalf("ForecastLinear failed: %v", err)
	}

	if math.Abs(f.Intercept-10) > 1e-9 || math.Abs(f.Slope-2) > 1e-9 {
		t.Errorf("expected fit 10 + 2t, got %v + %vt", f.Intercept, f.Slope)
	}
	if len(f.Predicted) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(f.Predicted))
	}
	for i, p := range f.Predicted {
		want := 10 + 2*float64(30+i)
		if math.Abs(p.Value-want) > 1e-9 {
			t.Errorf("prediction %d: expected %v, got %v", i, want, p.Value)
		}
	}
}

func TestForecastLinear_FutureDatesAreConsecutive(t *testing.T) {
	d := mustLoad(t, linearCSV(t, "sales", 10, 0, 1))

	f, err := ForecastLinear(d, "sales", 3)
	if err != nil {
		t.Fatalf("ForecastLinear failed: %v", err)
	}

	last := f.Observed[len(f.Observed)-1].Date
	for i, p := range f.Predicted {
		want := last.AddDate(0, 0, i+1)
		if !p.Date.Equal(want) {
			t.Errorf("prediction %d: expected date %s, got %s", i, want, p.Date)
		}
		if !p.Date.After(last) {
			t.Errorf("prediction %d: date %s not after last observed %s", i, p.Date, last)
		}
	}
}

func TestForecastLinear_SortsByDate(t *testing.T) {
	// Rows out of order; trend is still value = 2*index after sorting
	d := mustLoad(t, "date,v\n2024-01-03,4\n2024-01-01,0\n2024-01-02,2\n")

	f, err := ForecastLinear(d, "v", 1)
	if err != nil {
		t.Fatalf("ForecastLinear failed: %v", err)
	}
	if math.Abs(f.Slope-2) > 1e-9 {
		t.Errorf("expected slope 2 after date sort, got %v", f.Slope)
	}
	if got := f.Predicted[0].Value; math.Abs(got-6) > 1e-9 {
		t.Errorf("expected next value 6, got %v", got)
	}
}

func TestForecastLinear_MissingDateColumn(t *testing.T) {
	d := mustLoad(t, "v\n1\n2\n")

	_, err := ForecastLinear(d, "v", 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var mce *MissingColumnError
	if !errors.As(err, &mce) || mce.Column != DateColumn {
		t.Errorf("expected MissingColumnError for %q, got %v", DateColumn, err)
	}
}

func TestForecastLinear_MissingTargetColumn(t *testing.T) {
	d := mustLoad(t, "date,v\n2024-01-01,1\n2024-01-02,2\n")

	_, err := ForecastLinear(d, "revenue", 10)
	var mce *MissingColumnError
	if !errors.As(err, &mce) || mce.Column != "revenue" {
		t.Fatalf("expected MissingColumnError for \"revenue\", got %v", err)
	}
}

func TestForecastLinear_AllMissingTarget(t *testing.T) {
	d := mustLoad(t, "date,v\n2024-01-01,\n2024-01-02,\n")

	_, err := ForecastLinear(d, "v", 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for all-missing target, got %v", err)
	}
}

func TestForecastLinear_ZeroHorizonIsNotUnavailable(t *testing.T) {
	d := mustLoad(t, linearCSV(t, "sales", 10, 0, 1))

	f, err := ForecastLinear(d, "sales", 0)
	if err != nil {
		t.Fatalf("expected success with empty horizon, got %v", err)
	}
	if len(f.Predicted) != 0 {
		t.Errorf("expected no predictions, got %d", len(f.Predicted))
	}
}
