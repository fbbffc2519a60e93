package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/glimpse-data/glimpse/internal/dataset"
)

// DateColumn is the column the forecaster orders rows by.
const DateColumn = "date"

// ErrUnavailable marks a forecast that cannot be produced at all, as opposed
// to a successful forecast with an empty horizon.
var ErrUnavailable = errors.New("forecast unavailable")

// MissingColumnError reports the absent or wrongly-typed column that made the
// forecast unavailable. It unwraps to ErrUnavailable.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("forecast unavailable: no usable %q column", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrUnavailable }

// ForecastPoint is one (date, value) pair of either series.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Forecast holds the observed series (sorted by date) and the linear
// projection past the last observed date.
type Forecast struct {
	Target    string          `json:"target"`
	Intercept float64         `json:"intercept"`
	Slope     float64         `json:"slope"`
	Observed  []ForecastPoint `json:"observed"`
	Predicted []ForecastPoint `json:"predicted"`
}

// ForecastLinear fits an ordinary least-squares trend of the target column on
// its row index after sorting by the "date" column, then projects the next
// horizon consecutive calendar days starting the day after the last observed
// date. Rows missing the target or the date are dropped before fitting.
func ForecastLinear(d *dataset.Dataset, target string, horizon int) (*Forecast, error) {
	dates, ok := d.Column(DateColumn)
	if !ok || dates.Kind != dataset.KindTime {
		return nil, &MissingColumnError{Column: DateColumn}
	}
	tc, ok := d.Column(target)
	if !ok || tc.Kind != dataset.KindNumeric {
		return nil, &MissingColumnError{Column: target}
	}

	observed := make([]ForecastPoint, 0, d.Rows())
	for i := 0; i < d.Rows(); i++ {
		if tc.Missing[i] || dates.Missing[i] {
			continue
		}
		observed = append(observed, ForecastPoint{Date: dates.Times[i], Value: tc.Floats[i]})
	}
	if len(observed) == 0 {
		return nil, fmt.Errorf("%w: column %q has no values", ErrUnavailable, target)
	}
	sort.SliceStable(observed, func(i, j int) bool {
		return observed[i].Date.Before(observed[j].Date)
	})

	ts := make([]float64, len(observed))
	ys := make([]float64, len(observed))
	for i, p := range observed {
		ts[i] = float64(i)
		ys[i] = p.Value
	}
	var alpha, beta float64
	if len(observed) == 1 {
		alpha = ys[0] // degenerate fit: flat line through the single point
	} else {
		alpha, beta = stat.LinearRegression(ts, ys, nil, false)
	}

	f := &Forecast{
		Target:    target,
		Intercept: alpha,
		Slope:     beta,
		Observed:  observed,
		Predicted: make([]ForecastPoint, 0, horizon),
	}
	last := observed[len(observed)-1].Date
	for step := 1; step <= horizon; step++ {
		t := float64(len(observed) - 1 + step)
		f.Predicted = append(f.Predicted, ForecastPoint{
			Date:  last.AddDate(0, 0, step),
			Value: alpha + beta*t,
		})
	}
	return f, nil
}
