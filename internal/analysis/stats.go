package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile computes the p-quantile of xs by linear interpolation between
// closest ranks (the dataframe convention: rank h = (n-1)*p). gonum's
// stat.Quantile interpolates the empirical CDF, which is a different
// convention, so this is computed directly over a sorted copy.
func quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)

	h := float64(len(s)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (h-float64(lo))*(s[hi]-s[lo])
}

// describe holds the numeric descriptive statistics for one column.
type describe struct {
	Count           int
	Mean, Std       float64
	Min, Q1, Median float64
	Q3, Max         float64
}

func describeValues(xs []float64) describe {
	d := describe{Count: len(xs)}
	if len(xs) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}
	d.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		d.Std = stat.StdDev(xs, nil)
	} else {
		d.Std = math.NaN()
	}
	d.Min = quantile(xs, 0)
	d.Q1 = quantile(xs, 0.25)
	d.Median = quantile(xs, 0.5)
	d.Q3 = quantile(xs, 0.75)
	d.Max = quantile(xs, 1)
	return d
}
