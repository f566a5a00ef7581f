package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for a histogram of game lengths.
type Summary struct {
	Trials int     `json:"trials" yaml:"trials"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	StdErr float64 `json:"std_err" yaml:"std_err"`
	Min    int     `json:"min" yaml:"min"`
	Max    int     `json:"max" yaml:"max"`
	Median float64 `json:"median" yaml:"median"`
	P90    float64 `json:"p90" yaml:"p90"`
	P99    float64 `json:"p99" yaml:"p99"`
}

// Summarize computes weighted statistics over the histogram's keys.
//
// Postcondition: Returns the zero Summary for an empty histogram.
func Summarize(h *Histogram) Summary {
	if h.Total() == 0 {
		return Summary{}
	}
	keys := h.Keys()
	x := make([]float64, len(keys))
	w := make([]float64, len(keys))
	for i, k := range keys {
		x[i] = float64(k)
		w[i] = float64(h.Count(k))
	}

	mean := stat.Mean(x, w)
	var std float64
	if h.Total() > 1 {
		std = stat.StdDev(x, w)
	}
	return Summary{
		Trials: h.Total(),
		Mean:   mean,
		StdDev: std,
		StdErr: std / math.Sqrt(float64(h.Total())),
		Min:    keys[0],
		Max:    keys[len(keys)-1],
		Median: stat.Quantile(0.5, stat.Empirical, x, w),
		P90:    stat.Quantile(0.9, stat.Empirical, x, w),
		P99:    stat.Quantile(0.99, stat.Empirical, x, w),
	}
}
