// Package statistics computes descriptive statistics in a single pass.
package statistics

import "math"

// Summary holds descriptive statistics for a sequence of values.
// For an empty sequence Count is zero, every other field is zero and
// Min/Max are NaN.
type Summary struct {
	Count    int64
	Sum      float64
	Mean     float64
	Variance float64
	Stddev   float64
	Min      float64
	Max      float64
}

// Accumulator folds values into running Welford state.
// The zero value is ready to use.
type Accumulator struct {
	count int64
	sum   float64
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// Add folds x into the running state.
func (a *Accumulator) Add(x float64) {
	if a.count == 0 {
		a.min = math.Inf(1)
		a.max = math.Inf(-1)
	}

	a.count++
	a.sum += x
	if x < a.min {
		a.min = x
	}
	if x > a.max {
		a.max = x
	}

	delta := x - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (x - a.mean)
}

// Count returns the number of values added so far.
func (a *Accumulator) Count() int64 {
	return a.count
}

// Summary returns the statistics of the values added so far. sample selects
// the Bessel-corrected variance (divide by n-1) instead of the population
// variance (divide by n).
func (a *Accumulator) Summary(sample bool) Summary {
	if a.count == 0 {
		return Summary{Min: math.NaN(), Max: math.NaN()}
	}

	var variance float64
	switch {
	case sample && a.count >= 2:
		variance = a.m2 / float64(a.count-1)
	case !sample:
		variance = a.m2 / float64(a.count)
	}

	return Summary{
		Count:    a.count,
		Sum:      a.sum,
		Mean:     a.mean,
		Variance: variance,
		Stddev:   math.Sqrt(variance),
		Min:      a.min,
		Max:      a.max,
	}
}

// Summarize computes the Summary of values in one traversal.
func Summarize(values []float64, sample bool) Summary {
	var acc Accumulator
	for _, x := range values {
		acc.Add(x)
	}
	return acc.Summary(sample)
}
