// Package montecarlo estimates π by rejection sampling on the square
// [-1, 1] x [-1, 1].
//
// Samples are drawn from a PCG generator seeded by the caller, two draws per
// sample (x then y), so a given (samples, seed) pair always reproduces the
// same estimate.
package montecarlo

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// pcgStream is the fixed second PCG word; the caller's seed is the first.
const pcgStream uint64 = 0x9e3779b97f4a7c15

// Result is the outcome of one estimation run.
type Result struct {
	PiEstimate float64
	Inside     int64
	Total      int64
	Seed       int64
}

// EstimatePi draws samples points uniformly from [-1, 1]² and returns
// 4*inside/samples, where inside counts points with x²+y² <= 1.
// Non-positive samples yield the zero Result.
func EstimatePi(samples int64, seed int64) Result {
	if samples <= 0 {
		return Result{}
	}

	dist := distuv.Uniform{Min: -1, Max: 1, Src: NewSource(seed)}

	var inside int64
	for i := int64(0); i < samples; i++ {
		x := dist.Rand()
		y := dist.Rand()
		if x*x+y*y <= 1.0 {
			inside++
		}
	}

	return Result{
		PiEstimate: 4.0 * float64(inside) / float64(samples),
		Inside:     inside,
		Total:      samples,
		Seed:       seed,
	}
}

// NewSource returns the generator EstimatePi uses for seed.
func NewSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), pcgStream)
}
