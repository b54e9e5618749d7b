// Package numerics wraps the gonum reductions and sampling routines used
// by the IGSOA and SATP field engines, so call sites never import gonum
// directly.
package numerics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SeededNormal returns a deterministic generator of standard-normal
// samples scaled by sigma and shifted by mu, seeded from seed. Two
// generators built from the same seed produce bit-identical sequences.
func SeededNormal(mu, sigma float64, seed int64) func() float64 {
	src := rand.New(rand.NewSource(seed))
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	return dist.Rand
}

// RMS returns the root-mean-square of xs, guarded against an empty slice
// (returns 0 rather than dividing by zero). floats.Norm(xs, 2) is the
// Euclidean norm sqrt(sum(x^2)); dividing by sqrt(n) turns it into RMS.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Norm(xs, 2) / math.Sqrt(float64(len(xs)))
}

// Variance returns the sample (n-1) variance of xs, as stat.MeanStdDev
// computes it (0 for slices shorter than two).
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if len(xs) == 1 {
		return 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	_ = mean
	return std * std
}

// Mean returns the arithmetic mean of xs (0 for an empty slice).
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// MeanAbsDiff returns the mean absolute difference between adjacent
// elements of xs (the SID "divergence" measure). Returns 0 for slices
// shorter than 2.
func MeanAbsDiff(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	diffs := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		diffs[i-1] = math.Abs(xs[i] - xs[i-1])
	}
	return floats.Sum(diffs) / float64(len(diffs))
}

// WeightedCentroid1D returns the weighted centroid index of weights over
// [0, len(weights)).
func WeightedCentroid1D(weights []float64) float64 {
	var num, den float64
	for i, w := range weights {
		num += float64(i) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}
