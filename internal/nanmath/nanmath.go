// Package nanmath provides missing-aware numeric helpers.
//
// A missing value is IEEE NaN. Plain arithmetic propagates it naturally;
// every reduction in this package skips missing entries instead of letting
// them poison the result. Engine code must use these helpers rather than
// ad-hoc loops so that missing never gets treated as zero or infinity.
package nanmath

import (
	"math"
	"sort"
)

// Missing returns the sentinel for an absent value.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Min returns the smallest non-missing value in vs and its index.
// Returns (missing, -1) when every entry is missing or vs is empty.
func Min(vs []float64) (float64, int) {
	best := math.NaN()
	idx := -1
	for i, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if idx == -1 || v < best {
			best = v
			idx = i
		}
	}
	return best, idx
}

// Max returns the largest non-missing value in vs and its index.
// Returns (missing, -1) when every entry is missing or vs is empty.
func Max(vs []float64) (float64, int) {
	best := math.NaN()
	idx := -1
	for i, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if idx == -1 || v > best {
			best = v
			idx = i
		}
	}
	return best, idx
}

// Mean returns the average of the non-missing values in vs,
// or missing when there are none.
func Mean(vs []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// AllMissing reports whether vs has no finite entries.
func AllMissing(vs []float64) bool {
	for _, v := range vs {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// NarrowQuartiles computes the first and third quartiles of the
// non-missing values in vs using deliberately conservative interpolation:
// Q1 rounds the fractional rank up ("higher"), Q3 rounds it down ("lower").
// The resulting band is never wider than the data and shrinks the IQR for
// small samples, which is what the outlier filter wants.
// Returns (missing, missing) when vs has no finite entries.
func NarrowQuartiles(vs []float64) (q1, q3 float64) {
	finite := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN()
	}
	sort.Float64s(finite)
	n := len(finite)
	q1 = finite[int(math.Ceil(float64(n-1)*0.25))]
	q3 = finite[int(math.Floor(float64(n-1)*0.75))]
	return q1, q3
}

// Round rounds v to the given number of decimal places.
// Missing stays missing.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
