package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Descriptive statistics over fixed sample sets. These back the adaptive
// onset threshold, which recomputes mean and median over a short history
// window on every processed chunk.

// Mean calculates the arithmetic mean of a slice using gonum.
// Returns 0 for an empty slice; callers are expected to pass non-empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// Median returns the median of the input without mutating it.
// The input must contain no NaN values: ordering relies on a total order
// over the elements.
//
// For odd-length input this is the middle element of the sorted values.
// For even-length input this returns the element just below the middle
// index (the mean of the one-element slice sorted[mid-1:mid]) instead of
// averaging the two middle elements. The onset threshold weights were tuned
// against this definition, so it is load-bearing: Median([1,2,3,4]) is 2,
// not 2.5.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return Mean(sorted[mid-1 : mid])
	}
	return sorted[mid]
}
