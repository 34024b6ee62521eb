package analytics

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyInput is returned when a statistic is requested over zero usable
// rows (empty table, or all values NaN). Callers must surface it rather
// than emit empty segments or thresholds.
var ErrEmptyInput = errors.New("empty input: no rows to analyze")

// Percentile computes the p-th population percentile (p in [0,1]) using
// linear interpolation at index p*(n-1) over the sorted values, the
// numpy/pandas default. NaN values are dropped before computing. Returns
// ErrEmptyInput when no finite values remain.
func Percentile(values []float64, p float64) (float64, error) {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return 0, ErrEmptyInput
	}
	sort.Float64s(clean)
	return interpolate(clean, p), nil
}

// interpolate reads the p-th percentile from a pre-sorted slice.
func interpolate(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Mean computes the arithmetic mean of the finite values. Returns
// ErrEmptyInput when no finite values remain.
func Mean(values []float64) (float64, error) {
	sum := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, ErrEmptyInput
	}
	return sum / float64(n), nil
}

// dropNaN returns a copy of values with NaN entries removed.
func dropNaN(values []float64) []float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	return clean
}
