package health

import (
	"math"
	"sort"
)

// percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks. Grounded on
// sawpanic-cryptorun/src/infrastructure/percentiles.Engine's
// sort-then-interpolate shape, simplified: latency samples need no
// winsorization, unlike that engine's return-series percentiles.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// median is percentile(values, 50), broken out since baselines are
// trailing-median per spec.md §4.7.
func median(values []float64) float64 {
	return percentile(values, 50)
}
