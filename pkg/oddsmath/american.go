// Package oddsmath converts between American odds, decimal odds, and implied
// probability, and removes vig from two-way markets. Adapted from
// normalizer/pkg/oddsmath in the services this module was split from.
package oddsmath

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts American odds (e.g. -150, +120) to decimal odds.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds back to American odds.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal < 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be >= 1.0")
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// DecimalToImpliedProbability converts decimal odds to implied probability.
func DecimalToImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 0")
	}
	return 1.0 / decimal, nil
}

// AmericanToImpliedProbability combines AmericanToDecimal and
// DecimalToImpliedProbability.
func AmericanToImpliedProbability(american int) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return DecimalToImpliedProbability(decimal)
}

// IsValidAmericanOdds enforces the sanity range from spec.md §4.2:
// American odds in [-100000, 100000], excluding 0.
func IsValidAmericanOdds(american int) bool {
	return american != 0 && american >= -100000 && american <= 100000
}

// ClipPercent clips a percentage into [0, 100]; returns ok=false if the input
// is too far outside the range to be a plausible typo (more than 1 point
// below 0 or above 100).
func ClipPercent(pct float64) (clipped float64, ok bool) {
	if pct < -1 || pct > 101 {
		return 0, false
	}
	if pct < 0 {
		return 0, true
	}
	if pct > 100 {
		return 100, true
	}
	return pct, true
}

// RoundToHalfPoint rounds a spread or total line to the nearest half point,
// the granularity spec.md §3 requires.
func RoundToHalfPoint(v float64) float64 {
	return math.Round(v*2) / 2
}
