package oddsmath

import "fmt"

// RemoveVigMultiplicative removes vig from a two-way market by normalizing
// both implied probabilities so they sum to 1.0. Adapted from
// normalizer/pkg/oddsmath.RemoveVigMultiplicative.
func RemoveVigMultiplicative(prob1, prob2 float64) (fair1, fair2 float64, err error) {
	if prob1 <= 0 || prob1 >= 1 || prob2 <= 0 || prob2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 1")
	}
	total := prob1 + prob2
	if total <= 1.0 {
		return 0, 0, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}
	return prob1 / total, prob2 / total, nil
}

// Divergence returns moneyPct - betsPct for one side of a market, the
// building block for sharp-action detection in spec.md §4.5.
func Divergence(betsPct, moneyPct float64) float64 {
	return moneyPct - betsPct
}
