package curated

import "github.com/samlafell/mlbcore/pkg/models"

// CLVDetector implements the curated zone's supplemented CLV (closing-line
// value) bookkeeping (SPEC_FULL.md §10): once a movement sequence's latest
// entry is available, every earlier entry for the same key is retroactively
// annotated with its value relative to that close. Grounded on
// clv-calculator/internal/calculator's calculateCLV/americanToDecimal
// formula (CLV = (1/close_decimal - 1/bet_decimal) * 100), adapted from
// "settled bet vs. closing line" to "earlier curated quote vs. latest
// curated quote for the same key".
type CLVDetector struct{}

// NewCLVDetector builds a CLVDetector. It carries no state of its own; the
// movement sequence it's given already captures everything it needs.
func NewCLVDetector() *CLVDetector { return &CLVDetector{} }

// Detect treats seq's last entry (already time-ordered by sortMovementOrder)
// as the closing line for this run and backfills every earlier entry's
// CLVCents against it. Only the home-side American price is compared, the
// same simplification clv-calculator makes by tracking one BetPrice per bet
// rather than both sides; spread/total quotes have no single directly
// comparable price and are left untouched.
func (d *CLVDetector) Detect(seq []models.BettingLine) []models.BettingLine {
	if len(seq) < 2 {
		return seq
	}
	closing := seq[len(seq)-1].Moneyline
	if closing == nil {
		return seq
	}
	for i := 0; i < len(seq)-1; i++ {
		open := seq[i].Moneyline
		if open == nil {
			continue
		}
		cents := clvCents(open.HomePrice, closing.HomePrice)
		seq[i].CLVCents = &cents
	}
	return seq
}

// clvCents converts both American prices to implied probability and
// expresses the gap in cents per dollar staked.
func clvCents(openPrice, closingPrice int) int {
	openProb := 1.0 / americanToDecimal(openPrice)
	closeProb := 1.0 / americanToDecimal(closingPrice)
	return int((closeProb - openProb) * 100.0)
}

func americanToDecimal(american int) float64 {
	if american > 0 {
		return (float64(american) / 100.0) + 1.0
	}
	return (100.0 / float64(-american)) + 1.0
}
