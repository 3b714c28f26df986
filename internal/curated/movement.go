package curated

import (
	"context"
	"sort"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// sidePrices returns a line's two prices in a uniform (home-side, away-side)
// shape regardless of market, so movement detection doesn't need a
// market-specific branch at every call site. The total market has no
// home/away side; by convention Over stands in for "home" and Under for
// "away" throughout curated detection.
func sidePrices(line models.BettingLine) (home, away int, ok bool) {
	switch line.Market {
	case models.MarketMoneyline:
		if line.Moneyline == nil {
			return 0, 0, false
		}
		return line.Moneyline.HomePrice, line.Moneyline.AwayPrice, true
	case models.MarketSpread:
		if line.Spread == nil {
			return 0, 0, false
		}
		return line.Spread.HomePrice, line.Spread.AwayPrice, true
	case models.MarketTotal:
		if line.Total == nil {
			return 0, 0, false
		}
		return line.Total.OverPrice, line.Total.UnderPrice, true
	default:
		return 0, 0, false
	}
}

// majoritySide reports which side the public is backing more heavily by
// bet count, or ok=false if either side's bets_pct is missing or the two
// are tied (no clear majority to track for RLM purposes).
func majoritySide(line models.BettingLine) (side string, ok bool) {
	h, a := line.HomeSplit.BetsPct, line.AwaySplit.BetsPct
	if h == nil || a == nil || *h == *a {
		return "", false
	}
	if *h > *a {
		return "home", true
	}
	return "away", true
}

// sortMovementOrder orders a BettingLine sequence per spec.md §4.5's
// canonical movement ordering: odds_timestamp ascending, ties broken by
// source_reliability_score descending, then ingestion order (the slice's
// original relative order, since IngestionSeq isn't assigned until
// persistence).
func sortMovementOrder(lines []models.BettingLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if !a.OddsTimestamp.Equal(b.OddsTimestamp) {
			return a.OddsTimestamp.Before(b.OddsTimestamp)
		}
		return a.SourceReliabilityScore > b.SourceReliabilityScore
	})
}

// RLMDetector implements spec.md §4.5's reverse-line-movement rule: within
// a rolling window, flag a quote where the price moved against the side
// the public is backing more heavily.
type RLMDetector struct {
	Window time.Duration
}

// NewRLMDetector builds an RLMDetector at spec.md §4.5's stated 60-minute
// rolling window.
func NewRLMDetector() *RLMDetector {
	return &RLMDetector{Window: 60 * time.Minute}
}

// Detect walks sequence (already ordered per sortMovementOrder) and flags
// RLM on any quote whose price shortened by at least one tick against the
// majority-bet side established by the prior quote, within Window.
func (d *RLMDetector) Detect(ctx context.Context, sequence []models.BettingLine) []models.BettingLine {
	for i := 1; i < len(sequence); i++ {
		prev, cur := sequence[i-1], sequence[i]
		if cur.OddsTimestamp.Sub(prev.OddsTimestamp) > d.Window {
			continue
		}
		side, ok := majoritySide(prev)
		if !ok {
			continue
		}
		prevHome, prevAway, ok1 := sidePrices(prev)
		curHome, curAway, ok2 := sidePrices(cur)
		if !ok1 || !ok2 {
			continue
		}

		var delta int
		if side == "home" {
			delta = curHome - prevHome
		} else {
			delta = curAway - prevAway
		}
		// A numeric decrease in American odds always shortens the price,
		// whether the side is favored (more negative) or not (less
		// positive): worse for anyone betting it now.
		if delta <= -1 {
			sequence[i].RLM = true
		}
	}
	return sequence
}
