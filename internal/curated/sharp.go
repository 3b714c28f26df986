package curated

import (
	"math"

	"github.com/samlafell/mlbcore/pkg/models"
	"github.com/samlafell/mlbcore/pkg/oddsmath"
)

// SharpDetector implements spec.md §4.5's per-line sharp-action rule:
// both sides' bets/money percentages must be present, a side is "heavy"
// once |money_pct - bets_pct| clears DivergenceThreshold points, and
// public_fade additionally fires when one side is bet heavily by the
// public but money doesn't follow.
type SharpDetector struct {
	DivergenceThreshold   float64
	FadeBetsPctThreshold  float64
	FadeMoneyPctThreshold float64
}

// NewSharpDetector builds a SharpDetector at spec.md §4.5's stated
// thresholds (15-point divergence, 75/60 fade split).
func NewSharpDetector() *SharpDetector {
	return &SharpDetector{
		DivergenceThreshold:   15,
		FadeBetsPctThreshold:  75,
		FadeMoneyPctThreshold: 60,
	}
}

// Detect returns line with SharpActionTag and PublicFade set. Lines
// missing either side's percentages are returned unchanged: the rule
// requires both percentages present.
func (d *SharpDetector) Detect(line models.BettingLine) models.BettingLine {
	home, away := line.HomeSplit, line.AwaySplit
	if home.BetsPct == nil || home.MoneyPct == nil || away.BetsPct == nil || away.MoneyPct == nil {
		return line
	}

	homeDiv := oddsmath.Divergence(*home.BetsPct, *home.MoneyPct)
	awayDiv := oddsmath.Divergence(*away.BetsPct, *away.MoneyPct)

	line.SharpActionTag = models.SharpNone
	switch {
	case math.Abs(homeDiv) >= d.DivergenceThreshold && math.Abs(homeDiv) >= math.Abs(awayDiv):
		line.SharpActionTag = sharpTagForSide(line.Market, "home")
	case math.Abs(awayDiv) >= d.DivergenceThreshold:
		line.SharpActionTag = sharpTagForSide(line.Market, "away")
	}

	line.PublicFade = (*home.BetsPct >= d.FadeBetsPctThreshold && *home.MoneyPct < d.FadeMoneyPctThreshold) ||
		(*away.BetsPct >= d.FadeBetsPctThreshold && *away.MoneyPct < d.FadeMoneyPctThreshold)

	return line
}

// sharpTagForSide maps a generic "home"/"away" side to the market-specific
// tag spec.md §3 defines. Total-market splits follow the home=over,
// away=under convention used throughout staging/curated (see sidePrices
// in movement.go).
func sharpTagForSide(market models.Market, side string) models.SharpActionTag {
	if market == models.MarketTotal {
		if side == "home" {
			return models.SharpHeavyOver
		}
		return models.SharpHeavyUnder
	}
	if side == "home" {
		return models.SharpHeavyHome
	}
	return models.SharpHeavyAway
}
