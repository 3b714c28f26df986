package staging

import "github.com/samlafell/mlbcore/pkg/models"

// reliabilityTable assigns each source a fixed reliability score used in
// quality scoring (spec.md §4.3: "reliability = reliability_table[source]").
// Primary-odds feeds are weighted highest since every downstream market
// reconciles onto them; schedule is purely identity data and never scored
// as a betting-line source.
var reliabilityTable = map[string]float64{
	"primary_odds":     0.95,
	"consensus_splits": 0.85,
	"public_bet_pct":   0.80,
	"odds_compare":     0.75,
}

// DefaultReliability is used for an unrecognized source rather than
// treating it as perfectly reliable.
const DefaultReliability = 0.50

// SourceReliability returns the configured reliability score for source.
func SourceReliability(source string) float64 {
	if score, ok := reliabilityTable[source]; ok {
		return score
	}
	return DefaultReliability
}

// expectedFieldsByMarket is the denominator for completeness scoring:
// every field a fully-populated BettingLine of that market would carry,
// beyond the universal fields every market shares.
var expectedFieldsByMarket = map[models.Market]int{
	models.MarketMoneyline: 2, // home_price, away_price
	models.MarketSpread:    3, // spread_line, home_price, away_price
	models.MarketTotal:     3, // total_line, over_price, under_price
}

// Completeness computes filled_fields / expected_fields for one market's
// price fields, plus the four universal volume-split fields (bets and money
// percentage for each side) (spec.md §4.3).
func Completeness(market models.Market, filledPriceFields int, homeSplit, awaySplit models.VolumeSplit) float64 {
	expected := expectedFieldsByMarket[market]
	if expected == 0 {
		expected = 1
	}
	filledSplitFields := 0
	totalSplitFields := 4
	if homeSplit.BetsPct != nil {
		filledSplitFields++
	}
	if homeSplit.MoneyPct != nil {
		filledSplitFields++
	}
	if awaySplit.BetsPct != nil {
		filledSplitFields++
	}
	if awaySplit.MoneyPct != nil {
		filledSplitFields++
	}
	total := expected + totalSplitFields
	filled := filledPriceFields + filledSplitFields
	if filled > total {
		filled = total
	}
	return float64(filled) / float64(total)
}

// ClassifyQuality buckets a line's (completeness, reliability, sportsbook
// presence) triple into the four-tier scale of spec.md §4.3:
// HIGH if both >=0.9 and sportsbook id present; MEDIUM if both >=0.6;
// LOW if either >=0.3; POOR otherwise.
func ClassifyQuality(completeness, reliability float64, sportsbookIDPresent bool) models.QualityTier {
	switch {
	case completeness >= 0.9 && reliability >= 0.9 && sportsbookIDPresent:
		return models.QualityHigh
	case completeness >= 0.6 && reliability >= 0.6:
		return models.QualityMedium
	case completeness >= 0.3 || reliability >= 0.3:
		return models.QualityLow
	default:
		return models.QualityPoor
	}
}
