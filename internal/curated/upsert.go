package curated

import "github.com/samlafell/mlbcore/pkg/models"

// qualityRank orders QualityTier from least to most trustworthy, the
// primary key of spec.md §4.5's upsert comparison.
var qualityRank = map[models.QualityTier]int{
	models.QualityPoor:   1,
	models.QualityLow:    2,
	models.QualityMedium: 3,
	models.QualityHigh:   4,
}

// Upsert resolves two BettingLine rows sharing the same
// (game, sportsbook, market, odds_timestamp) key (spec.md §4.5): the
// highest data_quality tier wins, ties broken by source_reliability_score.
func Upsert(existing, candidate models.BettingLine) models.BettingLine {
	existingRank := qualityRank[existing.DataQuality]
	candidateRank := qualityRank[candidate.DataQuality]

	if candidateRank > existingRank {
		return candidate
	}
	if candidateRank < existingRank {
		return existing
	}
	if candidate.SourceReliabilityScore > existing.SourceReliabilityScore {
		return candidate
	}
	return existing
}
