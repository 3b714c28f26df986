package curated

import (
	"testing"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestUpsert_HigherQualityTierWins(t *testing.T) {
	existing := models.BettingLine{DataQuality: models.QualityLow, SourceReliabilityScore: 0.95}
	candidate := models.BettingLine{DataQuality: models.QualityHigh, SourceReliabilityScore: 0.50}

	got := Upsert(existing, candidate)
	if got.DataQuality != models.QualityHigh {
		t.Errorf("DataQuality = %v, want HIGH", got.DataQuality)
	}
}

func TestUpsert_EqualTierHigherReliabilityWins(t *testing.T) {
	existing := models.BettingLine{DataQuality: models.QualityMedium, SourceReliabilityScore: 0.60, Source: "a"}
	candidate := models.BettingLine{DataQuality: models.QualityMedium, SourceReliabilityScore: 0.90, Source: "b"}

	got := Upsert(existing, candidate)
	if got.Source != "b" {
		t.Errorf("Source = %q, want b (higher reliability)", got.Source)
	}
}

func TestUpsert_KeepsExistingOnLowerTier(t *testing.T) {
	existing := models.BettingLine{DataQuality: models.QualityHigh, Source: "a"}
	candidate := models.BettingLine{DataQuality: models.QualityPoor, Source: "b"}

	got := Upsert(existing, candidate)
	if got.Source != "a" {
		t.Errorf("Source = %q, want a (existing, higher tier)", got.Source)
	}
}
