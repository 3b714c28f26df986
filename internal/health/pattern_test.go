package health

import (
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestDetectPattern_FindsPeriodicFailures(t *testing.T) {
	base := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	binSize := time.Minute
	var attempts []models.CollectionAttempt

	for i := 0; i < 60; i++ {
		outcome := models.OutcomeOK
		if i%5 == 0 {
			outcome = models.OutcomeTimeout
		}
		attempts = append(attempts, attempt("primary_odds", outcome, base.Add(time.Duration(i)*binSize), 50))
	}

	pattern, ok := DetectPattern("primary_odds", attempts, binSize)
	if !ok {
		t.Fatal("expected a periodic pattern to be detected")
	}
	if pattern.PeriodEstimate != 5*binSize {
		t.Errorf("PeriodEstimate = %v, want %v", pattern.PeriodEstimate, 5*binSize)
	}
	if pattern.Confidence < patternConfidenceThreshold {
		t.Errorf("Confidence = %v, want >= %v", pattern.Confidence, patternConfidenceThreshold)
	}
}

func TestDetectPattern_NoPatternInSparseData(t *testing.T) {
	base := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	attempts := []models.CollectionAttempt{
		attempt("primary_odds", models.OutcomeOK, base, 50),
		attempt("primary_odds", models.OutcomeTimeout, base.Add(time.Minute), 50),
	}

	_, ok := DetectPattern("primary_odds", attempts, time.Minute)
	if ok {
		t.Error("expected no pattern with too few bins")
	}
}

func TestAutocorrelation_ConstantSeriesHasNoVariance(t *testing.T) {
	series := []float64{1, 1, 1, 1, 1}
	if got := autocorrelation(series, 1); got != 0 {
		t.Errorf("autocorrelation of a constant series = %v, want 0", got)
	}
}
