package health

import (
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestPredictFailureProbability_HealthyCollectorIsLow(t *testing.T) {
	base := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	var attempts []models.CollectionAttempt
	for i := 0; i < 20; i++ {
		attempts = append(attempts, attempt("primary_odds", models.OutcomeOK, base.Add(time.Duration(i)*time.Minute), 50))
	}

	got := PredictFailureProbability(attempts, models.CircuitClosed)
	if got > 0.1 {
		t.Errorf("probability = %v, want near 0 for an all-success, flat-latency collector", got)
	}
}

func TestPredictFailureProbability_OpenCircuitWithFailuresIsHigh(t *testing.T) {
	base := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	var attempts []models.CollectionAttempt
	for i := 0; i < 20; i++ {
		attempts = append(attempts, attempt("primary_odds", models.OutcomeTimeout, base.Add(time.Duration(i)*time.Minute), 50))
	}

	got := PredictFailureProbability(attempts, models.CircuitOpen)
	if got < PredictedFailureThreshold {
		t.Errorf("probability = %v, want >= %v for all-failure collector with an open circuit", got, PredictedFailureThreshold)
	}
}

func TestPredictFailureProbability_EmptyAttemptsIsZero(t *testing.T) {
	if got := PredictFailureProbability(nil, models.CircuitClosed); got != 0 {
		t.Errorf("probability = %v, want 0 for no data", got)
	}
}
