package health

import (
	"fmt"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// patternBinSize buckets attempts for DetectPattern's autocorrelation scan.
const patternBinSize = 5 * time.Minute

// CheckAlerts runs PredictFailureProbability and DetectPattern against
// every tracked collector's recent history, alongside the degradation flag
// Record already maintains, and returns the alerts spec.md §4.7 names:
// predicted_failure, failure_pattern, and performance_degradation. Tracker
// does not import internal/alerting; the caller dispatches the result
// through an alerting.Dispatcher, the same split orchestrator.HealthRecorder
// uses to keep internal/orchestrator from importing internal/health.
func (t *Tracker) CheckAlerts() []models.Alert {
	var alerts []models.Alert
	for _, name := range t.Names() {
		state := t.Snapshot(name)
		attempts := t.RecentAttempts(name)

		prob := PredictFailureProbability(attempts, state.CircuitState)
		t.SetFailureProbability(name, prob)
		if prob >= PredictedFailureThreshold {
			alerts = append(alerts, models.Alert{
				AlertType:     "predicted_failure",
				Severity:      models.SeverityWarning,
				Collector:     name,
				CorrelationID: fmt.Sprintf("%s:predicted_failure", name),
				Message:       fmt.Sprintf("%s: predicted failure probability %.2f exceeds threshold %.2f", name, prob, PredictedFailureThreshold),
				Context:       map[string]interface{}{"probability": prob},
				CreatedAt:     time.Now().UTC(),
			})
		}

		if pattern, found := DetectPattern(name, attempts, patternBinSize); found {
			alerts = append(alerts, models.Alert{
				AlertType:     "failure_pattern",
				Severity:      models.SeverityWarning,
				Collector:     name,
				CorrelationID: fmt.Sprintf("%s:failure_pattern", name),
				Message:       fmt.Sprintf("%s: periodic failures roughly every %s (confidence %.2f)", name, pattern.PeriodEstimate, pattern.Confidence),
				Context:       map[string]interface{}{"period_estimate_s": pattern.PeriodEstimate.Seconds(), "confidence": pattern.Confidence},
				CreatedAt:     time.Now().UTC(),
			})
		}

		if state.Degraded {
			alerts = append(alerts, models.Alert{
				AlertType:     "performance_degradation",
				Severity:      models.SeverityWarning,
				Collector:     name,
				CorrelationID: fmt.Sprintf("%s:performance_degradation", name),
				Message:       fmt.Sprintf("%s: degraded below baseline success rate or above baseline p95 latency", name),
				CreatedAt:     time.Now().UTC(),
			})
		}
	}
	return alerts
}
