package health

import (
	"math"

	"github.com/samlafell/mlbcore/pkg/models"
)

// PredictedFailureThreshold is spec.md §4.7's 0.8 trigger for a
// predicted_failure alert.
const PredictedFailureThreshold = 0.8

const (
	weightFailureRate  = 0.6
	weightLatencyTrend = 0.2
	weightCircuitState = 0.2
)

// PredictFailureProbability combines recent failure rate, latency trend
// slope, and circuit-breaker state into a single probability in [0,1]
// (spec.md §4.7: "weighted combination of recent failure rate, latency
// trend slope, and circuit-breaker history"). Grounded on the same
// rolling-window bookkeeping as DetectPattern; the regression-slope math is
// hand-rolled since no pack repo forecasts collector failure.
func PredictFailureProbability(attempts []models.CollectionAttempt, circuitState models.CircuitState) float64 {
	if len(attempts) == 0 {
		return 0
	}

	var failures int
	latencies := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if !a.Success() {
			failures++
		}
		latencies = append(latencies, float64(a.ResponseTimeMs))
	}
	failureRate := float64(failures) / float64(len(attempts))

	slope := latencyTrendSlope(latencies)
	normalizedSlope := clamp01(slope)

	var circuitFactor float64
	switch circuitState {
	case models.CircuitOpen:
		circuitFactor = 1.0
	case models.CircuitHalfOpen:
		circuitFactor = 0.5
	default:
		circuitFactor = 0.0
	}

	prob := weightFailureRate*failureRate + weightLatencyTrend*normalizedSlope + weightCircuitState*circuitFactor
	return clamp01(prob)
}

// latencyTrendSlope fits a simple linear regression over latencies (indexed
// by position) and normalizes the slope against the series mean so a
// steadily worsening trend trends toward 1 regardless of absolute scale.
func latencyTrendSlope(latencies []float64) float64 {
	n := len(latencies)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range latencies {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (nf*sumXY - sumX*sumY) / denom

	meanY := sumY / nf
	if meanY == 0 {
		return 0
	}
	// Normalize: a slope of meanY/n (latency doubling linearly across the
	// whole window) maps to 1.0.
	return slope * nf / meanY
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
