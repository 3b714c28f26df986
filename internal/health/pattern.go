package health

import (
	"math"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// minBinsForPattern is the fewest time bins a failure timeline needs before
// an autocorrelation peak is trusted; fewer bins make any lag's coefficient
// statistically meaningless.
const minBinsForPattern = 20

// patternConfidenceThreshold is spec.md §4.7's 0.70 minimum autocorrelation
// confidence before a periodic pattern is reported.
const patternConfidenceThreshold = 0.70

// FailurePattern is the periodic-failure record spec.md §4.7's
// `failure_pattern` emission describes.
type FailurePattern struct {
	Collector      string
	PeriodEstimate time.Duration
	Confidence     float64
}

// DetectPattern buckets attempts' failures into binSize-wide bins and looks
// for an autocorrelation peak across candidate lags, reporting the
// strongest lag whose coefficient meets patternConfidenceThreshold.
// Grounded on the ring-buffer-fed rolling-stats shape of
// XavierBriggs-Services/game-stats-service/internal/poller's metrics
// bookkeeping, extended with the autocorrelation math spec.md §4.7 adds (no
// pack repo performs time-series pattern detection).
func DetectPattern(collector string, attempts []models.CollectionAttempt, binSize time.Duration) (FailurePattern, bool) {
	if len(attempts) == 0 {
		return FailurePattern{}, false
	}

	start := attempts[0].EndedAt
	end := attempts[len(attempts)-1].EndedAt
	span := end.Sub(start)
	if span <= 0 {
		return FailurePattern{}, false
	}
	bins := int(span/binSize) + 1
	if bins < minBinsForPattern {
		return FailurePattern{}, false
	}

	series := make([]float64, bins)
	for _, a := range attempts {
		if a.Success() {
			continue
		}
		idx := int(a.EndedAt.Sub(start) / binSize)
		if idx >= 0 && idx < bins {
			series[idx]++
		}
	}

	maxLag := bins / 2
	bestLag := 0
	bestCoef := 0.0
	for lag := 1; lag < maxLag; lag++ {
		coef := autocorrelation(series, lag)
		if coef > bestCoef {
			bestCoef = coef
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCoef < patternConfidenceThreshold {
		return FailurePattern{}, false
	}
	return FailurePattern{
		Collector:      collector,
		PeriodEstimate: time.Duration(bestLag) * binSize,
		Confidence:     bestCoef,
	}, true
}

// autocorrelation computes the Pearson correlation of series against itself
// shifted by lag bins.
func autocorrelation(series []float64, lag int) float64 {
	n := len(series) - lag
	if n <= 1 {
		return 0
	}
	meanVal := mean(series)

	var num, denomA, denomB float64
	for i := 0; i < n; i++ {
		da := series[i] - meanVal
		db := series[i+lag] - meanVal
		num += da * db
		denomA += da * da
		denomB += db * db
	}
	denom := math.Sqrt(denomA * denomB)
	if denom == 0 {
		return 0
	}
	return num / denom
}
