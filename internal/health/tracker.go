package health

import (
	"sync"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

const ringBufferCapacity = 1000

// dailyStat is one day's rolled-up success rate and p95 latency, used to
// compute the trailing 7-day baseline spec.md §4.7 calls for. The 1,000-slot
// ring buffer alone cannot hold 7 days of history for a busy collector, so
// baselines are tracked separately as a capped history of daily summaries.
type dailyStat struct {
	day         string
	successRate float64
	p95LatencyMs float64
}

type collectorState struct {
	mu      sync.Mutex
	buf     *ringBuffer
	daily   []dailyStat
	state   models.HealthState
}

// Tracker maintains rolling HealthState per collector from a stream of
// CollectionAttempt events (spec.md §4.7).
type Tracker struct {
	mu          sync.RWMutex
	collectors  map[string]*collectorState
	degradationSuccessRatio float64
	degradationLatencyRatio float64
}

// New builds a Tracker. degradationSuccessRatio/degradationLatencyRatio come
// from config.HealthConfig, defaulting to spec.md §4.7's 0.7/4.0.
func New(degradationSuccessRatio, degradationLatencyRatio float64) *Tracker {
	if degradationSuccessRatio <= 0 {
		degradationSuccessRatio = 0.7
	}
	if degradationLatencyRatio <= 0 {
		degradationLatencyRatio = 4.0
	}
	return &Tracker{
		collectors:              make(map[string]*collectorState),
		degradationSuccessRatio: degradationSuccessRatio,
		degradationLatencyRatio: degradationLatencyRatio,
	}
}

func (t *Tracker) stateFor(collector string) *collectorState {
	t.mu.RLock()
	cs, ok := t.collectors[collector]
	t.mu.RUnlock()
	if ok {
		return cs
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if cs, ok := t.collectors[collector]; ok {
		return cs
	}
	cs = &collectorState{
		buf:   newRingBuffer(ringBufferCapacity),
		state: models.HealthState{Collector: collector, FailuresByCategory: make(map[string]int64), CircuitState: models.CircuitClosed},
	}
	t.collectors[collector] = cs
	return cs
}

// Record ingests one CollectionAttempt, updating rolling counts, mean/p95
// latency, consecutive-failure run, and the degradation flag.
func (t *Tracker) Record(attempt models.CollectionAttempt) {
	cs := t.stateFor(attempt.Collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.buf.push(attempt)
	cs.state.Attempts++
	if attempt.Success() {
		cs.state.SuccessCount++
		cs.state.ConsecutiveFailures = 0
	} else {
		cs.state.ConsecutiveFailures++
		if attempt.ErrorCategory != "" {
			cs.state.FailuresByCategory[attempt.ErrorCategory]++
		}
	}

	recent := cs.buf.snapshot()
	latencies := make([]float64, 0, len(recent))
	for _, a := range recent {
		latencies = append(latencies, float64(a.ResponseTimeMs))
	}
	if len(latencies) > 0 {
		cs.state.MeanLatencyMs = mean(latencies)
		cs.state.P95LatencyMs = percentile(latencies, 95)
	}

	cs.recomputeDegradation(t.degradationSuccessRatio, t.degradationLatencyRatio)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// successRateOver computes the success rate of attempts within the last
// window, looking back from the most recent attempt in the buffer.
func successRateOver(attempts []models.CollectionAttempt, window time.Duration) (rate float64, n int) {
	if len(attempts) == 0 {
		return 0, 0
	}
	cutoff := attempts[len(attempts)-1].EndedAt.Add(-window)
	var successes, total int
	for _, a := range attempts {
		if a.EndedAt.Before(cutoff) {
			continue
		}
		total++
		if a.Success() {
			successes++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(successes) / float64(total), total
}

// recomputeDegradation implements spec.md §4.7's degradation rule: flag when
// the current window's success rate is below baseline*successRatio, or p95
// latency exceeds baseline*latencyRatio. Must be called with cs.mu held.
func (cs *collectorState) recomputeDegradation(successRatio, latencyRatio float64) {
	attempts := cs.buf.snapshot()
	rate5m, _ := successRateOver(attempts, 5*time.Minute)

	degraded := false
	if cs.state.BaselineSuccessRate > 0 && rate5m < cs.state.BaselineSuccessRate*successRatio {
		degraded = true
	}
	if cs.state.BaselineP95LatencyMs > 0 && cs.state.P95LatencyMs > cs.state.BaselineP95LatencyMs*latencyRatio {
		degraded = true
	}
	cs.state.Degraded = degraded
}

// RollBaseline appends one daily summary to the collector's history (capped
// at 7 entries): the success rate of buffered attempts from the last 24h
// before the newest one, and the p95 latency of every buffered attempt. It
// then recomputes the trailing baseline as the median of those entries. It
// runs once per call, so callers invoke it once per day.
func (t *Tracker) RollBaseline(collector string, day string) {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	attempts := cs.buf.snapshot()
	rate, n := successRateOver(attempts, 24*time.Hour)
	if n == 0 {
		return
	}

	latencies := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		latencies = append(latencies, float64(a.ResponseTimeMs))
	}
	stat := dailyStat{day: day, successRate: rate, p95LatencyMs: percentile(latencies, 95)}

	cs.daily = append(cs.daily, stat)
	if len(cs.daily) > 7 {
		cs.daily = cs.daily[len(cs.daily)-7:]
	}

	rates := make([]float64, len(cs.daily))
	lat := make([]float64, len(cs.daily))
	for i, d := range cs.daily {
		rates[i] = d.successRate
		lat[i] = d.p95LatencyMs
	}
	cs.state.BaselineSuccessRate = median(rates)
	cs.state.BaselineP95LatencyMs = median(lat)
}

// Snapshot returns a copy of collector's current HealthState.
func (t *Tracker) Snapshot(collector string) models.HealthState {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return copyState(cs.state)
}

// All returns a snapshot of every tracked collector's HealthState.
func (t *Tracker) All() map[string]models.HealthState {
	t.mu.RLock()
	names := make([]string, 0, len(t.collectors))
	for name := range t.collectors {
		names = append(names, name)
	}
	t.mu.RUnlock()

	out := make(map[string]models.HealthState, len(names))
	for _, name := range names {
		out[name] = t.Snapshot(name)
	}
	return out
}

// SetCircuitState records the breaker state reported by a collector's
// breaker.Breaker so Snapshot/All reflect it without importing that package.
func (t *Tracker) SetCircuitState(collector string, state models.CircuitState, openedAt time.Time) {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.state.CircuitState = state
	if state == models.CircuitOpen {
		cs.state.CircuitOpenedAt = openedAt
	}
}

// SetFailureProbability records the failure-probability prediction
// (spec.md §4.7) computed for collector.
func (t *Tracker) SetFailureProbability(collector string, prob float64) {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.state.FailureProbability = prob
}

// RecentFailures returns the failure outcomes in collector's ring buffer,
// used by pattern detection and failure-probability prediction.
func (t *Tracker) RecentFailures(collector string) []models.CollectionAttempt {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	all := cs.buf.snapshot()
	out := make([]models.CollectionAttempt, 0, len(all))
	for _, a := range all {
		if !a.Success() {
			out = append(out, a)
		}
	}
	return out
}

// RecentAttempts returns every buffered attempt for collector, newest last.
func (t *Tracker) RecentAttempts(collector string) []models.CollectionAttempt {
	cs := t.stateFor(collector)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.buf.snapshot()
}

// Names returns every collector currently tracked.
func (t *Tracker) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.collectors))
	for name := range t.collectors {
		out = append(out, name)
	}
	return out
}

func copyState(s models.HealthState) models.HealthState {
	cp := s
	cp.FailuresByCategory = make(map[string]int64, len(s.FailuresByCategory))
	for k, v := range s.FailuresByCategory {
		cp.FailuresByCategory[k] = v
	}
	return cp
}
