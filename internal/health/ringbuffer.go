// Package health implements the collection-health tracker of spec.md §4.7:
// per-collector rolling statistics, degradation detection, periodic pattern
// detection, failure-probability prediction, and circuit-breaker-driven
// recovery. Grounded on
// XavierBriggs-Services/game-stats-service/internal/poller's per-sport
// metrics bookkeeping, extended with the ring buffer, percentile math, and
// autocorrelation pattern detection spec.md §4.7 adds.
package health

import "github.com/samlafell/mlbcore/pkg/models"

// ringBuffer is a fixed-capacity circular buffer of CollectionAttempts. Once
// full, the oldest attempt is overwritten (spec.md §4.7: "ring buffers
// (capacity 1,000 per collector)").
type ringBuffer struct {
	items []models.CollectionAttempt
	head  int
	size  int
	cap   int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{items: make([]models.CollectionAttempt, capacity), cap: capacity}
}

func (r *ringBuffer) push(a models.CollectionAttempt) {
	r.items[r.head] = a
	r.head = (r.head + 1) % r.cap
	if r.size < r.cap {
		r.size++
	}
}

// snapshot returns the buffered attempts in chronological order.
func (r *ringBuffer) snapshot() []models.CollectionAttempt {
	out := make([]models.CollectionAttempt, 0, r.size)
	if r.size < r.cap {
		out = append(out, r.items[:r.size]...)
		return out
	}
	out = append(out, r.items[r.head:]...)
	out = append(out, r.items[:r.head]...)
	return out
}
