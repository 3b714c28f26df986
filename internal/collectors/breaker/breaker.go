// Package breaker wraps github.com/sony/gobreaker into the per-source
// circuit breaker spec.md §4.1/§4.7 requires: configurable failure
// threshold and cooldown, with `circuit_open` short-circuiting without
// network I/O. Grounded on
// sawpanic-cryptorun/infra/breakers.Breaker, extended with a Settings type
// so the threshold/cooldown are config-driven per collector rather than
// hardcoded.
package breaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/samlafell/mlbcore/pkg/models"
)

// minRequestsForRateTrip is how many requests must land in one Interval
// window before the sustained-failure-rate trip condition is considered;
// below this, a single failure would otherwise look like 100% failure.
const minRequestsForRateTrip = 10

// maxCooldownMultiple caps the backoff-doubling ceiling at this multiple of
// the configured CooldownInterval (spec.md §4.7: "backoff doubling up to a
// ceiling").
const maxCooldownMultiple = 8

// Settings configures one collector's circuit breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32
	CooldownInterval time.Duration
}

// Breaker short-circuits calls to a failing collector. A failed half_open
// probe reopens the breaker with its cooldown doubled, up to a ceiling;
// a successful probe (closing the breaker) resets the cooldown back to its
// configured base.
type Breaker struct {
	mu              sync.Mutex
	cb              *gobreaker.CircuitBreaker
	settings        Settings
	currentCooldown time.Duration
}

// New builds a Breaker that trips after FailureThreshold consecutive
// failures, or after a sustained failure rate exceeding 50% across a 5
// minute window (spec.md §4.7), and stays open for CooldownInterval before
// probing again.
func New(settings Settings) *Breaker {
	b := &Breaker{settings: settings, currentCooldown: settings.CooldownInterval}
	b.cb = b.buildCircuit(b.currentCooldown)
	return b
}

func (b *Breaker) buildCircuit(cooldown time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     b.settings.Name,
		Timeout:  cooldown,
		Interval: 5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= b.settings.FailureThreshold {
				return true
			}
			if counts.Requests >= minRequestsForRateTrip {
				rate := float64(counts.TotalFailures) / float64(counts.Requests)
				if rate > 0.5 {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.mu.Lock()
			defer b.mu.Unlock()
			switch {
			case from == gobreaker.StateHalfOpen && to == gobreaker.StateOpen:
				next := b.currentCooldown * 2
				ceiling := b.settings.CooldownInterval * maxCooldownMultiple
				if next > ceiling {
					next = ceiling
				}
				b.currentCooldown = next
				b.cb = b.buildCircuit(next)
			case to == gobreaker.StateClosed:
				b.currentCooldown = b.settings.CooldownInterval
			}
		},
	})
}

// Execute runs fn through the breaker. When the breaker is open, fn is
// never called and gobreaker.ErrOpenState is returned, satisfying the
// "circuit_open short-circuits without network I/O" requirement.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	b.mu.Lock()
	cb := b.cb
	b.mu.Unlock()
	return cb.Execute(fn)
}

// State reports the breaker's current state as a models.CircuitState so
// callers can populate HealthSnapshot without importing gobreaker.
func (b *Breaker) State() models.CircuitState {
	b.mu.Lock()
	cb := b.cb
	b.mu.Unlock()
	switch cb.State() {
	case gobreaker.StateOpen:
		return models.CircuitOpen
	case gobreaker.StateHalfOpen:
		return models.CircuitHalfOpen
	default:
		return models.CircuitClosed
	}
}

// Reset forces the breaker back to closed with its cooldown restored to the
// configured base, used by the health tracker's recovery action (spec.md
// §4.7: "reset circuit breaker after cooldown").
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentCooldown = b.settings.CooldownInterval
	b.cb = b.buildCircuit(b.currentCooldown)
}
