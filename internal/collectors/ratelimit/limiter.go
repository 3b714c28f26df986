// Package ratelimit wraps golang.org/x/time/rate into the per-source
// token-bucket limiter spec.md §4.1 requires: a declared requests-per-second
// budget with a capped burst. Grounded on
// sawpanic-cryptorun/internal/net/ratelimit.Limiter, simplified from its
// per-host map to a single limiter per collector (each collector already
// owns one rate budget).
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter enforces both a per-second and a per-hour request budget
// (spec.md §6: collectors[source].rate_limit_rps / rate_limit_rph), each a
// separate token bucket so a burst that satisfies the per-second limit can
// still be throttled by the hourly ceiling.
type Limiter struct {
	perSecond *rate.Limiter
	perHour   *rate.Limiter
}

// New builds a Limiter allowing rps requests per second (bursting up to
// burst) and rph requests per hour. The hourly bucket's burst is capped at
// rph. A zero or negative rph disables the hourly ceiling.
func New(rps float64, burst int, rph float64) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{perSecond: rate.NewLimiter(rate.Limit(rps), burst)}
	if rph > 0 {
		hourBurst := burst
		if float64(hourBurst) > rph {
			hourBurst = int(rph)
		}
		if hourBurst < 1 {
			hourBurst = 1
		}
		l.perHour = rate.NewLimiter(rate.Limit(rph/3600.0), hourBurst)
	}
	return l
}

// Wait blocks until a request is permitted under both budgets or ctx is
// cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.perSecond.Wait(ctx); err != nil {
		return err
	}
	if l.perHour == nil {
		return nil
	}
	return l.perHour.Wait(ctx)
}

// Allow reports whether a request may proceed right now under both budgets,
// without blocking.
func (l *Limiter) Allow() bool {
	if !l.perSecond.Allow() {
		return false
	}
	if l.perHour == nil {
		return true
	}
	return l.perHour.Allow()
}
