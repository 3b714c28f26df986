// Package collectors holds the shared scaffolding every concrete source
// collector (primaryodds, splits, splitpct, schedule, oddscompare) builds
// on: rate limiting, circuit breaking, retry, and the HTTP fetch-then-wrap
// sequence spec.md §4.1 describes as the Fetch contract.
package collectors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/internal/collectors/breaker"
	"github.com/samlafell/mlbcore/internal/collectors/httpfetch"
	"github.com/samlafell/mlbcore/internal/collectors/ratelimit"
	"github.com/samlafell/mlbcore/internal/collectors/retry"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// Config is the per-collector tuning spec.md §6's collectors[source] section
// carries.
type Config struct {
	Name                     string
	BaseURL                  string
	Timeout                  time.Duration
	RateLimitRPS             float64
	RateLimitRPH             float64
	Burst                    int
	RetryMaxAttempts         int
	RetryInitialBackoff      time.Duration
	CircuitBreakerThreshold  uint32
	CircuitBreakerCooldown   time.Duration
	Headers                  map[string]string
}

// Base implements the rate-limit/breaker/retry plumbing common to every
// collector; a concrete collector embeds Base and supplies its own Collect,
// which builds the request paths. Payload parsing happens later, in the
// staging zone.
type Base struct {
	cfg     Config
	client  *httpfetch.Client
	limiter *ratelimit.Limiter
	cb      *breaker.Breaker

	lastAttempt time.Time
	lastOutcome models.AttemptOutcome
}

// NewBase wires one collector's rate limiter, circuit breaker, and HTTP
// client from cfg.
func NewBase(cfg Config) *Base {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &Base{
		cfg:     cfg,
		client:  httpfetch.New(cfg.BaseURL, cfg.Timeout, cfg.Headers),
		limiter: ratelimit.New(cfg.RateLimitRPS, cfg.Burst, cfg.RateLimitRPH),
		cb: breaker.New(breaker.Settings{
			Name:             cfg.Name,
			FailureThreshold: cfg.CircuitBreakerThreshold,
			CooldownInterval: cfg.CircuitBreakerCooldown,
		}),
	}
}

// Name returns the collector's configured source name.
func (b *Base) Name() string { return b.cfg.Name }

// Breaker exposes the collector's circuit breaker so the health tracker's
// recovery coordinator can reset it (spec.md §4.7's reset/probe/revalidate
// sequence).
func (b *Base) Breaker() *breaker.Breaker { return b.cb }

// Config exposes the collector's tuning so revalidation can check it
// without the caller keeping a separate copy.
func (b *Base) Config() Config { return b.cfg }

// FetchJSON runs one rate-limited, circuit-broken, retried GET against path,
// returning the decoded JSON payload. It is the single place the Fetch
// contract of spec.md §4.1 is enforced for every collector.
func (b *Base) FetchJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	policy := retry.NewPolicy(b.cfg.RetryMaxAttempts, b.cfg.RetryInitialBackoff)

	var payload map[string]interface{}
	err := policy.Execute(ctx, func() error {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		result, execErr := b.cb.Execute(func() (interface{}, error) {
			return b.client.GetJSON(ctx, path)
		})
		if execErr != nil {
			return execErr
		}
		payload = result.(map[string]interface{})
		return nil
	})

	b.lastAttempt = time.Now().UTC()
	if err != nil {
		b.lastOutcome = classifyOutcome(err)
		return nil, fmt.Errorf("%s: fetch %s: %w", b.cfg.Name, path, err)
	}
	b.lastOutcome = models.OutcomeOK
	return payload, nil
}

// WrapRaw builds a RawRecord from a successfully fetched payload.
func (b *Base) WrapRaw(externalID string, payload map[string]interface{}) models.RawRecord {
	return models.RawRecord{
		Source:       b.cfg.Name,
		ExternalID:   externalID,
		FetchedAtUTC: time.Now().UTC(),
		Payload:      payload,
		BatchID:      uuid.NewString(),
		ParseStatus:  models.ParseOK,
	}
}

// HealthProbe reports the collector's self-observed status. It performs no
// network I/O of its own; it reports the outcome of the most recent Fetch.
func (b *Base) HealthProbe(ctx context.Context) (contracts.HealthSnapshot, error) {
	return contracts.HealthSnapshot{
		Collector:    b.cfg.Name,
		CircuitState: b.cb.State(),
		LastAttempt:  b.lastAttempt,
		LastOutcome:  b.lastOutcome,
	}, nil
}

func classifyOutcome(err error) models.AttemptOutcome {
	switch {
	case err == context.DeadlineExceeded:
		return models.OutcomeTimeout
	default:
		return models.OutcomeNetworkError
	}
}

// logFetchFailure is a small helper so every concrete collector logs fetch
// failures the same structured way.
func logFetchFailure(source, path string, err error) {
	log.Warn().Str("collector", source).Str("path", path).Err(err).Msg("collector fetch failed")
}
