package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/samlafell/mlbcore/internal/collectors/breaker"
	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/pkg/contracts"
)

// RecoveryAction names one step of the ordered recovery sequence spec.md
// §4.7 defines for an open circuit.
type RecoveryAction string

const (
	ActionResetBreaker     RecoveryAction = "reset_circuit_breaker"
	ActionForceProbe       RecoveryAction = "force_health_probe"
	ActionRevalidateConfig RecoveryAction = "revalidate_config"
)

// RecoveryOutcome logs the result of one recovery step (spec.md §4.7: "each
// attempt is logged as a recovery_action with outcome").
type RecoveryOutcome struct {
	Collector string
	Action    RecoveryAction
	Success   bool
	Detail    string
	At        time.Time
}

// RecoveryCoordinator runs the reset/probe/revalidate sequence against an
// open collector, at most once per cooldown interval per collector.
type RecoveryCoordinator struct {
	mu          sync.Mutex
	lastAttempt map[string]time.Time
	cooldown    time.Duration
}

// NewRecoveryCoordinator builds a coordinator enforcing cooldown between
// recovery attempts for the same collector.
func NewRecoveryCoordinator(cooldown time.Duration) *RecoveryCoordinator {
	return &RecoveryCoordinator{lastAttempt: make(map[string]time.Time), cooldown: cooldown}
}

// Attempt runs the recovery sequence for collectorName if its breaker is
// open and no attempt has run within the cooldown window. Returns nil if
// skipped (cooldown not elapsed).
func (r *RecoveryCoordinator) Attempt(ctx context.Context, now time.Time, collectorName string, br *breaker.Breaker, collector contracts.Collector, cfg config.CollectorConfig) []RecoveryOutcome {
	r.mu.Lock()
	last, ok := r.lastAttempt[collectorName]
	if ok && now.Sub(last) < r.cooldown {
		r.mu.Unlock()
		return nil
	}
	r.lastAttempt[collectorName] = now
	r.mu.Unlock()

	var outcomes []RecoveryOutcome

	br.Reset()
	outcomes = append(outcomes, RecoveryOutcome{
		Collector: collectorName, Action: ActionResetBreaker, Success: true,
		Detail: "breaker reset to closed", At: now,
	})

	snapshot, err := collector.HealthProbe(ctx)
	probeOK := err == nil
	detail := "probe succeeded"
	if err != nil {
		detail = fmt.Sprintf("probe failed: %v", err)
	} else {
		detail = fmt.Sprintf("probe reported outcome=%s", snapshot.LastOutcome)
	}
	outcomes = append(outcomes, RecoveryOutcome{
		Collector: collectorName, Action: ActionForceProbe, Success: probeOK,
		Detail: detail, At: now,
	})

	configOK, configDetail := revalidateConfig(cfg)
	outcomes = append(outcomes, RecoveryOutcome{
		Collector: collectorName, Action: ActionRevalidateConfig, Success: configOK,
		Detail: configDetail, At: now,
	})

	return outcomes
}

// revalidateConfig checks that a collector's base URL is set and, if it
// names an API key environment variable, that the variable is non-empty.
func revalidateConfig(cfg config.CollectorConfig) (bool, string) {
	if cfg.BaseURL == "" {
		return false, "base_url is empty"
	}
	if cfg.APIKeyEnv != "" {
		if v, ok := os.LookupEnv(cfg.APIKeyEnv); !ok || v == "" {
			return false, fmt.Sprintf("credential env var %s is unset", cfg.APIKeyEnv)
		}
	}
	return true, "configuration valid"
}
