// Package alerting implements the AlertSink fan-out and throttling of
// spec.md §4.7/§6: console, webhook, Slack, and email sinks behind a single
// throttled dispatcher. Grounded on
// XavierBriggs-Services/alert-service/internal/{filter,dedup,notifier}.
package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/pkg/models"
)

// Throttler suppresses repeat alerts of the same type/collector/severity
// within a severity-tiered window (spec.md §4.7: "throttle identical alerts
// to one per 5-15 minutes depending on severity"). Grounded on
// alert-service/internal/dedup.Deduplicator's Redis SETNX-with-TTL key
// pattern, keyed here on (alert_type, collector, severity) instead of a
// hash of opportunity legs.
type Throttler struct {
	client *redis.Client
	cfg    config.ThrottleBySeverity
}

// NewThrottler builds a Throttler backed by an existing Redis client.
func NewThrottler(client *redis.Client, cfg config.ThrottleBySeverity) *Throttler {
	return &Throttler{client: client, cfg: cfg}
}

// Allow reports whether alert should be delivered now, atomically marking
// its throttle key as spent for the severity's window if so.
func (t *Throttler) Allow(ctx context.Context, alert models.Alert) (bool, error) {
	window := t.windowFor(alert.Severity)
	key := fmt.Sprintf("alert:throttle:%s:%s:%s", alert.AlertType, alert.Collector, alert.Severity)

	ok, err := t.client.SetNX(ctx, key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("alerting: throttle check: %w", err)
	}
	return ok, nil
}

func (t *Throttler) windowFor(severity models.AlertSeverity) time.Duration {
	switch severity {
	case models.SeverityCritical:
		return secondsOrDefault(t.cfg.CriticalS, 5*time.Minute)
	case models.SeverityWarning:
		return secondsOrDefault(t.cfg.WarningS, 10*time.Minute)
	default:
		return secondsOrDefault(t.cfg.InfoS, 15*time.Minute)
	}
}

func secondsOrDefault(s int, fallback time.Duration) time.Duration {
	if s <= 0 {
		return fallback
	}
	return time.Duration(s) * time.Second
}
