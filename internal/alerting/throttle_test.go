package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/pkg/models"
)

func newTestThrottler(t *testing.T, cfg config.ThrottleBySeverity) (*Throttler, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewThrottler(client, cfg), mr
}

func TestThrottler_AllowsFirstThenSuppressesWithinWindow(t *testing.T) {
	throttler, _ := newTestThrottler(t, config.ThrottleBySeverity{WarningS: 600})
	alert := models.Alert{AlertType: "performance_degradation", Collector: "primary_odds", Severity: models.SeverityWarning}

	first, err := throttler.Allow(context.Background(), alert)
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if !first {
		t.Fatal("expected the first alert of its kind to be allowed")
	}

	second, err := throttler.Allow(context.Background(), alert)
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if second {
		t.Error("expected a repeat alert within the throttle window to be suppressed")
	}
}

func TestThrottler_AllowsAgainAfterWindowExpires(t *testing.T) {
	throttler, mr := newTestThrottler(t, config.ThrottleBySeverity{CriticalS: 1})
	alert := models.Alert{AlertType: "predicted_failure", Collector: "consensus_splits", Severity: models.SeverityCritical}

	if _, err := throttler.Allow(context.Background(), alert); err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	mr.FastForward(2 * time.Second)

	allowed, err := throttler.Allow(context.Background(), alert)
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if !allowed {
		t.Error("expected the alert to be allowed again once its throttle window expired")
	}
}

func TestThrottler_DifferentCollectorsAreIndependent(t *testing.T) {
	throttler, _ := newTestThrottler(t, config.ThrottleBySeverity{InfoS: 600})
	a := models.Alert{AlertType: "recovery_action", Collector: "primary_odds", Severity: models.SeverityInfo}
	b := models.Alert{AlertType: "recovery_action", Collector: "consensus_splits", Severity: models.SeverityInfo}

	allowA, _ := throttler.Allow(context.Background(), a)
	allowB, _ := throttler.Allow(context.Background(), b)
	if !allowA || !allowB {
		t.Error("expected alerts for different collectors to throttle independently")
	}
}
