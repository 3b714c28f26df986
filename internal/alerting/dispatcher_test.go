package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

var errBoom = errors.New("boom")

type fakeSink struct {
	name string
	sent []models.Alert
	err  error
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) Send(ctx context.Context, alert models.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, alert)
	return nil
}

func TestDispatcher_DeliversToAllSinksWithoutThrottler(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	dispatcher := NewDispatcher([]contracts.AlertSink{a, b}, nil)

	alert := models.Alert{AlertType: "performance_degradation", Collector: "primary_odds", CorrelationID: "corr-1", Severity: models.SeverityWarning}
	if err := dispatcher.Dispatch(context.Background(), alert); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("expected both sinks to receive the alert, got a=%d b=%d", len(a.sent), len(b.sent))
	}
}

func TestDispatcher_OneFailingSinkDoesNotBlockOthers(t *testing.T) {
	failing := &fakeSink{name: "failing", err: errBoom}
	ok := &fakeSink{name: "ok"}
	dispatcher := NewDispatcher([]contracts.AlertSink{failing, ok}, nil)

	alert := models.Alert{AlertType: "predicted_failure", Collector: "consensus_splits", CorrelationID: "corr-2"}
	if err := dispatcher.Dispatch(context.Background(), alert); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(ok.sent) != 1 {
		t.Error("expected the healthy sink to still receive the alert")
	}
}

func TestDispatcher_AcknowledgeAndResolve(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil)
	alert := models.Alert{AlertType: "failure_pattern", CorrelationID: "corr-3"}
	_ = dispatcher.Dispatch(context.Background(), alert)

	acked, ok := dispatcher.Acknowledge("corr-3")
	if !ok || !acked.Acknowledged {
		t.Fatal("expected Acknowledge to mark the alert acknowledged")
	}

	resolved, ok := dispatcher.Resolve("corr-3")
	if !ok || !resolved.Resolved {
		t.Fatal("expected Resolve to mark the alert resolved")
	}

	if _, ok := dispatcher.Acknowledge("missing"); ok {
		t.Error("expected Acknowledge on an unknown correlation id to report not-found")
	}
}
