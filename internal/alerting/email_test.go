package alerting

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestEmailSink_SendsExpectedEnvelope(t *testing.T) {
	var gotFrom string
	var gotTo []string
	var gotMsg string

	sink := NewEmailSink("smtp.internal:25", "pipeline@example.com", "oncall@example.com")
	sink.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotFrom = from
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	alert := models.Alert{AlertType: "predicted_failure", Severity: models.SeverityCritical, Collector: "primary_odds", CorrelationID: "corr-7", Message: "failure likely within the hour"}
	if err := sink.Send(context.Background(), alert); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotFrom != "pipeline@example.com" {
		t.Errorf("from = %q, want pipeline@example.com", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "oncall@example.com" {
		t.Errorf("to = %v, want [oncall@example.com]", gotTo)
	}
	if !strings.Contains(gotMsg, "failure likely within the hour") || !strings.Contains(gotMsg, "corr-7") {
		t.Errorf("message body missing expected content: %q", gotMsg)
	}
}

func TestEmailSink_PropagatesSendError(t *testing.T) {
	sink := NewEmailSink("smtp.internal:25", "pipeline@example.com", "oncall@example.com")
	sink.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	if err := sink.Send(context.Background(), models.Alert{}); err == nil {
		t.Error("expected Send to propagate the SMTP error")
	}
}
