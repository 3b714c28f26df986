package alerting

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/pkg/models"
)

// ConsoleSink logs alerts through zerolog, matching every other package's
// structured-logging style. Useful for local runs and as the always-on
// sink alongside whichever outbound sinks are configured.
type ConsoleSink struct{}

// NewConsoleSink builds a ConsoleSink.
func NewConsoleSink() *ConsoleSink { return &ConsoleSink{} }

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Send(ctx context.Context, alert models.Alert) error {
	ev := log.Info()
	if alert.Severity == models.SeverityWarning {
		ev = log.Warn()
	} else if alert.Severity == models.SeverityCritical {
		ev = log.Error()
	}
	ev.Str("alert_type", alert.AlertType).
		Str("collector", alert.Collector).
		Str("correlation_id", alert.CorrelationID).
		Interface("context", alert.Context).
		Msg(alert.Message)
	return nil
}
