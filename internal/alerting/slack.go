package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// SlackSink posts a formatted alert message to a Slack incoming webhook.
// Grounded directly on
// XavierBriggs-Services/alert-service/internal/notifier.SlackNotifier:
// same payload shape ({"text": ...}), same POST-and-check-status(200) flow,
// reworded for collection-health alerts instead of arbitrage opportunities.
type SlackSink struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackSink builds a SlackSink posting to webhookURL.
func NewSlackSink(webhookURL string) *SlackSink {
	return &SlackSink{webhookURL: webhookURL, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SlackSink) Name() string { return "slack" }

func (s *SlackSink) Send(ctx context.Context, alert models.Alert) error {
	payload := map[string]interface{}{"text": formatSlackMessage(alert)}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("alerting: marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("alerting: build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("alerting: send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alerting: slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func formatSlackMessage(alert models.Alert) string {
	emoji := severityEmoji(alert.Severity)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *%s* | %s\n", emoji, strings.ToUpper(alert.AlertType), alert.Collector))
	sb.WriteString(alert.Message)
	if alert.CorrelationID != "" {
		sb.WriteString(fmt.Sprintf("\n_correlation: %s_", alert.CorrelationID))
	}
	return sb.String()
}

func severityEmoji(severity models.AlertSeverity) string {
	switch severity {
	case models.SeverityCritical:
		return ":rotating_light:"
	case models.SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}
