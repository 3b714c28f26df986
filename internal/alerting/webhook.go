package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/samlafell/mlbcore/internal/collectors/retry"
	"github.com/samlafell/mlbcore/pkg/models"
)

// maxDeadLetters bounds the in-memory dead-letter queue so a persistently
// unreachable webhook cannot grow it without limit.
const maxDeadLetters = 500

// WebhookSink POSTs an alert as JSON to a configured URL, retrying through
// internal/collectors/retry so delivery is at-least-once (spec.md §4.7/§6).
// Grounded on
// XavierBriggs-Services/alert-service/internal/notifier.SlackNotifier's
// POST-and-check-status shape, generalized from Slack's webhook to an
// arbitrary JSON receiver and given the collector pipeline's own retry
// policy rather than a one-shot send.
type WebhookSink struct {
	url        string
	httpClient *http.Client
	retry      *retry.Policy

	mu          sync.Mutex
	deadLetters []models.Alert
}

// NewWebhookSink builds a WebhookSink posting to url.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      retry.NewPolicy(3, 500*time.Millisecond),
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Send(ctx context.Context, alert models.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("alerting: marshal webhook payload: %w", err)
	}

	err = s.retry.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("alerting: build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("alerting: send webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("alerting: webhook returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		s.deadLetter(alert)
	}
	return err
}

func (s *WebhookSink) deadLetter(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters = append(s.deadLetters, alert)
	if len(s.deadLetters) > maxDeadLetters {
		s.deadLetters = s.deadLetters[len(s.deadLetters)-maxDeadLetters:]
	}
}

// DeadLetters returns alerts that exhausted retries without a successful
// delivery, for periodic replay or inspection.
func (s *WebhookSink) DeadLetters() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Alert(nil), s.deadLetters...)
}
