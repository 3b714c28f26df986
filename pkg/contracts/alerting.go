package contracts

import (
	"context"

	"github.com/samlafell/mlbcore/pkg/models"
)

// AlertSink is the outbound alerting contract from spec.md §4.7/§6. Console,
// webhook, email, and Slack sinks all implement this. Any retry is up to the
// sink itself: the webhook sink retries and keeps a dead-letter list, while
// the console, email, and Slack sinks make a single attempt.
type AlertSink interface {
	Name() string
	Send(ctx context.Context, alert models.Alert) error
}
