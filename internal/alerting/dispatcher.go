package alerting

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// Dispatcher fans a throttled alert out to every registered AlertSink and
// tracks acknowledge/resolve state by correlation id (spec.md §4.7:
// "acknowledge/resolve operations mutate alert state but never suppress
// future occurrences" — so this state is metadata, not a throttle input).
type Dispatcher struct {
	sinks     []contracts.AlertSink
	throttler *Throttler

	mu     sync.Mutex
	byCorr map[string]models.Alert
}

// NewDispatcher builds a Dispatcher delivering through sinks, throttled by
// throttler. A nil throttler disables throttling (every alert delivers).
func NewDispatcher(sinks []contracts.AlertSink, throttler *Throttler) *Dispatcher {
	return &Dispatcher{sinks: sinks, throttler: throttler, byCorr: make(map[string]models.Alert)}
}

// Dispatch delivers alert to every sink unless throttled, recording it by
// correlation id either way. Sink errors are logged, not returned: one
// failing sink must not block delivery to the others.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.Alert) error {
	d.mu.Lock()
	d.byCorr[alert.CorrelationID] = alert
	d.mu.Unlock()

	if d.throttler != nil {
		allow, err := d.throttler.Allow(ctx, alert)
		if err != nil {
			log.Warn().Err(err).Str("alert_type", alert.AlertType).Msg("alerting: throttle check failed, delivering anyway")
		} else if !allow {
			log.Debug().Str("alert_type", alert.AlertType).Str("collector", alert.Collector).Msg("alerting: alert throttled")
			return nil
		}
	}

	for _, sink := range d.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Str("alert_type", alert.AlertType).Msg("alerting: sink delivery failed")
		}
	}
	return nil
}

// Acknowledge marks the alert identified by correlationID as acknowledged.
func (d *Dispatcher) Acknowledge(correlationID string) (models.Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byCorr[correlationID]
	if !ok {
		return models.Alert{}, false
	}
	a.Acknowledged = true
	d.byCorr[correlationID] = a
	return a, true
}

// Resolve marks the alert identified by correlationID as resolved.
func (d *Dispatcher) Resolve(correlationID string) (models.Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byCorr[correlationID]
	if !ok {
		return models.Alert{}, false
	}
	a.Resolved = true
	d.byCorr[correlationID] = a
	return a, true
}
