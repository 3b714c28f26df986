// Package schedule collects the official MLB schedule/scoreboard, the
// authoritative source for league game ids used to promote a quarantined
// game mapping once the identity resolver (internal/identity) sees a
// matching tuple. Grounded on
// XavierBriggs-Services/game-stats-service/internal/providers/espn.Client's
// scoreboard-by-date fetch.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

const (
	sourceName = "schedule"
	sportPath  = "baseball/mlb"
)

// Collector fetches the MLB scoreboard for every date in window.
type Collector struct {
	*collectors.Base
}

// New builds a schedule Collector from cfg.
func New(cfg collectors.Config) *Collector {
	cfg.Name = sourceName
	return &Collector{Base: collectors.NewBase(cfg)}
}

// Collect fetches one scoreboard payload per calendar date spanned by
// window, emitting one RawRecord per date.
func (c *Collector) Collect(ctx context.Context, window contracts.Window) (<-chan models.RawRecord, <-chan error) {
	records := make(chan models.RawRecord)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		start := time.Date(window.Since.Year(), window.Since.Month(), window.Since.Day(), 0, 0, 0, 0, window.Since.Location())
		for d := start; !d.After(window.Until); d = d.AddDate(0, 0, 1) {
			dateStr := d.Format("20060102")
			path := fmt.Sprintf("/apis/site/v2/sports/%s/scoreboard?dates=%s", sportPath, dateStr)

			payload, err := c.FetchJSON(ctx, path)
			if err != nil {
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case records <- c.WrapRaw(dateStr, payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return records, errs
}

var _ contracts.Collector = (*Collector)(nil)
