// Package splitpct collects public-bet-percentage data from a secondary
// consensus provider, used alongside splits for corroboration and
// public_fade detection (spec.md §4.5).
package splitpct

import (
	"context"
	"fmt"

	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

const sourceName = "public_bet_pct"

// Collector fetches public bet-percentage data for every in-window game.
type Collector struct {
	*collectors.Base
}

// New builds a public-bet-percentage Collector from cfg.
func New(cfg collectors.Config) *Collector {
	cfg.Name = sourceName
	return &Collector{Base: collectors.NewBase(cfg)}
}

// Collect fetches one public-bet-percentage snapshot for window.
func (c *Collector) Collect(ctx context.Context, window contracts.Window) (<-chan models.RawRecord, <-chan error) {
	records := make(chan models.RawRecord, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		path := fmt.Sprintf("/v1/public-bets?since=%s&until=%s", window.Since.UTC().Format("20060102T150405Z"), window.Until.UTC().Format("20060102T150405Z"))
		payload, err := c.FetchJSON(ctx, path)
		if err != nil {
			errs <- err
			return
		}
		records <- c.WrapRaw(path, payload)
	}()

	return records, errs
}

var _ contracts.Collector = (*Collector)(nil)
