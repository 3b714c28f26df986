// Package primaryodds collects moneyline/spread/total quotes from the
// primary odds provider, the main price feed the staging zone reconciles
// every other source against.
package primaryodds

import (
	"context"
	"fmt"

	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

const sourceName = "primary_odds"

// Collector fetches current odds for every in-window game in one sweep.
type Collector struct {
	*collectors.Base
}

// New builds a primary-odds Collector from cfg. cfg.Name is forced to
// sourceName regardless of what the caller passes.
func New(cfg collectors.Config) *Collector {
	cfg.Name = sourceName
	return &Collector{Base: collectors.NewBase(cfg)}
}

// Collect fetches one odds snapshot for window and emits it as a single
// RawRecord; the staging Parser later expands the payload's per-game,
// per-market entries into ProvisionalRecords.
func (c *Collector) Collect(ctx context.Context, window contracts.Window) (<-chan models.RawRecord, <-chan error) {
	records := make(chan models.RawRecord, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		path := fmt.Sprintf("/v1/odds?since=%s&until=%s", window.Since.UTC().Format("20060102T150405Z"), window.Until.UTC().Format("20060102T150405Z"))
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
