// Package oddscompare collects a cross-book odds-comparison feed used as a
// corroborating source for steam-move detection (spec.md §4.5): when most
// books move the same direction within a short window, this feed's
// multi-book snapshot makes the comparison cheap without querying every
// book's own collector.
package oddscompare

import (
	"context"
	"fmt"

	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

const sourceName = "odds_compare"

// Collector fetches a cross-book odds comparison snapshot.
type Collector struct {
	*collectors.Base
}

// New builds an odds-comparison Collector from cfg.
func New(cfg collectors.Config) *Collector {
	cfg.Name = sourceName
	return &Collector{Base: collectors.NewBase(cfg)}
}

// Collect fetches one cross-book comparison snapshot for window.
func (c *Collector) Collect(ctx context.Context, window contracts.Window) (<-chan models.RawRecord, <-chan error) {
	records := make(chan models.RawRecord, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		path := fmt.Sprintf("/v1/compare?since=%s&until=%s", window.Since.UTC().Format("20060102T150405Z"), window.Until.UTC().Format("20060102T150405Z"))
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
