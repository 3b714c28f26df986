package contracts

import (
	"context"

	"github.com/samlafell/mlbcore/pkg/models"
)

// PersistenceHealth mirrors the three states spec.md §4.8 requires for the
// adapter's health query.
type PersistenceHealth string

const (
	PersistenceOK       PersistenceHealth = "ok"
	PersistenceDegraded PersistenceHealth = "degraded"
	PersistenceDown     PersistenceHealth = "down"
)

// Tx is a single transactional unit of work at read-committed isolation
// (spec.md §4.8). Rollback after Commit changes nothing, though it may
// return an error (the Postgres implementation returns sql.ErrTxDone).
type Tx interface {
	UpsertBettingLines(ctx context.Context, zone string, lines []models.BettingLine) error
	InsertRawRecords(ctx context.Context, records []models.RawRecord) (inserted int, err error)
	UpsertGame(ctx context.Context, game models.Game) error
	UpsertSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error
	Commit() error
	Rollback() error
}

// PersistenceAdapter is the sole writer to persisted state (spec.md §4.8). No
// other component issues ad-hoc writes.
type PersistenceAdapter interface {
	Begin(ctx context.Context) (Tx, error)
	Health(ctx context.Context) (PersistenceHealth, error)
	Close() error
}
