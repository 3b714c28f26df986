// Package raw implements the raw zone of spec.md §4.2: append-only storage
// of exactly what each collector produced, with structural-only validation
// that never mutates a record, only flags it. Grounded on the
// batch-then-persist shape of
// XavierBriggs-Services/normalizer/internal/consumer.StreamConsumer, which
// reads a batch off Redis Streams and hands it to a processor atomically
// per batch.
package raw

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/pkg/models"
)

// Store is the append-only raw persistence contract. Implemented by
// internal/persistence.
type Store interface {
	AppendRawRecords(ctx context.Context, records []models.RawRecord) (inserted int, err error)
}

// IngestResult reports what happened to one batch.
type IngestResult struct {
	Accepted int
	Invalid  int
	Inserted int // rows newly stored after idempotency-key dedup, flagged invalid ones included; <= Accepted+Invalid
}

// Zone owns raw-record validation and durable append.
type Zone struct {
	store Store
}

// New builds a raw Zone backed by store.
func New(store Store) *Zone {
	return &Zone{store: store}
}

// Ingest validates every record in batch, persists the valid ones with
// idempotent append semantics, and persists invalid ones flagged rather
// than dropping them (spec.md §4.2: "invalid records are persisted with a
// flag; they never propagate downstream"). The whole batch is one atomic
// append.
func (z *Zone) Ingest(ctx context.Context, batch []models.RawRecord) (IngestResult, error) {
	var result IngestResult
	flagged := make([]models.RawRecord, 0, len(batch))

	for _, record := range batch {
		if status, reason := Validate(record); status == models.ParseOK {
			result.Accepted++
			record.ParseStatus = models.ParseOK
		} else {
			result.Invalid++
			record.ParseStatus = models.ParseInvalid
			record.InvalidReason = reason
			log.Warn().Str("source", record.Source).Str("external_id", record.ExternalID).
				Str("reason", reason).Msg("raw record failed structural validation")
		}
		flagged = append(flagged, record)
	}

	inserted, err := z.store.AppendRawRecords(ctx, flagged)
	if err != nil {
		return result, fmt.Errorf("raw: append batch: %w", err)
	}
	result.Inserted = inserted
	return result, nil
}

// Validate performs structural-only checks on the record envelope: source
// and external_id present, a non-empty payload, and a fetched_at_utc that is
// set and at most one minute in the future. It does not look inside the
// payload, so payload timestamps and odds values are not checked here. It
// never resolves identity or canonicalizes fields; that belongs to staging.
func Validate(record models.RawRecord) (models.ParseStatus, string) {
	if record.Source == "" {
		return models.ParseInvalid, "missing source"
	}
	if record.ExternalID == "" {
		return models.ParseInvalid, "missing external_id"
	}
	if record.Payload == nil || len(record.Payload) == 0 {
		return models.ParseInvalid, "empty payload"
	}
	if record.FetchedAtUTC.IsZero() {
		return models.ParseInvalid, "missing fetched_at_utc"
	}
	if record.FetchedAtUTC.After(time.Now().UTC().Add(time.Minute)) {
		return models.ParseInvalid, "fetched_at_utc is in the future"
	}
	return models.ParseOK, ""
}
