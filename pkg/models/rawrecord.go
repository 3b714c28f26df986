package models

import "time"

// ParseStatus records the outcome of structural validation for a RawRecord.
type ParseStatus string

const (
	ParseOK      ParseStatus = "ok"
	ParseInvalid ParseStatus = "invalid"
)

// RawRecord is an immutable capture of one payload from one source. It is
// never mutated once persisted; the raw zone must be fully recoverable from
// source replays of these records alone (spec.md §4.2).
type RawRecord struct {
	Source         string                 `json:"source"`
	ExternalID     string                 `json:"external_id"`
	FetchedAtUTC   time.Time              `json:"fetched_at_utc"`
	Payload        map[string]interface{} `json:"payload"`
	BatchID        string                 `json:"batch_id"`
	ParseStatus    ParseStatus            `json:"parse_status"`
	InvalidReason  string                 `json:"invalid_reason,omitempty"`
}

// IdempotencyKey is the raw-zone dedup key: (source, external_id, odds_timestamp).
// OddsTimestamp is read out of the payload by the caller since its location is
// source-specific; raw records without a parseable timestamp pass the zero
// time, which still makes them unique per (source, external_id) pair.
func (r RawRecord) IdempotencyKey(oddsTimestamp time.Time) string {
	return r.Source + "|" + r.ExternalID + "|" + oddsTimestamp.UTC().Format(time.RFC3339Nano)
}
