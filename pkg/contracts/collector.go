package contracts

import (
	"context"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// Window bounds a collection sweep. Collectors use Since and Until as given;
// a zero Until is not replaced with the current time.
type Window struct {
	Since time.Time
	Until time.Time
}

// ProvisionalRecord is what a source's Parser (registered in
// internal/staging) emits before identity resolution (spec.md §4.1):
// external ids verbatim, resolution deferred to the identity resolver (§4.4).
type ProvisionalRecord struct {
	Source                    string
	ExternalGameID            string
	ExternalSportsbookID      string
	ExternalSportsbookName    string
	Market                    models.Market
	QuoteFields               map[string]interface{}
	OddsTimestamp             time.Time
}

// HealthSnapshot is a collector's self-reported status, independent of the
// health tracker's own rolling statistics.
type HealthSnapshot struct {
	Collector    string
	CircuitState models.CircuitState
	LastAttempt  time.Time
	LastOutcome  models.AttemptOutcome
}

// Collector is the contract every source collector implements (spec.md §4.1).
// Collect streams RawRecords for a window; the collector itself never
// resolves canonical identifiers.
type Collector interface {
	Name() string
	Collect(ctx context.Context, window Window) (<-chan models.RawRecord, <-chan error)
	HealthProbe(ctx context.Context) (HealthSnapshot, error)
}

// Parser turns one raw payload into zero-or-more ProvisionalRecords,
// validating each individually so a partial payload still yields whatever is
// structurally sound (spec.md §4.1 Parse contract).
type Parser interface {
	Parse(payload map[string]interface{}) ([]ProvisionalRecord, error)
}
