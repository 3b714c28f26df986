package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// Postgres is the sole writer spec.md §4.8 requires. It implements
// contracts.PersistenceAdapter for the orchestrator, and also backs
// raw.Store and identity.Store directly: those reads/writes are single
// statements that don't need the orchestrator's explicit Begin/Commit unit
// of work.
type Postgres struct {
	db *sql.DB
}

// Open dials Postgres per cfg and tunes the connection pool the way
// HolocronPostgres does, using cfg's pool fields instead of hardcoded
// constants.
func Open(cfg config.DatabaseConfig) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: open: %w", err)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	db.SetMaxOpenConns(poolSize + cfg.MaxOverflow)
	db.SetMaxIdleConns(poolSize)
	if cfg.PoolRecycleS > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.PoolRecycleS) * time.Second)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	timeout := 5 * time.Second
	if cfg.PoolTimeoutS > 0 {
		timeout = time.Duration(cfg.PoolTimeoutS) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("persistence: ping: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Begin starts the transactional unit of work every zone's persist step
// uses, at read-committed isolation per spec.md §4.8.
func (p *Postgres) Begin(ctx context.Context) (contracts.Tx, error) {
	sqlTx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("persistence: begin: %w", err)
	}
	return &tx{tx: sqlTx}, nil
}

// Health reports degraded once pings are slow rather than only failing
// outright, matching spec.md §4.8's three-state health contract.
func (p *Postgres) Health(ctx context.Context) (contracts.PersistenceHealth, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.db.PingContext(ctx); err != nil {
		return contracts.PersistenceDown, err
	}
	if time.Since(start) > time.Second {
		return contracts.PersistenceDegraded, nil
	}
	return contracts.PersistenceOK, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// AppendRawRecords implements raw.Store: an append-only insert that dedups
// on the (source, external_id, odds_timestamp) idempotency key from
// spec.md §3 via ON CONFLICT DO NOTHING, so replaying a batch never
// duplicates a row.
func (p *Postgres) AppendRawRecords(ctx context.Context, records []models.RawRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("persistence: append raw records: begin: %w", err)
	}
	inserted, err := insertRawRecords(ctx, tx, records)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("persistence: append raw records: commit: %w", err)
	}
	return inserted, nil
}

func insertRawRecords(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}, records []models.RawRecord) (int, error) {
	const stmt = `
		INSERT INTO raw.records
			(source, external_id, odds_timestamp, fetched_at_utc, payload, batch_id, parse_status, invalid_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, external_id, odds_timestamp) DO NOTHING`

	inserted := 0
	for _, r := range records {
		payload, err := json.Marshal(r.Payload)
		if err != nil {
			return inserted, fmt.Errorf("persistence: marshal payload for %s/%s: %w", r.Source, r.ExternalID, err)
		}
		oddsTS := oddsTimestampFromPayload(r.Payload)
		res, err := execer.ExecContext(ctx, stmt,
			r.Source, r.ExternalID, oddsTS, r.FetchedAtUTC, payload, r.BatchID, string(r.ParseStatus), nullIfEmpty(r.InvalidReason))
		if err != nil {
			return inserted, fmt.Errorf("persistence: insert raw record %s/%s: %w", r.Source, r.ExternalID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// oddsTimestampFromPayload reads the source-specific timestamp field raw
// payloads carry; raw records predating a parseable timestamp fall back to
// the zero value, matching RawRecord.IdempotencyKey's documented fallback.
func oddsTimestampFromPayload(payload map[string]interface{}) interface{} {
	for _, key := range []string{"odds_timestamp", "timestamp", "last_update"} {
		if raw, ok := payload[key]; ok {
			if s, ok := raw.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					return ts
				}
			}
		}
	}
	return time.Time{}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// FindGameByLeagueID implements identity.Store.
func (p *Postgres) FindGameByLeagueID(ctx context.Context, leagueGameID string) (models.Game, bool, error) {
	return p.scanGame(ctx, `SELECT canonical_id, league_game_id, scheduled_at_utc, scheduled_at_et,
		home_team_abbrev, away_team_abbrev, status, home_final_score, away_final_score, created_at, updated_at
		FROM curated.games WHERE league_game_id = $1`, leagueGameID)
}

// FindGameByTuple implements identity.Store.
func (p *Postgres) FindGameByTuple(ctx context.Context, providerDate, homeAbbrev, awayAbbrev string) (models.Game, bool, error) {
	canonicalID := models.CanonicalGameID(providerDate, homeAbbrev, awayAbbrev)
	return p.scanGame(ctx, `SELECT canonical_id, league_game_id, scheduled_at_utc, scheduled_at_et,
		home_team_abbrev, away_team_abbrev, status, home_final_score, away_final_score, created_at, updated_at
		FROM curated.games WHERE canonical_id = $1`, canonicalID)
}

func (p *Postgres) scanGame(ctx context.Context, query string, arg string) (models.Game, bool, error) {
	var g models.Game
	err := p.db.QueryRowContext(ctx, query, arg).Scan(
		&g.CanonicalID, &g.LeagueGameID, &g.ScheduledAtUTC, &g.ScheduledAtET,
		&g.HomeTeamAbbrev, &g.AwayTeamAbbrev, &g.Status, &g.HomeFinalScore, &g.AwayFinalScore,
		&g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Game{}, false, nil
	}
	if err != nil {
		return models.Game{}, false, fmt.Errorf("persistence: find game: %w", err)
	}
	return g, true, nil
}

// FindSportsbookMapping implements identity.Store.
func (p *Postgres) FindSportsbookMapping(ctx context.Context, source, externalID string) (models.SportsbookMapping, bool, error) {
	return p.scanMapping(ctx, `SELECT source, external_id, external_name_lower, sportsbook_id, needs_manual_review, created_at, updated_at
		FROM curated.sportsbook_mappings WHERE source = $1 AND external_id = $2`, source, externalID)
}

// FindSportsbookMappingByName implements identity.Store.
func (p *Postgres) FindSportsbookMappingByName(ctx context.Context, source, externalNameLower string) (models.SportsbookMapping, bool, error) {
	return p.scanMapping(ctx, `SELECT source, external_id, external_name_lower, sportsbook_id, needs_manual_review, created_at, updated_at
		FROM curated.sportsbook_mappings WHERE source = $1 AND external_name_lower = $2`, source, externalNameLower)
}

func (p *Postgres) scanMapping(ctx context.Context, query, source, key string) (models.SportsbookMapping, bool, error) {
	var m models.SportsbookMapping
	var externalName string
	err := p.db.QueryRowContext(ctx, query, source, key).Scan(
		&m.Source, &m.ExternalID, &externalName, &m.SportsbookID, &m.NeedsManualReview, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.SportsbookMapping{}, false, nil
	}
	if err != nil {
		return models.SportsbookMapping{}, false, fmt.Errorf("persistence: find sportsbook mapping: %w", err)
	}
	m.ExternalName = externalName
	return m, true, nil
}

// CreateSportsbookMapping implements identity.Store: lazily augmenting the
// mapping table when the resolver meets a new external identifier
// (spec.md §4.4).
func (p *Postgres) CreateSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error {
	const stmt = `
		INSERT INTO curated.sportsbook_mappings
			(source, external_id, external_name_lower, sportsbook_id, needs_manual_review)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, external_id, external_name_lower) DO UPDATE SET
			sportsbook_id = EXCLUDED.sportsbook_id,
			needs_manual_review = EXCLUDED.needs_manual_review,
			updated_at = now()`
	_, err := p.db.ExecContext(ctx, stmt,
		mapping.Source, mapping.ExternalID, strings.ToLower(mapping.ExternalName), mapping.SportsbookID, mapping.NeedsManualReview)
	if err != nil {
		return fmt.Errorf("persistence: create sportsbook mapping: %w", err)
	}
	return nil
}
