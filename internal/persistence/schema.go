// Package persistence implements the sole-writer Postgres adapter of
// spec.md §4.8: writes to raw records, games, sportsbook mappings, and the
// staging/curated betting-line tables, idempotent upserts keyed off §3's
// identity keys, and the transactional unit of work contracts.Tx exposes to
// every zone. The operational tables in the logical schema below have no
// reader or writer in this package. Grounded
// on XavierBriggs-Services/api-gateway/internal/db's HolocronPostgres and
// Alexandria Client (database/sql over github.com/lib/pq, a narrow
// interface per logical database, explicit connection-pool tuning).
package persistence

// Logical schema (spec.md §204): four schemas, one table group per zone.
// Every table carries created_at/updated_at and the idempotency key from
// spec.md §3; foreign keys enforce game/sportsbook references in
// staging/curated.
//
//	CREATE SCHEMA raw;
//	CREATE TABLE raw.records (
//		id              BIGSERIAL PRIMARY KEY,
//		source          TEXT NOT NULL,
//		external_id     TEXT NOT NULL,
//		odds_timestamp  TIMESTAMPTZ,
//		fetched_at_utc  TIMESTAMPTZ NOT NULL,
//		payload         JSONB NOT NULL,
//		batch_id        TEXT NOT NULL,
//		parse_status    TEXT NOT NULL,
//		invalid_reason  TEXT,
//		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		UNIQUE (source, external_id, odds_timestamp)
//	);
//
//	CREATE SCHEMA curated;
//	CREATE TABLE curated.games (
//		canonical_id      TEXT PRIMARY KEY,
//		league_game_id    TEXT UNIQUE,
//		scheduled_at_utc  TIMESTAMPTZ NOT NULL,
//		scheduled_at_et   TIMESTAMPTZ NOT NULL,
//		home_team_abbrev  TEXT NOT NULL,
//		away_team_abbrev  TEXT NOT NULL,
//		status            TEXT NOT NULL,
//		home_final_score  INT,
//		away_final_score  INT,
//		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE curated.sportsbook_mappings (
//		source               TEXT NOT NULL,
//		external_id          TEXT NOT NULL DEFAULT '',
//		external_name_lower  TEXT NOT NULL DEFAULT '',
//		sportsbook_id        BIGINT NOT NULL,
//		needs_manual_review  BOOLEAN NOT NULL DEFAULT false,
//		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
//		PRIMARY KEY (source, external_id, external_name_lower)
//	);
//
// One upsert table per market in both staging and curated, each keyed on
// spec.md §3's (canonical_game_id, sportsbook_id, odds_timestamp):
//
//	CREATE TABLE {zone}.{market}_lines (
//		canonical_game_id  TEXT NOT NULL REFERENCES curated.games(canonical_id),
//		sportsbook_id      BIGINT NOT NULL,
//		market             TEXT NOT NULL,
//		<market-specific numeric fields>,
//		source                    TEXT NOT NULL,
//		external_source_id        TEXT NOT NULL,
//		odds_timestamp            TIMESTAMPTZ NOT NULL,
//		home_bets_pct             DOUBLE PRECISION,
//		home_money_pct            DOUBLE PRECISION,
//		away_bets_pct             DOUBLE PRECISION,
//		away_money_pct            DOUBLE PRECISION,
//		sharp_action_tag          TEXT NOT NULL DEFAULT 'none',
//		public_fade               BOOLEAN NOT NULL DEFAULT false,
//		rlm                       BOOLEAN NOT NULL DEFAULT false,
//		steam                     BOOLEAN NOT NULL DEFAULT false,
//		data_completeness_score   DOUBLE PRECISION NOT NULL,
//		source_reliability_score  DOUBLE PRECISION NOT NULL,
//		data_quality              TEXT NOT NULL,
//		clv_cents                 INT,
//		ingestion_seq             BIGINT NOT NULL,
//		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
//		PRIMARY KEY (canonical_game_id, sportsbook_id, odds_timestamp)
//	);
//
//	CREATE SCHEMA operational;
//	CREATE TABLE operational.pipeline_runs (
//		run_id      TEXT PRIMARY KEY,
//		mode        TEXT NOT NULL,
//		status      TEXT NOT NULL,
//		started_at  TIMESTAMPTZ NOT NULL,
//		ended_at    TIMESTAMPTZ,
//		metrics     JSONB NOT NULL,
//		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE operational.collection_attempts (
//		id                BIGSERIAL PRIMARY KEY,
//		collector         TEXT NOT NULL,
//		started_at        TIMESTAMPTZ NOT NULL,
//		ended_at          TIMESTAMPTZ NOT NULL,
//		outcome           TEXT NOT NULL,
//		record_count      INT NOT NULL,
//		response_time_ms  BIGINT NOT NULL,
//		error_category    TEXT,
//		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE operational.alerts (
//		correlation_id  TEXT PRIMARY KEY,
//		alert_type      TEXT NOT NULL,
//		severity        TEXT NOT NULL,
//		collector       TEXT NOT NULL,
//		message         TEXT NOT NULL,
//		context         JSONB,
//		acknowledged    BOOLEAN NOT NULL DEFAULT false,
//		resolved        BOOLEAN NOT NULL DEFAULT false,
//		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
//	);

// tableFor returns the {zone}.{market}_lines table name backing
// UpsertBettingLines. zone is "staging" or "curated"; market is one of
// models.MarketMoneyline/Spread/Total.
func tableFor(zone string, market string) string {
	return zone + "." + market + "_lines"
}
