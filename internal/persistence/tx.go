package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samlafell/mlbcore/pkg/models"
)

// tx implements contracts.Tx over one *sql.Tx. Rollback after Commit is a
// documented no-op; database/sql already returns sql.ErrTxDone for it,
// which callers that always defer Rollback() are expected to ignore.
type tx struct {
	tx *sql.Tx
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

// InsertRawRecords implements contracts.Tx for callers that want raw
// inserts inside a larger unit of work; internal/raw.Zone itself writes
// through Postgres.AppendRawRecords directly since its append is already
// one atomic batch (spec.md §4.2).
func (t *tx) InsertRawRecords(ctx context.Context, records []models.RawRecord) (int, error) {
	return insertRawRecords(ctx, t.tx, records)
}

// UpsertGame implements contracts.Tx: one row per canonical game identity,
// never deleted, status and scores updated in place (spec.md §3).
func (t *tx) UpsertGame(ctx context.Context, game models.Game) error {
	const stmt = `
		INSERT INTO curated.games
			(canonical_id, league_game_id, scheduled_at_utc, scheduled_at_et,
			 home_team_abbrev, away_team_abbrev, status, home_final_score, away_final_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (canonical_id) DO UPDATE SET
			league_game_id = COALESCE(EXCLUDED.league_game_id, curated.games.league_game_id),
			status = EXCLUDED.status,
			home_final_score = EXCLUDED.home_final_score,
			away_final_score = EXCLUDED.away_final_score,
			updated_at = now()`
	_, err := t.tx.ExecContext(ctx, stmt,
		game.CanonicalID, nullIfEmpty(game.LeagueGameID), game.ScheduledAtUTC, game.ScheduledAtET,
		game.HomeTeamAbbrev, game.AwayTeamAbbrev, string(game.Status), game.HomeFinalScore, game.AwayFinalScore)
	if err != nil {
		return fmt.Errorf("persistence: upsert game %s: %w", game.CanonicalID, err)
	}
	return nil
}

// UpsertSportsbookMapping implements contracts.Tx, sharing logic with the
// non-transactional path the resolver uses directly on Postgres.
func (t *tx) UpsertSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error {
	const stmt = `
		INSERT INTO curated.sportsbook_mappings
			(source, external_id, external_name_lower, sportsbook_id, needs_manual_review)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, external_id, external_name_lower) DO UPDATE SET
			sportsbook_id = EXCLUDED.sportsbook_id,
			needs_manual_review = EXCLUDED.needs_manual_review,
			updated_at = now()`
	_, err := t.tx.ExecContext(ctx, stmt,
		mapping.Source, mapping.ExternalID, strings.ToLower(mapping.ExternalName), mapping.SportsbookID, mapping.NeedsManualReview)
	if err != nil {
		return fmt.Errorf("persistence: upsert sportsbook mapping: %w", err)
	}
	return nil
}

// UpsertBettingLines implements contracts.Tx: each line lands in
// {zone}.{market}_lines, deduped on spec.md §3's
// (canonical_game_id, sportsbook_id, odds_timestamp) key. zone is
// "staging" or "curated"; every zone writes through the same table shape
// so normalization and curation share one upsert path.
func (t *tx) UpsertBettingLines(ctx context.Context, zone string, lines []models.BettingLine) error {
	for _, l := range lines {
		if err := t.upsertOne(ctx, zone, l); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) upsertOne(ctx context.Context, zone string, l models.BettingLine) error {
	table := tableFor(zone, string(l.Market))
	marketCols, marketVal1, marketVal2, marketVal3 := marketColumns(l)
	marketSet := fmt.Sprintf("%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s",
		marketCols[0], marketCols[0], marketCols[1], marketCols[1], marketCols[2], marketCols[2])

	stmt := fmt.Sprintf(`
		INSERT INTO %s
			(canonical_game_id, sportsbook_id, market, %s, %s, %s,
			 source, external_source_id, odds_timestamp,
			 home_bets_pct, home_money_pct, away_bets_pct, away_money_pct,
			 sharp_action_tag, public_fade, rlm, steam,
			 data_completeness_score, source_reliability_score, data_quality,
			 clv_cents, ingestion_seq)
		VALUES ($1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21)
		ON CONFLICT (canonical_game_id, sportsbook_id, odds_timestamp) DO UPDATE SET
			%s,
			home_bets_pct = EXCLUDED.home_bets_pct,
			home_money_pct = EXCLUDED.home_money_pct,
			away_bets_pct = EXCLUDED.away_bets_pct,
			away_money_pct = EXCLUDED.away_money_pct,
			sharp_action_tag = EXCLUDED.sharp_action_tag,
			public_fade = EXCLUDED.public_fade,
			rlm = EXCLUDED.rlm,
			steam = EXCLUDED.steam,
			data_completeness_score = EXCLUDED.data_completeness_score,
			source_reliability_score = EXCLUDED.source_reliability_score,
			data_quality = EXCLUDED.data_quality,
			clv_cents = EXCLUDED.clv_cents,
			ingestion_seq = EXCLUDED.ingestion_seq,
			updated_at = now()`,
		table, marketCols[0], marketCols[1], marketCols[2], marketSet)

	_, err := t.tx.ExecContext(ctx, stmt,
		l.CanonicalGameID, l.SportsbookID, string(l.Market), marketVal1, marketVal2, marketVal3,
		l.Source, l.ExternalSourceID, l.OddsTimestamp,
		l.HomeSplit.BetsPct, l.HomeSplit.MoneyPct, l.AwaySplit.BetsPct, l.AwaySplit.MoneyPct,
		string(l.SharpActionTag), l.PublicFade, l.RLM, l.Steam,
		l.DataCompletenessScore, l.SourceReliabilityScore, string(l.DataQuality),
		l.CLVCents, l.IngestionSeq)
	if err != nil {
		return fmt.Errorf("persistence: upsert %s line %s: %w", zone, l.IdempotencyKey(), err)
	}
	return nil
}

// marketColumns picks the column list and values for l.Market's
// market-specific numeric fields. Every market table in the logical schema
// carries the same three-value shape (line, price, price) so moneyline's
// missing line slots in as NULL.
func marketColumns(l models.BettingLine) (cols [3]string, v1, v2, v3 interface{}) {
	moneylineCols := [3]string{"home_price", "away_price", "line"}
	totalCols := [3]string{"over_price", "under_price", "line"}

	switch l.Market {
	case models.MarketMoneyline:
		if l.Moneyline == nil {
			return moneylineCols, nil, nil, nil
		}
		return moneylineCols, l.Moneyline.HomePrice, l.Moneyline.AwayPrice, nil
	case models.MarketSpread:
		if l.Spread == nil {
			return moneylineCols, nil, nil, nil
		}
		return moneylineCols, l.Spread.HomePrice, l.Spread.AwayPrice, l.Spread.SpreadLine
	case models.MarketTotal:
		if l.Total == nil {
			return totalCols, nil, nil, nil
		}
		return totalCols, l.Total.OverPrice, l.Total.UnderPrice, l.Total.TotalLine
	default:
		return moneylineCols, nil, nil, nil
	}
}
