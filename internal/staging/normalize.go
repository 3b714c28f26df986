// Package staging implements the staging zone of spec.md §4.3: clean and
// normalize raw records into unified BettingLine rows per market. Grounded
// on XavierBriggs-Services/normalizer/internal/processor.Processor's
// validate-resolve-canonicalize-score pipeline, generalized from a single
// sport-normalizer call into the full spec.md §4.3 algorithm list.
package staging

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/internal/identity"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
	"github.com/samlafell/mlbcore/pkg/oddsmath"
)

// defaultClockSkewTolerance is spec.md §3's default bound on how far into
// the future an odds_timestamp may sit.
const defaultClockSkewTolerance = 60 * time.Second

// RejectReason enumerates spec.md §4.3's rejected-record reasons.
type RejectReason string

const (
	ReasonUnknownGame       RejectReason = "unknown_game"
	ReasonUnknownSportsbook RejectReason = "unknown_sportsbook"
	ReasonInvalidOdds       RejectReason = "invalid_odds"
	ReasonInvalidTimestamp  RejectReason = "invalid_timestamp"
	ReasonClockSkew         RejectReason = "clock_skew"
	ReasonDuplicate         RejectReason = "duplicate"
	ReasonSchemaViolation   RejectReason = "schema_violation"
)

// Rejected pairs a ProvisionalRecord with why staging refused it.
type Rejected struct {
	Record contracts.ProvisionalRecord
	Reason RejectReason
}

// Metrics summarizes one Normalize call.
type Metrics struct {
	Accepted    int
	Rejected    int
	Quarantined int
}

// Quarantined is a record whose game could not be resolved; spec.md §4.3
// says these are held for a background resolver to retry, never dropped.
type Quarantined struct {
	Record   contracts.ProvisionalRecord
	Attempts int
}

// Zone owns staging normalization.
type Zone struct {
	resolver           *identity.Resolver
	clockSkewTolerance time.Duration
}

// New builds a staging Zone backed by resolver. skewTolerance bounds how far
// into the future an odds_timestamp may sit (spec.md §3); zero falls back to
// defaultClockSkewTolerance.
func New(resolver *identity.Resolver, skewTolerance time.Duration) *Zone {
	if skewTolerance <= 0 {
		skewTolerance = defaultClockSkewTolerance
	}
	return &Zone{resolver: resolver, clockSkewTolerance: skewTolerance}
}

// Normalize runs every algorithm spec.md §4.3 lists over one batch of
// ProvisionalRecords sharing a source: timestamp normalization and clock
// skew rejection, identity resolution, field canonicalization, intra-batch
// dedup, and quality scoring. Records whose game cannot be resolved are
// quarantined rather than rejected (spec.md §4.3 edge-case policy);
// everything else is either accepted or rejected with a reason.
func (z *Zone) Normalize(ctx context.Context, batch []contracts.ProvisionalRecord) ([]models.BettingLine, []Rejected, []Quarantined, Metrics) {
	accepted := make([]models.BettingLine, 0, len(batch))
	rejected := make([]Rejected, 0)
	quarantined := make([]Quarantined, 0)
	seen := make(map[string]int) // movement-ish key -> index into accepted, for dedup/tie-break

	now := time.Now().UTC()
	for _, rec := range batch {
		if rec.OddsTimestamp.IsZero() {
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonInvalidTimestamp})
			continue
		}
		if rec.OddsTimestamp.After(now.Add(z.clockSkewTolerance)) {
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonClockSkew})
			continue
		}

		homeName, _ := rec.QuoteFields["home_team"].(string)
		awayName, _ := rec.QuoteFields["away_team"].(string)
		dateStr, _ := rec.QuoteFields["date"].(string)
		if homeName == "" || awayName == "" {
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonSchemaViolation})
			continue
		}

		game, err := z.resolver.ResolveGame(ctx, rec.ExternalGameID, dateStr, homeName, awayName)
		if err != nil {
			quarantined = append(quarantined, Quarantined{Record: rec})
			continue
		}

		mapping, err := z.resolver.ResolveSportsbook(ctx, rec.Source, rec.ExternalSportsbookID, rec.ExternalSportsbookName)
		if err != nil || mapping.NeedsManualReview {
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonUnknownSportsbook})
			continue
		}

		line, filledFields, ok := canonicalizeFields(rec, game.CanonicalID, mapping.SportsbookID)
		if !ok {
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonInvalidOdds})
			continue
		}

		completeness := Completeness(line.Market, filledFields, line.HomeSplit, line.AwaySplit)
		reliability := SourceReliability(line.Source)
		line.DataCompletenessScore = completeness
		line.SourceReliabilityScore = reliability
		line.DataQuality = ClassifyQuality(completeness, reliability, line.SportsbookID != 0)

		key := line.IdempotencyKey()
		if existingIdx, dup := seen[key]; dup {
			if line.SourceReliabilityScore > accepted[existingIdx].SourceReliabilityScore ||
				(line.SourceReliabilityScore == accepted[existingIdx].SourceReliabilityScore && line.Source < accepted[existingIdx].Source) {
				rejectedDup := accepted[existingIdx]
				accepted[existingIdx] = line
				log.Debug().Str("key", key).Str("winner_source", line.Source).Str("loser_source", rejectedDup.Source).
					Msg("staging dedup: replaced duplicate with higher-reliability record")
			}
			rejected = append(rejected, Rejected{Record: rec, Reason: ReasonDuplicate})
			continue
		}

		seen[key] = len(accepted)
		accepted = append(accepted, line)
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].OddsTimestamp.Before(accepted[j].OddsTimestamp)
	})

	return accepted, rejected, quarantined, Metrics{Accepted: len(accepted), Rejected: len(rejected), Quarantined: len(quarantined)}
}

// canonicalizeFields converts a ProvisionalRecord's market-specific fields
// into a BettingLine, applying the canonicalization rules of spec.md §4.3:
// half-point rounding for spreads/totals, percentage clipping for splits,
// and odds sanity range validation. It returns the number of filled price
// fields for completeness scoring.
func canonicalizeFields(rec contracts.ProvisionalRecord, canonicalGameID string, sportsbookID int64) (models.BettingLine, int, bool) {
	line := models.BettingLine{
		CanonicalGameID:  canonicalGameID,
		SportsbookID:     sportsbookID,
		Market:           rec.Market,
		Source:           rec.Source,
		ExternalSourceID: rec.ExternalGameID,
		OddsTimestamp:    rec.OddsTimestamp.UTC(),
	}

	line.HomeSplit, line.AwaySplit = canonicalizeSplits(rec.QuoteFields)

	filled := 0
	switch rec.Market {
	case models.MarketMoneyline:
		home, homeOK := asOdds(rec.QuoteFields["home_price"])
		away, awayOK := asOdds(rec.QuoteFields["away_price"])
		if !homeOK && !awayOK {
			return models.BettingLine{}, 0, false
		}
		line.Moneyline = &models.MoneylineFields{HomePrice: home, AwayPrice: away}
		if homeOK {
			filled++
		}
		if awayOK {
			filled++
		}
	case models.MarketSpread:
		home, homeOK := asOdds(rec.QuoteFields["home_price"])
		away, awayOK := asOdds(rec.QuoteFields["away_price"])
		lineVal, lineOK := asFloat(rec.QuoteFields["spread_line"])
		if !homeOK && !awayOK && !lineOK {
			return models.BettingLine{}, 0, false
		}
		line.Spread = &models.SpreadFields{SpreadLine: roundIfOK(lineVal, lineOK), HomePrice: home, AwayPrice: away}
		if homeOK {
			filled++
		}
		if awayOK {
			filled++
		}
		if lineOK {
			filled++
		}
	case models.MarketTotal:
		over, overOK := asOdds(rec.QuoteFields["over_price"])
		under, underOK := asOdds(rec.QuoteFields["under_price"])
		lineVal, lineOK := asFloat(rec.QuoteFields["total_line"])
		if !overOK && !underOK && !lineOK {
			return models.BettingLine{}, 0, false
		}
		line.Total = &models.TotalFields{TotalLine: roundIfOK(lineVal, lineOK), OverPrice: over, UnderPrice: under}
		if overOK {
			filled++
		}
		if underOK {
			filled++
		}
		if lineOK {
			filled++
		}
	default:
		return models.BettingLine{}, 0, false
	}

	return line, filled, true
}

func canonicalizeSplits(fields map[string]interface{}) (models.VolumeSplit, models.VolumeSplit) {
	home := models.VolumeSplit{
		BetsPct:  clipPtr(fields["home_bets_pct"]),
		MoneyPct: clipPtr(fields["home_money_pct"]),
	}
	away := models.VolumeSplit{
		BetsPct:  clipPtr(fields["away_bets_pct"]),
		MoneyPct: clipPtr(fields["away_money_pct"]),
	}
	return home, away
}

func clipPtr(v interface{}) *float64 {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	clipped, ok := oddsmath.ClipPercent(f)
	if !ok {
		return nil
	}
	return &clipped
}

func roundIfOK(v float64, ok bool) float64 {
	if !ok {
		return 0
	}
	return oddsmath.RoundToHalfPoint(v)
}

func asOdds(v interface{}) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	odds := int(f)
	if !oddsmath.IsValidAmericanOdds(odds) {
		return 0, false
	}
	return odds, true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
