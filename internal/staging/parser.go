// Parsers turn one collector's raw JSON payload into the ProvisionalRecords
// staging normalizes. Each source has its own shape; a parser's only job is
// structural extraction; identity resolution and field canonicalization
// happen afterward in normalize.go. Grounded on
// XavierBriggs-Services/normalizer/internal/processor.Processor, which
// likewise pulls typed fields out of a generic decoded payload before
// handing them to the sport-specific normalizer.
package staging

import (
	"fmt"
	"time"

	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// ParserFor returns the contracts.Parser registered for source, or false if
// none is registered (an unrecognized source is a configuration error, not
// a data error).
func ParserFor(source string) (contracts.Parser, bool) {
	p, ok := parsersBySource[source]
	return p, ok
}

var parsersBySource = map[string]contracts.Parser{
	"primary_odds":     oddsParser{market: models.MarketMoneyline},
	"consensus_splits": splitsParser{},
	"public_bet_pct":   splitsParser{},
	"odds_compare":     oddsCompareParser{},
}

// schedule is deliberately unregistered: its payload is league
// scoreboard/status data, not a book's quote, so it never normalizes into a
// BettingLine. cmd/pipeline's ResolveOutcomes reads it directly instead.

// oddsParser extracts moneyline/spread/total quotes from a primary-odds
// payload shaped as {"games": [{...}]}.
type oddsParser struct{ market models.Market }

func (p oddsParser) Parse(payload map[string]interface{}) ([]contracts.ProvisionalRecord, error) {
	games, _ := payload["games"].([]interface{})
	out := make([]contracts.ProvisionalRecord, 0, len(games))

	for _, raw := range games {
		g, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		base := contracts.ProvisionalRecord{
			Source:                 "primary_odds",
			ExternalGameID:         str(g["league_game_id"]),
			ExternalSportsbookID:   str(g["sportsbook_external_id"]),
			ExternalSportsbookName: str(g["sportsbook_name"]),
			OddsTimestamp:          parseTimestamp(str(g["odds_timestamp"])),
		}

		if ml, ok := g["moneyline"].(map[string]interface{}); ok {
			rec := base
			rec.Market = models.MarketMoneyline
			rec.QuoteFields = ml
			rec.QuoteFields["home_team"] = g["home_team"]
			rec.QuoteFields["away_team"] = g["away_team"]
			rec.QuoteFields["date"] = g["date"]
			out = append(out, rec)
		}
		if sp, ok := g["spread"].(map[string]interface{}); ok {
			rec := base
			rec.Market = models.MarketSpread
			rec.QuoteFields = sp
			rec.QuoteFields["home_team"] = g["home_team"]
			rec.QuoteFields["away_team"] = g["away_team"]
			rec.QuoteFields["date"] = g["date"]
			out = append(out, rec)
		}
		if tot, ok := g["total"].(map[string]interface{}); ok {
			rec := base
			rec.Market = models.MarketTotal
			rec.QuoteFields = tot
			rec.QuoteFields["home_team"] = g["home_team"]
			rec.QuoteFields["away_team"] = g["away_team"]
			rec.QuoteFields["date"] = g["date"]
			out = append(out, rec)
		}
	}
	if len(out) == 0 && len(games) > 0 {
		return nil, fmt.Errorf("staging: primary_odds payload had %d games but none had a recognized market", len(games))
	}
	return out, nil
}

// splitsParser extracts bets_pct/money_pct volume splits, shared by
// consensus_splits and public_bet_pct since both emit the same shape.
type splitsParser struct{}

func (p splitsParser) Parse(payload map[string]interface{}) ([]contracts.ProvisionalRecord, error) {
	games, _ := payload["games"].([]interface{})
	out := make([]contracts.ProvisionalRecord, 0, len(games))

	for _, raw := range games {
		g, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		market := models.Market(str(g["market"]))
		if market == "" {
			market = models.MarketMoneyline
		}
		out = append(out, contracts.ProvisionalRecord{
			Source:                 str(g["source"]),
			ExternalGameID:         str(g["league_game_id"]),
			ExternalSportsbookID:   str(g["sportsbook_external_id"]),
			ExternalSportsbookName: str(g["sportsbook_name"]),
			Market:                 market,
			OddsTimestamp:          parseTimestamp(str(g["odds_timestamp"])),
			QuoteFields: map[string]interface{}{
				"home_bets_pct":  g["home_bets_pct"],
				"home_money_pct": g["home_money_pct"],
				"away_bets_pct":  g["away_bets_pct"],
				"away_money_pct": g["away_money_pct"],
				"home_team":      g["home_team"],
				"away_team":      g["away_team"],
				"date":           g["date"],
			},
		})
	}
	return out, nil
}

// oddsCompareParser extracts one ProvisionalRecord per book per market from
// the cross-book comparison feed's {"games": [{..., "books": [{...}]}]}
// shape (internal/collectors/oddscompare), the same per-market fields as
// oddsParser but nested one level deeper under each game's book list.
type oddsCompareParser struct{}

func (p oddsCompareParser) Parse(payload map[string]interface{}) ([]contracts.ProvisionalRecord, error) {
	games, _ := payload["games"].([]interface{})
	out := make([]contracts.ProvisionalRecord, 0, len(games))

	for _, raw := range games {
		g, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		books, _ := g["books"].([]interface{})
		for _, rawBook := range books {
			book, ok := rawBook.(map[string]interface{})
			if !ok {
				continue
			}
			base := contracts.ProvisionalRecord{
				Source:                 "odds_compare",
				ExternalGameID:         str(g["league_game_id"]),
				ExternalSportsbookID:   str(book["sportsbook_external_id"]),
				ExternalSportsbookName: str(book["sportsbook_name"]),
				OddsTimestamp:          parseTimestamp(str(book["odds_timestamp"])),
			}

			if ml, ok := book["moneyline"].(map[string]interface{}); ok {
				rec := base
				rec.Market = models.MarketMoneyline
				rec.QuoteFields = withGameFields(ml, g)
				out = append(out, rec)
			}
			if sp, ok := book["spread"].(map[string]interface{}); ok {
				rec := base
				rec.Market = models.MarketSpread
				rec.QuoteFields = withGameFields(sp, g)
				out = append(out, rec)
			}
			if tot, ok := book["total"].(map[string]interface{}); ok {
				rec := base
				rec.Market = models.MarketTotal
				rec.QuoteFields = withGameFields(tot, g)
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// withGameFields copies quote into a new map with the game's team/date
// fields merged in, so each market's QuoteFields is independent even when
// several markets share the same book entry.
func withGameFields(quote, game map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(quote)+3)
	for k, v := range quote {
		out[k] = v
	}
	out["home_team"] = game["home_team"]
	out["away_team"] = game["away_team"]
	out["date"] = game["date"]
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// eastern is the fixed offset business rule spec.md §4.3 specifies for
// timestamps without an explicit zone: "interpreted as East-Coast time".
// A fixed UTC-5 offset is used rather than a tz-database lookup so daylight
// saving transitions don't depend on the host's tzdata being installed;
// this trades a one-hour skew during EDT for that independence, acceptable
// since every upstream timestamp carries its own offset in practice.
var eastern = time.FixedZone("EST", -5*60*60)

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	const noZoneLayout = "2006-01-02T15:04:05"
	if t, err := time.ParseInLocation(noZoneLayout, s, eastern); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
