package models

import (
	"strconv"
	"time"
)

// Market identifies which of the three supported bet types a BettingLine prices.
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
)

// SharpActionTag classifies the direction of detected sharp money, per spec.md §4.5.
type SharpActionTag string

const (
	SharpNone       SharpActionTag = "none"
	SharpHeavyHome  SharpActionTag = "heavy_home"
	SharpHeavyAway  SharpActionTag = "heavy_away"
	SharpHeavyOver  SharpActionTag = "heavy_over"
	SharpHeavyUnder SharpActionTag = "heavy_under"
)

// QualityTier buckets a BettingLine's trustworthiness, a pure function of
// completeness/reliability/sportsbook-presence (spec.md §3, §4.3).
type QualityTier string

const (
	QualityHigh   QualityTier = "HIGH"
	QualityMedium QualityTier = "MEDIUM"
	QualityLow    QualityTier = "LOW"
	QualityPoor   QualityTier = "POOR"
)

// MoneylineFields holds American-odds prices for a moneyline quote.
type MoneylineFields struct {
	HomePrice int `json:"home_price"`
	AwayPrice int `json:"away_price"`
}

// SpreadFields holds the point spread (half-point granularity) and prices.
type SpreadFields struct {
	SpreadLine float64 `json:"spread_line"`
	HomePrice  int     `json:"home_price"`
	AwayPrice  int     `json:"away_price"`
}

// TotalFields holds the over/under line and prices.
type TotalFields struct {
	TotalLine  float64 `json:"total_line"`
	OverPrice  int     `json:"over_price"`
	UnderPrice int     `json:"under_price"`
}

// VolumeSplit captures the bets-percentage / money-percentage pair for one
// side of a market. Both fields are nullable since not every source reports
// splits.
type VolumeSplit struct {
	BetsPct  *float64 `json:"bets_pct,omitempty"`
	MoneyPct *float64 `json:"money_pct,omitempty"`
}

// BettingLine is the unified, per-market, time-stamped quote described in
// spec.md §3. Exactly one of Moneyline/Spread/Total is populated, selected by
// Market.
type BettingLine struct {
	CanonicalGameID string `json:"canonical_game_id"`
	SportsbookID    int64  `json:"sportsbook_id"`
	Market          Market `json:"market"`

	Moneyline *MoneylineFields `json:"moneyline,omitempty"`
	Spread    *SpreadFields    `json:"spread,omitempty"`
	Total     *TotalFields     `json:"total,omitempty"`

	Source           string    `json:"source"`
	ExternalSourceID string    `json:"external_source_id"`
	OddsTimestamp    time.Time `json:"odds_timestamp"`

	OpeningSnapshot *BettingLineSnapshot `json:"opening_snapshot,omitempty"`
	ClosingSnapshot *BettingLineSnapshot `json:"closing_snapshot,omitempty"`

	HomeSplit VolumeSplit `json:"home_split"`
	AwaySplit VolumeSplit `json:"away_split"`

	SharpActionTag SharpActionTag `json:"sharp_action_tag"`
	PublicFade     bool           `json:"public_fade"`
	RLM            bool           `json:"rlm"`
	Steam          bool           `json:"steam"`

	DataCompletenessScore float64     `json:"data_completeness_score"`
	SourceReliabilityScore float64    `json:"source_reliability_score"`
	DataQuality           QualityTier `json:"data_quality"`

	// CLVCents is non-nil once a later snapshot for this key is marked
	// closing; see SPEC_FULL.md §10 (CLV bookkeeping, supplemented feature).
	CLVCents *int `json:"clv_cents,omitempty"`

	IngestionSeq int64 `json:"ingestion_seq"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BettingLineSnapshot freezes the market-specific numeric fields at open/close.
type BettingLineSnapshot struct {
	Moneyline *MoneylineFields `json:"moneyline,omitempty"`
	Spread    *SpreadFields    `json:"spread,omitempty"`
	Total     *TotalFields     `json:"total,omitempty"`
	CapturedAt time.Time       `json:"captured_at"`
}

// IdempotencyKey is the curated/staging dedup key from spec.md §3: at most one
// row exists per (canonical_game, sportsbook, market, odds_timestamp).
func (b BettingLine) IdempotencyKey() string {
	return b.CanonicalGameID + "|" + strconv.FormatInt(b.SportsbookID, 10) + "|" +
		string(b.Market) + "|" + b.OddsTimestamp.UTC().Format(time.RFC3339Nano)
}

// MovementKey groups BettingLine snapshots into the ordered sequence that
// spec.md §3 calls a LineMovement: one per (game, sportsbook, market).
func (b BettingLine) MovementKey() string {
	return b.CanonicalGameID + "|" + strconv.FormatInt(b.SportsbookID, 10) + "|" + string(b.Market)
}
