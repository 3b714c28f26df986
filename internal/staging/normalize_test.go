package staging

import (
	"context"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/internal/identity"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// fakeIdentityStore is a minimal identity.Store fake scoped to this
// package's tests, mirroring internal/identity/resolver_test.go's fakeStore
// (unexported there, so rebuilt here rather than imported).
type fakeIdentityStore struct {
	gamesByTuple map[string]models.Game
	byID         map[string]models.SportsbookMapping
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{
		gamesByTuple: map[string]models.Game{},
		byID:         map[string]models.SportsbookMapping{},
	}
}

func (f *fakeIdentityStore) FindGameByLeagueID(ctx context.Context, leagueGameID string) (models.Game, bool, error) {
	return models.Game{}, false, nil
}

func (f *fakeIdentityStore) FindGameByTuple(ctx context.Context, providerDate, homeAbbrev, awayAbbrev string) (models.Game, bool, error) {
	g, ok := f.gamesByTuple[models.CanonicalGameID(providerDate, homeAbbrev, awayAbbrev)]
	return g, ok, nil
}

func (f *fakeIdentityStore) FindSportsbookMapping(ctx context.Context, source, externalID string) (models.SportsbookMapping, bool, error) {
	m, ok := f.byID[source+"|"+externalID]
	return m, ok, nil
}

func (f *fakeIdentityStore) FindSportsbookMappingByName(ctx context.Context, source, externalNameLower string) (models.SportsbookMapping, bool, error) {
	return models.SportsbookMapping{}, false, nil
}

func (f *fakeIdentityStore) CreateSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error {
	f.byID[mapping.Source+"|"+mapping.ExternalID] = mapping
	return nil
}

func newTestZone() (*Zone, *fakeIdentityStore) {
	store := newFakeIdentityStore()
	store.gamesByTuple["2026-07-31:BOS:NYY"] = models.Game{CanonicalID: "2026-07-31:BOS:NYY"}
	store.byID["primary_odds|dk"] = models.SportsbookMapping{Source: "primary_odds", ExternalID: "dk", SportsbookID: 7}
	resolver := identity.New(store, 100, true)
	return New(resolver, 60*time.Second), store
}

func baseRecord() contracts.ProvisionalRecord {
	return contracts.ProvisionalRecord{
		Source:                 "primary_odds",
		ExternalGameID:         "",
		ExternalSportsbookID:   "dk",
		ExternalSportsbookName: "DraftKings",
		Market:                 models.MarketMoneyline,
		OddsTimestamp:          time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC),
		QuoteFields: map[string]interface{}{
			"home_team":  "Boston Red Sox",
			"away_team":  "New York Yankees",
			"date":       "2026-07-31",
			"home_price": -150.0,
			"away_price": 130.0,
		},
	}
}

func TestNormalize_AcceptsValidMoneylineLine(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()

	accepted, rejected, quarantined, metrics := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(rejected) != 0 || len(quarantined) != 0 {
		t.Fatalf("expected no rejections/quarantines, got rejected=%v quarantined=%v", rejected, quarantined)
	}
	if len(accepted) != 1 {
		t.Fatalf("got %d accepted, want 1", len(accepted))
	}
	line := accepted[0]
	if line.CanonicalGameID != "2026-07-31:BOS:NYY" {
		t.Errorf("CanonicalGameID = %q", line.CanonicalGameID)
	}
	if line.SportsbookID != 7 {
		t.Errorf("SportsbookID = %d, want 7", line.SportsbookID)
	}
	if line.Moneyline == nil || line.Moneyline.HomePrice != -150 || line.Moneyline.AwayPrice != 130 {
		t.Errorf("Moneyline = %+v", line.Moneyline)
	}
	if metrics.Accepted != 1 {
		t.Errorf("metrics.Accepted = %d, want 1", metrics.Accepted)
	}
}

func TestNormalize_RejectsInvalidTimestamp(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.OddsTimestamp = time.Time{}

	accepted, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(accepted) != 0 {
		t.Fatalf("expected no accepted records, got %d", len(accepted))
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonInvalidTimestamp {
		t.Fatalf("expected a single invalid_timestamp rejection, got %+v", rejected)
	}
}

func TestNormalize_RejectsTimestampBeyondClockSkewTolerance(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.OddsTimestamp = time.Now().UTC().Add(5 * time.Minute)

	accepted, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(accepted) != 0 {
		t.Fatalf("expected no accepted records, got %d", len(accepted))
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonClockSkew {
		t.Fatalf("expected a single clock_skew rejection, got %+v", rejected)
	}
}

func TestNormalize_AcceptsTimestampWithinClockSkewTolerance(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.OddsTimestamp = time.Now().UTC().Add(30 * time.Second)

	_, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	for _, r := range rejected {
		if r.Reason == ReasonClockSkew {
			t.Fatalf("expected no clock_skew rejection within tolerance, got %+v", rejected)
		}
	}
}

func TestNormalize_RejectsSchemaViolationMissingTeamNames(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	delete(rec.QuoteFields, "home_team")

	_, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(rejected) != 1 || rejected[0].Reason != ReasonSchemaViolation {
		t.Fatalf("expected a single schema_violation rejection, got %+v", rejected)
	}
}

func TestNormalize_RejectsInvalidOdds(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.QuoteFields["home_price"] = 0.0      // excluded: American odds are never exactly 0
	rec.QuoteFields["away_price"] = 250000.0 // outside the [-100000, 100000] sanity range

	_, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(rejected) != 1 || rejected[0].Reason != ReasonInvalidOdds {
		t.Fatalf("expected a single invalid_odds rejection, got %+v", rejected)
	}
}

func TestNormalize_RejectsUnknownSportsbookName(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.ExternalSportsbookID = "unseen-book-id"
	rec.ExternalSportsbookName = "Totally New Book"

	_, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(rejected) != 1 || rejected[0].Reason != ReasonUnknownSportsbook {
		t.Fatalf("expected a single unknown_sportsbook rejection, got %+v", rejected)
	}
}

func TestNormalize_QuarantinesUnresolvedGame(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()
	rec.QuoteFields["home_team"] = "Seattle Mariners"
	rec.QuoteFields["away_team"] = "Oakland Athletics"

	accepted, rejected, quarantined, metrics := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(accepted) != 0 || len(rejected) != 0 {
		t.Fatalf("expected neither acceptance nor rejection, got accepted=%v rejected=%v", accepted, rejected)
	}
	if len(quarantined) != 1 {
		t.Fatalf("expected 1 quarantined record, got %d", len(quarantined))
	}
	if metrics.Quarantined != 1 {
		t.Errorf("metrics.Quarantined = %d, want 1", metrics.Quarantined)
	}
}

func TestNormalize_DedupKeepsHigherReliabilitySource(t *testing.T) {
	zone, store := newTestZone()
	store.byID["consensus_splits|dk"] = models.SportsbookMapping{Source: "consensus_splits", ExternalID: "dk", SportsbookID: 7}

	lowReliability := baseRecord()
	lowReliability.Source = "consensus_splits" // reliability 0.85 < primary_odds's 0.95

	highReliability := baseRecord()
	highReliability.Source = "primary_odds"

	accepted, rejected, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{lowReliability, highReliability})

	if len(accepted) != 1 {
		t.Fatalf("expected dedup to leave exactly 1 accepted line, got %d", len(accepted))
	}
	if accepted[0].Source != "primary_odds" {
		t.Errorf("winning source = %q, want primary_odds (higher reliability)", accepted[0].Source)
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonDuplicate {
		t.Fatalf("expected 1 duplicate rejection, got %+v", rejected)
	}
}

func TestNormalize_DedupTieBreaksLexicallyOnEqualReliability(t *testing.T) {
	zone, store := newTestZone()
	store.byID["zzz_source|dk"] = models.SportsbookMapping{Source: "zzz_source", ExternalID: "dk", SportsbookID: 7}
	store.byID["aaa_source|dk"] = models.SportsbookMapping{Source: "aaa_source", ExternalID: "dk", SportsbookID: 7}

	first := baseRecord()
	first.Source = "zzz_source" // both unknown -> DefaultReliability, tie broken lexically
	second := baseRecord()
	second.Source = "aaa_source"

	accepted, _, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{first, second})

	if len(accepted) != 1 {
		t.Fatalf("expected exactly 1 accepted line, got %d", len(accepted))
	}
	if accepted[0].Source != "aaa_source" {
		t.Errorf("winning source = %q, want aaa_source (lexically first on tie)", accepted[0].Source)
	}
}

func TestNormalize_AssignsQualityTier(t *testing.T) {
	zone, _ := newTestZone()
	rec := baseRecord()

	accepted, _, _, _ := zone.Normalize(context.Background(), []contracts.ProvisionalRecord{rec})

	if len(accepted) != 1 {
		t.Fatalf("expected 1 accepted line, got %d", len(accepted))
	}
	if accepted[0].DataQuality == "" {
		t.Error("expected a non-empty DataQuality tier")
	}
}
