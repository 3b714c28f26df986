package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

type fakeStore struct {
	gamesByLeagueID map[string]models.Game
	gamesByTuple    map[string]models.Game
	byID            map[string]models.SportsbookMapping
	byName          map[string]models.SportsbookMapping
	created         []models.SportsbookMapping
	forceErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		gamesByLeagueID: map[string]models.Game{},
		gamesByTuple:    map[string]models.Game{},
		byID:            map[string]models.SportsbookMapping{},
		byName:          map[string]models.SportsbookMapping{},
	}
}

func (f *fakeStore) FindGameByLeagueID(ctx context.Context, leagueGameID string) (models.Game, bool, error) {
	if f.forceErr != nil {
		return models.Game{}, false, f.forceErr
	}
	g, ok := f.gamesByLeagueID[leagueGameID]
	return g, ok, nil
}

func (f *fakeStore) FindGameByTuple(ctx context.Context, providerDate, homeAbbrev, awayAbbrev string) (models.Game, bool, error) {
	if f.forceErr != nil {
		return models.Game{}, false, f.forceErr
	}
	g, ok := f.gamesByTuple[models.CanonicalGameID(providerDate, homeAbbrev, awayAbbrev)]
	return g, ok, nil
}

func (f *fakeStore) FindSportsbookMapping(ctx context.Context, source, externalID string) (models.SportsbookMapping, bool, error) {
	m, ok := f.byID[source+"|"+externalID]
	return m, ok, nil
}

func (f *fakeStore) FindSportsbookMappingByName(ctx context.Context, source, externalNameLower string) (models.SportsbookMapping, bool, error) {
	m, ok := f.byName[source+"|"+externalNameLower]
	return m, ok, nil
}

func (f *fakeStore) CreateSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error {
	f.created = append(f.created, mapping)
	f.byID[mapping.Source+"|"+mapping.ExternalID] = mapping
	return nil
}

func TestResolveGame_ByLeagueID(t *testing.T) {
	store := newFakeStore()
	store.gamesByLeagueID["401"] = models.Game{CanonicalID: "2026-07-31:BOS:NYY"}
	r := New(store, 100, true)

	game, err := r.ResolveGame(context.Background(), "401", "2026-07-31", "Boston Red Sox", "New York Yankees")
	if err != nil {
		t.Fatalf("ResolveGame returned error: %v", err)
	}
	if game.CanonicalID != "2026-07-31:BOS:NYY" {
		t.Errorf("CanonicalID = %q, want 2026-07-31:BOS:NYY", game.CanonicalID)
	}
}

func TestResolveGame_ByTupleWithFuzzyAlias(t *testing.T) {
	store := newFakeStore()
	store.gamesByTuple["2026-07-31:BOS:NYY"] = models.Game{CanonicalID: "2026-07-31:BOS:NYY"}
	r := New(store, 100, true)

	game, err := r.ResolveGame(context.Background(), "", "2026-07-31", "Red Sox", "Yankees")
	if err != nil {
		t.Fatalf("ResolveGame returned error: %v", err)
	}
	if game.CanonicalID != "2026-07-31:BOS:NYY" {
		t.Errorf("CanonicalID = %q, want 2026-07-31:BOS:NYY", game.CanonicalID)
	}
}

func TestResolveGame_FuzzyDisabledRejectsNonAbbrev(t *testing.T) {
	store := newFakeStore()
	r := New(store, 100, false)

	_, err := r.ResolveGame(context.Background(), "", "2026-07-31", "Red Sox", "Yankees")
	var unresolved *ErrUnresolved
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolveGame_UnknownTuple(t *testing.T) {
	store := newFakeStore()
	r := New(store, 100, true)

	_, err := r.ResolveGame(context.Background(), "", "2026-07-31", "BOS", "NYY")
	var unresolved *ErrUnresolved
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if unresolved.Kind != "game" {
		t.Errorf("Kind = %q, want game", unresolved.Kind)
	}
}

func TestResolveSportsbook_ByExternalID(t *testing.T) {
	store := newFakeStore()
	store.byID["primary_odds|42"] = models.SportsbookMapping{Source: "primary_odds", ExternalID: "42", SportsbookID: 7}
	r := New(store, 100, true)

	mapping, err := r.ResolveSportsbook(context.Background(), "primary_odds", "42", "DraftKings")
	if err != nil {
		t.Fatalf("ResolveSportsbook returned error: %v", err)
	}
	if mapping.SportsbookID != 7 {
		t.Errorf("SportsbookID = %d, want 7", mapping.SportsbookID)
	}
}

func TestResolveSportsbook_ByNameCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	store.byName["primary_odds|draftkings"] = models.SportsbookMapping{Source: "primary_odds", ExternalName: "DraftKings", SportsbookID: 7}
	r := New(store, 100, true)

	mapping, err := r.ResolveSportsbook(context.Background(), "primary_odds", "", "DRAFTKINGS")
	if err != nil {
		t.Fatalf("ResolveSportsbook returned error: %v", err)
	}
	if mapping.SportsbookID != 7 {
		t.Errorf("SportsbookID = %d, want 7", mapping.SportsbookID)
	}
}

func TestResolveSportsbook_QuarantinesUnknown(t *testing.T) {
	store := newFakeStore()
	r := New(store, 100, true)

	mapping, err := r.ResolveSportsbook(context.Background(), "primary_odds", "99", "New Book")
	var unresolved *ErrUnresolved
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if !mapping.NeedsManualReview {
		t.Error("expected quarantined mapping to be flagged NeedsManualReview")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 created mapping, got %d", len(store.created))
	}
}

func TestResolveSportsbook_ConcurrentQuarantineNoDuplicates(t *testing.T) {
	store := newFakeStore()
	r := New(store, 100, true)

	const n = 20
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			r.ResolveSportsbook(context.Background(), "primary_odds", "99", "New Book")
		}()
	}
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for concurrent ResolveSportsbook calls")
		}
	}
	if len(store.created) != 1 {
		t.Errorf("expected exactly 1 created mapping under concurrency, got %d", len(store.created))
	}
}
