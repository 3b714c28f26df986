// Package identity implements the game and sportsbook resolver of spec.md
// §4.4: a size-bounded in-memory cache backed by persisted mapping tables,
// with a single-writer lock per mapping table so concurrent staging workers
// never race to create duplicate mapping rows. Grounded on the RWMutex-
// guarded map pattern in
// XavierBriggs-Services/normalizer/internal/registry.NormalizerRegistry and
// the Redis-backed write-through cache in
// XavierBriggs-Services/game-stats-service/internal/cache.RedisWriter.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/pkg/models"
)

// ErrUnresolved is returned when a game or sportsbook could not be resolved
// by any of the lookup strategies spec.md §4.4 defines. Callers quarantine
// the record rather than dropping it.
type ErrUnresolved struct {
	Kind   string // "game" or "sportsbook"
	Detail string
}

func (e *ErrUnresolved) Error() string {
	return fmt.Sprintf("identity: unresolved %s: %s", e.Kind, e.Detail)
}

// Resolver resolves external game and sportsbook identifiers to the
// canonical identity the curated zone reconciles onto.
type Resolver struct {
	store Store

	gameCache       *lruCache
	sportsbookCache *lruCache

	fuzzyEnabled bool

	// sportsbookWriteMu is the single-writer lock per mapping table spec.md
	// §4.4 requires: many goroutines may read concurrently through the
	// cache, but only one may create a new sportsbook mapping row at a
	// time, preventing duplicate mapping inserts under a race. Games are
	// never created by the resolver itself (only looked up), so no
	// equivalent lock is needed for the game mapping table.
	sportsbookWriteMu sync.Mutex
}

// New builds a Resolver with an LRU cache of the given capacity per mapping
// table, backed by store.
func New(store Store, cacheSize int, fuzzyEnabled bool) *Resolver {
	return &Resolver{
		store:           store,
		gameCache:       newLRUCache(cacheSize),
		sportsbookCache: newLRUCache(cacheSize),
		fuzzyEnabled:    fuzzyEnabled,
	}
}

// ResolveGame implements the three-step lookup order of spec.md §4.4:
// explicit league id match, canonical tuple match, fuzzy team-name
// normalization. leagueGameID may be empty if the source never supplies
// one.
func (r *Resolver) ResolveGame(ctx context.Context, leagueGameID, providerDate, homeName, awayName string) (models.Game, error) {
	if leagueGameID != "" {
		cacheKey := "league:" + leagueGameID
		game, found, err := r.store.FindGameByLeagueID(ctx, leagueGameID)
		if err != nil {
			return models.Game{}, fmt.Errorf("identity: league id lookup: %w", err)
		}
		if found {
			r.gameCache.put(cacheKey, game.CanonicalID)
			return game, nil
		}
	}

	homeAbbrev, homeOK := r.canonicalAbbrev(homeName)
	awayAbbrev, awayOK := r.canonicalAbbrev(awayName)
	if !homeOK || !awayOK {
		return models.Game{}, &ErrUnresolved{Kind: "game", Detail: fmt.Sprintf("team name not recognized: home=%q away=%q", homeName, awayName)}
	}

	tupleKey := models.CanonicalGameID(providerDate, homeAbbrev, awayAbbrev)
	if canonicalID, ok := r.gameCache.get(tupleKey); ok {
		game, found, err := r.store.FindGameByTuple(ctx, providerDate, homeAbbrev, awayAbbrev)
		if err == nil && found && game.CanonicalID == canonicalID {
			return game, nil
		}
	}

	game, found, err := r.store.FindGameByTuple(ctx, providerDate, homeAbbrev, awayAbbrev)
	if err != nil {
		return models.Game{}, fmt.Errorf("identity: tuple lookup: %w", err)
	}
	if !found {
		return models.Game{}, &ErrUnresolved{Kind: "game", Detail: fmt.Sprintf("no game for tuple %s", tupleKey)}
	}
	r.gameCache.put(tupleKey, game.CanonicalID)
	return game, nil
}

// canonicalAbbrev resolves a raw team name to its three-letter abbreviation,
// trying an exact match before the fuzzy alias table (gated by
// fuzzyEnabled, matching SPEC_FULL.md §12's identity.fuzzy_match_enabled
// toggle).
func (r *Resolver) canonicalAbbrev(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 3 {
		return strings.ToUpper(trimmed), true
	}
	if !r.fuzzyEnabled {
		return "", false
	}
	return resolveTeamAbbrev(trimmed)
}

// ResolveSportsbook implements spec.md §4.4's sportsbook resolution order:
// (source, external_id) exact match, then (source, external_name)
// case-insensitive match, then creation of a quarantined mapping entry.
func (r *Resolver) ResolveSportsbook(ctx context.Context, source, externalID, externalName string) (models.SportsbookMapping, error) {
	if externalID != "" {
		cacheKey := source + "|id|" + externalID
		mapping, found, err := r.store.FindSportsbookMapping(ctx, source, externalID)
		if err != nil {
			return models.SportsbookMapping{}, fmt.Errorf("identity: sportsbook id lookup: %w", err)
		}
		if found {
			r.sportsbookCache.put(cacheKey, externalID)
			return mapping, nil
		}
	}

	if externalName != "" {
		nameLower := strings.ToLower(strings.TrimSpace(externalName))
		cacheKey := source + "|name|" + nameLower
		mapping, found, err := r.store.FindSportsbookMappingByName(ctx, source, nameLower)
		if err != nil {
			return models.SportsbookMapping{}, fmt.Errorf("identity: sportsbook name lookup: %w", err)
		}
		if found {
			r.sportsbookCache.put(cacheKey, nameLower)
			return mapping, nil
		}
	}

	return r.quarantineSportsbook(ctx, source, externalID, externalName)
}

// quarantineSportsbook creates a new mapping flagged for manual review, the
// third branch of spec.md §4.4's sportsbook resolution order. The
// single-writer lock prevents two concurrent staging workers from both
// inserting a mapping for the same unseen (source, external_id).
func (r *Resolver) quarantineSportsbook(ctx context.Context, source, externalID, externalName string) (models.SportsbookMapping, error) {
	r.sportsbookWriteMu.Lock()
	defer r.sportsbookWriteMu.Unlock()

	if externalID != "" {
		if mapping, found, err := r.store.FindSportsbookMapping(ctx, source, externalID); err == nil && found {
			return mapping, nil
		}
	}

	mapping := models.SportsbookMapping{
		Source:            source,
		ExternalID:        externalID,
		ExternalName:      externalName,
		SportsbookID:      0,
		NeedsManualReview: true,
	}
	if err := r.store.CreateSportsbookMapping(ctx, mapping); err != nil {
		return models.SportsbookMapping{}, fmt.Errorf("identity: quarantine sportsbook: %w", err)
	}
	log.Warn().Str("source", source).Str("external_id", externalID).Str("external_name", externalName).
		Msg("sportsbook mapping quarantined for manual review")
	return mapping, &ErrUnresolved{Kind: "sportsbook", Detail: fmt.Sprintf("%s/%s quarantined, needs manual review", source, externalID)}
}
