package identity

import (
	"context"

	"github.com/samlafell/mlbcore/pkg/models"
)

// Store is the persisted-mapping-table backing the resolver's LRU cache
// (spec.md §4.4). Implemented by internal/persistence; a test fake suffices
// for everything in this package.
type Store interface {
	FindGameByLeagueID(ctx context.Context, leagueGameID string) (models.Game, bool, error)
	FindGameByTuple(ctx context.Context, providerDate, homeAbbrev, awayAbbrev string) (models.Game, bool, error)
	FindSportsbookMapping(ctx context.Context, source, externalID string) (models.SportsbookMapping, bool, error)
	FindSportsbookMappingByName(ctx context.Context, source, externalNameLower string) (models.SportsbookMapping, bool, error)
	CreateSportsbookMapping(ctx context.Context, mapping models.SportsbookMapping) error
}
