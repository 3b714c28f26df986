package models

import "time"

// GameStatus is the lifecycle state of a canonical Game.
type GameStatus string

const (
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameFinal      GameStatus = "final"
	GamePostponed  GameStatus = "postponed"
	GameCancelled  GameStatus = "cancelled"
	GameDelayed    GameStatus = "delayed"
)

// Game is the canonical identity every BettingLine reconciles onto, regardless
// of which source produced the line. CanonicalID is derived from
// (provider game date, home team abbrev, away team abbrev) by the identity
// resolver; LeagueGameID is filled in once the official schedule source
// resolves the same game.
type Game struct {
	CanonicalID     string     `json:"canonical_id"`
	LeagueGameID    string     `json:"league_game_id,omitempty"`
	ScheduledAtUTC  time.Time  `json:"scheduled_at_utc"`
	ScheduledAtET   time.Time  `json:"scheduled_at_et"`
	HomeTeamAbbrev  string     `json:"home_team_abbrev"`
	AwayTeamAbbrev  string     `json:"away_team_abbrev"`
	Status          GameStatus `json:"status"`
	HomeFinalScore  *int       `json:"home_final_score,omitempty"`
	AwayFinalScore  *int       `json:"away_final_score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CanonicalGameID builds the identity key described in spec.md §3. Dates are
// compared in East Coast business-day terms (normalized by the caller before
// this is invoked), never UTC, so a game that starts at 11pm ET / 3am UTC
// still keys off the ET date.
func CanonicalGameID(providerDate string, homeAbbrev, awayAbbrev string) string {
	return providerDate + ":" + homeAbbrev + ":" + awayAbbrev
}

// IsTerminal reports whether the game will never change status again.
func (g Game) IsTerminal() bool {
	switch g.Status {
	case GameFinal, GameCancelled:
		return true
	default:
		return false
	}
}
