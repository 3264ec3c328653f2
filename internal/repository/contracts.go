package repository

import (
	"context"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TeamRepository declares persistence operations for teams.
// Implementations return domain errors from errors.go rather than PG codes.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id string) (model.Team, error)
	List(ctx context.Context, p Page) (PageResult[model.Team], error)
	Exists(ctx context.Context, id string) (bool, error)
}

// PlayerRepository declares persistence operations for players.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id string) (model.Player, error)
	ListByTeam(ctx context.Context, teamID string, p Page) (PageResult[model.Player], error)
	// ListActiveByTeam returns the whole active roster ordered by jersey number.
	ListActiveByTeam(ctx context.Context, teamID string) ([]model.Player, error)
}

// GameRepository declares persistence operations for games.
type GameRepository interface {
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id string) (model.Game, error)
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
	// ListByTeamSeason returns every game the team plays in the season, any
	// status, ordered by date. An empty season matches all seasons.
	ListByTeamSeason(ctx context.Context, teamID, season string) ([]model.Game, error)
	// UpdateResult stores status, final score and how the game ended.
	UpdateResult(ctx context.Context, g model.Game) (model.Game, error)
}

// EventRepository declares persistence operations for play-by-play events.
// Events are append-only.
type EventRepository interface {
	Create(ctx context.Context, e model.Event) (model.Event, error)
	ListByGame(ctx context.Context, gameID string) ([]model.Event, error)
	ListByGames(ctx context.Context, gameIDs []string) ([]model.Event, error)
}

// LineupRepository declares persistence operations for lineup entries.
type LineupRepository interface {
	Upsert(ctx context.Context, l model.LineupEntry) (model.LineupEntry, error)
	ListByGames(ctx context.Context, gameIDs []string) ([]model.LineupEntry, error)
}
