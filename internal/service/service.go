// Package service holds business logic orchestration across repositories and handlers.
// Kept lean: use-case coordination, validation and domain error shaping. The stat
// math itself lives in internal/stats.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrUpstreamUnavailable marks failures of the event store or another dependency
// the request could not do without (maps to HTTP 503).
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError is exported for handlers that reject malformed transport input
// (unparsable ids, numbers or dates) before reaching a service.
func NewInvalidInputError(fe []FieldError) error {
	if err := newInvalidInput(fe); err != nil {
		return err
	}
	return ErrInvalidInput
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// upstream wraps store failures so the transport can tell them from domain errors.
// Domain sentinels and context cancellation pass through unchanged.
func upstream(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrInvalidValue),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

// TeamService defines team-oriented use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, name string) (model.Team, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error)
}

// CreatePlayerInput is the writable part of a player.
type CreatePlayerInput struct {
	TeamID       string
	FirstName    string
	LastName     string
	JerseyNumber int
	Position     string
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, in CreatePlayerInput) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID string, page repository.Page) (repository.PageResult[model.Player], error)
}

// GameResult is the final score of a game.
type GameResult struct {
	Status    string
	HomeScore int
	AwayScore int
	EndedIn   string
}

// GameService defines game-oriented use cases.
type GameService interface {
	CreateGame(ctx context.Context, season string, date time.Time, homeID, awayID, status string) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
	RecordResult(ctx context.Context, id string, res GameResult) (model.Game, error)
}

// EventService defines live-entry use cases: play-by-play events and lineups.
type EventService interface {
	RecordEvent(ctx context.Context, e model.Event) (model.Event, error)
	ListEventsByGame(ctx context.Context, gameID string) ([]model.Event, error)
	UpsertLineup(ctx context.Context, l model.LineupEntry) (model.LineupEntry, error)
}

// PlayerStatsQuery selects one player's stats.
type PlayerStatsQuery struct {
	PlayerID    string
	TeamID      string
	Season      string
	Options     stats.Options
	Recalculate bool
}

// TeamStatsQuery selects one team's season summary.
type TeamStatsQuery struct {
	TeamID      string
	Season      string
	Recalculate bool
}

// AdvancedQuery selects situational splits for a player. Position overrides the
// roster position when set.
type AdvancedQuery struct {
	PlayerID string
	TeamID   string
	Season   string
	Position string
	Options  stats.Options
}

// LeaderboardQuery ranks a team's active roster. Zero values take the defaults.
type LeaderboardQuery struct {
	TeamID   string
	Season   string
	Category string
	Position string
	Limit    int
	MinGames *int
	Options  stats.Options
}

// ComparisonQuery compares up to six players of one team.
type ComparisonQuery struct {
	PlayerIDs  []string
	TeamID     string
	Season     string
	Categories []string
	Options    stats.Options
}

// TrendQuery selects the per-game series of one stat.
type TrendQuery struct {
	PlayerID  string
	TeamID    string
	Season    string
	Stat      string
	GameCount int
	Options   stats.Options
}

// StatsService defines the statistics use cases.
type StatsService interface {
	GetPlayerStats(ctx context.Context, q PlayerStatsQuery) (stats.PlayerStats, error)
	GetTeamStats(ctx context.Context, q TeamStatsQuery) (stats.TeamStats, error)
	CalculateAdvancedMetrics(ctx context.Context, q AdvancedQuery) (stats.AdvancedMetrics, error)
	GetLeaderboard(ctx context.Context, q LeaderboardQuery) (stats.Leaderboard, error)
	ComparePlayers(ctx context.Context, q ComparisonQuery) (stats.Comparison, error)
	GetTrend(ctx context.Context, q TrendQuery) (stats.Trend, error)
}
