package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/cache"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

// timeInPeriodRe accepts M:SS or MM:SS game clock readings up to 20:00.
var timeInPeriodRe = regexp.MustCompile(`^([0-1]?\d|20):[0-5]\d$`)

// maxTimeOnIce bounds a lineup entry to a full game with overtime.
const maxTimeOnIce = 65 * 60

var strengthDetails = map[string]bool{"even": true, "power_play": true, "short_handed": true}

type eventService struct {
	events  repository.EventRepository
	lineups repository.LineupRepository
	games   repository.GameRepository
	players repository.PlayerRepository
	tx      repository.TxManager
	cache   cache.StatsCache
	log     zerolog.Logger
}

func NewEventService(events repository.EventRepository, lineups repository.LineupRepository, games repository.GameRepository, players repository.PlayerRepository, tx repository.TxManager, c cache.StatsCache, logger zerolog.Logger) EventService {
	l := logger.With().Str("module", "service").Str("component", "event").Logger()
	if c == nil {
		c = cache.Noop{}
	}
	return &eventService{events: events, lineups: lineups, games: games, players: players, tx: tx, cache: c, log: l}
}

// RecordEvent validates and stores one play-by-play event, then drops the cached
// stats of both teams in the game: goalie lines are credited from opponent events.
func (s *eventService) RecordEvent(ctx context.Context, e model.Event) (model.Event, error) {
	e.EventType = strings.ToLower(strings.TrimSpace(e.EventType))
	e.TimeInPeriod = strings.TrimSpace(e.TimeInPeriod)

	ferrs := validateID(nil, "game_id", e.GameID)
	ferrs = validateID(ferrs, "player_id", e.PlayerID)
	ferrs = validateID(ferrs, "team_id", e.TeamID)
	if !isValidEventType(e.EventType) {
		ferrs = append(ferrs, FieldError{Field: "event_type", Message: "unknown event type"})
	}
	if e.Period < 1 || e.Period > maxPeriod {
		ferrs = append(ferrs, FieldError{Field: "period", Message: "must be between 1 and 5"})
	}
	if e.TimeInPeriod != "" && !timeInPeriodRe.MatchString(e.TimeInPeriod) {
		ferrs = append(ferrs, FieldError{Field: "time_in_period", Message: "must be MM:SS"})
	}
	ferrs = validateDetails(ferrs, e.Details)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("event validation failed")
		return model.Event{}, err
	}

	var (
		out  model.Event
		game model.Game
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		game, err = s.games.GetByID(ctx, e.GameID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newInvalidInput([]FieldError{{Field: "game_id", Message: "game does not exist"}})
			}
			return err
		}
		player, err := s.players.GetByID(ctx, e.PlayerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newInvalidInput([]FieldError{{Field: "player_id", Message: "player does not exist"}})
			}
			return err
		}
		var fe []FieldError
		if player.TeamID != e.TeamID {
			fe = append(fe, FieldError{Field: "player_id", Message: "player does not belong to team"})
		}
		if !game.Involves(e.TeamID) {
			fe = append(fe, FieldError{Field: "team_id", Message: "team does not play in this game"})
		}
		if err := newInvalidInput(fe); err != nil {
			return err
		}
		out, err = s.events.Create(ctx, e)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			s.log.Error().Err(err).Str("game_id", e.GameID).Str("player_id", e.PlayerID).Str("event_type", e.EventType).Msg("record event failed")
		}
		return model.Event{}, upstream(err)
	}

	s.invalidate(ctx, game)
	s.log.Info().Str("event_id", out.ID).Str("game_id", out.GameID).Str("event_type", out.EventType).Msg("event recorded")
	return out, nil
}

func (s *eventService) ListEventsByGame(ctx context.Context, gameID string) ([]model.Event, error) {
	if err := newInvalidInput(validateID(nil, "game_id", gameID)); err != nil {
		return nil, err
	}
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, upstream(err)
	}
	out, err := s.events.ListByGame(ctx, gameID)
	if err != nil {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("list events failed")
		return nil, upstream(err)
	}
	return out, nil
}

// UpsertLineup records that a player dressed for a game, with optional time on ice.
func (s *eventService) UpsertLineup(ctx context.Context, l model.LineupEntry) (model.LineupEntry, error) {
	ferrs := validateID(nil, "game_id", l.GameID)
	ferrs = validateID(ferrs, "player_id", l.PlayerID)
	if l.TimeOnIceSeconds < 0 || l.TimeOnIceSeconds > maxTimeOnIce {
		ferrs = append(ferrs, FieldError{Field: "time_on_ice_seconds", Message: "must be between 0 and 3900"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.LineupEntry{}, err
	}

	var (
		out  model.LineupEntry
		game model.Game
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		game, err = s.games.GetByID(ctx, l.GameID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newInvalidInput([]FieldError{{Field: "game_id", Message: "game does not exist"}})
			}
			return err
		}
		player, err := s.players.GetByID(ctx, l.PlayerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newInvalidInput([]FieldError{{Field: "player_id", Message: "player does not exist"}})
			}
			return err
		}
		if !game.Involves(player.TeamID) {
			return newInvalidInput([]FieldError{{Field: "player_id", Message: "player's team does not play in this game"}})
		}
		l.TeamID = player.TeamID
		out, err = s.lineups.Upsert(ctx, l)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			s.log.Error().Err(err).Str("game_id", l.GameID).Str("player_id", l.PlayerID).Msg("upsert lineup failed")
		}
		return model.LineupEntry{}, upstream(err)
	}
	s.invalidate(ctx, game)
	return out, nil
}

// invalidate is best effort: a stale entry expires with its TTL.
func (s *eventService) invalidate(ctx context.Context, g model.Game) {
	for _, team := range []string{g.HomeTeamID, g.AwayTeamID} {
		if err := s.cache.Invalidate(ctx, team, g.Season); err != nil {
			s.log.Warn().Err(err).Str("team_id", team).Str("season", g.Season).Msg("stats cache invalidation failed")
		}
	}
}

// validateDetails checks the recognised detail keys; unknown keys are kept as-is.
func validateDetails(ferrs []FieldError, d map[string]any) []FieldError {
	if d == nil {
		return ferrs
	}
	if v, ok := d["strength"]; ok {
		if s, isStr := v.(string); !isStr || !strengthDetails[s] {
			ferrs = append(ferrs, FieldError{Field: "details.strength", Message: "must be one of even|power_play|short_handed"})
		}
	}
	if v, ok := d["penalty_minutes"]; ok {
		if !isNonNegativeInt(v) {
			ferrs = append(ferrs, FieldError{Field: "details.penalty_minutes", Message: "must be a non-negative integer"})
		}
	}
	for _, key := range []string{"saved_by", "goalie_id"} {
		if v, ok := d[key]; ok {
			if s, isStr := v.(string); !isStr || !isValidID(s) {
				ferrs = append(ferrs, FieldError{Field: "details." + key, Message: "must be a UUID"})
			}
		}
	}
	for _, key := range []string{"on_goal", "game_winning", "overtime", "scored"} {
		if v, ok := d[key]; ok {
			if _, isBool := v.(bool); !isBool {
				ferrs = append(ferrs, FieldError{Field: "details." + key, Message: "must be a boolean"})
			}
		}
	}
	return ferrs
}

func isNonNegativeInt(v any) bool {
	switch n := v.(type) {
	case float64:
		return n >= 0 && n == math.Trunc(n)
	case int:
		return n >= 0
	}
	return false
}
