package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/cache"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

type gameService struct {
	games repository.GameRepository
	teams repository.TeamRepository
	tx    repository.TxManager
	cache cache.StatsCache
	log   zerolog.Logger
}

func NewGameService(games repository.GameRepository, teams repository.TeamRepository, tx repository.TxManager, c cache.StatsCache, logger zerolog.Logger) GameService {
	l := logger.With().Str("module", "service").Str("component", "game").Logger()
	if c == nil {
		c = cache.Noop{}
	}
	return &gameService{games: games, teams: teams, tx: tx, cache: c, log: l}
}

func (s *gameService) CreateGame(ctx context.Context, season string, date time.Time, homeID, awayID, status string) (model.Game, error) {
	seasonTrimmed := strings.TrimSpace(season)
	statusNorm := normalizeStatus(status)
	if statusNorm == "" {
		statusNorm = model.GameStatusScheduled
	}

	ferrs := validateID(nil, "home_team_id", homeID)
	ferrs = validateID(ferrs, "away_team_id", awayID)
	if homeID != "" && homeID == awayID {
		ferrs = append(ferrs, FieldError{Field: "teams", Message: "home and away must differ"})
	}
	if date.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "date", Message: "must be set"})
	}
	if !isValidSeason(seasonTrimmed) {
		ferrs = append(ferrs, FieldError{Field: "season", Message: "invalid format, expected YYYY-YY"})
	}
	if !isValidGameStatus(statusNorm) {
		ferrs = append(ferrs, FieldError{Field: "status", Message: "must be one of scheduled|in_progress|completed"})
	}
	// Early exit if basic structure is invalid; do not touch the database.
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("game validation failed (structure)")
		return model.Game{}, err
	}

	var existenceErrs []FieldError
	for _, ref := range []struct{ field, id string }{{"home_team_id", homeID}, {"away_team_id", awayID}} {
		ok, err := s.teams.Exists(ctx, ref.id)
		if err != nil {
			return model.Game{}, upstream(err)
		}
		if !ok {
			existenceErrs = append(existenceErrs, FieldError{Field: ref.field, Message: "team does not exist"})
		}
	}
	if err := newInvalidInput(existenceErrs); err != nil {
		s.log.Debug().Interface("field_errors", existenceErrs).Msg("game validation failed (existence)")
		return model.Game{}, err
	}

	out, err := s.games.Create(ctx, model.Game{Season: seasonTrimmed, Date: date, HomeTeamID: homeID, AwayTeamID: awayID, Status: statusNorm})
	if err != nil {
		s.log.Error().Err(err).Str("home_id", homeID).Str("away_id", awayID).Msg("create game failed")
		return model.Game{}, upstream(err)
	}
	return out, nil
}

func (s *gameService) GetGame(ctx context.Context, id string) (model.Game, error) {
	if err := newInvalidInput(validateID(nil, "id", id)); err != nil {
		return model.Game{}, err
	}
	out, err := s.games.GetByID(ctx, id)
	return out, upstream(err)
}

func (s *gameService) ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error) {
	p := normalizePage(page)
	res, err := s.games.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list games failed")
		return repository.PageResult[model.Game]{}, upstream(err)
	}
	return res, nil
}

// RecordResult stores the score and status of a game and drops the cached stats
// of both teams, since completing a game changes every aggregate.
func (s *gameService) RecordResult(ctx context.Context, id string, res GameResult) (model.Game, error) {
	status := normalizeStatus(res.Status)
	if status == "" {
		status = model.GameStatusCompleted
	}
	endedIn := strings.ToLower(strings.TrimSpace(res.EndedIn))

	ferrs := validateID(nil, "id", id)
	if !isValidGameStatus(status) {
		ferrs = append(ferrs, FieldError{Field: "status", Message: "must be one of scheduled|in_progress|completed"})
	}
	if res.HomeScore < 0 {
		ferrs = append(ferrs, FieldError{Field: "home_score", Message: "must be >= 0"})
	}
	if res.AwayScore < 0 {
		ferrs = append(ferrs, FieldError{Field: "away_score", Message: "must be >= 0"})
	}
	if !isValidEndedIn(endedIn) {
		ferrs = append(ferrs, FieldError{Field: "ended_in", Message: "must be one of regulation|overtime|shootout"})
	}
	if status == model.GameStatusCompleted {
		if endedIn == "" {
			endedIn = model.EndedInRegulation
		}
		if endedIn != model.EndedInRegulation && res.HomeScore == res.AwayScore {
			ferrs = append(ferrs, FieldError{Field: "ended_in", Message: "overtime and shootout games need a winner"})
		}
	} else if endedIn != "" {
		ferrs = append(ferrs, FieldError{Field: "ended_in", Message: "only completed games have an ending"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}

	var out model.Game
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		g, err := s.games.GetByID(ctx, id)
		if err != nil {
			return err
		}
		g.Status, g.HomeScore, g.AwayScore, g.EndedIn = status, res.HomeScore, res.AwayScore, endedIn
		out, err = s.games.UpdateResult(ctx, g)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("game_id", id).Msg("record result failed")
		}
		return model.Game{}, upstream(err)
	}
	for _, team := range []string{out.HomeTeamID, out.AwayTeamID} {
		if err := s.cache.Invalidate(ctx, team, out.Season); err != nil {
			s.log.Warn().Err(err).Str("team_id", team).Str("season", out.Season).Msg("stats cache invalidation failed")
		}
	}
	s.log.Info().Str("game_id", out.ID).Str("status", out.Status).Int("home", out.HomeScore).Int("away", out.AwayScore).Msg("game result recorded")
	return out, nil
}
