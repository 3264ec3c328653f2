package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

type playerService struct {
	players repository.PlayerRepository
	teams   repository.TeamRepository
	log     zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, teams repository.TeamRepository, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, teams: teams, log: l}
}

func (s *playerService) CreatePlayer(ctx context.Context, in CreatePlayerInput) (model.Player, error) {
	start := time.Now()
	rawPos := in.Position

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	position := normalizePosition(in.Position)

	ferrs := validateID(nil, "team_id", in.TeamID)
	if firstName == "" {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "must not be empty"})
	} else if ln := len([]rune(firstName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "length must be <= 50"})
	}
	if lastName == "" {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "must not be empty"})
	} else if ln := len([]rune(lastName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "length must be <= 50"})
	}
	if in.JerseyNumber < 0 || in.JerseyNumber > maxJersey {
		ferrs = append(ferrs, FieldError{Field: "jersey_number", Message: "must be between 0 and 99"})
	}
	if !isValidPosition(position) {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of F, D, G"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Str("pos_raw", rawPos).Msg("player validation failed")
		return model.Player{}, err
	}

	exists, err := s.teams.Exists(ctx, in.TeamID)
	if err != nil {
		return model.Player{}, upstream(err)
	}
	if !exists {
		return model.Player{}, newInvalidInput([]FieldError{{Field: "team_id", Message: "team does not exist"}})
	}

	out, err := s.players.Create(ctx, model.Player{
		TeamID:       in.TeamID,
		FirstName:    firstName,
		LastName:     lastName,
		JerseyNumber: in.JerseyNumber,
		Position:     position,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.Player{}, newInvalidInput([]FieldError{{Field: "jersey_number", Message: "already taken by an active player"}})
		}
		s.log.Error().Err(err).Str("team_id", in.TeamID).Msg("create player failed")
		return model.Player{}, upstream(err)
	}
	s.log.Info().Dur("took", time.Since(start)).Str("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	if err := newInvalidInput(validateID(nil, "id", id)); err != nil {
		return model.Player{}, err
	}
	out, err := s.players.GetByID(ctx, id)
	return out, upstream(err)
}

func (s *playerService) ListPlayersByTeam(ctx context.Context, teamID string, page repository.Page) (repository.PageResult[model.Player], error) {
	if err := newInvalidInput(validateID(nil, "team_id", teamID)); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	exists, err := s.teams.Exists(ctx, teamID)
	if err != nil {
		return repository.PageResult[model.Player]{}, upstream(err)
	}
	if !exists {
		return repository.PageResult[model.Player]{}, repository.ErrNotFound
	}
	p := normalizePage(page)
	res, err := s.players.ListByTeam(ctx, teamID, p)
	if err != nil {
		s.log.Error().Err(err).Str("team_id", teamID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list players failed")
		return repository.PageResult[model.Player]{}, upstream(err)
	}
	return res, nil
}
