package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

type eventRepository struct{ pool *pgxpool.Pool }

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id::text, game_id::text, player_id::text, team_id::text, event_type, period, time_in_period, details, created_at`

func eventDest(e *model.Event) []any {
	return []any{&e.ID, &e.GameID, &e.PlayerID, &e.TeamID, &e.EventType, &e.Period, &e.TimeInPeriod, &e.Details, &e.CreatedAt}
}

func (r *eventRepository) Create(ctx context.Context, e model.Event) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO game_events (game_id, player_id, team_id, event_type, period, time_in_period, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+eventColumns,
		e.GameID, e.PlayerID, e.TeamID, e.EventType, e.Period, e.TimeInPeriod, details,
	)
	var out model.Event
	if err := row.Scan(eventDest(&out)...); err != nil {
		return model.Event{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *eventRepository) ListByGame(ctx context.Context, gameID string) ([]model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+eventColumns+` FROM game_events WHERE game_id = $1
		 ORDER BY period, time_in_period, created_at, id`,
		gameID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return collectEvents(rows)
}

// ListByGames loads every event of the given games in one round trip.
func (r *eventRepository) ListByGames(ctx context.Context, gameIDs []string) ([]model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	if len(gameIDs) == 0 {
		return []model.Event{}, nil
	}
	ids, err := parseIDs(gameIDs)
	if err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+eventColumns+` FROM game_events WHERE game_id = ANY($1)
		 ORDER BY game_id, created_at, id`,
		ids,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	res := make([]model.Event, 0, 64)
	for rows.Next() {
		var it model.Event
		if err := rows.Scan(eventDest(&it)...); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

var _ repository.EventRepository = (*eventRepository)(nil)
