package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

type lineupRepository struct{ pool *pgxpool.Pool }

func NewLineupRepository(pool *pgxpool.Pool) repository.LineupRepository {
	return &lineupRepository{pool: pool}
}

const lineupColumns = `game_id::text, player_id::text, team_id::text, time_on_ice_seconds, starter, created_at, updated_at`

func lineupDest(l *model.LineupEntry) []any {
	return []any{&l.GameID, &l.PlayerID, &l.TeamID, &l.TimeOnIceSeconds, &l.Starter, &l.CreatedAt, &l.UpdatedAt}
}

// Upsert records participation; a second call for the same game and player
// replaces time on ice and starter.
func (r *lineupRepository) Upsert(ctx context.Context, l model.LineupEntry) (model.LineupEntry, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.LineupEntry{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO game_lineups (game_id, player_id, team_id, time_on_ice_seconds, starter)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (game_id, player_id)
		 DO UPDATE SET
			team_id = EXCLUDED.team_id,
			time_on_ice_seconds = EXCLUDED.time_on_ice_seconds,
			starter = EXCLUDED.starter,
			updated_at = NOW()
		 RETURNING `+lineupColumns,
		l.GameID, l.PlayerID, l.TeamID, l.TimeOnIceSeconds, l.Starter,
	)
	var out model.LineupEntry
	if err := row.Scan(lineupDest(&out)...); err != nil {
		return model.LineupEntry{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *lineupRepository) ListByGames(ctx context.Context, gameIDs []string) ([]model.LineupEntry, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	if len(gameIDs) == 0 {
		return []model.LineupEntry{}, nil
	}
	ids, err := parseIDs(gameIDs)
	if err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+lineupColumns+` FROM game_lineups WHERE game_id = ANY($1) ORDER BY game_id, player_id`,
		ids,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.LineupEntry, 0, 32)
	for rows.Next() {
		var it model.LineupEntry
		if err := rows.Scan(lineupDest(&it)...); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

var _ repository.LineupRepository = (*lineupRepository)(nil)
