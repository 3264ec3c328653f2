package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

type gameRepository struct{ pool *pgxpool.Pool }

func NewGameRepository(pool *pgxpool.Pool) repository.GameRepository {
	return &gameRepository{pool: pool}
}

const gameColumns = `g.id::text, g.season, g.date, g.home_team_id::text, g.away_team_id::text,
	hm.name, aw.name, g.status, g.home_score, g.away_score, COALESCE(g.ended_in, ''),
	g.created_at, g.updated_at`

// gameFrom joins team names so read paths can report opponents.
const gameFrom = `
	FROM games g
	JOIN teams hm ON hm.id = g.home_team_id
	JOIN teams aw ON aw.id = g.away_team_id`

const gameReturning = `RETURNING id::text, season, date, home_team_id::text, away_team_id::text,
	(SELECT name FROM teams WHERE id = home_team_id), (SELECT name FROM teams WHERE id = away_team_id),
	status, home_score, away_score, COALESCE(ended_in, ''), created_at, updated_at`

func gameDest(g *model.Game) []any {
	return []any{&g.ID, &g.Season, &g.Date, &g.HomeTeamID, &g.AwayTeamID, &g.HomeTeamName, &g.AwayTeamName,
		&g.Status, &g.HomeScore, &g.AwayScore, &g.EndedIn, &g.CreatedAt, &g.UpdatedAt}
}

func (r *gameRepository) Create(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO games (season, date, home_team_id, away_team_id, status, home_score, away_score, ended_in)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 `+gameReturning,
		g.Season, g.Date, g.HomeTeamID, g.AwayTeamID, g.Status, g.HomeScore, g.AwayScore, g.EndedIn,
	)
	var out model.Game
	if err := row.Scan(gameDest(&out)...); err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	exec := getQ(ctx, r.pool)
	var out model.Game
	if err := exec.QueryRow(ctx, `SELECT `+gameColumns+gameFrom+` WHERE g.id = $1`, id).Scan(gameDest(&out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Game{}, repository.ErrNotFound
		}
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Game]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+gameColumns+`, COUNT(*) OVER() AS total`+gameFrom+`
		 ORDER BY g.date DESC, g.id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Game]{Items: make([]model.Game, 0, limit)}
	for rows.Next() {
		var it model.Game
		if err := rows.Scan(append(gameDest(&it), &res.Total)...); err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *gameRepository) ListByTeamSeason(ctx context.Context, teamID, season string) ([]model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+gameColumns+gameFrom+`
		 WHERE (g.home_team_id = $1 OR g.away_team_id = $1)
		   AND ($2 = '' OR g.season = $2)
		 ORDER BY g.date, g.id`,
		teamID, season,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Game, 0, 32)
	for rows.Next() {
		var it model.Game
		if err := rows.Scan(gameDest(&it)...); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

func (r *gameRepository) UpdateResult(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE games
		 SET status = $2, home_score = $3, away_score = $4, ended_in = NULLIF($5, ''), updated_at = NOW()
		 WHERE id = $1
		 `+gameReturning,
		g.ID, g.Status, g.HomeScore, g.AwayScore, g.EndedIn,
	)
	var out model.Game
	if err := row.Scan(gameDest(&out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Game{}, repository.ErrNotFound
		}
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.GameRepository = (*gameRepository)(nil)
