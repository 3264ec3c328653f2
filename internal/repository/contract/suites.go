// Package contract holds behaviour suites every repository implementation must pass.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

// Seed creates the parent rows a suite needs.
type Seed struct {
	Team   func(ctx context.Context, name string) (string, error)
	Player func(ctx context.Context, teamID string, jersey int, position string) (string, error)
	Game   func(ctx context.Context, season, homeID, awayID string, date time.Time) (string, error)
}

type TeamFactory func(t *testing.T) (repository.TeamRepository, func())

type PlayerFactory func(t *testing.T) (repository.PlayerRepository, Seed, func())

type GameFactory func(t *testing.T) (repository.GameRepository, Seed, func())

type EventFactory func(t *testing.T) (repository.EventRepository, Seed, func())

type LineupFactory func(t *testing.T) (repository.LineupRepository, Seed, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, teams repository.TeamRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

var errMarker = errors.New("boom")

// seedID fails the test on a seeding error and returns the new row's id.
func seedID(t *testing.T) func(string, error) string {
	return func(id string, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return id
	}
}

func RunTeamRepositoryContract(t *testing.T, makeRepo TeamFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{Name: "Otters"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != "Otters" {
			t.Fatalf("mismatch: %+v", got)
		}
		ok, err := repo.Exists(ctx, created.ID)
		if err != nil || !ok {
			t.Fatalf("exists: %v %v", ok, err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := range 7 {
			if _, err := repo.Create(ctx, model.Team{Name: "T-" + string(rune('A'+i))}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 {
			t.Fatalf("unexpected page2: len=%d total=%d", len(res2.Items), res2.Total)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Team{Name: "Dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Team{Name: "Dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		teamID := id(seed.Team(ctx, "Otters"))
		created, err := repo.Create(ctx, model.Player{TeamID: teamID, FirstName: "Ada", LastName: "Byers", JerseyNumber: 9, Position: model.PositionForward, Active: true})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TeamID != teamID || got.JerseyNumber != 9 || got.Position != model.PositionForward || !got.Active {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_by_team_and_active_roster", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		teamID := id(seed.Team(ctx, "Lynx"))
		for i := range 5 {
			p := model.Player{TeamID: teamID, FirstName: "P", LastName: string(rune('A' + i)), JerseyNumber: 10 + i, Position: model.PositionDefense, Active: i != 4}
			if _, err := repo.Create(ctx, p); err != nil {
				t.Fatalf("seed player %d: %v", i, err)
			}
		}
		res, err := repo.ListByTeam(ctx, teamID, repository.Page{Limit: 2, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Total != 5 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		active, err := repo.ListActiveByTeam(ctx, teamID)
		if err != nil {
			t.Fatalf("active: %v", err)
		}
		if len(active) != 4 || active[0].JerseyNumber != 10 {
			t.Fatalf("unexpected active roster: %+v", active)
		}
	})

	t.Run("duplicate_active_jersey_conflict", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		teamID := id(seed.Team(ctx, "Herons"))
		p := model.Player{TeamID: teamID, FirstName: "A", LastName: "B", JerseyNumber: 1, Position: model.PositionGoalie, Active: true}
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.Create(ctx, p); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("create_fk_violation_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Create(context.Background(), model.Player{TeamID: uuid.NewString(), FirstName: "X", LastName: "Y", Position: model.PositionForward})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict on FK violation, got %v", err)
		}
	})
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("create_get_list", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		homeID := id(seed.Team(ctx, "Home"))
		awayID := id(seed.Team(ctx, "Away"))
		g, err := repo.Create(ctx, model.Game{Season: "2024-25", Date: time.Now().UTC(), HomeTeamID: homeID, AwayTeamID: awayID, Status: model.GameStatusScheduled})
		if err != nil {
			t.Fatalf("create game: %v", err)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.HomeTeamID != homeID || got.AwayTeamName != "Away" || got.EndedIn != "" {
			t.Fatalf("mismatch: %+v", got)
		}
		page, err := repo.List(ctx, repository.Page{Limit: 10, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Items) != 1 || page.Total != 1 {
			t.Fatalf("unexpected list: %#v", page)
		}
	})

	t.Run("list_by_team_season_and_result", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		a := id(seed.Team(ctx, "A"))
		b := id(seed.Team(ctx, "B"))
		c := id(seed.Team(ctx, "C"))
		day := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)
		later := id(seed.Game(ctx, "2024-25", b, a, day.AddDate(0, 0, 7)))
		id(seed.Game(ctx, "2024-25", a, b, day))
		id(seed.Game(ctx, "2023-24", a, b, day.AddDate(-1, 0, 0)))
		id(seed.Game(ctx, "2024-25", b, c, day))

		games, err := repo.ListByTeamSeason(ctx, a, "2024-25")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(games) != 2 || games[1].ID != later {
			t.Fatalf("unexpected games: %+v", games)
		}
		all, err := repo.ListByTeamSeason(ctx, a, "")
		if err != nil || len(all) != 3 {
			t.Fatalf("all seasons: %d %v", len(all), err)
		}

		upd, err := repo.UpdateResult(ctx, model.Game{ID: later, Status: model.GameStatusCompleted, HomeScore: 2, AwayScore: 3, EndedIn: model.EndedInOvertime})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if upd.Status != model.GameStatusCompleted || upd.AwayScore != 3 || upd.EndedIn != model.EndedInOvertime || upd.HomeTeamName != "B" {
			t.Fatalf("unexpected result: %+v", upd)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		_, err = repo.UpdateResult(context.Background(), model.Game{ID: uuid.NewString(), Status: model.GameStatusCompleted})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}
	})
}

func RunEventRepositoryContract(t *testing.T, makeRepo EventFactory) {
	t.Helper()

	t.Run("create_and_list", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		a := id(seed.Team(ctx, "A"))
		b := id(seed.Team(ctx, "B"))
		pid := id(seed.Player(ctx, a, 19, model.PositionForward))
		g1 := id(seed.Game(ctx, "2024-25", a, b, time.Now().UTC()))
		g2 := id(seed.Game(ctx, "2024-25", b, a, time.Now().UTC()))

		created, err := repo.Create(ctx, model.Event{
			GameID: g1, PlayerID: pid, TeamID: a, EventType: model.EventPenalty, Period: 2, TimeInPeriod: "04:10",
			Details: map[string]any{"penalty_minutes": 5, "strength": "even"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID == "" || created.Details["penalty_minutes"] != float64(5) {
			t.Fatalf("unexpected event: %+v", created)
		}
		if _, err := repo.Create(ctx, model.Event{GameID: g2, PlayerID: pid, TeamID: a, EventType: model.EventShot, Period: 1}); err != nil {
			t.Fatalf("create2: %v", err)
		}

		byGame, err := repo.ListByGame(ctx, g1)
		if err != nil || len(byGame) != 1 {
			t.Fatalf("list by game: %d %v", len(byGame), err)
		}
		both, err := repo.ListByGames(ctx, []string{g1, g2})
		if err != nil || len(both) != 2 {
			t.Fatalf("list by games: %d %v", len(both), err)
		}
		if both[0].Details == nil && both[1].Details == nil {
			t.Fatalf("details should decode as objects")
		}
		none, err := repo.ListByGames(ctx, nil)
		if err != nil || len(none) != 0 {
			t.Fatalf("empty ids: %d %v", len(none), err)
		}
	})

	t.Run("rejects_unknown_type", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		a := id(seed.Team(ctx, "A"))
		b := id(seed.Team(ctx, "B"))
		pid := id(seed.Player(ctx, a, 7, model.PositionDefense))
		g := id(seed.Game(ctx, "2024-25", a, b, time.Now().UTC()))
		_, err := repo.Create(ctx, model.Event{GameID: g, PlayerID: pid, TeamID: a, EventType: "dunk", Period: 1})
		if !errors.Is(err, repository.ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
	})
}

func RunLineupRepositoryContract(t *testing.T, makeRepo LineupFactory) {
	t.Helper()

	t.Run("upsert_and_list", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedID(t)
		a := id(seed.Team(ctx, "A"))
		b := id(seed.Team(ctx, "B"))
		pid := id(seed.Player(ctx, a, 30, model.PositionGoalie))
		g := id(seed.Game(ctx, "2024-25", a, b, time.Now().UTC()))

		entry := model.LineupEntry{GameID: g, PlayerID: pid, TeamID: a, TimeOnIceSeconds: 1200, Starter: true}
		if _, err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("upsert1: %v", err)
		}
		entry.TimeOnIceSeconds = 3600
		l2, err := repo.Upsert(ctx, entry)
		if err != nil {
			t.Fatalf("upsert2: %v", err)
		}
		if l2.TimeOnIceSeconds != 3600 || !l2.Starter {
			t.Fatalf("upsert didn't update: %+v", l2)
		}
		list, err := repo.ListByGames(ctx, []string{g})
		if err != nil || len(list) != 1 {
			t.Fatalf("expected 1 entry, got %d (%v)", len(list), err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID string
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID string
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
