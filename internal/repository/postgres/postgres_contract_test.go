package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/maxviazov/hockey-stats-service/internal/config"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/repository/contract"
)

var (
	db     *sql.DB
	pool   *pgxpool.Pool
	skippy bool
)

func TestMain(m *testing.M) {
	if os.Getenv("CONTRACT_TESTS") != "1" {
		skippy = true
		os.Exit(m.Run())
	}

	dsn := buildDSNFromEnv()
	if dsn == "" {
		fmt.Println("[contract] DATABASE_URL or APP_POSTGRES_* env not set; skipping")
		skippy = true
		os.Exit(m.Run())
	}

	var err error
	db, err = sql.Open("pgx", dsn)
	if err != nil {
		fmt.Println("[contract] sql open error:", err)
		os.Exit(1)
	}
	if err := db.Ping(); err != nil {
		fmt.Println("[contract] db ping error:", err)
		os.Exit(1)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		fmt.Println("[contract] goose dialect error:", err)
		os.Exit(1)
	}
	migrationsDir := filepath.Clean(filepath.Join("..", "..", "..", "migrations", "goose_sql"))
	if err := goose.Up(db, migrationsDir); err != nil {
		fmt.Println("[contract] goose up error:", err)
		os.Exit(1)
	}

	pool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		fmt.Println("[contract] pgxpool new error:", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	db.Close()
	os.Exit(code)
}

func skipIfNeeded(t *testing.T) {
	if skippy {
		t.Skip("contract tests skipped; set CONTRACT_TESTS=1 and provide DB env")
	}
}

func buildDSNFromEnv() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	cfg := config.PostgresConfig{
		User:     firstNonEmpty(os.Getenv("APP_POSTGRES_USER"), os.Getenv("POSTGRES_USER"), os.Getenv("DB_USER")),
		Password: firstNonEmpty(os.Getenv("APP_POSTGRES_PASSWORD"), os.Getenv("POSTGRES_PASSWORD"), os.Getenv("DB_PASSWORD")),
		Host:     firstNonEmpty(os.Getenv("APP_POSTGRES_HOST"), os.Getenv("POSTGRES_HOST"), "localhost"),
		Port:     5432,
		DBName:   firstNonEmpty(os.Getenv("APP_POSTGRES_DB"), os.Getenv("POSTGRES_DB"), os.Getenv("DB_NAME")),
		SSLMode:  firstNonEmpty(os.Getenv("APP_POSTGRES_SSLMODE"), os.Getenv("POSTGRES_SSLMODE"), "disable"),
	}
	if cfg.User == "" || cfg.Password == "" || cfg.DBName == "" {
		return ""
	}
	return repository.DSN(cfg)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateAll(t *testing.T) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE TABLE game_lineups, game_events, games, players, teams CASCADE"); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
}

func newSeed() contract.Seed {
	teams := NewTeamRepository(pool)
	players := NewPlayerRepository(pool)
	games := NewGameRepository(pool)
	return contract.Seed{
		Team: func(ctx context.Context, name string) (string, error) {
			team, err := teams.Create(ctx, model.Team{Name: name})
			return team.ID, err
		},
		Player: func(ctx context.Context, teamID string, jersey int, position string) (string, error) {
			p, err := players.Create(ctx, model.Player{TeamID: teamID, FirstName: "Seed", LastName: "Player", JerseyNumber: jersey, Position: position, Active: true})
			return p.ID, err
		},
		Game: func(ctx context.Context, season, homeID, awayID string, date time.Time) (string, error) {
			g, err := games.Create(ctx, model.Game{Season: season, Date: date, HomeTeamID: homeID, AwayTeamID: awayID, Status: model.GameStatusScheduled})
			return g.ID, err
		},
	}
}

// Factories used by contract suites

func makeTeamRepo(t *testing.T) (repository.TeamRepository, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewTeamRepository(pool), func() { truncateAll(t) }
}

func makePlayerRepo(t *testing.T) (repository.PlayerRepository, contract.Seed, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewPlayerRepository(pool), newSeed(), func() { truncateAll(t) }
}

func makeGameRepo(t *testing.T) (repository.GameRepository, contract.Seed, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewGameRepository(pool), newSeed(), func() { truncateAll(t) }
}

func makeEventRepo(t *testing.T) (repository.EventRepository, contract.Seed, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewEventRepository(pool), newSeed(), func() { truncateAll(t) }
}

func makeLineupRepo(t *testing.T) (repository.LineupRepository, contract.Seed, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewLineupRepository(pool), newSeed(), func() { truncateAll(t) }
}

func makeTx(t *testing.T) (repository.TxManager, repository.TeamRepository, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewTxManager(pool), NewTeamRepository(pool), func() { truncateAll(t) }
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	skipIfNeeded(t)
	return NewPinger(pool), func() {}
}

func TestTeamRepository_PostgresContract(t *testing.T) {
	contract.RunTeamRepositoryContract(t, makeTeamRepo)
}

func TestPlayerRepository_PostgresContract(t *testing.T) {
	contract.RunPlayerRepositoryContract(t, makePlayerRepo)
}

func TestGameRepository_PostgresContract(t *testing.T) {
	contract.RunGameRepositoryContract(t, makeGameRepo)
}

func TestEventRepository_PostgresContract(t *testing.T) {
	contract.RunEventRepositoryContract(t, makeEventRepo)
}

func TestLineupRepository_PostgresContract(t *testing.T) {
	contract.RunLineupRepositoryContract(t, makeLineupRepo)
}

func TestTxManager_PostgresContract(t *testing.T) {
	contract.RunTxManagerContract(t, makeTx)
}

func TestPinger_PostgresContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}

func TestSanitizeLimitOffset(t *testing.T) {
	cases := []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, defaultPageLimit, 0},
		{-5, -1, defaultPageLimit, 0},
		{10, 20, 10, 20},
		{1000, 0, maxPageLimit, 0},
	}
	for _, c := range cases {
		l, o := sanitizeLimitOffset(c.limit, c.offset)
		if l != c.wantLimit || o != c.wantOffset {
			t.Fatalf("sanitize(%d,%d) = %d,%d", c.limit, c.offset, l, o)
		}
	}
}

func TestParseIDs(t *testing.T) {
	if _, err := parseIDs([]string{"not-a-uuid"}); err == nil {
		t.Fatalf("expected error for malformed id")
	}
	ids, err := parseIDs([]string{"6f1c7f5e-3f7e-4d0f-9b0e-2a7a52c1d001"})
	if err != nil || len(ids) != 1 {
		t.Fatalf("parse: %v %v", ids, err)
	}
}
