package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/hockey-stats-service/internal/cache"
	"github.com/maxviazov/hockey-stats-service/internal/config"
	"github.com/maxviazov/hockey-stats-service/internal/handler"
	"github.com/maxviazov/hockey-stats-service/internal/logger"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/repository/postgres"
	"github.com/maxviazov/hockey-stats-service/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := os.Getenv("APP_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer db.Close()

	statsCache, cachePinger, closeCache, err := openCache(ctx, cfg.Redis, appLogger)
	if err != nil {
		return err
	}
	defer closeCache()

	pool := db.Pool()
	teams := postgres.NewTeamRepository(pool)
	players := postgres.NewPlayerRepository(pool)
	games := postgres.NewGameRepository(pool)
	events := postgres.NewEventRepository(pool)
	lineups := postgres.NewLineupRepository(pool)
	tx := postgres.NewTxManager(pool)

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	handler.Register(engine, handler.Deps{
		DB:      postgres.NewPinger(pool),
		Cache:   cachePinger,
		Teams:   service.NewTeamService(teams, appLogger),
		Players: service.NewPlayerService(players, teams, appLogger),
		Games:   service.NewGameService(games, teams, tx, statsCache, appLogger),
		Events:  service.NewEventService(events, lineups, games, players, tx, statsCache, appLogger),
		Stats: service.NewStatsService(service.StatsDeps{
			Teams:   teams,
			Players: players,
			Games:   games,
			Events:  events,
			Lineups: lineups,
			Cache:   statsCache,
		}, cfg.Stats.FanOutLimit, appLogger),
		Logger:       appLogger,
		OpenAPIPath:  handler.DefaultOpenAPIPath,
		StatsTimeout: time.Duration(cfg.Stats.RequestTimeoutSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Int("port", cfg.App.Port).Str("version", cfg.App.Version).Msg("service started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		appLogger.Info().Msg("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// openCache connects to Redis when configured. Without a URL stats are always
// computed from the event store.
func openCache(ctx context.Context, cfg config.RedisConfig, l zerolog.Logger) (cache.StatsCache, handler.Pinger, func(), error) {
	if cfg.URL == "" {
		l.Info().Msg("redis not configured, stats cache disabled")
		return cache.Noop{}, nil, func() {}, nil
	}
	rc, err := cache.NewRedis(ctx, cfg.URL, time.Duration(cfg.TTLSeconds)*time.Second)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	l.Info().Int("ttl_seconds", cfg.TTLSeconds).Msg("stats cache enabled")
	return rc, rc, func() {
		if err := rc.Close(); err != nil {
			l.Warn().Err(err).Msg("redis close failed")
		}
	}, nil
}
