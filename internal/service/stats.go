package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/hockey-stats-service/internal/cache"
	"github.com/maxviazov/hockey-stats-service/internal/metrics"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	defaultMinGames         = 5
	maxComparePlayers       = 6
	defaultTrendGames       = 10
	maxTrendGames           = 100
	defaultFanOut           = 8
)

// Operation labels used for metrics and logs.
const (
	opPlayerStats = "player_stats"
	opTeamStats   = "team_stats"
	opAdvanced    = "advanced_metrics"
	opLeaderboard = "leaderboard"
	opComparison  = "comparison"
	opTrend       = "trend"
)

// StatsDeps groups the stores the stats service reads from.
type StatsDeps struct {
	Teams   repository.TeamRepository
	Players repository.PlayerRepository
	Games   repository.GameRepository
	Events  repository.EventRepository
	Lineups repository.LineupRepository
	Cache   cache.StatsCache
}

type statsService struct {
	StatsDeps
	fanOut int
	now    func() time.Time
	log    zerolog.Logger
}

// NewStatsService wires the stats use cases. fanOut bounds concurrent per-player
// computations in batch operations; a nil cache disables caching.
func NewStatsService(deps StatsDeps, fanOut int, logger zerolog.Logger) StatsService {
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	return &statsService{StatsDeps: deps, fanOut: fanOut, now: time.Now, log: l}
}

func (s *statsService) GetPlayerStats(ctx context.Context, q PlayerStatsQuery) (out stats.PlayerStats, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opPlayerStats, start, err) }()

	ferrs := validateID(nil, "id", q.PlayerID)
	ferrs = validateID(ferrs, "teamId", q.TeamID)
	ferrs = validateSeason(ferrs, q.Season)
	ferrs = validateOptions(ferrs, q.Options)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.PlayerStats{}, err
	}

	player, err := s.playerOnTeam(ctx, q.PlayerID, q.TeamID)
	if err != nil {
		return stats.PlayerStats{}, err
	}
	key := cache.Key{Kind: "player", TeamID: player.TeamID, Season: q.Season, Subject: player.ID, Options: q.Options}
	if s.cached(ctx, key, q.Recalculate, &out) {
		return out, nil
	}

	season, err := s.loadSeason(ctx, player.TeamID, q.Season)
	if err != nil {
		return stats.PlayerStats{}, err
	}
	out, err = stats.Compute(player, season, q.Options)
	if err != nil {
		s.log.Error().Err(err).Str("player_id", player.ID).Str("position", player.Position).Msg("player stats computation failed")
		return stats.PlayerStats{}, err
	}
	out.ComputedAt = s.now().UTC()
	s.store(ctx, key, out)
	s.log.Debug().Str("player_id", player.ID).Str("season", q.Season).Dur("took", time.Since(start)).Msg("player stats computed")
	return out, nil
}

func (s *statsService) GetTeamStats(ctx context.Context, q TeamStatsQuery) (out stats.TeamStats, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opTeamStats, start, err) }()

	ferrs := validateID(nil, "team_id", q.TeamID)
	ferrs = validateSeason(ferrs, q.Season)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.TeamStats{}, err
	}
	if err := s.teamExists(ctx, q.TeamID); err != nil {
		return stats.TeamStats{}, err
	}

	key := cache.Key{Kind: "team", TeamID: q.TeamID, Season: q.Season, Subject: q.TeamID}
	if s.cached(ctx, key, q.Recalculate, &out) {
		return out, nil
	}
	season, err := s.loadSeason(ctx, q.TeamID, q.Season)
	if err != nil {
		return stats.TeamStats{}, err
	}
	out = stats.BuildTeamStats(season)
	s.store(ctx, key, out)
	return out, nil
}

func (s *statsService) CalculateAdvancedMetrics(ctx context.Context, q AdvancedQuery) (out stats.AdvancedMetrics, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opAdvanced, start, err) }()

	position := normalizePosition(q.Position)
	ferrs := validateID(nil, "id", q.PlayerID)
	ferrs = validateID(ferrs, "teamId", q.TeamID)
	if position != "" && !isValidPosition(position) {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of F, D, G"})
	}
	ferrs = validateSeason(ferrs, q.Season)
	ferrs = validateOptions(ferrs, q.Options)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.AdvancedMetrics{}, err
	}

	player, err := s.playerOnTeam(ctx, q.PlayerID, q.TeamID)
	if err != nil {
		return stats.AdvancedMetrics{}, err
	}
	season, err := s.loadSeason(ctx, player.TeamID, q.Season)
	if err != nil {
		return stats.AdvancedMetrics{}, err
	}
	out, err = stats.BuildAdvanced(player, season, position, q.Options)
	if err != nil {
		return stats.AdvancedMetrics{}, err
	}
	out.Stats.ComputedAt = s.now().UTC()
	return out, nil
}

func (s *statsService) GetLeaderboard(ctx context.Context, q LeaderboardQuery) (out stats.Leaderboard, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opLeaderboard, start, err) }()

	if q.Category == "" {
		q.Category = string(stats.Points)
	}
	if q.Position == "" {
		q.Position = stats.PositionAll
	}
	if q.Limit == 0 {
		q.Limit = defaultLeaderboardLimit
	}
	minGames := defaultMinGames
	if q.MinGames != nil {
		minGames = *q.MinGames
	}

	ferrs := validateID(nil, "teamId", q.TeamID)
	ferrs = validateSeason(ferrs, q.Season)
	cat, ok := stats.ResolveCategory(q.Category)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "category", Message: "unknown stat category"})
	}
	if !stats.IsValidPositionFilter(q.Position) {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of all|skaters|F|D|G"})
	}
	if q.Limit < 1 || q.Limit > maxLeaderboardLimit {
		ferrs = append(ferrs, FieldError{Field: "limit", Message: "must be between 1 and 100"})
	}
	if minGames < 0 {
		ferrs = append(ferrs, FieldError{Field: "minGames", Message: "must be >= 0"})
	}
	ferrs = validateOptions(ferrs, q.Options)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.Leaderboard{}, err
	}
	if err := s.teamExists(ctx, q.TeamID); err != nil {
		return stats.Leaderboard{}, err
	}

	roster, err := s.Players.ListActiveByTeam(ctx, q.TeamID)
	if err != nil {
		return stats.Leaderboard{}, upstream(err)
	}
	roster = slices.DeleteFunc(roster, func(p model.Player) bool { return !stats.MatchesPosition(p.Position, q.Position) })

	season, err := s.loadSeason(ctx, q.TeamID, q.Season)
	if err != nil {
		return stats.Leaderboard{}, err
	}
	computed, err := s.computeAll(ctx, opLeaderboard, roster, season, q.Options)
	if err != nil {
		return stats.Leaderboard{}, err
	}
	return stats.Leaderboard{
		TeamID:   q.TeamID,
		Season:   q.Season,
		Category: cat,
		Position: positionLabel(q.Position),
		MinGames: minGames,
		Leaders:  stats.BuildLeaders(computed, cat, minGames, q.Limit),
	}, nil
}

func (s *statsService) ComparePlayers(ctx context.Context, q ComparisonQuery) (out stats.Comparison, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opComparison, start, err) }()

	// The cap counts every listed id, repeats included.
	listed := nonBlank(q.PlayerIDs)
	ids := dedupe(listed)
	ferrs := validateID(nil, "teamId", q.TeamID)
	switch {
	case len(listed) == 0:
		ferrs = append(ferrs, FieldError{Field: "playerIds", Message: "must not be empty"})
	case len(listed) > maxComparePlayers:
		ferrs = append(ferrs, FieldError{Field: "playerIds", Message: "at most 6 players can be compared"})
	}
	for _, id := range ids {
		if !isValidID(id) {
			ferrs = append(ferrs, FieldError{Field: "playerIds", Message: "must contain UUIDs only"})
			break
		}
	}
	cats := stats.DefaultComparisonCategories
	if len(q.Categories) > 0 {
		cats = make([]stats.Category, 0, len(q.Categories))
		for _, name := range q.Categories {
			c, ok := stats.ResolveCategory(name)
			if !ok {
				ferrs = append(ferrs, FieldError{Field: "categories", Message: "unknown stat category: " + name})
				continue
			}
			if !slices.Contains(cats, c) {
				cats = append(cats, c)
			}
		}
	}
	ferrs = validateSeason(ferrs, q.Season)
	ferrs = validateOptions(ferrs, q.Options)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.Comparison{}, err
	}

	group := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.Players.GetByID(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.log.Debug().Str("player_id", id).Msg("comparison player not found, skipped")
			continue
		case err != nil:
			return stats.Comparison{}, upstream(err)
		case p.TeamID != q.TeamID:
			s.log.Debug().Str("player_id", id).Str("team_id", q.TeamID).Msg("comparison player not on team, skipped")
			continue
		}
		group = append(group, p)
	}
	if len(group) == 0 {
		return stats.Comparison{}, newInvalidInput([]FieldError{{Field: "playerIds", Message: "no listed player belongs to the team"}})
	}

	roster, err := s.Players.ListActiveByTeam(ctx, q.TeamID)
	if err != nil {
		return stats.Comparison{}, upstream(err)
	}
	season, err := s.loadSeason(ctx, q.TeamID, q.Season)
	if err != nil {
		return stats.Comparison{}, err
	}
	groupStats, err := s.computeAll(ctx, opComparison, group, season, q.Options)
	if err != nil {
		return stats.Comparison{}, err
	}
	rosterStats, err := s.computeAll(ctx, opComparison, roster, season, q.Options)
	if err != nil {
		return stats.Comparison{}, err
	}
	return stats.Comparison{
		TeamID:       q.TeamID,
		Season:       q.Season,
		Categories:   cats,
		Players:      stats.BuildComparison(groupStats, cats),
		TeamAverages: stats.Averages(rosterStats, cats),
	}, nil
}

func (s *statsService) GetTrend(ctx context.Context, q TrendQuery) (out stats.Trend, err error) {
	start := time.Now()
	defer func() { metrics.ObserveComputation(opTrend, start, err) }()

	if q.Stat == "" {
		q.Stat = string(stats.Points)
	}
	if q.GameCount == 0 {
		q.GameCount = defaultTrendGames
	}
	ferrs := validateID(nil, "id", q.PlayerID)
	ferrs = validateID(ferrs, "teamId", q.TeamID)
	cat, ok := stats.ResolveCategory(q.Stat)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "stat", Message: "unknown stat category"})
	}
	if q.GameCount < 1 || q.GameCount > maxTrendGames {
		ferrs = append(ferrs, FieldError{Field: "gameCount", Message: "must be between 1 and 100"})
	}
	ferrs = validateSeason(ferrs, q.Season)
	ferrs = validateOptions(ferrs, q.Options)
	if err := newInvalidInput(ferrs); err != nil {
		return stats.Trend{}, err
	}

	player, err := s.playerOnTeam(ctx, q.PlayerID, q.TeamID)
	if err != nil {
		return stats.Trend{}, err
	}
	season, err := s.loadSeason(ctx, player.TeamID, q.Season)
	if err != nil {
		return stats.Trend{}, err
	}
	return stats.BuildTrend(player, season, q.Options, cat, q.GameCount)
}

// playerOnTeam loads a player and checks roster membership.
func (s *statsService) playerOnTeam(ctx context.Context, playerID, teamID string) (model.Player, error) {
	p, err := s.Players.GetByID(ctx, playerID)
	if err != nil {
		return model.Player{}, upstream(err)
	}
	if p.TeamID != teamID {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *statsService) teamExists(ctx context.Context, teamID string) error {
	ok, err := s.Teams.Exists(ctx, teamID)
	if err != nil {
		return upstream(err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// loadSeason reads the team's games with both teams' events and lineups, since
// goalie lines are credited from opponent shots.
func (s *statsService) loadSeason(ctx context.Context, teamID, season string) (*stats.Season, error) {
	games, err := s.Games.ListByTeamSeason(ctx, teamID, season)
	if err != nil {
		return nil, upstream(err)
	}
	ids := make([]string, 0, len(games))
	for _, g := range games {
		if g.Status == model.GameStatusCompleted {
			ids = append(ids, g.ID)
		}
	}
	if len(ids) == 0 {
		return stats.NewSeason(teamID, season, games, nil, nil), nil
	}

	var (
		events  []model.Event
		lineups []model.LineupEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.Events.ListByGames(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		lineups, err = s.Lineups.ListByGames(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("team_id", teamID).Str("season", season).Int("games", len(ids)).Msg("load season failed")
		return nil, upstream(err)
	}
	return stats.NewSeason(teamID, season, games, events, lineups), nil
}

// computeAll computes every player concurrently. A player whose computation fails
// is logged, counted and left out; only cancellation fails the batch. Output keeps
// input order.
func (s *statsService) computeAll(ctx context.Context, op string, players []model.Player, season *stats.Season, opts stats.Options) ([]stats.PlayerStats, error) {
	results := make([]*stats.PlayerStats, len(players))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, p := range players {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ps, err := stats.Compute(p, season, opts)
			if err != nil {
				metrics.PartialFailures.WithLabelValues(op).Inc()
				s.log.Warn().Err(err).Str("operation", op).Str("player_id", p.ID).Str("position", p.Position).Msg("player excluded from batch")
				return nil
			}
			ps.ComputedAt = s.now().UTC()
			results[i] = &ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]stats.PlayerStats, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// cached reads key into dest unless bypass is set. Cache failures count as misses.
func (s *statsService) cached(ctx context.Context, key cache.Key, bypass bool, dest any) bool {
	if bypass {
		metrics.CacheLookups.WithLabelValues(key.Kind, "bypass").Inc()
		return false
	}
	hit, err := s.Cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(key.Kind, "error").Inc()
		s.log.Warn().Err(err).Str("key", key.String()).Msg("stats cache read failed")
		return false
	case hit:
		metrics.CacheLookups.WithLabelValues(key.Kind, "hit").Inc()
		return true
	default:
		metrics.CacheLookups.WithLabelValues(key.Kind, "miss").Inc()
		return false
	}
}

func (s *statsService) store(ctx context.Context, key cache.Key, value any) {
	if err := s.Cache.Set(ctx, key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key.String()).Msg("stats cache write failed")
	}
}

func positionLabel(filter string) string {
	f := strings.TrimSpace(filter)
	switch strings.ToLower(f) {
	case stats.PositionAll, stats.PositionSkaters:
		return strings.ToLower(f)
	}
	return strings.ToUpper(f)
}

func nonBlank(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
