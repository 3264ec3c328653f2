package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hockey-stats-service/internal/handler"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
)

const (
	teamID   = "6f1c1f0e-3d5a-4c1e-9a51-0c6f2b1d7a01"
	playerID = "0b7e8d2c-52a4-4f8e-8a3d-6a9f3e1c2b10"
	gameID   = "9d4a2e61-7f3b-4c55-a1e2-3b8c9d0e1f20"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubTeamService struct {
	team model.Team
	list repository.PageResult[model.Team]
	err  error
	page repository.Page
}

func (s *stubTeamService) CreateTeam(_ context.Context, name string) (model.Team, error) {
	if s.err != nil {
		return model.Team{}, s.err
	}
	return model.Team{ID: teamID, Name: name}, nil
}

func (s *stubTeamService) GetTeam(context.Context, string) (model.Team, error) {
	return s.team, s.err
}

func (s *stubTeamService) ListTeams(_ context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	s.page = p
	return s.list, s.err
}

type stubPlayerService struct {
	player model.Player
	err    error
	in     service.CreatePlayerInput
}

func (s *stubPlayerService) CreatePlayer(_ context.Context, in service.CreatePlayerInput) (model.Player, error) {
	s.in = in
	return s.player, s.err
}

func (s *stubPlayerService) GetPlayer(context.Context, string) (model.Player, error) {
	return s.player, s.err
}

func (s *stubPlayerService) ListPlayersByTeam(context.Context, string, repository.Page) (repository.PageResult[model.Player], error) {
	return repository.PageResult[model.Player]{Items: []model.Player{s.player}, Total: 1}, s.err
}

type stubGameService struct {
	game   model.Game
	err    error
	date   time.Time
	result service.GameResult
}

func (s *stubGameService) CreateGame(_ context.Context, season string, date time.Time, homeID, awayID, status string) (model.Game, error) {
	s.date = date
	return model.Game{ID: gameID, Season: season, Date: date, HomeTeamID: homeID, AwayTeamID: awayID, Status: status}, s.err
}

func (s *stubGameService) GetGame(context.Context, string) (model.Game, error) { return s.game, s.err }

func (s *stubGameService) ListGames(context.Context, repository.Page) (repository.PageResult[model.Game], error) {
	return repository.PageResult[model.Game]{}, s.err
}

func (s *stubGameService) RecordResult(_ context.Context, id string, res service.GameResult) (model.Game, error) {
	s.result = res
	return model.Game{ID: id, HomeScore: res.HomeScore, AwayScore: res.AwayScore, Status: res.Status}, s.err
}

type stubEventService struct {
	event  model.Event
	lineup model.LineupEntry
	err    error
}

func (s *stubEventService) RecordEvent(_ context.Context, e model.Event) (model.Event, error) {
	s.event = e
	return e, s.err
}

func (s *stubEventService) ListEventsByGame(_ context.Context, gameID string) ([]model.Event, error) {
	return []model.Event{{GameID: gameID, EventType: model.EventGoal}}, s.err
}

func (s *stubEventService) UpsertLineup(_ context.Context, l model.LineupEntry) (model.LineupEntry, error) {
	s.lineup = l
	return l, s.err
}

// stubStatsService records the last query of each kind.
type stubStatsService struct {
	err error

	playerQ  service.PlayerStatsQuery
	teamQ    service.TeamStatsQuery
	advQ     service.AdvancedQuery
	boardQ   service.LeaderboardQuery
	compareQ service.ComparisonQuery
	trendQ   service.TrendQuery
	calls    int

	playerRes stats.PlayerStats
	boardRes  stats.Leaderboard
}

func (s *stubStatsService) GetPlayerStats(_ context.Context, q service.PlayerStatsQuery) (stats.PlayerStats, error) {
	s.calls++
	s.playerQ = q
	return s.playerRes, s.err
}

func (s *stubStatsService) GetTeamStats(_ context.Context, q service.TeamStatsQuery) (stats.TeamStats, error) {
	s.calls++
	s.teamQ = q
	return stats.TeamStats{TeamID: q.TeamID, Season: q.Season}, s.err
}

func (s *stubStatsService) CalculateAdvancedMetrics(_ context.Context, q service.AdvancedQuery) (stats.AdvancedMetrics, error) {
	s.calls++
	s.advQ = q
	return stats.AdvancedMetrics{}, s.err
}

func (s *stubStatsService) GetLeaderboard(_ context.Context, q service.LeaderboardQuery) (stats.Leaderboard, error) {
	s.calls++
	s.boardQ = q
	return s.boardRes, s.err
}

func (s *stubStatsService) ComparePlayers(_ context.Context, q service.ComparisonQuery) (stats.Comparison, error) {
	s.calls++
	s.compareQ = q
	return stats.Comparison{TeamID: q.TeamID}, s.err
}

func (s *stubStatsService) GetTrend(_ context.Context, q service.TrendQuery) (stats.Trend, error) {
	s.calls++
	s.trendQ = q
	return stats.Trend{PlayerID: q.PlayerID}, s.err
}

type fixture struct {
	teams   *stubTeamService
	players *stubPlayerService
	games   *stubGameService
	events  *stubEventService
	stats   *stubStatsService
	engine  *gin.Engine
}

func newFixture(t *testing.T, deps ...func(*handler.Deps)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		teams:   &stubTeamService{},
		players: &stubPlayerService{},
		games:   &stubGameService{},
		events:  &stubEventService{},
		stats:   &stubStatsService{},
		engine:  gin.New(),
	}
	d := handler.Deps{
		DB:      stubPinger{},
		Teams:   f.teams,
		Players: f.players,
		Games:   f.games,
		Events:  f.events,
		Stats:   f.stats,
		Logger:  zerolog.Nop(),
	}
	for _, fn := range deps {
		fn(&d)
	}
	handler.Register(f.engine, d)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return serve(f, newRequest(method, path, &buf))
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func api(path string) string { return handler.APIV1Prefix + path }

func newRequest(method, path string, body io.Reader) *http.Request {
	if body == nil {
		body = http.NoBody
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func errNotFound() error { return fmt.Errorf("team: %w", repository.ErrNotFound) }
