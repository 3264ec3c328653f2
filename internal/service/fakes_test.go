package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/cache"
	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/service"
)

var (
	errDBDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	discard   = zerolog.New(io.Discard)
)

func serviceErrIsInvalid(err error) bool { return errors.Is(err, service.ErrInvalidInput) }

func hasField(err error, field string) bool {
	for _, fe := range service.FieldErrors(err) {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type fakeTeams struct {
	teams map[string]model.Team
	err   error
}

func newFakeTeams(teams ...model.Team) *fakeTeams {
	f := &fakeTeams{teams: map[string]model.Team{}}
	for _, t := range teams {
		f.teams[t.ID] = t
	}
	return f
}

func (f *fakeTeams) Create(_ context.Context, t model.Team) (model.Team, error) {
	if f.err != nil {
		return model.Team{}, f.err
	}
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return model.Team{}, repository.ErrAlreadyExists
		}
	}
	t.ID = uuid.NewString()
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeTeams) GetByID(_ context.Context, id string) (model.Team, error) {
	if f.err != nil {
		return model.Team{}, f.err
	}
	t, ok := f.teams[id]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTeams) List(_ context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	if f.err != nil {
		return repository.PageResult[model.Team]{}, f.err
	}
	res := repository.PageResult[model.Team]{}
	for _, t := range f.teams {
		res.Items = append(res.Items, t)
	}
	sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].Name < res.Items[j].Name })
	res.Total = len(res.Items)
	if len(res.Items) > p.Limit {
		res.Items = res.Items[:p.Limit]
	}
	return res, nil
}

func (f *fakeTeams) Exists(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.teams[id]
	return ok, nil
}

var _ repository.TeamRepository = (*fakeTeams)(nil)

type fakePlayers struct {
	mu      sync.Mutex
	players map[string]model.Player
	order   []string
	gets    int
	err     error
}

func newFakePlayers(players ...model.Player) *fakePlayers {
	f := &fakePlayers{players: map[string]model.Player{}}
	for _, p := range players {
		f.players[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakePlayers) Create(_ context.Context, p model.Player) (model.Player, error) {
	if f.err != nil {
		return model.Player{}, f.err
	}
	for _, existing := range f.players {
		if existing.Active && existing.TeamID == p.TeamID && existing.JerseyNumber == p.JerseyNumber {
			return model.Player{}, repository.ErrAlreadyExists
		}
	}
	p.ID = uuid.NewString()
	f.players[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakePlayers) GetByID(_ context.Context, id string) (model.Player, error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	if f.err != nil {
		return model.Player{}, f.err
	}
	p, ok := f.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlayers) ListByTeam(_ context.Context, teamID string, _ repository.Page) (repository.PageResult[model.Player], error) {
	if f.err != nil {
		return repository.PageResult[model.Player]{}, f.err
	}
	res := repository.PageResult[model.Player]{}
	for _, id := range f.order {
		if p := f.players[id]; p.TeamID == teamID {
			res.Items = append(res.Items, p)
		}
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakePlayers) ListActiveByTeam(_ context.Context, teamID string) ([]model.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Player
	for _, id := range f.order {
		if p := f.players[id]; p.TeamID == teamID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ repository.PlayerRepository = (*fakePlayers)(nil)

type fakeGames struct {
	games map[string]model.Game
	err   error
}

func newFakeGames(games ...model.Game) *fakeGames {
	f := &fakeGames{games: map[string]model.Game{}}
	for _, g := range games {
		f.games[g.ID] = g
	}
	return f
}

func (f *fakeGames) Create(_ context.Context, g model.Game) (model.Game, error) {
	if f.err != nil {
		return model.Game{}, f.err
	}
	g.ID = uuid.NewString()
	f.games[g.ID] = g
	return g, nil
}

func (f *fakeGames) GetByID(_ context.Context, id string) (model.Game, error) {
	if f.err != nil {
		return model.Game{}, f.err
	}
	g, ok := f.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeGames) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Game], error) {
	if f.err != nil {
		return repository.PageResult[model.Game]{}, f.err
	}
	res := repository.PageResult[model.Game]{}
	for _, g := range f.games {
		res.Items = append(res.Items, g)
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakeGames) ListByTeamSeason(_ context.Context, teamID, season string) ([]model.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Game
	for _, g := range f.games {
		if g.Involves(teamID) && (season == "" || g.Season == season) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeGames) UpdateResult(_ context.Context, g model.Game) (model.Game, error) {
	if f.err != nil {
		return model.Game{}, f.err
	}
	if _, ok := f.games[g.ID]; !ok {
		return model.Game{}, repository.ErrNotFound
	}
	f.games[g.ID] = g
	return g, nil
}

var _ repository.GameRepository = (*fakeGames)(nil)

type fakeEvents struct {
	mu     sync.Mutex
	events []model.Event
	loads  int
	err    error
}

func (f *fakeEvents) Create(_ context.Context, e model.Event) (model.Event, error) {
	if f.err != nil {
		return model.Event{}, f.err
	}
	e.ID = uuid.NewString()
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeEvents) ListByGame(_ context.Context, gameID string) ([]model.Event, error) {
	return f.ListByGames(context.Background(), []string{gameID})
}

func (f *fakeEvents) ListByGames(_ context.Context, ids []string) ([]model.Event, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Event{}
	for _, e := range f.events {
		if want[e.GameID] {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ repository.EventRepository = (*fakeEvents)(nil)

type fakeLineups struct {
	entries []model.LineupEntry
	err     error
}

func (f *fakeLineups) Upsert(_ context.Context, l model.LineupEntry) (model.LineupEntry, error) {
	if f.err != nil {
		return model.LineupEntry{}, f.err
	}
	for i, existing := range f.entries {
		if existing.GameID == l.GameID && existing.PlayerID == l.PlayerID {
			f.entries[i] = l
			return l, nil
		}
	}
	f.entries = append(f.entries, l)
	return l, nil
}

func (f *fakeLineups) ListByGames(_ context.Context, ids []string) ([]model.LineupEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.LineupEntry
	for _, l := range f.entries {
		if want[l.GameID] {
			out = append(out, l)
		}
	}
	return out, nil
}

var _ repository.LineupRepository = (*fakeLineups)(nil)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = fakeTx{}

// memCache mimics the Redis cache: JSON values grouped by team-season.
type memCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	groups      map[string][]string
	invalidated []string
	getErr      error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, groups: map[string][]string{}}
}

func (c *memCache) Get(_ context.Context, key cache.Key, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key.String()]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key cache.Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key.String()] = raw
	group := key.TeamID + "/" + key.Season
	c.groups[group] = append(c.groups[group], key.String())
	return nil
}

func (c *memCache) Invalidate(_ context.Context, teamID, season string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, teamID+"/"+season)
	for _, group := range []string{teamID + "/" + season, teamID + "/"} {
		for _, k := range c.groups[group] {
			delete(c.data, k)
		}
		delete(c.groups, group)
	}
	return nil
}

var _ cache.StatsCache = (*memCache)(nil)

// Fixture ids. Fixed UUIDs keep failures readable.
const (
	teamA   = "0b7c1e62-5d0c-4c1e-9a51-1f2d3c4b5a01"
	teamB   = "0b7c1e62-5d0c-4c1e-9a51-1f2d3c4b5a02"
	fwd1    = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a01"
	fwd2    = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a02"
	def1    = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a03"
	goalieA = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a04"
	shooter = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a05"
	benched = "7a1f0c3e-2b4d-4e6f-8a9b-0c1d2e3f4a06"
	game1   = "3c9d2a10-6e7f-4a8b-9c0d-1e2f3a4b5c01"
	game2   = "3c9d2a10-6e7f-4a8b-9c0d-1e2f3a4b5c02"
	game3   = "3c9d2a10-6e7f-4a8b-9c0d-1e2f3a4b5c03"
	game4   = "3c9d2a10-6e7f-4a8b-9c0d-1e2f3a4b5c04"
	season  = "2024-25"
)

type world struct {
	teams   *fakeTeams
	players *fakePlayers
	games   *fakeGames
	events  *fakeEvents
	lineups *fakeLineups
	cache   *memCache
}

func (w *world) deps() service.StatsDeps {
	return service.StatsDeps{Teams: w.teams, Players: w.players, Games: w.games, Events: w.events, Lineups: w.lineups, Cache: w.cache}
}

func ev(gameID, playerID, teamID, typ string, details map[string]any) model.Event {
	return model.Event{ID: uuid.NewString(), GameID: gameID, PlayerID: playerID, TeamID: teamID, EventType: typ, Period: 1, Details: details}
}

// newWorld builds three completed games for team A and one scheduled game.
//
//	fwd1: goal+assist in each completed game, 2 shots per game
//	fwd2: one goal in game 3 only
//	def1: lineup only in games 1-2, one 5-minute penalty in game 1
//	goalieA: credited by saved_by / goalie_id on team B's events
func newWorld() *world {
	day := func(d int) time.Time { return time.Date(2024, 10, d, 19, 0, 0, 0, time.UTC) }
	w := &world{
		teams: newFakeTeams(model.Team{ID: teamA, Name: "Ice Hawks"}, model.Team{ID: teamB, Name: "Rivals"}),
		players: newFakePlayers(
			model.Player{ID: fwd1, TeamID: teamA, FirstName: "Alex", LastName: "One", JerseyNumber: 9, Position: model.PositionForward, Active: true},
			model.Player{ID: fwd2, TeamID: teamA, FirstName: "Sam", LastName: "Two", JerseyNumber: 10, Position: model.PositionForward, Active: true},
			model.Player{ID: def1, TeamID: teamA, FirstName: "Dee", LastName: "Three", JerseyNumber: 4, Position: model.PositionDefense, Active: true},
			model.Player{ID: goalieA, TeamID: teamA, FirstName: "Gil", LastName: "Keeper", JerseyNumber: 30, Position: model.PositionGoalie, Active: true},
			model.Player{ID: benched, TeamID: teamA, FirstName: "Ben", LastName: "Ched", JerseyNumber: 99, Position: model.PositionForward, Active: false},
			model.Player{ID: shooter, TeamID: teamB, FirstName: "Riv", LastName: "Al", JerseyNumber: 19, Position: model.PositionForward, Active: true},
		),
		games: newFakeGames(
			model.Game{ID: game1, Season: season, Date: day(1), HomeTeamID: teamA, AwayTeamID: teamB, HomeTeamName: "Ice Hawks", AwayTeamName: "Rivals", Status: model.GameStatusCompleted, HomeScore: 2, AwayScore: 1, EndedIn: model.EndedInRegulation},
			model.Game{ID: game2, Season: season, Date: day(5), HomeTeamID: teamB, AwayTeamID: teamA, HomeTeamName: "Rivals", AwayTeamName: "Ice Hawks", Status: model.GameStatusCompleted, HomeScore: 0, AwayScore: 3, EndedIn: model.EndedInRegulation},
			model.Game{ID: game3, Season: season, Date: day(9), HomeTeamID: teamA, AwayTeamID: teamB, HomeTeamName: "Ice Hawks", AwayTeamName: "Rivals", Status: model.GameStatusCompleted, HomeScore: 2, AwayScore: 3, EndedIn: model.EndedInOvertime},
			model.Game{ID: game4, Season: season, Date: day(20), HomeTeamID: teamA, AwayTeamID: teamB, Status: model.GameStatusScheduled},
		),
		events:  &fakeEvents{},
		lineups: &fakeLineups{},
		cache:   newMemCache(),
	}
	for _, g := range []string{game1, game2, game3} {
		w.events.events = append(w.events.events,
			ev(g, fwd1, teamA, model.EventGoal, nil),
			ev(g, fwd1, teamA, model.EventAssist, nil),
			ev(g, fwd1, teamA, model.EventShot, nil),
			ev(g, fwd1, teamA, model.EventShot, nil),
			ev(g, shooter, teamB, model.EventShot, map[string]any{"saved_by": goalieA}),
		)
	}
	w.events.events = append(w.events.events,
		ev(game3, fwd2, teamA, model.EventGoal, nil),
		ev(game1, def1, teamA, model.EventPenalty, map[string]any{"penalty_minutes": float64(5)}),
		ev(game1, shooter, teamB, model.EventGoal, map[string]any{"goalie_id": goalieA}),
		ev(game4, fwd2, teamA, model.EventGoal, nil),
	)
	w.lineups.entries = []model.LineupEntry{
		{GameID: game1, PlayerID: def1, TeamID: teamA, TimeOnIceSeconds: 1200},
		{GameID: game2, PlayerID: def1, TeamID: teamA, TimeOnIceSeconds: 1100},
	}
	return w
}
