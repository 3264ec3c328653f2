package stats

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// Season is the read-only input of every computation: one team's completed games in
// a season with all events and lineup entries recorded in them (both teams' events,
// since goalie stats are credited from opponent shots).
type Season struct {
	TeamID string
	Name   string

	games   map[string]model.Game
	order   []string // game ids by date ascending
	events  map[string][]model.Event
	lineups map[string][]model.LineupEntry
}

// NewSeason indexes the raw rows. Games that are not completed or do not involve
// teamID are dropped, and so are events and lineups of dropped games.
func NewSeason(teamID, season string, games []model.Game, events []model.Event, lineups []model.LineupEntry) *Season {
	s := &Season{
		TeamID:  teamID,
		Name:    season,
		games:   make(map[string]model.Game, len(games)),
		events:  make(map[string][]model.Event, len(games)),
		lineups: make(map[string][]model.LineupEntry, len(games)),
	}
	for _, g := range games {
		if g.Status != model.GameStatusCompleted || !g.Involves(teamID) {
			continue
		}
		if season != "" && g.Season != season {
			continue
		}
		s.games[g.ID] = g
		s.order = append(s.order, g.ID)
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		gi, gj := s.games[s.order[i]], s.games[s.order[j]]
		if gi.Date.Equal(gj.Date) {
			return gi.ID < gj.ID
		}
		return gi.Date.Before(gj.Date)
	})
	for _, e := range events {
		if _, ok := s.games[e.GameID]; ok {
			s.events[e.GameID] = append(s.events[e.GameID], e)
		}
	}
	for _, l := range lineups {
		if _, ok := s.games[l.GameID]; ok {
			s.lineups[l.GameID] = append(s.lineups[l.GameID], l)
		}
	}
	return s
}

// Games returns the completed games in chronological order.
func (s *Season) Games() []model.Game {
	out := make([]model.Game, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.games[id])
	}
	return out
}

// only narrows the season to a single game; used for per-game trend values.
func (s *Season) only(gameID string) *Season {
	g, ok := s.games[gameID]
	if !ok {
		return &Season{TeamID: s.TeamID, Name: s.Name}
	}
	return &Season{
		TeamID:  s.TeamID,
		Name:    s.Name,
		games:   map[string]model.Game{gameID: g},
		order:   []string{gameID},
		events:  map[string][]model.Event{gameID: s.events[gameID]},
		lineups: map[string][]model.LineupEntry{gameID: s.lineups[gameID]},
	}
}

// filteredGames yields the games that pass the venue and date filters, in order.
func (s *Season) filteredGames(opts Options) []model.Game {
	out := make([]model.Game, 0, len(s.order))
	for _, id := range s.order {
		g := s.games[id]
		if opts.matchesGame(g, s.TeamID) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Season) lineupFor(gameID, playerID string) (model.LineupEntry, bool) {
	for _, l := range s.lineups[gameID] {
		if l.PlayerID == playerID {
			return l, true
		}
	}
	return model.LineupEntry{}, false
}

// Details accessors. Values arrive from JSONB so numbers are float64, but rows
// written by older clients carry strings.

func detailString(d map[string]any, key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func detailID(d map[string]any, key string) string {
	v, ok := d[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func detailInt(d map[string]any, key string) (int, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func detailBool(d map[string]any, key string) (bool, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}
