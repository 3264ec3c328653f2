package stats

import (
	"sort"
	"strings"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// Position filters accepted by the leaderboard.
const (
	PositionAll     = "all"
	PositionSkaters = "skaters"
)

// IsValidPositionFilter reports whether f is all, skaters, F, D or G.
func IsValidPositionFilter(f string) bool {
	switch strings.ToUpper(strings.TrimSpace(f)) {
	case "", "ALL", "SKATERS", model.PositionForward, model.PositionDefense, model.PositionGoalie:
		return true
	}
	return false
}

// MatchesPosition applies a leaderboard position filter to a roster position.
func MatchesPosition(position, filter string) bool {
	switch f := strings.ToUpper(strings.TrimSpace(filter)); f {
	case "", "ALL":
		return true
	case "SKATERS":
		return position == model.PositionForward || position == model.PositionDefense
	default:
		return position == f
	}
}

type ranked struct {
	stats *PlayerStats
	value float64
}

// sortByCategory orders players best first. Players without a value for c are
// dropped; ties keep input order.
func sortByCategory(players []PlayerStats, c Category) []ranked {
	out := make([]ranked, 0, len(players))
	for i := range players {
		if v, ok := players[i].Value(c); ok {
			out = append(out, ranked{stats: &players[i], value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return c.better(out[i].value, out[j].value) })
	return out
}

// BuildLeaders ranks players for c after dropping those under minGames, and keeps
// at most limit rows (limit <= 0 keeps all).
func BuildLeaders(players []PlayerStats, c Category, minGames, limit int) []LeaderboardEntry {
	eligible := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		if p.Base.GamesPlayed >= minGames {
			eligible = append(eligible, p)
		}
	}
	sorted := sortByCategory(eligible, c)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	leaders := make([]LeaderboardEntry, 0, len(sorted))
	for i, r := range sorted {
		p := r.stats
		leaders = append(leaders, LeaderboardEntry{
			Rank:         i + 1,
			PlayerID:     p.PlayerID,
			PlayerName:   p.PlayerName,
			JerseyNumber: p.JerseyNumber,
			Position:     p.Position,
			Value:        r.value,
			GamesPlayed:  p.Base.GamesPlayed,
			Goals:        p.Base.Goals,
			Assists:      p.Base.Assists,
			Points:       p.Base.Points,
		})
	}
	return leaders
}

// DefaultComparisonCategories is used when a comparison names no categories.
var DefaultComparisonCategories = []Category{
	GamesPlayed, Goals, Assists, Points, Shots, ShootingPercentage, PointsPerGame, PenaltyMinutes,
}

// BuildComparison returns one entry per player in input order. Ranks are computed
// inside the group only: 1-based position in the sorted group, ties resolved by
// input order.
func BuildComparison(group []PlayerStats, cats []Category) []ComparisonEntry {
	entries := make([]ComparisonEntry, len(group))
	index := make(map[*PlayerStats]int, len(group))
	for i := range group {
		p := &group[i]
		index[p] = i
		entries[i] = ComparisonEntry{
			PlayerID:     p.PlayerID,
			PlayerName:   p.PlayerName,
			JerseyNumber: p.JerseyNumber,
			Position:     p.Position,
			GamesPlayed:  p.Base.GamesPlayed,
			Values:       make(map[Category]float64, len(cats)),
			Ranks:        make(map[Category]int, len(cats)),
		}
	}
	for _, c := range cats {
		for rank, r := range sortByCategory(group, c) {
			e := &entries[index[r.stats]]
			e.Values[c] = r.value
			e.Ranks[c] = rank + 1
		}
	}
	return entries
}

// Averages returns the mean of each category over the players it applies to.
// Categories no player has are omitted.
func Averages(players []PlayerStats, cats []Category) map[Category]float64 {
	out := make(map[Category]float64, len(cats))
	for _, c := range cats {
		var sum float64
		n := 0
		for i := range players {
			if v, ok := players[i].Value(c); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			out[c] = sum / float64(n)
		}
	}
	return out
}
