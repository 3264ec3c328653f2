package stats

import (
	"math"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// stableSlope is the absolute slope under which a series counts as stable.
const stableSlope = 0.1

// BuildTrend computes c game by game for p using the same fold as Compute, keeps
// the most recent gameCount games the stat applies to, and fits a least-squares
// line over game index.
func BuildTrend(p model.Player, s *Season, opts Options, c Category, gameCount int) (Trend, error) {
	var points []TrendPoint
	for _, g := range s.filteredGames(opts) {
		single, err := Compute(p, s.only(g.ID), opts)
		if err != nil {
			return Trend{}, err
		}
		if single.Base.GamesPlayed == 0 {
			continue
		}
		v, ok := single.Value(c)
		if !ok {
			continue
		}
		_, opponent := g.OpponentOf(s.TeamID)
		points = append(points, TrendPoint{GameID: g.ID, Date: g.Date, Value: v, Opponent: opponent})
	}
	if gameCount > 0 && len(points) > gameCount {
		points = points[len(points)-gameCount:]
	}

	values := make([]float64, len(points))
	var sum float64
	for i := range points {
		values[i] = points[i].Value
		sum += points[i].Value
		points[i].RunningAverage = Round(sum/float64(i+1), 2)
	}

	t := Trend{PlayerID: p.ID, Stat: c, Games: points, Direction: TrendStable}
	if len(points) == 0 {
		t.Games = []TrendPoint{}
		return t, nil
	}
	t.Average = sum / float64(len(points))
	if len(points) < 2 {
		return t, nil
	}
	t.Slope = slope(values)
	t.Direction, t.Percentage = classify(t.Slope, t.Average)
	return t, nil
}

// slope fits y = a + b*x over x = 0..n-1 and returns b.
func slope(y []float64) float64 {
	n := float64(len(y))
	var sx, sy, sxy, sxx float64
	for i, v := range y {
		x := float64(i)
		sx += x
		sy += v
		sxy += x * v
		sxx += x * x
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}

func classify(slope, mean float64) (string, float64) {
	pct := 0.0
	if mean != 0 {
		pct = math.Abs(slope/mean) * 100
	}
	switch {
	case math.Abs(slope) < stableSlope:
		return TrendStable, pct
	case slope > 0:
		return TrendImproving, pct
	default:
		return TrendDeclining, pct
	}
}
