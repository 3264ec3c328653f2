package stats

import "github.com/shopspring/decimal"

// Rounded returns a copy with every rate rounded to places decimals, for
// presentation. Counting stats are untouched.
func (p PlayerStats) Rounded(places int32) PlayerStats {
	p.Derived = p.Derived.Rounded(places)
	return p
}

// Rounded returns a copy with every present rate rounded to places decimals.
func (d DerivedStats) Rounded(places int32) DerivedStats {
	return DerivedStats{
		ShootingPercentage:    roundPtr(d.ShootingPercentage, places),
		PointsPerGame:         roundPtr(d.PointsPerGame, places),
		GoalsPerGame:          roundPtr(d.GoalsPerGame, places),
		AssistsPerGame:        roundPtr(d.AssistsPerGame, places),
		PenaltyMinutesPerGame: roundPtr(d.PenaltyMinutesPerGame, places),
		FaceoffPercentage:     roundPtr(d.FaceoffPercentage, places),
		PowerPlayPoints:       roundPtr(d.PowerPlayPoints, places),
		ShortHandedPoints:     roundPtr(d.ShortHandedPoints, places),
		PointsPerSixty:        roundPtr(d.PointsPerSixty, places),
		GiveawaysPerSixty:     roundPtr(d.GiveawaysPerSixty, places),
		SavePercentage:        roundPtr(d.SavePercentage, places),
		GoalsAgainstAverage:   roundPtr(d.GoalsAgainstAverage, places),
	}
}

// Rounded returns a copy with rates rounded to places decimals.
func (t TeamStats) Rounded(places int32) TeamStats {
	t.PointsPercentage = roundPtr(t.PointsPercentage, places)
	t.GoalsForPerGame = roundPtr(t.GoalsForPerGame, places)
	t.GoalsAgainstPerGame = roundPtr(t.GoalsAgainstPerGame, places)
	t.ShootingPercentage = roundPtr(t.ShootingPercentage, places)
	t.SavePercentage = roundPtr(t.SavePercentage, places)
	return t
}

// Rounded returns a copy with rates in stats and splits rounded.
func (a AdvancedMetrics) Rounded(places int32) AdvancedMetrics {
	a.Stats = a.Stats.Rounded(places)
	a.TakeawayGiveawayRatio = roundPtr(a.TakeawayGiveawayRatio, places)
	a.HitsPerGame = roundPtr(a.HitsPerGame, places)
	a.BlockedShotsPerGame = roundPtr(a.BlockedShotsPerGame, places)
	a.StrengthSplits = roundSplits(a.StrengthSplits, places)
	a.VenueSplits = roundSplits(a.VenueSplits, places)
	return a
}

// Rounded returns a copy with leader values rounded.
func (l Leaderboard) Rounded(places int32) Leaderboard {
	leaders := make([]LeaderboardEntry, len(l.Leaders))
	for i, e := range l.Leaders {
		e.Value = Round(e.Value, places)
		leaders[i] = e
	}
	l.Leaders = leaders
	return l
}

// Rounded returns a copy with values and team averages rounded.
func (c Comparison) Rounded(places int32) Comparison {
	players := make([]ComparisonEntry, len(c.Players))
	for i, e := range c.Players {
		values := make(map[Category]float64, len(e.Values))
		for k, v := range e.Values {
			values[k] = Round(v, places)
		}
		e.Values = values
		players[i] = e
	}
	c.Players = players
	avgs := make(map[Category]float64, len(c.TeamAverages))
	for k, v := range c.TeamAverages {
		avgs[k] = Round(v, places)
	}
	c.TeamAverages = avgs
	return c
}

// Rounded returns a copy with the summary numbers rounded. Per-game values and
// running averages are left as computed.
func (t Trend) Rounded(places int32) Trend {
	t.Average = Round(t.Average, places)
	t.Slope = Round(t.Slope, places)
	t.Percentage = Round(t.Percentage, places)
	return t
}

// Round rounds half away from zero.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

func roundSplits(in map[string]Split, places int32) map[string]Split {
	out := make(map[string]Split, len(in))
	for k, s := range in {
		s.ShootingPercentage = roundPtr(s.ShootingPercentage, places)
		s.PointsPerGame = roundPtr(s.PointsPerGame, places)
		s.SavePercentage = roundPtr(s.SavePercentage, places)
		out[k] = s
	}
	return out
}
