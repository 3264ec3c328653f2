package stats

// Derive computes the rate stats that apply to the given skill variant. Every
// ratio is guarded by its denominator; nothing is rounded here.
func Derive(b BaseStats, sk *SkaterStats, gs *GoalieStats) DerivedStats {
	d := DerivedStats{
		ShootingPercentage:    percent(b.Goals, b.Shots),
		PointsPerGame:         ratio(b.Points, b.GamesPlayed),
		GoalsPerGame:          ratio(b.Goals, b.GamesPlayed),
		AssistsPerGame:        ratio(b.Assists, b.GamesPlayed),
		PenaltyMinutesPerGame: ratio(b.PenaltyMinutes, b.GamesPlayed),
		FaceoffPercentage:     percent(b.FaceoffWins, b.FaceoffWins+b.FaceoffLosses),
	}
	if sk != nil {
		d.PowerPlayPoints = asFloat(sk.PowerPlayGoals + sk.PowerPlayAssists)
		d.ShortHandedPoints = asFloat(sk.ShortHandedGoals + sk.ShortHandedAssists)
		d.PointsPerSixty = perSixty(b.Points, sk.TimeOnIceSeconds)
		d.GiveawaysPerSixty = perSixty(b.Giveaways, sk.TimeOnIceSeconds)
	}
	if gs != nil {
		d.SavePercentage = percent(gs.Saves, gs.ShotsAgainst)
		d.GoalsAgainstAverage = perSixty(gs.GoalsAgainst, gs.TimeOnIceSeconds)
	}
	return d
}

func ratio(num, den int) *float64 {
	if den <= 0 {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}

func percent(num, den int) *float64 {
	if den <= 0 {
		return nil
	}
	v := float64(num) / float64(den) * 100
	return &v
}

// perSixty scales a count to a 60 minute rate given time on ice in seconds.
func perSixty(num, seconds int) *float64 {
	if seconds <= 0 {
		return nil
	}
	v := float64(num) * 60 / (float64(seconds) / 60)
	return &v
}

func asFloat(v int) *float64 {
	f := float64(v)
	return &f
}
