package stats

import "github.com/maxviazov/hockey-stats-service/internal/model"

// BuildAdvanced computes p's stats as position plus strength and venue splits.
// Strength splits keep the venue and date filters of opts; venue splits keep its
// strength and date filters.
func BuildAdvanced(p model.Player, s *Season, position string, opts Options) (AdvancedMetrics, error) {
	if position != "" {
		p.Position = position
	}
	all, err := Compute(p, s, opts)
	if err != nil {
		return AdvancedMetrics{}, err
	}

	out := AdvancedMetrics{
		Stats:                 all,
		Options:               opts,
		StrengthSplits:        make(map[string]Split, 3),
		VenueSplits:           make(map[string]Split, 2),
		TakeawayGiveawayRatio: ratio(all.Base.Takeaways, all.Base.Giveaways),
		HitsPerGame:           ratio(all.Base.Hits, all.Base.GamesPlayed),
		BlockedShotsPerGame:   ratio(all.Base.BlockedShots, all.Base.GamesPlayed),
	}

	for _, strength := range []string{StrengthEven, StrengthPowerPlay, StrengthPenaltyKill} {
		o := opts
		o.SituationalStrength = strength
		split, err := Compute(p, s, o)
		if err != nil {
			return AdvancedMetrics{}, err
		}
		out.StrengthSplits[strength] = toSplit(split)
	}
	for _, venue := range []string{VenueHome, VenueAway} {
		o := opts
		o.HomeAwayOnly = venue
		split, err := Compute(p, s, o)
		if err != nil {
			return AdvancedMetrics{}, err
		}
		out.VenueSplits[venue] = toSplit(split)
	}
	return out, nil
}

func toSplit(p PlayerStats) Split {
	sp := Split{
		GamesPlayed:        p.Base.GamesPlayed,
		Goals:              p.Base.Goals,
		Assists:            p.Base.Assists,
		Points:             p.Base.Points,
		Shots:              p.Base.Shots,
		ShootingPercentage: p.Derived.ShootingPercentage,
		PointsPerGame:      p.Derived.PointsPerGame,
	}
	if g := p.Goalie; g != nil {
		saves, against := g.Saves, g.ShotsAgainst
		sp.Saves = &saves
		sp.ShotsAgainst = &against
		sp.SavePercentage = p.Derived.SavePercentage
	}
	return sp
}
