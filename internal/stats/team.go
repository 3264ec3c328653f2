package stats

import "github.com/maxviazov/hockey-stats-service/internal/model"

// BuildTeamStats folds final scores and events of every completed game into the
// team's season summary. Record and goals come from final scores; shots, penalties
// and special-teams goals come from events. Shots on both sides are shots on goal
// plus goals, so one team's ShotsFor equals its opponent's ShotsAgainst.
func BuildTeamStats(s *Season) TeamStats {
	t := TeamStats{TeamID: s.TeamID, Season: s.Name}
	var goalEvents, shotsOnGoal, oppShotsOnGoal, oppGoalEvents int
	for _, g := range s.Games() {
		t.GamesPlayed++
		gf, ga := g.ScoreFor(s.TeamID)
		t.GoalsFor += gf
		t.GoalsAgainst += ga
		switch {
		case gf > ga:
			t.Wins++
		case gf < ga && (g.EndedIn == model.EndedInOvertime || g.EndedIn == model.EndedInShootout):
			t.OvertimeLosses++
		case gf < ga:
			t.Losses++
		}

		for _, e := range s.events[g.ID] {
			ours := e.TeamID == "" || e.TeamID == s.TeamID
			strength := eventStrength(e, s.TeamID)
			switch e.EventType {
			case model.EventShot:
				if onGoal, ok := detailBool(e.Details, "on_goal"); ok && !onGoal {
					continue
				}
				if ours {
					shotsOnGoal++
				} else {
					oppShotsOnGoal++
				}
			case model.EventGoal:
				if !ours {
					oppGoalEvents++
					if strength == detailShortHanded {
						t.PowerPlayGoalsAgainst++
					}
					continue
				}
				goalEvents++
				switch strength {
				case detailPowerPlay:
					t.PowerPlayGoals++
				case detailShortHanded:
					t.ShortHandedGoals++
				}
			case model.EventPenalty:
				if ours {
					t.PenaltyMinutes += penaltyMinutes(e)
				}
			}
		}
	}
	t.ShotsFor = shotsOnGoal + goalEvents
	t.ShotsAgainst = oppShotsOnGoal + oppGoalEvents
	t.GoalDifferential = t.GoalsFor - t.GoalsAgainst
	t.Points = 2*t.Wins + t.OvertimeLosses
	t.PointsPercentage = percent(t.Points, 2*t.GamesPlayed)
	t.GoalsForPerGame = ratio(t.GoalsFor, t.GamesPlayed)
	t.GoalsAgainstPerGame = ratio(t.GoalsAgainst, t.GamesPlayed)
	t.ShootingPercentage = percent(goalEvents, t.ShotsFor)
	t.SavePercentage = percent(oppShotsOnGoal, t.ShotsAgainst)
	return t
}
