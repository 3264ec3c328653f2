package stats

import (
	"errors"
	"fmt"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// DefaultPenaltyMinutes is charged when a penalty event carries no duration (a minor).
const DefaultPenaltyMinutes = 2

// regulationSeconds is the time credited to a goalie in net whose lineup entry has no TOI.
const regulationSeconds = 60 * 60

// ErrUnknownPosition is returned for players whose position is not F, D or G.
var ErrUnknownPosition = errors.New("unknown position")

// Compute folds the season's events into the complete stat picture for p.
// The result depends only on its arguments, so repeated calls are identical.
func Compute(p model.Player, s *Season, opts Options) (PlayerStats, error) {
	out := newPlayerStats(p, s)
	switch p.Position {
	case model.PositionForward, model.PositionDefense:
		base, skater := foldSkater(p.ID, s, opts)
		out.Base = base
		out.Skater = &skater
	case model.PositionGoalie:
		base, goalie := foldGoalie(p.ID, s, opts)
		out.Base = base
		out.Goalie = &goalie
	default:
		return PlayerStats{}, fmt.Errorf("player %s: %w %q", p.ID, ErrUnknownPosition, p.Position)
	}
	out.Derived = Derive(out.Base, out.Skater, out.Goalie)
	return out, nil
}

// ownEvent reports whether e was recorded for playerID on the season's team.
// Rows without a team id are attributed to the player's team.
func ownEvent(e model.Event, playerID, teamID string) bool {
	return e.PlayerID == playerID && (e.TeamID == "" || e.TeamID == teamID)
}

func foldSkater(playerID string, s *Season, opts Options) (BaseStats, SkaterStats) {
	var b BaseStats
	var sk SkaterStats
	for _, g := range s.filteredGames(opts) {
		played := false
		if l, ok := s.lineupFor(g.ID, playerID); ok {
			played = true
			sk.TimeOnIceSeconds += max(l.TimeOnIceSeconds, 0)
		}
		for _, e := range s.events[g.ID] {
			if !ownEvent(e, playerID, s.TeamID) || !opts.matchesEvent(e, s.TeamID) {
				continue
			}
			played = true
			foldBase(&b, e, s.TeamID, true)
			foldSkaterSkill(&sk, e, s.TeamID)
		}
		if played {
			b.GamesPlayed++
		}
	}
	b.Points = b.Goals + b.Assists
	return b, sk
}

// foldBase increments the counting stats for one event. Plus/minus only looks at
// even-strength goals the player took part in or was charged with; without shift
// data it cannot see linemates on the ice.
func foldBase(b *BaseStats, e model.Event, teamID string, skater bool) {
	even := eventStrength(e, teamID) == detailEven
	switch e.EventType {
	case model.EventGoal:
		b.Goals++
		if even && skater {
			b.PlusMinus++
		}
	case model.EventAssist:
		b.Assists++
		if even && skater {
			b.PlusMinus++
		}
	case model.EventShot:
		b.Shots++
		if onGoal, ok := detailBool(e.Details, "on_goal"); !ok || onGoal {
			b.ShotsOnGoal++
		}
	case model.EventShotBlocked:
		b.BlockedShots++
	case model.EventHit:
		b.Hits++
	case model.EventTakeaway:
		b.Takeaways++
	case model.EventGiveaway:
		b.Giveaways++
	case model.EventFaceoffWin:
		b.FaceoffWins++
	case model.EventFaceoffLoss:
		b.FaceoffLosses++
	case model.EventPenalty:
		b.PenaltyMinutes += penaltyMinutes(e)
	case model.EventPenaltyShot:
		b.PenaltyShotAttempts++
		if scored, _ := detailBool(e.Details, "scored"); scored {
			b.PenaltyShotGoals++
		}
	case model.EventGoalAgainst:
		if even && skater {
			b.PlusMinus--
		}
	}
}

func penaltyMinutes(e model.Event) int {
	m, ok := detailInt(e.Details, "penalty_minutes")
	if !ok {
		m, ok = detailInt(e.Details, "penaltyMinutes")
	}
	if !ok || m < 0 {
		return DefaultPenaltyMinutes
	}
	return m
}

func foldSkaterSkill(sk *SkaterStats, e model.Event, teamID string) {
	strength := eventStrength(e, teamID)
	switch e.EventType {
	case model.EventGoal:
		switch strength {
		case detailPowerPlay:
			sk.PowerPlayGoals++
		case detailShortHanded:
			sk.ShortHandedGoals++
		default:
			sk.EvenStrengthGoals++
		}
		if gw, _ := detailBool(e.Details, "game_winning"); gw {
			sk.GameWinningGoals++
		}
		if ot, ok := detailBool(e.Details, "overtime"); ot || (!ok && e.Period > 3) {
			sk.OvertimeGoals++
		}
	case model.EventAssist:
		switch strength {
		case detailPowerPlay:
			sk.PowerPlayAssists++
		case detailShortHanded:
			sk.ShortHandedAssists++
		default:
			sk.EvenStrengthAssists++
		}
	}
}

// foldGoalie credits saves and goals against per game. The goalie's own save and
// goal_against rows win when a game has any; otherwise opponent shots and goals
// that name the goalie (saved_by / goalie_id) are used. Never both, so a game
// entered both ways is not double counted.
//
// A goalie is in net when they started, logged TOI or faced a shot. Only then do
// they get the game, its decision and ice time. A dressed backup who never went
// in gets nothing from the lineup row alone.
func foldGoalie(playerID string, s *Season, opts Options) (BaseStats, GoalieStats) {
	var b BaseStats
	var gs GoalieStats
	for _, g := range s.filteredGames(opts) {
		inNet, played := false, false
		toi := 0
		if l, ok := s.lineupFor(g.ID, playerID); ok {
			toi = max(l.TimeOnIceSeconds, 0)
			if l.Starter {
				gs.GamesStarted++
			}
			inNet = l.Starter || toi > 0
		}

		var ownSaves, ownGA, oppSaves, oppGA int
		for _, e := range s.events[g.ID] {
			if !opts.matchesEvent(e, s.TeamID) {
				continue
			}
			if ownEvent(e, playerID, s.TeamID) {
				played = true
				switch e.EventType {
				case model.EventSave:
					ownSaves++
				case model.EventGoalAgainst:
					ownGA++
				default:
					foldBase(&b, e, s.TeamID, false)
				}
				continue
			}
			if e.TeamID == "" || e.TeamID == s.TeamID {
				continue
			}
			switch e.EventType {
			case model.EventShot:
				if detailID(e.Details, "saved_by") == playerID {
					oppSaves++
				}
			case model.EventGoal:
				if detailID(e.Details, "goalie_id") == playerID {
					oppGA++
				}
			}
		}

		saves, ga := oppSaves, oppGA
		if ownSaves+ownGA > 0 {
			saves, ga = ownSaves, ownGA
		}
		if saves+ga > 0 {
			inNet = true
		}
		if !inNet {
			if played {
				b.GamesPlayed++
			}
			continue
		}

		b.GamesPlayed++
		gs.Saves += saves
		gs.GoalsAgainst += ga
		if toi == 0 {
			toi = regulationSeconds
		}
		gs.TimeOnIceSeconds += toi

		gf, gaScore := g.ScoreFor(s.TeamID)
		switch {
		case gf > gaScore:
			gs.Wins++
		case gf < gaScore && (g.EndedIn == model.EndedInOvertime || g.EndedIn == model.EndedInShootout):
			gs.OvertimeLosses++
		case gf < gaScore:
			gs.Losses++
		}
		if saves > 0 && ga == 0 {
			gs.Shutouts++
		}
	}
	gs.ShotsAgainst = gs.Saves + gs.GoalsAgainst
	b.Points = b.Goals + b.Assists
	return b, gs
}
