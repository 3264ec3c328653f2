package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

func TestCompute_SkaterAcrossThreeGames(t *testing.T) {
	games := []model.Game{game(1, true, 3, 1), game(2, false, 1, 2), game(3, true, 4, 0)}
	var b eventBuilder
	goals := []int{1, 0, 2}
	assists := []int{1, 1, 0}
	shots := []int{3, 2, 4}
	for i, g := range games {
		b.repeat(goals[i], g.ID, "p1", teamA, model.EventGoal)
		b.repeat(assists[i], g.ID, "p1", teamA, model.EventAssist)
		b.repeat(shots[i], g.ID, "p1", teamA, model.EventShot)
	}

	s := NewSeason(teamA, "2024-25", games, b.events, nil)
	got, err := Compute(forward("p1"), s, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, got.Base.GamesPlayed)
	assert.Equal(t, 3, got.Base.Goals)
	assert.Equal(t, 2, got.Base.Assists)
	assert.Equal(t, 5, got.Base.Points)
	assert.Equal(t, 9, got.Base.Shots)
	require.NotNil(t, got.Derived.ShootingPercentage)
	assert.InDelta(t, 33.33, *got.Derived.ShootingPercentage, 0.01)
	require.NotNil(t, got.Derived.PointsPerGame)
	assert.InDelta(t, 1.67, *got.Derived.PointsPerGame, 0.01)
	require.NotNil(t, got.Skater)
	assert.Nil(t, got.Goalie)
	assert.Equal(t, 3, got.Skater.EvenStrengthGoals)
	assert.Equal(t, 5, got.Base.PlusMinus)

	rounded := got.Rounded(2)
	assert.Equal(t, 33.33, *rounded.Derived.ShootingPercentage)
	assert.Equal(t, 1.67, *rounded.Derived.PointsPerGame)
}

func TestCompute_GoalieSavePercentage(t *testing.T) {
	g := game(1, true, 2, 3)
	var b eventBuilder
	b.repeat(27, g.ID, "g1", teamA, model.EventSave)
	b.repeat(3, g.ID, "g1", teamA, model.EventGoalAgainst)

	s := NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil)
	got, err := Compute(goalie("g1"), s, Options{})
	require.NoError(t, err)

	require.NotNil(t, got.Goalie)
	assert.Nil(t, got.Skater)
	assert.Equal(t, 30, got.Goalie.ShotsAgainst)
	assert.Equal(t, 27, got.Goalie.Saves)
	assert.Equal(t, 3, got.Goalie.GoalsAgainst)
	assert.Equal(t, 1, got.Goalie.Losses)
	require.NotNil(t, got.Derived.SavePercentage)
	assert.InDelta(t, 90.0, *got.Derived.SavePercentage, 1e-9)
	require.NotNil(t, got.Derived.GoalsAgainstAverage)
	assert.InDelta(t, 3.0, *got.Derived.GoalsAgainstAverage, 1e-9)
	assert.Zero(t, got.Base.PlusMinus)
}

func TestCompute_GoalieFromOpponentEvents(t *testing.T) {
	g := game(1, false, 1, 0)
	var b eventBuilder
	for range 20 {
		b.add(g.ID, "opp", teamB, model.EventShot, map[string]any{"saved_by": "g1"})
	}
	// a shot saved by someone else is not credited
	b.add(g.ID, "opp", teamB, model.EventShot, map[string]any{"saved_by": "g2"})

	s := NewSeason(teamA, "", []model.Game{g}, b.events, []model.LineupEntry{{GameID: g.ID, PlayerID: "g1", TeamID: teamA, Starter: true}})
	got, err := Compute(goalie("g1"), s, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, got.Base.GamesPlayed)
	assert.Equal(t, 1, got.Goalie.GamesStarted)
	assert.Equal(t, 20, got.Goalie.Saves)
	assert.Equal(t, 0, got.Goalie.GoalsAgainst)
	assert.Equal(t, 1, got.Goalie.Shutouts)
	assert.Equal(t, 1, got.Goalie.Wins)
	assert.Equal(t, regulationSeconds, got.Goalie.TimeOnIceSeconds)
}

func TestCompute_GoalieOwnRowsWinOverOpponentReferences(t *testing.T) {
	g := game(1, true, 3, 1)
	var b eventBuilder
	b.repeat(10, g.ID, "g1", teamA, model.EventSave)
	b.repeat(1, g.ID, "g1", teamA, model.EventGoalAgainst)
	for range 10 {
		b.add(g.ID, "opp", teamB, model.EventShot, map[string]any{"saved_by": "g1"})
	}
	b.add(g.ID, "opp", teamB, model.EventGoal, map[string]any{"goalie_id": "g1"})

	s := NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil)
	got, err := Compute(goalie("g1"), s, Options{})
	require.NoError(t, err)

	assert.Equal(t, 10, got.Goalie.Saves)
	assert.Equal(t, 1, got.Goalie.GoalsAgainst)
	assert.Equal(t, 11, got.Goalie.ShotsAgainst)
}

func TestCompute_NoEvents(t *testing.T) {
	s := NewSeason(teamA, "2024-25", []model.Game{game(1, true, 1, 0)}, nil, nil)

	got, err := Compute(forward("p1"), s, Options{})
	require.NoError(t, err)
	assert.Zero(t, got.Base.GamesPlayed)
	assert.Nil(t, got.Derived.ShootingPercentage)
	assert.Nil(t, got.Derived.PointsPerGame)
	assert.Nil(t, got.Derived.FaceoffPercentage)
	assert.Nil(t, got.Derived.PointsPerSixty)

	g, err := Compute(goalie("g1"), s, Options{})
	require.NoError(t, err)
	assert.Zero(t, g.Base.GamesPlayed)
	assert.Nil(t, g.Derived.SavePercentage)
	assert.Nil(t, g.Derived.GoalsAgainstAverage)
}

func TestCompute_LineupCountsGamePlayed(t *testing.T) {
	games := []model.Game{game(1, true, 1, 0), game(2, true, 2, 0)}
	var b eventBuilder
	b.add("g01", "p1", teamA, model.EventGoal, nil)
	lineups := []model.LineupEntry{
		{GameID: "g01", PlayerID: "p1", TeamID: teamA, TimeOnIceSeconds: 900},
		{GameID: "g02", PlayerID: "p1", TeamID: teamA, TimeOnIceSeconds: 1200},
	}

	got, err := Compute(forward("p1"), NewSeason(teamA, "2024-25", games, b.events, lineups), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Base.GamesPlayed)
	assert.Equal(t, 2100, got.Skater.TimeOnIceSeconds)
	require.NotNil(t, got.Derived.PointsPerSixty)
	assert.InDelta(t, 60.0/35.0, *got.Derived.PointsPerSixty, 1e-9)
}

func TestCompute_IgnoresIncompleteAndOtherSeasonGames(t *testing.T) {
	live := game(1, true, 0, 0)
	live.Status = model.GameStatusInProgress
	old := game(2, true, 1, 0)
	old.Season = "2023-24"
	counted := game(3, true, 1, 0)

	var b eventBuilder
	for _, g := range []model.Game{live, old, counted} {
		b.add(g.ID, "p1", teamA, model.EventGoal, nil)
	}

	got, err := Compute(forward("p1"), NewSeason(teamA, "2024-25", []model.Game{live, old, counted}, b.events, nil), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Base.GamesPlayed)
	assert.Equal(t, 1, got.Base.Goals)
}

func TestCompute_SpecialTeamsAndPenalties(t *testing.T) {
	g := game(1, true, 4, 2)
	var b eventBuilder
	b.add(g.ID, "p1", teamA, model.EventGoal, map[string]any{"strength": "power_play", "game_winning": true})
	b.add(g.ID, "p1", teamA, model.EventGoal, map[string]any{"strength": "SH"})
	b.add(g.ID, "p1", teamA, model.EventAssist, map[string]any{"strength": "pp"})
	b.add(g.ID, "p1", teamA, model.EventPenalty, nil)
	b.add(g.ID, "p1", teamA, model.EventPenalty, map[string]any{"penalty_minutes": float64(5)})
	b.add(g.ID, "p1", teamA, model.EventShot, map[string]any{"on_goal": false})
	b.add(g.ID, "p1", teamA, model.EventFaceoffWin, nil)
	b.add(g.ID, "p1", teamA, model.EventFaceoffWin, nil)
	b.add(g.ID, "p1", teamA, model.EventFaceoffWin, nil)
	b.add(g.ID, "p1", teamA, model.EventFaceoffLoss, nil)
	b.add(g.ID, "p1", teamA, model.EventPenaltyShot, map[string]any{"scored": "true"})
	b.add(g.ID, "p1", teamA, model.EventGoalAgainst, nil)

	got, err := Compute(forward("p1"), NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, got.Skater.PowerPlayGoals)
	assert.Equal(t, 1, got.Skater.ShortHandedGoals)
	assert.Equal(t, 1, got.Skater.PowerPlayAssists)
	assert.Equal(t, 1, got.Skater.GameWinningGoals)
	assert.Equal(t, 7, got.Base.PenaltyMinutes)
	assert.Equal(t, 1, got.Base.Shots)
	assert.Zero(t, got.Base.ShotsOnGoal)
	assert.Equal(t, 1, got.Base.PenaltyShotGoals)
	assert.Equal(t, -1, got.Base.PlusMinus)
	assert.InDelta(t, 75.0, *got.Derived.FaceoffPercentage, 1e-9)
	assert.InDelta(t, 2.0, *got.Derived.PowerPlayPoints, 1e-9)
	assert.InDelta(t, 1.0, *got.Derived.ShortHandedPoints, 1e-9)
}

func TestCompute_StrengthFilter(t *testing.T) {
	g := game(1, true, 2, 0)
	var b eventBuilder
	b.add(g.ID, "p1", teamA, model.EventGoal, map[string]any{"strength": "power_play"})
	b.add(g.ID, "p1", teamA, model.EventGoal, nil)
	s := NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil)

	pp, err := Compute(forward("p1"), s, Options{SituationalStrength: StrengthPowerPlay})
	require.NoError(t, err)
	assert.Equal(t, 1, pp.Base.Goals)

	even, err := Compute(forward("p1"), s, Options{SituationalStrength: StrengthEven})
	require.NoError(t, err)
	assert.Equal(t, 1, even.Base.Goals)

	pk, err := Compute(forward("p1"), s, Options{SituationalStrength: StrengthPenaltyKill})
	require.NoError(t, err)
	assert.Zero(t, pk.Base.Goals)
	assert.Zero(t, pk.Base.GamesPlayed)
}

func TestEventStrength_FlipsForOpponent(t *testing.T) {
	e := model.Event{TeamID: teamB, Details: map[string]any{"strength": "power_play"}}
	assert.Equal(t, detailShortHanded, eventStrength(e, teamA))
	assert.Equal(t, detailPowerPlay, eventStrength(e, teamB))
	assert.Equal(t, detailEven, eventStrength(model.Event{TeamID: teamB}, teamA))
}

func TestCompute_VenueAndDateFilters(t *testing.T) {
	games := []model.Game{game(1, true, 1, 0), game(2, false, 1, 0), game(10, true, 1, 0)}
	var b eventBuilder
	for _, g := range games {
		b.add(g.ID, "p1", teamA, model.EventGoal, nil)
	}
	s := NewSeason(teamA, "2024-25", games, b.events, nil)

	home, err := Compute(forward("p1"), s, Options{HomeAwayOnly: VenueHome})
	require.NoError(t, err)
	assert.Equal(t, 2, home.Base.Goals)

	ranged, err := Compute(forward("p1"), s, Options{DateRange: &DateRange{End: seasonStart.AddDate(0, 0, 2)}})
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.Base.Goals)
}

func TestCompute_UnknownPosition(t *testing.T) {
	p := forward("p1")
	p.Position = "X"
	_, err := Compute(p, NewSeason(teamA, "", nil, nil, nil), Options{})
	require.ErrorIs(t, err, ErrUnknownPosition)
}

func TestCompute_Idempotent(t *testing.T) {
	g := game(1, true, 2, 1)
	var b eventBuilder
	b.add(g.ID, "p1", teamA, model.EventGoal, nil)
	b.add(g.ID, "p1", teamA, model.EventShot, nil)
	s := NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil)

	first, err := Compute(forward("p1"), s, Options{})
	require.NoError(t, err)
	second, err := Compute(forward("p1"), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildTeamStats(t *testing.T) {
	regLoss := game(2, false, 1, 3)
	otLoss := game(3, true, 2, 3)
	otLoss.EndedIn = model.EndedInOvertime
	games := []model.Game{game(1, true, 4, 1), regLoss, otLoss}

	var b eventBuilder
	b.repeat(5, "g01", "p1", teamA, model.EventShot)
	b.add("g01", "p1", teamA, model.EventGoal, map[string]any{"strength": "power_play"})
	b.add("g01", "p1", teamA, model.EventPenalty, nil)
	b.repeat(3, "g01", "opp", teamB, model.EventShot)
	b.add("g01", "opp", teamB, model.EventGoal, map[string]any{"strength": "power_play"})

	got := BuildTeamStats(NewSeason(teamA, "2024-25", games, b.events, nil))
	assert.Equal(t, 3, got.GamesPlayed)
	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 1, got.OvertimeLosses)
	assert.Equal(t, 3, got.Points)
	assert.Equal(t, 7, got.GoalsFor)
	assert.Equal(t, 7, got.GoalsAgainst)
	assert.Zero(t, got.GoalDifferential)
	assert.Equal(t, 6, got.ShotsFor)
	assert.Equal(t, 4, got.ShotsAgainst)
	assert.Equal(t, 1, got.PowerPlayGoals)
	assert.Equal(t, 1, got.PowerPlayGoalsAgainst)
	assert.Equal(t, 2, got.PenaltyMinutes)
	assert.InDelta(t, 50.0, *got.PointsPercentage, 1e-9)
	assert.InDelta(t, 75.0, *got.SavePercentage, 1e-9)
	assert.InDelta(t, 100.0/6, *got.ShootingPercentage, 1e-9)
}

func TestBuildTeamStats_ShotsMatchOpponent(t *testing.T) {
	g := game(1, true, 2, 0)
	var b eventBuilder
	b.repeat(10, g.ID, "p1", teamA, model.EventShot)
	b.repeat(2, g.ID, "p1", teamA, model.EventGoal)
	for range 3 {
		b.add(g.ID, "p1", teamA, model.EventShot, map[string]any{"on_goal": false})
	}

	a := BuildTeamStats(NewSeason(teamA, "2024-25", []model.Game{g}, b.events, nil))
	opp := BuildTeamStats(NewSeason(teamB, "2024-25", []model.Game{g}, b.events, nil))

	assert.Equal(t, 12, a.ShotsFor)
	assert.Equal(t, a.ShotsFor, opp.ShotsAgainst)
	assert.Equal(t, a.ShotsAgainst, opp.ShotsFor)
	require.NotNil(t, a.ShootingPercentage)
	require.NotNil(t, opp.SavePercentage)
	assert.InDelta(t, 100.0, *a.ShootingPercentage+*opp.SavePercentage, 1e-9)
}

func TestCompute_BackupGoalieWithoutAppearance(t *testing.T) {
	g := game(1, true, 3, 1)
	var b eventBuilder
	for range 20 {
		b.add(g.ID, "opp", teamB, model.EventShot, map[string]any{"saved_by": "g1"})
	}
	b.add(g.ID, "opp", teamB, model.EventGoal, map[string]any{"goalie_id": "g1"})
	lineups := []model.LineupEntry{
		{GameID: g.ID, PlayerID: "g1", TeamID: teamA, Starter: true},
		{GameID: g.ID, PlayerID: "g2", TeamID: teamA},
	}
	s := NewSeason(teamA, "2024-25", []model.Game{g}, b.events, lineups)

	starter, err := Compute(goalie("g1"), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, starter.Base.GamesPlayed)
	assert.Equal(t, 1, starter.Goalie.Wins)
	assert.Equal(t, regulationSeconds, starter.Goalie.TimeOnIceSeconds)

	backup, err := Compute(goalie("g2"), s, Options{})
	require.NoError(t, err)
	assert.Zero(t, backup.Base.GamesPlayed)
	assert.Zero(t, backup.Goalie.Wins)
	assert.Zero(t, backup.Goalie.TimeOnIceSeconds)
	assert.Nil(t, backup.Derived.GoalsAgainstAverage)

	// relieved in the third period
	lineups[1].TimeOnIceSeconds = 900
	s = NewSeason(teamA, "2024-25", []model.Game{g}, b.events, lineups)
	backup, err = Compute(goalie("g2"), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, backup.Base.GamesPlayed)
	assert.Equal(t, 900, backup.Goalie.TimeOnIceSeconds)
}
