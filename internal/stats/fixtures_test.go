package stats

import (
	"fmt"
	"time"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

const (
	teamA = "team-a"
	teamB = "team-b"
)

var seasonStart = time.Date(2024, time.October, 1, 19, 0, 0, 0, time.UTC)

// game builds a completed game on day n of the season with teamA at home when home is true.
func game(n int, home bool, gf, ga int) model.Game {
	g := model.Game{
		ID:           fmt.Sprintf("g%02d", n),
		Season:       "2024-25",
		Date:         seasonStart.AddDate(0, 0, n),
		Status:       model.GameStatusCompleted,
		EndedIn:      model.EndedInRegulation,
		HomeTeamName: "Home",
		AwayTeamName: "Away",
	}
	if home {
		g.HomeTeamID, g.AwayTeamID = teamA, teamB
		g.HomeScore, g.AwayScore = gf, ga
		g.AwayTeamName = "Rivals"
	} else {
		g.HomeTeamID, g.AwayTeamID = teamB, teamA
		g.HomeScore, g.AwayScore = ga, gf
		g.HomeTeamName = "Rivals"
	}
	return g
}

type eventBuilder struct {
	seq    int
	events []model.Event
}

func (b *eventBuilder) add(gameID, playerID, teamID, typ string, details map[string]any) {
	b.seq++
	b.events = append(b.events, model.Event{
		ID:        fmt.Sprintf("e%03d", b.seq),
		GameID:    gameID,
		PlayerID:  playerID,
		TeamID:    teamID,
		EventType: typ,
		Period:    1,
		Details:   details,
	})
}

func (b *eventBuilder) repeat(n int, gameID, playerID, teamID, typ string) {
	for range n {
		b.add(gameID, playerID, teamID, typ, nil)
	}
}

func forward(id string) model.Player {
	return model.Player{ID: id, TeamID: teamA, FirstName: "Skater", LastName: id, JerseyNumber: 10, Position: model.PositionForward, Active: true}
}

func goalie(id string) model.Player {
	return model.Player{ID: id, TeamID: teamA, FirstName: "Goalie", LastName: id, JerseyNumber: 30, Position: model.PositionGoalie, Active: true}
}
