// Package model contains domain entities shared across layers, with the few
// helpers that only read their own fields.
package model

import "time"

// Player positions. F and D share the skater stat shape.
const (
	PositionForward = "F"
	PositionDefense = "D"
	PositionGoalie  = "G"
)

// Game statuses.
const (
	GameStatusScheduled  = "scheduled"
	GameStatusInProgress = "in_progress"
	GameStatusCompleted  = "completed"
)

// How a completed game was decided.
const (
	EndedInRegulation = "regulation"
	EndedInOvertime   = "overtime"
	EndedInShootout   = "shootout"
)

// Team represents a hockey team.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Player represents a rostered athlete. Position is fixed for the season.
type Player struct {
	ID           string    `json:"id"`
	TeamID       string    `json:"teamId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	JerseyNumber int       `json:"jerseyNumber"`
	Position     string    `json:"position"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (p Player) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsGoalie reports whether the player uses the goalie stat shape.
func (p Player) IsGoalie() bool { return p.Position == PositionGoalie }

// Game represents a scheduled, live or completed match.
// Team names are populated on read queries only.
type Game struct {
	ID           string    `json:"id"`
	Season       string    `json:"season"`
	Date         time.Time `json:"date"`
	HomeTeamID   string    `json:"homeTeamId"`
	AwayTeamID   string    `json:"awayTeamId"`
	HomeTeamName string    `json:"homeTeamName,omitempty"`
	AwayTeamName string    `json:"awayTeamName,omitempty"`
	Status       string    `json:"status"`
	HomeScore    int       `json:"homeScore"`
	AwayScore    int       `json:"awayScore"`
	EndedIn      string    `json:"endedIn,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsHome reports whether teamID is the home side.
func (g Game) IsHome(teamID string) bool { return g.HomeTeamID == teamID }

// Involves reports whether teamID plays in the game.
func (g Game) Involves(teamID string) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// OpponentOf returns the other team's id and name.
func (g Game) OpponentOf(teamID string) (id, name string) {
	if g.IsHome(teamID) {
		return g.AwayTeamID, g.AwayTeamName
	}
	return g.HomeTeamID, g.HomeTeamName
}

// ScoreFor returns goals for and against from teamID's perspective.
func (g Game) ScoreFor(teamID string) (goalsFor, goalsAgainst int) {
	if g.IsHome(teamID) {
		return g.HomeScore, g.AwayScore
	}
	return g.AwayScore, g.HomeScore
}

// Event types recorded during live entry.
const (
	EventGoal        = "goal"
	EventAssist      = "assist"
	EventShot        = "shot"
	EventShotBlocked = "shot_blocked"
	EventHit         = "hit"
	EventTakeaway    = "takeaway"
	EventGiveaway    = "giveaway"
	EventFaceoffWin  = "faceoff_win"
	EventFaceoffLoss = "faceoff_loss"
	EventPenalty     = "penalty"
	EventPenaltyShot = "penalty_shot"
	EventSave        = "save"
	EventGoalAgainst = "goal_against"
)

// EventTypes lists every accepted event type.
var EventTypes = []string{
	EventGoal, EventAssist, EventShot, EventShotBlocked, EventHit, EventTakeaway, EventGiveaway,
	EventFaceoffWin, EventFaceoffLoss, EventPenalty, EventPenaltyShot, EventSave, EventGoalAgainst,
}

// Event is an immutable play-by-play record credited to one player.
// Details carries type-specific fields (strength, penalty_minutes, saved_by, goalie_id, ...).
type Event struct {
	ID           string         `json:"id"`
	GameID       string         `json:"gameId"`
	PlayerID     string         `json:"playerId"`
	TeamID       string         `json:"teamId"`
	EventType    string         `json:"eventType"`
	Period       int            `json:"period"`
	TimeInPeriod string         `json:"timeInPeriod"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// LineupEntry records that a player dressed for a game, even without events.
type LineupEntry struct {
	GameID           string    `json:"gameId"`
	PlayerID         string    `json:"playerId"`
	TeamID           string    `json:"teamId"`
	TimeOnIceSeconds int       `json:"timeOnIceSeconds"`
	Starter          bool      `json:"starter"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
