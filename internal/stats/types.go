// Package stats turns raw play-by-play events into player and team statistics.
//
// Everything here is a pure function of a Season (completed games, events and lineup
// entries of one team) plus filter Options. Nothing is cached or persisted by this
// package; callers load the data and decide on caching.
package stats

import (
	"time"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// BaseStats holds counting stats shared by every position.
type BaseStats struct {
	GamesPlayed         int `json:"gamesPlayed"`
	Goals               int `json:"goals"`
	Assists             int `json:"assists"`
	Points              int `json:"points"`
	Shots               int `json:"shots"`
	ShotsOnGoal         int `json:"shotsOnGoal"`
	PenaltyMinutes      int `json:"penaltyMinutes"`
	PlusMinus           int `json:"plusMinus"`
	Hits                int `json:"hits"`
	BlockedShots        int `json:"blockedShots"`
	Giveaways           int `json:"giveaways"`
	Takeaways           int `json:"takeaways"`
	FaceoffWins         int `json:"faceoffWins"`
	FaceoffLosses       int `json:"faceoffLosses"`
	PenaltyShotAttempts int `json:"penaltyShotAttempts"`
	PenaltyShotGoals    int `json:"penaltyShotGoals"`
}

// SkaterStats is the skill variant for forwards and defensemen.
type SkaterStats struct {
	TimeOnIceSeconds    int `json:"timeOnIceSeconds"`
	PowerPlayGoals      int `json:"powerPlayGoals"`
	PowerPlayAssists    int `json:"powerPlayAssists"`
	ShortHandedGoals    int `json:"shortHandedGoals"`
	ShortHandedAssists  int `json:"shortHandedAssists"`
	EvenStrengthGoals   int `json:"evenStrengthGoals"`
	EvenStrengthAssists int `json:"evenStrengthAssists"`
	GameWinningGoals    int `json:"gameWinningGoals"`
	OvertimeGoals       int `json:"overtimeGoals"`
}

// GoalieStats is the skill variant for goalies.
type GoalieStats struct {
	GamesStarted     int `json:"gamesStarted"`
	Saves            int `json:"saves"`
	ShotsAgainst     int `json:"shotsAgainst"`
	GoalsAgainst     int `json:"goalsAgainst"`
	Shutouts         int `json:"shutouts"`
	Wins             int `json:"wins"`
	Losses           int `json:"losses"`
	OvertimeLosses   int `json:"overtimeLosses"`
	TimeOnIceSeconds int `json:"timeOnIceSeconds"`
}

// DerivedStats holds rates and percentages. A nil field means the metric does not
// apply or its denominator is zero; it is never reported as 0 or NaN.
// PowerPlayPoints and ShortHandedPoints are the exception: they are counts with no
// denominator, set for every skater (0 included) and nil for goalies.
type DerivedStats struct {
	ShootingPercentage    *float64 `json:"shootingPercentage,omitempty"`
	PointsPerGame         *float64 `json:"pointsPerGame,omitempty"`
	GoalsPerGame          *float64 `json:"goalsPerGame,omitempty"`
	AssistsPerGame        *float64 `json:"assistsPerGame,omitempty"`
	PenaltyMinutesPerGame *float64 `json:"penaltyMinutesPerGame,omitempty"`
	FaceoffPercentage     *float64 `json:"faceoffPercentage,omitempty"`
	PowerPlayPoints       *float64 `json:"powerPlayPoints,omitempty"`   // count
	ShortHandedPoints     *float64 `json:"shortHandedPoints,omitempty"` // count
	PointsPerSixty        *float64 `json:"pointsPerSixty,omitempty"`
	GiveawaysPerSixty     *float64 `json:"giveawaysPerSixty,omitempty"`
	SavePercentage        *float64 `json:"savePercentage,omitempty"`
	GoalsAgainstAverage   *float64 `json:"goalsAgainstAverage,omitempty"`
}

// PlayerStats is the complete stat picture for one player in one team-season.
// Exactly one of Skater and Goalie is set.
type PlayerStats struct {
	PlayerID     string       `json:"playerId"`
	PlayerName   string       `json:"playerName"`
	JerseyNumber int          `json:"jerseyNumber"`
	Position     string       `json:"position"`
	TeamID       string       `json:"teamId"`
	Season       string       `json:"season"`
	Base         BaseStats    `json:"base"`
	Skater       *SkaterStats `json:"skater,omitempty"`
	Goalie       *GoalieStats `json:"goalie,omitempty"`
	Derived      DerivedStats `json:"derived"`
	ComputedAt   time.Time    `json:"computedAt,omitzero"`
}

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	PlayerID     string  `json:"playerId"`
	PlayerName   string  `json:"playerName"`
	JerseyNumber int     `json:"jerseyNumber"`
	Position     string  `json:"position"`
	Value        float64 `json:"value"`
	GamesPlayed  int     `json:"gamesPlayed"`
	Goals        int     `json:"goals"`
	Assists      int     `json:"assists"`
	Points       int     `json:"points"`
}

// Leaderboard is the ordered result for one category.
type Leaderboard struct {
	TeamID   string             `json:"teamId"`
	Season   string             `json:"season"`
	Category Category           `json:"category"`
	Position string             `json:"position"`
	MinGames int                `json:"minGames"`
	Leaders  []LeaderboardEntry `json:"leaders"`
}

// ComparisonEntry holds one player's values and in-group ranks. Categories that
// do not apply to the player are absent from both maps.
type ComparisonEntry struct {
	PlayerID     string               `json:"playerId"`
	PlayerName   string               `json:"playerName"`
	JerseyNumber int                  `json:"jerseyNumber"`
	Position     string               `json:"position"`
	GamesPlayed  int                  `json:"gamesPlayed"`
	Values       map[Category]float64 `json:"values"`
	Ranks        map[Category]int     `json:"ranks"`
}

// Comparison is the result of comparing a small group of players.
type Comparison struct {
	TeamID       string               `json:"teamId"`
	Season       string               `json:"season"`
	Categories   []Category           `json:"categories"`
	Players      []ComparisonEntry    `json:"players"`
	TeamAverages map[Category]float64 `json:"teamAverages"`
}

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// TrendPoint is the value of a stat in a single game.
type TrendPoint struct {
	GameID         string    `json:"gameId"`
	Date           time.Time `json:"date"`
	Value          float64   `json:"value"`
	Opponent       string    `json:"opponent"`
	RunningAverage float64   `json:"runningAverage"`
}

// Trend is the per-game series of a stat with its least-squares direction.
// Games are in chronological order.
type Trend struct {
	PlayerID   string       `json:"playerId"`
	Stat       Category     `json:"stat"`
	Games      []TrendPoint `json:"games"`
	Average    float64      `json:"average"`
	Slope      float64      `json:"slope"`
	Direction  string       `json:"trend"`
	Percentage float64      `json:"percentage"`
}

// TeamStats summarizes a team's completed games in a season.
type TeamStats struct {
	TeamID                string   `json:"teamId"`
	Season                string   `json:"season"`
	GamesPlayed           int      `json:"gamesPlayed"`
	Wins                  int      `json:"wins"`
	Losses                int      `json:"losses"`
	OvertimeLosses        int      `json:"overtimeLosses"`
	Points                int      `json:"points"`
	GoalsFor              int      `json:"goalsFor"`
	GoalsAgainst          int      `json:"goalsAgainst"`
	GoalDifferential      int      `json:"goalDifferential"`
	ShotsFor              int      `json:"shotsFor"`
	ShotsAgainst          int      `json:"shotsAgainst"`
	PenaltyMinutes        int      `json:"penaltyMinutes"`
	PowerPlayGoals        int      `json:"powerPlayGoals"`
	ShortHandedGoals      int      `json:"shortHandedGoals"`
	PowerPlayGoalsAgainst int      `json:"powerPlayGoalsAgainst"`
	PointsPercentage      *float64 `json:"pointsPercentage,omitempty"`
	GoalsForPerGame       *float64 `json:"goalsForPerGame,omitempty"`
	GoalsAgainstPerGame   *float64 `json:"goalsAgainstPerGame,omitempty"`
	ShootingPercentage    *float64 `json:"shootingPercentage,omitempty"`
	SavePercentage        *float64 `json:"savePercentage,omitempty"`
}

// Split is a reduced stat line for one situation (strength state or venue).
type Split struct {
	GamesPlayed        int      `json:"gamesPlayed"`
	Goals              int      `json:"goals"`
	Assists            int      `json:"assists"`
	Points             int      `json:"points"`
	Shots              int      `json:"shots"`
	ShootingPercentage *float64 `json:"shootingPercentage,omitempty"`
	PointsPerGame      *float64 `json:"pointsPerGame,omitempty"`
	Saves              *int     `json:"saves,omitempty"`
	ShotsAgainst       *int     `json:"shotsAgainst,omitempty"`
	SavePercentage     *float64 `json:"savePercentage,omitempty"`
}

// AdvancedMetrics extends a player's stats with situational splits.
type AdvancedMetrics struct {
	Stats                 PlayerStats      `json:"stats"`
	Options               Options          `json:"options"`
	StrengthSplits        map[string]Split `json:"strengthSplits"`
	VenueSplits           map[string]Split `json:"venueSplits"`
	TakeawayGiveawayRatio *float64         `json:"takeawayGiveawayRatio,omitempty"`
	HitsPerGame           *float64         `json:"hitsPerGame,omitempty"`
	BlockedShotsPerGame   *float64         `json:"blockedShotsPerGame,omitempty"`
}

// newPlayerStats seeds the identity fields from the roster record.
func newPlayerStats(p model.Player, s *Season) PlayerStats {
	return PlayerStats{
		PlayerID:     p.ID,
		PlayerName:   p.FullName(),
		JerseyNumber: p.JerseyNumber,
		Position:     p.Position,
		TeamID:       s.TeamID,
		Season:       s.Name,
	}
}
