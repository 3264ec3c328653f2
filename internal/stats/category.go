package stats

import (
	"strings"
	"unicode"
)

// Category names a rankable stat. The string form is the canonical camelCase name
// used in JSON.
type Category string

// Base categories.
const (
	GamesPlayed         Category = "gamesPlayed"
	Goals               Category = "goals"
	Assists             Category = "assists"
	Points              Category = "points"
	Shots               Category = "shots"
	ShotsOnGoal         Category = "shotsOnGoal"
	PenaltyMinutes      Category = "penaltyMinutes"
	PlusMinus           Category = "plusMinus"
	Hits                Category = "hits"
	BlockedShots        Category = "blockedShots"
	Giveaways           Category = "giveaways"
	Takeaways           Category = "takeaways"
	FaceoffWins         Category = "faceoffWins"
	FaceoffLosses       Category = "faceoffLosses"
	PenaltyShotAttempts Category = "penaltyShotAttempts"
	PenaltyShotGoals    Category = "penaltyShotGoals"
)

// Skill categories.
const (
	TimeOnIce           Category = "timeOnIce"
	PowerPlayGoals      Category = "powerPlayGoals"
	PowerPlayAssists    Category = "powerPlayAssists"
	ShortHandedGoals    Category = "shortHandedGoals"
	ShortHandedAssists  Category = "shortHandedAssists"
	EvenStrengthGoals   Category = "evenStrengthGoals"
	EvenStrengthAssists Category = "evenStrengthAssists"
	GameWinningGoals    Category = "gameWinningGoals"
	OvertimeGoals       Category = "overtimeGoals"
	GamesStarted        Category = "gamesStarted"
	Saves               Category = "saves"
	ShotsAgainst        Category = "shotsAgainst"
	GoalsAgainst        Category = "goalsAgainst"
	Shutouts            Category = "shutouts"
	Wins                Category = "wins"
	Losses              Category = "losses"
	OvertimeLosses      Category = "overtimeLosses"
)

// Derived categories.
const (
	ShootingPercentage    Category = "shootingPercentage"
	PointsPerGame         Category = "pointsPerGame"
	GoalsPerGame          Category = "goalsPerGame"
	AssistsPerGame        Category = "assistsPerGame"
	PenaltyMinutesPerGame Category = "penaltyMinutesPerGame"
	FaceoffPercentage     Category = "faceoffPercentage"
	PowerPlayPoints       Category = "powerPlayPoints"
	ShortHandedPoints     Category = "shortHandedPoints"
	PointsPerSixty        Category = "pointsPerSixty"
	GiveawaysPerSixty     Category = "giveawaysPerSixty"
	SavePercentage        Category = "savePercentage"
	GoalsAgainstAverage   Category = "goalsAgainstAverage"
)

type accessor func(*PlayerStats) (float64, bool)

func baseStat(f func(*BaseStats) int) accessor {
	return func(p *PlayerStats) (float64, bool) { return float64(f(&p.Base)), true }
}

func skaterStat(f func(*SkaterStats) int) accessor {
	return func(p *PlayerStats) (float64, bool) {
		if p.Skater == nil {
			return 0, false
		}
		return float64(f(p.Skater)), true
	}
}

func goalieStat(f func(*GoalieStats) int) accessor {
	return func(p *PlayerStats) (float64, bool) {
		if p.Goalie == nil {
			return 0, false
		}
		return float64(f(p.Goalie)), true
	}
}

func derivedStat(f func(*DerivedStats) *float64) accessor {
	return func(p *PlayerStats) (float64, bool) {
		v := f(&p.Derived)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

// accessors is grouped base, skill, derived; resolution never needs a fallback
// between groups because canonical names are unique.
var accessors = map[Category]accessor{
	GamesPlayed:         baseStat(func(b *BaseStats) int { return b.GamesPlayed }),
	Goals:               baseStat(func(b *BaseStats) int { return b.Goals }),
	Assists:             baseStat(func(b *BaseStats) int { return b.Assists }),
	Points:              baseStat(func(b *BaseStats) int { return b.Points }),
	Shots:               baseStat(func(b *BaseStats) int { return b.Shots }),
	ShotsOnGoal:         baseStat(func(b *BaseStats) int { return b.ShotsOnGoal }),
	PenaltyMinutes:      baseStat(func(b *BaseStats) int { return b.PenaltyMinutes }),
	PlusMinus:           baseStat(func(b *BaseStats) int { return b.PlusMinus }),
	Hits:                baseStat(func(b *BaseStats) int { return b.Hits }),
	BlockedShots:        baseStat(func(b *BaseStats) int { return b.BlockedShots }),
	Giveaways:           baseStat(func(b *BaseStats) int { return b.Giveaways }),
	Takeaways:           baseStat(func(b *BaseStats) int { return b.Takeaways }),
	FaceoffWins:         baseStat(func(b *BaseStats) int { return b.FaceoffWins }),
	FaceoffLosses:       baseStat(func(b *BaseStats) int { return b.FaceoffLosses }),
	PenaltyShotAttempts: baseStat(func(b *BaseStats) int { return b.PenaltyShotAttempts }),
	PenaltyShotGoals:    baseStat(func(b *BaseStats) int { return b.PenaltyShotGoals }),

	TimeOnIce: func(p *PlayerStats) (float64, bool) {
		switch {
		case p.Skater != nil:
			return float64(p.Skater.TimeOnIceSeconds), true
		case p.Goalie != nil:
			return float64(p.Goalie.TimeOnIceSeconds), true
		}
		return 0, false
	},
	PowerPlayGoals:      skaterStat(func(s *SkaterStats) int { return s.PowerPlayGoals }),
	PowerPlayAssists:    skaterStat(func(s *SkaterStats) int { return s.PowerPlayAssists }),
	ShortHandedGoals:    skaterStat(func(s *SkaterStats) int { return s.ShortHandedGoals }),
	ShortHandedAssists:  skaterStat(func(s *SkaterStats) int { return s.ShortHandedAssists }),
	EvenStrengthGoals:   skaterStat(func(s *SkaterStats) int { return s.EvenStrengthGoals }),
	EvenStrengthAssists: skaterStat(func(s *SkaterStats) int { return s.EvenStrengthAssists }),
	GameWinningGoals:    skaterStat(func(s *SkaterStats) int { return s.GameWinningGoals }),
	OvertimeGoals:       skaterStat(func(s *SkaterStats) int { return s.OvertimeGoals }),
	GamesStarted:        goalieStat(func(g *GoalieStats) int { return g.GamesStarted }),
	Saves:               goalieStat(func(g *GoalieStats) int { return g.Saves }),
	ShotsAgainst:        goalieStat(func(g *GoalieStats) int { return g.ShotsAgainst }),
	GoalsAgainst:        goalieStat(func(g *GoalieStats) int { return g.GoalsAgainst }),
	Shutouts:            goalieStat(func(g *GoalieStats) int { return g.Shutouts }),
	Wins:                goalieStat(func(g *GoalieStats) int { return g.Wins }),
	Losses:              goalieStat(func(g *GoalieStats) int { return g.Losses }),
	OvertimeLosses:      goalieStat(func(g *GoalieStats) int { return g.OvertimeLosses }),

	ShootingPercentage:    derivedStat(func(d *DerivedStats) *float64 { return d.ShootingPercentage }),
	PointsPerGame:         derivedStat(func(d *DerivedStats) *float64 { return d.PointsPerGame }),
	GoalsPerGame:          derivedStat(func(d *DerivedStats) *float64 { return d.GoalsPerGame }),
	AssistsPerGame:        derivedStat(func(d *DerivedStats) *float64 { return d.AssistsPerGame }),
	PenaltyMinutesPerGame: derivedStat(func(d *DerivedStats) *float64 { return d.PenaltyMinutesPerGame }),
	FaceoffPercentage:     derivedStat(func(d *DerivedStats) *float64 { return d.FaceoffPercentage }),
	PowerPlayPoints:       derivedStat(func(d *DerivedStats) *float64 { return d.PowerPlayPoints }),
	ShortHandedPoints:     derivedStat(func(d *DerivedStats) *float64 { return d.ShortHandedPoints }),
	PointsPerSixty:        derivedStat(func(d *DerivedStats) *float64 { return d.PointsPerSixty }),
	GiveawaysPerSixty:     derivedStat(func(d *DerivedStats) *float64 { return d.GiveawaysPerSixty }),
	SavePercentage:        derivedStat(func(d *DerivedStats) *float64 { return d.SavePercentage }),
	GoalsAgainstAverage:   derivedStat(func(d *DerivedStats) *float64 { return d.GoalsAgainstAverage }),
}

// lowerIsBetter lists the categories ranked ascending.
var lowerIsBetter = map[Category]bool{
	GoalsAgainstAverage:   true,
	PenaltyMinutes:        true,
	PenaltyMinutesPerGame: true,
	Giveaways:             true,
	GiveawaysPerSixty:     true,
}

// shorthand aliases on top of the generated snake_case ones.
var extraAliases = map[string]Category{
	"games":        GamesPlayed,
	"gp":           GamesPlayed,
	"g":            Goals,
	"a":            Assists,
	"pts":          Points,
	"sog":          ShotsOnGoal,
	"pim":          PenaltyMinutes,
	"pim_per_game": PenaltyMinutesPerGame,
	"plus_minus":   PlusMinus,
	"+/-":          PlusMinus,
	"toi":          TimeOnIce,
	"time_on_ice":  TimeOnIce,
	"ppp":          PowerPlayPoints,
	"shp":          ShortHandedPoints,
	"gwg":          GameWinningGoals,
	"otl":          OvertimeLosses,
	"ot_losses":    OvertimeLosses,
	"gaa":          GoalsAgainstAverage,
	"sv_pct":       SavePercentage,
	"save_pct":     SavePercentage,
	"shooting_pct": ShootingPercentage,
	"sh_pct":       ShootingPercentage,
	"fo_pct":       FaceoffPercentage,
	"faceoff_pct":  FaceoffPercentage,
}

var aliases = buildAliases()

func buildAliases() map[string]Category {
	out := make(map[string]Category, len(accessors)*2+len(extraAliases))
	for c := range accessors {
		out[strings.ToLower(string(c))] = c
		out[toSnake(string(c))] = c
	}
	for k, v := range extraAliases {
		out[k] = v
	}
	return out
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveCategory maps a canonical name or alias (snake_case, shorthand, any case)
// to its category.
func ResolveCategory(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	if _, ok := accessors[Category(name)]; ok {
		return Category(name), true
	}
	c, ok := aliases[strings.ToLower(name)]
	return c, ok
}

// LowerIsBetter reports whether smaller values rank higher.
func (c Category) LowerIsBetter() bool { return lowerIsBetter[c] }

// Value returns the player's value for c, or false when it does not apply.
func (p *PlayerStats) Value(c Category) (float64, bool) {
	acc, ok := accessors[c]
	if !ok {
		return 0, false
	}
	return acc(p)
}

// better reports whether a ranks ahead of b for c.
func (c Category) better(a, b float64) bool {
	if c.LowerIsBetter() {
		return a < b
	}
	return a > b
}
