package stats

import (
	"time"

	"github.com/maxviazov/hockey-stats-service/internal/model"
)

// Situational strength filters accepted in Options.
const (
	StrengthAll         = "all"
	StrengthEven        = "even"
	StrengthPowerPlay   = "powerplay"
	StrengthPenaltyKill = "penalty_kill"
)

// Venue filters accepted in Options.
const (
	VenueHome = "home"
	VenueAway = "away"
)

// Strength values stored in event details, from the acting team's perspective.
const (
	detailEven        = "even"
	detailPowerPlay   = "power_play"
	detailShortHanded = "short_handed"
)

// DateRange bounds games by date. Zero values leave that side open; End is inclusive.
type DateRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// Options narrow the event set a computation sees.
type Options struct {
	SituationalStrength string     `json:"situationalStrength,omitempty"`
	HomeAwayOnly        string     `json:"homeAwayOnly,omitempty"`
	DateRange           *DateRange `json:"dateRange,omitempty"`
}

// IsValidStrength reports whether s is an accepted situational strength filter.
func IsValidStrength(s string) bool {
	switch s {
	case "", StrengthAll, StrengthEven, StrengthPowerPlay, StrengthPenaltyKill:
		return true
	}
	return false
}

// IsValidVenue reports whether s is an accepted home/away filter.
func IsValidVenue(s string) bool {
	return s == "" || s == VenueHome || s == VenueAway
}

// matchesGame applies the venue and date filters.
func (o Options) matchesGame(g model.Game, teamID string) bool {
	switch o.HomeAwayOnly {
	case VenueHome:
		if !g.IsHome(teamID) {
			return false
		}
	case VenueAway:
		if g.IsHome(teamID) {
			return false
		}
	}
	if o.DateRange != nil {
		if !o.DateRange.Start.IsZero() && g.Date.Before(o.DateRange.Start) {
			return false
		}
		if !o.DateRange.End.IsZero() && g.Date.After(o.DateRange.End) {
			return false
		}
	}
	return true
}

// matchesEvent applies the strength filter from teamID's perspective.
func (o Options) matchesEvent(e model.Event, teamID string) bool {
	want := strengthDetail(o.SituationalStrength)
	if want == "" {
		return true
	}
	return eventStrength(e, teamID) == want
}

func strengthDetail(filter string) string {
	switch filter {
	case StrengthEven:
		return detailEven
	case StrengthPowerPlay:
		return detailPowerPlay
	case StrengthPenaltyKill:
		return detailShortHanded
	}
	return ""
}

// eventStrength normalizes the recorded strength and flips it when the event was
// recorded by the opposing team. Missing or unknown values count as even.
func eventStrength(e model.Event, teamID string) string {
	var s string
	switch detailString(e.Details, "strength") {
	case detailPowerPlay, "powerplay", "pp":
		s = detailPowerPlay
	case detailShortHanded, "shorthanded", "penalty_kill", "sh":
		s = detailShortHanded
	default:
		return detailEven
	}
	if teamID != "" && e.TeamID != "" && e.TeamID != teamID {
		if s == detailPowerPlay {
			return detailShortHanded
		}
		return detailPowerPlay
	}
	return s
}
