package service

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
	maxPeriod        = 5
	maxJersey        = 99
)

var seasonRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// isValidSeason accepts YYYY-YY where the second year follows the first (2024-25).
func isValidSeason(season string) bool {
	if !seasonRe.MatchString(season) {
		return false
	}
	start, _ := strconv.Atoi(season[:4])
	end, _ := strconv.Atoi(season[5:])
	return (start+1)%100 == end
}

func isValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func normalizePosition(pos string) string {
	return strings.ToUpper(strings.TrimSpace(pos))
}

func isValidPosition(pos string) bool {
	switch pos {
	case model.PositionForward, model.PositionDefense, model.PositionGoalie:
		return true
	default:
		return false
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isValidGameStatus(status string) bool {
	switch status {
	case model.GameStatusScheduled, model.GameStatusInProgress, model.GameStatusCompleted:
		return true
	default:
		return false
	}
}

func isValidEndedIn(v string) bool {
	switch v {
	case "", model.EndedInRegulation, model.EndedInOvertime, model.EndedInShootout:
		return true
	default:
		return false
	}
}

func isValidEventType(t string) bool {
	return slices.Contains(model.EventTypes, t)
}

// validateID appends a field error when id is not a UUID.
func validateID(ferrs []FieldError, field, id string) []FieldError {
	if strings.TrimSpace(id) == "" {
		return append(ferrs, FieldError{Field: field, Message: "must not be empty"})
	}
	if !isValidID(id) {
		return append(ferrs, FieldError{Field: field, Message: "must be a UUID"})
	}
	return ferrs
}

// validateSeason checks the season every stats query is scoped to.
func validateSeason(ferrs []FieldError, season string) []FieldError {
	if strings.TrimSpace(season) == "" {
		return append(ferrs, FieldError{Field: "season", Message: "is required"})
	}
	if !isValidSeason(season) {
		return append(ferrs, FieldError{Field: "season", Message: "must be in YYYY-YY format"})
	}
	return ferrs
}

// validateOptions checks the computation filters shared by every stats query.
func validateOptions(ferrs []FieldError, o stats.Options) []FieldError {
	if !stats.IsValidStrength(o.SituationalStrength) {
		ferrs = append(ferrs, FieldError{Field: "strength", Message: "must be one of all|even|powerplay|penalty_kill"})
	}
	if !stats.IsValidVenue(o.HomeAwayOnly) {
		ferrs = append(ferrs, FieldError{Field: "homeAway", Message: "must be home or away"})
	}
	if r := o.DateRange; r != nil && !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		ferrs = append(ferrs, FieldError{Field: "end", Message: "must not be before start"})
	}
	return ferrs
}
