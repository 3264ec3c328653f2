// Package cache stores computed stats so repeated reads skip the event fold.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key identifies one cached computation. Entries are grouped by team and season
// so recording an event can drop everything it may affect.
type Key struct {
	Kind    string
	TeamID  string
	Season  string
	Subject string
	Options any
}

// String renders the storage key. Options are hashed so equal filters share an entry.
func (k Key) String() string {
	return fmt.Sprintf("stats:%s:%s:%s:%s:%s", k.Kind, k.TeamID, seasonPart(k.Season), k.Subject, optionsHash(k.Options))
}

func indexKey(teamID, season string) string {
	return fmt.Sprintf("stats:idx:%s:%s", teamID, seasonPart(season))
}

func seasonPart(season string) string {
	if season == "" {
		return "all"
	}
	return season
}

func optionsHash(opts any) string {
	if opts == nil {
		return "none"
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return "none"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:6])
}

// StatsCache is a best-effort JSON cache. A miss is (false, nil).
type StatsCache interface {
	Get(ctx context.Context, key Key, dest any) (bool, error)
	Set(ctx context.Context, key Key, value any) error
	// Invalidate drops every entry of the team-season, and the all-seasons entries of the team.
	Invalidate(ctx context.Context, teamID, season string) error
}

// Noop never stores anything. It is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, Key, any) (bool, error)      { return false, nil }
func (Noop) Set(context.Context, Key, any) error              { return nil }
func (Noop) Invalidate(context.Context, string, string) error { return nil }

var _ StatsCache = Noop{}
