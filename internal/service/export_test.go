package service

import "time"

// SetClock pins the time stamped on computed stats.
func SetClock(s StatsService, now func() time.Time) { s.(*statsService).now = now }

var IsValidSeason = isValidSeason
