package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/repository"
	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
	"github.com/maxviazov/hockey-stats-service/pkg/response"
)

// defaultStatsTimeout bounds a stats request when no timeout is configured.
const defaultStatsTimeout = 5 * time.Second

func statsTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultStatsTimeout
	}
	return d
}

// ratePlaces is the number of decimals rates are rounded to in responses.
const ratePlaces = 2

const dateLayout = "2006-01-02"

// parseBoolQuery is a helper to flexibly parse boolean-like query parameters.
func parseBoolQuery(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1"
}

// queryParams collects field errors while reading typed query parameters.
type queryParams struct {
	c     *gin.Context
	ferrs []service.FieldError
}

func newQueryParams(c *gin.Context) *queryParams { return &queryParams{c: c} }

func (q *queryParams) str(name string) string { return strings.TrimSpace(q.c.Query(name)) }

// integer returns 0 when the parameter is absent.
func (q *queryParams) integer(name string) int {
	v := q.optionalInt(name)
	if v == nil {
		return 0
	}
	return *v
}

// optionalInt returns nil when the parameter is absent, so an explicit 0 stays distinguishable.
func (q *queryParams) optionalInt(name string) *int {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.ferrs = append(q.ferrs, service.FieldError{Field: name, Message: "must be an integer"})
		return nil
	}
	return &n
}

// date accepts YYYY-MM-DD or RFC3339. A date-only upper bound covers the whole day.
func (q *queryParams) date(name string, endOfDay bool) time.Time {
	raw := q.str(name)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		q.ferrs = append(q.ferrs, service.FieldError{Field: name, Message: "must be YYYY-MM-DD or RFC3339"})
		return time.Time{}
	}
	return t
}

// options reads the shared situational filters.
func (q *queryParams) options() stats.Options {
	opts := stats.Options{
		SituationalStrength: strings.ToLower(q.str("strength")),
		HomeAwayOnly:        strings.ToLower(q.str("homeAway")),
	}
	start, end := q.date("start", false), q.date("end", true)
	if !start.IsZero() || !end.IsZero() {
		opts.DateRange = &stats.DateRange{Start: start, End: end}
	}
	return opts
}

func (q *queryParams) page() repository.Page {
	return repository.Page{Limit: q.integer("limit"), Offset: q.integer("offset")}
}

func (q *queryParams) err() error {
	if len(q.ferrs) == 0 {
		return nil
	}
	return service.NewInvalidInputError(q.ferrs)
}

// logOutcome records a stats request with path, query, duration and status.
func logOutcome(c *gin.Context, start time.Time, err error, msg string) {
	l := zerolog.Ctx(c.Request.Context()).With().
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Dur("duration", time.Since(start)).
		Logger()
	if err != nil {
		status, _ := response.MapError(err)
		evt := l.Warn()
		if status >= 500 {
			evt = l.Error()
		}
		evt.Err(err).Int("status", status).Msg(msg + " failed")
		return
	}
	l.Info().Int("status", http.StatusOK).Msg(msg)
}
