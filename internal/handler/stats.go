package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/internal/stats"
	"github.com/maxviazov/hockey-stats-service/pkg/response"
)

// StatsHandler serves the cross-player endpoints. Single-player and team stats
// hang off their resources.
type StatsHandler struct {
	svc     service.StatsService
	timeout time.Duration
}

func NewStatsHandler(svc service.StatsService, timeout time.Duration) *StatsHandler {
	return &StatsHandler{svc: svc, timeout: statsTimeout(timeout)}
}

func (h *StatsHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/stats")
	{
		g.GET("/leaderboard", h.leaderboard)
		g.POST("/compare", h.compare)
	}
}

func (h *StatsHandler) leaderboard(c *gin.Context) {
	start := time.Now()
	q := newQueryParams(c)
	query := service.LeaderboardQuery{
		TeamID:   q.str("teamId"),
		Season:   q.str("season"),
		Category: q.str("category"),
		Position: q.str("position"),
		Limit:    q.integer("limit"),
		MinGames: q.optionalInt("minGames"),
		Options:  q.options(),
	}
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.GetLeaderboard(ctx, query)
	logOutcome(c, start, err, "leaderboard")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}

type compareRequest struct {
	PlayerIDs  []string       `json:"playerIds"`
	TeamID     string         `json:"teamId"`
	Season     string         `json:"season"`
	Categories []string       `json:"categories"`
	Options    *stats.Options `json:"options"`
}

func (h *StatsHandler) compare(c *gin.Context) {
	start := time.Now()
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	query := service.ComparisonQuery{
		PlayerIDs:  req.PlayerIDs,
		TeamID:     req.TeamID,
		Season:     req.Season,
		Categories: req.Categories,
	}
	if req.Options != nil {
		query.Options = *req.Options
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.ComparePlayers(ctx, query)
	logOutcome(c, start, err, "player comparison")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}
