package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/pkg/response"
)

type PlayerHandler struct {
	svc     service.PlayerService
	stats   service.StatsService
	timeout time.Duration
}

func NewPlayerHandler(svc service.PlayerService, statsSvc service.StatsService, timeout time.Duration) *PlayerHandler {
	return &PlayerHandler{svc: svc, stats: statsSvc, timeout: statsTimeout(timeout)}
}

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("/:id", h.getByID)
		g.GET("/:id/stats", h.getStats)
		g.GET("/:id/advanced", h.getAdvanced)
		g.GET("/:id/trends", h.getTrend)
	}
	// Nested listing: /api/v1/teams/:team_id/players
	r.Group("/teams").GET("/:team_id/players", h.listByTeam)
}

type createPlayerRequest struct {
	TeamID       string `json:"team_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	JerseyNumber int    `json:"jersey_number"`
	Position     string `json:"position"`
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), service.CreatePlayerInput{
		TeamID:       req.TeamID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		JerseyNumber: req.JerseyNumber,
		Position:     req.Position,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	player, err := h.svc.GetPlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) listByTeam(c *gin.Context) {
	q := newQueryParams(c)
	page := q.page()
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListPlayersByTeam(c.Request.Context(), c.Param("team_id"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// getStats handles requests for a player's season statistics.
func (h *PlayerHandler) getStats(c *gin.Context) {
	start := time.Now()
	q := newQueryParams(c)
	query := service.PlayerStatsQuery{
		PlayerID:    c.Param("id"),
		TeamID:      q.str("teamId"),
		Season:      q.str("season"),
		Options:     q.options(),
		Recalculate: parseBoolQuery(q.str("recalculate")),
	}
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.stats.GetPlayerStats(ctx, query)
	logOutcome(c, start, err, "player stats")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}

func (h *PlayerHandler) getAdvanced(c *gin.Context) {
	start := time.Now()
	q := newQueryParams(c)
	query := service.AdvancedQuery{
		PlayerID: c.Param("id"),
		TeamID:   q.str("teamId"),
		Season:   q.str("season"),
		Position: q.str("position"),
		Options:  q.options(),
	}
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.stats.CalculateAdvancedMetrics(ctx, query)
	logOutcome(c, start, err, "advanced metrics")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}

func (h *PlayerHandler) getTrend(c *gin.Context) {
	start := time.Now()
	q := newQueryParams(c)
	query := service.TrendQuery{
		PlayerID:  c.Param("id"),
		TeamID:    q.str("teamId"),
		Season:    q.str("season"),
		Stat:      q.str("stat"),
		GameCount: q.integer("gameCount"),
		Options:   q.options(),
	}
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.stats.GetTrend(ctx, query)
	logOutcome(c, start, err, "player trend")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}
