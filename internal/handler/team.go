package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/pkg/response"
)

type TeamHandler struct {
	svc     service.TeamService
	stats   service.StatsService
	timeout time.Duration
}

func NewTeamHandler(svc service.TeamService, statsSvc service.StatsService, timeout time.Duration) *TeamHandler {
	return &TeamHandler{svc: svc, stats: statsSvc, timeout: statsTimeout(timeout)}
}

func (h *TeamHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/teams")
	{
		g.POST("", h.create)
		// team_id is shared with nested routes registered by other handlers.
		g.GET("/:team_id", h.getByID)
		g.GET("", h.list)
		g.GET("/:team_id/stats", h.getStats)
	}
}

type createTeamRequest struct {
	Name string `json:"name"`
}

func (h *TeamHandler) create(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	team, err := h.svc.CreateTeam(c.Request.Context(), req.Name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, team)
}

func (h *TeamHandler) getByID(c *gin.Context) {
	team, err := h.svc.GetTeam(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, team)
}

func (h *TeamHandler) list(c *gin.Context) {
	q := newQueryParams(c)
	page := q.page()
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListTeams(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// getStats serves the season summary of one team.
func (h *TeamHandler) getStats(c *gin.Context) {
	start := time.Now()
	q := newQueryParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.stats.GetTeamStats(ctx, service.TeamStatsQuery{
		TeamID:      c.Param("team_id"),
		Season:      q.str("season"),
		Recalculate: parseBoolQuery(q.str("recalculate")),
	})
	logOutcome(c, start, err, "team stats")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res.Rounded(ratePlaces))
}
