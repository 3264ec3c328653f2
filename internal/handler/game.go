package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hockey-stats-service/internal/model"
	"github.com/maxviazov/hockey-stats-service/internal/service"
	"github.com/maxviazov/hockey-stats-service/pkg/response"
)

type GameHandler struct {
	svc    service.GameService
	events service.EventService
}

func NewGameHandler(svc service.GameService, events service.EventService) *GameHandler {
	return &GameHandler{svc: svc, events: events}
}

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("/:id", h.getByID)
		g.GET("", h.list)
		g.PUT("/:id/result", h.recordResult)
		g.POST("/:id/events", h.recordEvent)
		g.GET("/:id/events", h.listEvents)
		g.PUT("/:id/lineups", h.upsertLineup)
	}
}

type createGameRequest struct {
	Season   string `json:"season"`
	Date     string `json:"date"` // RFC3339 or YYYY-MM-DD
	HomeTeam string `json:"home_team_id"`
	AwayTeam string `json:"away_team_id"`
	Status   string `json:"status"`
}

func parseGameDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *GameHandler) create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	date, err := parseGameDate(req.Date)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "date", Message: "must be YYYY-MM-DD or RFC3339"}}))
		return
	}
	game, err := h.svc.CreateGame(c.Request.Context(), req.Season, date, req.HomeTeam, req.AwayTeam, req.Status)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	game, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) list(c *gin.Context) {
	q := newQueryParams(c)
	page := q.page()
	if err := q.err(); err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListGames(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

type recordResultRequest struct {
	Status    string `json:"status"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	EndedIn   string `json:"ended_in"`
}

func (h *GameHandler) recordResult(c *gin.Context) {
	var req recordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.RecordResult(c.Request.Context(), c.Param("id"), service.GameResult{
		Status:    req.Status,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
		EndedIn:   req.EndedIn,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

type recordEventRequest struct {
	PlayerID     string         `json:"player_id"`
	TeamID       string         `json:"team_id"`
	EventType    string         `json:"event_type"`
	Period       int            `json:"period"`
	TimeInPeriod string         `json:"time_in_period"`
	Details      map[string]any `json:"details"`
}

func (h *GameHandler) recordEvent(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	event, err := h.events.RecordEvent(c.Request.Context(), model.Event{
		GameID:       c.Param("id"),
		PlayerID:     req.PlayerID,
		TeamID:       req.TeamID,
		EventType:    req.EventType,
		Period:       req.Period,
		TimeInPeriod: req.TimeInPeriod,
		Details:      req.Details,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, event)
}

func (h *GameHandler) listEvents(c *gin.Context) {
	events, err := h.events.ListEventsByGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, events)
}

type upsertLineupRequest struct {
	PlayerID         string `json:"player_id"`
	TimeOnIceSeconds int    `json:"time_on_ice_seconds"`
	Starter          bool   `json:"starter"`
}

func (h *GameHandler) upsertLineup(c *gin.Context) {
	var req upsertLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	entry, err := h.events.UpsertLineup(c.Request.Context(), model.LineupEntry{
		GameID:           c.Param("id"),
		PlayerID:         req.PlayerID,
		TimeOnIceSeconds: req.TimeOnIceSeconds,
		Starter:          req.Starter,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, entry)
}
