package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hockey-stats-service/internal/metrics"
	"github.com/maxviazov/hockey-stats-service/internal/service"
)

// APIV1Prefix is the base path for the public HTTP API.
const APIV1Prefix = "/api/v1"

// Deps lists what the HTTP layer needs. Cache may be nil when Redis is not configured.
type Deps struct {
	DB           Pinger
	Cache        Pinger
	Teams        service.TeamService
	Players      service.PlayerService
	Games        service.GameService
	Events       service.EventService
	Stats        service.StatsService
	Logger       zerolog.Logger
	OpenAPIPath  string
	StatsTimeout time.Duration // zero means the default
}

// Register mounts middleware and all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(gin.Recovery(), RequestID(d.Logger), AccessLog(), metrics.Middleware())

	h := NewHealthHandler(d.DB, d.Cache)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	RegisterDocs(r, d.OpenAPIPath)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewTeamHandler(d.Teams, d.Stats, d.StatsTimeout).Register(api)
		NewPlayerHandler(d.Players, d.Stats, d.StatsTimeout).Register(api)
		NewGameHandler(d.Games, d.Events).Register(api)
		NewStatsHandler(d.Stats, d.StatsTimeout).Register(api)
	}
}
