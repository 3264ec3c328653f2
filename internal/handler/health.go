package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is the minimal contract needed from a dependency to check readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler wires a health handler. cache may be nil.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness requires the event store. The cache is reported but never blocks
// readiness, since stats are computed without it.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	body := gin.H{"status": "ready"}
	if h.cache != nil {
		body["cache"] = "ok"
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			body["cache"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}
