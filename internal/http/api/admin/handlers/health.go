package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/db"
)

const healthTimeout = 3 * time.Second

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	handles *db.Handles
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(handles *db.Handles) *HealthHandler {
	return &HealthHandler{handles: handles}
}

// Healthz checks connectivity of both datastores.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if errPing := h.handles.Ping(ctx); errPing != nil {
		log.WithError(errPing).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
