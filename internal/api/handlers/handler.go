package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/organizer"
	ws "go-task-organizer/internal/websocket"
)

// Handler serves the organizer API.
type Handler struct {
	org    *organizer.Organizer
	ws     *ws.Manager
	logger *log.Logger
}

// New returns a Handler. manager may be nil when no change feed is served.
func New(org *organizer.Organizer, manager *ws.Manager, logger *log.Logger) *Handler {
	return &Handler{org: org, ws: manager, logger: logger}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dirty": h.org.Store().Dirty()})
}

// respondError maps organizer errors onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvariant):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
