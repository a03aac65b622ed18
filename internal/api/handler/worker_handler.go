package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/api/dto"
	"github.com/faenaapp/faena-backend/internal/workers"
)

// WorkerHandler handles worker-profile HTTP requests
type WorkerHandler struct {
	logger  *slog.Logger
	workers *workers.Service
}

// NewWorkerHandler creates a new WorkerHandler instance
func NewWorkerHandler(deps *Dependencies) *WorkerHandler {
	return &WorkerHandler{
		logger:  deps.Logger,
		workers: deps.Workers,
	}
}

// GetProfile handles GET /api/v1/workers/me
func (h *WorkerHandler) GetProfile(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	profile, err := h.workers.Profile(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ToggleAvailability handles POST /api/v1/workers/availability/toggle
func (h *WorkerHandler) ToggleAvailability(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	// The body is optional: deactivation needs no coordinates.
	var req dto.ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	profile, err := h.workers.ToggleActiveToday(c.Request.Context(), caller, req.Latitude, req.Longitude)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
