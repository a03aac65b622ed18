package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/api/dto"
	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/matching"
)

// MatchingHandler handles match-finding and application HTTP requests
type MatchingHandler struct {
	logger   *slog.Logger
	matching *matching.Service
}

// NewMatchingHandler creates a new MatchingHandler instance
func NewMatchingHandler(deps *Dependencies) *MatchingHandler {
	return &MatchingHandler{
		logger:   deps.Logger,
		matching: deps.Matching,
	}
}

func bindMatchQuery(c *gin.Context) (matching.FindOptions, bool) {
	var q dto.MatchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return matching.FindOptions{}, false
	}

	opts := matching.FindOptions{
		RadiusKm: q.RadiusKm,
		MinScore: q.MinScore,
		Limit:    q.Limit,
	}
	if q.JobStatus != "" {
		status, err := domain.ParseJobStatus(q.JobStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return matching.FindOptions{}, false
		}
		opts.JobStatus = status
	}
	return opts, true
}

// WorkerJobs handles GET /api/v1/matching/worker/:worker_id/jobs
func (h *MatchingHandler) WorkerJobs(c *gin.Context) {
	opts, ok := bindMatchQuery(c)
	if !ok {
		return
	}

	matches, err := h.matching.FindForWorker(c.Request.Context(), c.Param("worker_id"), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// JobWorkers handles GET /api/v1/matching/job/:job_id/workers
func (h *MatchingHandler) JobWorkers(c *gin.Context) {
	opts, ok := bindMatchQuery(c)
	if !ok {
		return
	}

	matches, err := h.matching.FindForJob(c.Request.Context(), c.Param("job_id"), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// Apply handles POST /api/v1/matching/job/:job_id/apply
func (h *MatchingHandler) Apply(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	// The body is optional: message and budget are worker extras.
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	match, err := h.matching.ApplyToJob(c.Request.Context(), caller, c.Param("job_id"), matching.ApplyInput{
		Message:        req.Message,
		ProposedBudget: req.ProposedBudget,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, match)
}
