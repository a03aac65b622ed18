// Package handler implements the HTTP handlers. Each handler binds the
// request, calls one service operation and maps domain errors to statuses.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/catalog"
	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/files"
	"github.com/faenaapp/faena-backend/internal/jobs"
	"github.com/faenaapp/faena-backend/internal/matching"
	"github.com/faenaapp/faena-backend/internal/offers"
	"github.com/faenaapp/faena-backend/internal/users"
	"github.com/faenaapp/faena-backend/internal/workers"
)

// callerHeader carries the authenticated user id, injected by the gateway.
const callerHeader = "X-User-ID"

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Jobs     *jobs.Service
	Matching *matching.Service
	Offers   *offers.Service
	Workers  *workers.Service
	Users    *users.Service
	Catalog  *catalog.Service
	Files    files.Store
}

// callerID extracts the authenticated user id, aborting with 401 when absent.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(callerHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing " + callerHeader + " header",
		})
		return "", false
	}
	return id, true
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrWorkerNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrDuplicateApplication):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOfferExpired),
		errors.Is(err, domain.ErrOwnJob),
		errors.Is(err, domain.ErrLocationRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	default:
		logger.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
