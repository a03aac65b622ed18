package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/api/dto"
	"github.com/faenaapp/faena-backend/internal/offers"
)

// OfferHandler handles offer lifecycle HTTP requests
type OfferHandler struct {
	logger *slog.Logger
	offers *offers.Service
}

// NewOfferHandler creates a new OfferHandler instance
func NewOfferHandler(deps *Dependencies) *OfferHandler {
	return &OfferHandler{
		logger: deps.Logger,
		offers: deps.Offers,
	}
}

// MyOffers handles GET /api/v1/offers/my-offers
func (h *OfferHandler) MyOffers(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	list, err := h.offers.WorkerOffers(c.Request.Context(), caller, c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": list,
		"total":  len(list),
	})
}

// AcceptOffer handles POST /api/v1/offers/:offer_id/accept
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	// The body is optional: accepting without a message is the common case.
	var req dto.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	offer, err := h.offers.Accept(c.Request.Context(), c.Param("offer_id"), caller, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// RejectOffer handles POST /api/v1/offers/:offer_id/reject
func (h *OfferHandler) RejectOffer(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.RejectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	offer, err := h.offers.Reject(c.Request.Context(), c.Param("offer_id"), caller, &req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// CompleteOffer handles POST /api/v1/offers/:offer_id/complete
func (h *OfferHandler) CompleteOffer(c *gin.Context) {
	offer, err := h.offers.Complete(c.Request.Context(), c.Param("offer_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
