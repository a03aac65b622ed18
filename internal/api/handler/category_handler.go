package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/catalog"
)

// CategoryHandler handles service-category HTTP requests
type CategoryHandler struct {
	logger  *slog.Logger
	catalog *catalog.Service
}

// NewCategoryHandler creates a new CategoryHandler instance
func NewCategoryHandler(deps *Dependencies) *CategoryHandler {
	return &CategoryHandler{
		logger:  deps.Logger,
		catalog: deps.Catalog,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	list, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": list,
		"total":      len(list),
	})
}

// GetCategory handles GET /api/v1/categories/:category_id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.Get(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, category)
}
