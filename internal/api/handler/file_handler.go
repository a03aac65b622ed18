package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/files"
)

// maxUploadBytes bounds a single upload (job photos, worker documents).
const maxUploadBytes = 10 << 20

// FileHandler accepts uploads and returns stable reference paths.
type FileHandler struct {
	store  files.Store
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(deps *Dependencies) *FileHandler {
	return &FileHandler{
		store:  deps.Files,
		logger: deps.Logger,
	}
}

// Upload handles POST /api/v1/files
func (h *FileHandler) Upload(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	ref, err := h.store.Save(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": ref})
}
