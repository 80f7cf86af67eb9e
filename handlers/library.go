package handlers

import (
	"net/http"

	"tracktidy/services"

	"github.com/gin-gonic/gin"
)

// LibraryHandler handles audio library browsing endpoints
type LibraryHandler struct {
	library services.LibraryService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library services.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// ListFiles returns the audio files of a directory with their metadata
func (h *LibraryHandler) ListFiles(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "dir query parameter is required",
		})
		return
	}

	files, err := h.library.ScanDirectory(dir)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"directory": dir,
		"files":     files,
		"total":     len(files),
	})
}
