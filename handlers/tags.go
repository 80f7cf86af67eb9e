package handlers

import (
	"errors"
	"net/http"

	"tracktidy/services"
	"tracktidy/types"

	"github.com/gin-gonic/gin"
)

// TagsHandler handles metadata read and write endpoints
type TagsHandler struct {
	editor services.TagEditor
}

// NewTagsHandler creates a new tags handler
func NewTagsHandler(editor services.TagEditor) *TagsHandler {
	return &TagsHandler{editor: editor}
}

// GetTags returns the metadata of a single audio file
func (h *TagsHandler) GetTags(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path query parameter is required",
		})
		return
	}

	tags, err := h.editor.ReadTags(path)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path": path,
		"tags": tags,
	})
}

// UpdateTagsRequest is the payload for a tag update
type UpdateTagsRequest struct {
	Path    string           `json:"path" binding:"required"`
	Updates types.TagUpdates `json:"updates"`
}

// UpdateTags applies metadata updates to a single audio file
func (h *TagsHandler) UpdateTags(c *gin.Context) {
	var req UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	if req.Updates.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at least one tag field must be set",
		})
		return
	}

	if err := h.editor.WriteTags(req.Path, req.Updates); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tags, err := h.editor.ReadTags(req.Path)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "tags updated successfully",
		"path":    req.Path,
		"tags":    tags,
	})
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotAnAudioFile),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrNotAnMP3):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNoMatch):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
