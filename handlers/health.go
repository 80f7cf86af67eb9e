package handlers

import (
	"net/http"
	"time"

	"tracktidy/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "tracktidy",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
	})
}

// APIStatus returns the status of the API
func (h *HealthHandler) APIStatus(c *gin.Context) {
	installed, ffmpegPath := services.CheckFFmpegInstalled()
	c.JSON(http.StatusOK, gin.H{
		"message":          "TrackTidy API is running",
		"ffmpeg_installed": installed,
		"ffmpeg_path":      ffmpegPath,
	})
}
