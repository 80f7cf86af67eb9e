package handlers

import (
	"net/http"

	"tracktidy/config"
	"tracktidy/services"

	"github.com/gin-gonic/gin"
)

// CredentialsHandler handles Spotify credential endpoints
type CredentialsHandler struct {
	cover *services.CoverArtService
}

// NewCredentialsHandler creates a new credentials handler
func NewCredentialsHandler(cover *services.CoverArtService) *CredentialsHandler {
	return &CredentialsHandler{cover: cover}
}

// Status reports whether credentials are configured
func (h *CredentialsHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured": h.cover.HasCredentials(),
		"path":       config.CredentialsPath(),
	})
}

// SetCredentialsRequest is the payload for storing credentials
type SetCredentialsRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// Set validates and persists a new credential record. Validation runs a
// probe search against the catalog before anything is written to disk.
func (h *CredentialsHandler) Set(c *gin.Context) {
	var req SetCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	creds := config.Credentials{ClientID: req.ClientID, ClientSecret: req.ClientSecret}

	probe := services.NewCoverArtService(creds)
	if err := probe.Validate(c.Request.Context()); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credential validation failed: " + err.Error()})
		return
	}

	if err := config.SaveCredentials(creds); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.cover.SetCredentials(creds)
	c.JSON(http.StatusOK, gin.H{
		"message": "credentials saved successfully",
	})
}

// Reset removes the persisted credential record
func (h *CredentialsHandler) Reset(c *gin.Context) {
	if err := config.ResetCredentials(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.cover.SetCredentials(config.Credentials{})
	c.JSON(http.StatusOK, gin.H{
		"message": "credentials reset successfully",
	})
}
