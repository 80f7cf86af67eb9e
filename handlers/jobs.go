package handlers

import (
	"log"
	"net/http"

	"tracktidy/services"
	"tracktidy/types"
	"tracktidy/websocket"

	"github.com/gin-gonic/gin"
)

// JobsHandler handles job management endpoints
type JobsHandler struct {
	jobQueue services.JobQueue
	hub      websocket.Hub
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jq services.JobQueue, hub websocket.Hub) *JobsHandler {
	return &JobsHandler{
		jobQueue: jq,
		hub:      hub,
	}
}

// QueueConvert queues a single-file conversion
func (h *JobsHandler) QueueConvert(c *gin.Context) {
	var req types.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}
	if _, ok := types.ParseFormat(string(req.Format)); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported target format: " + string(req.Format)})
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeConvert, req)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Conversion queued successfully",
		"job":     job,
	})
}

// QueueCoverArt queues a cover art fetch and embed
func (h *JobsHandler) QueueCoverArt(c *gin.Context) {
	var req types.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Source == "" || req.TrackQuery == "" || req.ArtistQuery == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source, track_query and artist_query are required"})
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeCoverArt, req)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Cover art fetch queued successfully",
		"job":     job,
	})
}

// QueueBatchConvert queues a directory-wide conversion
func (h *JobsHandler) QueueBatchConvert(c *gin.Context) {
	var req types.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Directory == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "directory is required"})
		return
	}
	if _, ok := types.ParseFormat(string(req.Format)); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported target format: " + string(req.Format)})
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeBatchConvert, req)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Batch conversion queued successfully",
		"job":     job,
	})
}

// QueueBatchTags queues a directory-wide tag edit
func (h *JobsHandler) QueueBatchTags(c *gin.Context) {
	var req types.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Directory == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "directory is required"})
		return
	}
	if req.Updates.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one tag field must be set"})
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeBatchTags, req)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Batch tag edit queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all jobs
func (h *JobsHandler) GetAllJobs(c *gin.Context) {
	jobs := h.jobQueue.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific job by ID
func (h *JobsHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// CancelJob cancels a job
func (h *JobsHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("jobId")
	cancelled := h.jobQueue.CancelJob(jobID)
	if !cancelled {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job cannot be cancelled (not found or already processing)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "job cancelled successfully",
	})
}

// HandleWebSocketConnection handles WebSocket connections for specific job progress
func (h *JobsHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job ID is required"})
		return
	}

	// Check if job exists
	_, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, jobID)
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all job progress
func (h *JobsHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}
