package cmd

import (
	"log"
	"os"
	"strconv"

	"tracktidy/config"
	"tracktidy/handlers"
	"tracktidy/middleware"
	"tracktidy/services"
	"tracktidy/websocket"

	"github.com/gin-gonic/gin"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	creds, err := config.LoadCredentials()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	editor := services.NewTagEditor()
	encoder := services.NewFFmpegEncoder(services.FindExecutable("ffmpeg"))
	converter := services.NewConverter(encoder)
	cover := services.NewCoverArtService(creds)
	library := services.NewLibraryService(editor)

	jobQueue := services.NewJobQueue(2, hub, editor, converter, cover, library)
	jobQueue.Start()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	tagsHandler := handlers.NewTagsHandler(editor)
	jobsHandler := handlers.NewJobsHandler(jobQueue, hub)
	libraryHandler := handlers.NewLibraryHandler(library)
	credsHandler := handlers.NewCredentialsHandler(cover)

	// Setup router
	r := gin.Default()

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())

	// Setup routes
	setupRoutes(r, healthHandler, tagsHandler, jobsHandler, libraryHandler, credsHandler)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("TrackTidy web server starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, healthHandler *handlers.HealthHandler, tagsHandler *handlers.TagsHandler, jobsHandler *handlers.JobsHandler, libraryHandler *handlers.LibraryHandler, credsHandler *handlers.CredentialsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Metadata endpoints
		apiGroup.GET("/tags", tagsHandler.GetTags)
		apiGroup.PUT("/tags", tagsHandler.UpdateTags)

		// Queue single-file jobs
		apiGroup.POST("/convert", jobsHandler.QueueConvert)
		apiGroup.POST("/coverart", jobsHandler.QueueCoverArt)

		// Queue batch jobs
		batchGroup := apiGroup.Group("/batch")
		{
			batchGroup.POST("/convert", jobsHandler.QueueBatchConvert)
			batchGroup.POST("/tags", jobsHandler.QueueBatchTags)
		}

		// Manage jobs
		jobsGroup := apiGroup.Group("/jobs")
		{
			jobsGroup.GET("", jobsHandler.GetAllJobs)
			jobsGroup.GET("/:jobId", jobsHandler.GetJob)
			jobsGroup.DELETE("/:jobId", jobsHandler.CancelJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific job progress
			wsGroup.GET("/jobs/:jobId", jobsHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all job progress
			wsGroup.GET("/jobs", jobsHandler.HandleWebSocketAllConnection)
		}

		// Library browsing endpoint
		apiGroup.GET("/library", libraryHandler.ListFiles)

		// Credential endpoints
		apiGroup.GET("/credentials/status", credsHandler.Status)
		apiGroup.POST("/credentials", credsHandler.Set)
		apiGroup.DELETE("/credentials", credsHandler.Reset)
	}
}
