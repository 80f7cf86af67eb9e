package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"tracktidy/types"
	"tracktidy/websocket"

	"github.com/google/uuid"
)

// JobQueue interface defines the methods for managing queued operations
type JobQueue interface {
	Start()
	AddJob(jobType types.JobType, req types.JobRequest) *types.Job
	GetJob(id string) (*types.Job, bool)
	GetAllJobs() []*types.Job
	CancelJob(id string) bool
}

// jobQueue runs queued operations on a bounded worker pool
type jobQueue struct {
	jobs       map[string]*types.Job
	queue      chan *types.Job
	mu         sync.RWMutex
	maxWorkers int
	hub        websocket.Hub

	editor    TagEditor
	converter *Converter
	cover     *CoverArtService
	library   LibraryService
	batch     *BatchProcessor
}

// NewJobQueue creates a new job queue
func NewJobQueue(maxWorkers int, hub websocket.Hub, editor TagEditor, converter *Converter, cover *CoverArtService, library LibraryService) JobQueue {
	return &jobQueue{
		jobs:       make(map[string]*types.Job),
		queue:      make(chan *types.Job, 100), // Buffer for 100 jobs
		maxWorkers: maxWorkers,
		hub:        hub,
		editor:     editor,
		converter:  converter,
		cover:      cover,
		library:    library,
		batch:      NewBatchProcessor(maxWorkers),
	}
}

// AddJob adds a new job to the queue
func (jq *jobQueue) AddJob(jobType types.JobType, req types.JobRequest) *types.Job {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job := &types.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    types.JobStatusQueued,
		Request:   req,
		Progress:  0,
		Total:     1,
		CreatedAt: time.Now(),
	}

	jq.jobs[job.ID] = job
	jq.queue <- job

	return job
}

// GetJob retrieves a job by ID
func (jq *jobQueue) GetJob(id string) (*types.Job, bool) {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	job, exists := jq.jobs[id]
	return job, exists
}

// GetAllJobs returns all jobs
func (jq *jobQueue) GetAllJobs() []*types.Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]*types.Job, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// CancelJob cancels a queued job. Processing jobs cannot be cancelled.
func (jq *jobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists {
		return false
	}

	if job.Status == types.JobStatusQueued {
		job.Status = types.JobStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		return true
	}

	return false
}

// updateProgress updates job progress and broadcasts it
func (jq *jobQueue) updateProgress(id string, progress, total int, currentFile string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists {
		return
	}
	job.Progress = progress
	job.Total = total

	if jq.hub != nil && total > 0 {
		percent := float64(progress) / float64(total) * 100
		jq.hub.BroadcastProgress(id, "progress", string(job.Status), currentFile,
			fmt.Sprintf("Processed %d of %d files", progress, total), percent)
	}
}

// setStatus updates job status and broadcasts it
func (jq *jobQueue) setStatus(id string, status types.JobStatus, errorMsg string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists {
		return
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	if status == types.JobStatusProcessing && job.StartedAt == nil {
		job.StartedAt = &now
	} else if status == types.JobStatusCompleted || status == types.JobStatusFailed || status == types.JobStatusCancelled {
		job.CompletedAt = &now
	}

	if jq.hub != nil {
		msgType := "status"
		message := string(status)
		progress := float64(job.Progress) / float64(job.Total) * 100

		switch status {
		case types.JobStatusCompleted:
			msgType = "complete"
			progress = 100.0
			message = fmt.Sprintf("%s job completed", job.Type)
		case types.JobStatusFailed:
			msgType = "error"
			message = errorMsg
		case types.JobStatusProcessing:
			message = fmt.Sprintf("Started %s job", job.Type)
		}

		jq.hub.BroadcastProgress(id, msgType, string(status), "", message, progress)
	}
}

// Start begins processing jobs
func (jq *jobQueue) Start() {
	for i := 0; i < jq.maxWorkers; i++ {
		go jq.worker()
	}
}

// worker processes jobs from the queue
func (jq *jobQueue) worker() {
	for job := range jq.queue {
		if job.Status == types.JobStatusCancelled {
			continue
		}

		jq.setStatus(job.ID, types.JobStatusProcessing, "")

		var err error
		switch job.Type {
		case types.JobTypeConvert:
			err = jq.processConvertJob(job)
		case types.JobTypeCoverArt:
			err = jq.processCoverArtJob(job)
		case types.JobTypeBatchConvert, types.JobTypeBatchTags:
			err = jq.processBatchJob(job)
		}

		if err != nil {
			jq.setStatus(job.ID, types.JobStatusFailed, err.Error())
			log.Printf("Job %s failed: %v", job.ID, err)
		} else {
			jq.setStatus(job.ID, types.JobStatusCompleted, "")
			log.Printf("Job %s completed successfully", job.ID)
		}
	}
}

// processConvertJob runs a single-file conversion
func (jq *jobQueue) processConvertJob(job *types.Job) error {
	jq.updateProgress(job.ID, 0, 1, filepath.Base(job.Request.Source))

	_, err := jq.converter.Convert(context.Background(), job.Request.Source, job.Request.Format, job.Request.OutputDir)
	if err != nil {
		return err
	}

	jq.updateProgress(job.ID, 1, 1, "")
	return nil
}

// processCoverArtJob runs a cover art fetch and embed
func (jq *jobQueue) processCoverArtJob(job *types.Job) error {
	jq.updateProgress(job.ID, 0, 1, filepath.Base(job.Request.Source))

	_, err := jq.cover.FetchAndEmbed(context.Background(), job.Request)
	if err != nil {
		return err
	}

	jq.updateProgress(job.ID, 1, 1, "")
	return nil
}

// processBatchJob runs a directory batch. Per-file failures land in the
// summary; only a failure to enumerate the directory fails the whole job.
func (jq *jobQueue) processBatchJob(job *types.Job) error {
	files, err := jq.library.ListAudioFiles(job.Request.Directory)
	if err != nil {
		return fmt.Errorf("failed to enumerate %s: %w", job.Request.Directory, err)
	}

	var op BatchOperation
	if job.Type == types.JobTypeBatchConvert {
		op = ConvertOperation{Converter: jq.converter, Format: job.Request.Format, OutputDir: job.Request.OutputDir}
	} else {
		op = TagEditOperation{Editor: jq.editor, Updates: job.Request.Updates}
	}

	jq.updateProgress(job.ID, 0, len(files), "")

	processor := NewBatchProcessor(jq.batch.workers)
	processor.SetProgress(func(done, total int, path string, err error) {
		jq.updateProgress(job.ID, done, total, filepath.Base(path))
	})

	summary := processor.Run(context.Background(), files, op)

	jq.mu.Lock()
	job.Summary = summary
	jq.mu.Unlock()

	return nil
}
