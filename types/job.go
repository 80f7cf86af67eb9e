package types

import "time"

// JobType represents the kind of work a queued job performs
type JobType string

const (
	JobTypeConvert      JobType = "convert"
	JobTypeCoverArt     JobType = "coverart"
	JobTypeBatchConvert JobType = "batch-convert"
	JobTypeBatchTags    JobType = "batch-tags"
)

// JobStatus represents the current status of a queued job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobRequest carries the parameters of a queued operation. Which fields
// matter depends on the job type.
type JobRequest struct {
	Source      string     `json:"source,omitempty"`      // input file for single-file jobs
	Directory   string     `json:"directory,omitempty"`   // batch input directory
	OutputDir   string     `json:"outputDir,omitempty"`   // optional conversion output directory
	Format      Format     `json:"format,omitempty"`      // conversion target
	Updates     TagUpdates `json:"updates,omitempty"`     // tag-edit template
	TrackQuery  string     `json:"trackQuery,omitempty"`  // cover art track query
	ArtistQuery string     `json:"artistQuery,omitempty"` // cover art artist query
}

// Job represents one unit of work in the queue
type Job struct {
	ID          string        `json:"id"`
	Type        JobType       `json:"type"`
	Status      JobStatus     `json:"status"`
	Request     JobRequest    `json:"request"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Error       string        `json:"error,omitempty"`
	Summary     *BatchSummary `json:"summary,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// BatchEntry is one (path, outcome) record in a batch run.
type BatchEntry struct {
	Path      string `json:"path"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// BatchSummary is the final report of a batch run. Entries keep the order
// of the enumerated input files regardless of worker completion order.
type BatchSummary struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Entries   []BatchEntry `json:"entries"`
}

// Failures returns only the failed entries.
func (s *BatchSummary) Failures() []BatchEntry {
	var failed []BatchEntry
	for _, e := range s.Entries {
		if !e.Succeeded {
			failed = append(failed, e)
		}
	}
	return failed
}
