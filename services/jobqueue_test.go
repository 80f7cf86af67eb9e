package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tracktidy/config"
	"tracktidy/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestQueue wires a job queue over real services with no hub
func newTestQueue(workers int) JobQueue {
	editor := NewTagEditor()
	converter := NewConverter(&fakeEncoder{writeOutput: true})
	cover := NewCoverArtService(config.Credentials{})
	library := NewLibraryService(editor)
	return NewJobQueue(workers, nil, editor, converter, cover, library)
}

// waitForJob polls until the job leaves the queued/processing states
func waitForJob(t *testing.T, jq JobQueue, id string) *types.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := jq.GetJob(id)
		require.True(t, ok)
		if job.Status != types.JobStatusQueued && job.Status != types.JobStatusProcessing {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

// TestJobQueueBatchTags tests a batch tag-edit job end to end
func TestJobQueueBatchTags(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.mp3", "two.mp3"} {
		data := make([]byte, 64)
		data[0], data[1] = 0xFF, 0xFB
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	// One file the tag writer cannot handle
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("RIFF"), 0644))

	jq := newTestQueue(2)
	jq.Start()

	job := jq.AddJob(types.JobTypeBatchTags, types.JobRequest{
		Directory: dir,
		Updates:   types.TagUpdates{Album: "Collected"},
	})

	done := waitForJob(t, jq, job.ID)
	assert.Equal(t, types.JobStatusCompleted, done.Status)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 2, done.Summary.Succeeded)
	assert.Equal(t, 1, done.Summary.Failed)

	editor := NewTagEditor()
	tags, err := editor.ReadTags(filepath.Join(dir, "one.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "Collected", tags.Album)
}

// TestJobQueueConvert tests a single-file conversion job
func TestJobQueueConvert(t *testing.T) {
	source := writeTempAudio(t, "song.wav")

	jq := newTestQueue(1)
	jq.Start()

	job := jq.AddJob(types.JobTypeConvert, types.JobRequest{
		Source: source,
		Format: types.FormatMP3,
	})

	done := waitForJob(t, jq, job.ID)
	assert.Equal(t, types.JobStatusCompleted, done.Status)
	assert.FileExists(t, filepath.Join(filepath.Dir(source), "song.mp3"))
}

// TestJobQueueFailedJob tests that a bad source marks the job failed
func TestJobQueueFailedJob(t *testing.T) {
	jq := newTestQueue(1)
	jq.Start()

	job := jq.AddJob(types.JobTypeConvert, types.JobRequest{
		Source: "/nonexistent/file.wav",
		Format: types.FormatMP3,
	})

	done := waitForJob(t, jq, job.ID)
	assert.Equal(t, types.JobStatusFailed, done.Status)
	assert.NotEmpty(t, done.Error)
}

// TestJobQueueCancel tests cancelling a job before any worker picks it up
func TestJobQueueCancel(t *testing.T) {
	jq := newTestQueue(1)
	// Not started: the job stays queued

	job := jq.AddJob(types.JobTypeConvert, types.JobRequest{
		Source: "/music/a.wav",
		Format: types.FormatMP3,
	})

	assert.True(t, jq.CancelJob(job.ID))

	cancelled, ok := jq.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.JobStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)

	// Unknown and already-cancelled jobs cannot be cancelled
	assert.False(t, jq.CancelJob("no-such-job"))
	assert.False(t, jq.CancelJob(job.ID))
}

// TestJobQueueGetAllJobs tests the listing accessor
func TestJobQueueGetAllJobs(t *testing.T) {
	jq := newTestQueue(1)

	jq.AddJob(types.JobTypeConvert, types.JobRequest{Source: "/a.wav", Format: types.FormatMP3})
	jq.AddJob(types.JobTypeBatchConvert, types.JobRequest{Directory: "/music", Format: types.FormatOGG})

	assert.Len(t, jq.GetAllJobs(), 2)
}
