package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingOp fails on paths listed in failures and succeeds otherwise
type failingOp struct {
	mu       sync.Mutex
	failures map[string]bool
	applied  []string
}

func (op *failingOp) Name() string { return "test op" }

func (op *failingOp) Apply(ctx context.Context, path string) error {
	op.mu.Lock()
	op.applied = append(op.applied, path)
	op.mu.Unlock()

	if op.failures[path] {
		return errors.New("boom")
	}
	return nil
}

// TestBatchRunCounts tests success/failure accounting across the pool
func TestBatchRunCounts(t *testing.T) {
	files := []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3"}
	op := &failingOp{failures: map[string]bool{"b.mp3": true, "d.mp3": true}}

	processor := NewBatchProcessor(2)
	summary := processor.Run(context.Background(), files, op)

	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Len(t, summary.Entries, 5)
	assert.Len(t, op.applied, 5)
}

// TestBatchRunEntryOrder tests that entries keep input order regardless of
// worker count
func TestBatchRunEntryOrder(t *testing.T) {
	var files []string
	for i := 0; i < 20; i++ {
		files = append(files, fmt.Sprintf("track-%02d.mp3", i))
	}

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			op := &failingOp{failures: map[string]bool{"track-07.mp3": true}}
			processor := NewBatchProcessor(workers)
			summary := processor.Run(context.Background(), files, op)

			require.Len(t, summary.Entries, len(files))
			for i, entry := range summary.Entries {
				assert.Equal(t, files[i], entry.Path)
			}

			failures := summary.Failures()
			require.Len(t, failures, 1)
			assert.Equal(t, "track-07.mp3", failures[0].Path)
			assert.Equal(t, "boom", failures[0].Reason)
		})
	}
}

// TestBatchRunContinuesPastFailures tests that one bad file never stops the run
func TestBatchRunContinuesPastFailures(t *testing.T) {
	files := []string{"bad.mp3", "good.mp3"}
	op := &failingOp{failures: map[string]bool{"bad.mp3": true}}

	processor := NewBatchProcessor(1)
	summary := processor.Run(context.Background(), files, op)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.Entries[1].Succeeded)
}

// TestBatchRunProgress tests the progress callback fires once per file
func TestBatchRunProgress(t *testing.T) {
	files := []string{"a.mp3", "b.mp3", "c.mp3"}
	op := &failingOp{failures: map[string]bool{"b.mp3": true}}

	var mu sync.Mutex
	var calls int
	var lastDone int

	processor := NewBatchProcessor(2)
	processor.SetProgress(func(done, total int, path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		lastDone = done
		assert.Equal(t, 3, total)
	})

	processor.Run(context.Background(), files, op)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, lastDone)
}

// TestBatchRunEmpty tests that an empty file list yields an empty summary
func TestBatchRunEmpty(t *testing.T) {
	processor := NewBatchProcessor(4)
	summary := processor.Run(context.Background(), nil, &failingOp{})

	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Entries)
}

// TestExpandTitleTemplate tests the {filename} and {n} placeholders
func TestExpandTitleTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
		expected string
	}{
		{
			name:     "filename placeholder",
			template: "{filename}",
			path:     "/music/My Song.mp3",
			expected: "My Song",
		},
		{
			name:     "track number placeholder",
			template: "Track {n}",
			path:     "/music/07 - My Song.mp3",
			expected: "Track 07",
		},
		{
			name:     "both placeholders",
			template: "{n}. {filename}",
			path:     "/music/03 Intro.flac",
			expected: "03. 03 Intro",
		},
		{
			name:     "no leading number keeps placeholder",
			template: "{n} - remix",
			path:     "/music/Song.mp3",
			expected: "{n} - remix",
		},
		{
			name:     "plain text untouched",
			template: "Static Title",
			path:     "/music/whatever.ogg",
			expected: "Static Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTitleTemplate(tt.template, tt.path))
		})
	}
}
