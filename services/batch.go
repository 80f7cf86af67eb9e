package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"tracktidy/types"
)

// BatchOperation is the per-file action a batch run applies. Operations
// must be independent between files: no shared mutable state.
type BatchOperation interface {
	Name() string
	Apply(ctx context.Context, path string) error
}

// TagEditOperation applies a tag-edit template to each file. The title
// template supports {filename} and {n} placeholders.
type TagEditOperation struct {
	Editor  TagEditor
	Updates types.TagUpdates
}

// Name returns the operation label used in progress output.
func (op TagEditOperation) Name() string { return "tag edit" }

// Apply edits one file's tags with the template expanded for that file.
func (op TagEditOperation) Apply(ctx context.Context, path string) error {
	updates := op.Updates
	updates.Title = ExpandTitleTemplate(updates.Title, path)
	return op.Editor.WriteTags(path, updates)
}

// ExpandTitleTemplate substitutes {filename} with the base name without
// extension and {n} with the leading track number of the file name (kept
// verbatim when the name carries no track number).
func ExpandTitleTemplate(template, path string) string {
	if template == "" {
		return ""
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	expanded := strings.ReplaceAll(template, "{filename}", name)

	if strings.Contains(expanded, "{n}") {
		if fields := strings.Fields(name); len(fields) > 0 && isDigits(fields[0]) {
			expanded = strings.ReplaceAll(expanded, "{n}", fields[0])
		}
	}

	return expanded
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ConvertOperation converts each file to the target format.
type ConvertOperation struct {
	Converter *Converter
	Format    types.Format
	OutputDir string
}

// Name returns the operation label used in progress output.
func (op ConvertOperation) Name() string { return "conversion" }

// Apply converts one file.
func (op ConvertOperation) Apply(ctx context.Context, path string) error {
	_, err := op.Converter.Convert(ctx, path, op.Format, op.OutputDir)
	return err
}

// ProgressFunc receives a notification after each file finishes.
type ProgressFunc func(done, total int, path string, err error)

// BatchProcessor applies an operation to a set of files with a bounded
// worker pool. Individual failures are recorded, never fatal to the batch.
type BatchProcessor struct {
	workers  int
	progress ProgressFunc
}

// NewBatchProcessor creates a batch processor with the given worker count.
func NewBatchProcessor(workers int) *BatchProcessor {
	if workers < 1 {
		workers = 1
	}
	return &BatchProcessor{workers: workers}
}

// SetProgress installs a per-file completion callback.
func (bp *BatchProcessor) SetProgress(fn ProgressFunc) {
	bp.progress = fn
}

// Run applies the operation to every file and returns the summary. Entries
// keep the input order; worker completion order only affects when the
// progress callback fires.
func (bp *BatchProcessor) Run(ctx context.Context, files []string, op BatchOperation) *types.BatchSummary {
	summary := &types.BatchSummary{
		Entries: make([]types.BatchEntry, len(files)),
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i := 0; i < bp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				path := files[idx]
				err := op.Apply(ctx, path)

				entry := types.BatchEntry{Path: path, Succeeded: err == nil}
				if err != nil {
					entry.Reason = err.Error()
				}
				summary.Entries[idx] = entry

				mu.Lock()
				if err == nil {
					summary.Succeeded++
				} else {
					summary.Failed++
				}
				done++
				completed := done
				mu.Unlock()

				if bp.progress != nil {
					bp.progress(completed, len(files), path, err)
				}
			}
		}()
	}

	for idx := range files {
		indexes <- idx
	}
	close(indexes)
	wg.Wait()

	return summary
}
