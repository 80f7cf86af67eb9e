package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tracktidy/types"
)

// LibraryService interface defines methods for discovering audio files
type LibraryService interface {
	ListAudioFiles(dir string) ([]string, error)
	ScanDirectory(dir string) ([]types.AudioFile, error)
}

// libraryService implements the LibraryService interface
type libraryService struct {
	editor TagEditor
}

// NewLibraryService creates a new library service
func NewLibraryService(editor TagEditor) LibraryService {
	return &libraryService{editor: editor}
}

// ListAudioFiles enumerates the audio files directly inside dir
// (non-recursive), sorted by name. Extension matching is case-insensitive.
func (ls *libraryService) ListAudioFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if types.IsAudioPath(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanDirectory lists the directory's audio files with their tag sets. A
// file whose tags cannot be read is still listed, with nil tags.
func (ls *libraryService) ScanDirectory(dir string) ([]types.AudioFile, error) {
	paths, err := ls.ListAudioFiles(dir)
	if err != nil {
		return nil, err
	}

	files := make([]types.AudioFile, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		tags, err := ls.editor.ReadTags(path)
		if err != nil {
			tags = nil
		}

		files = append(files, types.AudioFile{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     info.Size(),
			Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
			Tags:     tags,
		})
	}

	return files, nil
}
