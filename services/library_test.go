package services

import (
	"os"
	"path/filepath"
	"testing"

	"tracktidy/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populateLibrary builds a directory with a mix of audio and non-audio files
func populateLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	for _, name := range []string{"b.mp3", "a.flac", "C.MP3", "cover.jpg", "notes.txt", "d.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	// Nested audio must not be picked up
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "hidden.mp3"), []byte("x"), 0644))

	return dir
}

// TestListAudioFiles tests filtering, ordering, and non-recursion
func TestListAudioFiles(t *testing.T) {
	dir := populateLibrary(t)
	library := NewLibraryService(NewTagEditor())

	files, err := library.ListAudioFiles(dir)
	require.NoError(t, err)

	expected := []string{
		filepath.Join(dir, "C.MP3"),
		filepath.Join(dir, "a.flac"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "d.wav"),
	}
	assert.Equal(t, expected, files)
}

// TestListAudioFilesMissingDir tests the missing-directory error
func TestListAudioFilesMissingDir(t *testing.T) {
	library := NewLibraryService(NewTagEditor())

	_, err := library.ListAudioFiles("/nonexistent/music")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

// TestListAudioFilesNotADirectory tests rejection of file arguments
func TestListAudioFilesNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	library := NewLibraryService(NewTagEditor())
	_, err := library.ListAudioFiles(path)
	assert.Error(t, err)
}

// TestScanDirectory tests that unreadable tags never drop a file from the list
func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()

	// A real tagged MP3 and a garbage one
	tagged := writeTempMP3(t, "tagged.mp3")
	taggedDest := filepath.Join(dir, "tagged.mp3")
	data, err := os.ReadFile(tagged)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(taggedDest, data, 0644))

	editor := NewTagEditor()
	require.NoError(t, editor.WriteTags(taggedDest, types.TagUpdates{Title: "Test Title", Artist: "Test Artist"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.mp3"), []byte("not audio"), 0644))

	library := NewLibraryService(editor)
	files, err := library.ScanDirectory(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "garbage.mp3", files[0].Filename)
	assert.Equal(t, "mp3", files[0].Format)
	assert.Nil(t, files[0].Tags)

	assert.Equal(t, "tagged.mp3", files[1].Filename)
	require.NotNil(t, files[1].Tags)
	assert.Equal(t, "Test Title", files[1].Tags.Title)
	assert.Greater(t, files[1].Size, int64(0))
}
