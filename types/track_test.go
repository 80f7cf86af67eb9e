package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseFormat tests normalization and rejection of format names
func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		ok       bool
	}{
		{"mp3", FormatMP3, true},
		{"MP3", FormatMP3, true},
		{" flac ", FormatFLAC, true},
		{"ogg", FormatOGG, true},
		{"wma", "", false},
		{"", "", false},
		{"mp4", "", false},
	}

	for _, tt := range tests {
		format, ok := ParseFormat(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.expected, format, tt.input)
	}
}

// TestFormatExtension tests extension derivation
func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".mp3", FormatMP3.Extension())
	assert.Equal(t, ".flac", FormatFLAC.Extension())
}

// TestIsAudioPath tests extension-based audio detection
func TestIsAudioPath(t *testing.T) {
	assert.True(t, IsAudioPath("/music/song.mp3"))
	assert.True(t, IsAudioPath("SONG.FLAC"))
	assert.True(t, IsAudioPath("track.m4a"))
	assert.False(t, IsAudioPath("cover.jpg"))
	assert.False(t, IsAudioPath("song.mp3.bak"))
	assert.False(t, IsAudioPath("noextension"))
}

// TestTagUpdatesIsEmpty tests the no-op detection
func TestTagUpdatesIsEmpty(t *testing.T) {
	assert.True(t, TagUpdates{}.IsEmpty())
	assert.False(t, TagUpdates{Genre: "Jazz"}.IsEmpty())
}

// TestBatchSummaryFailures tests failure filtering
func TestBatchSummaryFailures(t *testing.T) {
	summary := &BatchSummary{
		Succeeded: 1,
		Failed:    1,
		Entries: []BatchEntry{
			{Path: "a.mp3", Succeeded: true},
			{Path: "b.mp3", Succeeded: false, Reason: "boom"},
		},
	}

	failures := summary.Failures()
	assert.Len(t, failures, 1)
	assert.Equal(t, "b.mp3", failures[0].Path)
}
