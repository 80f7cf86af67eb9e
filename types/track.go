package types

import (
	"path/filepath"
	"strings"
)

// TagSet is the structured metadata block of an audio file.
type TagSet struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

// TagUpdates describes the fields a tag edit should change. An empty
// field means "keep the existing value".
type TagUpdates struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u TagUpdates) IsEmpty() bool {
	return u.Title == "" && u.Artist == "" && u.Album == "" && u.Genre == ""
}

// Format represents a supported conversion target format
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
	FormatAAC  Format = "aac"
	FormatOGG  Format = "ogg"
)

// SupportedFormats lists every format the converter can produce.
var SupportedFormats = []Format{FormatMP3, FormatWAV, FormatFLAC, FormatAAC, FormatOGG}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range SupportedFormats {
		if f == supported {
			return f, true
		}
	}
	return "", false
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// audioExtensions are the file extensions the batch processor and library
// scanner recognize as audio.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".aac":  true,
}

// IsAudioPath reports whether the path has a recognized audio extension.
func IsAudioPath(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// AudioFile represents a discovered audio file
type AudioFile struct {
	Filename string  `json:"filename"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Format   string  `json:"format"` // "flac", "mp3", etc.
	Tags     *TagSet `json:"tags,omitempty"`
}
