package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the service layer. Single-file operations report
// these to the user and abort that operation only; batch operations record
// them per file and continue.
var (
	ErrSourceNotFound     = errors.New("source file not found")
	ErrNotAnAudioFile     = errors.New("not a supported audio file")
	ErrUnsupportedFormat  = errors.New("unsupported target format")
	ErrNotAnMP3           = errors.New("file is not an MP3")
	ErrMissingCredentials = errors.New("missing or invalid Spotify credentials")
	ErrNoMatch            = errors.New("no track matched the query")
	ErrDownloadFailed     = errors.New("download failed")
	ErrExtractFailed      = errors.New("archive extraction failed")
	ErrConversionFailed   = errors.New("conversion failed")
)

// ConversionError carries the encoder's diagnostic output alongside its
// exit code. It unwraps to ErrConversionFailed.
type ConversionError struct {
	ExitCode int
	Output   string
}

func (e *ConversionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("conversion failed: encoder exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("conversion failed: encoder exited with code %d: %s", e.ExitCode, e.Output)
}

func (e *ConversionError) Unwrap() error {
	return ErrConversionFailed
}
