package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tracktidy/types"
)

// EncodeRequest describes one transcoding run.
type EncodeRequest struct {
	Input  string
	Output string
	Format types.Format
}

// Encoder interface wraps the external transcoding process so converter
// logic can be exercised with a fake.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest) error
}

// ffmpegEncoder shells out to an ffmpeg binary.
type ffmpegEncoder struct {
	binPath string
}

// NewFFmpegEncoder creates an encoder backed by the ffmpeg binary at path.
func NewFFmpegEncoder(path string) Encoder {
	return &ffmpegEncoder{binPath: path}
}

// codecArgs returns the format-appropriate codec/quality defaults. wav and
// flac rely on ffmpeg's extension-based defaults.
func codecArgs(format types.Format) []string {
	switch format {
	case types.FormatMP3:
		return []string{"-codec:a", "libmp3lame", "-q:a", "2"}
	case types.FormatAAC:
		return []string{"-codec:a", "aac", "-b:a", "192k"}
	case types.FormatOGG:
		return []string{"-codec:a", "libvorbis", "-q:a", "5"}
	default:
		return nil
	}
}

// Encode runs ffmpeg and blocks until it exits. stdout/stderr are captured
// for diagnostics, not streamed.
func (e *ffmpegEncoder) Encode(ctx context.Context, req EncodeRequest) error {
	args := []string{"-y", "-i", req.Input}
	args = append(args, codecArgs(req.Format)...)
	args = append(args, req.Output)

	cmd := exec.CommandContext(ctx, e.binPath, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &ConversionError{ExitCode: exitCode, Output: tailLines(output.String(), 5)}
	}

	return nil
}

// tailLines keeps the last n lines of encoder output; ffmpeg's banner is
// noise, the failure reason is at the end.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Converter transcodes audio files via an external encoder. It never
// converts in place: output is always a new file alongside the source.
type Converter struct {
	encoder Encoder
}

// NewConverter creates a converter on top of the given encoder.
func NewConverter(encoder Encoder) *Converter {
	return &Converter{encoder: encoder}
}

// OutputPath derives the conversion output path: same base name with the
// target extension, in outputDir when given or next to the source.
func (c *Converter) OutputPath(source string, format types.Format, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base+format.Extension())
}

// Convert transcodes source into the requested format and returns the
// output path. The source file is never modified or deleted.
func (c *Converter) Convert(ctx context.Context, source string, format types.Format, outputDir string) (string, error) {
	if _, ok := types.ParseFormat(string(format)); !ok {
		return "", fmt.Errorf("%w: %q (supported: mp3, wav, flac, aac, ogg)", ErrUnsupportedFormat, format)
	}

	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	output := c.OutputPath(source, format, outputDir)

	if err := c.encoder.Encode(ctx, EncodeRequest{Input: source, Output: output, Format: format}); err != nil {
		return "", err
	}

	// Zero exit alone is not success: the output file must exist.
	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("%w: encoder produced no output file", ErrConversionFailed)
	}

	return output, nil
}
