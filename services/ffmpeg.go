package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"tracktidy/config"

	"github.com/mholt/archiver/v3"
	"github.com/schollz/progressbar/v3"
)

// Platform archive sources for the encoder bootstrap.
const (
	ffmpegWindowsURL = "https://github.com/GyanD/codexffmpeg/releases/download/6.1.1/ffmpeg-6.1.1-essentials_build.zip"
	ffmpegLinuxURL   = "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz"
)

// exeName appends the platform executable suffix.
func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// FindExecutable locates ffmpeg or ffprobe: the application bin directory
// first (downloaded binaries win over system ones), then PATH, then common
// platform install locations. Returns "" when not found.
func FindExecutable(name string) string {
	exe := exeName(name)

	appBin := filepath.Join(config.BinDir(), exe)
	if _, err := os.Stat(appBin); err == nil {
		return appBin
	}

	if inPath, err := exec.LookPath(name); err == nil {
		return inPath
	}

	var common []string
	switch runtime.GOOS {
	case "windows":
		home, _ := os.UserHomeDir()
		common = []string{
			filepath.Join(`C:\Program Files\ffmpeg\bin`, exe),
			filepath.Join(`C:\ffmpeg\bin`, exe),
			filepath.Join(home, "ffmpeg", "bin", exe),
		}
	case "darwin":
		common = []string{
			filepath.Join("/usr/local/bin", exe),
			filepath.Join("/opt/homebrew/bin", exe),
		}
	}
	for _, location := range common {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// CheckFFmpegInstalled verifies both ffmpeg and ffprobe are present and
// respond to -version.
func CheckFFmpegInstalled() (bool, string) {
	ffmpegPath := FindExecutable("ffmpeg")
	ffprobePath := FindExecutable("ffprobe")

	var missing []string
	if ffmpegPath == "" {
		missing = append(missing, "ffmpeg")
	}
	if ffprobePath == "" {
		missing = append(missing, "ffprobe")
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("missing: %s", strings.Join(missing, ", "))
	}

	for _, path := range []string{ffmpegPath, ffprobePath} {
		if err := exec.Command(path, "-version").Run(); err != nil {
			return false, fmt.Sprintf("%s is installed but not working properly", filepath.Base(path))
		}
	}

	return true, "ffmpeg and ffprobe are available"
}

// AudioDuration probes a file's duration in seconds via ffprobe. Used as
// an input sanity check before conversions.
func AudioDuration(ctx context.Context, path string) (float64, error) {
	ffprobePath := FindExecutable("ffprobe")
	if ffprobePath == "" {
		return 0, fmt.Errorf("ffprobe not found")
	}

	out, err := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet", "-show_entries", "format=duration", "-of", "csv=p=0", path).Output()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotAnAudioFile, path)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: no duration for %s", ErrNotAnAudioFile, path)
	}

	return duration, nil
}

// Bootstrap downloads and installs the encoder binaries into the
// application bin directory on first run.
type Bootstrap struct {
	httpClient  *http.Client
	downloadURL string
	binDir      string
	// showProgress enables the interactive download bar.
	showProgress bool
}

// NewBootstrap creates a bootstrap for the current platform.
func NewBootstrap() *Bootstrap {
	var url string
	switch runtime.GOOS {
	case "windows":
		url = ffmpegWindowsURL
	case "linux":
		url = ffmpegLinuxURL
	}

	return &Bootstrap{
		httpClient:   &http.Client{Timeout: 10 * time.Minute},
		downloadURL:  url,
		binDir:       config.BinDir(),
		showProgress: true,
	}
}

// Install downloads the platform archive, extracts ffmpeg/ffprobe into the
// bin directory, and verifies the binaries are executable. A working
// existing installation short-circuits.
func (b *Bootstrap) Install(ctx context.Context) error {
	if installed, _ := CheckFFmpegInstalled(); installed {
		return nil
	}

	if b.downloadURL == "" {
		return fmt.Errorf("no automatic ffmpeg install for %s: install it manually (macOS: brew install ffmpeg)", runtime.GOOS)
	}

	if err := os.MkdirAll(b.binDir, 0755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	archivePath, err := b.download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	if err := b.extract(archivePath); err != nil {
		return err
	}

	for _, name := range []string{"ffmpeg", "ffprobe"} {
		target := filepath.Join(b.binDir, exeName(name))
		if !isExecutable(target) {
			return fmt.Errorf("%w: %s missing or not executable after install", ErrExtractFailed, name)
		}
	}

	return nil
}

// download fetches the archive to a temp file, reporting progress when
// running interactively.
func (b *Bootstrap) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %s", ErrDownloadFailed, resp.Status)
	}

	// Keep the archive extension so the extractor can pick a format.
	tmp, err := os.CreateTemp("", "tracktidy-ffmpeg-*"+archiveExt(b.downloadURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer tmp.Close()

	var dst io.Writer = tmp
	if b.showProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading ffmpeg")
		dst = io.MultiWriter(tmp, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return tmp.Name(), nil
}

// archiveExt returns the multi-part archive extension of a URL path.
func archiveExt(url string) string {
	base := url[strings.LastIndex(url, "/")+1:]
	if idx := strings.Index(base, "."); idx >= 0 {
		return base[idx:]
	}
	return ""
}

// extract unpacks the archive into a temp dir and moves the two encoder
// binaries into the bin directory.
func (b *Bootstrap) extract(archivePath string) error {
	tmpDir, err := os.MkdirTemp("", "tracktidy-extract-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}
	defer os.RemoveAll(tmpDir)

	if err := archiver.Unarchive(archivePath, tmpDir); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	wanted := map[string]bool{exeName("ffmpeg"): true, exeName("ffprobe"): true}
	found := 0

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		name := filepath.Base(path)
		if !wanted[name] {
			return nil
		}
		if err := moveFile(path, filepath.Join(b.binDir, name)); err != nil {
			return err
		}
		found++
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	if found < len(wanted) {
		return fmt.Errorf("%w: archive did not contain ffmpeg and ffprobe", ErrExtractFailed)
	}

	return nil
}

// moveFile copies then removes; a plain rename can fail across devices
// when the temp dir lives on another filesystem.
func moveFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}

// isExecutable verifies the installed binary can run.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
