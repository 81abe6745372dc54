package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"auto_publish_social/config"
	httpclient "auto_publish_social/internal/infrastructure/http"
	"auto_publish_social/internal/logger"
)

// videoIDPatterns match the YouTube URL shapes we accept as cron sources.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character YouTube video ID out of a source URL.
func ExtractVideoID(sourceURL string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(sourceURL); len(match) == 2 {
			return match[1], nil
		}
	}
	return "", fmt.Errorf("no YouTube video ID found in %q", sourceURL)
}

// IsYouTubeURL reports whether the source URL points at a YouTube video.
func IsYouTubeURL(sourceURL string) bool {
	_, err := ExtractVideoID(sourceURL)
	return err == nil
}

// Service downloads source media with yt-dlp and plain HTTP
type Service struct {
	config     *config.Config
	httpClient *httpclient.HTTPClient
	mediaDir   string
	ytDlpPath  string
}

// NewService creates a new download service
func NewService(cfg *config.Config, httpClient *httpclient.HTTPClient) (*Service, error) {
	// Ensure media directory exists
	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	ytDlpPath, err := resolveYtDlpPath(cfg)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:     cfg,
		httpClient: httpClient,
		mediaDir:   cfg.MediaDir,
		ytDlpPath:  ytDlpPath,
	}, nil
}

// DownloadAudio extracts the audio track of a YouTube video as mp3 and
// returns the local file path.
func (s *Service) DownloadAudio(ctx context.Context, sourceURL string) (string, error) {
	videoID, err := ExtractVideoID(sourceURL)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(s.mediaDir, fmt.Sprintf("%s.mp3", videoID))
	if _, err := os.Stat(outputPath); err == nil {
		logger.Info().Printf("Audio already downloaded: %s", outputPath)
		return outputPath, nil
	}

	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--no-check-certificates",
		// tv_embedded client is the least likely to be blocked
		"--extractor-args", "youtube:player_client=tv_embedded",
		"--force-ipv4",
		"--retries", "3",
		"--retry-sleep", "3",
		"-x",
		"--audio-format", "mp3",
		"-o", filepath.Join(s.mediaDir, fmt.Sprintf("%s.%%(ext)s", videoID)),
		fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
	}

	logger.Info().Printf("Executing: %s %s", s.ytDlpPath, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, s.ytDlpPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderrStr := stderr.String(); stderrStr != "" {
			return "", fmt.Errorf("yt-dlp audio download failed: %w\nStderr: %s", err, stderrStr)
		}
		return "", fmt.Errorf("yt-dlp audio download failed: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("downloaded audio not found at %s: %w", outputPath, err)
	}

	return outputPath, nil
}

// DownloadFile streams a remote file to a local path
func (s *Service) DownloadFile(ctx context.Context, fileURL string, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	// 1MB buffer reduces system calls on large media files
	buffer := make([]byte, 1024*1024)
	_, err = io.CopyBuffer(file, resp.Body, buffer)
	return err
}

// CleanupOld removes media files older than maxAge
func (s *Service) CleanupOld(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.mediaDir)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) > maxAge {
			filePath := filepath.Join(s.mediaDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				continue
			}
		}
	}

	return nil
}

// resolveYtDlpPath determines the path to the yt-dlp executable.
func resolveYtDlpPath(cfg *config.Config) (string, error) {
	// Helper that validates a candidate path.
	checkCandidate := func(candidate string) (string, bool) {
		if candidate == "" {
			return "", false
		}

		// If candidate contains a path separator, treat it as a direct path.
		if strings.ContainsAny(candidate, `/\`) {
			full := candidate
			if !filepath.IsAbs(full) {
				full = filepath.Clean(full)
			}
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return full, true
			}
			return "", false
		}

		// Otherwise, ask the OS to resolve it inside PATH.
		if resolved, err := exec.LookPath(candidate); err == nil {
			return resolved, true
		}
		return "", false
	}

	if cfg != nil && cfg.YtDlpPath != "" {
		if resolved, ok := checkCandidate(cfg.YtDlpPath); ok {
			return resolved, nil
		}
		return "", fmt.Errorf("configured media.yt_dlp_path %q does not point to a valid yt-dlp binary", cfg.YtDlpPath)
	}

	if resolved, ok := checkCandidate("yt-dlp"); ok {
		return resolved, nil
	}
	if runtime.GOOS == "windows" {
		if resolved, ok := checkCandidate("yt-dlp.exe"); ok {
			return resolved, nil
		}
	}

	wd, _ := os.Getwd()
	potentialDirs := []string{
		wd,
		filepath.Join(wd, "bin"),
	}

	binaryName := "yt-dlp"
	if runtime.GOOS == "windows" {
		binaryName = "yt-dlp.exe"
	}

	for _, dir := range potentialDirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, binaryName)
		if resolved, ok := checkCandidate(candidate); ok {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("yt-dlp executable not found. Please install yt-dlp (https://github.com/yt-dlp/yt-dlp), add it to PATH, or set media.yt_dlp_path in config.yaml")
}
