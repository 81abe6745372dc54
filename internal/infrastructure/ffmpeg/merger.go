package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"auto_publish_social/config"
	"auto_publish_social/internal/logger"
)

// Merger combines generated video and synthesized audio with ffmpeg
type Merger struct {
	ffmpegPath string
	outDir     string
}

// NewMerger creates a new ffmpeg merger
func NewMerger(cfg *config.Config) *Merger {
	return &Merger{
		ffmpegPath: cfg.FFmpegPath,
		outDir:     cfg.MediaDir,
	}
}

// MergeAudioVideo lays the audio track over the video, re-encoding with even
// dimensions so the encoder accepts odd-sized AI output. Returns the merged
// file path.
func (m *Merger) MergeAudioVideo(ctx context.Context, videoPath, audioPath string) (string, error) {
	if err := os.MkdirAll(m.outDir, 0755); err != nil {
		return "", err
	}

	outputPath := filepath.Join(m.outDir, fmt.Sprintf("final_%d.mp4", time.Now().UnixNano()))

	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter:v", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}

	logger.Info().Printf("Executing: %s %s", m.ffmpegPath, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderrStr := stderr.String(); stderrStr != "" {
			return "", fmt.Errorf("ffmpeg merge failed: %w\nStderr: %s", err, stderrStr)
		}
		return "", fmt.Errorf("ffmpeg merge failed: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("merged file not found at %s: %w", outputPath, err)
	}

	return outputPath, nil
}
