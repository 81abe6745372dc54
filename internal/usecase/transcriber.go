package usecase

import (
	"context"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/infrastructure/downloader"
	"auto_publish_social/internal/logger"
)

// AudioDownloader extracts a local audio file from a video source URL
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, sourceURL string) (string, error)
}

// SpeechTranscriber converts a local audio file into text
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// FeedReader pulls article text from an RSS/Atom feed URL
type FeedReader interface {
	LatestItemText(ctx context.Context, feedURL string) (string, error)
}

// Transcriber turns a cron's source URL into transcript text, routing video
// URLs through audio extraction + speech recognition and anything else
// through feed parsing.
type Transcriber struct {
	downloader AudioDownloader
	speech     SpeechTranscriber
	feeds      FeedReader
}

// NewTranscriber creates a new transcriber
func NewTranscriber(dl AudioDownloader, speech SpeechTranscriber, feeds FeedReader) *Transcriber {
	return &Transcriber{
		downloader: dl,
		speech:     speech,
		feeds:      feeds,
	}
}

// Transcribe returns the transcript text for a source URL. Failures are
// wrapped in domain.TranscriptionError so callers can distinguish source
// acquisition problems from generation problems.
func (t *Transcriber) Transcribe(ctx context.Context, sourceURL string) (string, error) {
	if downloader.IsYouTubeURL(sourceURL) {
		audioPath, err := t.downloader.DownloadAudio(ctx, sourceURL)
		if err != nil {
			return "", &domain.TranscriptionError{Err: err}
		}

		text, err := t.speech.Transcribe(ctx, audioPath)
		if err != nil {
			return "", &domain.TranscriptionError{Err: err}
		}
		return text, nil
	}

	logger.Info().Printf("Source %s is not a video URL, reading as feed", sourceURL)

	text, err := t.feeds.LatestItemText(ctx, sourceURL)
	if err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}
	return text, nil
}
