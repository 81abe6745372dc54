package usecase

import (
	"context"
	"fmt"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
)

// PromptGenerator produces text from a prompt via a language model
type PromptGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PhotoGenerator produces a single image file from a prompt
type PhotoGenerator interface {
	GeneratePhoto(ctx context.Context, prompt string, outDir string) (string, error)
}

// VideoGenerator produces a video file from a prompt
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string, outDir string) (string, error)
}

// SpeechSynthesizer produces a narration audio file from text
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, outDir string) (string, error)
}

// MediaMerger combines a video file and an audio file into one artifact
type MediaMerger interface {
	MergeAudioVideo(ctx context.Context, videoPath, audioPath string) (string, error)
}

// ContentPipeline transforms a transcript into a publishable media artifact.
// It performs no retries; a failure at any stage aborts the whole pipeline.
type ContentPipeline struct {
	prompts PromptGenerator
	photos  PhotoGenerator
	videos  VideoGenerator
	speech  SpeechSynthesizer
	merger  MediaMerger
	outDir  string
}

// NewContentPipeline creates a new content pipeline writing artifacts to outDir
func NewContentPipeline(prompts PromptGenerator, photos PhotoGenerator, videos VideoGenerator, speech SpeechSynthesizer, merger MediaMerger, outDir string) *ContentPipeline {
	return &ContentPipeline{
		prompts: prompts,
		photos:  photos,
		videos:  videos,
		speech:  speech,
		merger:  merger,
		outDir:  outDir,
	}
}

// Generate produces one artifact from the transcript and returns its local
// path. Errors are wrapped in domain.GenerationError carrying the stage that
// failed.
func (p *ContentPipeline) Generate(ctx context.Context, preset *domain.Preset, transcript string, mediaType domain.MediaType) (string, error) {
	if mediaType == domain.MediaTypePhoto {
		return p.generatePhoto(ctx, preset, transcript)
	}
	return p.generateVideo(ctx, preset, transcript)
}

func (p *ContentPipeline) generatePhoto(ctx context.Context, preset *domain.Preset, transcript string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nSource content:\n%s", preset.ImagePrompt, transcript)

	path, err := p.photos.GeneratePhoto(ctx, prompt, p.outDir)
	if err != nil {
		return "", &domain.GenerationError{Stage: "image", Err: err}
	}

	logger.Info().Printf("Generated photo artifact: %s", path)
	return path, nil
}

func (p *ContentPipeline) generateVideo(ctx context.Context, preset *domain.Preset, transcript string) (string, error) {
	script, err := p.prompts.GenerateText(ctx, fmt.Sprintf("%s\n\nSource content:\n%s", preset.AudioPrompt, transcript))
	if err != nil {
		return "", &domain.GenerationError{Stage: "narration script", Err: err}
	}

	visualPrompt, err := p.prompts.GenerateText(ctx, fmt.Sprintf("%s\n\nSource content:\n%s", preset.VideoPrompt, transcript))
	if err != nil {
		return "", &domain.GenerationError{Stage: "visual prompt", Err: err}
	}

	audioPath, err := p.speech.Synthesize(ctx, script, p.outDir)
	if err != nil {
		return "", &domain.GenerationError{Stage: "speech synthesis", Err: err}
	}

	videoPath, err := p.videos.GenerateVideo(ctx, visualPrompt, p.outDir)
	if err != nil {
		return "", &domain.GenerationError{Stage: "video synthesis", Err: err}
	}

	merged, err := p.merger.MergeAudioVideo(ctx, videoPath, audioPath)
	if err != nil {
		return "", &domain.GenerationError{Stage: "merge", Err: err}
	}

	logger.Info().Printf("Generated video artifact: %s", merged)
	return merged, nil
}
