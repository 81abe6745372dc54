package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/infrastructure/ffmpeg"
	"auto_publish_social/internal/infrastructure/gemini"
	"auto_publish_social/internal/infrastructure/topmediai"
)

// The concrete clients wired in cmd/main.go must keep satisfying the pipeline
// interfaces.
var (
	_ PromptGenerator   = (*gemini.Client)(nil)
	_ PhotoGenerator    = (*gemini.Client)(nil)
	_ VideoGenerator    = (*gemini.Client)(nil)
	_ SpeechSynthesizer = (*topmediai.Client)(nil)
	_ MediaMerger       = (*ffmpeg.Merger)(nil)
)

type stubPromptGen struct {
	responses []string
	err       error
	calls     int
}

func (s *stubPromptGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.responses[(s.calls-1)%len(s.responses)], nil
}

type stubPhotoGen struct {
	path string
	err  error
}

func (s *stubPhotoGen) GeneratePhoto(ctx context.Context, prompt string, outDir string) (string, error) {
	return s.path, s.err
}

type stubVideoGen struct {
	path string
	err  error
}

func (s *stubVideoGen) GenerateVideo(ctx context.Context, prompt string, outDir string) (string, error) {
	return s.path, s.err
}

type stubSpeech struct {
	path string
	err  error
}

func (s *stubSpeech) Synthesize(ctx context.Context, text string, outDir string) (string, error) {
	return s.path, s.err
}

type stubMerger struct {
	path      string
	err       error
	videoPath string
	audioPath string
}

func (s *stubMerger) MergeAudioVideo(ctx context.Context, videoPath, audioPath string) (string, error) {
	s.videoPath = videoPath
	s.audioPath = audioPath
	return s.path, s.err
}

func newPipeline(prompts *stubPromptGen, photos *stubPhotoGen, videos *stubVideoGen, speech *stubSpeech, merger *stubMerger) *ContentPipeline {
	return NewContentPipeline(prompts, photos, videos, speech, merger, "/tmp/media")
}

func TestGenerateVideoArtifact(t *testing.T) {
	prompts := &stubPromptGen{responses: []string{"narration script", "visual prompt"}}
	speech := &stubSpeech{path: "/tmp/media/speech.mp3"}
	videos := &stubVideoGen{path: "/tmp/media/segment_2.mp4"}
	merger := &stubMerger{path: "/tmp/media/final.mp4"}
	pipeline := newPipeline(prompts, &stubPhotoGen{}, videos, speech, merger)

	preset := &domain.Preset{VideoPrompt: "make it cinematic", AudioPrompt: "summarize as narration"}
	path, err := pipeline.Generate(context.Background(), preset, "transcript", domain.MediaTypeVideo)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/media/final.mp4", path)
	assert.Equal(t, 2, prompts.calls)
	assert.Equal(t, "/tmp/media/segment_2.mp4", merger.videoPath)
	assert.Equal(t, "/tmp/media/speech.mp3", merger.audioPath)
}

func TestGeneratePhotoArtifact(t *testing.T) {
	prompts := &stubPromptGen{responses: []string{"unused"}}
	photos := &stubPhotoGen{path: "/tmp/media/photo.png"}
	pipeline := newPipeline(prompts, photos, &stubVideoGen{}, &stubSpeech{}, &stubMerger{})

	preset := &domain.Preset{ImagePrompt: "poster style"}
	path, err := pipeline.Generate(context.Background(), preset, "transcript", domain.MediaTypePhoto)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/media/photo.png", path)
	assert.Zero(t, prompts.calls)
}

func TestGenerateWrapsStageErrors(t *testing.T) {
	t.Run("speech synthesis", func(t *testing.T) {
		prompts := &stubPromptGen{responses: []string{"script", "visual"}}
		speech := &stubSpeech{err: errors.New("tts quota")}
		pipeline := newPipeline(prompts, &stubPhotoGen{}, &stubVideoGen{}, speech, &stubMerger{})

		_, err := pipeline.Generate(context.Background(), &domain.Preset{}, "transcript", domain.MediaTypeVideo)
		require.Error(t, err)

		var genErr *domain.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "speech synthesis", genErr.Stage)
	})

	t.Run("video synthesis", func(t *testing.T) {
		prompts := &stubPromptGen{responses: []string{"script", "visual"}}
		videos := &stubVideoGen{err: errors.New("operation timed out")}
		pipeline := newPipeline(prompts, &stubPhotoGen{}, videos, &stubSpeech{path: "/tmp/a.mp3"}, &stubMerger{})

		_, err := pipeline.Generate(context.Background(), &domain.Preset{}, "transcript", domain.MediaTypeVideo)
		require.Error(t, err)

		var genErr *domain.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "video synthesis", genErr.Stage)
	})

	t.Run("image", func(t *testing.T) {
		photos := &stubPhotoGen{err: errors.New("blocked prompt")}
		pipeline := newPipeline(&stubPromptGen{responses: []string{"x"}}, photos, &stubVideoGen{}, &stubSpeech{}, &stubMerger{})

		_, err := pipeline.Generate(context.Background(), &domain.Preset{}, "transcript", domain.MediaTypePhoto)
		require.Error(t, err)

		var genErr *domain.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "image", genErr.Stage)
	})
}
