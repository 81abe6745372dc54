package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genai"

	"auto_publish_social/config"
	"auto_publish_social/internal/logger"
)

// Client wraps the Gemini API for text, image and Veo video generation
type Client struct {
	client       *genai.Client
	textModel    string
	imageModel   string
	videoModel   string
	segments     int
	pollInterval time.Duration
	maxPolls     int
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:       client,
		textModel:    cfg.GeminiTextModel,
		imageModel:   cfg.GeminiImageModel,
		videoModel:   cfg.GeminiVideoModel,
		segments:     cfg.VideoSegments,
		pollInterval: cfg.GenerationPollInterval,
		maxPolls:     cfg.GenerationMaxPolls,
	}, nil
}

// GenerateText runs a single text prompt through the configured text model
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("text model returned an empty response")
	}
	return text, nil
}

// GeneratePhoto asks the image model for a single image and writes it to outDir.
// Returns the local file path.
func (c *Client) GeneratePhoto(ctx context.Context, prompt string, outDir string) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return "", err
			}
			outputPath := filepath.Join(outDir, fmt.Sprintf("photo_%d.png", time.Now().UnixNano()))
			if err := os.WriteFile(outputPath, part.InlineData.Data, 0644); err != nil {
				return "", fmt.Errorf("failed to write generated image: %w", err)
			}
			return outputPath, nil
		}
	}

	return "", fmt.Errorf("image model returned no image data")
}

// GenerateVideo produces a vertical video from the prompt, chaining Veo
// segments so later segments continue from the previous one. Returns the
// local path of the final segment.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	videoConfig := &genai.GenerateVideosConfig{
		AspectRatio: "9:16",
	}

	var lastVideo *genai.Video
	var lastPath string

	for segment := 0; segment < c.segments; segment++ {
		var op *genai.GenerateVideosOperation
		var err error

		if lastVideo == nil {
			op, err = c.client.Models.GenerateVideos(ctx, c.videoModel, prompt, nil, videoConfig)
		} else {
			// Continue the scene from the previous segment's footage
			op, err = c.client.Models.GenerateVideosFromSource(ctx, c.videoModel, &genai.GenerateVideosSource{
				Prompt: prompt,
				Video:  lastVideo,
			}, videoConfig)
		}
		if err != nil {
			return "", fmt.Errorf("video generation request failed (segment %d): %w", segment+1, err)
		}

		logger.Info().Printf("Veo operation started for segment %d/%d: %s", segment+1, c.segments, op.Name)

		op, err = c.waitForOperation(ctx, op)
		if err != nil {
			return "", fmt.Errorf("video generation failed (segment %d): %w", segment+1, err)
		}

		if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
			return "", fmt.Errorf("video generation returned no videos (segment %d)", segment+1)
		}

		video := op.Response.GeneratedVideos[0].Video
		if _, err := c.client.Files.Download(ctx, video, nil); err != nil {
			return "", fmt.Errorf("failed to download generated video (segment %d): %w", segment+1, err)
		}

		outputPath := filepath.Join(outDir, fmt.Sprintf("segment_%d.mp4", segment+1))
		if err := os.WriteFile(outputPath, video.VideoBytes, 0644); err != nil {
			return "", fmt.Errorf("failed to write generated video: %w", err)
		}

		lastVideo = video
		lastPath = outputPath
	}

	return lastPath, nil
}

// waitForOperation polls a Veo operation until it completes or the poll
// budget runs out.
func (c *Client) waitForOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	for polls := 0; !op.Done; polls++ {
		if polls >= c.maxPolls {
			return nil, fmt.Errorf("operation %s did not complete after %d polls", op.Name, c.maxPolls)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		var err error
		op, err = c.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll operation: %w", err)
		}
	}

	if len(op.Error) > 0 {
		return nil, fmt.Errorf("operation %s failed: %v", op.Name, op.Error)
	}

	return op, nil
}
