package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"auto_publish_social/config"
	httpclient "auto_publish_social/internal/infrastructure/http"
	"auto_publish_social/internal/logger"
)

// Client calls the OpenAI audio transcription API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.HTTPClient
}

// NewClient creates a new OpenAI client
func NewClient(cfg *config.Config, httpClient *httpclient.HTTPClient) *Client {
	return &Client{
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    cfg.OpenAIBaseURL,
		httpClient: httpClient,
	}
}

// transcriptionResponse is the JSON body returned by /audio/transcriptions
type transcriptionResponse struct {
	Text string `json:"text"`
}

// errorResponse is the JSON error envelope returned on non-2xx statuses
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Transcribe uploads a local audio file to Whisper and returns the transcript text
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy audio into request: %w", err)
	}
	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/audio/transcriptions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.Info().Printf("Transcribing audio file: %s", audioPath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("transcription API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("transcription API returned status %d", resp.StatusCode)
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	return result.Text, nil
}
