package topmediai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"auto_publish_social/config"
	"auto_publish_social/internal/infrastructure/downloader"
	httpclient "auto_publish_social/internal/infrastructure/http"
	"auto_publish_social/internal/logger"
)

// Client calls the TopMediAi text-to-speech API
type Client struct {
	apiKey     string
	baseURL    string
	speakerID  string
	httpClient *httpclient.HTTPClient
	downloader *downloader.Service
}

// NewClient creates a new TopMediAi client
func NewClient(cfg *config.Config, httpClient *httpclient.HTTPClient, dl *downloader.Service) *Client {
	return &Client{
		apiKey:     cfg.TopMediAiAPIKey,
		baseURL:    cfg.TopMediAiBaseURL,
		speakerID:  cfg.TTSSpeakerID,
		httpClient: httpClient,
		downloader: dl,
	}
}

// speechRequest is the /text2speech request body
type speechRequest struct {
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Emotion   string `json:"emotion"`
	Audiotype string `json:"audiotype"`
}

// speechResponse is the /text2speech response body
type speechResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    struct {
		OssURL string `json:"oss_url"`
	} `json:"data"`
}

// voicesResponse is the /voices_list response body
type voicesResponse struct {
	Status int `json:"status"`
	Data   struct {
		Voices []Voice `json:"Voice"`
	} `json:"data"`
}

// Voice describes an available TTS speaker
type Voice struct {
	Speaker string `json:"speaker"`
	Name    string `json:"name"`
}

// ListVoices returns the available speakers
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	url := fmt.Sprintf("%s/voices_list", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices list request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices list returned status %d", resp.StatusCode)
	}

	var result voicesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse voices list: %w", err)
	}

	return result.Data.Voices, nil
}

// Synthesize converts text to speech and downloads the resulting audio into
// outDir. Returns the local file path.
func (c *Client) Synthesize(ctx context.Context, text string, outDir string) (string, error) {
	speaker := c.speakerID
	if speaker == "" {
		voices, err := c.ListVoices(ctx)
		if err != nil {
			return "", fmt.Errorf("no speaker configured and voices list failed: %w", err)
		}
		if len(voices) == 0 {
			return "", fmt.Errorf("no speaker configured and voices list is empty")
		}
		speaker = voices[0].Speaker
		logger.Info().Printf("No TTS speaker configured, falling back to %q", voices[0].Name)
	}

	payload, err := json.Marshal(speechRequest{
		Text:      text,
		Speaker:   speaker,
		Emotion:   "Neutral",
		Audiotype: "mp3",
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/text2speech", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech synthesis returned status %d: %s", resp.StatusCode, string(body))
	}

	var result speechResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse speech response: %w", err)
	}
	if result.Data.OssURL == "" {
		return "", fmt.Errorf("speech synthesis returned no audio URL: %s", result.Message)
	}

	outputPath := filepath.Join(outDir, fmt.Sprintf("speech_%d.mp3", time.Now().UnixNano()))
	if err := c.downloader.DownloadFile(ctx, result.Data.OssURL, outputPath); err != nil {
		return "", fmt.Errorf("failed to download synthesized audio: %w", err)
	}

	return outputPath, nil
}
