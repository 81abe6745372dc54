package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"auto_publish_social/config"
	httpclient "auto_publish_social/internal/infrastructure/http"
	"auto_publish_social/internal/logger"
)

// Client calls the Instagram Graph API for publishing and token exchange
type Client struct {
	baseURL      string
	appID        string
	appSecret    string
	pollInterval time.Duration
	maxPolls     int
	httpClient   *httpclient.HTTPClient
}

// NewClient creates a new Instagram Graph API client
func NewClient(cfg *config.Config, httpClient *httpclient.HTTPClient) *Client {
	return &Client{
		baseURL:      cfg.InstagramBaseURL,
		appID:        cfg.InstagramAppID,
		appSecret:    cfg.InstagramAppSecret,
		pollInterval: cfg.InstagramPollInterval,
		maxPolls:     cfg.InstagramMaxPolls,
		httpClient:   httpClient,
	}
}

// graphError is the Graph API error envelope
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// containerResponse is returned when creating a media container
type containerResponse struct {
	ID string `json:"id"`
}

// statusResponse is returned when polling a media container
type statusResponse struct {
	StatusCode string `json:"status_code"`
	ID         string `json:"id"`
}

// publishResponse is returned by media_publish
type publishResponse struct {
	ID string `json:"id"`
}

// tokenResponse is returned by the long-lived token exchange
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RefreshedToken holds the result of a long-lived token exchange
type RefreshedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// RefreshLongLivedToken exchanges an existing long-lived token for a fresh one
func (c *Client) RefreshLongLivedToken(ctx context.Context, accessToken string) (*RefreshedToken, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("fb_exchange_token", accessToken)

	endpoint := fmt.Sprintf("%s/oauth/access_token?%s", c.baseURL, params.Encode())
	var result tokenResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned an empty token")
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		// Graph sometimes omits expires_in for long-lived tokens; assume 60 days
		expiresIn = int64((60 * 24 * time.Hour).Seconds())
	}

	return &RefreshedToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// PublishReel uploads a video URL as a reel on the business account and
// returns the published media ID.
func (c *Client) PublishReel(ctx context.Context, businessID, accessToken, videoURL, caption string) (string, error) {
	params := url.Values{}
	params.Set("media_type", "REELS")
	params.Set("video_url", videoURL)
	params.Set("caption", caption)
	params.Set("access_token", accessToken)

	return c.publish(ctx, businessID, accessToken, params)
}

// PublishImage uploads an image URL as a feed post on the business account
// and returns the published media ID.
func (c *Client) PublishImage(ctx context.Context, businessID, accessToken, imageURL, caption string) (string, error) {
	params := url.Values{}
	params.Set("image_url", imageURL)
	params.Set("caption", caption)
	params.Set("access_token", accessToken)

	return c.publish(ctx, businessID, accessToken, params)
}

// publish creates the media container, waits for processing and publishes it
func (c *Client) publish(ctx context.Context, businessID, accessToken string, params url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", c.baseURL, businessID)
	var container containerResponse
	if err := c.postForm(ctx, endpoint, params, &container); err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}
	if container.ID == "" {
		return "", fmt.Errorf("media container response had no ID")
	}

	logger.Info().Printf("Instagram media container created: %s", container.ID)

	if err := c.waitForMediaProcessing(ctx, container.ID, accessToken); err != nil {
		return "", err
	}

	publishParams := url.Values{}
	publishParams.Set("creation_id", container.ID)
	publishParams.Set("access_token", accessToken)

	publishEndpoint := fmt.Sprintf("%s/%s/media_publish", c.baseURL, businessID)
	var published publishResponse
	if err := c.postForm(ctx, publishEndpoint, publishParams, &published); err != nil {
		return "", fmt.Errorf("failed to publish media container %s: %w", container.ID, err)
	}

	return published.ID, nil
}

// waitForMediaProcessing polls the container until Graph reports FINISHED,
// giving up after the configured poll budget.
func (c *Client) waitForMediaProcessing(ctx context.Context, containerID, accessToken string) error {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", c.baseURL, containerID, url.QueryEscape(accessToken))

	for polls := 0; polls < c.maxPolls; polls++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}

		var status statusResponse
		if err := c.getJSON(ctx, endpoint, &status); err != nil {
			return fmt.Errorf("failed to poll media container %s: %w", containerID, err)
		}

		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return fmt.Errorf("media container %s failed processing", containerID)
		}
	}

	return fmt.Errorf("media container %s not ready after %d polls", containerID, c.maxPolls)
}

// postForm sends a POST with URL-encoded params and decodes the JSON response
func (c *Client) postForm(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// getJSON sends a GET and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr graphError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph API error (%d, code %d): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse graph API response: %w", err)
	}
	return nil
}
