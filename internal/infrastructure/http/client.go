package infrastructure

import (
	"net/http"
	"time"

	"auto_publish_social/config"
)

// HTTPClient provides a shared HTTP client with connection pooling for all
// external API calls (Instagram Graph, OpenAI, TopMediAi).
type HTTPClient struct {
	client *http.Client
	config *config.Config
}

// NewHTTPClient creates a new pooled HTTP client for I/O bound operations
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.HTTPClientTimeout,
	}

	return &HTTPClient{
		client: client,
		config: cfg,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// Do performs a custom HTTP request
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// GetClient returns the underlying HTTP client
func (c *HTTPClient) GetClient() *http.Client {
	return c.client
}
