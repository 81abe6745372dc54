package rss

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"auto_publish_social/internal/logger"
)

// Client reads article text out of RSS and Atom feeds
type Client struct {
	parser *gofeed.Parser
}

// NewClient creates a new feed client
func NewClient() *Client {
	return &Client{parser: gofeed.NewParser()}
}

// LatestItemText fetches the feed and returns the text of its newest item.
// Title and body are joined so downstream prompt generation sees both.
func (c *Client) LatestItemText(ctx context.Context, feedURL string) (string, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return "", fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	if len(feed.Items) == 0 {
		return "", fmt.Errorf("feed %s has no items", feedURL)
	}

	item := feed.Items[0]
	logger.Info().Printf("Using feed item: %s", item.Title)

	body := item.Content
	if body == "" {
		body = item.Description
	}

	text := strings.TrimSpace(strings.Join([]string{item.Title, body}, "\n\n"))
	if text == "" {
		return "", fmt.Errorf("feed item %s has no text content", item.Link)
	}

	return text, nil
}
