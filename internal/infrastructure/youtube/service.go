package youtube

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"auto_publish_social/config"
	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
)

// maxTitleLength is YouTube's hard limit minus room for the shorts suffix
const maxTitleLength = 90

// Publisher uploads shorts on behalf of stored YouTube accounts
type Publisher struct {
	clientID     string
	clientSecret string
}

// NewPublisher creates a new YouTube publisher
func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		clientID:     cfg.YouTubeClientID,
		clientSecret: cfg.YouTubeClientSecret,
	}
}

// UploadShort uploads the video at videoPath as a public short on the given
// account's channel and returns the YouTube video ID.
func (p *Publisher) UploadShort(ctx context.Context, account *domain.YouTubeAccount, videoPath, title, description string) (string, error) {
	if account.RefreshToken == "" {
		return "", fmt.Errorf("account %s has no refresh token", account.Name)
	}

	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return "", err
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       shortsTitle(title),
			Description: description,
			CategoryId:  "17",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	logger.Info().Printf("Uploading short %q to channel %s", video.Snippet.Title, account.Name)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(file)

	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload failed: %w", err)
	}

	return uploaded.Id, nil
}

// serviceFor builds an authenticated YouTube service from the account's
// stored refresh token.
func (p *Publisher) serviceFor(ctx context.Context, account *domain.YouTubeAccount) (*youtube.Service, error) {
	clientID := account.ClientID
	if clientID == "" {
		clientID = p.clientID
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
	}
	if account.ExpiryDate != nil {
		token.Expiry = *account.ExpiryDate
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return svc, nil
}

// shortsTitle clamps the title and makes sure the shorts tag is present
func shortsTitle(title string) string {
	const suffix = " #shorts"

	title = strings.TrimSpace(title)
	if strings.Contains(strings.ToLower(title), "#shorts") {
		if len(title) > maxTitleLength+len(suffix) {
			title = title[:maxTitleLength+len(suffix)]
		}
		return title
	}

	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return title + suffix
}
