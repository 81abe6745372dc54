package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
)

// YouTubePublisher uploads an artifact to a YouTube channel
type YouTubePublisher interface {
	UploadShort(ctx context.Context, account *domain.YouTubeAccount, videoPath, title, description string) (string, error)
}

// InstagramPublisher publishes an artifact on an Instagram business account
type InstagramPublisher interface {
	PublishReel(ctx context.Context, businessID, accessToken, videoURL, caption string) (string, error)
	PublishImage(ctx context.Context, businessID, accessToken, imageURL, caption string) (string, error)
}

// InstagramTokenSource yields an account with a usable access token
type InstagramTokenSource interface {
	GetValidToken(ctx context.Context, accountID string) (*domain.InstagramAccount, error)
}

// Fanout publishes one artifact to one target account at a time, recording
// the outcome on the execution. A failed publish never propagates: it is
// persisted on the execution and swallowed so sibling executions still run.
type Fanout struct {
	executions      domain.ExecutionRepository
	youtubeAccounts domain.YouTubeAccountRepository
	tokens          InstagramTokenSource
	youtube         YouTubePublisher
	instagram       InstagramPublisher
	mediaBaseURL    string
	now             func() time.Time
}

// NewFanout creates a new execution fan-out. mediaBaseURL is the public URL
// prefix under which files in the media directory are served; Instagram
// requires a reachable URL rather than an upload.
func NewFanout(executions domain.ExecutionRepository, youtubeAccounts domain.YouTubeAccountRepository, tokens InstagramTokenSource, youtube YouTubePublisher, instagram InstagramPublisher, mediaBaseURL string) *Fanout {
	return &Fanout{
		executions:      executions,
		youtubeAccounts: youtubeAccounts,
		tokens:          tokens,
		youtube:         youtube,
		instagram:       instagram,
		mediaBaseURL:    mediaBaseURL,
		now:             time.Now,
	}
}

// Run publishes the artifact for a single execution and persists the outcome.
// The returned error only reports persistence problems; publish failures are
// recorded on the execution and swallowed.
func (f *Fanout) Run(ctx context.Context, execution *domain.CronExecution, artifactPath, title, description string, mediaType domain.MediaType) error {
	if err := f.executions.MarkProcessing(execution.ID); err != nil {
		return fmt.Errorf("failed to mark execution %s processing: %w", execution.ID, err)
	}

	externalID, err := f.publish(ctx, execution, artifactPath, title, description, mediaType)
	if err != nil {
		logger.Error().Printf("Execution %s failed on %s account %s: %v", execution.ID, execution.Target.Platform, execution.Target.AccountID, err)
		if markErr := f.executions.MarkFailed(execution.ID, err.Error()); markErr != nil {
			return fmt.Errorf("failed to mark execution %s failed: %w", execution.ID, markErr)
		}
		return nil
	}

	if err := f.executions.MarkCompleted(execution.ID, externalID, f.now()); err != nil {
		return fmt.Errorf("failed to mark execution %s completed: %w", execution.ID, err)
	}

	logger.Info().Printf("Execution %s published to %s, external ID %s", execution.ID, execution.Target.Platform, externalID)
	return nil
}

// publish dispatches on the execution's target platform
func (f *Fanout) publish(ctx context.Context, execution *domain.CronExecution, artifactPath, title, description string, mediaType domain.MediaType) (string, error) {
	switch execution.Target.Platform {
	case domain.PlatformYouTube:
		account, err := f.youtubeAccounts.GetByID(execution.Target.AccountID)
		if err != nil {
			return "", fmt.Errorf("failed to load youtube account: %w", err)
		}
		if account == nil {
			return "", fmt.Errorf("youtube account %s: %w", execution.Target.AccountID, domain.ErrAccountNotFound)
		}
		return f.youtube.UploadShort(ctx, account, artifactPath, title, description)

	case domain.PlatformInstagram:
		account, err := f.tokens.GetValidToken(ctx, execution.Target.AccountID)
		if err != nil {
			return "", err
		}

		mediaURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(f.mediaBaseURL, "/"), filepath.Base(artifactPath))
		caption := title
		if description != "" {
			caption = fmt.Sprintf("%s\n\n%s", title, description)
		}

		if mediaType == domain.MediaTypePhoto {
			return f.instagram.PublishImage(ctx, account.BusinessID, account.AccessToken, mediaURL, caption)
		}
		return f.instagram.PublishReel(ctx, account.BusinessID, account.AccessToken, mediaURL, caption)

	default:
		return "", fmt.Errorf("unsupported publish platform %q", execution.Target.Platform)
	}
}
