package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
)

// SetupRequest describes a new publication cron and which platforms it
// fans out to.
type SetupRequest struct {
	PresetID    string
	Title       string
	Description string
	Interval    string
	SourceURL   string
	MediaType   domain.MediaType
	AIModel     domain.AIModel
	Instagram   bool
	YouTube     bool
}

// CronSetup creates crons together with one execution per registered account
// on each requested platform.
type CronSetup struct {
	store             domain.SetupStore
	presets           domain.PresetRepository
	instagramAccounts domain.InstagramAccountRepository
	youtubeAccounts   domain.YouTubeAccountRepository
	now               func() time.Time
}

// NewCronSetup creates a new cron setup service
func NewCronSetup(store domain.SetupStore, presets domain.PresetRepository, instagramAccounts domain.InstagramAccountRepository, youtubeAccounts domain.YouTubeAccountRepository) *CronSetup {
	return &CronSetup{
		store:             store,
		presets:           presets,
		instagramAccounts: instagramAccounts,
		youtubeAccounts:   youtubeAccounts,
		now:               time.Now,
	}
}

// Create validates the request and persists the cron plus its executions in
// one transaction. The cron is created due immediately (scheduledAt = now,
// status = generating) so the next tick picks it up.
func (s *CronSetup) Create(req SetupRequest) (*domain.PublicationCron, error) {
	if req.PresetID == "" {
		return nil, fmt.Errorf("preset ID is required")
	}
	if req.SourceURL == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	if !req.Instagram && !req.YouTube {
		return nil, fmt.Errorf("at least one platform must be selected")
	}

	preset, err := s.presets.GetByID(req.PresetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preset: %w", err)
	}
	if preset == nil {
		return nil, fmt.Errorf("preset %s not found", req.PresetID)
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = domain.MediaTypeVideo
	}
	aiModel := req.AIModel
	if aiModel == "" {
		aiModel = domain.AIModelVeo
	}

	now := s.now()
	cron := &domain.PublicationCron{
		ID:          uuid.NewString(),
		PresetID:    req.PresetID,
		Title:       req.Title,
		Description: req.Description,
		Interval:    req.Interval,
		SourceURL:   req.SourceURL,
		MediaType:   mediaType,
		AIModel:     aiModel,
		ScheduledAt: now,
		Status:      domain.CronStatusGenerating,
		CreatedAt:   now,
	}

	var executions []*domain.CronExecution

	if req.Instagram {
		accounts, err := s.instagramAccounts.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load instagram accounts: %w", err)
		}
		for _, account := range accounts {
			executions = append(executions, &domain.CronExecution{
				ID:     uuid.NewString(),
				CronID: cron.ID,
				Target: domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: account.ID},
				Status: domain.ExecutionStatusPending,
			})
		}
	}

	if req.YouTube {
		accounts, err := s.youtubeAccounts.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load youtube accounts: %w", err)
		}
		for _, account := range accounts {
			executions = append(executions, &domain.CronExecution{
				ID:     uuid.NewString(),
				CronID: cron.ID,
				Target: domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: account.ID},
				Status: domain.ExecutionStatusPending,
			})
		}
	}

	if len(executions) == 0 {
		return nil, fmt.Errorf("no accounts registered for the selected platforms")
	}

	if err := s.store.CreateCronWithExecutions(cron, executions); err != nil {
		return nil, fmt.Errorf("failed to create cron: %w", err)
	}

	logger.Info().Printf("Created cron %s with %d execution(s)", cron.ID, len(executions))
	return cron, nil
}
