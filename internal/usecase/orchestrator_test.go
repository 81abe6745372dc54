package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/repository/memory"
)

type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, sourceURL string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubPipeline struct {
	path  string
	err   error
	calls int
}

func (s *stubPipeline) Generate(ctx context.Context, preset *domain.Preset, transcript string, mediaType domain.MediaType) (string, error) {
	s.calls++
	return s.path, s.err
}

type stubYouTubePublisher struct {
	externalID string
	err        error
	calls      int
}

func (s *stubYouTubePublisher) UploadShort(ctx context.Context, account *domain.YouTubeAccount, videoPath, title, description string) (string, error) {
	s.calls++
	return s.externalID, s.err
}

type stubInstagramPublisher struct {
	externalID   string
	err          error
	reelCalls    int
	imageCalls   int
	lastMediaURL string
}

func (s *stubInstagramPublisher) PublishReel(ctx context.Context, businessID, accessToken, videoURL, caption string) (string, error) {
	s.reelCalls++
	s.lastMediaURL = videoURL
	return s.externalID, s.err
}

func (s *stubInstagramPublisher) PublishImage(ctx context.Context, businessID, accessToken, imageURL, caption string) (string, error) {
	s.imageCalls++
	s.lastMediaURL = imageURL
	return s.externalID, s.err
}

type stubTokenSource struct {
	account *domain.InstagramAccount
	err     error
}

func (s *stubTokenSource) GetValidToken(ctx context.Context, accountID string) (*domain.InstagramAccount, error) {
	return s.account, s.err
}

type orchestratorFixture struct {
	crons        *memory.CronRepository
	executions   *memory.ExecutionRepository
	presets      *memory.PresetRepository
	transcriber  *stubTranscriber
	pipeline     *stubPipeline
	youtube      *stubYouTubePublisher
	instagram    *stubInstagramPublisher
	orchestrator *Orchestrator
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	crons := memory.NewCronRepository()
	executions := memory.NewExecutionRepository()
	presets := memory.NewPresetRepository()
	youtubeAccounts := memory.NewYouTubeAccountRepository()

	require.NoError(t, youtubeAccounts.Save(&domain.YouTubeAccount{ID: "yt-acc", Name: "channel", RefreshToken: "rt"}))

	transcriber := &stubTranscriber{text: "transcript"}
	pipeline := &stubPipeline{path: "/media/final.mp4"}
	youtube := &stubYouTubePublisher{externalID: "yt123"}
	instagram := &stubInstagramPublisher{externalID: "ig456"}
	tokens := &stubTokenSource{account: &domain.InstagramAccount{
		ID:          "ig-acc",
		Name:        "insta",
		BusinessID:  "biz1",
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
	}}

	fanout := NewFanout(executions, youtubeAccounts, tokens, youtube, instagram, "https://cdn.example.com/media")
	orchestrator := NewOrchestrator(crons, executions, presets, transcriber, pipeline, fanout)

	return &orchestratorFixture{
		crons:        crons,
		executions:   executions,
		presets:      presets,
		transcriber:  transcriber,
		pipeline:     pipeline,
		youtube:      youtube,
		instagram:    instagram,
		orchestrator: orchestrator,
	}
}

func (f *orchestratorFixture) addCron(t *testing.T, cron *domain.PublicationCron, targets ...domain.PublishTarget) *domain.PublicationCron {
	t.Helper()

	if cron.PresetID == "" {
		preset := &domain.Preset{Name: "default", VideoPrompt: "v", AudioPrompt: "a", ImagePrompt: "i"}
		require.NoError(t, f.presets.Save(preset))
		cron.PresetID = preset.ID
	}
	if cron.ScheduledAt.IsZero() {
		cron.ScheduledAt = time.Now().Add(-time.Minute)
	}
	if cron.MediaType == "" {
		cron.MediaType = domain.MediaTypeVideo
	}
	require.NoError(t, f.crons.Save(cron))

	for _, target := range targets {
		require.NoError(t, f.executions.Save(&domain.CronExecution{CronID: cron.ID, Target: target}))
	}
	return cron
}

func TestProcessDuePartialPublishFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.instagram.err = errors.New("AuthError: token rejected")

	cron := f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
		domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig-acc"},
	)

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, stored.Status)
	assert.Equal(t, "/media/final.mp4", stored.VideoPath)

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	require.Len(t, executions, 2)

	assert.Equal(t, domain.ExecutionStatusCompleted, executions[0].Status)
	assert.Equal(t, "yt123", executions[0].ExternalID)
	require.NotNil(t, executions[0].ExecutedAt)

	assert.Equal(t, domain.ExecutionStatusFailed, executions[1].Status)
	assert.NotEmpty(t, executions[1].ErrorMessage)
	assert.Empty(t, executions[1].ExternalID)
}

func TestProcessDueCompletesWhenAllPublishesFail(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.youtube.err = errors.New("quota exceeded")
	f.instagram.err = errors.New("server error")

	cron := f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
		domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig-acc"},
	)

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, stored.Status)
	assert.NotEmpty(t, stored.VideoPath)

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	for _, execution := range executions {
		assert.Equal(t, domain.ExecutionStatusFailed, execution.Status)
		assert.NotEmpty(t, execution.ErrorMessage)
	}
}

func TestProcessDueMissingSourceURL(t *testing.T) {
	f := newOrchestratorFixture(t)

	cron := f.addCron(t, &domain.PublicationCron{},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
	)

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusFailed, stored.Status)
	assert.Empty(t, stored.VideoPath)
	assert.Zero(t, f.pipeline.calls)
	assert.Zero(t, f.transcriber.calls)

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	for _, execution := range executions {
		assert.Equal(t, domain.ExecutionStatusPending, execution.Status)
	}
}

func TestProcessDuePipelineFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.pipeline.err = &domain.GenerationError{Stage: "video synthesis", Err: errors.New("timeout")}

	cron := f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
	)

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusFailed, stored.Status)
	assert.Empty(t, stored.VideoPath)
	assert.Zero(t, f.youtube.calls)

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusPending, executions[0].Status)
}

func TestProcessDueIdempotentWithoutNewWork(t *testing.T) {
	f := newOrchestratorFixture(t)

	cron := f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
	)

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))
	assert.Equal(t, 1, f.pipeline.calls)
	assert.Equal(t, 1, f.youtube.calls)

	// Second tick with no new due crons must not touch anything
	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))
	assert.Equal(t, 1, f.pipeline.calls)
	assert.Equal(t, 1, f.youtube.calls)

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, stored.Status)
}

func TestProcessDueNotDueYet(t *testing.T) {
	f := newOrchestratorFixture(t)

	f.addCron(t, &domain.PublicationCron{
		SourceURL:   "https://www.youtube.com/watch?v=abcdefghijk",
		ScheduledAt: time.Now().Add(time.Hour),
	}, domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"})

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))
	assert.Zero(t, f.pipeline.calls)
}

func TestProcessDueRejectsOverlappingTick(t *testing.T) {
	f := newOrchestratorFixture(t)

	f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"},
	)

	f.orchestrator.inProgress.Store(true)
	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))
	assert.Zero(t, f.pipeline.calls)

	f.orchestrator.inProgress.Store(false)
	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))
	assert.Equal(t, 1, f.pipeline.calls)
}

func TestProcessDueFailureIsolatedPerCron(t *testing.T) {
	f := newOrchestratorFixture(t)

	broken := f.addCron(t, &domain.PublicationCron{ScheduledAt: time.Now().Add(-2 * time.Minute)},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"})
	healthy := f.addCron(t, &domain.PublicationCron{SourceURL: "https://www.youtube.com/watch?v=abcdefghijk"},
		domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt-acc"})

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	storedBroken, err := f.crons.GetByID(broken.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusFailed, storedBroken.Status)

	storedHealthy, err := f.crons.GetByID(healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, storedHealthy.Status)
}

func TestFanoutMediaURLJoinsCleanly(t *testing.T) {
	executions := memory.NewExecutionRepository()
	youtubeAccounts := memory.NewYouTubeAccountRepository()
	instagram := &stubInstagramPublisher{externalID: "ig456"}
	tokens := &stubTokenSource{account: &domain.InstagramAccount{
		ID:          "ig-acc",
		BusinessID:  "biz1",
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
	}}

	// Base URL configured with a trailing slash must not produce "//" in the URL
	fanout := NewFanout(executions, youtubeAccounts, tokens, &stubYouTubePublisher{}, instagram, "https://cdn.example.com/media/")

	execution := &domain.CronExecution{
		CronID: "cron-1",
		Target: domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig-acc"},
	}
	require.NoError(t, executions.Save(execution))

	require.NoError(t, fanout.Run(context.Background(), execution, "/media/final.mp4", "title", "", domain.MediaTypeVideo))
	assert.Equal(t, "https://cdn.example.com/media/final.mp4", instagram.lastMediaURL)
}

func TestFanoutPhotoUsesImagePublish(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.pipeline.path = "/media/photo.png"

	cron := f.addCron(t, &domain.PublicationCron{
		SourceURL: "https://news.example.com/feed.xml",
		MediaType: domain.MediaTypePhoto,
	}, domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig-acc"})

	require.NoError(t, f.orchestrator.ProcessDue(context.Background(), time.Now()))

	assert.Equal(t, 1, f.instagram.imageCalls)
	assert.Zero(t, f.instagram.reelCalls)

	stored, err := f.crons.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, stored.Status)
}
