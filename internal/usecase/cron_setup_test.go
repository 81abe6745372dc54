package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/repository/memory"
)

type setupFixture struct {
	setup      *CronSetup
	crons      *memory.CronRepository
	executions *memory.ExecutionRepository
	presetID   string
}

func newSetupFixture(t *testing.T) *setupFixture {
	t.Helper()

	crons := memory.NewCronRepository()
	executions := memory.NewExecutionRepository()
	presets := memory.NewPresetRepository()
	instagramAccounts := memory.NewInstagramAccountRepository()
	youtubeAccounts := memory.NewYouTubeAccountRepository()

	preset := &domain.Preset{Name: "default"}
	require.NoError(t, presets.Save(preset))

	require.NoError(t, instagramAccounts.Save(&domain.InstagramAccount{Name: "insta-a", BusinessID: "b1", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, instagramAccounts.Save(&domain.InstagramAccount{Name: "insta-b", BusinessID: "b2", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, youtubeAccounts.Save(&domain.YouTubeAccount{Name: "channel", RefreshToken: "rt"}))

	setup := NewCronSetup(memory.NewSetupStore(crons, executions), presets, instagramAccounts, youtubeAccounts)
	return &setupFixture{setup: setup, crons: crons, executions: executions, presetID: preset.ID}
}

func TestCreateCronFansOutToAllAccounts(t *testing.T) {
	f := newSetupFixture(t)

	cron, err := f.setup.Create(SetupRequest{
		PresetID:  f.presetID,
		SourceURL: "https://www.youtube.com/watch?v=abcdefghijk",
		Instagram: true,
		YouTube:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CronStatusGenerating, cron.Status)
	assert.Equal(t, domain.MediaTypeVideo, cron.MediaType)
	assert.Equal(t, domain.AIModelVeo, cron.AIModel)
	assert.False(t, cron.ScheduledAt.IsZero())

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	require.Len(t, executions, 3)

	byPlatform := map[domain.Platform]int{}
	for _, execution := range executions {
		assert.Equal(t, domain.ExecutionStatusPending, execution.Status)
		assert.NotEmpty(t, execution.Target.AccountID)
		byPlatform[execution.Target.Platform]++
	}
	assert.Equal(t, 2, byPlatform[domain.PlatformInstagram])
	assert.Equal(t, 1, byPlatform[domain.PlatformYouTube])
}

func TestCreateCronSinglePlatform(t *testing.T) {
	f := newSetupFixture(t)

	cron, err := f.setup.Create(SetupRequest{
		PresetID:  f.presetID,
		SourceURL: "https://news.example.com/feed.xml",
		MediaType: domain.MediaTypePhoto,
		YouTube:   true,
	})
	require.NoError(t, err)

	executions, err := f.executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, domain.PlatformYouTube, executions[0].Target.Platform)
}

func TestCreateCronValidation(t *testing.T) {
	f := newSetupFixture(t)

	_, err := f.setup.Create(SetupRequest{SourceURL: "https://example.com", YouTube: true})
	assert.Error(t, err)

	_, err = f.setup.Create(SetupRequest{PresetID: f.presetID, YouTube: true})
	assert.Error(t, err)

	_, err = f.setup.Create(SetupRequest{PresetID: f.presetID, SourceURL: "https://example.com"})
	assert.Error(t, err)

	_, err = f.setup.Create(SetupRequest{PresetID: "missing", SourceURL: "https://example.com", YouTube: true})
	assert.Error(t, err)
}
