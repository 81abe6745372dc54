package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_publish_social/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open("sqlite3:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPreset(t *testing.T, db *sql.DB) *domain.Preset {
	t.Helper()

	preset := &domain.Preset{Name: "default", ImagePrompt: "i", VideoPrompt: "v", AudioPrompt: "a"}
	require.NoError(t, NewPresetRepository(db).Save(preset))
	return preset
}

func TestCronRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewCronRepository(db)
	preset := seedPreset(t, db)

	cron := &domain.PublicationCron{
		PresetID:    preset.ID,
		Title:       "daily recap",
		SourceURL:   "https://www.youtube.com/watch?v=abcdefghijk",
		MediaType:   domain.MediaTypeVideo,
		AIModel:     domain.AIModelVeo,
		ScheduledAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Save(cron))
	require.NotEmpty(t, cron.ID)

	stored, err := repo.GetByID(cron.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, cron.Title, stored.Title)
	assert.Equal(t, cron.SourceURL, stored.SourceURL)
	assert.Equal(t, domain.CronStatusGenerating, stored.Status)
	assert.Empty(t, stored.VideoPath)

	missing, err := repo.GetByID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCronRepositoryClaimDue(t *testing.T) {
	db := openTestDB(t)
	repo := NewCronRepository(db)
	preset := seedPreset(t, db)

	now := time.Now().UTC()

	due := &domain.PublicationCron{PresetID: preset.ID, Title: "due", MediaType: domain.MediaTypeVideo, AIModel: domain.AIModelVeo, ScheduledAt: now.Add(-time.Minute)}
	future := &domain.PublicationCron{PresetID: preset.ID, Title: "future", MediaType: domain.MediaTypeVideo, AIModel: domain.AIModelVeo, ScheduledAt: now.Add(time.Hour)}
	done := &domain.PublicationCron{PresetID: preset.ID, Title: "done", MediaType: domain.MediaTypeVideo, AIModel: domain.AIModelVeo, ScheduledAt: now.Add(-time.Hour), Status: domain.CronStatusCompleted}
	require.NoError(t, repo.Save(due))
	require.NoError(t, repo.Save(future))
	require.NoError(t, repo.Save(done))

	claimed, err := repo.ClaimDue(now)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, due.ID, claimed[0].ID)
	assert.Equal(t, domain.CronStatusProcessing, claimed[0].Status)

	stored, err := repo.GetByID(due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusProcessing, stored.Status)

	// A second claim must find nothing; the first claim flipped the status
	claimed, err = repo.ClaimDue(now)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestCronRepositoryUpdateArtifact(t *testing.T) {
	db := openTestDB(t)
	repo := NewCronRepository(db)
	preset := seedPreset(t, db)

	cron := &domain.PublicationCron{PresetID: preset.ID, Title: "t", MediaType: domain.MediaTypePhoto, AIModel: domain.AIModelVeo, ScheduledAt: time.Now().UTC()}
	require.NoError(t, repo.Save(cron))

	require.NoError(t, repo.UpdateArtifact(cron.ID, "/media/final.mp4", domain.CronStatusPending))

	stored, err := repo.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/final.mp4", stored.VideoPath)
	assert.Equal(t, domain.CronStatusPending, stored.Status)

	require.NoError(t, repo.UpdateStatus(cron.ID, domain.CronStatusCompleted))
	stored, err = repo.GetByID(cron.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, stored.Status)
}

func TestExecutionRepositoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	crons := NewCronRepository(db)
	executions := NewExecutionRepository(db)
	preset := seedPreset(t, db)

	cron := &domain.PublicationCron{PresetID: preset.ID, Title: "t", MediaType: domain.MediaTypeVideo, AIModel: domain.AIModelVeo, ScheduledAt: time.Now().UTC()}
	require.NoError(t, crons.Save(cron))

	first := &domain.CronExecution{CronID: cron.ID, Target: domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt1"}}
	second := &domain.CronExecution{CronID: cron.ID, Target: domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig1"}}
	require.NoError(t, executions.Save(first))
	require.NoError(t, executions.Save(second))

	loaded, err := executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, domain.PlatformYouTube, loaded[0].Target.Platform)
	assert.Equal(t, domain.PlatformInstagram, loaded[1].Target.Platform)
	assert.Equal(t, domain.ExecutionStatusPending, loaded[0].Status)

	require.NoError(t, executions.MarkProcessing(first.ID))
	executedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, executions.MarkCompleted(first.ID, "yt123", executedAt))
	require.NoError(t, executions.MarkFailed(second.ID, "token rejected"))

	loaded, err = executions.GetByCronID(cron.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionStatusCompleted, loaded[0].Status)
	assert.Equal(t, "yt123", loaded[0].ExternalID)
	require.NotNil(t, loaded[0].ExecutedAt)

	assert.Equal(t, domain.ExecutionStatusFailed, loaded[1].Status)
	assert.Equal(t, "token rejected", loaded[1].ErrorMessage)
	assert.Nil(t, loaded[1].ExecutedAt)
}

func TestSetupStoreCreatesCronWithExecutions(t *testing.T) {
	db := openTestDB(t)
	store := NewSetupStore(db)
	crons := NewCronRepository(db)
	executions := NewExecutionRepository(db)
	preset := seedPreset(t, db)

	cron := &domain.PublicationCron{
		ID:          "cron-1",
		PresetID:    preset.ID,
		Title:       "t",
		MediaType:   domain.MediaTypeVideo,
		AIModel:     domain.AIModelVeo,
		ScheduledAt: time.Now().UTC(),
		Status:      domain.CronStatusGenerating,
		CreatedAt:   time.Now().UTC(),
	}
	batch := []*domain.CronExecution{
		{ID: "exe-1", CronID: cron.ID, Target: domain.PublishTarget{Platform: domain.PlatformYouTube, AccountID: "yt1"}, Status: domain.ExecutionStatusPending},
		{ID: "exe-2", CronID: cron.ID, Target: domain.PublishTarget{Platform: domain.PlatformInstagram, AccountID: "ig1"}, Status: domain.ExecutionStatusPending},
	}

	require.NoError(t, store.CreateCronWithExecutions(cron, batch))

	stored, err := crons.GetByID(cron.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	loaded, err := executions.GetByCronID(cron.ID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestInstagramAccountRepositoryUpdateToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewInstagramAccountRepository(db)

	account := &domain.InstagramAccount{
		Name:        "brand",
		BusinessID:  "biz1",
		AccessToken: "old",
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second),
	}
	require.NoError(t, repo.Save(account))

	newExpiry := time.Now().UTC().Add(60 * 24 * time.Hour).Truncate(time.Second)
	require.NoError(t, repo.UpdateToken(account.ID, "fresh", newExpiry))

	stored, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.AccessToken)
	assert.Equal(t, newExpiry, stored.ExpiresAt.UTC())
}

func TestYouTubeAccountRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewYouTubeAccountRepository(db)

	account := &domain.YouTubeAccount{Name: "channel", RefreshToken: "rt", ClientID: "cid"}
	require.NoError(t, repo.Save(account))
	require.NotEmpty(t, account.ID)

	stored, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "rt", stored.RefreshToken)
	assert.Nil(t, stored.ExpiryDate)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
