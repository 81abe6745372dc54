package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// SetupStore creates a cron with its executions in one transaction.
type SetupStore struct {
	db *sql.DB
}

// NewSetupStore creates a new SetupStore backed by SQLite.
func NewSetupStore(db *sql.DB) *SetupStore {
	return &SetupStore{db: db}
}

// CreateCronWithExecutions inserts the cron and one execution row per target
// atomically; either everything is visible or nothing is.
func (s *SetupStore) CreateCronWithExecutions(cron *domain.PublicationCron, executions []*domain.CronExecution) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin setup transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if cron.ID == "" {
		cron.ID = uuid.NewString()
		cron.CreatedAt = now
	}
	if cron.Status == "" {
		cron.Status = domain.CronStatusGenerating
	}

	if _, err := tx.Exec(`INSERT INTO publication_crons
		(id, preset_id, title, description, interval, source_url, video_path, media_type,
			ai_model, scheduled_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cron.ID, cron.PresetID, cron.Title, cron.Description, cron.Interval, cron.SourceURL,
		cron.VideoPath, string(cron.MediaType), string(cron.AIModel), cron.ScheduledAt.UTC(),
		string(cron.Status), cron.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert cron: %w", err)
	}

	for i, execution := range executions {
		if execution.ID == "" {
			execution.ID = uuid.NewString()
		}
		execution.CronID = cron.ID
		if execution.Status == "" {
			execution.Status = domain.ExecutionStatusPending
		}
		if _, err := tx.Exec(`INSERT INTO cron_executions
			(id, cron_id, platform, account_id, status, external_id, error_message, executed_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			execution.ID, execution.CronID, string(execution.Target.Platform), execution.Target.AccountID,
			string(execution.Status), execution.ExternalID, execution.ErrorMessage,
			nullableTime(execution.ExecutedAt), i); err != nil {
			return fmt.Errorf("insert execution: %w", err)
		}
	}

	return tx.Commit()
}
