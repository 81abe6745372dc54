package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

const executionColumns = `id, cron_id, platform, account_id, status, external_id, error_message, executed_at`

// ExecutionRepository is a SQLite implementation of domain.ExecutionRepository.
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new ExecutionRepository backed by SQLite.
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// GetByCronID returns all executions for a cron in insertion order.
func (r *ExecutionRepository) GetByCronID(cronID string) ([]*domain.CronExecution, error) {
	rows, err := r.db.Query(`SELECT `+executionColumns+` FROM cron_executions
		WHERE cron_id = ? ORDER BY position ASC, id ASC`, cronID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*domain.CronExecution
	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, execution)
	}

	return executions, rows.Err()
}

// GetByID returns an execution by ID.
func (r *ExecutionRepository) GetByID(id string) (*domain.CronExecution, error) {
	row := r.db.QueryRow(`SELECT `+executionColumns+` FROM cron_executions WHERE id = ?`, id)
	return scanExecution(row)
}

// Save inserts or updates an execution.
func (r *ExecutionRepository) Save(execution *domain.CronExecution) error {
	if execution.ID == "" {
		execution.ID = uuid.NewString()
	}
	if execution.Status == "" {
		execution.Status = domain.ExecutionStatusPending
	}

	_, err := r.db.Exec(`INSERT INTO cron_executions
		(id, cron_id, platform, account_id, status, external_id, error_message, executed_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(position) + 1 FROM cron_executions WHERE cron_id = ?), 0))
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			external_id = excluded.external_id,
			error_message = excluded.error_message,
			executed_at = excluded.executed_at`,
		execution.ID, execution.CronID, string(execution.Target.Platform), execution.Target.AccountID,
		string(execution.Status), execution.ExternalID, execution.ErrorMessage,
		nullableTime(execution.ExecutedAt), execution.CronID)
	return err
}

// MarkProcessing flips the execution to processing.
func (r *ExecutionRepository) MarkProcessing(id string) error {
	_, err := r.db.Exec(`UPDATE cron_executions SET status = ? WHERE id = ?`,
		domain.ExecutionStatusProcessing, id)
	return err
}

// MarkCompleted records a successful publication.
func (r *ExecutionRepository) MarkCompleted(id string, externalID string, executedAt time.Time) error {
	_, err := r.db.Exec(`UPDATE cron_executions SET status = ?, external_id = ?, executed_at = ? WHERE id = ?`,
		domain.ExecutionStatusCompleted, externalID, executedAt.UTC(), id)
	return err
}

// MarkFailed records a failed publication attempt.
func (r *ExecutionRepository) MarkFailed(id string, errorMessage string) error {
	_, err := r.db.Exec(`UPDATE cron_executions SET status = ?, error_message = ? WHERE id = ?`,
		domain.ExecutionStatusFailed, errorMessage, id)
	return err
}

func scanExecution(scanner interface {
	Scan(dest ...any) error
}) (*domain.CronExecution, error) {
	var execution domain.CronExecution
	var (
		externalID   sql.NullString
		errorMessage sql.NullString
		executedAt   sql.NullTime
	)

	if err := scanner.Scan(
		&execution.ID,
		&execution.CronID,
		&execution.Target.Platform,
		&execution.Target.AccountID,
		&execution.Status,
		&externalID,
		&errorMessage,
		&executedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if externalID.Valid {
		execution.ExternalID = externalID.String
	}
	if errorMessage.Valid {
		execution.ErrorMessage = errorMessage.String
	}
	if executedAt.Valid {
		t := executedAt.Time
		execution.ExecutedAt = &t
	}

	return &execution, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
