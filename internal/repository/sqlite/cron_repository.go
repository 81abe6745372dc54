package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

const cronColumns = `id, preset_id, title, description, interval, source_url, video_path,
	media_type, ai_model, scheduled_at, status, created_at`

// CronRepository is a SQLite implementation of domain.CronRepository.
type CronRepository struct {
	db *sql.DB
}

// NewCronRepository creates a new CronRepository backed by SQLite.
func NewCronRepository(db *sql.DB) *CronRepository {
	return &CronRepository{db: db}
}

// ClaimDue selects all due crons still in generating state and flips each one
// to processing with a conditional update, so a cron is never claimed twice
// even if two orchestrator instances share the database.
func (r *CronRepository) ClaimDue(now time.Time) ([]*domain.PublicationCron, error) {
	rows, err := r.db.Query(`SELECT `+cronColumns+` FROM publication_crons
		WHERE status = ? AND scheduled_at <= ?
		ORDER BY scheduled_at ASC, id ASC`, domain.CronStatusGenerating, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*domain.PublicationCron
	for rows.Next() {
		cron, err := scanCron(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cron)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var claimed []*domain.PublicationCron
	for _, cron := range candidates {
		res, err := r.db.Exec(`UPDATE publication_crons SET status = ? WHERE id = ? AND status = ?`,
			domain.CronStatusProcessing, cron.ID, domain.CronStatusGenerating)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 1 {
			cron.Status = domain.CronStatusProcessing
			claimed = append(claimed, cron)
		}
	}

	return claimed, nil
}

// GetByID returns a cron by ID.
func (r *CronRepository) GetByID(id string) (*domain.PublicationCron, error) {
	row := r.db.QueryRow(`SELECT `+cronColumns+` FROM publication_crons WHERE id = ?`, id)
	return scanCron(row)
}

// GetAll returns all crons ordered by creation time, newest first.
func (r *CronRepository) GetAll() ([]*domain.PublicationCron, error) {
	rows, err := r.db.Query(`SELECT ` + cronColumns + ` FROM publication_crons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crons []*domain.PublicationCron
	for rows.Next() {
		cron, err := scanCron(rows)
		if err != nil {
			return nil, err
		}
		crons = append(crons, cron)
	}

	return crons, rows.Err()
}

// Save inserts or updates a cron.
func (r *CronRepository) Save(cron *domain.PublicationCron) error {
	now := time.Now().UTC()
	if cron.ID == "" {
		cron.ID = uuid.NewString()
		cron.CreatedAt = now
	}
	if cron.Status == "" {
		cron.Status = domain.CronStatusGenerating
	}

	_, err := r.db.Exec(`INSERT INTO publication_crons
		(id, preset_id, title, description, interval, source_url, video_path, media_type,
			ai_model, scheduled_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			preset_id = excluded.preset_id,
			title = excluded.title,
			description = excluded.description,
			interval = excluded.interval,
			source_url = excluded.source_url,
			video_path = excluded.video_path,
			media_type = excluded.media_type,
			ai_model = excluded.ai_model,
			scheduled_at = excluded.scheduled_at,
			status = excluded.status`,
		cron.ID, cron.PresetID, cron.Title, cron.Description, cron.Interval, cron.SourceURL,
		cron.VideoPath, string(cron.MediaType), string(cron.AIModel), cron.ScheduledAt.UTC(),
		string(cron.Status), cron.CreatedAt.UTC())
	return err
}

// UpdateStatus updates only the cron status.
func (r *CronRepository) UpdateStatus(id string, status domain.CronStatus) error {
	_, err := r.db.Exec(`UPDATE publication_crons SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// UpdateArtifact persists the artifact path together with its status transition.
func (r *CronRepository) UpdateArtifact(id string, videoPath string, status domain.CronStatus) error {
	_, err := r.db.Exec(`UPDATE publication_crons SET video_path = ?, status = ? WHERE id = ?`,
		videoPath, string(status), id)
	return err
}

func scanCron(scanner interface {
	Scan(dest ...any) error
}) (*domain.PublicationCron, error) {
	var cron domain.PublicationCron
	var (
		description sql.NullString
		interval    sql.NullString
		sourceURL   sql.NullString
		videoPath   sql.NullString
	)

	if err := scanner.Scan(
		&cron.ID,
		&cron.PresetID,
		&cron.Title,
		&description,
		&interval,
		&sourceURL,
		&videoPath,
		&cron.MediaType,
		&cron.AIModel,
		&cron.ScheduledAt,
		&cron.Status,
		&cron.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if description.Valid {
		cron.Description = description.String
	}
	if interval.Valid {
		cron.Interval = interval.String
	}
	if sourceURL.Valid {
		cron.SourceURL = sourceURL.String
	}
	if videoPath.Valid {
		cron.VideoPath = videoPath.String
	}

	return &cron, nil
}
