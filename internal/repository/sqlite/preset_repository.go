package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// PresetRepository is a SQLite implementation of domain.PresetRepository.
type PresetRepository struct {
	db *sql.DB
}

// NewPresetRepository creates a new PresetRepository backed by SQLite.
func NewPresetRepository(db *sql.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// GetAll returns all presets.
func (r *PresetRepository) GetAll() ([]*domain.Preset, error) {
	rows, err := r.db.Query(`SELECT id, name, image_prompt, video_prompt, audio_prompt, avatar, created_at
		FROM presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*domain.Preset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, preset)
	}

	return presets, rows.Err()
}

// GetByID returns a preset by ID.
func (r *PresetRepository) GetByID(id string) (*domain.Preset, error) {
	row := r.db.QueryRow(`SELECT id, name, image_prompt, video_prompt, audio_prompt, avatar, created_at
		FROM presets WHERE id = ?`, id)
	return scanPreset(row)
}

// Save inserts or updates a preset.
func (r *PresetRepository) Save(preset *domain.Preset) error {
	if preset.ID == "" {
		preset.ID = uuid.NewString()
		preset.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`INSERT INTO presets
		(id, name, image_prompt, video_prompt, audio_prompt, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image_prompt = excluded.image_prompt,
			video_prompt = excluded.video_prompt,
			audio_prompt = excluded.audio_prompt,
			avatar = excluded.avatar`,
		preset.ID, preset.Name, preset.ImagePrompt, preset.VideoPrompt,
		preset.AudioPrompt, preset.Avatar, preset.CreatedAt.UTC())
	return err
}

func scanPreset(scanner interface {
	Scan(dest ...any) error
}) (*domain.Preset, error) {
	var preset domain.Preset
	var avatar sql.NullString

	if err := scanner.Scan(
		&preset.ID,
		&preset.Name,
		&preset.ImagePrompt,
		&preset.VideoPrompt,
		&preset.AudioPrompt,
		&avatar,
		&preset.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if avatar.Valid {
		preset.Avatar = avatar.String
	}

	return &preset, nil
}
