package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// PresetRepository is an in-memory implementation of domain.PresetRepository
type PresetRepository struct {
	mu      sync.RWMutex
	presets map[string]*domain.Preset
}

// NewPresetRepository creates a new in-memory preset repository
func NewPresetRepository() *PresetRepository {
	return &PresetRepository{
		presets: make(map[string]*domain.Preset),
	}
}

// GetAll returns all presets
func (r *PresetRepository) GetAll() ([]*domain.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	presets := make([]*domain.Preset, 0, len(r.presets))
	for _, preset := range r.presets {
		presets = append(presets, preset)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// GetByID returns a preset by its ID
func (r *PresetRepository) GetByID(id string) (*domain.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.presets[id], nil
}

// Save creates or updates a preset
func (r *PresetRepository) Save(preset *domain.Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if preset.ID == "" {
		preset.ID = uuid.NewString()
		preset.CreatedAt = time.Now()
	}
	r.presets[preset.ID] = preset
	return nil
}
