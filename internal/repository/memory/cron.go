package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// CronRepository is an in-memory implementation of domain.CronRepository
type CronRepository struct {
	mu    sync.RWMutex
	crons map[string]*domain.PublicationCron
}

// NewCronRepository creates a new in-memory cron repository
func NewCronRepository() *CronRepository {
	return &CronRepository{
		crons: make(map[string]*domain.PublicationCron),
	}
}

// ClaimDue claims all due generating crons, flipping them to processing
func (r *CronRepository) ClaimDue(now time.Time) ([]*domain.PublicationCron, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claimed []*domain.PublicationCron
	for _, cron := range r.crons {
		if cron.Status == domain.CronStatusGenerating && !cron.ScheduledAt.After(now) {
			cron.Status = domain.CronStatusProcessing
			claimed = append(claimed, cron)
		}
	}

	sort.Slice(claimed, func(i, j int) bool {
		if claimed[i].ScheduledAt.Equal(claimed[j].ScheduledAt) {
			return claimed[i].ID < claimed[j].ID
		}
		return claimed[i].ScheduledAt.Before(claimed[j].ScheduledAt)
	})

	return claimed, nil
}

// GetByID returns a cron by its ID
func (r *CronRepository) GetByID(id string) (*domain.PublicationCron, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.crons[id], nil
}

// GetAll returns all crons
func (r *CronRepository) GetAll() ([]*domain.PublicationCron, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	crons := make([]*domain.PublicationCron, 0, len(r.crons))
	for _, cron := range r.crons {
		crons = append(crons, cron)
	}
	sort.Slice(crons, func(i, j int) bool {
		return crons[i].CreatedAt.After(crons[j].CreatedAt)
	})
	return crons, nil
}

// Save creates or updates a cron
func (r *CronRepository) Save(cron *domain.PublicationCron) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cron.ID == "" {
		cron.ID = uuid.NewString()
		cron.CreatedAt = time.Now()
	}
	if cron.Status == "" {
		cron.Status = domain.CronStatusGenerating
	}

	r.crons[cron.ID] = cron
	return nil
}

// UpdateStatus updates the cron status
func (r *CronRepository) UpdateStatus(id string, status domain.CronStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cron, exists := r.crons[id]; exists {
		cron.Status = status
	}
	return nil
}

// UpdateArtifact persists the artifact path and status transition
func (r *CronRepository) UpdateArtifact(id string, videoPath string, status domain.CronStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cron, exists := r.crons[id]; exists {
		cron.VideoPath = videoPath
		cron.Status = status
	}
	return nil
}
