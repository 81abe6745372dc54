package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// ExecutionRepository is an in-memory implementation of domain.ExecutionRepository
type ExecutionRepository struct {
	mu         sync.RWMutex
	executions map[string]*domain.CronExecution
	order      []string
}

// NewExecutionRepository creates a new in-memory execution repository
func NewExecutionRepository() *ExecutionRepository {
	return &ExecutionRepository{
		executions: make(map[string]*domain.CronExecution),
	}
}

// GetByCronID returns all executions for a cron in insertion order
func (r *ExecutionRepository) GetByCronID(cronID string) ([]*domain.CronExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var executions []*domain.CronExecution
	for _, id := range r.order {
		if execution := r.executions[id]; execution != nil && execution.CronID == cronID {
			executions = append(executions, execution)
		}
	}
	return executions, nil
}

// GetByID returns an execution by its ID
func (r *ExecutionRepository) GetByID(id string) (*domain.CronExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.executions[id], nil
}

// Save creates or updates an execution
func (r *ExecutionRepository) Save(execution *domain.CronExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if execution.ID == "" {
		execution.ID = uuid.NewString()
	}
	if execution.Status == "" {
		execution.Status = domain.ExecutionStatusPending
	}
	if _, exists := r.executions[execution.ID]; !exists {
		r.order = append(r.order, execution.ID)
	}
	r.executions[execution.ID] = execution
	return nil
}

// MarkProcessing flips the execution to processing
func (r *ExecutionRepository) MarkProcessing(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if execution, exists := r.executions[id]; exists {
		execution.Status = domain.ExecutionStatusProcessing
	}
	return nil
}

// MarkCompleted records a successful publication
func (r *ExecutionRepository) MarkCompleted(id string, externalID string, executedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if execution, exists := r.executions[id]; exists {
		execution.Status = domain.ExecutionStatusCompleted
		execution.ExternalID = externalID
		t := executedAt
		execution.ExecutedAt = &t
	}
	return nil
}

// MarkFailed records a failed publication attempt
func (r *ExecutionRepository) MarkFailed(id string, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if execution, exists := r.executions[id]; exists {
		execution.Status = domain.ExecutionStatusFailed
		execution.ErrorMessage = errorMessage
	}
	return nil
}
