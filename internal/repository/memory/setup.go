package memory

import "auto_publish_social/internal/domain"

// SetupStore is an in-memory implementation of domain.SetupStore composing the
// cron and execution repositories.
type SetupStore struct {
	crons      *CronRepository
	executions *ExecutionRepository
}

// NewSetupStore creates a new in-memory setup store
func NewSetupStore(crons *CronRepository, executions *ExecutionRepository) *SetupStore {
	return &SetupStore{crons: crons, executions: executions}
}

// CreateCronWithExecutions creates the cron and its executions
func (s *SetupStore) CreateCronWithExecutions(cron *domain.PublicationCron, executions []*domain.CronExecution) error {
	if err := s.crons.Save(cron); err != nil {
		return err
	}
	for _, execution := range executions {
		execution.CronID = cron.ID
		if err := s.executions.Save(execution); err != nil {
			return err
		}
	}
	return nil
}
