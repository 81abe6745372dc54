package domain

// SetupStore creates a cron together with its executions in a single unit of
// work, so a partially created fan-out is never visible to the orchestrator.
type SetupStore interface {
	CreateCronWithExecutions(cron *PublicationCron, executions []*CronExecution) error
}
