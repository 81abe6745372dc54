package domain

import "time"

// Platform identifies a publish destination
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// PublishTarget is the tagged account reference of an execution. Exactly one
// platform and its account are set; the invalid both-set/none-set states of a
// nullable foreign-key pair cannot be represented.
type PublishTarget struct {
	// Platform is the destination platform
	Platform Platform

	// AccountID references the platform-specific account row
	AccountID string
}

// ExecutionStatus represents the processing status of a single publication attempt
type ExecutionStatus string

const (
	// ExecutionStatusPending indicates the execution is waiting for its cron's artifact
	ExecutionStatusPending ExecutionStatus = "pending"

	// ExecutionStatusProcessing indicates the publish call is in flight
	ExecutionStatusProcessing ExecutionStatus = "processing"

	// ExecutionStatusCompleted indicates the platform accepted the publication
	ExecutionStatusCompleted ExecutionStatus = "completed"

	// ExecutionStatusFailed indicates the publish attempt failed; siblings are unaffected
	ExecutionStatusFailed ExecutionStatus = "failed"
)

// CronExecution represents one account-specific publication attempt belonging to a cron
type CronExecution struct {
	// ID is the unique identifier for the execution
	ID string

	// CronID references the owning publication cron
	CronID string

	// Target is the account this execution publishes to
	Target PublishTarget

	// Status is the current processing status
	Status ExecutionStatus

	// ExternalID is the platform-returned identifier of the published media
	ExternalID string

	// ErrorMessage contains error details if the publish attempt failed
	ErrorMessage string

	// ExecutedAt is when the publish attempt finished successfully
	ExecutedAt *time.Time
}

// ExecutionRepository defines the interface for cron execution data operations
type ExecutionRepository interface {
	// GetByCronID returns all executions belonging to a cron in insertion order
	GetByCronID(cronID string) ([]*CronExecution, error)

	// GetByID returns an execution by its ID
	GetByID(id string) (*CronExecution, error)

	// Save creates or updates an execution
	Save(execution *CronExecution) error

	// MarkProcessing flips the execution to processing
	MarkProcessing(id string) error

	// MarkCompleted records a successful publication
	MarkCompleted(id string, externalID string, executedAt time.Time) error

	// MarkFailed records a failed publication attempt
	MarkFailed(id string, errorMessage string) error
}
