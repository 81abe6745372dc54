package domain

import "time"

// CronStatus represents the lifecycle status of a publication cron
type CronStatus string

const (
	// CronStatusGenerating indicates the cron is waiting to be claimed by the orchestrator
	CronStatusGenerating CronStatus = "generating"

	// CronStatusProcessing indicates the orchestrator has claimed the cron and the
	// content pipeline is running
	CronStatusProcessing CronStatus = "processing"

	// CronStatusPending indicates the artifact has been generated and publication
	// to the target accounts is in progress
	CronStatusPending CronStatus = "pending"

	// CronStatusCompleted indicates publication was attempted on every target account
	CronStatusCompleted CronStatus = "completed"

	// CronStatusFailed indicates a precondition or pipeline error stopped the cron
	CronStatusFailed CronStatus = "failed"
)

// MediaType selects the kind of artifact the content pipeline produces
type MediaType string

const (
	// MediaTypeVideo produces a narrated short-form video
	MediaTypeVideo MediaType = "Video"

	// MediaTypePhoto produces a single generated image
	MediaTypePhoto MediaType = "Photo"
)

// AIModel selects the generative backend recorded on the cron
type AIModel string

const (
	AIModelVeo     AIModel = "veo"
	AIModelChatGPT AIModel = "chatgpt"
)

// PublicationCron represents a scheduled content-generation-and-publication job
type PublicationCron struct {
	// ID is the unique identifier for the cron
	ID string

	// PresetID references the prompt template bundle used for generation
	PresetID string

	// Title is used as the publication title on every platform
	Title string

	// Description is the optional publication description
	Description string

	// Interval is the configured recurrence expression (informational)
	Interval string

	// SourceURL is the content source (YouTube video URL or RSS feed URL)
	SourceURL string

	// VideoPath is the local path of the generated artifact. It is set exactly
	// when the cron status is pending or completed.
	VideoPath string

	// MediaType selects video or photo generation
	MediaType MediaType

	// AIModel is the generative backend recorded at setup time
	AIModel AIModel

	// ScheduledAt is when the cron becomes due
	ScheduledAt time.Time

	// Status is the current lifecycle status
	Status CronStatus

	// CreatedAt is the timestamp when the cron was created
	CreatedAt time.Time
}

// CronRepository defines the interface for publication cron data operations
type CronRepository interface {
	// ClaimDue atomically claims all crons that are still generating and due at
	// the given time, flipping them to processing. The returned slice is in
	// deterministic (scheduled_at, id) order.
	ClaimDue(now time.Time) ([]*PublicationCron, error)

	// GetByID returns a cron by its ID
	GetByID(id string) (*PublicationCron, error)

	// GetAll returns all crons ordered by creation time
	GetAll() ([]*PublicationCron, error)

	// Save creates or updates a cron
	Save(cron *PublicationCron) error

	// UpdateStatus updates only the cron status
	UpdateStatus(id string, status CronStatus) error

	// UpdateArtifact persists the generated artifact path together with the
	// status transition that makes it visible
	UpdateArtifact(id string, videoPath string, status CronStatus) error
}
