package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
)

// SourceTranscriber turns a cron's source URL into transcript text
type SourceTranscriber interface {
	Transcribe(ctx context.Context, sourceURL string) (string, error)
}

// ArtifactGenerator produces a media artifact from a transcript
type ArtifactGenerator interface {
	Generate(ctx context.Context, preset *domain.Preset, transcript string, mediaType domain.MediaType) (string, error)
}

// ExecutionRunner publishes an artifact for a single execution
type ExecutionRunner interface {
	Run(ctx context.Context, execution *domain.CronExecution, artifactPath, title, description string, mediaType domain.MediaType) error
}

// Orchestrator drives every due cron from generating to a terminal status,
// one cron at a time, tolerating per-account publish failures.
type Orchestrator struct {
	crons       domain.CronRepository
	executions  domain.ExecutionRepository
	presets     domain.PresetRepository
	transcriber SourceTranscriber
	pipeline    ArtifactGenerator
	fanout      ExecutionRunner
	inProgress  atomic.Bool
}

// NewOrchestrator creates a new cron orchestrator
func NewOrchestrator(crons domain.CronRepository, executions domain.ExecutionRepository, presets domain.PresetRepository, transcriber SourceTranscriber, pipeline ArtifactGenerator, fanout ExecutionRunner) *Orchestrator {
	return &Orchestrator{
		crons:       crons,
		executions:  executions,
		presets:     presets,
		transcriber: transcriber,
		pipeline:    pipeline,
		fanout:      fanout,
	}
}

// ProcessDue claims and processes every cron that is due at now. Overlapping
// invocations are rejected: if a previous tick is still running the call is a
// no-op. A failure in one cron fails only that cron; the rest of the batch
// still runs.
func (o *Orchestrator) ProcessDue(ctx context.Context, now time.Time) error {
	if !o.inProgress.CompareAndSwap(false, true) {
		logger.Warn().Printf("Previous tick still running, skipping")
		return nil
	}
	defer o.inProgress.Store(false)

	claimed, err := o.crons.ClaimDue(now)
	if err != nil {
		return fmt.Errorf("failed to claim due crons: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	logger.Info().Printf("Claimed %d due cron(s)", len(claimed))

	for _, cron := range claimed {
		if err := o.processCron(ctx, cron); err != nil {
			logger.Error().Printf("Cron %s failed: %v", cron.ID, err)
			if updateErr := o.crons.UpdateStatus(cron.ID, domain.CronStatusFailed); updateErr != nil {
				logger.Error().Printf("Failed to mark cron %s failed: %v", cron.ID, updateErr)
			}
		}
	}

	return nil
}

// processCron runs the full pipeline and fan-out for one claimed cron. Any
// returned error fails the whole cron; its executions are left untouched.
func (o *Orchestrator) processCron(ctx context.Context, cron *domain.PublicationCron) error {
	if cron.SourceURL == "" {
		return fmt.Errorf("cron %s has no source URL", cron.ID)
	}

	preset, err := o.presets.GetByID(cron.PresetID)
	if err != nil {
		return fmt.Errorf("failed to load preset %s: %w", cron.PresetID, err)
	}
	if preset == nil {
		return fmt.Errorf("preset %s not found", cron.PresetID)
	}

	transcript, err := o.transcriber.Transcribe(ctx, cron.SourceURL)
	if err != nil {
		return err
	}

	artifactPath, err := o.pipeline.Generate(ctx, preset, transcript, cron.MediaType)
	if err != nil {
		return err
	}

	if err := o.crons.UpdateArtifact(cron.ID, artifactPath, domain.CronStatusPending); err != nil {
		return fmt.Errorf("failed to persist artifact for cron %s: %w", cron.ID, err)
	}

	title := cron.Title
	if title == "" {
		title = "Auto: " + cron.SourceURL
	}

	executions, err := o.executions.GetByCronID(cron.ID)
	if err != nil {
		return fmt.Errorf("failed to load executions for cron %s: %w", cron.ID, err)
	}

	for _, execution := range executions {
		if execution.Status != domain.ExecutionStatusPending {
			continue
		}
		if err := o.fanout.Run(ctx, execution, artifactPath, title, cron.Description, cron.MediaType); err != nil {
			// Persistence problem, not a publish failure; keep going so
			// sibling executions still get their attempt
			logger.Error().Printf("Execution %s bookkeeping failed: %v", execution.ID, err)
		}
	}

	// Publication was attempted everywhere; per-execution failures are
	// recorded on the executions and do not fail the cron
	if err := o.crons.UpdateStatus(cron.ID, domain.CronStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark cron %s completed: %w", cron.ID, err)
	}

	logger.Info().Printf("Cron %s completed with %d execution(s)", cron.ID, len(executions))
	return nil
}
