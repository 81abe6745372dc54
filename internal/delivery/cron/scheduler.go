package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	cron "github.com/robfig/cron/v3"

	"auto_publish_social/config"
	"auto_publish_social/internal/infrastructure/downloader"
	"auto_publish_social/internal/logger"
)

// mediaRetention is how long generated and downloaded media files are kept
const mediaRetention = 72 * time.Hour

// Orchestrator processes due publication crons
type Orchestrator interface {
	ProcessDue(ctx context.Context, now time.Time) error
}

// Scheduler drives the orchestrator on a fixed schedule
type Scheduler struct {
	cron         *cron.Cron
	config       *config.Config
	orchestrator Orchestrator
	downloads    *downloader.Service
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewScheduler creates a new cron scheduler
func NewScheduler(
	cfg *config.Config,
	orchestrator Orchestrator,
	downloads *downloader.Service,
) *Scheduler {
	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Create cron with seconds support
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:         c,
		config:       cfg,
		orchestrator: orchestrator,
		downloads:    downloads,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start starts the cron scheduler
func (s *Scheduler) Start() error {
	// Schedule the publication tick
	tickSchedule := normalizeSchedule(s.config.PollSchedule)
	tickJobID, err := s.cron.AddFunc(tickSchedule, s.processDueJob)
	if err != nil {
		return fmt.Errorf("failed to schedule publication job: %w", err)
	}
	logger.Info().Printf("Scheduled publication job with ID: %d, schedule: %s", tickJobID, tickSchedule)

	// Schedule media cleanup (hourly)
	cleanupJobID, err := s.cron.AddFunc(normalizeSchedule("0 * * * *"), s.cleanupMediaJob)
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	logger.Info().Printf("Scheduled media cleanup job with ID: %d", cleanupJobID)

	// Start cron
	s.cron.Start()
	logger.Info().Println("Cron scheduler started")

	// Run an initial tick immediately
	go s.processDueJob()

	return nil
}

// Stop stops the cron scheduler gracefully
func (s *Scheduler) Stop() {
	logger.Info().Println("Stopping cron scheduler...")
	s.cancel()
	s.cron.Stop()
	logger.Info().Println("Cron scheduler stopped")
}

// processDueJob is the job function driving the orchestrator tick. The
// orchestrator rejects overlapping ticks itself; this only bounds the time
// one tick may take.
func (s *Scheduler) processDueJob() {
	logger.Info().Println("Starting publication tick...")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(s.ctx, s.config.TickTimeout)
	defer cancel()

	if err := s.orchestrator.ProcessDue(ctx, startTime); err != nil {
		logger.Error().Printf("Publication tick failed: %v", err)
		return
	}

	duration := time.Since(startTime)
	logger.Info().Printf("Publication tick completed in %v", duration)
}

// cleanupMediaJob prunes old artifacts from the media directory
func (s *Scheduler) cleanupMediaJob() {
	if err := s.downloads.CleanupOld(mediaRetention); err != nil {
		logger.Error().Printf("Media cleanup failed: %v", err)
	}
}

// normalizeSchedule ensures cron expressions are compatible with cron.WithSeconds
func normalizeSchedule(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) == 5 {
		return "0 " + expr
	}
	return expr
}
