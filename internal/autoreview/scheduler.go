package autoreview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	id "casework/pkg/domain"
)

// Jobs is what the scheduler triggers.
type Jobs interface {
	ProcessAll(ctx context.Context, actor id.Actor) (*BatchResult, error)
	CleanupStaleDrafts(ctx context.Context, actor id.Actor, olderThan time.Duration) (int, error)
}

// ScheduleConfig holds cron expressions in the standard five-field format.
type ScheduleConfig struct {
	AutoReview    string
	Cleanup       string
	StaleDraftAge time.Duration
	// JobTimeout bounds a single run. Zero means no bound beyond the scheduler context.
	JobTimeout time.Duration
}

// Scheduler runs the sweep and the retention cleanup on cron schedules as the
// system actor.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	actor   id.Actor
	cfg     ScheduleConfig
	sweep   cron.Schedule
	cleanup cron.Schedule
	logger  *slog.Logger
}

// NewScheduler validates both cron expressions up front.
func NewScheduler(jobs Jobs, actor id.Actor, cfg ScheduleConfig, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StaleDraftAge <= 0 {
		return nil, fmt.Errorf("stale draft age must be positive, got %s", cfg.StaleDraftAge)
	}
	sweep, err := cron.ParseStandard(cfg.AutoReview)
	if err != nil {
		return nil, fmt.Errorf("parse auto-review schedule %q: %w", cfg.AutoReview, err)
	}
	cleanup, err := cron.ParseStandard(cfg.Cleanup)
	if err != nil {
		return nil, fmt.Errorf("parse cleanup schedule %q: %w", cfg.Cleanup, err)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    jobs,
		actor:   actor,
		cfg:     cfg,
		sweep:   sweep,
		cleanup: cleanup,
		logger:  logger,
	}, nil
}

// Next reports when the sweep and the cleanup will next fire after t.
func (s *Scheduler) Next(t time.Time) (sweep, cleanup time.Time) {
	return s.sweep.Next(t), s.cleanup.Next(t)
}

// Run registers the jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Schedule(s.sweep, cron.FuncJob(func() { s.RunSweep(ctx) }))
	s.cron.Schedule(s.cleanup, cron.FuncJob(func() { s.RunCleanup(ctx) }))

	s.cron.Start()
	s.logger.InfoContext(ctx, "scheduler started",
		"auto_review_schedule", s.cfg.AutoReview,
		"cleanup_schedule", s.cfg.Cleanup,
	)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// RunSweep performs one auto-review sweep.
func (s *Scheduler) RunSweep(ctx context.Context) {
	ctx, cancel := s.jobContext(ctx)
	defer cancel()

	result, err := s.jobs.ProcessAll(ctx, s.actor)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.InfoContext(ctx, "scheduled sweep skipped, another instance is running")
	case err != nil:
		s.logger.ErrorContext(ctx, "scheduled sweep failed", "error", err)
	default:
		s.logger.InfoContext(ctx, "scheduled sweep finished",
			"clients_processed", result.ClientsProcessed,
			"reviews_created", result.ReviewsCreated,
			"errors", result.Errors,
		)
	}
}

// RunCleanup performs one stale draft cleanup.
func (s *Scheduler) RunCleanup(ctx context.Context) {
	ctx, cancel := s.jobContext(ctx)
	defer cancel()

	deleted, err := s.jobs.CleanupStaleDrafts(ctx, s.actor, s.cfg.StaleDraftAge)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled cleanup failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled cleanup finished", "deleted", deleted)
}

func (s *Scheduler) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.JobTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.JobTimeout)
	}
	return context.WithCancel(ctx)
}
