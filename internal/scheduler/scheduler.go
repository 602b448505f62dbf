// Package scheduler runs the periodic pass that drives the recurrence
// engine. Every interval it fires due reminders and rolls over due recurring
// templates.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mwhitney/taskloop-api/internal/config"
	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
)

// DueTaskProcessor is the engine entry point the scheduler drives.
// Implemented by the recurrence engine.
type DueTaskProcessor interface {
	ProcessDueTasks(ctx context.Context) ([]*domain.Task, error)
}

// Scheduler invokes the processor on a fixed interval using a cron runner.
type Scheduler struct {
	cron      *cron.Cron
	processor DueTaskProcessor
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler with the configured interval.
func New(cfg config.SchedulerConfig, processor DueTaskProcessor, log *slog.Logger) *Scheduler {
	if processor == nil {
		panic("processor cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultSchedulerInterval
	}

	return &Scheduler{
		cron:      cron.New(),
		processor: processor,
		interval:  interval,
		logger:    log.With(slog.String("component", "scheduler")),
	}
}

// Start registers the periodic job and starts the cron runner.
// The first pass runs after one full interval.
func (s *Scheduler) Start() error {
	// cron's @every accepts a time.ParseDuration string, so sub-second
	// precision in the configured interval is preserved.
	spec := fmt.Sprintf("@every %s", s.interval)

	if _, err := s.cron.AddFunc(spec, s.runPass); err != nil {
		return fmt.Errorf("failed to schedule recurring pass: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.Duration("interval", s.interval))
	return nil
}

// Stop stops the cron runner and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runPass executes one scheduler pass. The pass gets its own context
// carrying the scheduler's logger; pass failures are logged, never fatal.
func (s *Scheduler) runPass() {
	ctx := logger.WithLogger(context.Background(), s.logger)
	started := time.Now()

	created, err := s.processor.ProcessDueTasks(ctx)
	if err != nil {
		s.logger.Error("scheduler pass failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)))
		return
	}

	s.logger.Debug("scheduler pass completed",
		slog.Int("instances_created", len(created)),
		slog.Duration("elapsed", time.Since(started)))
}
