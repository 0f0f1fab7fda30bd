package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/ports"
)

// Job is a recurring unit of work run by the Scheduler.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context, trigger time.Time) error
}

// Scheduler wires the cron driver with the run use cases.
type Scheduler struct {
	driver ports.Scheduler
	jobs   []Job
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, jobs: jobs, logger: logger}
}

// Start registers every job with an expression and starts the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	for _, job := range s.jobs {
		if job.Spec == "" || job.Run == nil {
			continue
		}
		job := job
		run := func(trigger time.Time) {
			if err := job.Run(ctx, trigger); err != nil {
				s.logger.Error("job failed", "job", job.Name, "error", err)
			}
		}
		if err := s.driver.Add(job.Spec, run); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		s.logger.Info("job scheduled", "job", job.Name, "spec", job.Spec)
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
