package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"NewsDesk/internal/ports"
	"NewsDesk/pkg/logger"
)

// CronScheduler runs jobs on standard five-field cron expressions. A job whose
// previous run is still going is skipped rather than stacked.
type CronScheduler struct {
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
func NewCronScheduler(loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cron.PrintfLogger(logger.New("cron"))
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// Add registers job under spec.
func (c *CronScheduler) Add(spec string, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	loc := c.cron.Location()
	if _, err := c.cron.AddFunc(spec, func() { job(time.Now().In(loc)) }); err != nil {
		return fmt.Errorf("add cron job %q: %w", spec, err)
	}
	return nil
}

// Entries reports how many jobs are registered.
func (c *CronScheduler) Entries() int {
	return len(c.cron.Entries())
}

// Start begins dispatching jobs in the background.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.cron.Start()
	return nil
}

// Stop halts dispatching and waits for running jobs or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
