package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/household-task-api/internal/logger"
)

// RefillFunc refills events and reports how many were created.
type RefillFunc func(ctx context.Context) (int, error)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

// NewSchedulerService creates a scheduler evaluating standard 5-field cron
// expressions in loc. Overlapping runs of the same job are skipped.
func NewSchedulerService(loc *time.Location) *SchedulerService {
	cronLogger := cron.PrintfLogger(logger.Standard())
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// ScheduleCron registers job on a cron expression.
func (s *SchedulerService) ScheduleCron(spec string, job func()) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return 0, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return id, nil
}

// ScheduleRefill registers refill on spec, each run bounded by timeout.
func (s *SchedulerService) ScheduleRefill(spec string, timeout time.Duration, refill RefillFunc) (cron.EntryID, error) {
	return s.ScheduleCron(spec, refillJob(timeout, refill))
}

// NextRun returns when job id fires next; zero before Start or for an unknown id.
func (s *SchedulerService) NextRun(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func refillJob(timeout time.Duration, refill RefillFunc) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		started := time.Now()
		generated, err := refill(ctx)
		if err != nil {
			logger.Error("Scheduled refill failed", "err", err, "generated", generated)
			return
		}
		logger.Info("Scheduled refill finished", "generated", generated, "duration", time.Since(started))
	}
}
