package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSyncInterval is the cadence used when none is configured.
const DefaultSyncInterval = 5 * time.Minute

// Scheduler runs background sync jobs on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *zap.Logger
}

// NewScheduler constructs a Scheduler over the given runner.
func NewScheduler(runner *Runner, logger *zap.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler.new: %w", errMissingRunner)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), runner: runner, logger: logger}, nil
}

// ScheduleUser registers a periodic sync for one user. The job syncs the
// year the run starts in. Stale and failed runs are logged, never fatal.
func (s *Scheduler) ScheduleUser(userID string, interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	spec := fmt.Sprintf("@every %s", interval)
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		year := time.Now().Year()
		if _, err := s.runner.RunOnce(ctx, userID, year); err != nil {
			if errors.Is(err, ErrStaleRun) {
				return
			}
			s.logger.Warn("background sync failed",
				zap.String("user_id", userID),
				zap.Int("year", year),
				zap.Error(err))
		}
	})
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
