// Package scheduler runs the cache-warming cycles. Each job re-drives a
// fetcher for all known symbols at a fixed wall-clock cadence so user-facing
// requests usually hit a warm cache.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
)

type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger
}

func New(logger logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// AddJob registers a periodic job. Two instances of the same job never run
// concurrently: a tick that fires while the previous run is still in progress
// is skipped with a warning.
func (s *Scheduler) AddJob(ctx context.Context, name, spec string, run func(context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, s.guarded(ctx, name, run)); err != nil {
		return fmt.Errorf("%w: can't schedule %s job", err, name)
	}
	return nil
}

func (s *Scheduler) guarded(ctx context.Context, name string, run func(context.Context) error) func() {
	var inProgress atomic.Bool
	return func() {
		if !inProgress.CompareAndSwap(false, true) {
			s.logger.Warnf("%s tick skipped: previous run still in progress", name)
			return
		}
		defer inProgress.Store(false)

		started := time.Now()
		if err := run(ctx); err != nil {
			// a failed tick never stops future ticks
			s.logger.Errorf("%s: %s warm cycle failed", err, name)
			return
		}
		s.logger.Debugf("%s warm cycle done in %s", name, time.Since(started))
	}
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits for
// in-flight jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
