package service

import (
	"context"
	"fmt"

	"climate-sentinel/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Recomputer runs one recompute cycle
type Recomputer interface {
	RecomputeAll(ctx context.Context) error
}

// Scheduler triggers the recompute cycle on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Recomputer
	logger  *zap.Logger
	entryID cron.EntryID
	cancel  context.CancelFunc
}

// NewScheduler validates spec (standard 5-field cron or a descriptor such as "@every 5m")
func NewScheduler(spec string, job Recomputer, log *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid recompute schedule %q: %w", spec, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	cl := logger.NewCronLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		job:    job,
		logger: log,
	}, nil
}

// Start runs one cycle synchronously, then schedules the rest.
// The initial cycle's failure is logged, not returned.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info("Running initial recompute cycle")
	_ = s.job.RecomputeAll(ctx)

	id, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("Running scheduled RES score and alert update")
		_ = s.job.RecomputeAll(ctx)
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule recompute: %w", err)
	}
	s.entryID = id
	s.cron.Start()

	s.logger.Info("Recompute scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop waits for a running cycle to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("Recompute scheduler stopped")
}
