package scheduler

import (
	"context"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/robfig/cron/v3"
	"sync"
	"time"
)

type Runner interface {
	Run(ctx context.Context) (domain.AccrualReport, error)
}

// Scheduler triggers the accrual engine on a cron schedule and keeps the
// outcome of the most recent run.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	last    *domain.AccrualReport
	lastErr error
}

func New(schedule string, loc *time.Location, runner Runner) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid accrual schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	logger.Log.Info("accrual scheduler started")
	s.cron.Start()
}

// Stop cancels an in-flight run and waits for it until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		logger.Log.Info("accrual scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	if _, err := s.RunNow(s.ctx); err != nil {
		logger.Log.Warn("scheduled accrual run failed", logger.Error(err))
	}
}

// RunNow runs the engine immediately and records the outcome. A rejected run
// (another one holds the lock) is not recorded.
func (s *Scheduler) RunNow(ctx context.Context) (domain.AccrualReport, error) {
	report, err := s.runner.Run(ctx)
	if err != nil && report.StartedAt.IsZero() {
		return report, err
	}

	s.mu.Lock()
	s.last = &report
	s.lastErr = err
	s.mu.Unlock()

	return report, err
}

// LastReport returns the latest recorded run, or nil before the first one.
func (s *Scheduler) LastReport() (*domain.AccrualReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil, nil
	}
	r := *s.last
	return &r, s.lastErr
}
