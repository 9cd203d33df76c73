// Package jobs runs the background lifecycle sweep on a fixed interval.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

const sweepJobName = "tournament-lifecycle-sweep"

// SweepRunner is the pass the scheduler drives; usecase.SweepService satisfies it.
type SweepRunner interface {
	RunPass(ctx context.Context) (usecase.SweepResult, error)
}

type Config struct {
	Interval time.Duration
	// PassTimeout bounds one whole pass. Zero means the interval.
	PassTimeout      time.Duration
	StartImmediately bool
	Clock            clock.Clock
}

// Scheduler owns a gocron scheduler with a single singleton job. Only one
// process should run it; multiple instances need an external lock.
type Scheduler struct {
	sched   gocron.Scheduler
	runner  SweepRunner
	timeout time.Duration
	logger  *logging.Logger
}

func NewScheduler(runner SweepRunner, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("sweep runner is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be > 0, got %s", cfg.Interval)
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.PassTimeout
	if timeout <= 0 {
		timeout = cfg.Interval
	}

	sched, err := gocron.NewScheduler(
		gocron.WithClock(clock.OrReal(cfg.Clock)),
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.Named("gocron")),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, runner: runner, timeout: timeout, logger: logger}

	opts := []gocron.JobOption{
		gocron.WithName(sweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if cfg.StartImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	if _, err := sched.NewJob(gocron.DurationJob(cfg.Interval), gocron.NewTask(s.tick), opts...); err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("lifecycle scheduler started", "job", sweepJobName)
	s.sched.Start()
}

// Shutdown stops scheduling and waits for a running pass to return.
func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("lifecycle scheduler stopped")
	return nil
}

// tick receives the job context, which gocron cancels on shutdown.
func (s *Scheduler) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.runner.RunPass(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "lifecycle sweep pass failed", "error", err)
		return
	}
	if result.Skipped {
		s.logger.WarnContext(ctx, "lifecycle sweep pass skipped, previous pass still running")
		return
	}
	s.logger.InfoContext(ctx, "lifecycle sweep pass finished",
		"started", result.Started,
		"cancelled", result.Cancelled,
		"held", result.Held,
		"settled", result.Settled,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"duration_ms", result.DurationMs,
	)
}
