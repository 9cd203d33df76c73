package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

type runnerFunc func(ctx context.Context) (usecase.SweepResult, error)

func (f runnerFunc) RunPass(ctx context.Context) (usecase.SweepResult, error) {
	return f(ctx)
}

func TestNewScheduler_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewScheduler(nil, Config{Interval: time.Minute}, nil); err == nil {
		t.Fatalf("expected error for nil runner")
	}
	noop := runnerFunc(func(context.Context) (usecase.SweepResult, error) { return usecase.SweepResult{}, nil })
	if _, err := NewScheduler(noop, Config{}, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestScheduler_TickBoundsPass(t *testing.T) {
	t.Parallel()

	var deadlineSet atomic.Bool
	runner := runnerFunc(func(ctx context.Context) (usecase.SweepResult, error) {
		_, ok := ctx.Deadline()
		deadlineSet.Store(ok)
		return usecase.SweepResult{}, errors.New("store down")
	})
	s := &Scheduler{runner: runner, timeout: time.Second, logger: logging.NewNop()}

	s.tick(t.Context())
	if !deadlineSet.Load() {
		t.Fatalf("expected pass context to carry a deadline")
	}
}

func TestScheduler_RunsImmediately(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	runner := runnerFunc(func(context.Context) (usecase.SweepResult, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return usecase.SweepResult{Settled: 1}, nil
	})

	s, err := NewScheduler(runner, Config{Interval: time.Hour, StartImmediately: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Start()
	defer func() {
		if err := s.Shutdown(); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected sweep to run on start")
	}
}
