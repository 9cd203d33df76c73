package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "185.20", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "quote:AAPL", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "185.20" {
				errCh <- errors.New("unexpected value " + v)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresOnInjectedClock(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC))
	store := NewStore[int](30*time.Second, fake)
	ctx := context.Background()

	store.Set(ctx, "k", 7)
	fake.Advance(29 * time.Second)
	if v, ok := store.Get(ctx, "k"); !ok || v != 7 {
		t.Fatalf("expected cached value before ttl, got %v %v", v, ok)
	}

	fake.Advance(time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", store.Len())
	}
}

func TestStore_FailedLoadIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, nil)
	var calls atomic.Int32
	boom := errors.New("provider down")

	loader := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected reload after failure, got %q %v", v, err)
	}
}

func TestStore_InstancesDoNotShareEntries(t *testing.T) {
	t.Parallel()

	a := NewStore[int](time.Minute, nil)
	b := NewStore[int](time.Minute, nil)
	a.Set(context.Background(), "k", 1)
	if _, ok := b.Get(context.Background(), "k"); ok {
		t.Fatalf("stores must be isolated")
	}
}
