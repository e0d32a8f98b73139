package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterOneRetry(t *testing.T) {
	var calls, sleeps int
	cfg := Config{
		MaxAttempts: 2,
		Delay:       10 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps++
			if d != 10*time.Second {
				t.Fatalf("sleep delay: want=10s got=%s", d)
			}
			return nil
		},
	}
	errNotReady := errors.New("not ready")
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errNotReady
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errNotReady) })
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("call count: want=2 got=%d", calls)
	}
	if sleeps != 1 {
		t.Fatalf("sleep count: want=1 got=%d", sleeps)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	var calls int
	permanent := errors.New("permanent")
	cfg := Config{MaxAttempts: 3, Sleep: func(ctx context.Context, d time.Duration) error {
		t.Fatalf("sleep should not be called for non-retryable errors")
		return nil
	}}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return permanent
	}, func(err error) bool { return false })
	if !errors.Is(err, permanent) {
		t.Fatalf("Do: want permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("call count: want=1 got=%d", calls)
	}
}

func TestDoReturnsLastErrorWhenBudgetExhausted(t *testing.T) {
	var calls, sleeps int
	errNotReady := errors.New("not ready")
	cfg := Config{MaxAttempts: 2, Sleep: func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errNotReady
	}, func(err error) bool { return true })
	if !errors.Is(err, errNotReady) {
		t.Fatalf("Do: want not-ready error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("call count: want=2 got=%d", calls)
	}
	if sleeps != 1 {
		t.Fatalf("sleep count: want=1 got=%d", sleeps)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Config{MaxAttempts: 2}, func(ctx context.Context) error {
		t.Fatalf("fn should not run with a canceled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do: want context.Canceled, got %v", err)
	}
}
