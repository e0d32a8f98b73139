// Package retry implements a capped retry with a fixed delay between
// attempts, shared by the clients that talk to flaky external services.
package retry

import (
	"context"
	"time"
)

type Config struct {
	// MaxAttempts is the total number of tries, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Delay is the wait between attempts.
	Delay time.Duration
	// Sleep overrides the delay wait. Tests inject a recorder here; when
	// nil a context-aware timer wait is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn up to cfg.MaxAttempts times. A failed attempt is retried
// only when shouldRetry reports true for its error; otherwise the error
// is returned as-is. The last error is returned once the attempt budget
// is exhausted.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, shouldRetry func(err error) bool) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, cfg.Delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
