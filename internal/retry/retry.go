// Package retry re-runs operations that fail with a retryable error,
// waiting a constant delay between attempts.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPolicy allows one retry after three seconds: at most two attempts
var DefaultPolicy = Policy{MaxRetries: 1, Delay: 3 * time.Second}

// Policy is a bounded retry strategy with a constant delay.
// Retryable decides which errors are retried; every other error is returned at once.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	Retryable  func(error) bool
	Logger     *slog.Logger
}

// Do runs operation until it succeeds, fails with a non-retryable error,
// or the retry budget is spent. The delay never grows between attempts.
func Do[T any](ctx context.Context, p Policy, operation func(context.Context) (T, error)) (T, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	remaining := p.MaxRetries
	for attempt := 1; ; attempt++ {
		result, err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}
		if remaining <= 0 || p.Retryable == nil || !p.Retryable(err) {
			return result, err
		}
		remaining--

		logger.Warn("quota exceeded, retrying", "attempt", attempt, "delay", p.Delay, "retries_left", remaining, "err", err)

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
