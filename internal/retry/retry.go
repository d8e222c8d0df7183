// Package retry re-executes a whole run when it fails.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay

	// Retryable decides whether an error is worth another attempt.
	// Nil retries everything.
	Retryable func(error) bool
}

// WithRetry calls fn until it succeeds, the attempts are used up, the
// error is not retryable or ctx is done.
func WithRetry(ctx context.Context, config Config, log *slog.Logger, fn func(attempt int) error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		if attempt >= attempts {
			if attempts == 1 {
				return err
			}
			return fmt.Errorf("failed after %d attempts: %w", attempts, err)
		}

		delay := config.Delay
		if config.Backoff {
			delay = time.Duration(attempt) * config.Delay
		}
		log.Warn("run failed, retrying", "attempt", attempt, "max_attempts", attempts, "delay", delay, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
