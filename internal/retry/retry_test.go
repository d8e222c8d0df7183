package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/opinions/internal/logger"
)

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Config{MaxAttempts: 3, Delay: time.Millisecond}, logger.Discard(), func(attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := WithRetry(context.Background(), Config{MaxAttempts: 2, Delay: time.Millisecond, Backoff: true}, logger.Discard(), func(int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestWithRetrySingleAttemptReturnsErrorAsIs(t *testing.T) {
	boom := errors.New("boom")
	err := WithRetry(context.Background(), Config{}, logger.Discard(), func(int) error { return boom })
	assert.Equal(t, boom, err)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("unsupported")
	calls := 0
	err := WithRetry(context.Background(), Config{
		MaxAttempts: 5,
		Delay:       time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}, logger.Discard(), func(int) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, Config{MaxAttempts: 3, Delay: time.Hour}, logger.Discard(), func(int) error {
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
