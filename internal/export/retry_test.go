package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestIsRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.False(t, cfg.IsRetryable(nil))
	assert.False(t, cfg.IsRetryable(context.Canceled))
	assert.False(t, cfg.IsRetryable(errors.New("AccessDenied: no")))

	assert.True(t, cfg.IsRetryable(errors.New("SlowDown: reduce request rate")))
	assert.True(t, cfg.IsRetryable(errors.New("read tcp: connection reset by peer")))
	assert.True(t, cfg.IsRetryable(errors.New("i/o timeout")))
}

func TestRetryWithBackoffEventuallySucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), "upload", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	wantErr := errors.New("AccessDenied")
	err := RetryWithBackoff(context.Background(), "upload", func() error {
		calls++
		return wantErr
	}, fastRetryConfig())

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), "upload", func() error {
		calls++
		return errors.New("connection reset")
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 4, calls, "initial attempt plus three retries")
}

func TestRetryWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, "upload", func() error {
		calls++
		return errors.New("connection reset")
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Zero(t, calls)
}
