package retry

import (
	"context"
	"errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"testing"
	"time"
)

type taggedError struct {
	retryable bool
}

func (e taggedError) Error() string {
	return "tagged error"
}

func (e taggedError) Retryable() bool {
	return e.retryable
}

func testConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond * 5,
		Multiplier: 2,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	invocations := 0

	result, attempts, err := Do[string](context.Background(), testConfig(), zap.NewNop(), func() (string, error) {
		invocations++
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 0, attempts)
	require.Equal(t, 1, invocations)
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	invocations := 0

	result, attempts, err := Do[int](context.Background(), testConfig(), zap.NewNop(), func() (int, error) {
		invocations++
		if invocations < 3 {
			return 0, taggedError{retryable: true}
		}

		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 2, attempts)
	require.Equal(t, 3, invocations)
}

func TestDoExhaustsRetries(t *testing.T) {
	invocations := 0

	_, attempts, err := Do[int](context.Background(), testConfig(), zap.NewNop(), func() (int, error) {
		invocations++
		return 0, taggedError{retryable: true}
	})

	require.Error(t, err)
	// MaxRetries bounds the retries, so the op runs MaxRetries+1 times in total.
	require.Equal(t, 4, invocations)
	require.Equal(t, 3, attempts)

	var tagged taggedError
	require.ErrorAs(t, err, &tagged)
	require.True(t, IsRetryable(err))
}

func TestDoTerminalErrorNotRetried(t *testing.T) {
	invocations := 0
	terminal := errors.New("broken payload")

	_, attempts, err := Do[int](context.Background(), testConfig(), zap.NewNop(), func() (int, error) {
		invocations++
		return 0, terminal
	})

	require.ErrorIs(t, err, terminal)
	require.Equal(t, 1, invocations)
	require.Equal(t, 0, attempts)
}

func TestDoTaggedTerminalNotRetried(t *testing.T) {
	invocations := 0

	_, _, err := Do[int](context.Background(), testConfig(), zap.NewNop(), func() (int, error) {
		invocations++
		return 0, taggedError{retryable: false}
	})

	require.Error(t, err)
	require.Equal(t, 1, invocations)
	require.False(t, IsRetryable(err))
}

func TestDoObservesCancellation(t *testing.T) {
	ctx, cancelFunc := context.WithCancel(context.Background())

	invocations := 0
	_, _, err := Do[int](ctx, testConfig(), zap.NewNop(), func() (int, error) {
		invocations++
		cancelFunc()
		return 0, taggedError{retryable: true}
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, invocations)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(taggedError{retryable: true}))
	require.False(t, IsRetryable(taggedError{retryable: false}))
	require.False(t, IsRetryable(errors.New("plain")))
	require.False(t, IsRetryable(nil))
}
