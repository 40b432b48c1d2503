package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_NoRetriesCallsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{}, func() error {
		calls++
		return &HTTPError{StatusCode: 503}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableStatus(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 502}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: 401}
	})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, 401, he.StatusCode)
	require.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Options{MaxRetries: 3}, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseRetryAfter(t *testing.T) {
	require.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	require.Zero(t, ParseRetryAfter(""))
	require.Zero(t, ParseRetryAfter("garbage"))
}

func TestFullJitterSleepBounded(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := FullJitterSleep(attempt, 10*time.Millisecond, 50*time.Millisecond)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 50*time.Millisecond)
	}
}
