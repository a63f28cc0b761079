package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoValRetriesTransient(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastRetry(), func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("upstream 503"), 503)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(), func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("schema mismatch")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValNeverRetriesInputErrors(t *testing.T) {
	calls := 0
	cfg := fastRetry()
	cfg.ShouldRetry = func(error) bool { return true }
	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, NewInputError("asking_price", "negative")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsInputInvalid(err))
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(), func(_ context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("timeout"), 0)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(), func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("flaky"), 502)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bad request")))
	assert.True(t, IsTransient(NewTransientError(errors.New("any"), 500)))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("dial tcp: i/o timeout")))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(NewTransientError(errors.New("slow down"), 429)))
	assert.True(t, IsRateLimited(errors.New("api rate limit exceeded")))
	assert.False(t, IsRateLimited(NewTransientError(errors.New("oops"), 500)))
	assert.False(t, IsRateLimited(nil))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 404} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	boom := errors.New("provider down")
	fail := func(_ context.Context) error { return boom }

	require.ErrorIs(t, cb.Execute(context.Background(), fail), boom)
	require.ErrorIs(t, cb.Execute(context.Background(), fail), boom)
	assert.Equal(t, CircuitOpen, cb.State())

	// Open circuit rejects without calling through.
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		t.Fatal("must not be called while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }

	require.Error(t, cb.Execute(context.Background(), func(_ context.Context) error {
		return errors.New("down")
	}))
	assert.Equal(t, CircuitOpen, cb.State())

	// After the reset window a probe is allowed; success closes the circuit.
	now = now.Add(2 * time.Minute)
	got, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerShouldTripFilter(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       IsTransient,
	})

	// Permanent errors pass through without tripping.
	require.Error(t, cb.Execute(context.Background(), func(_ context.Context) error {
		return errors.New("bad input")
	}))
	assert.Equal(t, CircuitClosed, cb.State())
}
