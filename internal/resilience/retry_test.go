package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), LinearRetryConfig(3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), LinearRetryConfig(3, time.Millisecond), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", eris.New("boom")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), LinearRetryConfig(3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.Errorf("failure %d", calls)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failure 3")
}

func TestDoVal_NonTransientNotRetried(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	_, err := DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("permanent validation failure")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_TransientRetried(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	_, err := DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, NewTransientError(eris.New("503"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, LinearRetryConfig(5, 50*time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, eris.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), LinearRetryConfig(2, time.Millisecond), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValFallback_UsesFallbackOnExhaustion(t *testing.T) {
	got := DoValFallback(context.Background(), LinearRetryConfig(2, time.Millisecond),
		func(ctx context.Context) (string, error) {
			return "", eris.New("model unavailable")
		},
		func() string { return "templated" },
	)
	assert.Equal(t, "templated", got)
}

func TestDoValFallback_PrefersRealResult(t *testing.T) {
	got := DoValFallback(context.Background(), LinearRetryConfig(2, time.Millisecond),
		func(ctx context.Context) (string, error) {
			return "rewritten", nil
		},
		func() string { return "templated" },
	)
	assert.Equal(t, "rewritten", got)
}

func TestComputeBackoff_Linear(t *testing.T) {
	cfg := applyDefaults(LinearRetryConfig(3, 2*time.Second))
	assert.Equal(t, 2*time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 4*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 6*time.Second, computeBackoff(2, cfg))
}

func TestComputeBackoff_ExponentialCapped(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		MaxBackoff:     3 * time.Second,
		Multiplier:     2.0,
	})
	assert.Equal(t, time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 3*time.Second, computeBackoff(2, cfg))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("plain")))
	assert.True(t, IsTransient(NewTransientError(eris.New("x"), 500)))
	assert.True(t, IsTransient(eris.Wrap(NewTransientError(eris.New("x"), 429), "outer")))
	assert.True(t, IsTransient(eris.New("read tcp: i/o timeout")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 301, 400, 401, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}
