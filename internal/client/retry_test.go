package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       5,
		BaseDelay:         time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, cfg.Delay(i+1), "attempt %d", i+1)
	}

	assert.Equal(t, 10*time.Second, cfg.Delay(100), "huge exponents stay capped")
	assert.Equal(t, time.Second, cfg.Delay(0))
}

func TestRetryConfig_DelayConstant(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 500 * time.Millisecond, MaxDelay: time.Second, BackoffMultiplier: 1}
	for attempt := 1; attempt <= 4; attempt++ {
		assert.Equal(t, 500*time.Millisecond, cfg.Delay(attempt))
	}
}

func TestRetryConfig_PartialOverride(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 7, MaxDelay: 3 * time.Second}.withDefaults()

	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BaseDelay)
	assert.Equal(t, 3*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.BackoffMultiplier)

	assert.Equal(t, DefaultRetryConfig(), RetryConfig{}.withDefaults())
}

func TestSleepContext(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, sleepContext(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("zero returns at once", func(t *testing.T) {
		assert.NoError(t, sleepContext(context.Background(), 0))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := sleepContext(ctx, time.Minute)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Less(t, time.Since(start), time.Second)
	})
}
