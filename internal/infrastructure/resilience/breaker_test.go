package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fail() (interface{}, error) {
	return nil, errors.New("failed")
}

func succeed() (interface{}, error) {
	return "ok", nil
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{FailureThreshold: 3, Cooldown: time.Minute},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			settings:      Settings{FailureThreshold: 3, Cooldown: time.Minute},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name:          "success in between resets the streak",
			settings:      Settings{FailureThreshold: 3, Cooldown: time.Minute},
			requests:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.settings)

			for _, success := range tt.requests {
				if success {
					_, _ = breaker.Execute(succeed)
				} else {
					_, _ = breaker.Execute(fail)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 5, Cooldown: time.Minute})

	_, err := breaker.Execute(succeed)
	require.NoError(t, err)

	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Successes)
	assert.Equal(t, uint32(0), counts.Failures)

	_, err = breaker.Execute(fail)
	assert.Error(t, err)

	counts = breaker.Counts()
	assert.Equal(t, uint32(1), counts.Failures)
	assert.Equal(t, uint32(0), counts.Successes)

	_, err = breaker.Execute(succeed)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), breaker.Counts().Failures)
}

func TestBreakerThresholdThreeLifecycle(t *testing.T) {
	clock := newFakeClock()
	breaker := New("pdf-extractor", Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		Now:              clock.Now,
	})

	for i := 0; i < 3; i++ {
		_, _ = breaker.Execute(fail)
	}
	require.Equal(t, StateOpen, breaker.State())
	openedAt := breaker.Snapshot().LastFailureTime
	assert.Equal(t, clock.Now(), openedAt)

	// Fourth call inside the cooldown never runs.
	var ran int32
	_, err := breaker.Execute(func() (interface{}, error) {
		atomic.AddInt32(&ran, 1)
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))

	clock.Advance(29 * time.Second)
	assert.Equal(t, StateOpen, breaker.State())

	clock.Advance(time.Second)
	assert.Equal(t, StateHalfOpen, breaker.State())

	// One trial admitted, the next caller is turned away while it runs.
	gen, err := breaker.Allow()
	require.NoError(t, err)
	_, err = breaker.Allow()
	assert.ErrorIs(t, err, ErrTooManyRequests)

	// Failing trial reopens and restarts the cooldown.
	clock.Advance(5 * time.Second)
	breaker.Done(gen, false)
	snap := breaker.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, clock.Now(), snap.LastFailureTime)
	assert.True(t, snap.LastFailureTime.After(openedAt))

	clock.Advance(29 * time.Second)
	assert.Equal(t, StateOpen, breaker.State())
	clock.Advance(time.Second)

	// Succeeding trial closes and clears the counters.
	_, err = breaker.Execute(succeed)
	require.NoError(t, err)
	snap = breaker.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, uint32(0), snap.Failures)
	assert.Equal(t, uint32(0), snap.Successes)
}

func TestBreakerHalfOpenAfterTimeout(t *testing.T) {
	breaker := New("test", Settings{
		FailureThreshold: 2,
		Cooldown:         50 * time.Millisecond,
	})

	for i := 0; i < 2; i++ {
		_, _ = breaker.Execute(fail)
	}
	assert.Equal(t, StateOpen, breaker.State())

	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, StateHalfOpen, breaker.State())

	_, err := breaker.Execute(succeed)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerSingleTrialUnderContention(t *testing.T) {
	clock := newFakeClock()
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Second, Now: clock.Now})

	_, _ = breaker.Execute(fail)
	clock.Advance(time.Second)

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := breaker.Allow(); err == nil {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&admitted))
}

func TestBreakerAbandonReleasesTrial(t *testing.T) {
	clock := newFakeClock()
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Second, Now: clock.Now})

	_, _ = breaker.Execute(fail)
	clock.Advance(time.Second)

	gen, err := breaker.Allow()
	require.NoError(t, err)
	breaker.Abandon(gen)

	assert.Equal(t, StateHalfOpen, breaker.State())
	_, err = breaker.Allow()
	assert.NoError(t, err)
}

func TestBreakerStaleOutcomeIgnored(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Minute})

	slow, err := breaker.Allow()
	require.NoError(t, err)

	_, _ = breaker.Execute(fail)
	require.Equal(t, StateOpen, breaker.State())

	// A request admitted before the breaker opened cannot close it.
	breaker.Done(slow, true)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Minute})

	assert.Panics(t, func() {
		_, _ = breaker.Execute(func() (interface{}, error) {
			panic("boom")
		})
	})
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerReset(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Minute})
	_, _ = breaker.Execute(fail)
	require.Equal(t, StateOpen, breaker.State())

	breaker.Reset()

	snap := breaker.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Zero(t, snap.Failures)
	assert.True(t, snap.LastFailureTime.IsZero())
}

func TestBreakerCallbacks(t *testing.T) {
	var transitions []string
	clock := newFakeClock()

	breaker := New("test", Settings{
		FailureThreshold: 2,
		Cooldown:         10 * time.Millisecond,
		Now:              clock.Now,
		OnStateChange: func(name string, from State, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 2; i++ {
		_, _ = breaker.Execute(fail)
	}
	clock.Advance(20 * time.Millisecond)
	_, _ = breaker.Execute(succeed)

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
