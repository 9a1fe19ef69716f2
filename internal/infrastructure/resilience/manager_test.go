package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesBreakersLazily(t *testing.T) {
	m := NewManager(Settings{FailureThreshold: 2, Cooldown: time.Minute})

	_, ok := m.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, StateClosed, m.State("a"))

	b := m.Get("a")
	require.NotNil(t, b)
	assert.Same(t, b, m.Get("a"))
	assert.Equal(t, "a", b.Name())
}

func TestManagerKeysAreIndependent(t *testing.T) {
	m := NewManager(Settings{FailureThreshold: 2, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		_, _ = m.Get("a").Execute(fail)
	}

	assert.Equal(t, StateOpen, m.State("a"))
	assert.Equal(t, StateClosed, m.State("b"))

	m.Reset("a")
	assert.Equal(t, StateClosed, m.State("a"))
}

func TestManagerConcurrentGet(t *testing.T) {
	m := NewManager(Settings{})

	var wg sync.WaitGroup
	got := make([]*Breaker, 100)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = m.Get("shared")
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Same(t, got[0], b)
	}
}

func TestManagerSnapshotsSorted(t *testing.T) {
	m := NewManager(Settings{FailureThreshold: 1, Cooldown: time.Minute})
	m.Get("zeta")
	_, _ = m.Get("alpha").Execute(fail)

	snaps := m.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "alpha", snaps[0].Name)
	assert.Equal(t, StateOpen, snaps[0].State)
	assert.Equal(t, uint32(1), snaps[0].Failures)
	assert.Equal(t, "zeta", snaps[1].Name)
	assert.Equal(t, StateClosed, snaps[1].State)
}
