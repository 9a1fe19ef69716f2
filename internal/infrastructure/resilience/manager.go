package resilience

import (
	"sort"
	"sync"
)

// Manager owns one breaker per key. Breakers are created on first use and
// live as long as the manager. Each breaker serializes its own updates, so
// callers working on different keys never contend.
type Manager struct {
	settings Settings

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewManager creates a manager whose breakers share the given settings
func NewManager(settings Settings) *Manager {
	return &Manager{
		settings: withDefaults(settings),
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it if needed
func (m *Manager) Get(name string) *Breaker {
	m.mu.RLock()
	b, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok = m.breakers[name]; ok {
		return b
	}
	b = New(name, m.settings)
	m.breakers[name] = b
	return b
}

// Lookup returns the breaker for name without creating one
func (m *Manager) Lookup(name string) (*Breaker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.breakers[name]
	return b, ok
}

// State returns the state for name; unknown names are closed
func (m *Manager) State(name string) State {
	b, ok := m.Lookup(name)
	if !ok {
		return StateClosed
	}
	return b.State()
}

// Reset closes the breaker for name if it exists
func (m *Manager) Reset(name string) {
	if b, ok := m.Lookup(name); ok {
		b.Reset()
	}
}

// Snapshots returns every known breaker sorted by name
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	breakers := make([]*Breaker, 0, len(m.breakers))
	for _, b := range m.breakers {
		breakers = append(breakers, b)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
