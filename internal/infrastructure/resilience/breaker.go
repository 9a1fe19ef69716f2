package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateHalfOpen:
		return "HALF_OPEN"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets snapshots encode the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// Cooldown is how long the breaker stays open after the last failure
	Cooldown time.Duration
	// OnStateChange is called with the breaker lock held; it must not call back into the breaker
	OnStateChange func(name string, from State, to State)
	// Now overrides the clock, mostly for tests
	Now func() time.Time
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Failures  uint32
	Successes uint32
}

// Snapshot is a point-in-time copy of one breaker
type Snapshot struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	Failures        uint32    `json:"failures"`
	Successes       uint32    `json:"successes"`
	LastFailureTime time.Time `json:"lastFailureTime"`
}

// Breaker implements the circuit breaker pattern for one adapter
type Breaker struct {
	name     string
	settings Settings

	mu          sync.Mutex
	state       State
	counts      Counts
	lastFailure time.Time
	generation  uint64
	trialActive bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	return &Breaker{
		name:     name,
		settings: withDefaults(settings),
		state:    StateClosed,
	}
}

func withDefaults(settings Settings) Settings {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = 60 * time.Second
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return settings
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentState(b.settings.Now())
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Snapshot returns the full breaker state
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Name:            b.name,
		State:           b.currentState(b.settings.Now()),
		Failures:        b.counts.Failures,
		Successes:       b.counts.Successes,
		LastFailureTime: b.lastFailure,
	}
}

// Allow asks for permission to run one request. The returned generation
// must be handed back to Done. In half-open state only one caller is
// admitted until that caller reports.
func (b *Breaker) Allow() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState(b.settings.Now())

	switch state {
	case StateOpen:
		return b.generation, ErrCircuitOpen
	case StateHalfOpen:
		if b.trialActive {
			return b.generation, ErrTooManyRequests
		}
		b.trialActive = true
	}

	return b.generation, nil
}

// Done reports the outcome of a request admitted by Allow. Outcomes from
// an older generation are dropped.
func (b *Breaker) Done(generation uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Now()
	state := b.currentState(now)

	if generation != b.generation {
		return
	}

	if success {
		b.onSuccess(state, now)
	} else {
		b.onFailure(state, now)
	}
}

// Abandon releases a half-open trial without recording an outcome.
func (b *Breaker) Abandon(generation uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if generation == b.generation && b.state == StateHalfOpen {
		b.trialActive = false
	}
}

// Execute runs the given request if the circuit breaker accepts it
func (b *Breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	generation, err := b.Allow()
	if err != nil {
		return nil, err
	}

	defer func() {
		e := recover()
		if e != nil {
			b.Done(generation, false)
			panic(e)
		}
	}()

	result, err := req()
	b.Done(generation, err == nil)
	return result, err
}

// Reset forces the breaker back to closed with empty counts
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setState(StateClosed, b.settings.Now())
	b.counts = Counts{}
	b.lastFailure = time.Time{}
}

// onSuccess handles successful requests
func (b *Breaker) onSuccess(state State, now time.Time) {
	switch state {
	case StateClosed:
		b.counts.Successes++
		b.counts.Failures = 0
	case StateHalfOpen:
		b.setState(StateClosed, now)
	}
}

// onFailure handles failed requests
func (b *Breaker) onFailure(state State, now time.Time) {
	switch state {
	case StateClosed:
		b.counts.Failures++
		b.counts.Successes = 0
		b.lastFailure = now
		if b.counts.Failures >= b.settings.FailureThreshold {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.counts.Failures++
		b.lastFailure = now
		b.setState(StateOpen, now)
	}
}

// currentState moves an open breaker to half-open once the cooldown has
// elapsed since the last failure
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.lastFailure) >= b.settings.Cooldown {
		b.setState(StateHalfOpen, now)
	}
	return b.state
}

// setState changes the state of the circuit breaker
func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.generation++
	b.trialActive = false

	if state == StateClosed {
		b.counts = Counts{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
