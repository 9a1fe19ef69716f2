package client

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/resilience"
)

var (
	ErrUnknownAdapter             = errors.New("unknown adapter")
	ErrInvalidHealthCheckInterval = errors.New("health check interval must be positive")
)

// ValidationError is returned when the adapter id is not registered.
// No request is sent.
type ValidationError struct {
	AdapterID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid adapter id %q", e.AdapterID)
}

func (e *ValidationError) Unwrap() error {
	return ErrUnknownAdapter
}

// CircuitOpenError is returned when the adapter's breaker refuses the call.
// It matches resilience.ErrCircuitOpen with errors.Is even when the
// breaker is half-open with its trial already in flight.
type CircuitOpenError struct {
	AdapterID string
	Breaker   resilience.Snapshot
	cause     error
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker for adapter %s is %s (failures=%d)", e.AdapterID, e.Breaker.State, e.Breaker.Failures)
}

func (e *CircuitOpenError) Unwrap() error {
	return e.cause
}

func (e *CircuitOpenError) Is(target error) bool {
	return target == resilience.ErrCircuitOpen
}
