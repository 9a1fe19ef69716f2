/*
Package resilience provides the per-adapter circuit breaker.

# Overview

Each adapter id gets its own breaker. A breaker counts consecutive
failures, opens once a threshold is reached, and after a cooldown lets a
single trial request through to decide whether the adapter recovered.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure threshold and cooldown
- Exactly one trial request in half-open state
- Keyed Manager creating breakers lazily per adapter id
- State change callbacks for logging and metrics
- Thread-safe operations

# Usage

	breakers := resilience.NewManager(resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("breaker changed", zap.String("adapter", name),
				zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	b := breakers.Get("pdf-extractor")
	generation, err := b.Allow()
	if err != nil {
		return err // open, or a trial is already in flight
	}
	resp, err := call()
	b.Done(generation, err == nil)

# Pattern

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[trial ok]-> Closed
	                                  ^                     |
	                                  +----[trial failed]---+

A failed trial restarts the cooldown from the time of that failure.
*/
package resilience
