/*
Package monitoring provides Prometheus metrics for adapter calls.

# Overview

Metrics cover logical adapter calls, individual network attempts, circuit
breaker state, health probes and pipeline steps. Every Metrics value owns
its own registry, so several clients can live in one process (and in one
test binary) without duplicate registration panics.

All recording methods are safe on a nil *Metrics, which disables metrics.

# Usage

	metrics := monitoring.NewMetrics()

	timer := monitoring.NewTimer(metrics, "pdf-extractor", "extraction")
	// ... perform call ...
	timer.Stop("ok")

# Metrics Endpoint

	http.Handle("/metrics", metrics.Handler())
*/
package monitoring
