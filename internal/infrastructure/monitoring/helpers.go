package monitoring

import "time"

// Timer measures the duration of one adapter call
type Timer struct {
	start       time.Time
	metrics     *Metrics
	adapter     string
	adapterType string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, adapter, adapterType string) *Timer {
	return &Timer{
		start:       time.Now(),
		metrics:     metrics,
		adapter:     adapter,
		adapterType: adapterType,
	}
}

// Stop records the call with the given status and returns the elapsed time
func (t *Timer) Stop(status string) time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordCall(t.adapter, t.adapterType, status, elapsed)
	return elapsed
}
