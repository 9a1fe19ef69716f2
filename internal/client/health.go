package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// HealthReport is the outcome of one system health probe
type HealthReport struct {
	Status    types.Status            `json:"status"`
	Adapters  map[string]types.Status `json:"adapters,omitempty"`
	Error     string                  `json:"error,omitempty"`
	CheckedAt time.Time               `json:"checkedAt"`
}

// Healthy reports whether the hub answered and said it is ok
func (r HealthReport) Healthy() bool {
	return r.Status == types.StatusOK
}

// HealthStatus combines a fresh probe with the breaker states
type HealthStatus struct {
	System   HealthReport          `json:"system"`
	Breakers []resilience.Snapshot `json:"breakers"`
}

// healthBody is the hub's /health payload
type healthBody struct {
	Status   types.Status            `json:"status"`
	Adapters map[string]types.Status `json:"adapters,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

type healthMonitor struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
}

// StartHealthMonitoring probes the hub every interval in the background.
// Calling it while monitoring restarts the loop with the new interval.
func (c *Client) StartHealthMonitoring(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidHealthCheckInterval, interval)
	}

	c.monitor.mu.Lock()
	defer c.monitor.mu.Unlock()

	c.stopMonitorLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.monitor.cancel = cancel
	c.monitor.done = done
	c.monitor.interval = interval

	go c.monitorLoop(ctx, interval, done)

	c.logger.Info("health monitoring started", zap.Duration("interval", interval))
	return nil
}

// StopHealthMonitoring stops the background probe and waits for it to
// exit. It does nothing when monitoring is not running.
func (c *Client) StopHealthMonitoring() {
	c.monitor.mu.Lock()
	defer c.monitor.mu.Unlock()

	if c.stopMonitorLocked() {
		c.logger.Info("health monitoring stopped")
	}
}

// IsMonitoring reports whether the background probe is running
func (c *Client) IsMonitoring() bool {
	c.monitor.mu.Lock()
	defer c.monitor.mu.Unlock()

	return c.monitor.cancel != nil
}

func (c *Client) stopMonitorLocked() bool {
	if c.monitor.cancel == nil {
		return false
	}

	c.monitor.cancel()
	<-c.monitor.done

	c.monitor.cancel = nil
	c.monitor.done = nil
	c.monitor.interval = 0
	return true
}

func (c *Client) monitorLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := c.CheckSystemHealth(ctx)
			c.logger.Debug("health tick",
				zap.String("status", string(report.Status)),
				zap.Int("adapters", len(report.Adapters)))
		}
	}
}

// CheckSystemHealth runs one probe against the hub's health endpoint.
// Per-adapter statuses in the answer are fed to the breakers the same way
// a call outcome would be. A failed probe leaves the breakers alone.
func (c *Client) CheckSystemHealth(ctx context.Context) HealthReport {
	report := c.probe(ctx)

	c.metrics.RecordHealthCheck(report.Healthy())
	if report.Healthy() {
		c.logger.Debug("system health check passed")
	} else {
		c.logger.Warn("system health check failed", zap.String("error", report.Error))
	}

	c.reportMu.Lock()
	c.lastReport = &report
	c.reportMu.Unlock()

	return report
}

// CheckHealth probes the hub and returns the result with every breaker
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	return HealthStatus{
		System:   c.CheckSystemHealth(ctx),
		Breakers: c.BreakerStates(),
	}
}

// LastHealthReport returns the most recent probe result, if any
func (c *Client) LastHealthReport() (HealthReport, bool) {
	c.reportMu.RLock()
	defer c.reportMu.RUnlock()

	if c.lastReport == nil {
		return HealthReport{}, false
	}
	return *c.lastReport, true
}

func (c *Client) probe(ctx context.Context) HealthReport {
	report := HealthReport{CheckedAt: time.Now()}

	fail := func(format string, args ...interface{}) HealthReport {
		report.Status = types.StatusError
		report.Error = fmt.Sprintf(format, args...)
		return report
	}

	res, err := c.resty.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString()).
		Get(healthPath)
	if err != nil {
		return fail("health check failed: %v", err)
	}
	if !res.IsSuccess() {
		return fail("health check failed: %s", httpMessage(res.StatusCode(), res.Body()))
	}

	var body healthBody
	if err := sonic.Unmarshal(res.Body(), &body); err != nil {
		return fail("invalid health response: %v", err)
	}

	report.Adapters = body.Adapters
	c.feedBreakers(body.Adapters)

	switch body.Status {
	case types.StatusOK:
		report.Status = types.StatusOK
		return report
	case types.StatusError:
		if body.Error != "" {
			return fail("%s", body.Error)
		}
		return fail("hub reported unhealthy")
	default:
		return fail("invalid health status: %q", body.Status)
	}
}

// feedBreakers records per-adapter health as call outcomes. Breakers that
// would reject a call are skipped; an open breaker past its cooldown takes
// the probe as its trial.
func (c *Client) feedBreakers(statuses map[string]types.Status) {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !c.registry.IsValidAdapterID(id) {
			c.logger.Debug("health report names unknown adapter", zap.String("adapter", id))
			continue
		}

		breaker := c.breakers.Get(id)
		generation, err := breaker.Allow()
		if err != nil {
			continue
		}
		breaker.Done(generation, statuses[id] == types.StatusOK)
	}
}
