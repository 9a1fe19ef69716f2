package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/logging"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// Registry is the adapter lookup the client validates ids against
type Registry interface {
	IsValidAdapterID(id string) bool
	AdapterType(id string) types.AdapterType
}

// Client invokes adapters through the hub with retries and per-adapter
// circuit breakers
type Client struct {
	cfg      Config
	registry Registry
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Manager
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	sleep func(ctx context.Context, d time.Duration) error

	monitor    healthMonitor
	reportMu   sync.RWMutex
	lastReport *HealthReport
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a production-ready adapter client. Health monitoring starts
// right away when cfg.HealthCheck.Enabled is set; call Close to stop it.
func New(cfg Config, registry Registry, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:      cfg,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).Component("client")

	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c.breakers = resilience.NewManager(resilience.Settings{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Cooldown:         cfg.Breaker.Cooldown,
		OnStateChange:    c.onBreakerStateChange,
	})

	// Pooled transport from retryablehttp; retries are driven by Call so
	// resty and retryablehttp never retry on their own.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	c.resty = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "adapterhub/1.0").
		SetHeaders(cfg.Headers).
		SetTransport(retryClient.HTTPClient.Transport)
	c.resty.JSONMarshal = sonic.Marshal
	c.resty.JSONUnmarshal = sonic.Unmarshal

	if cfg.HealthCheck.Enabled {
		if err := c.StartHealthMonitoring(cfg.HealthCheck.Interval); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Config returns the effective configuration, defaults applied
func (c *Client) Config() Config {
	return c.cfg
}

// Close stops health monitoring and releases pooled connections
func (c *Client) Close() error {
	c.StopHealthMonitoring()
	c.resty.GetClient().CloseIdleConnections()
	return nil
}

// Call invokes one adapter. Unknown ids and open breakers fail with an
// error before anything is sent. Every other outcome, including network
// failures after the last retry, comes back as a response whose Status
// says whether the adapter succeeded.
func (c *Client) Call(ctx context.Context, adapterID string, input *string, actx types.Context) (types.AdapterResponse, error) {
	if !c.registry.IsValidAdapterID(adapterID) {
		return types.AdapterResponse{}, &ValidationError{AdapterID: adapterID}
	}

	breaker := c.breakers.Get(adapterID)
	generation, err := breaker.Allow()
	if err != nil {
		c.metrics.RecordRejection(adapterID)
		return types.AdapterResponse{}, &CircuitOpenError{
			AdapterID: adapterID,
			Breaker:   breaker.Snapshot(),
			cause:     err,
		}
	}

	log := c.logger.ForAdapter(adapterID)
	timer := monitoring.NewTimer(c.metrics, adapterID, string(c.registry.AdapterType(adapterID)))

	payload := types.AdapterRequest{AdapterID: adapterID, Input: input, Context: actx}
	resp, v := c.retry(ctx, log, payload)

	switch v {
	case verdictHealthy:
		breaker.Done(generation, true)
	case verdictUnhealthy:
		breaker.Done(generation, false)
	default:
		breaker.Abandon(generation)
	}

	elapsed := timer.Stop(string(resp.Status))
	log.Debug("adapter call finished",
		zap.String("status", string(resp.Status)),
		zap.Duration("elapsed", elapsed))

	return resp, nil
}

// BatchCall runs Call for every id concurrently. Results line up with ids.
// Each call gets its own retries and breaker check; a call refused before
// sending shows up as an error response in its slot.
func (c *Client) BatchCall(ctx context.Context, adapterIDs []string, input *string, actx types.Context) []types.AdapterResponse {
	results := make([]types.AdapterResponse, len(adapterIDs))

	var g errgroup.Group
	if c.cfg.BatchConcurrency > 0 {
		g.SetLimit(c.cfg.BatchConcurrency)
	}

	for i, id := range adapterIDs {
		i, id := i, id
		g.Go(func() error {
			resp, err := c.Call(ctx, id, input, actx)
			if err != nil {
				resp = types.Failure(err.Error())
			}
			results[i] = resp
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// BreakerState returns a snapshot of one adapter's breaker
func (c *Client) BreakerState(adapterID string) resilience.Snapshot {
	return c.breakers.Get(adapterID).Snapshot()
}

// BreakerStates returns snapshots of every breaker created so far
func (c *Client) BreakerStates() []resilience.Snapshot {
	return c.breakers.Snapshots()
}

// ResetBreaker closes an adapter's breaker
func (c *Client) ResetBreaker(adapterID string) {
	c.breakers.Reset(adapterID)
}

func (c *Client) onBreakerStateChange(name string, from, to resilience.State) {
	c.metrics.SetBreakerState(name, int(to))

	log := c.logger.ForAdapter(name)
	fields := []zap.Field{zap.Stringer("from", from), zap.Stringer("to", to)}
	if to == resilience.StateOpen {
		log.Warn("circuit breaker opened", fields...)
		return
	}
	log.Info("circuit breaker state changed", fields...)
}

// verdict is what a finished call tells the breaker
type verdict int

const (
	verdictHealthy verdict = iota
	verdictUnhealthy
	verdictAbandoned
)

type attemptResult struct {
	resp      types.AdapterResponse
	done      bool
	retryable bool
	message   string
	outcome   string
	verdict   verdict
}

// retry runs attempts until one finishes, a failure is permanent, or the
// attempt budget is spent
func (c *Client) retry(ctx context.Context, log *logging.Logger, payload types.AdapterRequest) (types.AdapterResponse, verdict) {
	policy := c.cfg.Retry
	requestID := uuid.NewString()

	var last attemptResult
	attempts := 0
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return types.Failure(fmt.Sprintf("request canceled: %v", err)), verdictAbandoned
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return types.Failure(fmt.Sprintf("rate limit error: %v", err)), verdictAbandoned
		}

		attempts = attempt
		last = c.attempt(ctx, requestID, payload)
		c.metrics.RecordAttempt(payload.AdapterID, last.outcome)

		if last.done {
			return last.resp, last.verdict
		}
		if !last.retryable || attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		log.Warn("adapter attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("delay", delay),
			zap.String("request_id", requestID),
			zap.String("error", last.message))

		if err := c.sleep(ctx, delay); err != nil {
			return types.Failure(fmt.Sprintf("%s; retry aborted: %v", last.message, err)), verdictAbandoned
		}
	}

	message := last.message
	if attempts > 1 {
		message = fmt.Sprintf("%s (after %d attempts)", message, attempts)
	}
	log.Error("adapter call failed",
		zap.Int("attempts", attempts),
		zap.String("request_id", requestID),
		zap.String("outcome", last.outcome),
		zap.String("error", message))

	return types.Failure(message), last.verdict
}

// attempt sends one request
func (c *Client) attempt(ctx context.Context, requestID string, payload types.AdapterRequest) attemptResult {
	res, err := c.resty.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID).
		SetBody(payload).
		Post(runAdapterPath)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	return classifyResponse(res.StatusCode(), res.Body())
}

// classifyTransportError decides whether a failed round trip is worth
// repeating. Connection errors and timeouts are; bad schemes, redirect
// loops and untrusted certificates are not.
func classifyTransportError(ctx context.Context, err error) attemptResult {
	if ctx.Err() != nil {
		return attemptResult{
			message: fmt.Sprintf("request canceled: %v", ctx.Err()),
			outcome: "canceled",
			verdict: verdictAbandoned,
		}
	}

	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, nil, err)

	outcome := "network_error"
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		outcome = "timeout"
	}

	return attemptResult{
		message:   fmt.Sprintf("request failed: %v", err),
		retryable: retry,
		outcome:   outcome,
		verdict:   verdictUnhealthy,
	}
}

// classifyResponse maps an HTTP status and body onto an attempt result.
// Any non-2xx status is a failure whatever the body says.
func classifyResponse(status int, body []byte) attemptResult {
	switch {
	case status >= 200 && status < 300:
		var resp types.AdapterResponse
		if err := sonic.Unmarshal(body, &resp); err != nil {
			return attemptResult{
				message: fmt.Sprintf("invalid adapter response: %v", err),
				outcome: "invalid_body",
				verdict: verdictUnhealthy,
			}
		}
		return attemptResult{
			resp:    resp.Normalize(),
			done:    true,
			outcome: "ok",
			verdict: verdictHealthy,
		}
	case status >= 400 && status < 500:
		return attemptResult{
			message: "adapter rejected request: " + httpMessage(status, body),
			outcome: "client_error",
			verdict: verdictHealthy,
		}
	case status >= 500:
		return attemptResult{
			message:   "adapter service error: " + httpMessage(status, body),
			retryable: true,
			outcome:   "server_error",
			verdict:   verdictUnhealthy,
		}
	default:
		return attemptResult{
			message: "unexpected response: " + httpMessage(status, body),
			outcome: "unexpected_status",
			verdict: verdictUnhealthy,
		}
	}
}

const maxBodyInMessage = 200

// httpMessage prefers the adapter's own error text over the raw body
func httpMessage(status int, body []byte) string {
	msg := fmt.Sprintf("HTTP %d", status)

	var resp types.AdapterResponse
	if err := sonic.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return msg + ": " + resp.Error
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return msg
	}
	if len(text) > maxBodyInMessage {
		text = text[:maxBodyInMessage] + "..."
	}
	return msg + ": " + text
}
