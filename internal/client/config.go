package client

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultTimeout             = 30 * time.Second
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultFailureThreshold    = 5
	DefaultCooldown            = 60 * time.Second

	runAdapterPath  = "/run-adapter"
	healthPath      = "/health"
	requestIDHeader = "X-Request-ID"
)

// Config is the value the client is built from. Zero fields take defaults.
type Config struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration

	// Retry fields left at zero keep their default
	Retry       RetryConfig
	HealthCheck HealthCheckConfig
	Breaker     BreakerConfig

	// RateLimit caps outbound requests per second; 0 is unlimited
	RateLimit float64
	// BatchConcurrency caps concurrent calls in a batch; 0 is unlimited
	BatchConcurrency int
}

// HealthCheckConfig drives the background health monitor
type HealthCheckConfig struct {
	Enabled  bool
	Interval time.Duration
}

// BreakerConfig tunes the per-adapter circuit breakers
type BreakerConfig struct {
	FailureThreshold uint32
	Cooldown         time.Duration
}

// Validate checks the fields that have no sensible default
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.BatchConcurrency < 0 {
		return fmt.Errorf("batch concurrency cannot be negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Retry = c.Retry.withDefaults()
	if c.HealthCheck.Interval <= 0 {
		c.HealthCheck.Interval = DefaultHealthCheckInterval
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = DefaultFailureThreshold
	}
	if c.Breaker.Cooldown <= 0 {
		c.Breaker.Cooldown = DefaultCooldown
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	c.Headers = headers
	return c
}
