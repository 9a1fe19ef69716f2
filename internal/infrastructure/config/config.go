package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/adapterhub/internal/client"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/logging"
)

// Config holds all process configuration.
type Config struct {
	Adapter AdapterConfig
	Retry   RetryConfig
	Breaker BreakerConfig
	Health  HealthConfig
	Logging LogConfig
}

// AdapterConfig holds adapter hub connection settings.
type AdapterConfig struct {
	BaseURL          string        `envconfig:"ADAPTER_BASE_URL" default:"http://localhost:8080"`
	AuthToken        string        `envconfig:"ADAPTER_AUTH_TOKEN"`
	Timeout          time.Duration `envconfig:"ADAPTER_TIMEOUT" default:"30s"`
	RateLimitRPS     float64       `envconfig:"ADAPTER_RATE_LIMIT_RPS" default:"0"`
	BatchConcurrency int           `envconfig:"ADAPTER_BATCH_CONCURRENCY" default:"0"`
	RegistryFile     string        `envconfig:"ADAPTER_REGISTRY_FILE"`
}

// RetryConfig holds the retry policy.
type RetryConfig struct {
	MaxAttempts int           `envconfig:"ADAPTER_RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay   time.Duration `envconfig:"ADAPTER_RETRY_BASE_DELAY" default:"1s"`
	MaxDelay    time.Duration `envconfig:"ADAPTER_RETRY_MAX_DELAY" default:"10s"`
	Multiplier  float64       `envconfig:"ADAPTER_RETRY_MULTIPLIER" default:"2"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold uint32        `envconfig:"ADAPTER_BREAKER_THRESHOLD" default:"5"`
	Cooldown         time.Duration `envconfig:"ADAPTER_BREAKER_COOLDOWN" default:"60s"`
}

// HealthConfig holds health monitor settings.
type HealthConfig struct {
	Enabled  bool          `envconfig:"ADAPTER_HEALTH_ENABLED" default:"false"`
	Interval time.Duration `envconfig:"ADAPTER_HEALTH_INTERVAL" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Adapter: AdapterConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    10 * time.Second,
			Multiplier:  2,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			Cooldown:         60 * time.Second,
		},
		Health: HealthConfig{
			Enabled:  false,
			Interval: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// ToClientConfig builds the adapter client configuration.
func (c *Config) ToClientConfig() client.Config {
	headers := map[string]string{}
	if c.Adapter.AuthToken != "" {
		headers["Authorization"] = "Bearer " + c.Adapter.AuthToken
	}

	return client.Config{
		BaseURL: c.Adapter.BaseURL,
		Headers: headers,
		Timeout: c.Adapter.Timeout,
		Retry: client.RetryConfig{
			MaxAttempts:       c.Retry.MaxAttempts,
			BaseDelay:         c.Retry.BaseDelay,
			MaxDelay:          c.Retry.MaxDelay,
			BackoffMultiplier: c.Retry.Multiplier,
		},
		HealthCheck: client.HealthCheckConfig{
			Enabled:  c.Health.Enabled,
			Interval: c.Health.Interval,
		},
		Breaker: client.BreakerConfig{
			FailureThreshold: c.Breaker.FailureThreshold,
			Cooldown:         c.Breaker.Cooldown,
		},
		RateLimit:        c.Adapter.RateLimitRPS,
		BatchConcurrency: c.Adapter.BatchConcurrency,
	}
}

// ToLoggingConfig builds the logger configuration.
func (c *Config) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Logging.Development {
		cfg = logging.DevelopmentConfig()
	}
	cfg.Level = c.Logging.Level
	return cfg
}
