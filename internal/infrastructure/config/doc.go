// Package config provides 12-factor configuration management for adapterhub.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Adapter: hub URL, auth token, timeout, rate limit, registry manifest
//   - Retry: attempt ceiling and exponential backoff
//   - Breaker: failure threshold and cooldown
//   - Health: background health monitor
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	c, err := client.New(cfg.ToClientConfig(), registry.Default())
//
// Environment Variables:
//   - ADAPTER_BASE_URL, ADAPTER_AUTH_TOKEN, ADAPTER_TIMEOUT
//   - ADAPTER_RETRY_MAX_ATTEMPTS, ADAPTER_RETRY_BASE_DELAY, ADAPTER_RETRY_MAX_DELAY, ADAPTER_RETRY_MULTIPLIER
//   - ADAPTER_BREAKER_THRESHOLD, ADAPTER_BREAKER_COOLDOWN
//   - ADAPTER_HEALTH_ENABLED, ADAPTER_HEALTH_INTERVAL
//   - ADAPTER_RATE_LIMIT_RPS, ADAPTER_BATCH_CONCURRENCY, ADAPTER_REGISTRY_FILE
//   - LOG_LEVEL, LOG_DEV
package config
