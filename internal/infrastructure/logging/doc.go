// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so command output on stdout stays clean.
//
// Components take a *Logger and fall back to a no-op logger when given
// nil, see OrNop.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("client").ForAdapter("pdf-extractor")
//	log.Warn("attempt failed", zap.Int("attempt", 2), zap.Error(err))
package logging
