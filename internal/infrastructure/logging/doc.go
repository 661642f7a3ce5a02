// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The engine logs lifecycle events at Info, rejected requests at Warn and
// per-call details at Debug. Fields use snake_case keys (method, reason,
// samples, shape_a) so log queries line up with metric labels.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Development: true})
//	logger.Info("engine listening", zap.String("addr", ":9101"))
//	defer logger.Sync()
package logging
