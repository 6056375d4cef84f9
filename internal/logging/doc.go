// Package logging provides structured logging for the hawkroll CLI.
//
// This package wraps zap with convenience functions for the logging patterns
// used throughout the tool. By default logging is silent so that command
// output stays readable; setting HAWKROLL_LOG_LEVEL enables structured logs
// alongside the normal console output.
//
// # Log Levels
//
//   - Debug: API request/response details, retry bookkeeping
//   - Info: Rollout lifecycle events (poll ticks, state changes)
//   - Warn: Non-fatal issues (retries, transient poll failures)
//   - Error: Fatal issues surfaced before the CLI exits
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Rollout state change",
//	    zap.Int64("rollout_id", 42),
//	    zap.String("old_state", "starting"),
//	    zap.String("new_state", "running"),
//	)
//
// # Configuration
//
// Initialize logging at CLI startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
