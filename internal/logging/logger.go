package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output) so normal CLI
// output stays clean.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "HAWKROLL_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks HAWKROLL_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	// Customize encoder for better readability
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the HAWKROLL_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for CLI commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogAPIRequest logs an outgoing management-API request
func LogAPIRequest(method string, url string) {
	Debug("API request",
		zap.String("method", method),
		zap.String("url", url),
	)
}

// LogAPIResponse logs a management-API response
func LogAPIResponse(method string, url string, statusCode int, elapsed time.Duration) {
	Debug("API response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Duration("elapsed", elapsed),
	)
}

// LogRetry logs a retry attempt for a failed API call
func LogRetry(method string, url string, attempt int, delay time.Duration, err error) {
	Warn("Retrying API call",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
}

// LogRolloutStateChange logs an observed rollout state transition
func LogRolloutStateChange(rolloutID int64, oldState string, newState string) {
	Info("Rollout state change",
		zap.Int64("rollout_id", rolloutID),
		zap.String("old_state", oldState),
		zap.String("new_state", newState),
	)
}

// LogPollTick logs a single rollout poll observation
func LogPollTick(rolloutID int64, state string, percent int, percentKnown bool, completed, failed, pending, total int) {
	fields := []zap.Field{
		zap.Int64("rollout_id", rolloutID),
		zap.String("state", state),
		zap.Int("completed", completed),
		zap.Int("failed", failed),
		zap.Int("pending", pending),
		zap.Int("total", total),
	}
	if percentKnown {
		fields = append(fields, zap.Int("percent", percent))
	} else {
		fields = append(fields, zap.String("percent", "unknown"))
	}
	Info("Rollout poll tick", fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
