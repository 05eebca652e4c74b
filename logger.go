package bootstrap

// Logger defines the interface for framework logging.
// The bootstrap framework uses structured logging with key-value pairs
// so implementing applications can control how framework logs appear.
//
// The interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// This approach is compatible with popular structured logging libraries
// like slog, logrus, zap, and others.
//
// Example implementation using Go's standard log/slog:
//
//	type SlogLogger struct {
//		logger *slog.Logger
//	}
//
//	func (l *SlogLogger) Info(msg string, args ...any) {
//		l.logger.Info(msg, args...)
//	}
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	// Used for normal framework events like initializer completion.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Used for conditions that are unusual but don't stop the bring-up.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Used for detailed diagnostics like dependency resolution traces.
	Debug(msg string, args ...any)
}

// NoopLogger discards all log output. It is the default when no logger is
// supplied so instrumentation never crashes the caller.
type NoopLogger struct{}

func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Debug(string, ...any) {}
