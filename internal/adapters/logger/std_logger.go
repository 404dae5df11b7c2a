// Package logger adapts github.com/baditaflorin/l to ports.Logger.
package logger

import (
	"io"
	"os"

	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
	"github.com/baditaflorin/l"
)

// StdLogger adapts the l.Logger to the ports.Logger interface.
type StdLogger struct {
	logger l.Logger
}

// DefaultConfig returns the logger configuration used when callers do not supply one.
func DefaultConfig(output io.Writer) l.Config {
	if output == nil {
		output = os.Stderr
	}
	return l.Config{
		Output:      output,
		JsonFormat:  false,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,      // 1MB buffer
		MaxFileSize: 10 * 1024 * 1024, // 10MB max file size
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	}
}

// NewStdLogger creates a new standard logger adapter writing text to stderr.
func NewStdLogger() (ports.Logger, error) {
	return NewCustomStdLogger(DefaultConfig(os.Stderr))
}

// NewCustomStdLogger creates a new standard logger with custom configuration.
func NewCustomStdLogger(config l.Config) (ports.Logger, error) {
	logger, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, err
	}

	return &StdLogger{logger: logger}, nil
}

// FromExisting creates a new StdLogger from an existing l.Logger.
func FromExisting(logger l.Logger) ports.Logger {
	return &StdLogger{logger: logger}
}

// Debug logs a debug message.
func (s *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message.
func (s *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logger.Info(msg, keysAndValues...)
}

// Warn logs a warning message.
func (s *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logger.Warn(msg, keysAndValues...)
}

// Error logs an error message.
func (s *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logger.Error(msg, keysAndValues...)
}

// Close flushes and closes the underlying logger.
func (s *StdLogger) Close() error {
	return s.logger.Close()
}
