package logger

import "github.com/baditaflorin/go_nec_fidelity/internal/ports"

// NopLogger discards everything.
type NopLogger struct{}

// NewNopLogger returns a logger that discards all output.
func NewNopLogger() ports.Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Close() error                 { return nil }
