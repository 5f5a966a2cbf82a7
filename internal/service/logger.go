package service

import "log"

// Logger interface for logging operations.
type Logger interface {
	Printf(format string, v ...interface{})
}

// StdLogger logs through the standard library logger.
type StdLogger struct{}

// NewStdLogger creates a standard library backed logger.
func NewStdLogger() *StdLogger {
	return &StdLogger{}
}

func (l *StdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
