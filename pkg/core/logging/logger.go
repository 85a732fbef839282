// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     logging
// Description: Key-value logging on top of the foundation logger
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	mdwlog "github.com/msto63/scenebridge/foundation/core/log"
)

// Field keys of command log entries
const (
	KeyVerb      = "verb"
	KeyTransport = "transport"
	KeyResult    = "result"
	KeyDuration  = "duration"
	KeySession   = "session"
)

// Logger wraps the foundation logger with key-value logging methods
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a key-value logger with the process-wide defaults
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing foundation logger
func Wrap(logger *mdwlog.Logger, name string) *Logger {
	return &Logger{Logger: logger, name: name}
}

// With returns a logger carrying the given key-value pairs on every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.WithFields(toFields(keysAndValues...)),
		name:   l.name,
	}
}

// WithCommand tags entries with everything that identifies one command
// line: its request ID, the transport it arrived on and its verb. Empty
// parts are left out.
func (l *Logger) WithCommand(requestID, transport, verb string) *Logger {
	fields := make(mdwlog.Fields, 2)
	if transport != "" {
		fields[KeyTransport] = transport
	}
	if verb != "" {
		fields[KeyVerb] = verb
	}

	logger := l.Logger
	if len(fields) > 0 {
		logger = logger.WithFields(fields)
	}
	if requestID != "" {
		logger = logger.WithRequestID(requestID)
	}
	return &Logger{Logger: logger, name: l.name}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields; a trailing key
// without value and non-string keys are dropped
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
