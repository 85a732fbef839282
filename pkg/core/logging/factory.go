// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating foundation loggers
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"sync"

	mdwlog "github.com/msto63/scenebridge/foundation/core/log"
)

var (
	// defaults applied by New; set once from the CLI/config
	defaultConfig   = LoggerConfig{Level: "info", Format: "json"}
	defaultConfigMu sync.RWMutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format
	Format string // "json" or "text" (default: json)

	// Output replaces stderr when set
	Output io.Writer

	// Additional outputs (besides the main output)
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns the process-wide configuration for a service
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	defaultConfigMu.RLock()
	cfg := defaultConfig
	defaultConfigMu.RUnlock()

	cfg.ServiceName = serviceName
	return cfg
}

// Configure sets the process-wide defaults used by New and NewSimpleLogger
func Configure(cfg LoggerConfig) {
	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	cfg.ServiceName = ""
	defaultConfig = cfg
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level := parseLevel(cfg.Level)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	format := mdwlog.FormatJSON
	if cfg.Format == "text" {
		format = mdwlog.FormatText
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// NewSimpleLogger creates a logger with the process-wide defaults
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// parseLevel converts a string level to mdwlog.Level, falling back to info
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return parsed
}
