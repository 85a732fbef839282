// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     version
// Description: Version information for the bridge and its wire protocol
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Bridge  = "1.0.0"
	Console = "1.0.0"
	Journal = "1.0.0"

	// Protocol is the command protocol revision spoken on every transport
	Protocol = "1"
)

// Set at build time via -ldflags "-X .../version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "bridge":
		return Bridge
	case "console":
		return Console
	case "journal":
		return Journal
	default:
		return Platform
	}
}

// Info returns a one-line build description
func Info() string {
	return fmt.Sprintf("sceneBRIDGE %s (protocol %s, commit %s, built %s, %s/%s)",
		Platform, Protocol, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
