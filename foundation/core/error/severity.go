// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels that select the log level used for
//              an error. Expected command outcomes are low, host refusals
//              medium and infrastructure failures high.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-18 v0.2.0: Severity mapping for bridge codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers expected outcomes such as a missing object
	SeverityLow Severity = iota

	// SeverityMedium covers refusals by the host scene
	SeverityMedium

	// SeverityHigh covers failures of the bridge infrastructure
	SeverityHigh

	// SeverityCritical covers states the bridge cannot continue from
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode determines the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeDatabaseError, CodeTransportError, CodeInvalidConfig:
		return SeverityHigh
	case CodeAssetNotFound, CodeSpawnFailed, CodeHostRefused, CodeUnknownCommand:
		return SeverityMedium
	case CodeInvalidPayload, CodeObjectNotFound, CodeInvalidName:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
