// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used inside the scene bridge. Codes
//              never travel over the wire; operations translate them into
//              result tokens and log the code locally.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-18 v0.2.0: Replaced platform codes with the bridge taxonomy

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL"

	// Command handling
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"
	CodeInvalidPayload Code = "INVALID_PAYLOAD"
	CodeObjectNotFound Code = "OBJECT_NOT_FOUND"
	CodeInvalidName    Code = "INVALID_NAME"

	// Host scene refusals
	CodeAssetNotFound Code = "ASSET_NOT_FOUND"
	CodeSpawnFailed   Code = "SPAWN_FAILED"
	CodeHostRefused   Code = "HOST_REFUSED"

	// Infrastructure
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeTransportError Code = "TRANSPORT_ERROR"
	CodeInvalidConfig  Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal,
		CodeUnknownCommand, CodeInvalidPayload, CodeObjectNotFound, CodeInvalidName,
		CodeAssetNotFound, CodeSpawnFailed, CodeHostRefused,
		CodeDatabaseError, CodeTransportError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeUnknownCommand, CodeInvalidPayload, CodeObjectNotFound, CodeInvalidName:
		return "command"
	case CodeAssetNotFound, CodeSpawnFailed, CodeHostRefused:
		return "host"
	case CodeDatabaseError, CodeTransportError, CodeInvalidConfig:
		return "infrastructure"
	default:
		return "generic"
	}
}
