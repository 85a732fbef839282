// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     console
// Description: Message types for async operations in the console
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package console

import (
	"time"
)

// Exchange is one executed command in the transcript
type Exchange struct {
	Timestamp time.Time
	Command   string
	Result    string
	Err       error
	Duration  time.Duration
}

// Message types for tea.Cmd async operations

// resultMsg is sent when a command finished
type resultMsg struct {
	exchange Exchange
}

// tickMsg is used for periodic log refreshes
type tickMsg time.Time
