// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     logging
// Description: TailWriter keeps the most recent log entries in memory
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"
)

// TailEntry represents a log entry as written by the foundation JSON formatter
type TailEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Logger    string `json:"logger"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`

	// Raw is the original line, used when it was not JSON
	Raw string `json:"-"`
}

// TailWriter implements io.Writer, passing every write to a fallback
// writer and remembering the last entries for display
type TailWriter struct {
	capacity int
	fallback io.Writer

	entries []TailEntry
	next    int
	full    bool
	mu      sync.Mutex
}

// DefaultTailCapacity is used when NewTailWriter gets a non-positive capacity
const DefaultTailCapacity = 200

// NewTailWriter creates a TailWriter. A nil fallback discards output.
func NewTailWriter(capacity int, fallback io.Writer) *TailWriter {
	if capacity <= 0 {
		capacity = DefaultTailCapacity
	}
	if fallback == nil {
		fallback = io.Discard
	}
	return &TailWriter{
		capacity: capacity,
		fallback: fallback,
		entries:  make([]TailEntry, capacity),
	}
}

// Write implements io.Writer
func (w *TailWriter) Write(p []byte) (n int, err error) {
	n, err = w.fallback.Write(p)
	if err != nil {
		return n, err
	}

	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry TailEntry
		if jsonErr := json.Unmarshal(line, &entry); jsonErr != nil {
			entry = TailEntry{Raw: string(line)}
		}
		w.push(entry)
	}

	return len(p), nil
}

func (w *TailWriter) push(entry TailEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries[w.next] = entry
	w.next = (w.next + 1) % w.capacity
	if w.next == 0 {
		w.full = true
	}
}

// Entries returns the remembered entries, oldest first
func (w *TailWriter) Entries() []TailEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.full {
		out := make([]TailEntry, w.next)
		copy(out, w.entries[:w.next])
		return out
	}

	out := make([]TailEntry, 0, w.capacity)
	out = append(out, w.entries[w.next:]...)
	out = append(out, w.entries[:w.next]...)
	return out
}

// Len returns the number of remembered entries
func (w *TailWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.full {
		return w.capacity
	}
	return w.next
}
