// Package store persists the command journal: every command line the
// bridge executed together with its result.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one executed command
type Entry struct {
	ID        string        `json:"id"`
	Seq       int64         `json:"seq"`
	Timestamp time.Time     `json:"timestamp"`
	Transport string        `json:"transport"`
	RequestID string        `json:"request_id,omitempty"`
	Verb      string        `json:"verb"`
	Command   string        `json:"command"`
	Result    string        `json:"result"`
	Handled   bool          `json:"handled"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying the journal
type Filter struct {
	Verb      string
	Transport string
	RequestID string
	StartTime time.Time
	EndTime   time.Time
	// HandledOnly skips commands no handler claimed
	HandledOnly bool
	// Ascending returns the oldest entries first
	Ascending bool
	Limit     int
	Offset    int
}

// Journal defines the interface for command persistence
type Journal interface {
	Record(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (map[string]int64, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// prepare fills ID and timestamp of a new entry
func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
}

// SQLiteJournal implements Journal using SQLite
type SQLiteJournal struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite journal
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/journal.db",
	}
}

// NewSQLiteJournal opens (and creates) the journal database
func NewSQLiteJournal(cfg SQLiteConfig) (*SQLiteJournal, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema")
	}
	return j, nil
}

func dbError(err error, message string) error {
	return mdwerror.Wrap(err, message).WithCode(mdwerror.CodeDatabaseError)
}

// initSchema creates the necessary tables
func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commands (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		timestamp DATETIME NOT NULL,
		transport TEXT NOT NULL,
		request_id TEXT,
		verb TEXT NOT NULL,
		command TEXT NOT NULL,
		result TEXT NOT NULL,
		handled INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_verb ON commands(verb);
	CREATE INDEX IF NOT EXISTS idx_commands_request_id ON commands(request_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Record appends an entry and fills its ID, timestamp and sequence number
func (j *SQLiteJournal) Record(ctx context.Context, entry *Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	prepare(entry)

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO commands (id, timestamp, transport, request_id, verb, command, result, handled, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, entry.Transport, entry.RequestID, entry.Verb, entry.Command,
		entry.Result, entry.Handled, int64(entry.Duration))
	if err != nil {
		return dbError(err, "failed to insert journal entry")
	}

	if seq, err := res.LastInsertId(); err == nil {
		entry.Seq = seq
	}
	return nil
}

// Query retrieves entries based on filter criteria, newest first unless
// the filter asks for ascending order
func (j *SQLiteJournal) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	query := `SELECT seq, id, timestamp, transport, request_id, verb, command, result, handled, duration_ns FROM commands WHERE 1=1`
	var args []interface{}

	if filter.Verb != "" {
		query += " AND verb = ?"
		args = append(args, filter.Verb)
	}
	if filter.Transport != "" {
		query += " AND transport = ?"
		args = append(args, filter.Transport)
	}
	if filter.RequestID != "" {
		query += " AND request_id = ?"
		args = append(args, filter.RequestID)
	}
	if !filter.StartTime.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}
	if filter.HandledOnly {
		query += " AND handled = 1"
	}

	if filter.Ascending {
		query += " ORDER BY seq ASC"
	} else {
		query += " ORDER BY seq DESC"
	}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query journal")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var requestID sql.NullString
		var durationNs int64

		if err := rows.Scan(&entry.Seq, &entry.ID, &entry.Timestamp, &entry.Transport, &requestID,
			&entry.Verb, &entry.Command, &entry.Result, &entry.Handled, &durationNs); err != nil {
			return nil, dbError(err, "failed to scan journal entry")
		}
		if requestID.Valid {
			entry.RequestID = requestID.String
		}
		entry.Duration = time.Duration(durationNs)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Stats returns the number of entries per verb plus a "total" count
func (j *SQLiteJournal) Stats(ctx context.Context) (map[string]int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx, `SELECT verb, COUNT(*) FROM commands GROUP BY verb`)
	if err != nil {
		return nil, dbError(err, "failed to read journal stats")
	}
	defer rows.Close()

	stats := map[string]int64{"total": 0}
	for rows.Next() {
		var verb string
		var count int64
		if err := rows.Scan(&verb, &count); err != nil {
			return nil, dbError(err, "failed to scan journal stats")
		}
		stats[verb] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

// Prune removes entries older than the specified duration
func (j *SQLiteJournal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := j.db.ExecContext(ctx, `DELETE FROM commands WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune journal")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Close closes the database
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

// MemoryJournal implements Journal in memory
type MemoryJournal struct {
	entries []*Entry
	seq     int64
	mu      sync.RWMutex
}

// NewMemoryJournal creates an empty in-memory journal
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record appends an entry
func (m *MemoryJournal) Record(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prepare(entry)
	m.seq++
	entry.Seq = m.seq

	stored := *entry
	m.entries = append(m.entries, &stored)
	return nil
}

// Query retrieves entries based on filter criteria
func (m *MemoryJournal) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Entry
	for _, e := range m.entries {
		if filter.Verb != "" && e.Verb != filter.Verb {
			continue
		}
		if filter.Transport != "" && e.Transport != filter.Transport {
			continue
		}
		if filter.RequestID != "" && e.RequestID != filter.RequestID {
			continue
		}
		if !filter.StartTime.IsZero() && e.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && e.Timestamp.After(filter.EndTime) {
			continue
		}
		if filter.HandledOnly && !e.Handled {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}

	sort.Slice(out, func(a, b int) bool {
		if filter.Ascending {
			return out[a].Seq < out[b].Seq
		}
		return out[a].Seq > out[b].Seq
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Stats returns the number of entries per verb plus a "total" count
func (m *MemoryJournal) Stats(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]int64{"total": int64(len(m.entries))}
	for _, e := range m.entries {
		stats[e.Verb]++
	}
	return stats, nil
}

// Prune removes old entries
func (m *MemoryJournal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := m.entries[:0]
	var deleted int64
	for _, e := range m.entries {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return deleted, nil
}

// Close is a no-op for the memory journal
func (m *MemoryJournal) Close() error {
	return nil
}

// Compile-time interface checks
var (
	_ Journal = (*SQLiteJournal)(nil)
	_ Journal = (*MemoryJournal)(nil)
)

// Describe formats an entry as a single line for listings
func Describe(e *Entry) string {
	status := e.Result
	if !e.Handled {
		status = "(unknown verb)"
	}
	return fmt.Sprintf("%5d %s %-9s %-16s %s -> %s",
		e.Seq, e.Timestamp.Format("2006-01-02 15:04:05"), e.Transport, e.Verb, e.Command, status)
}
