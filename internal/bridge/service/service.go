// Package service ties the bridge together: it owns the scene, the
// dispatcher with all object handlers, and the command journal. Every
// transport executes commands through Service.Execute, which runs them
// strictly one at a time.
package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/scenebridge/internal/bridge/dispatch"
	"github.com/msto63/scenebridge/internal/bridge/ops"
	"github.com/msto63/scenebridge/internal/bridge/store"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

// ResultUnknownCommand is returned for lines no handler claims
const ResultUnknownCommand = "UnknownCommand"

// Transport names recorded in the journal
const (
	TransportWebSocket = "ws"
	TransportGRPC      = "grpc"
	TransportCLI       = "cli"
	TransportConsole   = "console"
	TransportReplay    = "replay"
)

// Request is one command line received by a transport
type Request struct {
	Line      string
	Transport string
	RequestID string
}

// Stats holds command counters since start
type Stats struct {
	Commands int64
	Unknown  int64
	Panics   int64
	Started  time.Time
}

// Config holds service configuration
type Config struct {
	// Scene is the host to operate on; nil creates an empty in-memory scene
	Scene scene.Context
	// GeneratedName replaces the reserved name on rename
	GeneratedName string
	// Journal records executed commands; nil disables journaling
	Journal store.Journal
	// JournalTimeout bounds a single journal write
	JournalTimeout time.Duration
	Logger         *logging.Logger
}

// Service executes bridge commands
type Service struct {
	scene          scene.Context
	dispatcher     *dispatch.Dispatcher
	journal        store.Journal
	journalTimeout time.Duration
	logger         *logging.Logger

	mu    sync.Mutex
	stats Stats
}

// NewService creates a new bridge service with every object handler registered
func NewService(cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("bridge")
	}
	ctx := cfg.Scene
	if ctx == nil {
		ctx = scene.New(nil)
	}
	if cfg.JournalTimeout <= 0 {
		cfg.JournalTimeout = 5 * time.Second
	}

	d := dispatch.New(logger)
	env := ops.NewEnv(ctx, cfg.GeneratedName, logger)
	for _, h := range ops.All(env) {
		if err := d.Register(h); err != nil {
			return nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	logger.Info("Bridge service created", "verbs", len(d.Verbs()), "journal", cfg.Journal != nil)

	return &Service{
		scene:          ctx,
		dispatcher:     d,
		journal:        cfg.Journal,
		journalTimeout: cfg.JournalTimeout,
		logger:         logger,
		stats:          Stats{Started: time.Now()},
	}, nil
}

// Scene returns the host the service operates on
func (s *Service) Scene() scene.Context {
	return s.scene
}

// Journal returns the command journal, nil when journaling is off
func (s *Service) Journal() store.Journal {
	return s.journal
}

// Verbs lists the registered verbs
func (s *Service) Verbs() []string {
	return s.dispatcher.Verbs()
}

// Stats returns a snapshot of the command counters
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Execute runs one command line and returns its result. Commands never
// overlap and are journaled in execution order; ctx only bounds the
// journal write.
func (s *Service) Execute(ctx context.Context, req Request) string {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	verb, _ := dispatch.Split(req.Line)
	logger := s.logger.WithCommand(req.RequestID, req.Transport, verb)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, handled, panicked := s.dispatch(logger, req.Line)
	duration := time.Since(start)

	s.stats.Commands++
	if panicked {
		s.stats.Panics++
	}
	if !handled {
		s.stats.Unknown++
		logger.Warn("Unknown command")
		result = ResultUnknownCommand
	} else {
		logger.Debug("Command executed",
			logging.KeyResult, result,
			logging.KeyDuration, duration,
		)
	}

	// the entry is written before the next command may run, so the
	// journal sequence matches execution order
	s.record(ctx, logger, &store.Entry{
		Transport: req.Transport,
		RequestID: req.RequestID,
		Verb:      verb,
		Command:   req.Line,
		Result:    result,
		Handled:   handled,
		Duration:  duration,
	})
	return result
}

// dispatch runs a line through the dispatcher; callers hold the lock
func (s *Service) dispatch(logger *logging.Logger, line string) (result string, handled, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panic recovered", "panic", r, "stack", string(debug.Stack()))
			result, handled, panicked = ops.ResultFailed, true, true
		}
	}()
	result, handled = s.dispatcher.Execute(line)
	return result, handled, false
}

// record writes one journal entry; callers hold the lock
func (s *Service) record(ctx context.Context, logger *logging.Logger, entry *store.Entry) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.journalTimeout)
	defer cancel()

	if err := s.journal.Record(ctx, entry); err != nil {
		logger.Error("Failed to record command", "error", err)
	}
}

// ReplayReport summarizes a journal replay
type ReplayReport struct {
	Executed int
	// Diverged counts commands whose result differs from the recorded one
	Diverged int
}

// Replay executes the handled commands of source in recording order.
// The replayed commands are journaled like any other command, so source
// should not be the service's own journal.
func (s *Service) Replay(ctx context.Context, source store.Journal, filter store.Filter) (ReplayReport, error) {
	filter.Ascending = true
	filter.HandledOnly = true

	entries, err := source.Query(ctx, filter)
	if err != nil {
		return ReplayReport{}, err
	}

	var report ReplayReport
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := s.Execute(ctx, Request{Line: e.Command, Transport: TransportReplay})
		report.Executed++
		if result != e.Result {
			report.Diverged++
			s.logger.Debug("Replay diverged", "seq", e.Seq, "recorded", e.Result, "replayed", result)
		}
	}

	s.logger.Info("Journal replayed", "executed", report.Executed, "diverged", report.Diverged)
	return report, nil
}

// Close releases the journal
func (s *Service) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}
