// Package server exposes the bridge service over websocket and gRPC and
// reports its health over HTTP and the standard gRPC health protocol.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	"github.com/msto63/scenebridge/internal/bridge/service"
	coreGrpc "github.com/msto63/scenebridge/pkg/core/grpc"
	"github.com/msto63/scenebridge/pkg/core/health"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"github.com/msto63/scenebridge/pkg/core/version"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server is the bridge transport server
type Server struct {
	httpServer *http.Server
	grpc       *coreGrpc.Server
	grpcHealth *grpchealth.Server
	service    *service.Service
	health     *health.Registry
	logger     *logging.Logger
	config     Config
	httpAddr   string
}

// Config holds server configuration
type Config struct {
	Host             string
	WebSocketPort    int
	GRPCPort         int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
	AllowedOrigins   []string
	EnableReflection bool
	Version          string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		WebSocketPort:  9400,
		GRPCPort:       9410,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 4 * 1024 * 1024,
		Version:        version.Bridge,
	}
}

// New creates a new bridge server around svc
func New(cfg Config, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, mdwerror.New("bridge service is required").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("server.New")
	}
	if cfg.Version == "" {
		cfg.Version = version.Bridge
	}
	logger := logging.New("bridge-server")

	// gRPC transport
	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.EnableReflection = cfg.EnableReflection
	if cfg.MaxMessageSize > 0 {
		grpcCfg.MaxRecvMsgSize = int(cfg.MaxMessageSize)
		grpcCfg.MaxSendMsgSize = int(cfg.MaxMessageSize)
	}
	grpcServer := coreGrpc.NewServer(grpcCfg)
	RegisterBridgeServer(grpcServer.GRPCServer(), &grpcBridge{service: svc})

	grpcHealth := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer.GRPCServer(), grpcHealth)

	// Health registry
	healthRegistry := health.NewRegistry("scenebridge", cfg.Version)
	healthRegistry.RegisterFunc("scene", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "scene",
			Status:  health.StatusHealthy,
			Message: "Scene host is available",
			Details: map[string]interface{}{"objects": len(svc.Scene().Objects())},
		}
	})
	healthRegistry.RegisterFunc("journal", func(ctx context.Context) health.CheckResult {
		return journalCheck(ctx, svc)
	})
	healthRegistry.RegisterFunc("dispatcher", func(ctx context.Context) health.CheckResult {
		stats := svc.Stats()
		result := health.CheckResult{
			Name:    "dispatcher",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d verbs registered", len(svc.Verbs())),
			Details: map[string]interface{}{
				"commands": stats.Commands,
				"unknown":  stats.Unknown,
				"panics":   stats.Panics,
			},
		}
		if stats.Panics > 0 {
			result.Status = health.StatusDegraded
			result.Message = fmt.Sprintf("%d handler panics recovered", stats.Panics)
		}
		return result
	})

	s := &Server{
		grpc:       grpcServer,
		grpcHealth: grpcHealth,
		service:    svc,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
		httpAddr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.WebSocketPort),
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(svc, cfg))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/verbs", s.handleVerbs)

	s.httpServer = &http.Server{
		Addr:              s.httpAddr,
		Handler:           loggingMiddleware(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func journalCheck(ctx context.Context, svc *service.Service) health.CheckResult {
	result := health.CheckResult{Name: "journal", Status: health.StatusHealthy}

	journal := svc.Journal()
	if journal == nil {
		result.Message = "Journal disabled"
		return result
	}
	stats, err := journal.Stats(ctx)
	if err != nil {
		result.Status = health.StatusDegraded
		result.Message = "Journal unavailable: " + err.Error()
		return result
	}
	result.Message = "Journal is recording"
	result.Details = map[string]interface{}{"entries": stats["total"]}
	return result
}

// handleHealth writes the health report as JSON
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	code := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// handleVerbs lists the registered command verbs
func (s *Server) handleVerbs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"protocol": version.Protocol,
		"verbs":    s.service.Verbs(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the connection for upgrades
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack implements http.Hijacker for the websocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Serve serves both transports on the given listeners until Stop is
// called or one of them fails
func (s *Server) Serve(wsListener, grpcListener net.Listener) error {
	s.logger.Info("Starting sceneBRIDGE",
		"websocket", wsListener.Addr().String(),
		"grpc", grpcListener.Addr().String(),
		"version", s.config.Version,
	)
	s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.grpcHealth.SetServingStatus(BridgeServiceName, healthpb.HealthCheckResponse_SERVING)

	errs := make(chan error, 2)
	go func() {
		if err := s.httpServer.Serve(wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("websocket server: %w", err)
			return
		}
		errs <- nil
	}()
	go func() {
		if err := s.grpc.Serve(grpcListener); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
			return
		}
		errs <- nil
	}()

	return <-errs
}

// Start listens on the configured addresses and serves until stopped
func (s *Server) Start() error {
	wsListener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen for websocket").
			WithCode(mdwerror.CodeTransportError).
			WithDetail("address", s.httpAddr)
	}
	grpcAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		wsListener.Close()
		return mdwerror.Wrap(err, "failed to listen for gRPC").
			WithCode(mdwerror.CodeTransportError).
			WithDetail("address", grpcAddr)
	}
	return s.Serve(wsListener, grpcListener)
}

// Stop gracefully stops both transports
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping sceneBRIDGE")
	s.grpcHealth.Shutdown()

	err := s.httpServer.Shutdown(ctx)
	s.grpc.StopWithTimeout(ctx)
	return err
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
