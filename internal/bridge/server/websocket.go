package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

const (
	// defaultPingPeriod applies when no read deadline is configured
	defaultPingPeriod = 30 * time.Second
	pingWriteWait     = 10 * time.Second
)

// WebSocketHandler serves the command protocol over websocket. Every
// text frame is one command line; the reply frame carries its result.
type WebSocketHandler struct {
	service      *service.Service
	upgrader     websocket.Upgrader
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxMessage   int64
	logger       *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service, cfg Config) *WebSocketHandler {
	h := &WebSocketHandler{
		service:      svc,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		maxMessage:   cfg.MaxMessageSize,
		logger:       logging.New("bridge-websocket"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// originChecker allows every origin when the list is empty (local
// tools usually send none) and otherwise only the listed hosts.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection executes frames in arrival order until the peer goes away
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	session := uuid.New().String()
	logger := h.logger.With(logging.KeySession, session)
	logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}
	h.extendDeadline(conn)
	conn.SetPongHandler(func(string) error {
		h.extendDeadline(conn)
		return nil
	})

	go h.keepAlive(ctx, conn)

	for n := 1; ; n++ {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("WebSocket read error", "error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		h.extendDeadline(conn)

		if messageType != websocket.TextMessage {
			logger.Warn("Ignoring non-text frame", "type", messageType)
			continue
		}

		result := h.service.Execute(ctx, service.Request{
			Line:      strings.TrimRight(string(data), "\r\n"),
			Transport: service.TransportWebSocket,
			RequestID: fmt.Sprintf("%s/%d", session, n),
		})

		if err := h.write(conn, websocket.TextMessage, []byte(result)); err != nil {
			logger.Error("WebSocket send error", "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) extendDeadline(conn *websocket.Conn) {
	if h.readTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

// pingPeriod keeps pings inside the read deadline so that a pong
// arrives before an idle connection times out.
func (h *WebSocketHandler) pingPeriod() time.Duration {
	if h.readTimeout <= 0 {
		return defaultPingPeriod
	}
	return h.readTimeout * 9 / 10
}

// keepAlive pings the peer so idle connections survive the read deadline
func (h *WebSocketHandler) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.pingPeriod())
	defer ticker.Stop()

	wait := h.writeTimeout
	if wait <= 0 {
		wait = pingWriteWait
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(wait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, messageType int, data []byte) error {
	if h.writeTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}
	return conn.WriteMessage(messageType, data)
}
