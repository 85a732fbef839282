package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/internal/bridge/store"
	coreGrpc "github.com/msto63/scenebridge/pkg/core/grpc"
	"github.com/msto63/scenebridge/pkg/core/health"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type testBridge struct {
	server  *Server
	wsURL   string
	httpURL string
	conn    *grpc.ClientConn
	journal *store.MemoryJournal
}

func quietLogger() *logging.Logger {
	cfg := logging.DefaultLoggerConfig("test")
	cfg.Output = io.Discard
	return logging.Wrap(logging.NewLogger(cfg), "test")
}

func startBridge(t *testing.T, cfg Config) *testBridge {
	t.Helper()

	journal := store.NewMemoryJournal()
	svc, err := service.NewService(service.Config{Journal: journal, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	srv, err := New(cfg, svc)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	wsListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	grpcListener := bufconn.Listen(1 << 20)
	go srv.Serve(wsListener, grpcListener)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return grpcListener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient() error = %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	addr := wsListener.Addr().String()
	return &testBridge{
		server:  srv,
		wsURL:   "ws://" + addr + "/ws",
		httpURL: "http://" + addr,
		conn:    conn,
		journal: journal,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 5 * time.Second
	cfg.WriteTimeout = 5 * time.Second
	return cfg
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, line string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reply to %q: %v", line, err)
	}
	return string(data)
}

func TestWebSocket_ExecutesFrames(t *testing.T) {
	b := startBridge(t, testConfig())
	conn := dial(t, b.wsURL)

	steps := []struct {
		line string
		want string
	}{
		{"AddActor /Game/Meshes/Cube Cube1", "Cube1"},
		{"GetFreeName Cube1", "Cube2"},
		{"AddActor /Game/Meshes/Cube Cube1 EditIfExists=true", "Cube1"},
		{"RenameObject Ghost Box\n", "NotFound"},
		{"Teleport Cube1", service.ResultUnknownCommand},
		{"DeleteObject Cube1", "Ok"},
	}
	for _, step := range steps {
		if got := roundTrip(t, conn, step.line); got != step.want {
			t.Errorf("%q -> %q, want %q", step.line, got, step.want)
		}
	}

	entries, _ := b.journal.Query(context.Background(), store.Filter{Transport: service.TransportWebSocket})
	if len(entries) != len(steps) {
		t.Errorf("journal holds %d websocket entries, want %d", len(entries), len(steps))
	}
}

func TestWebSocket_IdleConnectionOutlivesReadTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ReadTimeout = time.Second
	b := startBridge(t, cfg)
	conn := dial(t, b.wsURL)

	// a reading client answers pings, as browsers do
	replies := make(chan string, 4)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			replies <- string(data)
		}
	}()

	send := func(line, want string) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
		select {
		case got := <-replies:
			if got != want {
				t.Errorf("%q -> %q, want %q", line, got, want)
			}
		case err := <-readErr:
			t.Fatalf("read reply to %q: %v", line, err)
		case <-time.After(5 * time.Second):
			t.Fatalf("no reply to %q", line)
		}
	}

	send("AddActor /Game/Meshes/Cube Cube1", "Cube1")
	time.Sleep(2 * time.Second)
	send("GetFreeName Cube1", "Cube2")
}

func TestWebSocketHandler_PingPeriod(t *testing.T) {
	tests := []struct {
		readTimeout time.Duration
		want        time.Duration
	}{
		{0, defaultPingPeriod},
		{time.Second, 900 * time.Millisecond},
		{60 * time.Second, 54 * time.Second},
	}
	for _, tt := range tests {
		h := &WebSocketHandler{readTimeout: tt.readTimeout}
		if got := h.pingPeriod(); got != tt.want {
			t.Errorf("pingPeriod(%v) = %v, want %v", tt.readTimeout, got, tt.want)
		}
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"localhost:3000"}
	b := startBridge(t, cfg)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(b.wsURL, header)
	if err == nil {
		t.Fatal("dial from a foreign origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	header.Set("Origin", "http://localhost:3000")
	conn, _, err := websocket.DefaultDialer.Dial(b.wsURL, header)
	if err != nil {
		t.Fatalf("dial from an allowed origin error = %v", err)
	}
	conn.Close()
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no list", nil, "http://anything", true},
		{"no origin header", []string{"localhost:3000"}, "", true},
		{"host match", []string{"localhost:3000"}, "http://localhost:3000", true},
		{"full origin match", []string{"https://tool.example"}, "https://tool.example", true},
		{"wildcard", []string{"*"}, "http://other", true},
		{"mismatch", []string{"localhost:3000"}, "http://localhost:4000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("originChecker(%v)(%q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
			}
		})
	}
}

func TestGRPC_Execute(t *testing.T) {
	b := startBridge(t, testConfig())
	client := NewBridgeClient(b.conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, coreGrpc.RequestIDHeader, "grpc-req-1")

	resp, err := client.Execute(ctx, wrapperspb.String("AddActor /Game/Meshes/Cube Chair"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.GetValue() != "Chair" {
		t.Errorf("Execute() = %q, want Chair", resp.GetValue())
	}

	resp, err = client.Execute(ctx, wrapperspb.String("ParentChildTo Chair Ghost"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.GetValue() != "1" {
		t.Errorf("ParentChildTo with missing parent = %q, want 1", resp.GetValue())
	}

	entries, _ := b.journal.Query(context.Background(), store.Filter{RequestID: "grpc-req-1"})
	if len(entries) != 2 {
		t.Fatalf("journal entries for grpc-req-1 = %d, want 2", len(entries))
	}
	if entries[0].Transport != service.TransportGRPC {
		t.Errorf("Transport = %q, want grpc", entries[0].Transport)
	}
}

func TestGRPC_Health(t *testing.T) {
	b := startBridge(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(b.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: BridgeServiceName})
	if err != nil {
		t.Fatalf("health Check() error = %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}

func TestHTTP_HealthAndVerbs(t *testing.T) {
	b := startBridge(t, testConfig())

	resp, err := http.Get(b.httpURL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != health.StatusHealthy || len(report.Checks) != 3 {
		t.Errorf("report = %+v", report)
	}

	resp, err = http.Get(b.httpURL + "/verbs")
	if err != nil {
		t.Fatalf("GET /verbs error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "DuplicateObjects") {
		t.Errorf("/verbs = %s, missing DuplicateObjects", body)
	}
}

func TestNew_RequiresService(t *testing.T) {
	if _, err := New(DefaultConfig(), nil); err == nil {
		t.Error("New() without service should fail")
	}
}
