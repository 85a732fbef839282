package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/internal/bridge/server"
	"github.com/msto63/scenebridge/internal/bridge/store"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/config"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"github.com/msto63/scenebridge/pkg/core/version"
)

// pruneInterval is how often the journal retention is enforced
const pruneInterval = time.Hour

var (
	serveHost     string
	serveWSPort   int
	serveGRPCPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet die Bridge",
	Long: `Startet sceneBRIDGE mit WebSocket- und gRPC-Transport.

Die Szene lebt im Speicher des Prozesses. Jeder ausgeführte Befehl
wird im Journal protokolliert (Modus sqlite, memory oder off).

Beispiele:
  scenebridge serve
  scenebridge serve --ws-port 9500 --grpc-port 9510
  SCENEBRIDGE_JOURNAL_MODE=off scenebridge serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind-Adresse (überschreibt Config)")
	serveCmd.Flags().IntVar(&serveWSPort, "ws-port", 0, "WebSocket-Port (überschreibt Config)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC-Port (überschreibt Config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		printError("Config ungültig", err)
		return err
	}
	if serveHost != "" {
		cfg.Bridge.Host = serveHost
	}
	if serveWSPort != 0 {
		cfg.Bridge.WebSocketPort = serveWSPort
	}
	if serveGRPCPort != 0 {
		cfg.Bridge.GRPCPort = serveGRPCPort
	}
	if err := cfg.Validate(); err != nil {
		printError("Config ungültig", err)
		return err
	}

	logger := logging.New("scenebridge")
	logger.Info("Starting", "build", version.Info())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	journal, err := openJournal(cfg)
	if err != nil {
		printError("Journal konnte nicht geöffnet werden", err)
		return err
	}

	svc, host, err := newLocalService(cfg, journal, logger.With("component", "service"))
	if err != nil {
		printError("Service konnte nicht erstellt werden", err)
		return err
	}
	defer svc.Close()

	if cfg.Scene.CatalogPath != "" && cfg.Scene.WatchCatalog {
		watcher := scene.NewCatalogWatcher(cfg.Scene.CatalogPath, func(c *scene.Catalog) {
			host.SetCatalog(c)
			logger.Info("Asset catalog reloaded", "assets", c.Len())
		})
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("Catalog watcher not started", "error", err)
		}
	}

	if journal != nil && cfg.Journal.Retention.Duration > 0 {
		go pruneLoop(ctx, journal, cfg.Journal.Retention.Duration, logger)
	}

	srv, err := server.New(server.Config{
		Host:             cfg.Bridge.Host,
		WebSocketPort:    cfg.Bridge.WebSocketPort,
		GRPCPort:         cfg.Bridge.GRPCPort,
		ReadTimeout:      cfg.Bridge.ReadTimeout.Duration,
		WriteTimeout:     cfg.Bridge.WriteTimeout.Duration,
		MaxMessageSize:   cfg.Bridge.MaxMessageSize,
		AllowedOrigins:   cfg.Bridge.AllowedOrigins,
		EnableReflection: cfg.Bridge.EnableReflection,
		Version:          version.Bridge,
	}, svc)
	if err != nil {
		printError("Server konnte nicht erstellt werden", err)
		return err
	}

	fmt.Println("sceneBRIDGE")
	fmt.Println("===========")
	fmt.Printf("  WebSocket: ws://%s/ws\n", cfg.WebSocketAddress())
	fmt.Printf("  gRPC:      %s\n", cfg.GRPCAddress())
	fmt.Printf("  Journal:   %s\n", describeJournal(cfg))
	fmt.Println()
	fmt.Println("Drücke Ctrl+C zum Beenden")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			printError("Server beendet", err)
			return err
		}
		return nil
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", "error", err)
	}

	stats := svc.Stats()
	logger.Info("Bridge stopped", "commands", stats.Commands, "unknown", stats.Unknown, "panics", stats.Panics)
	return nil
}

// pruneLoop drops journal entries older than retention, once at start
// and then every pruneInterval
func pruneLoop(ctx context.Context, journal store.Journal, retention time.Duration, logger *logging.Logger) {
	prune := func() {
		n, err := journal.Prune(ctx, retention)
		if err != nil {
			logger.Warn("Journal prune failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("Journal pruned", "removed", n, "retention", retention)
		}
	}

	prune()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

func describeJournal(cfg *config.Config) string {
	switch cfg.Journal.Mode {
	case config.JournalOff:
		return "aus"
	case config.JournalMemory:
		return "Speicher"
	default:
		return cfg.Journal.Path
	}
}
