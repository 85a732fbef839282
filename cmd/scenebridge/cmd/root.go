package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/internal/bridge/store"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/config"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scenebridge",
	Short: "sceneBRIDGE - Fernsteuerung für Szenen-Editoren",
	Long: `sceneBRIDGE nimmt textuelle Befehle von Content-Tools entgegen
und führt sie als Objekt-Operationen auf einer Szene aus.

Transporte:
  websocket  - Ein Befehl pro Text-Frame (:9400/ws)
  grpc       - scenebridge.v1.Bridge/Execute (:9410)

Befehle:
  serve     - Bridge starten
  exec      - Einzelnen Befehl ausführen
  console   - Interaktive Konsole
  journal   - Befehlsjournal anzeigen, wiederholen, bereinigen
  status    - Erreichbarkeit der Bridge prüfen`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/scenebridge.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}

// loadConfig resolves the configuration and applies the logging settings
func loadConfig(output io.Writer) (*config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}

	logging.Configure(logging.LoggerConfig{
		Level:  logLevel(cfg),
		Format: cfg.General.LogFormat,
		Output: output,
	})
	return cfg, nil
}

func logLevel(cfg *config.Config) string {
	if verbose {
		return "debug"
	}
	return cfg.General.LogLevel
}

// openJournal opens the journal selected by the configuration. Mode off
// returns nil.
func openJournal(cfg *config.Config) (store.Journal, error) {
	switch cfg.Journal.Mode {
	case config.JournalOff:
		return nil, nil
	case config.JournalMemory:
		return store.NewMemoryJournal(), nil
	default:
		journal, err := store.NewSQLiteJournal(store.SQLiteConfig{Path: cfg.Journal.Path})
		if err != nil {
			return nil, err
		}
		return journal, nil
	}
}

// loadScene creates the scene host with the configured asset catalog
func loadScene(cfg *config.Config) (*scene.Scene, error) {
	if cfg.Scene.CatalogPath == "" {
		return scene.New(nil), nil
	}
	catalog, err := scene.LoadCatalog(cfg.Scene.CatalogPath)
	if err != nil {
		return nil, err
	}
	return scene.New(catalog), nil
}

// newLocalService builds an in-process service on a fresh scene
func newLocalService(cfg *config.Config, journal store.Journal, logger *logging.Logger) (*service.Service, *scene.Scene, error) {
	host, err := loadScene(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewService(service.Config{
		Scene:          host,
		GeneratedName:  cfg.Scene.GeneratedName,
		Journal:        journal,
		JournalTimeout: cfg.Journal.Timeout.Duration,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, host, nil
}
