// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the interactive console
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/internal/tui/console"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

var (
	consoleAddr  string
	consoleLocal bool
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"tui", "shell"},
	Short:   "Startet die interaktive Konsole",
	Long: `Startet die interaktive sceneBRIDGE Konsole.

Befehle werden per gRPC an eine laufende Bridge gesendet oder mit
--local in einer Szene im Prozess ausgeführt.

Tastenkuerzel:
  Enter       Befehl ausführen
  Tab         Verb ergänzen
  ↑/↓         Verlauf
  PgUp/PgDn   Scrollen
  F2          Log-Panel ein/aus
  Esc         Beenden

Konsolenbefehle:
  :verbs  :logs  :clear  :quit`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&consoleAddr, "addr", "", "gRPC-Adresse der Bridge (default aus Config)")
	consoleCmd.Flags().BoolVar(&consoleLocal, "local", false, "Szene im Prozess statt Bridge")
}

func runConsole(cmd *cobra.Command, args []string) error {
	// Logs go to the panel instead of the terminal
	tail := logging.NewTailWriter(logging.DefaultTailCapacity, nil)
	cfg, err := loadConfig(tail)
	if err != nil {
		printError("Config ungültig", err)
		return err
	}
	// The panel parses JSON lines
	logging.Configure(logging.LoggerConfig{Level: logLevel(cfg), Format: "json", Output: tail})

	executor, closeFn, err := newExecutor(cfg, consoleAddr, consoleLocal, service.TransportConsole, logging.New("console"))
	if err != nil {
		printError("Verbindung fehlgeschlagen", err)
		return err
	}
	defer closeFn()

	verbs, err := knownVerbs()
	if err != nil {
		return err
	}

	return console.Run(console.Config{
		Executor: executor,
		Verbs:    verbs,
		Tail:     tail,
	})
}

// knownVerbs lists the verbs this build understands
func knownVerbs() ([]string, error) {
	svc, err := service.NewService(service.Config{Logger: logging.New("console")})
	if err != nil {
		return nil, err
	}
	defer svc.Close()
	return svc.Verbs(), nil
}
