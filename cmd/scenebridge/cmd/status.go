package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/pkg/core/health"
	"github.com/msto63/scenebridge/pkg/core/version"
)

var statusTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Zeigt den Status der Bridge",
	Long: `Prüft die Erreichbarkeit der konfigurierten Bridge.

Der WebSocket-Port wird per TCP geprüft, der gRPC-Port über das
Standard-Health-Protokoll.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 3*time.Second, "Timeout je Prüfung")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		printError("Config ungültig", err)
		return err
	}

	fmt.Println("sceneBRIDGE Status")
	fmt.Println("==================")
	fmt.Println()

	registry := health.NewRegistry("scenebridge", version.Bridge)
	registry.Register(health.TCPCheck("websocket", cfg.WebSocketAddress(), statusTimeout))
	registry.Register(health.GRPCCheck("grpc", cfg.GRPCAddress(), statusTimeout))

	report := registry.CheckWithTimeout(2 * statusTimeout)

	addresses := map[string]string{
		"websocket": cfg.WebSocketAddress(),
		"grpc":      cfg.GRPCAddress(),
	}
	for _, check := range report.Checks {
		icon := "[+]"
		if check.Status != health.StatusHealthy {
			icon = "[-]"
		}
		line := fmt.Sprintf("  %s %-10s %-22s %s", icon, check.Name, addresses[check.Name], check.Status)
		if check.Message != "" {
			line += " - " + check.Message
		}
		fmt.Println(line)
	}

	fmt.Println()
	if report.Status == health.StatusHealthy {
		fmt.Println("Bridge ist aktiv.")
	} else {
		fmt.Println("Bridge ist nicht vollständig erreichbar.")
		fmt.Println("Starte mit: scenebridge serve")
	}
	return nil
}
