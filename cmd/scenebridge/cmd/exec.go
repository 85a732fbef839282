package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/internal/bridge/server"
	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/internal/tui/console"
	"github.com/msto63/scenebridge/pkg/core/config"
	coreGrpc "github.com/msto63/scenebridge/pkg/core/grpc"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

var (
	execAddr    string
	execLocal   bool
	execTimeout time.Duration
)

var execCmd = &cobra.Command{
	Use:   "exec [befehl...]",
	Short: "Führt Befehle auf einer laufenden Bridge aus",
	Long: `Sendet Befehle per gRPC an eine laufende Bridge und gibt das
Ergebnis aus.

Ohne Argument (oder mit "-") wird jede Zeile der Standardeingabe
als eigener Befehl gesendet.

Mit --local werden die Befehle in einer frischen Szene im Prozess
ausgeführt, ohne Bridge.

Beispiele:
  scenebridge exec AddActor /Game/Meshes/Cube Cube1
  scenebridge exec --local GetFreeName Cube
  cat befehle.txt | scenebridge exec -`,
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVar(&execAddr, "addr", "", "gRPC-Adresse der Bridge (default aus Config)")
	execCmd.Flags().BoolVar(&execLocal, "local", false, "Im Prozess ausführen statt per gRPC")
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 10*time.Second, "Timeout pro Befehl")
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		printError("Config ungültig", err)
		return err
	}

	executor, closeFn, err := newExecutor(cfg, execAddr, execLocal, service.TransportCLI, nil)
	if err != nil {
		printError("Verbindung fehlgeschlagen", err)
		return err
	}
	defer closeFn()

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		return execLines(cmd.Context(), executor, os.Stdin, cmd.OutOrStdout())
	}
	return execLine(cmd.Context(), executor, strings.Join(args, " "), cmd.OutOrStdout())
}

// execLines runs every non-empty line of r
func execLines(ctx context.Context, executor console.Executor, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := execLine(ctx, executor, line, w); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func execLine(ctx context.Context, executor console.Executor, line string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	result, err := executor.Execute(ctx, line)
	if err != nil {
		printError(line, err)
		return err
	}
	fmt.Fprintln(w, result)
	return nil
}

// newExecutor connects to a bridge or builds an in-process service whose
// commands are journaled under transport. The returned function releases
// the connection or the service.
func newExecutor(cfg *config.Config, addr string, local bool, transport string, logger *logging.Logger) (console.Executor, func(), error) {
	if logger == nil {
		logger = logging.New("scenebridge")
	}

	if local {
		svc, _, err := newLocalService(cfg, nil, logger)
		if err != nil {
			return nil, nil, err
		}
		return console.NewLocalExecutor(svc, transport), func() { svc.Close() }, nil
	}

	if addr == "" {
		addr = cfg.GRPCAddress()
	}
	conn, err := coreGrpc.DialWithTimeout(addr, 5*time.Second)
	if err != nil {
		return nil, nil, err
	}
	executor := console.NewRemoteExecutor(server.NewBridgeClient(conn), addr)
	return executor, func() { conn.Close() }, nil
}
