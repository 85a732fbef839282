package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/scenebridge/internal/bridge/store"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/config"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

var (
	journalPath string

	journalVerb      string
	journalTransport string
	journalRequestID string
	journalSince     time.Duration
	journalLimit     int
	journalOffset    int
	journalOldest    bool

	journalOlderThan time.Duration
	journalDump      bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Befehlsjournal anzeigen und verwalten",
	Long: `Zugriff auf das SQLite-Befehlsjournal der Bridge.

Unterbefehle:
  list    - Protokollierte Befehle anzeigen
  stats   - Anzahl der Befehle je Verb
  replay  - Befehle in einer frischen Szene wiederholen
  prune   - Alte Einträge löschen`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "Zeigt protokollierte Befehle",
	Long: `Zeigt protokollierte Befehle, neueste zuerst.

Beispiele:
  scenebridge journal list --limit 20
  scenebridge journal list --verb RenameObject --since 1h
  scenebridge journal list --transport ws --oldest`,
	Args: cobra.NoArgs,
	RunE: runJournalList,
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Zeigt die Anzahl der Befehle je Verb",
	Args:  cobra.NoArgs,
	RunE:  runJournalStats,
}

var journalReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Wiederholt protokollierte Befehle",
	Long: `Führt die protokollierten Befehle in Aufzeichnungsreihenfolge
in einer frischen Szene erneut aus und meldet, wie viele Ergebnisse
von der Aufzeichnung abweichen.

Befehle mit unbekanntem Verb werden übersprungen.

Beispiele:
  scenebridge journal replay
  scenebridge journal replay --since 30m --dump`,
	Args: cobra.NoArgs,
	RunE: runJournalReplay,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Löscht alte Journal-Einträge",
	Long: `Löscht Einträge, die älter als --older-than sind.
Ohne Flag gilt die konfigurierte Aufbewahrungsdauer.`,
	Args: cobra.NoArgs,
	RunE: runJournalPrune,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalStatsCmd, journalReplayCmd, journalPruneCmd)

	journalCmd.PersistentFlags().StringVar(&journalPath, "path", "", "Pfad der Journal-Datenbank (default aus Config)")

	for _, c := range []*cobra.Command{journalListCmd, journalReplayCmd} {
		c.Flags().StringVar(&journalVerb, "verb", "", "Nur dieses Verb")
		c.Flags().StringVar(&journalTransport, "transport", "", "Nur dieser Transport (ws, grpc, cli, console, replay)")
		c.Flags().StringVar(&journalRequestID, "request-id", "", "Nur diese Request-ID")
		c.Flags().DurationVar(&journalSince, "since", 0, "Nur Einträge der letzten Zeitspanne, z.B. 1h")
		c.Flags().IntVar(&journalLimit, "limit", 0, "Maximale Anzahl Einträge")
		c.Flags().IntVar(&journalOffset, "offset", 0, "Einträge überspringen")
	}
	journalListCmd.Flags().BoolVar(&journalOldest, "oldest", false, "Älteste zuerst")
	journalReplayCmd.Flags().BoolVar(&journalDump, "dump", false, "Szene nach dem Replay ausgeben")
	journalPruneCmd.Flags().DurationVar(&journalOlderThan, "older-than", 0, "Einträge älter als diese Dauer löschen")
}

// openStoredJournal opens the SQLite journal named by --path or the config
func openStoredJournal() (*config.Config, *store.SQLiteJournal, error) {
	cfg, err := loadConfig(nil)
	if err != nil {
		printError("Config ungültig", err)
		return nil, nil, err
	}
	path := journalPath
	if path == "" {
		path = cfg.Journal.Path
	}
	journal, err := store.NewSQLiteJournal(store.SQLiteConfig{Path: path})
	if err != nil {
		printError("Journal konnte nicht geöffnet werden", err)
		return nil, nil, err
	}
	return cfg, journal, nil
}

func journalFilter() store.Filter {
	filter := store.Filter{
		Verb:      journalVerb,
		Transport: journalTransport,
		RequestID: journalRequestID,
		Limit:     journalLimit,
		Offset:    journalOffset,
	}
	if journalSince > 0 {
		filter.StartTime = time.Now().Add(-journalSince)
	}
	return filter
}

func runJournalList(cmd *cobra.Command, args []string) error {
	_, journal, err := openStoredJournal()
	if err != nil {
		return err
	}
	defer journal.Close()

	filter := journalFilter()
	filter.Ascending = journalOldest
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	entries, err := journal.Query(cmd.Context(), filter)
	if err != nil {
		printError("Abfrage fehlgeschlagen", err)
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Keine Einträge gefunden.")
		return nil
	}
	for _, e := range entries {
		fmt.Println(store.Describe(e))
	}
	return nil
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	_, journal, err := openStoredJournal()
	if err != nil {
		return err
	}
	defer journal.Close()

	stats, err := journal.Stats(cmd.Context())
	if err != nil {
		printError("Statistik fehlgeschlagen", err)
		return err
	}

	verbs := make([]string, 0, len(stats))
	for verb := range stats {
		if verb != "total" {
			verbs = append(verbs, verb)
		}
	}
	sort.Strings(verbs)

	fmt.Println("Befehle je Verb:")
	fmt.Println("----------------")
	for _, verb := range verbs {
		fmt.Printf("  %-20s %6d\n", verb, stats[verb])
	}
	fmt.Printf("  %-20s %6d\n", "Gesamt", stats["total"])
	return nil
}

func runJournalReplay(cmd *cobra.Command, args []string) error {
	cfg, journal, err := openStoredJournal()
	if err != nil {
		return err
	}
	defer journal.Close()

	svc, host, err := newLocalService(cfg, nil, logging.New("replay"))
	if err != nil {
		printError("Service konnte nicht erstellt werden", err)
		return err
	}
	defer svc.Close()

	report, err := svc.Replay(cmd.Context(), journal, journalFilter())
	if err != nil {
		printError("Replay fehlgeschlagen", err)
		return err
	}

	fmt.Printf("Ausgeführt: %d\n", report.Executed)
	fmt.Printf("Abweichend: %d\n", report.Diverged)
	fmt.Printf("Objekte:    %d\n", host.Len())

	if journalDump {
		fmt.Println()
		printSceneTree(cmd.OutOrStdout(), host, nil, 1)
	}
	return nil
}

// printSceneTree writes the objects attached to parent, children indented
// below their parent; a nil parent starts at the root objects
func printSceneTree(w io.Writer, host *scene.Scene, parent *scene.Object, depth int) {
	for _, obj := range host.Children(parent) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(w, "%s%-*s %-20s %s\n", indent, 26-len(indent), obj.ID(), obj.Class(), obj.Label())
		printSceneTree(w, host, obj, depth+1)
	}
}

func runJournalPrune(cmd *cobra.Command, args []string) error {
	cfg, journal, err := openStoredJournal()
	if err != nil {
		return err
	}
	defer journal.Close()

	olderThan := journalOlderThan
	if olderThan <= 0 {
		olderThan = cfg.Journal.Retention.Duration
	}
	if olderThan <= 0 {
		return fmt.Errorf("keine Aufbewahrungsdauer gesetzt, nutze --older-than")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	n, err := journal.Prune(ctx, olderThan)
	if err != nil {
		printError("Bereinigung fehlgeschlagen", err)
		return err
	}
	fmt.Printf("%d Einträge gelöscht (älter als %s).\n", n, olderThan)
	return nil
}
