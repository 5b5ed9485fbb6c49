package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/davidciani/beancount-addons/pkg/db"
	"github.com/davidciani/beancount-addons/pkg/pathutil"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display import history statistics",
	Long: `Display statistics about extracted entries and archived documents.

Shows:
- Total number of entries written to the ledger
- Total number of archived documents
- Last extraction timestamp

Example:
  bean-extract stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("ledger.root"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
		DocumentsDir: cfg.Ledger.DocumentsDir,
	})

	dbPath := pathResolver.DatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Import Statistics ===")
	fmt.Printf("Entries written:    %d\n", stats.TotalExtractions)
	fmt.Printf("Documents archived: %d\n", stats.TotalDocuments)

	if stats.LastRun.Valid {
		fmt.Printf("Last extraction:    %s\n", stats.LastRun.String)
	} else {
		fmt.Printf("Last extraction:    (never)\n")
	}

	fmt.Println()
}
