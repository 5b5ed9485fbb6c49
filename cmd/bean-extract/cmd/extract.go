package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidciani/beancount-addons/pkg/config"
	"github.com/davidciani/beancount-addons/pkg/db"
	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/ledger"
	"github.com/davidciani/beancount-addons/pkg/pathutil"
)

var (
	outputFile string
	writeMode  bool
	dryRun     bool
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract <files...>",
	Short: "Extract Beancount entries from statement files",
	Long: `Extract transactions and balance assertions from statement files.

By default the extracted entries are printed as Beancount text, sorted
by date. With --write they are instead appended to the monthly ledger
files under BEANCOUNT_ROOT, skipping transactions recorded in the
history database so re-running on the same statements never duplicates
entries.

Example:
  bean-extract extract ~/Downloads/statement.qfx
  bean-extract extract -o new-entries.beancount ~/Downloads/*.ofx
  bean-extract extract --write ~/Downloads/statement.qfx
  bean-extract extract --write --dry-run ~/Downloads/statement.qfx`,
	Args: cobra.MinimumNArgs(1),
	Run:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write extracted entries to a file instead of stdout")
	extractCmd.Flags().BoolVar(&writeMode, "write", false, "append entries to the monthly ledger files")
	extractCmd.Flags().BoolVar(&dryRun, "dry-run", false, "with --write, print what would be appended")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err, "failed to load configuration")

	registry, err := loadRegistry(cfg)
	exitOnError(err, "failed to load importers")

	if writeMode {
		runExtractWrite(cfg, registry, args)
		return
	}

	var out strings.Builder
	for _, path := range args {
		imp, err := registry.Identify(path)
		if err != nil {
			slog.Error("Identification failed", "path", path, "error", err)
			continue
		}
		if imp == nil {
			slog.Warn("No importer matches", "path", path)
			continue
		}

		directives, err := imp.Extract(path)
		exitOnError(err, fmt.Sprintf("failed to extract %s", path))

		slog.Info("Extracted entries", "path", path, "importer", imp.Name(), "count", len(directives))

		out.WriteString(fmt.Sprintf(";; %s (%s)\n\n", path, imp.Name()))
		for _, directive := range directives {
			out.WriteString(ledger.FormatDirective(directive))
			out.WriteString("\n")
		}
	}

	if outputFile != "" {
		err := os.WriteFile(outputFile, []byte(out.String()), 0644)
		exitOnError(err, "failed to write output file")
		slog.Info("Wrote extracted entries", "path", outputFile)
		return
	}
	fmt.Print(out.String())
}

// runExtractWrite appends extracted entries to the monthly ledger
// files, skipping directives already recorded in the history database.
func runExtractWrite(cfg *config.Config, registry *importer.Registry, args []string) {
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
	repo := ledger.NewFileSystemRepository(pathResolver)

	totalWritten := 0
	totalSkipped := 0

	for _, path := range args {
		imp, err := registry.Identify(path)
		if err != nil {
			slog.Error("Identification failed", "path", path, "error", err)
			continue
		}
		if imp == nil {
			slog.Warn("No importer matches", "path", path)
			continue
		}

		directives, err := imp.Extract(path)
		exitOnError(err, fmt.Sprintf("failed to extract %s", path))

		seen, err := history.SeenHashes(imp.Name())
		exitOnError(err, "failed to load extraction history")

		written := 0
		skipped := 0
		for _, directive := range directives {
			hash := fmt.Sprintf("%016x", ledger.DirectiveHash(directive))
			if seen[hash] {
				skipped++
				continue
			}

			monthKey := ledger.MonthKey(directive.EntryDate())
			filePath, err := pathResolver.MonthFilePath(monthKey)
			exitOnError(err, "failed to resolve month file")

			if dryRun {
				fmt.Printf("[DRY RUN] Would append to %s\n", filePath)
				fmt.Println(ledger.FormatDirective(directive))
				written++
				continue
			}

			if err := repo.AppendDirective(monthKey, ledger.FormatDirective(directive)); err != nil {
				slog.Error("Failed to append entry", "path", filePath, "error", err)
				continue
			}

			record := db.ExtractRecord{
				Importer:   imp.Name(),
				TxnHash:    hash,
				TxnDate:    directive.EntryDate().Format("2006-01-02"),
				LedgerFile: filePath,
			}
			if txn, ok := directive.(ledger.Transaction); ok {
				record.Narration = txn.Narration
			}
			if err := history.RecordExtraction(record); err != nil {
				slog.Error("Failed to record extraction", "hash", hash, "error", err)
			}

			seen[hash] = true
			written++
		}

		slog.Info("Processed file",
			"path", path,
			"importer", imp.Name(),
			"written", written,
			"skipped", skipped,
		)
		totalWritten += written
		totalSkipped += skipped
	}

	fmt.Printf("\n=== Extract Summary ===\n")
	fmt.Printf("Entries written: %d\n", totalWritten)
	fmt.Printf("Entries skipped: %d\n", totalSkipped)
	fmt.Println()
}
