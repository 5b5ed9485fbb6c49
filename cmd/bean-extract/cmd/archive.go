package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/davidciani/beancount-addons/pkg/archive"
	"github.com/davidciani/beancount-addons/pkg/db"
	"github.com/davidciani/beancount-addons/pkg/pathutil"
)

var copyOnly bool

// archiveCmd represents the archive command.
var archiveCmd = &cobra.Command{
	Use:   "archive <files...>",
	Short: "File statement documents into the documents tree",
	Long: `Move each statement into the documents directory, under its
importer's account path and named by statement date:

  documents/Assets/Bank/Checking/2024-01-31.statement.qfx

Sources whose content hash is already recorded are skipped, so a
statement downloaded twice is only filed once.

Example:
  bean-extract archive ~/Downloads/*.qfx
  bean-extract archive --copy ~/Downloads/statement.qfx`,
	Args: cobra.MinimumNArgs(1),
	Run:  runArchive,
}

func init() {
	archiveCmd.Flags().BoolVar(&copyOnly, "copy", false, "copy documents instead of moving them")
}

func runArchive(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("ledger.root"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	registry, err := loadRegistry(cfg)
	exitOnError(err, "failed to load importers")

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
		DocumentsDir: cfg.Ledger.DocumentsDir,
	})

	conn, err := db.Open(pathResolver.DatabasePath())
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewHistory(conn)
	filer := archive.NewFiler(pathResolver)

	filed := 0
	skipped := 0

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

		sourceHash, err := archive.SourceHash(path)
		exitOnError(err, fmt.Sprintf("failed to hash %s", path))

		archived, err := history.IsDocumentArchived(sourceHash)
		exitOnError(err, "failed to check archive history")
		if archived {
			slog.Info("Already archived", "path", path)
			skipped++
			continue
		}

		// Read the statement date before the source file moves.
		date, dateErr := imp.Date(path)

		destPath, err := filer.File(imp, path, copyOnly)
		exitOnError(err, fmt.Sprintf("failed to archive %s", path))

		doc := db.ArchivedDocument{
			Importer:     imp.Name(),
			SourceHash:   sourceHash,
			SourcePath:   path,
			ArchivedPath: destPath,
		}
		if dateErr == nil && !date.IsZero() {
			doc.StatementDate = sql.NullString{String: date.Format("2006-01-02"), Valid: true}
		}
		if err := history.RecordDocument(doc); err != nil {
			slog.Error("Failed to record document", "path", path, "error", err)
		}

		slog.Info("Archived document", "source", path, "dest", destPath)
		filed++
	}

	fmt.Printf("\n=== Archive Summary ===\n")
	fmt.Printf("Documents filed:   %d\n", filed)
	fmt.Printf("Documents skipped: %d\n", skipped)
	fmt.Println()
}
