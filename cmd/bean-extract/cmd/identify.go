package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// identifyCmd represents the identify command.
var identifyCmd = &cobra.Command{
	Use:   "identify <files...>",
	Short: "Report which importer handles each file",
	Long: `Match each file against the configured importers and report the
importer, target account, statement date and archive filename.

Example:
  bean-extract identify ~/Downloads/*.ofx ~/Downloads/*.csv`,
	Args: cobra.MinimumNArgs(1),
	Run:  runIdentify,
}

func runIdentify(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err, "failed to load configuration")

	registry, err := loadRegistry(cfg)
	exitOnError(err, "failed to load importers")

	for _, path := range args {
		imp, err := registry.Identify(path)
		if err != nil {
			slog.Error("Identification failed", "path", path, "error", err)
			continue
		}
		if imp == nil {
			fmt.Printf("%s:\n  no importer matches\n", path)
			continue
		}

		fmt.Printf("%s:\n", path)
		fmt.Printf("  importer: %s\n", imp.Name())
		fmt.Printf("  account:  %s\n", imp.Account(path))

		if date, err := imp.Date(path); err != nil {
			slog.Debug("No statement date", "path", path, "error", err)
		} else if !date.IsZero() {
			fmt.Printf("  date:     %s\n", date.Format("2006-01-02"))
		}

		if name := imp.Filename(path); name != "" {
			fmt.Printf("  filename: %s\n", name)
		}
	}
}
