// Package cmd provides CLI commands for bean-extract.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidciani/beancount-addons/pkg/config"
	"github.com/davidciani/beancount-addons/pkg/importer"
)

var (
	cfgFile       string
	importersFile string
	debug         bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bean-extract",
	Short: "Import bank statements into Beancount",
	Long: `bean-extract is a CLI tool that turns downloaded bank and card
statements (OFX, CSV, JSON, extracted paystub text) into Beancount
plain-text accounting entries.

It supports:
- Identifying which configured importer handles each file
- Extracting transactions and balance assertions
- Appending to monthly ledger files with SQLite-backed deduplication
- Archiving the source statements into a documents tree

Example:
  bean-extract identify ~/Downloads/*.ofx
  bean-extract extract ~/Downloads/statement.qfx
  bean-extract extract --write ~/Downloads/statement.qfx
  bean-extract archive ~/Downloads/statement.qfx`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&importersFile, "importers", "", "importers file (default from BEANCOUNT_IMPORTERS)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
}

// loadConfig loads the env configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if importersFile != "" {
		cfg.ImportersFile = importersFile
	}
	return cfg, nil
}

// loadRegistry loads the configured importer registry.
func loadRegistry(cfg *config.Config) (*importer.Registry, error) {
	if err := cfg.Validate("importersFile"); err != nil {
		return nil, err
	}
	return config.LoadImporters(cfg.ImportersFile)
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
