package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured importers",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err, "failed to load configuration")

	registry, err := loadRegistry(cfg)
	exitOnError(err, "failed to load importers")

	for _, imp := range registry.Importers() {
		fmt.Println(imp.Name())
	}
}
