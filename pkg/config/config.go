// Package config provides configuration management for the importer
// toolkit. It loads paths from environment variables and .env files,
// and importer definitions from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger        LedgerConfig
	ImportersFile string
	Currency      string
	Debug         bool
}

// LedgerConfig represents ledger-related configuration.
type LedgerConfig struct {
	Root         string
	DBPath       string
	DocumentsDir string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Ledger: LedgerConfig{
			Root:         getEnvOrDefault("BEANCOUNT_ROOT", "./ledger"),
			DBPath:       os.Getenv("BEANCOUNT_DB_PATH"),
			DocumentsDir: os.Getenv("BEANCOUNT_DOCUMENTS_DIR"),
		},
		ImportersFile: getEnvOrDefault("BEANCOUNT_IMPORTERS", "importers.yaml"),
		Currency:      getEnvOrDefault("BEANCOUNT_CURRENCY", "USD"),
		Debug:         os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all named fields are set.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, name := range required {
		var value string
		switch name {
		case "ledger.root":
			value = c.Ledger.Root
		case "ledger.dbPath":
			value = c.Ledger.DBPath
		case "ledger.documentsDir":
			value = c.Ledger.DocumentsDir
		case "importersFile":
			value = c.ImportersFile
		case "currency":
			value = c.Currency
		default:
			return fmt.Errorf("unknown configuration field: %s", name)
		}

		if value == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
