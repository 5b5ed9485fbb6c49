package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BEANCOUNT_ROOT", "")
	t.Setenv("BEANCOUNT_DB_PATH", "")
	t.Setenv("BEANCOUNT_DOCUMENTS_DIR", "")
	t.Setenv("BEANCOUNT_IMPORTERS", "")
	t.Setenv("BEANCOUNT_CURRENCY", "")
	t.Setenv("DEBUG", "")

	config, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Ledger.Root != "./ledger" {
		t.Errorf("expected default root './ledger', got %q", config.Ledger.Root)
	}
	if config.ImportersFile != "importers.yaml" {
		t.Errorf("expected default importers file, got %q", config.ImportersFile)
	}
	if config.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", config.Currency)
	}
	if config.Debug {
		t.Error("expected debug off by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BEANCOUNT_ROOT", "/data/ledger")
	t.Setenv("BEANCOUNT_DB_PATH", "/data/import.db")
	t.Setenv("BEANCOUNT_DOCUMENTS_DIR", "/data/docs")
	t.Setenv("BEANCOUNT_IMPORTERS", "/data/importers.yaml")
	t.Setenv("BEANCOUNT_CURRENCY", "EUR")
	t.Setenv("DEBUG", "true")

	config, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Ledger.Root != "/data/ledger" {
		t.Errorf("expected root /data/ledger, got %q", config.Ledger.Root)
	}
	if config.Ledger.DBPath != "/data/import.db" {
		t.Errorf("expected db path /data/import.db, got %q", config.Ledger.DBPath)
	}
	if config.Ledger.DocumentsDir != "/data/docs" {
		t.Errorf("expected documents dir /data/docs, got %q", config.Ledger.DocumentsDir)
	}
	if config.Currency != "EUR" {
		t.Errorf("expected currency EUR, got %q", config.Currency)
	}
	if !config.Debug {
		t.Error("expected debug on")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load("/nonexistent/.env")
	if err == nil {
		t.Fatal("expected error for missing .env file")
	}
}

func TestValidate(t *testing.T) {
	config := &Config{
		Ledger:        LedgerConfig{Root: "/data/ledger"},
		ImportersFile: "importers.yaml",
		Currency:      "USD",
	}

	if err := config.Validate("ledger.root", "importersFile", "currency"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := config.Validate("ledger.root", "ledger.dbPath")
	if err == nil {
		t.Fatal("expected error for missing dbPath")
	}
	if !strings.Contains(err.Error(), "ledger.dbPath") {
		t.Errorf("error should name the missing field: %v", err)
	}
}

func TestValidateUnknownField(t *testing.T) {
	config := &Config{}
	if err := config.Validate("bogus"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
