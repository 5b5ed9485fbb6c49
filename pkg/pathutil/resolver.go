// Package pathutil provides centralized path management for ledger files,
// the history database, and archived documents.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages paths for ledger files, database, and documents.
type PathResolver struct {
	ledgerRoot   string
	databasePath string
	documentsDir string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// LedgerRoot is the root directory for all Beancount files (e.g. ~/accounting/ledger)
	LedgerRoot string
	// DatabasePath is the path to the SQLite database file for import history
	DatabasePath string
	// DocumentsDir is the directory archived statements are filed under
	DocumentsDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {LedgerRoot}/.import/import.db
// If DocumentsDir is empty, it defaults to {LedgerRoot}/documents
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.LedgerRoot, ".import", "import.db")
	}

	documentsDir := config.DocumentsDir
	if documentsDir == "" {
		documentsDir = filepath.Join(config.LedgerRoot, "documents")
	}

	return &PathResolver{
		ledgerRoot:   config.LedgerRoot,
		databasePath: dbPath,
		documentsDir: documentsDir,
	}
}

// LedgerRoot returns the ledger root directory.
func (p *PathResolver) LedgerRoot() string {
	return p.ledgerRoot
}

// DatabasePath returns the history database file path.
func (p *PathResolver) DatabasePath() string {
	return p.databasePath
}

// DocumentsDir returns the archived documents directory.
func (p *PathResolver) DocumentsDir() string {
	return p.documentsDir
}

// YearDir returns the directory path for a year.
// Example: ~/accounting/ledger/2024
func (p *PathResolver) YearDir(year string) string {
	return filepath.Join(p.ledgerRoot, year)
}

// MonthFilePath returns the ledger file path for a month.
// monthKey should be in YYYY-MM format.
// Example: ~/accounting/ledger/2024/2024-01.beancount
func (p *PathResolver) MonthFilePath(monthKey string) (string, error) {
	parts := strings.Split(monthKey, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", monthKey)
	}

	year := parts[0]
	filename := fmt.Sprintf("%s.beancount", monthKey)

	return filepath.Join(p.YearDir(year), filename), nil
}

// DocumentDir returns the directory a document for the given account is
// filed under. The account's colon-separated components become path
// segments.
// Example: documents/Assets/Bank/Checking
func (p *PathResolver) DocumentDir(account string) string {
	segments := append([]string{p.documentsDir}, strings.Split(account, ":")...)
	return filepath.Join(segments...)
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// IsDir checks if a path is a directory.
func (p *PathResolver) IsDir(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
