package pathutil

import (
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/accounting/ledger"})

	if got := resolver.DatabasePath(); got != filepath.Join("/accounting/ledger", ".import", "import.db") {
		t.Errorf("unexpected default database path: %q", got)
	}
	if got := resolver.DocumentsDir(); got != filepath.Join("/accounting/ledger", "documents") {
		t.Errorf("unexpected default documents dir: %q", got)
	}
}

func TestNewOverrides(t *testing.T) {
	resolver := New(Config{
		LedgerRoot:   "/ledger",
		DatabasePath: "/elsewhere/import.db",
		DocumentsDir: "/elsewhere/docs",
	})

	if resolver.DatabasePath() != "/elsewhere/import.db" {
		t.Errorf("database path override ignored: %q", resolver.DatabasePath())
	}
	if resolver.DocumentsDir() != "/elsewhere/docs" {
		t.Errorf("documents dir override ignored: %q", resolver.DocumentsDir())
	}
}

func TestMonthFilePath(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/ledger"})

	tests := []struct {
		monthKey  string
		expected  string
		expectErr bool
	}{
		{"2024-01", filepath.Join("/ledger", "2024", "2024-01.beancount"), false},
		{"2024-12", filepath.Join("/ledger", "2024", "2024-12.beancount"), false},
		{"202401", "", true},
		{"2024-1", "", true},
		{"24-01", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := resolver.MonthFilePath(tt.monthKey)
		if (err != nil) != tt.expectErr {
			t.Errorf("MonthFilePath(%q) error = %v, expectErr = %v", tt.monthKey, err, tt.expectErr)
			continue
		}
		if !tt.expectErr && got != tt.expected {
			t.Errorf("MonthFilePath(%q) = %q, expected %q", tt.monthKey, got, tt.expected)
		}
	}
}

func TestDocumentDir(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/ledger"})

	got := resolver.DocumentDir("Assets:Bank:Checking")
	expected := filepath.Join("/ledger", "documents", "Assets", "Bank", "Checking")
	if got != expected {
		t.Errorf("DocumentDir = %q, expected %q", got, expected)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	root := t.TempDir()
	resolver := New(Config{LedgerRoot: root})

	dir := filepath.Join(root, "a", "b", "c")
	if err := resolver.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !resolver.IsDir(dir) {
		t.Error("EnsureDir did not create directory")
	}
	if resolver.FileExists(filepath.Join(root, "missing")) {
		t.Error("FileExists should be false for missing file")
	}
}
