package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()

	conn, err := Open(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".import", "import.db")

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	if conn.GetPath() != path {
		t.Errorf("unexpected path: %q", conn.GetPath())
	}
}

func TestGetDB(t *testing.T) {
	conn := newTestConnection(t)

	// The raw handle is usable for callers needing database/sql
	// directly.
	var count int
	if err := conn.GetDB().QueryRow(`SELECT COUNT(*) FROM import_metadata`).Scan(&count); err != nil {
		t.Fatalf("failed to query through the underlying handle: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty metadata table, got %d rows", count)
	}
}

func TestTransactionCommit(t *testing.T) {
	conn := newTestConnection(t)

	err := conn.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO import_metadata (key, value) VALUES (?, ?)`,
			"schema_version", "1",
		)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var value string
	if err := conn.QueryRow(`SELECT value FROM import_metadata WHERE key = ?`, "schema_version").Scan(&value); err != nil {
		t.Fatalf("failed to read committed row: %v", err)
	}
	if value != "1" {
		t.Errorf("expected committed value 1, got %q", value)
	}
}

func TestTransactionRollback(t *testing.T) {
	conn := newTestConnection(t)

	failure := errors.New("boom")
	err := conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO import_metadata (key, value) VALUES (?, ?)`,
			"schema_version", "1",
		); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM import_metadata`).Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to discard the row, got %d rows", count)
	}
}
