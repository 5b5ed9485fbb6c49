// Package db provides SQLite storage for extraction and archival history.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Extraction history table
-- Tracks which statement transactions have been written to the ledger
CREATE TABLE IF NOT EXISTS extract_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    importer TEXT NOT NULL,            -- importer name, e.g. 'ofx.Assets:Bank:Checking'
    txn_hash TEXT NOT NULL,            -- stable transaction identity hash
    txn_date TEXT NOT NULL,            -- YYYY-MM-DD
    narration TEXT NOT NULL,
    ledger_file TEXT NOT NULL,         -- path to the Beancount file written
    extracted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(importer, txn_hash)
);

CREATE INDEX IF NOT EXISTS idx_extract_history_importer_hash
    ON extract_history(importer, txn_hash);

CREATE INDEX IF NOT EXISTS idx_extract_history_date
    ON extract_history(txn_date);

-- Archived documents table
-- Tracks which source statement files have been filed away
CREATE TABLE IF NOT EXISTS archived_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    importer TEXT NOT NULL,
    source_hash TEXT NOT NULL,         -- content hash of the source file
    source_path TEXT NOT NULL,
    archived_path TEXT NOT NULL,       -- where the document was filed
    statement_date TEXT,               -- YYYY-MM-DD, if known
    archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(source_hash)
);

CREATE INDEX IF NOT EXISTS idx_archived_documents_importer
    ON archived_documents(importer);

-- Import metadata table
-- Stores key-value metadata about import runs
CREATE TABLE IF NOT EXISTS import_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
