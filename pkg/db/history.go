package db

import (
	"database/sql"
	"fmt"
	"time"
)

// ExtractRecord represents one extracted-transaction history row.
type ExtractRecord struct {
	ID          int64
	Importer    string
	TxnHash     string
	TxnDate     string
	Narration   string
	LedgerFile  string
	ExtractedAt time.Time
}

// ArchivedDocument represents one filed source statement.
type ArchivedDocument struct {
	ID            int64
	Importer      string
	SourceHash    string
	SourcePath    string
	ArchivedPath  string
	StatementDate sql.NullString
	ArchivedAt    time.Time
}

// History manages extraction and archival history operations.
type History struct {
	conn *Connection
}

// NewHistory creates a new History instance.
func NewHistory(conn *Connection) *History {
	return &History{conn: conn}
}

// RecordExtraction records an extracted transaction.
// If the record already exists (same importer + txn_hash), it updates it.
func (h *History) RecordExtraction(record ExtractRecord) error {
	query := `
		INSERT INTO extract_history (importer, txn_hash, txn_date, narration, ledger_file)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(importer, txn_hash) DO UPDATE SET
			txn_date = excluded.txn_date,
			narration = excluded.narration,
			ledger_file = excluded.ledger_file,
			extracted_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query,
		record.Importer,
		record.TxnHash,
		record.TxnDate,
		record.Narration,
		record.LedgerFile,
	)

	if err != nil {
		return fmt.Errorf("failed to record extraction: %w", err)
	}

	return nil
}

// IsExtracted checks if a transaction hash has been written already.
func (h *History) IsExtracted(importer, txnHash string) (bool, error) {
	query := `
		SELECT COUNT(*) as count FROM extract_history
		WHERE importer = ? AND txn_hash = ?
	`

	var count int
	err := h.conn.QueryRow(query, importer, txnHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if extracted: %w", err)
	}

	return count > 0, nil
}

// SeenHashes retrieves all recorded transaction hashes for an importer.
// This is useful for bulk filtering before a write.
func (h *History) SeenHashes(importer string) (map[string]bool, error) {
	query := `SELECT txn_hash FROM extract_history WHERE importer = ?`

	rows, err := h.conn.Query(query, importer)
	if err != nil {
		return nil, fmt.Errorf("failed to get seen hashes: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan transaction hash: %w", err)
		}
		seen[hash] = true
	}

	return seen, nil
}

// ExtractionsByImporter retrieves all extraction records for an importer.
func (h *History) ExtractionsByImporter(importer string) ([]ExtractRecord, error) {
	query := `
		SELECT id, importer, txn_hash, txn_date, narration, ledger_file, extracted_at
		FROM extract_history
		WHERE importer = ?
		ORDER BY txn_date DESC
	`

	rows, err := h.conn.Query(query, importer)
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction records: %w", err)
	}
	defer rows.Close()

	var records []ExtractRecord
	for rows.Next() {
		var record ExtractRecord
		if err := rows.Scan(
			&record.ID,
			&record.Importer,
			&record.TxnHash,
			&record.TxnDate,
			&record.Narration,
			&record.LedgerFile,
			&record.ExtractedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan extraction record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// DeleteExtraction deletes an extraction record.
// Use case: force a transaction to be written again on the next run.
func (h *History) DeleteExtraction(importer, txnHash string) (bool, error) {
	query := `DELETE FROM extract_history WHERE importer = ? AND txn_hash = ?`

	result, err := h.conn.Exec(query, importer, txnHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete extraction record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// RecordDocument records an archived source document.
func (h *History) RecordDocument(doc ArchivedDocument) error {
	query := `
		INSERT INTO archived_documents (importer, source_hash, source_path, archived_path, statement_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET
			archived_path = excluded.archived_path,
			statement_date = excluded.statement_date,
			archived_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query,
		doc.Importer,
		doc.SourceHash,
		doc.SourcePath,
		doc.ArchivedPath,
		doc.StatementDate,
	)

	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	return nil
}

// IsDocumentArchived checks if a source file has been filed already.
func (h *History) IsDocumentArchived(sourceHash string) (bool, error) {
	query := `
		SELECT COUNT(*) as count FROM archived_documents
		WHERE source_hash = ?
	`

	var count int
	err := h.conn.QueryRow(query, sourceHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if document archived: %w", err)
	}

	return count > 0, nil
}

// Stats represents import history statistics.
type Stats struct {
	TotalExtractions int
	TotalDocuments   int
	LastRun          sql.NullString
}

// GetStats retrieves import history statistics.
func (h *History) GetStats() (*Stats, error) {
	var stats Stats

	err := h.conn.QueryRow(`SELECT COUNT(*) FROM extract_history`).Scan(&stats.TotalExtractions)
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction count: %w", err)
	}

	err = h.conn.QueryRow(`SELECT COUNT(*) FROM archived_documents`).Scan(&stats.TotalDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to get document count: %w", err)
	}

	err = h.conn.QueryRow(`SELECT MAX(extracted_at) FROM extract_history`).Scan(&stats.LastRun)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last run time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *History) GetMetadata(key string) (string, error) {
	query := `SELECT value FROM import_metadata WHERE key = ?`

	var value string
	err := h.conn.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *History) SetMetadata(key, value string) error {
	query := `
		INSERT INTO import_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
