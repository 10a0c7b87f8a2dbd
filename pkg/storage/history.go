package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// HistoryStore records which documents were opened and which nodes were
// edited, backed by SQLite so the recent list survives restarts.
type HistoryStore struct {
	db *sql.DB
}

// RecentDocument is one row of the recently-opened list.
type RecentDocument struct {
	Path      string
	OpenedAt  time.Time
	OpenCount int
	NodeCount int
}

// EditRecord describes one saved node edit.
type EditRecord struct {
	ID           string
	DocumentPath string
	NodePath     string
	Summary      string
	EditedAt     time.Time
}

// NewHistoryStore opens the history database in the config directory,
// creating it on first use.
func NewHistoryStore() (*HistoryStore, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return NewHistoryStoreWithPath(filepath.Join(dir, "history.db"))
}

// NewHistoryStoreWithPath opens a history database at a custom path.
// Useful for testing.
func NewHistoryStoreWithPath(dbPath string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeHistorySchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// TouchDocument records that a document was opened, bumping its open count
// and node count if it is already known.
func (s *HistoryStore) TouchDocument(path string, nodeCount int) error {
	if path == "" {
		return fmt.Errorf("document path cannot be empty")
	}
	query := `
		INSERT INTO recent_documents (path, opened_at, open_count, node_count)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			opened_at = excluded.opened_at,
			open_count = recent_documents.open_count + 1,
			node_count = excluded.node_count
	`
	if _, err := s.db.Exec(query, path, time.Now().UTC(), nodeCount); err != nil {
		return fmt.Errorf("failed to record document open: %w", err)
	}
	return nil
}

// RecentDocuments returns the most recently opened documents, newest first.
// A non-positive limit returns up to 20 entries.
func (s *HistoryStore) RecentDocuments(limit int) ([]RecentDocument, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT path, opened_at, open_count, node_count
		FROM recent_documents
		ORDER BY opened_at DESC, path
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RecentDocument
	for rows.Next() {
		var rd RecentDocument
		if err := rows.Scan(&rd.Path, &rd.OpenedAt, &rd.OpenCount, &rd.NodeCount); err != nil {
			return nil, fmt.Errorf("failed to scan recent document: %w", err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent documents: %w", err)
	}
	return out, nil
}

// RecordEdit stores a saved node edit and returns its identifier.
func (s *HistoryStore) RecordEdit(documentPath, nodePath, summary string) (string, error) {
	if documentPath == "" {
		return "", fmt.Errorf("document path cannot be empty")
	}
	id := uuid.NewString()
	query := `
		INSERT INTO edits (id, document_path, node_path, summary, edited_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, id, documentPath, nodePath, summary, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to record edit: %w", err)
	}
	return id, nil
}

// EditsFor returns the edit history for a document, newest first. A
// non-positive limit returns up to 50 entries.
func (s *HistoryStore) EditsFor(documentPath string, limit int) ([]EditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, document_path, node_path, summary, edited_at
		FROM edits
		WHERE document_path = ?
		ORDER BY edited_at DESC, rowid DESC
		LIMIT ?`, documentPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []EditRecord
	for rows.Next() {
		var rec EditRecord
		var summary sql.NullString
		if err := rows.Scan(&rec.ID, &rec.DocumentPath, &rec.NodePath, &summary, &rec.EditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		rec.Summary = summary.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edits: %w", err)
	}
	return out, nil
}

// ForgetDocument drops a document from the recent list along with its edit
// history.
func (s *HistoryStore) ForgetDocument(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM edits WHERE document_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete edits: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM recent_documents WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete recent entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
