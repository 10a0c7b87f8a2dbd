package storage

import (
	"database/sql"
	"fmt"
)

// historySchemaVersion tracks the current history database schema version.
const historySchemaVersion = 1

// initializeHistorySchema creates the SQLite schema for open and edit
// history, with migration version tracking for future schema updates.
func initializeHistorySchema(db *sql.DB) error {
	migrationsTable := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL UNIQUE,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := db.Exec(migrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to check migration version: %w", err)
	}

	if currentVersion < 1 {
		if err := applyHistoryMigration1(db); err != nil {
			return fmt.Errorf("failed to apply migration 1: %w", err)
		}
	}
	return nil
}

// applyHistoryMigration1 creates the initial schema.
func applyHistoryMigration1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recentTable := `
	CREATE TABLE recent_documents (
		path TEXT PRIMARY KEY,
		opened_at TIMESTAMP NOT NULL,
		open_count INTEGER NOT NULL DEFAULT 1,
		node_count INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := tx.Exec(recentTable); err != nil {
		return fmt.Errorf("failed to create recent_documents table: %w", err)
	}

	editsTable := `
	CREATE TABLE edits (
		id TEXT PRIMARY KEY,
		document_path TEXT NOT NULL,
		node_path TEXT NOT NULL,
		summary TEXT,
		edited_at TIMESTAMP NOT NULL
	);`

	if _, err := tx.Exec(editsTable); err != nil {
		return fmt.Errorf("failed to create edits table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX idx_recent_documents_opened_at ON recent_documents(opened_at DESC);",
		"CREATE INDEX idx_edits_document_path ON edits(document_path, edited_at DESC);",
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create history index: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", historySchemaVersion); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
