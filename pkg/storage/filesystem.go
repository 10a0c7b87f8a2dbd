// Package storage persists what the viewer needs between sessions: document
// files on disk, open/edit history in SQLite, and remote-access tokens in
// the system keyring.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// maxDocumentSize caps how much of a document file will be read into memory.
const maxDocumentSize = 32 << 20

// ErrDocumentTooLarge is returned when a document file exceeds the size cap.
var ErrDocumentTooLarge = errors.New("document file too large")

// DefaultConfigDir returns the directory holding the config file, history
// database, and other per-user state. JSONGRAPH_CONFIG_DIR overrides the
// default of ~/.jsongraph.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("JSONGRAPH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jsongraph"), nil
}

// ReadDocument reads a document file into memory, enforcing the size cap
// before the read so an oversized file never gets loaded.
func ReadDocument(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	if info.Size() > maxDocumentSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, info.Size(), int64(maxDocumentSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// WriteFileAtomic writes data to path via a temp file and rename, creating
// parent directories as needed. Readers never observe a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
