// Package testutil provides fixtures and helpers shared by test suites.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/graph"
)

// ConfigDocument is a small nested document used across suites: an object
// member, a nested object, and an array.
const ConfigDocument = `{"server": {"host": "localhost", "port": 8080}, "tags": ["dev"]}`

// WriteDocument writes contents under dir and returns the full path.
func WriteDocument(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// LoadedStore returns a document store with contents already loaded.
func LoadedStore(t *testing.T, contents, source string) *document.Store {
	t.Helper()
	store := document.NewStore()
	store.Load(contents, source)
	return store
}

// MustGraph builds the graph for a document or fails the test.
func MustGraph(t *testing.T, jsonText string) *graph.Graph {
	t.Helper()
	g, err := graph.Build(jsonText)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}
