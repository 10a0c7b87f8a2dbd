package integration

import (
	"path/filepath"
	"testing"

	"github.com/dshills/jsongraph/internal/testutil"
	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/jsonpath"
	"github.com/dshills/jsongraph/pkg/storage"
)

// TestDocumentFlow_OpenEditPersistReload drives a document through the full
// headless pipeline: read from disk, build the graph, edit one node, write
// the result back atomically, and reload it.
func TestDocumentFlow_OpenEditPersistReload(t *testing.T) {
	docPath := testutil.WriteDocument(t, t.TempDir(), "config.json", testutil.ConfigDocument)

	// Read and load
	text, err := storage.ReadDocument(docPath)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	store := testutil.LoadedStore(t, text, docPath)

	g := testutil.MustGraph(t, store.Contents())
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3 (root, server, tags)", g.NodeCount())
	}

	// Edit the server node the way the node editor saves it
	serverPath := jsonpath.MustParse(`$["server"]`)
	edited := `{"host": "0.0.0.0", "port": 9090, "tls": true}`
	if err := store.SaveNodeText(serverPath, edited); err != nil {
		t.Fatalf("SaveNodeText() error = %v", err)
	}

	if store.Mirror().Text() != store.Contents() {
		t.Error("editor mirror out of sync with document after save")
	}

	// Persist and reload
	if err := storage.WriteFileAtomic(docPath, []byte(store.Contents()), 0644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	reloaded, err := storage.ReadDocument(docPath)
	if err != nil {
		t.Fatalf("ReadDocument() after save error = %v", err)
	}

	port, err := jsonpath.Value(reloaded, `$["server"]["port"]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if n, ok := port.(float64); !ok || n != 9090 {
		t.Errorf("port after reload = %v, want 9090", port)
	}

	tag, err := jsonpath.Value(reloaded, `$["tags"][0]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if tag != "dev" {
		t.Errorf("untouched member changed: tags[0] = %v", tag)
	}

	// The rebuilt graph picks up the new member
	g2 := testutil.MustGraph(t, reloaded)
	matches := g2.Search("tls")
	if len(matches) != 1 {
		t.Errorf("Search(tls) found %d nodes, want 1", len(matches))
	}
}

// TestDocumentFlow_MissingIntermediatesCreated saves into a path that no
// longer exists and expects the containers to be rebuilt around it.
func TestDocumentFlow_MissingIntermediatesCreated(t *testing.T) {
	store := testutil.LoadedStore(t, `{}`, "mem")

	deep := jsonpath.MustParse(`$["a"]["list"][1]["name"]`)
	if err := store.SaveNodeText(deep, `"found"`); err != nil {
		t.Fatalf("SaveNodeText() error = %v", err)
	}

	got, err := jsonpath.Value(store.Contents(), `$["a"]["list"][1]["name"]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if got != "found" {
		t.Errorf("deep value = %v, want %q", got, "found")
	}

	// Index 0 was padded with null to make room for index 1
	first, err := jsonpath.Query(store.Contents(), `$["a"]["list"][0]`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if first.Raw != "null" {
		t.Errorf("padded element = %s, want null", first.Raw)
	}
}

// TestDocumentFlow_HistoryRecording tracks opens and edits through the
// SQLite history store.
func TestDocumentFlow_HistoryRecording(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	history, err := storage.NewHistoryStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewHistoryStoreWithPath() error = %v", err)
	}
	defer func() { _ = history.Close() }()

	store := testutil.LoadedStore(t, `{"a": 1}`, "/docs/sample.json")

	if err := history.TouchDocument("/docs/sample.json", 1); err != nil {
		t.Fatalf("TouchDocument() error = %v", err)
	}

	// Record edits from store changes, the way the open command wires it
	store.Subscribe(func(change document.Change) {
		if change.Reason != document.ReasonNodeEdit {
			return
		}
		if _, err := history.RecordEdit("/docs/sample.json", change.NodePath.String(), "edit"); err != nil {
			t.Errorf("RecordEdit() error = %v", err)
		}
	})

	if err := store.SaveNodeText(jsonpath.MustParse(`$["a"]`), "2"); err != nil {
		t.Fatalf("SaveNodeText() error = %v", err)
	}

	recents, err := history.RecentDocuments(10)
	if err != nil {
		t.Fatalf("RecentDocuments() error = %v", err)
	}
	if len(recents) != 1 || recents[0].Path != "/docs/sample.json" {
		t.Fatalf("RecentDocuments() = %+v, want the sample document", recents)
	}

	edits, err := history.EditsFor("/docs/sample.json", 10)
	if err != nil {
		t.Fatalf("EditsFor() error = %v", err)
	}
	if len(edits) != 1 || edits[0].NodePath != `$["a"]` {
		t.Fatalf("EditsFor() = %+v, want one edit at $[\"a\"]", edits)
	}
}
