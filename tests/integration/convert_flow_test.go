package integration

import (
	"os"
	"testing"

	"github.com/dshills/jsongraph/internal/testutil"
	"github.com/dshills/jsongraph/pkg/convert"
	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// TestConvertFlow_YAMLThroughGraphAndBack opens a YAML document, edits it as
// a graph, and writes it back out as YAML.
func TestConvertFlow_YAMLThroughGraphAndBack(t *testing.T) {
	source := "service: api\nreplicas: 2\nports:\n  - 80\n  - 443\n"
	yamlPath := testutil.WriteDocument(t, t.TempDir(), "deploy.yaml", source)

	// Detect and normalize to JSON
	format, err := convert.DetectFormat(yamlPath)
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != convert.FormatYAML {
		t.Fatalf("DetectFormat() = %q, want yaml", format)
	}

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("reading yaml: %v", err)
	}
	text, err := convert.ToJSON(data, format)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	// The converted document builds a graph like any JSON document
	g := testutil.MustGraph(t, text)
	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2 (root, ports)", g.NodeCount())
	}

	// Edit through the store
	store := testutil.LoadedStore(t, text, yamlPath)
	if err := store.SaveNodeText(jsonpath.MustParse(`$["replicas"]`), "5"); err != nil {
		t.Fatalf("SaveNodeText() error = %v", err)
	}

	// Convert back to YAML and verify the round trip kept everything
	out, err := convert.FromJSON(store.Contents(), convert.FormatYAML)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	roundTripped, err := convert.ToJSON(out, convert.FormatYAML)
	if err != nil {
		t.Fatalf("ToJSON() round trip error = %v", err)
	}

	replicas, err := jsonpath.Value(roundTripped, `$["replicas"]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if n, ok := replicas.(float64); !ok || n != 5 {
		t.Errorf("replicas = %v, want 5", replicas)
	}

	port, err := jsonpath.Value(roundTripped, `$["ports"][1]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if n, ok := port.(float64); !ok || n != 443 {
		t.Errorf("ports[1] = %v, want 443", port)
	}
}

// TestConvertFlow_TOMLRejectsNonTable verifies the representability error
// surfaces when a document cannot live in the target format.
func TestConvertFlow_TOMLRejectsNonTable(t *testing.T) {
	if _, err := convert.FromJSON(`[1, 2, 3]`, convert.FormatTOML); err == nil {
		t.Fatal("expected an error converting a top-level array to TOML")
	}

	out, err := convert.FromJSON(`{"a": [1, 2, 3]}`, convert.FormatTOML)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	back, err := convert.ToJSON(out, convert.FormatTOML)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	second, err := jsonpath.Value(back, `$["a"][1]`)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if n, ok := second.(float64); !ok || n != 2 {
		t.Errorf("a[1] = %v, want 2", second)
	}
}
