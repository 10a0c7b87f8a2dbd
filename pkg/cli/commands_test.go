package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/jsongraph/pkg/storage"
)

// runCommand executes the CLI with the given arguments, capturing combined
// stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCommandWithInput(t, nil, args...)
}

func runCommandWithInput(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeTempFile creates a file under a per-test temp dir and returns its path.
func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestIsOnlyWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"tabs and newlines", "\t\n\r ", true},
		{"unicode space", "  ", true},
		{"plain token", "secret", false},
		{"token with padding", "  secret  ", false},
		{"invalid utf8", "\xff\xfe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOnlyWhitespace([]byte(tt.input)); got != tt.expected {
				t.Errorf("isOnlyWhitespace(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHistoryKey(t *testing.T) {
	key := historyKey("https://api.example.com/state.json")
	if key != "https://api.example.com/state.json" {
		t.Errorf("URL key = %q, want the URL unchanged", key)
	}

	key = historyKey("some/rel/path.json")
	if !filepath.IsAbs(key) || !strings.HasSuffix(key, filepath.Join("some", "rel", "path.json")) {
		t.Errorf("file key = %q, want an absolute path", key)
	}
}

func TestGetCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())
	doc := `{"server": {"host": "localhost", "port": 8080}, "tags": ["a", "b"]}`
	path := writeTempFile(t, "doc.json", doc)

	t.Run("scalar", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["server"]["port"]`)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != "8080\n" {
			t.Errorf("output = %q, want %q", out, "8080\n")
		}
	})

	t.Run("object pretty printed", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["server"]`)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !strings.Contains(out, "  \"port\": 8080") {
			t.Errorf("output not indented:\n%s", out)
		}
	})

	t.Run("compact", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["server"]`, "--compact")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != `{"host":"localhost","port":8080}`+"\n" {
			t.Errorf("compact output = %q", out)
		}
	})

	t.Run("raw string", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["server"]["host"]`, "--raw")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != "localhost\n" {
			t.Errorf("raw output = %q, want %q", out, "localhost\n")
		}
	})

	t.Run("wildcard lists every match", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["tags"][*]`)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != "\"a\"\n\"b\"\n" {
			t.Errorf("wildcard output = %q", out)
		}
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := runCommand(t, "get", path, `$["nope"]`)
		if err == nil || !strings.Contains(err.Error(), "no value at") {
			t.Errorf("error = %v, want no value", err)
		}
	})

	t.Run("yaml input converted", func(t *testing.T) {
		yamlPath := writeTempFile(t, "doc.yaml", "port: 9090\n")
		out, err := runCommand(t, "get", yamlPath, `$["port"]`)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != "9090\n" {
			t.Errorf("output = %q, want %q", out, "9090\n")
		}
	})

	t.Run("no-cache accepted for local files", func(t *testing.T) {
		out, err := runCommand(t, "get", path, `$["server"]["port"]`, "--no-cache")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if out != "8080\n" {
			t.Errorf("output = %q, want %q", out, "8080\n")
		}
	})
}

func TestSetCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	t.Run("prints updated document", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		out, err := runCommand(t, "set", path, `$["b"]`, "2")
		if err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if !strings.Contains(out, `"b": 2`) {
			t.Errorf("output missing new value:\n%s", out)
		}
		data, _ := os.ReadFile(path)
		if string(data) != `{"a": 1}` {
			t.Errorf("file modified without --write: %s", data)
		}
	})

	t.Run("write rewrites the file", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		out, err := runCommand(t, "set", path, `$["b"]["c"]`, `"deep"`, "--write")
		if err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if !strings.Contains(out, "✓ Set") {
			t.Errorf("missing confirmation:\n%s", out)
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), `"c": "deep"`) {
			t.Errorf("intermediate object not created: %s", data)
		}
		if !strings.Contains(string(data), `"a": 1`) {
			t.Errorf("existing member lost: %s", data)
		}
	})

	t.Run("root path replaces document", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		out, err := runCommand(t, "set", path, "$", `{"x": 9}`)
		if err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if !strings.Contains(out, `"x": 9`) || strings.Contains(out, `"a"`) {
			t.Errorf("root replacement wrong:\n%s", out)
		}
	})

	t.Run("invalid value leaves file alone", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		_, err := runCommand(t, "set", path, `$["b"]`, "{broken", "--write")
		if err == nil {
			t.Fatal("expected an error for malformed value")
		}
		data, _ := os.ReadFile(path)
		if string(data) != `{"a": 1}` {
			t.Errorf("file modified after failed set: %s", data)
		}
	})

	t.Run("write to url refused", func(t *testing.T) {
		_, err := runCommand(t, "set", "https://example.com/d.json", "$", "1", "--write")
		if err == nil || !strings.Contains(err.Error(), "cannot write back to a URL") {
			t.Errorf("error = %v, want URL refusal", err)
		}
	})
}

func TestFmtCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	t.Run("pretty prints", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a":1,"b":[2,3]}`)
		out, err := runCommand(t, "fmt", path)
		if err != nil {
			t.Fatalf("fmt failed: %v", err)
		}
		if !strings.Contains(out, "  \"a\": 1") {
			t.Errorf("output not indented:\n%s", out)
		}
	})

	t.Run("compact", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", "{\n  \"a\": 1\n}\n")
		out, err := runCommand(t, "fmt", path, "--compact")
		if err != nil {
			t.Fatalf("fmt failed: %v", err)
		}
		if out != `{"a":1}`+"\n" {
			t.Errorf("compact output = %q", out)
		}
	})

	t.Run("write rewrites the file", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a":1}`)
		out, err := runCommand(t, "fmt", path, "--write")
		if err != nil {
			t.Fatalf("fmt failed: %v", err)
		}
		if !strings.Contains(out, "✓ Formatted") {
			t.Errorf("missing confirmation:\n%s", out)
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "  \"a\": 1") {
			t.Errorf("file not reformatted: %s", data)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", "{oops")
		_, err := runCommand(t, "fmt", path)
		if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
			t.Errorf("error = %v, want invalid JSON", err)
		}
	})
}

func TestConvertCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	t.Run("json to yaml", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"name": "ada", "port": 8080}`)
		out, err := runCommand(t, "convert", path, "--to", "yaml")
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		if !strings.Contains(out, "name: ada") || !strings.Contains(out, "port: 8080") {
			t.Errorf("yaml output wrong:\n%s", out)
		}
	})

	t.Run("yaml to json by extension", func(t *testing.T) {
		path := writeTempFile(t, "doc.yaml", "name: ada\nport: 8080\n")
		out, err := runCommand(t, "convert", path, "--to", "json")
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		if !strings.Contains(out, `"port": 8080`) {
			t.Errorf("json output wrong:\n%s", out)
		}
	})

	t.Run("output file format detected", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		outPath := filepath.Join(t.TempDir(), "out.toml")
		out, err := runCommand(t, "convert", path, "--output", outPath)
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		if !strings.Contains(out, "✓ Converted") {
			t.Errorf("missing confirmation:\n%s", out)
		}
		data, _ := os.ReadFile(outPath)
		if !strings.Contains(string(data), "a = 1") {
			t.Errorf("toml output wrong: %s", data)
		}
	})

	t.Run("missing target format errors", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"a": 1}`)
		_, err := runCommand(t, "convert", path)
		if err == nil || !strings.Contains(err.Error(), "output format") {
			t.Errorf("error = %v, want output format hint", err)
		}
	})

	t.Run("toml needs an object", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `[1, 2]`)
		_, err := runCommand(t, "convert", path, "--to", "toml")
		if err == nil {
			t.Fatal("expected an error for array to toml")
		}
	})
}

func TestValidateCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	t.Run("well formed document", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"server": {"port": 1}}`)
		out, err := runCommand(t, "validate", path)
		if err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if !strings.Contains(out, "✓ Document is well-formed JSON") {
			t.Errorf("missing syntax check:\n%s", out)
		}
		if !strings.Contains(out, "✓ Parsed 2 nodes") {
			t.Errorf("missing node count:\n%s", out)
		}
		if !strings.Contains(out, "is valid") {
			t.Errorf("missing summary:\n%s", out)
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", "{oops")
		out, err := runCommand(t, "validate", path)
		if err == nil {
			t.Fatal("expected an error for malformed JSON")
		}
		if !strings.Contains(out, "✗ Document is not valid JSON") {
			t.Errorf("missing failure marker:\n%s", out)
		}
	})

	t.Run("schema pass", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"name": "ada"}`)
		schemaPath := writeTempFile(t, "doc.schema.json", `{"type": "object", "required": ["name"]}`)
		out, err := runCommand(t, "validate", path, "--schema", schemaPath)
		if err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if !strings.Contains(out, "✓ Document conforms to schema") {
			t.Errorf("missing schema check:\n%s", out)
		}
	})

	t.Run("schema failure lists issues", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{}`)
		schemaPath := writeTempFile(t, "doc.schema.json", `{"type": "object", "required": ["name"]}`)
		out, err := runCommand(t, "validate", path, "--schema", schemaPath)
		if err == nil {
			t.Fatal("expected an error for schema violation")
		}
		if !strings.Contains(out, "name") {
			t.Errorf("issue list missing field:\n%s", out)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())
	doc := `{"users": [{"name": "ada"}, {"name": "bob"}]}`
	path := writeTempFile(t, "doc.json", doc)

	t.Run("expression filter", func(t *testing.T) {
		out, err := runCommand(t, "search", path, `rows.name == "ada"`)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, `$["users"][0]`) {
			t.Errorf("match path missing:\n%s", out)
		}
		if !strings.Contains(out, "1 of 4 nodes matched") {
			t.Errorf("summary wrong:\n%s", out)
		}
	})

	t.Run("text search", func(t *testing.T) {
		out, err := runCommand(t, "search", path, "ada", "--text")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, `$["users"][0]`) {
			t.Errorf("match path missing:\n%s", out)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := runCommand(t, "search", path, `kind == "missing"`)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "No matching nodes") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := runCommand(t, "search", path, "kind ==")
		if err == nil {
			t.Fatal("expected an error for malformed expression")
		}
	})
}

func TestExportCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())
	path := writeTempFile(t, "doc.json", `{"tags": ["a"]}`)

	t.Run("dot output", func(t *testing.T) {
		out, err := runCommand(t, "export", path)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out, "digraph") {
			t.Errorf("dot output missing digraph:\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		out, err := runCommand(t, "export", path, "--format", "json")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out, `"nodes"`) || !strings.Contains(out, `"edges"`) {
			t.Errorf("json output missing graph keys:\n%s", out)
		}
	})

	t.Run("dot to file", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "graph.dot")
		out, err := runCommand(t, "export", path, "--output", outPath)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out, "✓ Exported") {
			t.Errorf("missing confirmation:\n%s", out)
		}
		data, _ := os.ReadFile(outPath)
		if !strings.Contains(string(data), "digraph") {
			t.Errorf("dot file wrong: %s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCommand(t, "export", path, "--format", "gif")
		if err == nil || !strings.Contains(err.Error(), "unknown format") {
			t.Errorf("error = %v, want unknown format", err)
		}
	})
}

func TestRecentAndHistoryCommands(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	t.Run("empty history", func(t *testing.T) {
		out, err := runCommand(t, "recent")
		if err != nil {
			t.Fatalf("recent failed: %v", err)
		}
		if !strings.Contains(out, "No documents opened yet") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("seeded history", func(t *testing.T) {
		history, err := storage.NewHistoryStore()
		if err != nil {
			t.Fatalf("opening history: %v", err)
		}
		if err := history.TouchDocument("/tmp/seeded.json", 7); err != nil {
			t.Fatalf("TouchDocument() error = %v", err)
		}
		if _, err := history.RecordEdit("/tmp/seeded.json", `$["a"]`, "10 -> 20 bytes"); err != nil {
			t.Fatalf("RecordEdit() error = %v", err)
		}
		_ = history.Close()

		out, err := runCommand(t, "recent")
		if err != nil {
			t.Fatalf("recent failed: %v", err)
		}
		if !strings.Contains(out, "/tmp/seeded.json") {
			t.Errorf("recent missing document:\n%s", out)
		}

		out, err = runCommand(t, "history", "/tmp/seeded.json")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out, `$["a"]`) || !strings.Contains(out, "10 -> 20 bytes") {
			t.Errorf("history missing edit:\n%s", out)
		}
	})

	t.Run("no edits recorded", func(t *testing.T) {
		out, err := runCommand(t, "history", "/tmp/never-opened.json")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out, "No edits recorded") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "jsongraph") || !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q", out)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	t.Setenv("JSONGRAPH_CONFIG_DIR", t.TempDir())

	if _, err := runCommand(t, "definitely-not-a-command"); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}
