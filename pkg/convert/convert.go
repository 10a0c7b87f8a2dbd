// Package convert translates documents between JSON, YAML, and TOML. JSON is
// the canonical in-memory form; the other formats convert through it, so a
// YAML file opened in the viewer becomes ordinary document text and any
// format can be written back out.
package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dshills/jsongraph/pkg/document"
)

// Format identifies a document serialization format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Conversion errors.
var (
	ErrUnknownFormat    = errors.New("unknown document format")
	ErrNotRepresentable = errors.New("value cannot be represented in the target format")
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat infers the format from a file path's extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// ToJSON converts raw document bytes in the given format to canonical JSON
// text with two-space indentation.
func ToJSON(data []byte, from Format) (string, error) {
	switch from {
	case FormatJSON:
		v, err := document.ParseValue(string(data))
		if err != nil {
			return "", err
		}
		return document.Stringify(v)
	case FormatYAML:
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return "", fmt.Errorf("parse yaml: %w", err)
		}
		return document.Stringify(normalizeYAML(v))
	case FormatTOML:
		var v map[string]interface{}
		if err := toml.Unmarshal(data, &v); err != nil {
			return "", fmt.Errorf("parse toml: %w", err)
		}
		return document.Stringify(v)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, from)
	}
}

// FromJSON converts canonical JSON text into the target format.
func FromJSON(text string, to Format) ([]byte, error) {
	v, err := document.ParseValue(text)
	if err != nil {
		return nil, err
	}

	switch to {
	case FormatJSON:
		out, err := document.Stringify(v)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case FormatYAML:
		out, err := yaml.Marshal(denumber(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, err)
		}
		return out, nil
	case FormatTOML:
		table, ok := denumber(v).(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: toml requires a top-level table", ErrNotRepresentable)
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(table); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, to)
	}
}

// Convert translates raw bytes from one format to another through the
// canonical JSON form.
func Convert(data []byte, from, to Format) ([]byte, error) {
	text, err := ToJSON(data, from)
	if err != nil {
		return nil, err
	}
	return FromJSON(text, to)
}

// normalizeYAML rewrites interface-keyed maps into string-keyed maps so the
// value can be JSON-marshaled. yaml.v3 produces string keys for ordinary
// mappings but falls back to interface keys for non-string ones.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// denumber replaces json.Number values with int64 or float64 so YAML and
// TOML encoders emit numeric scalars instead of quoted strings.
func denumber(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = denumber(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = denumber(val)
		}
		return out
	default:
		return v
	}
}
