// Package schema validates document text against JSON Schema definitions.
// A Validator compiles the schema once and can check any number of documents
// against it, reporting each failure with its field path.
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Issue is one validation failure.
type Issue struct {
	Field       string
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Description)
}

// Result reports the outcome of validating one document.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Summary renders the result as a single line for logs and status bars.
func (r Result) Summary() string {
	if r.Valid {
		return "document is valid"
	}
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// Validator wraps a compiled JSON schema for reuse across documents.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles a schema from its JSON bytes.
func NewValidator(schemaBytes []byte) (*Validator, error) {
	if len(schemaBytes) == 0 {
		return nil, errors.New("empty schema input")
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// NewValidatorFromFile compiles a schema read from disk.
func NewValidatorFromFile(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return NewValidator(data)
}

// ValidateText checks document text against the schema. The returned error
// covers mechanical failures only, such as unparseable document text; schema
// violations land in the Result.
func (v *Validator) ValidateText(text string) (Result, error) {
	res, err := v.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return Result{}, fmt.Errorf("schema validation error: %w", err)
	}
	out := Result{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Issues = append(out.Issues, Issue{Field: desc.Field(), Description: desc.Description()})
	}
	return out, nil
}
