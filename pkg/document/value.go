package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// Mutation errors.
var (
	// ErrInvalidIndex indicates a path segment with a negative array index.
	ErrInvalidIndex = errors.New("negative array index in path")
	// ErrPathNotFound indicates a delete path that does not exist in the value.
	ErrPathNotFound = errors.New("path not found in document")
)

// ParseValue decodes text as a single JSON value. Numbers decode as
// json.Number so their source representation survives re-serialization.
// Trailing non-whitespace content after the value is an error. Error messages
// carry a line and column where the decoder position allows it.
func ParseValue(text string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("invalid JSON: empty input")
		}
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			line, col := offsetPosition(text, syn.Offset)
			return nil, fmt.Errorf("invalid JSON at line %d, column %d: %s", line, col, syn.Error())
		}
		var typ *json.UnmarshalTypeError
		if errors.As(err, &typ) {
			line, col := offsetPosition(text, typ.Offset)
			return nil, fmt.Errorf("invalid JSON at line %d, column %d: %s", line, col, typ.Error())
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	// A valid value followed by more tokens is not a single document.
	if dec.More() {
		off := dec.InputOffset()
		line, col := offsetPosition(text, off)
		return nil, fmt.Errorf("invalid JSON at line %d, column %d: unexpected trailing content", line, col)
	}
	return v, nil
}

// offsetPosition converts a byte offset into a 1-based line and column.
func offsetPosition(text string, offset int64) (line, col int) {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	line, col = 1, 1
	for _, ch := range text[:offset] {
		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Stringify serializes a value as indented JSON: two-space indentation, no
// HTML escaping, no trailing newline. This is the canonical on-screen and
// on-disk form of every document this package produces.
func Stringify(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("stringify: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// SetValueAtPath returns root with value assigned at path. An empty path
// replaces the whole value. Missing intermediate containers are created on
// the way down: an array when the segment entering them is a numeric index,
// an object when it is a key. Intermediates of the wrong shape are replaced
// by the correct container, and arrays grow with null padding up to a written
// index. The input may be aliased by the result; callers should treat root as
// consumed.
func SetValueAtPath(root interface{}, path jsonpath.Path, value interface{}) (interface{}, error) {
	if len(path) == 0 {
		return value, nil
	}
	for _, seg := range path {
		if seg.Index < -1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, seg.Index)
		}
	}
	return setValue(root, path, value), nil
}

func setValue(current interface{}, path jsonpath.Path, value interface{}) interface{} {
	seg := path[0]

	if seg.IsIndex() {
		arr, ok := current.([]interface{})
		if !ok {
			arr = []interface{}{}
		}
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		if len(path) == 1 {
			arr[seg.Index] = value
		} else {
			arr[seg.Index] = setValue(arr[seg.Index], path[1:], value)
		}
		return arr
	}

	obj, ok := current.(map[string]interface{})
	if !ok {
		obj = map[string]interface{}{}
	}
	if len(path) == 1 {
		obj[seg.Key] = value
	} else {
		obj[seg.Key] = setValue(obj[seg.Key], path[1:], value)
	}
	return obj
}

// DeleteValueAtPath returns root with the value at path removed. Deleting an
// array element splices it out; deleting an object key removes the key.
// An empty path resets the document to an empty object. A path that does not
// exist returns ErrPathNotFound.
func DeleteValueAtPath(root interface{}, path jsonpath.Path) (interface{}, error) {
	if len(path) == 0 {
		return map[string]interface{}{}, nil
	}
	return deleteValue(root, path)
}

func deleteValue(current interface{}, path jsonpath.Path) (interface{}, error) {
	seg := path[0]

	if seg.IsIndex() {
		arr, ok := current.([]interface{})
		if !ok || seg.Index < 0 || seg.Index >= len(arr) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path.String())
		}
		if len(path) == 1 {
			return append(arr[:seg.Index], arr[seg.Index+1:]...), nil
		}
		child, err := deleteValue(arr[seg.Index], path[1:])
		if err != nil {
			return nil, err
		}
		arr[seg.Index] = child
		return arr, nil
	}

	obj, ok := current.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path.String())
	}
	child, exists := obj[seg.Key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path.String())
	}
	if len(path) == 1 {
		delete(obj, seg.Key)
		return obj, nil
	}
	next, err := deleteValue(child, path[1:])
	if err != nil {
		return nil, err
	}
	obj[seg.Key] = next
	return obj, nil
}
