// Package jsonpath provides typed paths into JSON documents.
//
// A path is a sequence of segments, each either an object key or an array
// index. Paths render as bracket expressions rooted at "$" (for example
// $["users"][0]["name"]) and can be parsed back from that form or from the
// dotted shorthand ($.users[0].name). The package also evaluates read-only
// JSONPath queries against a document using gjson, including wildcards,
// recursive descent, slices, negative indices, and comparison filters.
package jsonpath

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors returned by path construction, parsing, and queries.
var (
	// ErrInvalidPath indicates a malformed path expression or segment.
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnterminatedBracket indicates a bracket group without a closing bracket.
	ErrUnterminatedBracket = errors.New("unterminated bracket in path")
	// ErrEmptyKey indicates an object key segment with no characters.
	ErrEmptyKey = errors.New("empty key in path")
	// ErrPathNotFound indicates a query matched nothing in the document.
	ErrPathNotFound = errors.New("path not found")
)

// Segment is a single step in a path: an object key or an array index.
// Index is -1 for key segments.
type Segment struct {
	Key   string
	Index int
}

// Key creates an object-key segment.
func Key(k string) Segment {
	return Segment{Key: k, Index: -1}
}

// Index creates an array-index segment. Indices are zero-based.
func Index(i int) Segment {
	return Segment{Index: i}
}

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool {
	return s.Index >= 0
}

// String renders the segment as a single bracket group: [N] for an index,
// ["key"] for a key.
func (s Segment) String() string {
	if s.IsIndex() {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "[" + strconv.Quote(s.Key) + "]"
}

// Path is an ordered sequence of segments addressing one location in a
// document. A nil or empty path addresses the document root.
type Path []Segment

// String renders the path as a bracket expression. An empty path renders as
// "$"; otherwise "$" is followed by one bracket group per segment:
//
//	Path{Key("users"), Index(0)}.String() == `$["users"][0]`
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	b.WriteByte('$')
	for _, seg := range p {
		b.WriteString(seg.String())
	}
	return b.String()
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Child returns a new path extending p by one segment. The receiver is not
// modified; the result does not alias the receiver's backing array.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}
