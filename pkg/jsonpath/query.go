package jsonpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Query kinds beyond plain addressing. Plain key and index steps reuse the
// Segment representation; the extended forms below only exist at query time.
type stepKind int

const (
	stepKey stepKind = iota
	stepIndex
	stepWildcard
	stepSlice
	stepFilter
	stepRecursive
)

// queryStep is one compiled step of a JSONPath query expression.
type queryStep struct {
	kind  stepKind
	key   string // stepKey, stepRecursive
	index int    // stepIndex; may be negative

	// slice bounds; meaningful only when the corresponding has* flag is set
	sliceStart, sliceEnd int
	hasStart, hasEnd     bool

	// filter comparison
	filterField string
	filterOp    string // "", ==, !=, >, >=, <, <=; "" means existence check
	filterValue string // raw literal text
}

// Query evaluates a JSONPath expression against a JSON document and returns
// the first match. ErrPathNotFound is returned when nothing matches.
//
// Supported syntax: dotted and bracketed keys, array indices (negative
// indices count from the end), wildcards (* and [*]), slices ([1:3], [:2],
// [-2:]), recursive descent (..key), and comparison filters
// ([?(@.price > 10)], [?(@.name == "x")], [?(@.deleted)]).
func Query(doc, expr string) (gjson.Result, error) {
	matches, err := QueryAll(doc, expr)
	if err != nil {
		return gjson.Result{}, err
	}
	if len(matches) == 0 {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrPathNotFound, expr)
	}
	return matches[0], nil
}

// QueryAll evaluates a JSONPath expression and returns every match in
// document order. A query that matches nothing returns an empty slice and no
// error; malformed documents and expressions return an error.
func QueryAll(doc, expr string) ([]gjson.Result, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("query %s: document is not valid JSON", expr)
	}
	steps, err := compileQuery(expr)
	if err != nil {
		return nil, err
	}

	current := []gjson.Result{gjson.Parse(doc)}
	for _, st := range steps {
		next := make([]gjson.Result, 0, len(current))
		for _, r := range current {
			next = append(next, applyStep(r, st)...)
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current, nil
}

// Value evaluates a JSONPath expression and returns the first match as a Go
// value (map[string]interface{}, []interface{}, float64, string, bool, or
// nil), mirroring encoding/json decoding.
func Value(doc, expr string) (interface{}, error) {
	r, err := Query(doc, expr)
	if err != nil {
		return nil, err
	}
	return r.Value(), nil
}

// compileQuery parses a JSONPath expression into evaluation steps.
func compileQuery(expr string) ([]queryStep, error) {
	s := strings.TrimSpace(expr)
	if s == "" || s == "$" {
		return nil, nil
	}
	if s[0] == '$' {
		s = s[1:]
	}

	var steps []queryStep
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], ".."):
			i += 2
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			key := s[start:i]
			if key == "" {
				return nil, fmt.Errorf("%w: recursive descent needs a key in %q", ErrInvalidPath, expr)
			}
			steps = append(steps, queryStep{kind: stepRecursive, key: key})
		case s[i] == '.':
			i++
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			key := s[start:i]
			if key == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyKey, expr)
			}
			if key == "*" {
				steps = append(steps, queryStep{kind: stepWildcard})
			} else {
				steps = append(steps, queryStep{kind: stepKey, key: key})
			}
		case s[i] == '[':
			st, next, err := compileBracket(s, i)
			if err != nil {
				return nil, err
			}
			steps = append(steps, st)
			i = next
		default:
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			key := s[start:i]
			if key == "*" {
				steps = append(steps, queryStep{kind: stepWildcard})
			} else {
				steps = append(steps, queryStep{kind: stepKey, key: key})
			}
		}
	}
	return steps, nil
}

// compileBracket parses one bracket group of query syntax starting at
// s[open] == '[' and returns the step plus the position past the bracket.
func compileBracket(s string, open int) (queryStep, int, error) {
	i := open + 1
	if i >= len(s) {
		return queryStep{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
	}

	// Quoted key.
	if s[i] == '"' || s[i] == '\'' {
		key, next, err := parseQuoted(s, i)
		if err != nil {
			return queryStep{}, 0, err
		}
		if next >= len(s) || s[next] != ']' {
			return queryStep{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
		}
		return queryStep{kind: stepKey, key: key}, next + 1, nil
	}

	// Filter: [?(@.field op literal)] with the comparison optional.
	if s[i] == '?' {
		end := strings.Index(s[i:], ")]")
		if end < 0 {
			return queryStep{}, 0, fmt.Errorf("%w: filter in %q", ErrUnterminatedBracket, s)
		}
		body := s[i : i+end+1] // "?(...)"
		st, err := compileFilter(body)
		if err != nil {
			return queryStep{}, 0, err
		}
		return st, i + end + 2, nil
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return queryStep{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
	}
	content := strings.TrimSpace(s[i : i+end])
	next := i + end + 1

	switch {
	case content == "":
		return queryStep{}, 0, fmt.Errorf("%w: empty brackets in %q", ErrInvalidPath, s)
	case content == "*":
		return queryStep{kind: stepWildcard}, next, nil
	case strings.Contains(content, ":"):
		st, err := compileSlice(content)
		if err != nil {
			return queryStep{}, 0, err
		}
		return st, next, nil
	default:
		n, err := strconv.Atoi(content)
		if err != nil {
			return queryStep{}, 0, fmt.Errorf("%w: bracket content %q", ErrInvalidPath, content)
		}
		return queryStep{kind: stepIndex, index: n}, next, nil
	}
}

// compileSlice parses "start:end" with either side optional.
func compileSlice(content string) (queryStep, error) {
	parts := strings.SplitN(content, ":", 2)
	st := queryStep{kind: stepSlice}
	if t := strings.TrimSpace(parts[0]); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			return queryStep{}, fmt.Errorf("%w: slice bound %q", ErrInvalidPath, t)
		}
		st.sliceStart, st.hasStart = n, true
	}
	if t := strings.TrimSpace(parts[1]); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			return queryStep{}, fmt.Errorf("%w: slice bound %q", ErrInvalidPath, t)
		}
		st.sliceEnd, st.hasEnd = n, true
	}
	return st, nil
}

// compileFilter parses "?(@.field op literal)" or "?(@.field)".
func compileFilter(body string) (queryStep, error) {
	inner := strings.TrimPrefix(body, "?")
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	inner = strings.TrimSpace(inner)
	if !strings.HasPrefix(inner, "@.") {
		return queryStep{}, fmt.Errorf("%w: filter must reference @.field, got %q", ErrInvalidPath, body)
	}
	inner = inner[2:]

	for _, op := range []string{"==", "!=", ">=", "<=", ">", "<"} {
		if idx := strings.Index(inner, op); idx >= 0 {
			field := strings.TrimSpace(inner[:idx])
			val := strings.TrimSpace(inner[idx+len(op):])
			if field == "" || val == "" {
				return queryStep{}, fmt.Errorf("%w: filter %q", ErrInvalidPath, body)
			}
			val = strings.Trim(val, `"'`)
			return queryStep{kind: stepFilter, filterField: field, filterOp: op, filterValue: val}, nil
		}
	}

	// Existence check: [?(@.field)]
	field := strings.TrimSpace(inner)
	if field == "" {
		return queryStep{}, fmt.Errorf("%w: filter %q", ErrInvalidPath, body)
	}
	return queryStep{kind: stepFilter, filterField: field}, nil
}

// applyStep evaluates one step against one result, producing zero or more
// results.
func applyStep(r gjson.Result, st queryStep) []gjson.Result {
	switch st.kind {
	case stepKey:
		child := r.Get(escapeGJSONKey(st.key))
		if !child.Exists() {
			return nil
		}
		return []gjson.Result{child}

	case stepIndex:
		if !r.IsArray() {
			return nil
		}
		arr := r.Array()
		idx := st.index
		if idx < 0 {
			idx += len(arr)
		}
		if idx < 0 || idx >= len(arr) {
			return nil
		}
		return []gjson.Result{arr[idx]}

	case stepWildcard:
		var out []gjson.Result
		r.ForEach(func(_, value gjson.Result) bool {
			out = append(out, value)
			return true
		})
		return out

	case stepSlice:
		if !r.IsArray() {
			return nil
		}
		arr := r.Array()
		start, end := 0, len(arr)
		if st.hasStart {
			start = st.sliceStart
			if start < 0 {
				start += len(arr)
			}
		}
		if st.hasEnd {
			end = st.sliceEnd
			if end < 0 {
				end += len(arr)
			}
		}
		if start < 0 {
			start = 0
		}
		if end > len(arr) {
			end = len(arr)
		}
		if start >= end {
			return nil
		}
		return arr[start:end]

	case stepFilter:
		if !r.IsArray() {
			return nil
		}
		var out []gjson.Result
		for _, el := range r.Array() {
			if matchFilter(el, st) {
				out = append(out, el)
			}
		}
		return out

	case stepRecursive:
		var out []gjson.Result
		collectRecursive(r, st.key, &out)
		return out
	}
	return nil
}

// collectRecursive appends every value reachable under r whose object key
// equals key, in document order.
func collectRecursive(r gjson.Result, key string, out *[]gjson.Result) {
	if r.IsObject() {
		if child := r.Get(escapeGJSONKey(key)); child.Exists() {
			*out = append(*out, child)
		}
	}
	r.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			collectRecursive(value, key, out)
		}
		return true
	})
}

// matchFilter evaluates a comparison filter against one array element.
func matchFilter(el gjson.Result, st queryStep) bool {
	field := el.Get(escapeGJSONKey(st.filterField))
	if st.filterOp == "" {
		return field.Exists()
	}
	if !field.Exists() {
		return false
	}

	// Numeric comparison when both sides parse as numbers.
	if fv, err := strconv.ParseFloat(st.filterValue, 64); err == nil && field.Type == gjson.Number {
		switch st.filterOp {
		case "==":
			return field.Num == fv
		case "!=":
			return field.Num != fv
		case ">":
			return field.Num > fv
		case ">=":
			return field.Num >= fv
		case "<":
			return field.Num < fv
		case "<=":
			return field.Num <= fv
		}
		return false
	}

	switch st.filterValue {
	case "true", "false":
		want := st.filterValue == "true"
		got := field.Type == gjson.True
		if st.filterOp == "==" {
			return field.IsBool() && got == want
		}
		if st.filterOp == "!=" {
			return !field.IsBool() || got != want
		}
		return false
	case "null":
		isNull := field.Type == gjson.Null
		if st.filterOp == "==" {
			return isNull
		}
		if st.filterOp == "!=" {
			return !isNull
		}
		return false
	}

	// String comparison.
	switch st.filterOp {
	case "==":
		return field.Str == st.filterValue
	case "!=":
		return field.Str != st.filterValue
	case ">":
		return field.Str > st.filterValue
	case ">=":
		return field.Str >= st.filterValue
	case "<":
		return field.Str < st.filterValue
	case "<=":
		return field.Str <= st.filterValue
	}
	return false
}

// escapeGJSONKey escapes characters gjson treats as path syntax so literal
// keys containing dots or wildcards resolve correctly.
func escapeGJSONKey(key string) string {
	if !strings.ContainsAny(key, ".*?\\") {
		return key
	}
	var b strings.Builder
	for _, ch := range key {
		switch ch {
		case '.', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
