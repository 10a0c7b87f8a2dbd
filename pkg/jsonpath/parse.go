package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a plain path expression into a Path. It accepts the bracket
// form produced by Path.String ($["users"][0]) and the dotted shorthand
// ($.users[0].name); the leading "$" is optional. Bracket keys may use double
// or single quotes. Unquoted bracket contents must be integers and become
// index segments; dotted segments are always keys, so numeric object keys and
// array indices are distinguished by quoting: ["0"] is a key, [0] is an index.
//
// Parse handles addressing only. Query syntax such as wildcards, slices,
// recursive descent, and filters is rejected with ErrInvalidPath; use Query
// for those expressions.
func Parse(expr string) (Path, error) {
	s := strings.TrimSpace(expr)
	if s == "" || s == "$" {
		return nil, nil
	}
	if s[0] == '$' {
		s = s[1:]
	}

	var path Path
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			if i < len(s) && s[i] == '.' {
				return nil, fmt.Errorf("%w: recursive descent %q is query syntax", ErrInvalidPath, expr)
			}
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			key := s[start:i]
			if key == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyKey, expr)
			}
			path = append(path, Key(key))
		case '[':
			seg, next, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
			i = next
		default:
			// Bare leading key before any separator.
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			path = append(path, Key(s[start:i]))
		}
	}
	return path, nil
}

// MustParse is Parse that panics on error. Intended for fixed expressions in
// tests and examples.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// parseBracket consumes one bracket group starting at s[open] == '[' and
// returns the segment plus the position just past the closing bracket.
func parseBracket(s string, open int) (Segment, int, error) {
	i := open + 1
	if i >= len(s) {
		return Segment{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
	}

	if s[i] == '"' || s[i] == '\'' {
		key, next, err := parseQuoted(s, i)
		if err != nil {
			return Segment{}, 0, err
		}
		if next >= len(s) || s[next] != ']' {
			return Segment{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
		}
		return Key(key), next + 1, nil
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return Segment{}, 0, fmt.Errorf("%w: %q", ErrUnterminatedBracket, s)
	}
	content := s[i : i+end]
	if content == "" {
		return Segment{}, 0, fmt.Errorf("%w: empty brackets in %q", ErrInvalidPath, s)
	}
	n, err := strconv.Atoi(content)
	if err != nil {
		return Segment{}, 0, fmt.Errorf("%w: bracket content %q must be quoted or numeric", ErrInvalidPath, content)
	}
	if n < 0 {
		return Segment{}, 0, fmt.Errorf("%w: negative index %d (negative indices are query syntax)", ErrInvalidPath, n)
	}
	return Segment{Index: n}, i + end + 1, nil
}

// parseQuoted consumes a quoted string starting at s[start] (a quote rune)
// and returns the unescaped key plus the position just past the closing
// quote. Supported escapes: \\ \" \' \n \t \r.
func parseQuoted(s string, start int) (string, int, error) {
	quote := s[start]
	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if c == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, fmt.Errorf("%w: unterminated quote in %q", ErrUnterminatedBracket, s)
}
