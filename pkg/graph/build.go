package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// ErrInvalidDocument is returned when the document text is not valid JSON.
var ErrInvalidDocument = errors.New("document is not valid JSON")

// Build parses document text and constructs its graph. Nodes are numbered in
// depth-first document order starting at "1", matching the order keys appear
// in the source text.
func Build(text string) (*Graph, error) {
	if !gjson.Valid(text) {
		return nil, ErrInvalidDocument
	}
	b := &builder{g: newGraph()}
	b.addValue(gjson.Parse(text), nil, "$", "", "")
	return b.g, nil
}

type builder struct {
	g      *Graph
	nextID int
}

func (b *builder) newNode(label string, kind NodeKind, path jsonpath.Path, parentID string) *Node {
	b.nextID++
	n := &Node{
		ID:       strconv.Itoa(b.nextID),
		Label:    label,
		Kind:     kind,
		Path:     path,
		parentID: parentID,
	}
	b.g.nodes = append(b.g.nodes, n)
	b.g.byID[n.ID] = n
	if len(path) > b.g.maxDepth {
		b.g.maxDepth = len(path)
	}
	return n
}

func (b *builder) link(from, to, label string) {
	if from == "" {
		return
	}
	b.g.edges = append(b.g.edges, &Edge{
		ID:    fmt.Sprintf("e%s-%s", from, to),
		From:  from,
		To:    to,
		Label: label,
	})
}

// addValue creates the node for a value and recurses into its containers.
func (b *builder) addValue(r gjson.Result, path jsonpath.Path, label, parentID, edgeLabel string) {
	switch {
	case r.IsObject():
		b.addObject(r, path, label, parentID, edgeLabel)
	case r.IsArray():
		b.addArray(r, path, label, parentID, edgeLabel)
	default:
		node := b.newNode(label, KindValue, path, parentID)
		node.Rows = []Row{{Raw: r.Raw, Kind: scalarKind(r)}}
		b.link(parentID, node.ID, edgeLabel)
	}
}

func (b *builder) addObject(r gjson.Result, path jsonpath.Path, label, parentID, edgeLabel string) {
	node := b.newNode(label, KindObject, path, parentID)
	b.link(parentID, node.ID, edgeLabel)

	type pendingChild struct {
		key   string
		value gjson.Result
	}
	var pending []pendingChild

	r.ForEach(func(key, value gjson.Result) bool {
		row := Row{Key: key.String(), HasKey: true}
		switch {
		case value.IsObject():
			row.Kind = RowObject
			row.ChildCount = countChildren(value)
			pending = append(pending, pendingChild{key: row.Key, value: value})
		case value.IsArray():
			row.Kind = RowArray
			row.ChildCount = countChildren(value)
			pending = append(pending, pendingChild{key: row.Key, value: value})
		default:
			row.Kind = scalarKind(value)
			row.Raw = value.Raw
		}
		node.Rows = append(node.Rows, row)
		return true
	})

	for _, pc := range pending {
		b.addValue(pc.value, path.Child(jsonpath.Key(pc.key)), pc.key, node.ID, pc.key)
	}
}

func (b *builder) addArray(r gjson.Result, path jsonpath.Path, label, parentID, edgeLabel string) {
	node := b.newNode(label, KindArray, path, parentID)
	b.link(parentID, node.ID, edgeLabel)

	i := 0
	r.ForEach(func(_, value gjson.Result) bool {
		childPath := path.Child(jsonpath.Index(i))
		idxLabel := "[" + strconv.Itoa(i) + "]"
		b.addValue(value, childPath, idxLabel, node.ID, strconv.Itoa(i))
		i++
		return true
	})
}

func scalarKind(r gjson.Result) RowKind {
	switch r.Type {
	case gjson.String:
		return RowString
	case gjson.Number:
		return RowNumber
	case gjson.True, gjson.False:
		return RowBool
	default:
		return RowNull
	}
}

func countChildren(r gjson.Result) int {
	n := 0
	r.ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}
