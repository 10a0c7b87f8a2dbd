// Package graph models a JSON document as a directed graph of nodes and
// edges suitable for terminal rendering. Objects and arrays become nodes,
// scalar object properties become rows inside their owning node, and array
// elements hang off the array node as children. Every node carries the typed
// path back to its value in the document, so an edit made on a node can be
// written through the document store.
package graph

import (
	"strings"

	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// NodeKind classifies what a node represents in the document.
type NodeKind string

// Node kinds.
const (
	KindObject NodeKind = "object"
	KindArray  NodeKind = "array"
	KindValue  NodeKind = "value"
)

// RowKind classifies the value a row displays.
type RowKind string

// Row kinds. Object and array rows mark properties whose values live in a
// child node rather than in the row itself.
const (
	RowString RowKind = "string"
	RowNumber RowKind = "number"
	RowBool   RowKind = "boolean"
	RowNull   RowKind = "null"
	RowObject RowKind = "object"
	RowArray  RowKind = "array"
)

// IsContainer reports whether the row stands in for an object or array value
// that has its own node.
func (k RowKind) IsContainer() bool {
	return k == RowObject || k == RowArray
}

// Row is one displayed line inside a node. Object properties have HasKey set;
// the single row of a scalar leaf node does not, letting an empty-string
// property key remain distinguishable from no key at all.
type Row struct {
	Key        string
	HasKey     bool
	Raw        string // raw JSON literal for non-container rows
	Kind       RowKind
	ChildCount int // direct children, for container rows
}

// Node is one box on the canvas.
type Node struct {
	ID       string
	Label    string
	Kind     NodeKind
	Rows     []Row
	Path     jsonpath.Path
	parentID string
}

// PathText renders the node's location as a bracket-path expression.
func (n *Node) PathText() string {
	return n.Path.String()
}

// Edge links a parent node to a child node, labeled with the object key or
// array index that connects them.
type Edge struct {
	ID    string
	From  string
	To    string
	Label string
}

// Graph is the full node/edge set for one document. Nodes appear in build
// order, which follows document order.
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	byID     map[string]*Node
	maxDepth int
}

func newGraph() *Graph {
	return &Graph{byID: make(map[string]*Node)}
}

// Nodes returns all nodes in document order. The slice is shared; callers
// must not modify it.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// NodeByID looks up a node by its identifier.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Root returns the node for the document's top-level value, or nil for an
// empty graph.
func (g *Graph) Root() *Node {
	if len(g.nodes) == 0 {
		return nil
	}
	return g.nodes[0]
}

// Parent returns the node the given node hangs off, if any.
func (g *Graph) Parent(id string) (*Node, bool) {
	n, ok := g.byID[id]
	if !ok || n.parentID == "" {
		return nil, false
	}
	return g.NodeByID(n.parentID)
}

// Children returns the direct children of a node in document order.
func (g *Graph) Children(id string) []*Node {
	var out []*Node
	for _, e := range g.edges {
		if e.From == id {
			if child, ok := g.byID[e.To]; ok {
				out = append(out, child)
			}
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// MaxDepth returns the deepest path length in the graph. The root sits at
// depth zero.
func (g *Graph) MaxDepth() int {
	return g.maxDepth
}

// Search returns the nodes whose label, row keys, or row values contain the
// query, matched case-insensitively, in document order. An empty query
// matches nothing.
func (g *Graph) Search(query string) []*Node {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []*Node
	for _, n := range g.nodes {
		if nodeMatches(n, q) {
			out = append(out, n)
		}
	}
	return out
}

func nodeMatches(n *Node, q string) bool {
	if strings.Contains(strings.ToLower(n.Label), q) {
		return true
	}
	for _, row := range n.Rows {
		if row.HasKey && strings.Contains(strings.ToLower(row.Key), q) {
			return true
		}
		if !row.Kind.IsContainer() && strings.Contains(strings.ToLower(row.Raw), q) {
			return true
		}
	}
	return false
}
