package graph

import (
	"encoding/json"
	"strings"
)

// ContentText renders the node's content for the editor pane.
//
// A node with no rows renders as "{}". A node whose single row has no key, a
// scalar leaf, renders as that row's raw JSON literal. Any other node renders
// as an object of its non-container rows in row order, stringified with
// two-space indentation; "{}" if nothing remains or a key fails to encode.
func (n *Node) ContentText() string {
	if n == nil || len(n.Rows) == 0 {
		return "{}"
	}
	if len(n.Rows) == 1 && !n.Rows[0].HasKey {
		return n.Rows[0].Raw
	}

	var b strings.Builder
	b.WriteString("{")
	wrote := 0
	for _, row := range n.Rows {
		if !row.HasKey || row.Kind.IsContainer() {
			continue
		}
		key, err := json.Marshal(row.Key)
		if err != nil {
			return "{}"
		}
		if wrote > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  ")
		b.Write(key)
		b.WriteString(": ")
		b.WriteString(row.Raw)
		wrote++
	}
	if wrote == 0 {
		return "{}"
	}
	b.WriteString("\n}")
	return b.String()
}
