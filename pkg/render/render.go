// Package render exports document graphs as Graphviz artifacts. ToDOT
// produces the DOT text; RenderSVG and RenderPNG rasterize it with the
// embedded Graphviz engine, no system install required.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/dshills/jsongraph/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Horizontal lays the graph out left to right instead of top down.
	Horizontal bool
	// EdgeLabels annotates edges with the key or index they follow.
	EdgeLabels bool
}

// maxLabelRows caps how many rows appear inside one DOT node label.
const maxLabelRows = 4

// ToDOT converts a document graph to Graphviz DOT format.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Horizontal {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(n))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.EdgeLabels && e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *graph.Node) string {
	parts := []string{}
	if n.Label != "" {
		parts = append(parts, n.Label)
	}
	shown := n.Rows
	if len(shown) > maxLabelRows {
		shown = shown[:maxLabelRows]
	}
	for _, row := range shown {
		parts = append(parts, rowSummary(row))
	}
	if extra := len(n.Rows) - len(shown); extra > 0 {
		parts = append(parts, fmt.Sprintf("+%d more", extra))
	}
	return strings.Join(parts, "\n")
}

func rowSummary(row graph.Row) string {
	value := row.Raw
	switch row.Kind {
	case graph.RowObject:
		value = fmt.Sprintf("{%d}", row.ChildCount)
	case graph.RowArray:
		value = fmt.Sprintf("[%d]", row.ChildCount)
	}
	if runes := []rune(value); len(runes) > 40 {
		value = string(runes[:37]) + "..."
	}
	if !row.HasKey {
		return value
	}
	return row.Key + ": " + value
}

// RenderSVG renders DOT text to SVG.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders DOT text to PNG.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer func() { _ = g.Close() }()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
