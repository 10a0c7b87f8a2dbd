package tui

import (
	"fmt"

	"github.com/dshills/jsongraph/pkg/graph"
)

// Position represents a logical coordinate on the canvas
type Position struct {
	X int
	Y int
}

// Size represents the dimensions of a rectangular area
type Size struct {
	Width  int
	Height int
}

// BoundingBox represents a rectangular area on the canvas
type BoundingBox struct {
	TopLeft Position
	Size    Size
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.TopLeft.X &&
		pos.X < bb.TopLeft.X+bb.Size.Width &&
		pos.Y >= bb.TopLeft.Y &&
		pos.Y < bb.TopLeft.Y+bb.Size.Height
}

// Center returns the center position of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: bb.TopLeft.X + bb.Size.Width/2,
		Y: bb.TopLeft.Y + bb.Size.Height/2,
	}
}

// ScalePosition scales a position by a zoom factor
func ScalePosition(pos Position, zoomFactor float64) Position {
	return Position{
		X: int(float64(pos.X) * zoomFactor),
		Y: int(float64(pos.Y) * zoomFactor),
	}
}

// UnscalePosition reverses a zoom transformation on a position
func UnscalePosition(pos Position, zoomFactor float64) Position {
	if zoomFactor == 0 {
		return pos
	}
	return Position{
		X: int(float64(pos.X) / zoomFactor),
		Y: int(float64(pos.Y) / zoomFactor),
	}
}

// LogicalToTerminal converts logical coordinates to terminal coordinates.
// Applies both viewport translation and zoom scaling.
func LogicalToTerminal(logical Position, viewportX, viewportY int, zoomFactor float64) Position {
	translated := Position{X: logical.X - viewportX, Y: logical.Y - viewportY}
	return ScalePosition(translated, zoomFactor)
}

// TerminalToLogical converts terminal coordinates to logical coordinates.
// Reverses zoom scaling and viewport translation.
func TerminalToLogical(terminal Position, viewportX, viewportY int, zoomFactor float64) Position {
	unscaled := UnscalePosition(terminal, zoomFactor)
	return Position{X: unscaled.X + viewportX, Y: unscaled.Y + viewportY}
}

// Node box sizing limits, in characters
const (
	minNodeWidth = 16
	maxNodeWidth = 44
	maxNodeRows  = 6
)

// canvasNode wraps a graph node with rendering state
type canvasNode struct {
	// node is the underlying document node (immutable from TUI perspective)
	node *graph.Node
	// position is the logical coordinates (X, Y)
	position Position
	// width is the rendered width in characters
	width int
	// height is the rendered height in lines
	height int
	// selected indicates visual selection state
	selected bool
	// highlighted marks the node as a search or filter match
	highlighted bool
}

func (cn *canvasNode) bounds() BoundingBox {
	return BoundingBox{
		TopLeft: cn.position,
		Size:    Size{Width: cn.width, Height: cn.height},
	}
}

// Canvas manages the visual document graph with node positioning,
// viewport, and selection.
type Canvas struct {
	// Width is the terminal width in logical units
	Width int
	// Height is the terminal height in logical units
	Height int
	// ViewportX is the viewport offset X in logical coordinates
	ViewportX int
	// ViewportY is the viewport offset Y in logical coordinates
	ViewportY int
	// ZoomLevel is the zoom factor (0.5 to 2.0)
	ZoomLevel float64

	// graph is the document graph currently displayed
	graph *graph.Graph
	// nodes maps node IDs to canvasNode instances
	nodes map[string]*canvasNode
	// order holds node IDs in document order for cyclic selection
	order []string
	// edges contains all canvas edges with routing state
	edges []*canvasEdge
	// selectedID is the currently selected node ID
	selectedID string
}

// NewCanvas creates a canvas with the given dimensions in logical units
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:     width,
		Height:    height,
		ZoomLevel: 1.0,
		nodes:     make(map[string]*canvasNode),
	}
}

// SetGraph replaces the displayed graph, laying out all nodes and edges.
// Selection is preserved when the previously selected node ID still exists,
// otherwise it falls back to the root.
func (c *Canvas) SetGraph(g *graph.Graph) {
	prevSelected := c.selectedID

	c.graph = g
	c.nodes = make(map[string]*canvasNode, g.NodeCount())
	c.order = c.order[:0]
	c.edges = c.edges[:0]

	for _, n := range g.Nodes() {
		width, height := nodeBoxSize(n)
		c.nodes[n.ID] = &canvasNode{
			node:   n,
			width:  width,
			height: height,
		}
		c.order = append(c.order, n.ID)
	}
	for _, e := range g.Edges() {
		c.edges = append(c.edges, &canvasEdge{edge: e})
	}

	c.AutoLayout()

	if _, ok := c.nodes[prevSelected]; ok {
		_ = c.SelectNode(prevSelected)
	} else if root := g.Root(); root != nil {
		_ = c.SelectNode(root.ID)
	} else {
		c.selectedID = ""
	}
}

// Graph returns the displayed graph
func (c *Canvas) Graph() *graph.Graph {
	return c.graph
}

// NodeCount returns the number of nodes on the canvas
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// SelectNode sets the selected node.
// Returns error if node doesn't exist.
func (c *Canvas) SelectNode(nodeID string) error {
	if nodeID != "" {
		if _, exists := c.nodes[nodeID]; !exists {
			return fmt.Errorf("node not found: %s", nodeID)
		}
	}

	if c.selectedID != "" {
		if prev, exists := c.nodes[c.selectedID]; exists {
			prev.selected = false
		}
	}

	c.selectedID = nodeID
	if nodeID != "" {
		c.nodes[nodeID].selected = true
		c.EnsureVisible(nodeID)
	}

	return nil
}

// SelectedID returns the ID of the selected node, or "" when none
func (c *Canvas) SelectedID() string {
	return c.selectedID
}

// SelectedNode returns the selected document node, or nil when none
func (c *Canvas) SelectedNode() *graph.Node {
	cn, ok := c.nodes[c.selectedID]
	if !ok {
		return nil
	}
	return cn.node
}

// SelectNext moves the selection forward in document order, wrapping around
func (c *Canvas) SelectNext() {
	c.selectByOffset(1)
}

// SelectPrevious moves the selection backward in document order, wrapping around
func (c *Canvas) SelectPrevious() {
	c.selectByOffset(-1)
}

func (c *Canvas) selectByOffset(delta int) {
	if len(c.order) == 0 {
		return
	}
	idx := 0
	for i, id := range c.order {
		if id == c.selectedID {
			idx = i
			break
		}
	}
	next := (idx + delta + len(c.order)) % len(c.order)
	_ = c.SelectNode(c.order[next])
}

// SelectParent moves the selection to the parent node, if any
func (c *Canvas) SelectParent() {
	if c.graph == nil || c.selectedID == "" {
		return
	}
	if parent, ok := c.graph.Parent(c.selectedID); ok {
		_ = c.SelectNode(parent.ID)
	}
}

// SelectFirstChild moves the selection to the first child node, if any
func (c *Canvas) SelectFirstChild() {
	if c.graph == nil || c.selectedID == "" {
		return
	}
	children := c.graph.Children(c.selectedID)
	if len(children) > 0 {
		_ = c.SelectNode(children[0].ID)
	}
}

// SelectSibling moves the selection among the children of the same parent.
// delta is +1 for the next sibling and -1 for the previous one; the ends
// do not wrap.
func (c *Canvas) SelectSibling(delta int) {
	if c.graph == nil || c.selectedID == "" {
		return
	}
	parent, ok := c.graph.Parent(c.selectedID)
	if !ok {
		return
	}
	siblings := c.graph.Children(parent.ID)
	for i, sib := range siblings {
		if sib.ID == c.selectedID {
			next := i + delta
			if next >= 0 && next < len(siblings) {
				_ = c.SelectNode(siblings[next].ID)
			}
			return
		}
	}
}

// SelectRoot moves the selection to the document root
func (c *Canvas) SelectRoot() {
	if c.graph == nil {
		return
	}
	if root := c.graph.Root(); root != nil {
		_ = c.SelectNode(root.ID)
	}
}

// SelectLast moves the selection to the last node in document order
func (c *Canvas) SelectLast() {
	if len(c.order) > 0 {
		_ = c.SelectNode(c.order[len(c.order)-1])
	}
}

// SetHighlights marks the given node IDs as search or filter matches,
// clearing any previous highlights
func (c *Canvas) SetHighlights(ids []string) {
	for _, cn := range c.nodes {
		cn.highlighted = false
	}
	for _, id := range ids {
		if cn, ok := c.nodes[id]; ok {
			cn.highlighted = true
		}
	}
}

// ClearHighlights removes all search and filter highlights
func (c *Canvas) ClearHighlights() {
	c.SetHighlights(nil)
}

// NodeAtPosition returns the node ID at the given terminal coordinates.
// Returns "" if no node at position.
func (c *Canvas) NodeAtPosition(termX, termY int) string {
	logical := TerminalToLogical(
		Position{X: termX, Y: termY},
		c.ViewportX,
		c.ViewportY,
		c.ZoomLevel,
	)

	for nodeID, cn := range c.nodes {
		if cn.bounds().Contains(logical) {
			return nodeID
		}
	}

	return ""
}

// EnsureVisible pans the viewport the minimal distance needed to bring the
// node fully into view.
func (c *Canvas) EnsureVisible(nodeID string) {
	cn, ok := c.nodes[nodeID]
	if !ok || c.Width <= 0 || c.Height <= 0 {
		return
	}

	// Visible logical extent shrinks as zoom grows
	visW := int(float64(c.Width) / c.ZoomLevel)
	visH := int(float64(c.Height) / c.ZoomLevel)

	if cn.position.X < c.ViewportX {
		c.ViewportX = cn.position.X
	} else if right := cn.position.X + cn.width; right > c.ViewportX+visW {
		c.ViewportX = right - visW
	}
	if cn.position.Y < c.ViewportY {
		c.ViewportY = cn.position.Y
	} else if bottom := cn.position.Y + cn.height; bottom > c.ViewportY+visH {
		c.ViewportY = bottom - visH
	}

	if c.ViewportX < 0 {
		c.ViewportX = 0
	}
	if c.ViewportY < 0 {
		c.ViewportY = 0
	}
}

// nodeBoxSize computes the rendered dimensions for a node from its label and
// row content. Width tracks the longest visible line; height shows up to
// maxNodeRows rows plus borders.
func nodeBoxSize(n *graph.Node) (width int, height int) {
	width = len(n.Label) + 4
	for i, row := range n.Rows {
		if i >= maxNodeRows {
			break
		}
		if w := len(rowText(row)) + 4; w > width {
			width = w
		}
	}

	if width < minNodeWidth {
		width = minNodeWidth
	}
	if width > maxNodeWidth {
		width = maxNodeWidth
	}

	shown := len(n.Rows)
	if shown > maxNodeRows {
		shown = maxNodeRows
	}
	if shown == 0 {
		shown = 1 // keep an empty content line so the box reads as a box
	}
	height = shown + 2

	return width, height
}
