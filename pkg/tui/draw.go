package tui

import (
	"fmt"
	"strings"

	"github.com/dshills/goterm"

	"github.com/dshills/jsongraph/pkg/graph"
)

// Surface is the drawing target for all TUI rendering. *goterm.Screen
// implements it; tests substitute an in-memory fake.
type Surface interface {
	Size() (width, height int)
	Clear()
	Show() error
	SetCell(x, y int, cell goterm.Cell)
	GetCell(x, y int) goterm.Cell
	DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style)
}

// Rect represents a rectangular region on screen
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Color theme
var (
	colorText     = goterm.ColorRGB(220, 220, 220)
	colorDim      = goterm.ColorRGB(150, 150, 150)
	colorHelp     = goterm.ColorRGB(100, 100, 100)
	colorAccent   = goterm.ColorRGB(100, 200, 255)
	colorBlack    = goterm.ColorRGB(0, 0, 0)
	colorStatusBg = goterm.ColorRGB(40, 40, 40)
	colorError    = goterm.ColorRGB(255, 100, 100)
	colorWarn     = goterm.ColorRGB(255, 200, 100)
	colorDefault  = goterm.ColorDefault()
)

// Box drawing characters
const (
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
	boxHorizontal  = '─'
	boxVertical    = '│'
	arrowDown      = '▼'
	arrowUp        = '▲'
)

// putCell draws one cell if it falls inside the clip region
func putCell(s Surface, clip Rect, x, y int, cell goterm.Cell) {
	if clip.contains(x, y) {
		s.SetCell(x, y, cell)
	}
}

// putText draws a string one rune per cell, clipped to the region
func putText(s Surface, clip Rect, x, y int, text string, fg, bg goterm.Color, style goterm.Style) {
	col := x
	for _, ch := range text {
		putCell(s, clip, col, y, goterm.NewCell(ch, fg, bg, style))
		col++
	}
}

// truncate shortens text to fit width, appending an ellipsis when cut
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// wrapText wraps text to fit within the given width, breaking on words
func wrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}

	return lines
}

// rowText renders one node row as a single display line
func rowText(row graph.Row) string {
	var value string
	switch row.Kind {
	case graph.RowObject:
		value = fmt.Sprintf("{%d keys}", row.ChildCount)
	case graph.RowArray:
		value = fmt.Sprintf("[%d items]", row.ChildCount)
	default:
		value = row.Raw
	}

	if row.HasKey {
		return row.Key + ": " + value
	}
	return value
}

// drawFrame draws a rectangular border with an optional title embedded in
// the top edge
func drawFrame(s Surface, clip Rect, r Rect, title string, fg, bg goterm.Color, titleStyle goterm.Style) {
	putCell(s, clip, r.X, r.Y, goterm.NewCell(boxTopLeft, fg, bg, goterm.StyleNone))
	putCell(s, clip, r.X+r.Width-1, r.Y, goterm.NewCell(boxTopRight, fg, bg, goterm.StyleNone))
	putCell(s, clip, r.X, r.Y+r.Height-1, goterm.NewCell(boxBottomLeft, fg, bg, goterm.StyleNone))
	putCell(s, clip, r.X+r.Width-1, r.Y+r.Height-1, goterm.NewCell(boxBottomRight, fg, bg, goterm.StyleNone))

	for i := 1; i < r.Width-1; i++ {
		putCell(s, clip, r.X+i, r.Y, goterm.NewCell(boxHorizontal, fg, bg, goterm.StyleNone))
		putCell(s, clip, r.X+i, r.Y+r.Height-1, goterm.NewCell(boxHorizontal, fg, bg, goterm.StyleNone))
	}
	for i := 1; i < r.Height-1; i++ {
		putCell(s, clip, r.X, r.Y+i, goterm.NewCell(boxVertical, fg, bg, goterm.StyleNone))
		putCell(s, clip, r.X+r.Width-1, r.Y+i, goterm.NewCell(boxVertical, fg, bg, goterm.StyleNone))
	}

	if title != "" && r.Width > 6 {
		label := " " + truncate(title, r.Width-6) + " "
		putText(s, clip, r.X+2, r.Y, label, fg, bg, titleStyle)
	}
}

// fillRect fills a rectangular region with spaces
func fillRect(s Surface, clip Rect, r Rect, fg, bg goterm.Color) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			putCell(s, clip, x, y, goterm.NewCell(' ', fg, bg, goterm.StyleNone))
		}
	}
}

// drawCanvas renders the document graph into the given screen region.
// Edges draw first so node boxes sit on top of their connectors.
func drawCanvas(s Surface, c *Canvas, area Rect) {
	for _, e := range c.edges {
		drawEdge(s, c, area, e)
	}
	for _, nodeID := range c.order {
		drawNode(s, c, area, c.nodes[nodeID])
	}
}

func drawNode(s Surface, c *Canvas, area Rect, cn *canvasNode) {
	term := LogicalToTerminal(cn.position, c.ViewportX, c.ViewportY, c.ZoomLevel)
	r := Rect{X: area.X + term.X, Y: area.Y + term.Y, Width: cn.width, Height: cn.height}

	// Skip nodes entirely outside the visible region
	if r.X+r.Width <= area.X || r.X >= area.X+area.Width ||
		r.Y+r.Height <= area.Y || r.Y >= area.Y+area.Height {
		return
	}

	fg := colorText
	bg := colorDefault
	titleStyle := goterm.StyleBold
	if cn.highlighted {
		fg = colorWarn
	}
	if cn.selected {
		fg = colorBlack
		bg = colorAccent
	}

	fillRect(s, area, Rect{X: r.X + 1, Y: r.Y + 1, Width: r.Width - 2, Height: r.Height - 2}, fg, bg)
	drawFrame(s, area, r, cn.node.Label, fg, bg, titleStyle)

	rows := cn.node.Rows
	interior := r.Height - 2
	rowFg := colorDim
	if cn.selected {
		rowFg = colorBlack
	}

	if len(rows) == 0 {
		putText(s, area, r.X+2, r.Y+1, "(empty)", rowFg, bg, goterm.StyleNone)
		return
	}

	for i := 0; i < interior && i < len(rows); i++ {
		line := rowText(rows[i])
		if i == interior-1 && len(rows) > interior {
			line = fmt.Sprintf("… %d more", len(rows)-interior+1)
		}
		putText(s, area, r.X+2, r.Y+1+i, truncate(line, r.Width-4), rowFg, bg, goterm.StyleNone)
	}
}

func drawEdge(s Surface, c *Canvas, area Rect, e *canvasEdge) {
	points := e.routingPoints
	if len(points) < 2 {
		return
	}

	for i := 0; i < len(points)-1; i++ {
		p1 := LogicalToTerminal(points[i], c.ViewportX, c.ViewportY, c.ZoomLevel)
		p2 := LogicalToTerminal(points[i+1], c.ViewportX, c.ViewportY, c.ZoomLevel)
		drawSegment(s, area, p1, p2)
	}

	// Arrowhead at the target end, pointing along the final segment
	last := LogicalToTerminal(points[len(points)-1], c.ViewportX, c.ViewportY, c.ZoomLevel)
	prev := LogicalToTerminal(points[len(points)-2], c.ViewportX, c.ViewportY, c.ZoomLevel)
	arrow := arrowDown
	if last.Y < prev.Y {
		arrow = arrowUp
	}
	putCell(s, area, area.X+last.X, area.Y+last.Y, goterm.NewCell(arrow, colorDim, colorDefault, goterm.StyleNone))
}

func drawSegment(s Surface, area Rect, p1, p2 Position) {
	if p1.X == p2.X {
		y1, y2 := p1.Y, p2.Y
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		for y := y1; y <= y2; y++ {
			putCell(s, area, area.X+p1.X, area.Y+y, goterm.NewCell(boxVertical, colorDim, colorDefault, goterm.StyleNone))
		}
		return
	}

	x1, x2 := p1.X, p2.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		putCell(s, area, area.X+x, area.Y+p1.Y, goterm.NewCell(boxHorizontal, colorDim, colorDefault, goterm.StyleNone))
	}
}
