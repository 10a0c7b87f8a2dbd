package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dshills/goterm"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/graph"
)

// NodeModal is the inspection and editing overlay for a single node.
// View mode shows the node's normalized content and its path; edit mode
// turns the content into a text buffer that saves back through the
// document store.
type NodeModal struct {
	store *document.Store
	node  *graph.Node

	open    bool
	editing bool

	// View state
	viewLines []string
	scroll    int

	// Edit buffer state
	lines      []string
	cursorLine int
	cursorCol  int
	editScroll int

	// Footer status line
	statusText  string
	statusIsErr bool
}

// NewNodeModal creates a closed modal bound to the document store
func NewNodeModal(store *document.Store) *NodeModal {
	return &NodeModal{store: store}
}

// Open shows the modal for the given node in view mode
func (m *NodeModal) Open(node *graph.Node) {
	m.node = node
	m.open = true
	m.editing = false
	m.viewLines = strings.Split(node.ContentText(), "\n")
	m.scroll = 0
	m.statusText = ""
	m.statusIsErr = false
}

// OpenEdit shows the modal for the given node directly in edit mode
func (m *NodeModal) OpenEdit(node *graph.Node) {
	m.Open(node)
	m.enterEdit()
}

// Close hides the modal
func (m *NodeModal) Close() {
	m.open = false
	m.editing = false
	m.node = nil
}

// IsOpen reports whether the modal is visible
func (m *NodeModal) IsOpen() bool {
	return m.open
}

// IsEditing reports whether the modal is in edit mode
func (m *NodeModal) IsEditing() bool {
	return m.editing
}

// Node returns the node the modal is showing, or nil when closed
func (m *NodeModal) Node() *graph.Node {
	return m.node
}

// EditText returns the current edit buffer contents
func (m *NodeModal) EditText() string {
	return strings.Join(m.lines, "\n")
}

// StatusText returns the footer status line and whether it is an error
func (m *NodeModal) StatusText() (string, bool) {
	return m.statusText, m.statusIsErr
}

func (m *NodeModal) enterEdit() {
	m.editing = true
	m.lines = strings.Split(m.node.ContentText(), "\n")
	m.cursorLine = 0
	m.cursorCol = 0
	m.editScroll = 0
	m.statusText = ""
	m.statusIsErr = false
}

// Save parses the edit buffer and writes it into the document at the
// node's path. Parse or write failures leave the modal open with the
// error displayed and the document untouched; success closes the modal.
func (m *NodeModal) Save() error {
	err := m.store.SaveNodeText(m.node.Path, m.EditText())
	if err != nil {
		m.statusText = err.Error()
		m.statusIsErr = true
		return err
	}

	m.Close()
	return nil
}

// CopyContent copies the node's normalized content to the system clipboard
func (m *NodeModal) CopyContent() {
	if err := clipboard.WriteAll(strings.Join(m.viewLines, "\n")); err != nil {
		m.statusText = fmt.Sprintf("clipboard: %v", err)
		m.statusIsErr = true
		return
	}
	m.statusText = "content copied"
	m.statusIsErr = false
}

// CopyPath copies the node's path expression to the system clipboard
func (m *NodeModal) CopyPath() {
	if err := clipboard.WriteAll(m.node.PathText()); err != nil {
		m.statusText = fmt.Sprintf("clipboard: %v", err)
		m.statusIsErr = true
		return
	}
	m.statusText = "path copied"
	m.statusIsErr = false
}

// HandleKey processes a key event while the modal is open.
// Returns true when the event was consumed.
func (m *NodeModal) HandleKey(event KeyEvent) bool {
	if !m.open {
		return false
	}
	if m.editing {
		return m.handleEditKey(event)
	}
	return m.handleViewKey(event)
}

func (m *NodeModal) handleViewKey(event KeyEvent) bool {
	if event.IsSpecial {
		switch event.Special {
		case "Escape":
			m.Close()
		case "Enter":
			m.enterEdit()
		case "Down":
			m.scrollBy(1)
		case "Up":
			m.scrollBy(-1)
		}
		return true
	}

	if event.Ctrl {
		switch event.Key {
		case 'd':
			m.scrollBy(8)
		case 'u':
			m.scrollBy(-8)
		}
		return true
	}

	switch event.Key {
	case 'q':
		m.Close()
	case 'e', 'i':
		m.enterEdit()
	case 'j':
		m.scrollBy(1)
	case 'k':
		m.scrollBy(-1)
	case 'g':
		m.scroll = 0
	case 'G':
		m.scroll = len(m.viewLines)
	case 'y':
		m.CopyContent()
	case 'p':
		m.CopyPath()
	}
	return true
}

func (m *NodeModal) handleEditKey(event KeyEvent) bool {
	if event.IsSpecial {
		switch event.Special {
		case "Escape":
			// Back to view mode, discarding buffer changes
			m.editing = false
			m.statusText = ""
			m.statusIsErr = false
		case "Enter":
			m.insertNewline()
		case "Backspace":
			m.backspace()
		case "Tab":
			m.insertRune(' ')
			m.insertRune(' ')
		case "Up":
			m.moveCursor(0, -1)
		case "Down":
			m.moveCursor(0, 1)
		case "Left":
			m.moveCursor(-1, 0)
		case "Right":
			m.moveCursor(1, 0)
		}
		return true
	}

	if event.Ctrl {
		if event.Key == 's' {
			_ = m.Save()
		}
		return true
	}

	if event.Alt {
		return true
	}

	if event.Key >= ' ' {
		m.insertRune(event.Key)
	}
	return true
}

func (m *NodeModal) scrollBy(delta int) {
	m.scroll += delta
	if m.scroll < 0 {
		m.scroll = 0
	}
	// Upper clamp happens at render time when the content height is known
}

func (m *NodeModal) insertRune(ch rune) {
	line := []rune(m.lines[m.cursorLine])
	if m.cursorCol > len(line) {
		m.cursorCol = len(line)
	}
	newLine := make([]rune, 0, len(line)+1)
	newLine = append(newLine, line[:m.cursorCol]...)
	newLine = append(newLine, ch)
	newLine = append(newLine, line[m.cursorCol:]...)
	m.lines[m.cursorLine] = string(newLine)
	m.cursorCol++
}

func (m *NodeModal) insertNewline() {
	line := []rune(m.lines[m.cursorLine])
	if m.cursorCol > len(line) {
		m.cursorCol = len(line)
	}
	before := string(line[:m.cursorCol])
	after := string(line[m.cursorCol:])

	m.lines[m.cursorLine] = before
	rest := make([]string, 0, len(m.lines)+1)
	rest = append(rest, m.lines[:m.cursorLine+1]...)
	rest = append(rest, after)
	rest = append(rest, m.lines[m.cursorLine+1:]...)
	m.lines = rest

	m.cursorLine++
	m.cursorCol = 0
}

func (m *NodeModal) backspace() {
	if m.cursorCol > 0 {
		line := []rune(m.lines[m.cursorLine])
		if m.cursorCol > len(line) {
			m.cursorCol = len(line)
		}
		m.lines[m.cursorLine] = string(line[:m.cursorCol-1]) + string(line[m.cursorCol:])
		m.cursorCol--
		return
	}

	if m.cursorLine == 0 {
		return
	}

	// Join with the previous line
	prev := m.lines[m.cursorLine-1]
	m.cursorCol = len([]rune(prev))
	m.lines[m.cursorLine-1] = prev + m.lines[m.cursorLine]
	m.lines = append(m.lines[:m.cursorLine], m.lines[m.cursorLine+1:]...)
	m.cursorLine--
}

func (m *NodeModal) moveCursor(dx, dy int) {
	if dy != 0 {
		m.cursorLine += dy
		if m.cursorLine < 0 {
			m.cursorLine = 0
		}
		if m.cursorLine > len(m.lines)-1 {
			m.cursorLine = len(m.lines) - 1
		}
		if lineLen := len([]rune(m.lines[m.cursorLine])); m.cursorCol > lineLen {
			m.cursorCol = lineLen
		}
		return
	}

	if dx < 0 {
		if m.cursorCol > 0 {
			m.cursorCol--
		} else if m.cursorLine > 0 {
			m.cursorLine--
			m.cursorCol = len([]rune(m.lines[m.cursorLine]))
		}
		return
	}

	lineLen := len([]rune(m.lines[m.cursorLine]))
	if m.cursorCol < lineLen {
		m.cursorCol++
	} else if m.cursorLine < len(m.lines)-1 {
		m.cursorLine++
		m.cursorCol = 0
	}
}

// Render draws the modal centered on the surface with a dimmed backdrop
func (m *NodeModal) Render(s Surface) {
	if !m.open {
		return
	}

	termW, termH := s.Size()
	m.drawBackdrop(s, termW, termH)

	width := termW - 8
	if width > 76 {
		width = 76
	}
	if width < 32 {
		width = 32
	}
	height := termH - 4
	if height > 22 {
		height = 22
	}
	if height < 8 {
		height = 8
	}

	x := (termW - width) / 2
	y := (termH - height) / 2
	clip := Rect{X: 0, Y: 0, Width: termW, Height: termH}
	frame := Rect{X: x, Y: y, Width: width, Height: height}

	fillRect(s, clip, Rect{X: x + 1, Y: y + 1, Width: width - 2, Height: height - 2}, colorText, colorDefault)
	drawFrame(s, clip, frame, m.node.Label, colorText, colorDefault, goterm.StyleBold)

	// Header: path and kind
	pathLine := truncate(m.node.PathText(), width-4)
	putText(s, clip, x+2, y+1, pathLine, colorAccent, colorDefault, goterm.StyleNone)
	kindLine := fmt.Sprintf("%s, %d rows", m.node.Kind, len(m.node.Rows))
	putText(s, clip, x+2, y+2, truncate(kindLine, width-4), colorHelp, colorDefault, goterm.StyleNone)

	contentTop := y + 3
	contentH := height - 5 // header rows above, status and hint rows below
	contentW := width - 4

	if m.editing {
		m.renderEditBuffer(s, clip, x+2, contentTop, contentW, contentH)
	} else {
		m.renderViewContent(s, clip, x+2, contentTop, contentW, contentH)
	}

	// Status line
	if m.statusText != "" {
		color := colorText
		if m.statusIsErr {
			color = colorError
		}
		putText(s, clip, x+2, y+height-2, truncate(m.statusText, width-4), color, colorDefault, goterm.StyleBold)
	}

	// Hint line embedded in the bottom border
	hint := " e edit  y yank  p path  Esc close "
	if m.editing {
		hint = " Ctrl+S save  Esc cancel "
	}
	if len(hint) < width-4 {
		putText(s, clip, x+2, y+height-1, hint, colorHelp, colorDefault, goterm.StyleNone)
	}
}

func (m *NodeModal) drawBackdrop(s Surface, termW, termH int) {
	for y := 0; y < termH; y++ {
		for x := 0; x < termW; x++ {
			cell := s.GetCell(x, y)
			s.SetCell(x, y, goterm.NewCell(cell.Ch, colorHelp, colorDefault, goterm.StyleDim))
		}
	}
}

func (m *NodeModal) renderViewContent(s Surface, clip Rect, x, y, w, h int) {
	maxScroll := len(m.viewLines) - h
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}

	for i := 0; i < h; i++ {
		idx := m.scroll + i
		if idx >= len(m.viewLines) {
			break
		}
		putText(s, clip, x, y+i, truncate(m.viewLines[idx], w), colorText, colorDefault, goterm.StyleNone)
	}
}

func (m *NodeModal) renderEditBuffer(s Surface, clip Rect, x, y, w, h int) {
	// Keep the cursor line in view
	if m.cursorLine < m.editScroll {
		m.editScroll = m.cursorLine
	}
	if m.cursorLine >= m.editScroll+h {
		m.editScroll = m.cursorLine - h + 1
	}

	// Horizontal follow for long lines
	colOffset := 0
	if m.cursorCol >= w {
		colOffset = m.cursorCol - w + 1
	}

	for i := 0; i < h; i++ {
		idx := m.editScroll + i
		if idx >= len(m.lines) {
			break
		}
		line := []rune(m.lines[idx])
		visible := ""
		if colOffset < len(line) {
			end := colOffset + w
			if end > len(line) {
				end = len(line)
			}
			visible = string(line[colOffset:end])
		}
		putText(s, clip, x, y+i, visible, colorText, colorDefault, goterm.StyleNone)

		if idx == m.cursorLine {
			cursorX := x + m.cursorCol - colOffset
			if m.cursorCol < len(line) {
				putCell(s, clip, cursorX, y+i, goterm.NewCell(line[m.cursorCol], colorBlack, colorAccent, goterm.StyleNone))
			} else {
				putCell(s, clip, cursorX, y+i, goterm.NewCell('_', colorText, colorDefault, goterm.StyleSlowBlink))
			}
		}
	}
}
