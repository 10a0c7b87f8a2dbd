package tui

import "github.com/dshills/goterm"

// helpEntry pairs a key chord with its description
type helpEntry struct {
	key  string
	desc string
}

// helpSection groups related bindings under a heading
type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{
		title: "Navigate",
		entries: []helpEntry{
			{"h / l", "previous / next sibling"},
			{"j / k", "first child / parent"},
			{"Tab / Shift+Tab", "next / previous node"},
			{"gg / G", "root / last node"},
		},
	},
	{
		title: "Node",
		entries: []helpEntry{
			{"Enter", "inspect node"},
			{"e, i", "edit node"},
			{"dd", "delete node"},
			{"y / p", "yank content / path"},
		},
	},
	{
		title: "Search",
		entries: []helpEntry{
			{"/", "search keys and values"},
			{"f", "filter by expression"},
			{"n / N", "next / previous match"},
			{"Esc", "clear matches"},
		},
	},
	{
		title: "View",
		entries: []helpEntry{
			{"+ / -", "zoom in / out"},
			{"0 / F", "reset view / fit all"},
			{"H J K L", "pan viewport"},
			{"t", "toggle text view"},
			{"u / Ctrl+R", "undo / redo"},
			{"q", "quit"},
		},
	},
}

// HelpOverlay renders the key binding reference over the current view
type HelpOverlay struct {
	open bool
}

// NewHelpOverlay creates a closed help overlay
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{}
}

// Toggle flips overlay visibility
func (h *HelpOverlay) Toggle() {
	h.open = !h.open
}

// IsOpen reports whether the overlay is visible
func (h *HelpOverlay) IsOpen() bool {
	return h.open
}

// HandleKey closes the overlay on any key and consumes the event
func (h *HelpOverlay) HandleKey(KeyEvent) bool {
	if !h.open {
		return false
	}
	h.open = false
	return true
}

// Render draws the overlay centered with a dimmed backdrop
func (h *HelpOverlay) Render(s Surface) {
	if !h.open {
		return
	}

	termW, termH := s.Size()
	for y := 0; y < termH; y++ {
		for x := 0; x < termW; x++ {
			cell := s.GetCell(x, y)
			s.SetCell(x, y, goterm.NewCell(cell.Ch, colorHelp, colorDefault, goterm.StyleDim))
		}
	}

	height := 2
	width := 40
	for _, section := range helpSections {
		height += len(section.entries) + 2
		for _, e := range section.entries {
			if lineW := len(e.key) + len(e.desc) + 8; lineW > width {
				width = lineW
			}
		}
	}
	if height > termH-2 {
		height = termH - 2
	}
	if width > termW-4 {
		width = termW - 4
	}

	x := (termW - width) / 2
	y := (termH - height) / 2
	clip := Rect{X: 0, Y: 0, Width: termW, Height: termH}
	frame := Rect{X: x, Y: y, Width: width, Height: height}

	fillRect(s, clip, Rect{X: x + 1, Y: y + 1, Width: width - 2, Height: height - 2}, colorText, colorDefault)
	drawFrame(s, clip, frame, "Key Bindings", colorText, colorDefault, goterm.StyleBold)

	row := y + 1
	for _, section := range helpSections {
		if row >= y+height-1 {
			break
		}
		putText(s, clip, x+2, row, section.title, colorAccent, colorDefault, goterm.StyleBold)
		row++
		for _, e := range section.entries {
			if row >= y+height-1 {
				break
			}
			putText(s, clip, x+4, row, e.key, colorText, colorDefault, goterm.StyleNone)
			putText(s, clip, x+22, row, truncate(e.desc, width-24), colorDim, colorDefault, goterm.StyleNone)
			row++
		}
		row++
	}
}
