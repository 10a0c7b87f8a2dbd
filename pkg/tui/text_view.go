package tui

import (
	"fmt"
	"strings"

	"github.com/dshills/goterm"

	"github.com/dshills/jsongraph/pkg/document"
)

// TextView shows the raw document text with line numbers.
// It reads straight from the store, so edits made through the graph view
// appear here immediately.
type TextView struct {
	store  *document.Store
	active bool

	scroll int
	lines  []string
	rev    uint64
}

// NewTextView creates the text view bound to the document store
func NewTextView(store *document.Store) *TextView {
	return &TextView{store: store}
}

// Name returns the view identifier
func (v *TextView) Name() string { return "text" }

// Init resets scrolling and refreshes content
func (v *TextView) Init() error {
	v.refresh()
	return nil
}

// Cleanup has nothing to release
func (v *TextView) Cleanup() error { return nil }

// IsActive returns whether the view is active
func (v *TextView) IsActive() bool { return v.active }

// SetActive updates the active state
func (v *TextView) SetActive(active bool) { v.active = active }

func (v *TextView) refresh() {
	rev := v.store.Revision()
	if rev == v.rev && v.lines != nil {
		return
	}
	v.rev = rev
	v.lines = strings.Split(v.store.Contents(), "\n")
	if v.scroll > len(v.lines)-1 {
		v.scroll = 0
	}
}

// HandleKey processes scrolling input
func (v *TextView) HandleKey(event KeyEvent) error {
	if event.IsSpecial {
		switch event.Special {
		case "Down":
			v.scrollBy(1)
		case "Up":
			v.scrollBy(-1)
		}
		return nil
	}

	if event.Ctrl {
		switch event.Key {
		case 'd':
			v.scrollBy(12)
		case 'u':
			v.scrollBy(-12)
		}
		return nil
	}

	switch event.Key {
	case 'j':
		v.scrollBy(1)
	case 'k':
		v.scrollBy(-1)
	case 'g':
		v.scroll = 0
	case 'G':
		v.scroll = len(v.lines)
	}
	return nil
}

func (v *TextView) scrollBy(delta int) {
	v.scroll += delta
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// Render draws the document text with a line number gutter
func (v *TextView) Render(s Surface) error {
	v.refresh()

	w, h := s.Size()
	area := Rect{X: 0, Y: 0, Width: w, Height: h - 1}

	maxScroll := len(v.lines) - area.Height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.scroll > maxScroll {
		v.scroll = maxScroll
	}

	gutter := len(fmt.Sprint(len(v.lines))) + 1
	for i := 0; i < area.Height; i++ {
		idx := v.scroll + i
		if idx >= len(v.lines) {
			break
		}
		number := fmt.Sprintf("%*d", gutter, idx+1)
		putText(s, area, 0, i, number, colorHelp, colorDefault, goterm.StyleNone)
		putText(s, area, gutter+1, i, truncate(v.lines[idx], area.Width-gutter-1), colorText, colorDefault, goterm.StyleNone)
	}
	return nil
}
