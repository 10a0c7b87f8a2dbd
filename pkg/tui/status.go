package tui

import "github.com/dshills/goterm"

// Message display duration in render frames (~60 frames at 16ms per frame)
const defaultMessageFrames = 180

// StatusBar renders the bottom status line: a mode badge on the left,
// document info next to it, a transient message in the center, and the
// current selection on the right.
type StatusBar struct {
	mode      string
	left      string
	right     string
	message   string
	msgColor  goterm.Color
	msgFrames int
}

// NewStatusBar creates an empty status bar
func NewStatusBar() *StatusBar {
	return &StatusBar{mode: "NORMAL"}
}

// SetMode sets the mode badge text
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// SetLeft sets the document info section
func (s *StatusBar) SetLeft(text string) {
	s.left = text
}

// SetRight sets the selection info section
func (s *StatusBar) SetRight(text string) {
	s.right = text
}

// ShowMessage displays a transient informational message
func (s *StatusBar) ShowMessage(text string) {
	s.message = text
	s.msgColor = colorText
	s.msgFrames = defaultMessageFrames
}

// ShowError displays a transient error message
func (s *StatusBar) ShowError(text string) {
	s.message = text
	s.msgColor = colorError
	s.msgFrames = defaultMessageFrames * 2
}

// ShowWarning displays a transient warning message
func (s *StatusBar) ShowWarning(text string) {
	s.message = text
	s.msgColor = colorWarn
	s.msgFrames = defaultMessageFrames
}

// Message returns the currently displayed transient message, or ""
func (s *StatusBar) Message() string {
	if s.msgFrames <= 0 {
		return ""
	}
	return s.message
}

// Render draws the status bar on the given row.
// Each call counts down the transient message timer by one frame.
func (s *StatusBar) Render(surface Surface, y, width int) {
	clip := Rect{X: 0, Y: y, Width: width, Height: 1}

	for x := 0; x < width; x++ {
		surface.SetCell(x, y, goterm.NewCell(' ', colorText, colorStatusBg, goterm.StyleNone))
	}

	// Mode badge
	x := 0
	badge := " " + s.mode + " "
	putText(surface, clip, x, y, badge, colorBlack, colorAccent, goterm.StyleBold)
	x += len([]rune(badge)) + 1

	// Document info
	if s.left != "" {
		putText(surface, clip, x, y, truncate(s.left, width/3), colorText, colorStatusBg, goterm.StyleNone)
	}

	// Right-aligned selection info
	rightStart := width
	if s.right != "" {
		text := truncate(s.right, width/3)
		rightStart = width - len([]rune(text)) - 1
		putText(surface, clip, rightStart, y, text, colorDim, colorStatusBg, goterm.StyleNone)
	}

	// Centered transient message
	if s.msgFrames > 0 {
		s.msgFrames--
		maxMsg := width / 3
		text := truncate(s.message, maxMsg)
		msgX := (width - len([]rune(text))) / 2
		if msgX < x {
			msgX = x
		}
		if msgX+len([]rune(text)) < rightStart {
			putText(surface, clip, msgX, y, text, s.msgColor, colorStatusBg, goterm.StyleBold)
		}
	}
}
