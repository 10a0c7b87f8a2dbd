package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/dshills/goterm"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/graph"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptFilter
)

// GraphView is the main canvas view: the document graph with vim-style
// navigation, search and filter prompts, and undo/redo over edits.
type GraphView struct {
	store    *document.Store
	modal    *NodeModal
	status   *StatusBar
	keyboard *KeyboardHandler
	canvas   *Canvas
	undo     *UndoStack
	filter   *graph.Filter

	active     bool
	registered bool
	restoring  bool

	prompt     promptKind
	promptText string

	query         string
	queryIsFilter bool
	matches       []string
	matchIdx      int
}

// NewGraphView creates the graph view bound to the document store
func NewGraphView(store *document.Store, modal *NodeModal, status *StatusBar) *GraphView {
	return &GraphView{
		store:    store,
		modal:    modal,
		status:   status,
		keyboard: NewKeyboardHandler(),
		canvas:   NewCanvas(80, 24),
		undo:     NewUndoStack(0),
		filter:   graph.NewFilter(),
	}
}

// Name returns the view identifier
func (v *GraphView) Name() string { return "graph" }

// IsActive returns whether the view is active
func (v *GraphView) IsActive() bool { return v.active }

// SetActive updates the active state
func (v *GraphView) SetActive(active bool) { v.active = active }

// Canvas exposes the canvas for the app layer and tests
func (v *GraphView) Canvas() *Canvas { return v.canvas }

// PromptActive reports whether a search or filter prompt has focus
func (v *GraphView) PromptActive() bool { return v.prompt != promptNone }

// Init builds the graph from the current document and registers bindings
func (v *GraphView) Init() error {
	if !v.registered {
		if err := v.registerBindings(); err != nil {
			return err
		}
		v.registered = true
	}
	return v.rebuild()
}

// Cleanup dismisses any open prompt when the view deactivates
func (v *GraphView) Cleanup() error {
	v.prompt = promptNone
	v.promptText = ""
	return nil
}

// OnDocumentChange rebuilds the canvas after a store update and records
// the new state in the undo timeline. Restores triggered by undo/redo do
// not push a new state.
func (v *GraphView) OnDocumentChange(change document.Change) {
	if err := v.rebuild(); err != nil {
		v.status.ShowError(err.Error())
		return
	}

	if v.restoring {
		v.restoring = false
		return
	}
	v.undo.Push(change.Contents, v.canvas.SelectedID())
}

func (v *GraphView) rebuild() error {
	g, err := graph.Build(v.store.Contents())
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	v.canvas.SetGraph(g)
	v.refreshMatches()
	return nil
}

// SeedHistory records the freshly opened document as the initial undo state
func (v *GraphView) SeedHistory() {
	v.undo.Clear()
	v.undo.Push(v.store.Contents(), v.canvas.SelectedID())
}

// refreshMatches re-runs the last committed query against the new graph
// so highlights survive document edits
func (v *GraphView) refreshMatches() {
	if v.query == "" {
		v.matches = nil
		v.canvas.ClearHighlights()
		return
	}

	g := v.canvas.Graph()
	if g == nil {
		return
	}

	var nodes []*graph.Node
	if v.queryIsFilter {
		nodes, _ = v.filter.Apply(context.Background(), g, v.query)
	} else {
		nodes = g.Search(v.query)
	}

	v.matches = v.matches[:0]
	for _, n := range nodes {
		v.matches = append(v.matches, n.ID)
	}
	if v.matchIdx >= len(v.matches) {
		v.matchIdx = 0
	}
	v.canvas.SetHighlights(v.matches)
}

// HandleKey routes input to the prompt when one is open, otherwise to the
// registered bindings
func (v *GraphView) HandleKey(event KeyEvent) error {
	if v.prompt != promptNone {
		v.handlePromptKey(event)
		return nil
	}

	_, err := v.keyboard.HandleKey(event)
	return err
}

func (v *GraphView) registerBindings() error {
	type binding struct {
		key     KeyEvent
		handler KeyHandler
		label   string
	}

	bindings := []binding{
		{KeyEvent{Key: 'h'}, v.navHandler(v.canvas.SelectSibling, -1), "previous sibling"},
		{KeyEvent{Key: 'l'}, v.navHandler(v.canvas.SelectSibling, 1), "next sibling"},
		{KeyEvent{Key: 'k'}, v.simpleHandler(v.canvas.SelectParent), "parent node"},
		{KeyEvent{Key: 'j'}, v.simpleHandler(v.canvas.SelectFirstChild), "first child"},
		{KeyEvent{IsSpecial: true, Special: "Left"}, v.navHandler(v.canvas.SelectSibling, -1), "previous sibling"},
		{KeyEvent{IsSpecial: true, Special: "Right"}, v.navHandler(v.canvas.SelectSibling, 1), "next sibling"},
		{KeyEvent{IsSpecial: true, Special: "Up"}, v.simpleHandler(v.canvas.SelectParent), "parent node"},
		{KeyEvent{IsSpecial: true, Special: "Down"}, v.simpleHandler(v.canvas.SelectFirstChild), "first child"},
		{KeyEvent{IsSpecial: true, Special: "Tab"}, v.simpleHandler(v.canvas.SelectNext), "next node"},
		{KeyEvent{IsSpecial: true, Special: "Tab", Shift: true}, v.simpleHandler(v.canvas.SelectPrevious), "previous node"},
		{KeyEvent{IsSpecial: true, Special: "Enter"}, v.openModalHandler(false), "inspect node"},
		{KeyEvent{Key: 'e'}, v.openModalHandler(true), "edit node"},
		{KeyEvent{Key: 'i'}, v.openModalHandler(true), "edit node"},
		{KeyEvent{Key: 'G', Shift: true}, v.simpleHandler(v.canvas.SelectLast), "last node"},
		{KeyEvent{Key: 'u'}, v.undoHandler(), "undo"},
		{KeyEvent{Key: 'r', Ctrl: true}, v.redoHandler(), "redo"},
		{KeyEvent{Key: '/'}, v.promptHandler(promptSearch), "search"},
		{KeyEvent{Key: 'f'}, v.promptHandler(promptFilter), "filter"},
		{KeyEvent{Key: 'n'}, v.matchHandler(1), "next match"},
		{KeyEvent{Key: 'N', Shift: true}, v.matchHandler(-1), "previous match"},
		{KeyEvent{Key: '+'}, v.zoomHandler(0.25), "zoom in"},
		{KeyEvent{Key: '='}, v.zoomHandler(0.25), "zoom in"},
		{KeyEvent{Key: '-'}, v.zoomHandler(-0.25), "zoom out"},
		{KeyEvent{Key: '0'}, v.simpleHandler(v.canvas.ResetView), "reset view"},
		{KeyEvent{Key: 'F', Shift: true}, v.simpleHandler(v.canvas.FitAll), "fit all"},
		{KeyEvent{Key: 'H', Shift: true}, v.panHandler(-4, 0), "pan left"},
		{KeyEvent{Key: 'L', Shift: true}, v.panHandler(4, 0), "pan right"},
		{KeyEvent{Key: 'K', Shift: true}, v.panHandler(0, -2), "pan up"},
		{KeyEvent{Key: 'J', Shift: true}, v.panHandler(0, 2), "pan down"},
		{KeyEvent{Key: 'y'}, v.yankHandler(yankContent), "yank content"},
		{KeyEvent{Key: 'p'}, v.yankHandler(yankPath), "yank path"},
		{KeyEvent{IsSpecial: true, Special: "Escape"}, v.clearHandler(), "clear search"},
	}

	for _, b := range bindings {
		if err := v.keyboard.RegisterBinding(ModeNormal, b.key, b.handler, b.label); err != nil {
			return err
		}
	}

	if err := v.keyboard.RegisterSequence(ModeNormal, 'g', 'g', v.simpleHandler(v.canvas.SelectRoot), "root node"); err != nil {
		return err
	}
	return v.keyboard.RegisterSequence(ModeNormal, 'd', 'd', v.deleteHandler(), "delete node")
}

func (v *GraphView) simpleHandler(fn func()) KeyHandler {
	return func(KeyEvent) error {
		fn()
		return nil
	}
}

func (v *GraphView) navHandler(fn func(int), delta int) KeyHandler {
	return func(KeyEvent) error {
		fn(delta)
		return nil
	}
}

func (v *GraphView) openModalHandler(edit bool) KeyHandler {
	return func(KeyEvent) error {
		node := v.canvas.SelectedNode()
		if node == nil {
			return nil
		}
		if edit {
			v.modal.OpenEdit(node)
		} else {
			v.modal.Open(node)
		}
		return nil
	}
}

func (v *GraphView) deleteHandler() KeyHandler {
	return func(KeyEvent) error {
		node := v.canvas.SelectedNode()
		if node == nil {
			return nil
		}
		if len(node.Path) == 0 {
			v.status.ShowWarning("cannot delete the document root")
			return nil
		}
		path := node.PathText()
		if err := v.store.DeleteAtPath(node.Path); err != nil {
			return err
		}
		v.status.ShowMessage("deleted " + path)
		return nil
	}
}

func (v *GraphView) undoHandler() KeyHandler {
	return func(KeyEvent) error {
		snap, err := v.undo.Undo()
		if err != nil {
			v.status.ShowWarning("nothing to undo")
			return nil
		}
		v.restore(snap)
		v.status.ShowMessage("undo")
		return nil
	}
}

func (v *GraphView) redoHandler() KeyHandler {
	return func(KeyEvent) error {
		snap, err := v.undo.Redo()
		if err != nil {
			v.status.ShowWarning("nothing to redo")
			return nil
		}
		v.restore(snap)
		v.status.ShowMessage("redo")
		return nil
	}
}

func (v *GraphView) restore(snap *docSnapshot) {
	v.restoring = true
	v.store.SetContents(snap.Text)
	if snap.SelectedID != "" {
		_ = v.canvas.SelectNode(snap.SelectedID)
	}
}

func (v *GraphView) promptHandler(kind promptKind) KeyHandler {
	return func(KeyEvent) error {
		v.prompt = kind
		v.promptText = ""
		return nil
	}
}

func (v *GraphView) matchHandler(delta int) KeyHandler {
	return func(KeyEvent) error {
		if len(v.matches) == 0 {
			v.status.ShowWarning("no matches")
			return nil
		}
		v.matchIdx = (v.matchIdx + delta + len(v.matches)) % len(v.matches)
		_ = v.canvas.SelectNode(v.matches[v.matchIdx])
		v.status.ShowMessage(fmt.Sprintf("match %d/%d", v.matchIdx+1, len(v.matches)))
		return nil
	}
}

func (v *GraphView) zoomHandler(delta float64) KeyHandler {
	return func(KeyEvent) error {
		if err := v.canvas.Zoom(delta); err != nil {
			v.status.ShowWarning(err.Error())
		}
		return nil
	}
}

func (v *GraphView) panHandler(dx, dy int) KeyHandler {
	return func(KeyEvent) error {
		v.canvas.Pan(dx, dy)
		return nil
	}
}

type yankKind int

const (
	yankContent yankKind = iota
	yankPath
)

func (v *GraphView) yankHandler(kind yankKind) KeyHandler {
	return func(KeyEvent) error {
		node := v.canvas.SelectedNode()
		if node == nil {
			return nil
		}
		text := node.ContentText()
		what := "content"
		if kind == yankPath {
			text = node.PathText()
			what = "path"
		}
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		v.status.ShowMessage(what + " copied")
		return nil
	}
}

func (v *GraphView) clearHandler() KeyHandler {
	return func(KeyEvent) error {
		v.query = ""
		v.queryIsFilter = false
		v.matches = nil
		v.matchIdx = 0
		v.canvas.ClearHighlights()
		return nil
	}
}

func (v *GraphView) handlePromptKey(event KeyEvent) {
	if event.IsSpecial {
		switch event.Special {
		case "Escape":
			v.prompt = promptNone
			v.promptText = ""
		case "Enter":
			v.commitPrompt()
		case "Backspace":
			if runes := []rune(v.promptText); len(runes) > 0 {
				v.promptText = string(runes[:len(runes)-1])
			}
		}
		return
	}

	if event.Ctrl || event.Alt {
		return
	}
	if event.Key >= ' ' {
		v.promptText += string(event.Key)
	}
}

func (v *GraphView) commitPrompt() {
	kind := v.prompt
	text := v.promptText
	v.prompt = promptNone
	v.promptText = ""

	if text == "" {
		return
	}

	g := v.canvas.Graph()
	if g == nil {
		return
	}

	var nodes []*graph.Node
	if kind == promptFilter {
		var err error
		nodes, err = v.filter.Apply(context.Background(), g, text)
		if err != nil {
			v.status.ShowError(err.Error())
			return
		}
	} else {
		nodes = g.Search(text)
	}

	v.query = text
	v.queryIsFilter = kind == promptFilter
	v.matches = v.matches[:0]
	for _, n := range nodes {
		v.matches = append(v.matches, n.ID)
	}
	v.matchIdx = 0
	v.canvas.SetHighlights(v.matches)

	if len(v.matches) == 0 {
		v.status.ShowWarning("no matches for " + text)
		return
	}
	_ = v.canvas.SelectNode(v.matches[0])
	v.status.ShowMessage(fmt.Sprintf("%d matches", len(v.matches)))
}

// Render draws the canvas and, when open, the prompt input line
func (v *GraphView) Render(s Surface) error {
	w, h := s.Size()
	area := Rect{X: 0, Y: 0, Width: w, Height: h - 1}
	v.canvas.Resize(area.Width, area.Height)

	if v.canvas.NodeCount() == 0 {
		msg := "empty document"
		putText(s, area, (w-len(msg))/2, h/2, msg, colorHelp, colorDefault, goterm.StyleNone)
	} else {
		drawCanvas(s, v.canvas, area)
	}

	if v.prompt != promptNone {
		v.renderPrompt(s, area)
	}
	return nil
}

func (v *GraphView) renderPrompt(s Surface, area Rect) {
	y := area.Height - 1
	prefix := "/"
	if v.prompt == promptFilter {
		prefix = "filter: "
	}

	for x := 0; x < area.Width; x++ {
		putCell(s, area, x, y, goterm.NewCell(' ', colorText, colorStatusBg, goterm.StyleNone))
	}
	putText(s, area, 1, y, prefix+v.promptText, colorText, colorStatusBg, goterm.StyleNone)
	cursorX := 1 + len([]rune(prefix+v.promptText))
	putCell(s, area, cursorX, y, goterm.NewCell('_', colorText, colorStatusBg, goterm.StyleSlowBlink))
}
