// Package tui renders a JSON document as a navigable node graph in the
// terminal. The graph view is the main surface; a node modal overlays it
// for inspecting and editing single nodes, and a text view shows the raw
// document. All document mutation goes through the document store, whose
// change notifications drive graph rebuilds and undo history.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dshills/goterm"

	"github.com/dshills/jsongraph/pkg/document"
)

// App represents the TUI application root
type App struct {
	screen      *goterm.Screen
	store       *document.Store
	viewManager *ViewManager
	keyboard    *KeyboardHandler
	statusBar   *StatusBar
	modal       *NodeModal
	help        *HelpOverlay
	graphView   *GraphView
	textView    *TextView
	logger      *log.Logger

	// saveFunc persists the document outside the store; nil disables Ctrl+S
	saveFunc func(text string) error

	running   bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	inputChan chan KeyEvent
	reloadCh  chan string
}

// NewApp creates a new TUI application instance for the given document store
func NewApp(store *document.Store, logger *log.Logger) (*App, error) {
	screen, err := goterm.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	statusBar := NewStatusBar()
	modal := NewNodeModal(store)

	app := &App{
		screen:      screen,
		store:       store,
		viewManager: NewViewManager(),
		keyboard:    NewKeyboardHandler(),
		statusBar:   statusBar,
		modal:       modal,
		help:        NewHelpOverlay(),
		graphView:   NewGraphView(store, modal, statusBar),
		textView:    NewTextView(store),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		inputChan:   make(chan KeyEvent, 100),
		reloadCh:    make(chan string, 1),
	}

	if err := app.registerViews(); err != nil {
		_ = screen.Close()
		cancel()
		return nil, fmt.Errorf("failed to register views: %w", err)
	}

	if err := app.registerGlobalKeybindings(); err != nil {
		_ = screen.Close()
		cancel()
		return nil, fmt.Errorf("failed to register keybindings: %w", err)
	}

	if err := app.viewManager.Initialize("graph"); err != nil {
		_ = screen.Close()
		cancel()
		return nil, fmt.Errorf("failed to initialize view manager: %w", err)
	}

	store.Subscribe(app.onStoreChange)
	app.graphView.SeedHistory()

	return app, nil
}

// registerViews registers all available views
func (a *App) registerViews() error {
	if err := a.viewManager.RegisterView(a.graphView); err != nil {
		return fmt.Errorf("failed to register graph view: %w", err)
	}
	if err := a.viewManager.RegisterView(a.textView); err != nil {
		return fmt.Errorf("failed to register text view: %w", err)
	}
	return nil
}

// registerGlobalKeybindings registers application-wide keybindings
func (a *App) registerGlobalKeybindings() error {
	// Ctrl+C: quit from any state
	if err := a.keyboard.RegisterGlobalBinding(
		KeyEvent{Key: 'c', Ctrl: true},
		func(KeyEvent) error {
			a.cancel()
			return nil
		},
		"Quit",
	); err != nil {
		return err
	}

	// q: quit
	if err := a.keyboard.RegisterBinding(
		ModeNormal,
		KeyEvent{Key: 'q'},
		func(KeyEvent) error {
			a.cancel()
			return nil
		},
		"Quit",
	); err != nil {
		return err
	}

	// t: toggle between graph and text views
	if err := a.keyboard.RegisterBinding(
		ModeNormal,
		KeyEvent{Key: 't'},
		func(KeyEvent) error {
			return a.viewManager.NextView()
		},
		"Toggle view",
	); err != nil {
		return err
	}

	// Ctrl+S: write the document back to its source
	if err := a.keyboard.RegisterBinding(
		ModeNormal,
		KeyEvent{Key: 's', Ctrl: true},
		func(KeyEvent) error {
			a.saveDocument()
			return nil
		},
		"Save document",
	); err != nil {
		return err
	}

	// ?: toggle the help overlay
	return a.keyboard.RegisterBinding(
		ModeNormal,
		KeyEvent{Key: '?'},
		func(KeyEvent) error {
			a.help.Toggle()
			return nil
		},
		"Help",
	)
}

// SetSaveFunc installs the callback Ctrl+S uses to persist the document
func (a *App) SetSaveFunc(fn func(text string) error) {
	a.saveFunc = fn
}

// ReloadFunc returns a callback suitable for a file watcher. Reloaded text
// is handed off to the run loop so all state changes stay on one goroutine.
func (a *App) ReloadFunc() func(path, text string) {
	return func(path, text string) {
		select {
		case a.reloadCh <- text:
		case <-a.ctx.Done():
		}
	}
}

func (a *App) saveDocument() {
	if a.saveFunc == nil {
		a.statusBar.ShowWarning("no save target for this document")
		return
	}
	if err := a.saveFunc(a.store.Contents()); err != nil {
		a.statusBar.ShowError("save failed: " + err.Error())
		a.logger.Error("saving document", "err", err)
		return
	}
	a.store.Mirror().MarkSaved()
	a.statusBar.ShowMessage("saved " + a.store.Source())
}

// onStoreChange reacts to document updates from any source.
// A node edit comes from the modal, which manages its own lifecycle; any
// other change while the modal is open invalidates the node it shows.
func (a *App) onStoreChange(change document.Change) {
	if a.modal.IsOpen() && change.Reason != document.ReasonNodeEdit {
		a.modal.Close()
	}
	a.graphView.OnDocumentChange(change)
}

// Run starts the TUI application main loop
func (a *App) Run() error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go a.readKeyboardInput()

	// Render loop targeting 60 FPS (16ms frame time)
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	if err := a.render(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}

	for {
		select {
		case <-a.ctx.Done():
			return nil

		case <-sigChan:
			a.cancel()
			return nil

		case event := <-a.inputChan:
			a.handleKeyEvent(event)
			// Render immediately after input
			if err := a.render(); err != nil {
				return err
			}

		case text := <-a.reloadCh:
			// External change on disk: reload as a fresh baseline, but an
			// unsaved buffer wins over the disk copy
			if a.store.Mirror().Dirty() {
				a.statusBar.ShowWarning("file changed on disk; save or undo to reload")
			} else {
				a.store.Load(text, a.store.Source())
				a.statusBar.ShowMessage("reloaded from disk")
			}
			if err := a.render(); err != nil {
				return err
			}

		case <-ticker.C:
			if err := a.render(); err != nil {
				return err
			}
		}
	}
}

// handleKeyEvent routes input through the overlay stack: help first, then
// the node modal, then the prompt, then global bindings, then the view.
// Handler errors surface in the status bar rather than ending the session.
func (a *App) handleKeyEvent(event KeyEvent) {
	if a.help.HandleKey(event) {
		return
	}

	if a.modal.IsOpen() {
		a.modal.HandleKey(event)
		return
	}

	if a.graphView.PromptActive() {
		_ = a.graphView.HandleKey(event)
		return
	}

	if consumed, err := a.keyboard.HandleKey(event); consumed {
		if err != nil {
			a.statusBar.ShowError(err.Error())
			a.logger.Error("global key handler", "err", err)
		}
		return
	}

	if view := a.viewManager.GetCurrentView(); view != nil {
		if err := view.HandleKey(event); err != nil {
			a.statusBar.ShowError(err.Error())
			a.logger.Error("view key handler", "err", err)
		}
	}
}

// render draws the current view, overlays, and status bar
func (a *App) render() error {
	view := a.viewManager.GetCurrentView()

	a.screen.Clear()

	if view != nil {
		if err := view.Render(a.screen); err != nil {
			return fmt.Errorf("view render failed: %w", err)
		}
	}

	a.modal.Render(a.screen)
	a.help.Render(a.screen)
	a.renderStatusBar()

	if err := a.screen.Show(); err != nil {
		return fmt.Errorf("screen show failed: %w", err)
	}
	return nil
}

func (a *App) renderStatusBar() {
	w, h := a.screen.Size()

	a.statusBar.SetMode(a.currentMode())

	left := a.store.Source()
	if left == "" {
		left = "(no source)"
	}
	if a.store.Mirror().Dirty() {
		left += " [+]"
	}
	a.statusBar.SetLeft(left)

	right := fmt.Sprintf("%d nodes", a.graphView.Canvas().NodeCount())
	if node := a.graphView.Canvas().SelectedNode(); node != nil {
		right = node.PathText() + "  " + right
	}
	a.statusBar.SetRight(right)

	a.statusBar.Render(a.screen, h-1, w)
}

func (a *App) currentMode() string {
	switch {
	case a.modal.IsOpen() && a.modal.IsEditing():
		return "EDIT"
	case a.modal.IsOpen():
		return "MODAL"
	case a.graphView.PromptActive():
		return "PROMPT"
	default:
		view := a.viewManager.GetCurrentView()
		if view != nil && view.Name() != "graph" {
			return strings.ToUpper(view.Name())
		}
		return "NORMAL"
	}
}

// readKeyboardInput reads keyboard input in a background goroutine
func (a *App) readKeyboardInput() {
	// Terminal is already in raw mode from goterm
	buf := make([]byte, 32)

	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			if err == io.EOF {
				return
			}
			continue
		}

		if n > 0 {
			event := a.parseKeyInput(buf[:n])
			select {
			case a.inputChan <- event:
			case <-a.ctx.Done():
				return
			}
		}
	}
}

// parseKeyInput converts raw bytes into a KeyEvent
func (a *App) parseKeyInput(buf []byte) KeyEvent {
	if len(buf) == 0 {
		return KeyEvent{}
	}

	// Escape sequences: arrows and back-tab
	if buf[0] == 27 {
		if len(buf) == 1 {
			return KeyEvent{IsSpecial: true, Special: "Escape"}
		}
		if buf[1] == '[' && len(buf) > 2 {
			switch buf[2] {
			case 'A':
				return KeyEvent{IsSpecial: true, Special: "Up"}
			case 'B':
				return KeyEvent{IsSpecial: true, Special: "Down"}
			case 'C':
				return KeyEvent{IsSpecial: true, Special: "Right"}
			case 'D':
				return KeyEvent{IsSpecial: true, Special: "Left"}
			case 'Z':
				return KeyEvent{IsSpecial: true, Special: "Tab", Shift: true}
			}
		}
		return KeyEvent{IsSpecial: true, Special: "Escape"}
	}

	switch buf[0] {
	case 9:
		return KeyEvent{IsSpecial: true, Special: "Tab"}
	case 13:
		return KeyEvent{IsSpecial: true, Special: "Enter"}
	case 127:
		return KeyEvent{IsSpecial: true, Special: "Backspace"}
	}

	// Ctrl combinations map back to their letter
	if buf[0] < 32 {
		return KeyEvent{
			Key:  rune(buf[0] + 'a' - 1),
			Ctrl: true,
		}
	}

	key := rune(buf[0])
	shift := key >= 'A' && key <= 'Z'

	return KeyEvent{
		Key:   key,
		Shift: shift,
	}
}

// Close performs cleanup and restores terminal state
func (a *App) Close() error {
	a.cancel()

	if err := a.viewManager.Shutdown(); err != nil {
		a.logger.Error("view manager shutdown", "err", err)
	}

	if err := a.screen.Close(); err != nil {
		return fmt.Errorf("failed to close screen: %w", err)
	}

	return nil
}
