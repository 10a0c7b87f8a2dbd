package tui

import (
	"fmt"
	"sync"
)

// Mode represents the current keyboard input mode
type Mode string

const (
	// ModeNormal is the default graph navigation mode
	ModeNormal Mode = "normal"
	// ModeModal is active while the node modal is open in view mode
	ModeModal Mode = "modal"
	// ModeEdit is active while the node modal is open in edit mode
	ModeEdit Mode = "edit"
	// ModePrompt is active while the search or filter prompt has focus
	ModePrompt Mode = "prompt"
)

// KeyEvent represents a keyboard input event
type KeyEvent struct {
	Key       rune   // The character pressed
	Ctrl      bool   // Ctrl modifier
	Shift     bool   // Shift modifier
	Alt       bool   // Alt modifier
	IsSpecial bool   // Whether this is a special key
	Special   string // Special key name (Enter, Escape, Tab, etc.)
}

// KeyHandler is a function that handles a key event
type KeyHandler func(event KeyEvent) error

// KeyBinding represents a registered keybinding
type KeyBinding struct {
	Key      KeyEvent
	Handler  KeyHandler
	Mode     Mode
	IsGlobal bool   // If true, works in all modes
	Label    string // Description for help text
}

// KeyboardHandler manages vim-style keyboard input
type KeyboardHandler struct {
	mu sync.RWMutex

	currentMode Mode

	// Keybindings registry organized by mode
	bindings map[Mode]map[string]*KeyBinding

	// Global bindings that work in any mode
	globalBindings map[string]*KeyBinding

	// Pending key for multi-key sequences (e.g., 'gg')
	pendingKey rune
}

// NewKeyboardHandler creates a new keyboard handler
func NewKeyboardHandler() *KeyboardHandler {
	kh := &KeyboardHandler{
		currentMode:    ModeNormal,
		bindings:       make(map[Mode]map[string]*KeyBinding),
		globalBindings: make(map[string]*KeyBinding),
	}

	for _, mode := range []Mode{ModeNormal, ModeModal, ModeEdit, ModePrompt} {
		kh.bindings[mode] = make(map[string]*KeyBinding)
	}

	return kh
}

// SetMode changes the current input mode
func (kh *KeyboardHandler) SetMode(mode Mode) {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	kh.currentMode = mode
	kh.pendingKey = 0 // Clear pending keys on mode change
}

// GetMode returns the current input mode
func (kh *KeyboardHandler) GetMode() Mode {
	kh.mu.RLock()
	defer kh.mu.RUnlock()

	return kh.currentMode
}

// RegisterBinding registers a new keybinding for a specific mode
func (kh *KeyboardHandler) RegisterBinding(mode Mode, key KeyEvent, handler KeyHandler, label string) error {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	keyStr := keyEventToString(key)

	if _, exists := kh.bindings[mode][keyStr]; exists {
		return fmt.Errorf("keybinding conflict: %s already registered in %s mode", keyStr, mode)
	}

	kh.bindings[mode][keyStr] = &KeyBinding{
		Key:      key,
		Handler:  handler,
		Mode:     mode,
		IsGlobal: false,
		Label:    label,
	}

	return nil
}

// RegisterGlobalBinding registers a keybinding that works in all modes
func (kh *KeyboardHandler) RegisterGlobalBinding(key KeyEvent, handler KeyHandler, label string) error {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	keyStr := keyEventToString(key)

	if _, exists := kh.globalBindings[keyStr]; exists {
		return fmt.Errorf("global keybinding conflict: %s already registered", keyStr)
	}

	kh.globalBindings[keyStr] = &KeyBinding{
		Key:      key,
		Handler:  handler,
		IsGlobal: true,
		Label:    label,
	}

	return nil
}

// RegisterSequence registers a two-key binding such as 'gg' for a mode
func (kh *KeyboardHandler) RegisterSequence(mode Mode, first, second rune, handler KeyHandler, label string) error {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	keyStr := string(first) + string(second)

	if _, exists := kh.bindings[mode][keyStr]; exists {
		return fmt.Errorf("keybinding conflict: %s already registered in %s mode", keyStr, mode)
	}

	kh.bindings[mode][keyStr] = &KeyBinding{
		Key:      KeyEvent{Key: second},
		Handler:  handler,
		Mode:     mode,
		IsGlobal: false,
		Label:    label,
	}

	return nil
}

// HandleKey processes a key event and dispatches to the appropriate handler.
// Returns true if a binding consumed the event.
func (kh *KeyboardHandler) HandleKey(event KeyEvent) (bool, error) {
	kh.mu.Lock()

	keyStr := keyEventToString(event)

	// Multi-key sequences take priority so 'gg' does not trigger 'g' twice
	if kh.pendingKey != 0 {
		seqStr := string(kh.pendingKey) + keyStr
		kh.pendingKey = 0

		if binding, exists := kh.bindings[kh.currentMode][seqStr]; exists {
			kh.mu.Unlock()
			return true, binding.Handler(event)
		}
		// Sequence did not resolve, fall through to single-key handling
	}

	if binding, exists := kh.globalBindings[keyStr]; exists {
		kh.mu.Unlock()
		return true, binding.Handler(event)
	}

	if binding, exists := kh.bindings[kh.currentMode][keyStr]; exists {
		kh.mu.Unlock()
		return true, binding.Handler(event)
	}

	// Check whether this key opens a multi-key sequence in the current mode
	if !event.IsSpecial && !event.Ctrl && kh.hasSequenceStartingWith(event.Key) {
		kh.pendingKey = event.Key
		kh.mu.Unlock()
		return true, nil
	}

	kh.mu.Unlock()
	return false, nil
}

// hasSequenceStartingWith reports whether any binding in the current mode is a
// two-key sequence opening with the given rune. Caller must hold the lock.
func (kh *KeyboardHandler) hasSequenceStartingWith(key rune) bool {
	prefix := string(key)
	for keyStr := range kh.bindings[kh.currentMode] {
		if len(keyStr) == 2 && keyStr[:1] == prefix {
			return true
		}
	}
	return false
}

// GetBindings returns all bindings for a specific mode
func (kh *KeyboardHandler) GetBindings(mode Mode) []*KeyBinding {
	kh.mu.RLock()
	defer kh.mu.RUnlock()

	bindings := make([]*KeyBinding, 0, len(kh.bindings[mode]))
	for _, binding := range kh.bindings[mode] {
		bindings = append(bindings, binding)
	}

	return bindings
}

// GetGlobalBindings returns all global bindings
func (kh *KeyboardHandler) GetGlobalBindings() []*KeyBinding {
	kh.mu.RLock()
	defer kh.mu.RUnlock()

	bindings := make([]*KeyBinding, 0, len(kh.globalBindings))
	for _, binding := range kh.globalBindings {
		bindings = append(bindings, binding)
	}

	return bindings
}

// ClearPendingKeys clears any pending multi-key sequences
func (kh *KeyboardHandler) ClearPendingKeys() {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	kh.pendingKey = 0
}

// HasPendingKey returns true if there's a pending key in a multi-key sequence
func (kh *KeyboardHandler) HasPendingKey() bool {
	kh.mu.RLock()
	defer kh.mu.RUnlock()

	return kh.pendingKey != 0
}

// keyEventToString converts a KeyEvent to a string for lookup
func keyEventToString(event KeyEvent) string {
	if event.IsSpecial {
		base := event.Special
		if event.Ctrl {
			base = "Ctrl-" + base
		}
		if event.Alt {
			base = "Alt-" + base
		}
		if event.Shift {
			base = "Shift-" + base
		}
		return base
	}

	key := string(event.Key)
	if event.Ctrl {
		key = fmt.Sprintf("Ctrl-%c", event.Key)
	}
	if event.Alt {
		key = fmt.Sprintf("Alt-%c", event.Key)
	}
	if event.Shift && event.Key >= 'a' && event.Key <= 'z' {
		// Shift+letter is represented as uppercase
		key = string(event.Key - 32)
	}

	return key
}
