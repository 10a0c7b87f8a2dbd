package tui

import (
	"fmt"
	"sort"
	"sync"
)

// View defines the interface that all TUI views must implement
type View interface {
	// Name returns the unique identifier for this view
	Name() string

	// Init initializes the view, called before first render
	Init() error

	// Cleanup releases resources when view is deactivated
	Cleanup() error

	// HandleKey processes keyboard input events
	HandleKey(event KeyEvent) error

	// Render draws the view onto the surface
	Render(s Surface) error

	// IsActive returns whether this view is currently active
	IsActive() bool

	// SetActive updates the active state of the view
	SetActive(active bool)
}

// ViewManager manages view registration, switching, and lifecycle
type ViewManager struct {
	views       map[string]View
	activeView  View
	mu          sync.RWMutex
	initialized bool
}

// NewViewManager creates a new view manager
func NewViewManager() *ViewManager {
	return &ViewManager{views: make(map[string]View)}
}

// RegisterView adds a view to the manager's registry
func (vm *ViewManager) RegisterView(view View) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if view == nil {
		return fmt.Errorf("cannot register nil view")
	}

	name := view.Name()
	if name == "" {
		return fmt.Errorf("view name cannot be empty")
	}

	if _, exists := vm.views[name]; exists {
		return fmt.Errorf("view %q already registered", name)
	}

	vm.views[name] = view
	return nil
}

// SwitchTo switches to the named view, handling cleanup and initialization
func (vm *ViewManager) SwitchTo(viewName string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	newView, exists := vm.views[viewName]
	if !exists {
		return fmt.Errorf("view %q not found", viewName)
	}

	if vm.activeView == newView {
		return nil
	}

	oldView := vm.activeView
	if oldView != nil {
		if err := oldView.Cleanup(); err != nil {
			return fmt.Errorf("failed to cleanup view %q: %w", oldView.Name(), err)
		}
		oldView.SetActive(false)
	}

	if err := newView.Init(); err != nil {
		// Restore the old view so the app is never left without one
		if oldView != nil {
			oldView.SetActive(true)
			_ = oldView.Init()
		}
		return fmt.Errorf("failed to initialize view %q: %w", viewName, err)
	}

	newView.SetActive(true)
	vm.activeView = newView
	return nil
}

// GetCurrentView returns the currently active view
func (vm *ViewManager) GetCurrentView() View {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeView
}

// GetView retrieves a view by name
func (vm *ViewManager) GetView(name string) (View, error) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	view, exists := vm.views[name]
	if !exists {
		return nil, fmt.Errorf("view %q not found", name)
	}
	return view, nil
}

// ListViews returns the names of all registered views in sorted order
func (vm *ViewManager) ListViews() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	names := make([]string, 0, len(vm.views))
	for name := range vm.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize sets up the view manager and activates the initial view
func (vm *ViewManager) Initialize(initialViewName string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.initialized {
		return fmt.Errorf("view manager already initialized")
	}

	view, exists := vm.views[initialViewName]
	if !exists {
		return fmt.Errorf("initial view %q not found", initialViewName)
	}

	if err := view.Init(); err != nil {
		return fmt.Errorf("failed to initialize initial view: %w", err)
	}

	view.SetActive(true)
	vm.activeView = view
	vm.initialized = true
	return nil
}

// Shutdown cleans up the active view and releases resources
func (vm *ViewManager) Shutdown() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.activeView != nil {
		if err := vm.activeView.Cleanup(); err != nil {
			return fmt.Errorf("failed to cleanup active view: %w", err)
		}
	}

	vm.activeView = nil
	vm.initialized = false
	return nil
}

// NextView cycles to the next view in alphabetical order.
// Used for Tab key navigation.
func (vm *ViewManager) NextView() error {
	vm.mu.Lock()
	names := make([]string, 0, len(vm.views))
	for name := range vm.views {
		names = append(names, name)
	}
	if len(names) == 0 {
		vm.mu.Unlock()
		return fmt.Errorf("no views registered")
	}
	sort.Strings(names)

	currentIdx := -1
	if vm.activeView != nil {
		for i, name := range names {
			if name == vm.activeView.Name() {
				currentIdx = i
				break
			}
		}
	}
	next := names[(currentIdx+1)%len(names)]
	vm.mu.Unlock()

	return vm.SwitchTo(next)
}
