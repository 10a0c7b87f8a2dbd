package tui

import (
	"errors"
	"strings"
	"testing"
)

type stubView struct {
	name     string
	active   bool
	initErr  error
	inits    int
	cleanups int
}

func (v *stubView) Name() string { return v.name }

func (v *stubView) Init() error { v.inits++; return v.initErr }

func (v *stubView) Cleanup() error { v.cleanups++; return nil }

func (v *stubView) HandleKey(event KeyEvent) error { return nil }

func (v *stubView) Render(s Surface) error { return nil }

func (v *stubView) IsActive() bool { return v.active }

func (v *stubView) SetActive(active bool) { v.active = active }

func TestViewManagerRegisterView(t *testing.T) {
	tests := []struct {
		name   string
		view   View
		errMsg string
	}{
		{name: "valid view", view: &stubView{name: "graph"}},
		{name: "nil view", view: nil, errMsg: "cannot register nil view"},
		{name: "empty name", view: &stubView{}, errMsg: "view name cannot be empty"},
		{name: "duplicate", view: &stubView{name: "dup"}, errMsg: "already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewViewManager()
			if tt.name == "duplicate" {
				_ = vm.RegisterView(&stubView{name: "dup"})
			}

			err := vm.RegisterView(tt.view)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("RegisterView() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("RegisterView() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("RegisterView() error = %q, want substring %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestViewManagerInitialize(t *testing.T) {
	vm := NewViewManager()
	alpha := &stubView{name: "alpha"}
	_ = vm.RegisterView(alpha)

	if err := vm.Initialize("missing"); err == nil {
		t.Error("Initialize() should fail for an unknown view")
	}

	if err := vm.Initialize("alpha"); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if !alpha.IsActive() || alpha.inits != 1 {
		t.Errorf("initial view active=%v inits=%d", alpha.IsActive(), alpha.inits)
	}
	if vm.GetCurrentView() != alpha {
		t.Error("GetCurrentView() should return the initial view")
	}

	if err := vm.Initialize("alpha"); err == nil {
		t.Error("second Initialize() should fail")
	}
}

func TestViewManagerSwitchTo(t *testing.T) {
	vm := NewViewManager()
	alpha := &stubView{name: "alpha"}
	beta := &stubView{name: "beta"}
	_ = vm.RegisterView(alpha)
	_ = vm.RegisterView(beta)
	_ = vm.Initialize("alpha")

	if err := vm.SwitchTo("beta"); err != nil {
		t.Fatalf("SwitchTo() error = %v", err)
	}
	if alpha.IsActive() || alpha.cleanups != 1 {
		t.Errorf("old view active=%v cleanups=%d", alpha.IsActive(), alpha.cleanups)
	}
	if !beta.IsActive() || vm.GetCurrentView() != beta {
		t.Error("new view should be active and current")
	}

	// Switching to the current view is a no-op
	if err := vm.SwitchTo("beta"); err != nil {
		t.Fatalf("SwitchTo(same) error = %v", err)
	}
	if beta.inits != 1 {
		t.Errorf("inits = %d, want 1 after no-op switch", beta.inits)
	}

	if err := vm.SwitchTo("missing"); err == nil {
		t.Error("SwitchTo() should fail for an unknown view")
	}
}

func TestViewManagerSwitchToInitFailureRestoresOld(t *testing.T) {
	vm := NewViewManager()
	alpha := &stubView{name: "alpha"}
	beta := &stubView{name: "beta", initErr: errors.New("boom")}
	_ = vm.RegisterView(alpha)
	_ = vm.RegisterView(beta)
	_ = vm.Initialize("alpha")

	if err := vm.SwitchTo("beta"); err == nil {
		t.Fatal("SwitchTo() should propagate the init error")
	}
	if !alpha.IsActive() {
		t.Error("old view should be reactivated after a failed switch")
	}
	if vm.GetCurrentView() != alpha {
		t.Error("current view should still be the old one")
	}
}

func TestViewManagerNextView(t *testing.T) {
	vm := NewViewManager()
	if err := vm.NextView(); err == nil {
		t.Error("NextView() should fail with no views registered")
	}

	for _, name := range []string{"graph", "text", "raw"} {
		_ = vm.RegisterView(&stubView{name: name})
	}
	_ = vm.Initialize("raw")

	// Alphabetical cycle: graph, raw, text
	if err := vm.NextView(); err != nil {
		t.Fatalf("NextView() error = %v", err)
	}
	if got := vm.GetCurrentView().Name(); got != "text" {
		t.Errorf("after first cycle view = %q, want %q", got, "text")
	}

	if err := vm.NextView(); err != nil {
		t.Fatalf("NextView() error = %v", err)
	}
	if got := vm.GetCurrentView().Name(); got != "graph" {
		t.Errorf("after wrap view = %q, want %q", got, "graph")
	}
}

func TestViewManagerListViews(t *testing.T) {
	vm := NewViewManager()
	for _, name := range []string{"text", "graph"} {
		_ = vm.RegisterView(&stubView{name: name})
	}

	got := vm.ListViews()
	want := []string{"graph", "text"}
	if len(got) != len(want) {
		t.Fatalf("ListViews() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListViews()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestViewManagerShutdown(t *testing.T) {
	vm := NewViewManager()
	alpha := &stubView{name: "alpha"}
	_ = vm.RegisterView(alpha)
	_ = vm.Initialize("alpha")

	if err := vm.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if alpha.cleanups != 1 {
		t.Errorf("cleanups = %d, want 1", alpha.cleanups)
	}
	if vm.GetCurrentView() != nil {
		t.Error("no view should be current after shutdown")
	}

	// The manager can be initialized again after shutdown
	if err := vm.Initialize("alpha"); err != nil {
		t.Errorf("re-Initialize() error = %v", err)
	}
}
