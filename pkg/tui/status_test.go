package tui

import (
	"strings"
	"testing"
)

func TestStatusBarRenderSections(t *testing.T) {
	bar := NewStatusBar()
	bar.SetMode("NORMAL")
	bar.SetLeft("test.json")
	bar.SetRight("4 nodes")

	s := newFakeSurface(80, 24)
	bar.Render(s, 23, 80)

	row := s.row(23)
	if !strings.Contains(row, "NORMAL") {
		t.Errorf("row = %q, want mode badge", row)
	}
	if !strings.Contains(row, "test.json") {
		t.Errorf("row = %q, want left section", row)
	}
	if !strings.HasSuffix(row, "4 nodes") {
		t.Errorf("row = %q, want right aligned selection info", row)
	}
}

func TestStatusBarMessageExpires(t *testing.T) {
	bar := NewStatusBar()
	bar.ShowMessage("saved")

	if bar.Message() != "saved" {
		t.Fatalf("Message() = %q", bar.Message())
	}

	s := newFakeSurface(80, 24)
	for i := 0; i < defaultMessageFrames; i++ {
		bar.Render(s, 23, 80)
	}
	if bar.Message() != "" {
		t.Errorf("Message() = %q, want expiry after %d frames", bar.Message(), defaultMessageFrames)
	}
}

func TestStatusBarErrorOutlivesMessage(t *testing.T) {
	bar := NewStatusBar()
	bar.ShowError("broken")

	s := newFakeSurface(80, 24)
	for i := 0; i < defaultMessageFrames; i++ {
		bar.Render(s, 23, 80)
	}
	if bar.Message() != "broken" {
		t.Error("errors should persist twice as long as messages")
	}
	for i := 0; i < defaultMessageFrames; i++ {
		bar.Render(s, 23, 80)
	}
	if bar.Message() != "" {
		t.Error("error should expire eventually")
	}
}

func TestStatusBarMessageCentered(t *testing.T) {
	bar := NewStatusBar()
	bar.ShowWarning("no matches")

	s := newFakeSurface(80, 24)
	bar.Render(s, 23, 80)

	if !strings.Contains(s.row(23), "no matches") {
		t.Errorf("row = %q, want transient message", s.row(23))
	}
}
