package tui

import (
	"fmt"
	"testing"
)

func TestUndoStackEmpty(t *testing.T) {
	stack := NewUndoStack(10)

	if stack.CanUndo() {
		t.Error("empty stack should not allow undo")
	}
	if stack.CanRedo() {
		t.Error("empty stack should not allow redo")
	}
	if _, err := stack.Undo(); err == nil {
		t.Error("Undo on empty stack should error")
	}
	if _, err := stack.Redo(); err == nil {
		t.Error("Redo on empty stack should error")
	}
}

func TestUndoStackInitialStateIsFloor(t *testing.T) {
	stack := NewUndoStack(10)
	stack.Push(`{"v": 1}`, "1")

	// The opening state alone gives nothing to undo to
	if stack.CanUndo() {
		t.Error("single state should not allow undo")
	}

	stack.Push(`{"v": 2}`, "1")
	if !stack.CanUndo() {
		t.Fatal("expected undo available after a second state")
	}

	snap, err := stack.Undo()
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if snap.Text != `{"v": 1}` {
		t.Errorf("undo returned %q, want the opening state", snap.Text)
	}

	// At the floor again
	if stack.CanUndo() {
		t.Error("should not undo past the opening state")
	}
	if !stack.CanRedo() {
		t.Error("redo should be available after undo")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	stack := NewUndoStack(10)
	stack.Push("one", "1")
	stack.Push("two", "2")
	stack.Push("three", "3")

	snap, err := stack.Undo()
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if snap.Text != "two" || snap.SelectedID != "2" {
		t.Errorf("undo = %q/%q, want two/2", snap.Text, snap.SelectedID)
	}

	snap, err = stack.Redo()
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if snap.Text != "three" {
		t.Errorf("redo = %q, want three", snap.Text)
	}
	if stack.CanRedo() {
		t.Error("no redo beyond the newest state")
	}
}

func TestPushTruncatesRedoHistory(t *testing.T) {
	stack := NewUndoStack(10)
	stack.Push("one", "")
	stack.Push("two", "")
	stack.Push("three", "")

	if _, err := stack.Undo(); err != nil {
		t.Fatal(err)
	}
	if _, err := stack.Undo(); err != nil {
		t.Fatal(err)
	}

	// New state from the middle of history drops the redo tail
	stack.Push("fork", "")
	if stack.CanRedo() {
		t.Error("push should discard redo history")
	}
	if stack.Size() != 2 {
		t.Errorf("size = %d, want 2 (one + fork)", stack.Size())
	}

	snap, err := stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Text != "one" {
		t.Errorf("undo after fork = %q, want one", snap.Text)
	}
}

func TestUndoStackCapacity(t *testing.T) {
	stack := NewUndoStack(3)

	for i := 1; i <= 5; i++ {
		stack.Push(fmt.Sprintf("state-%d", i), "")
	}

	if stack.Size() != 3 {
		t.Fatalf("size = %d, want capacity 3", stack.Size())
	}

	// Oldest states rolled off; undo floor is now state-3
	snap, err := stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Text != "state-4" {
		t.Errorf("first undo = %q, want state-4", snap.Text)
	}
	snap, err = stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Text != "state-3" {
		t.Errorf("second undo = %q, want state-3", snap.Text)
	}
	if stack.CanUndo() {
		t.Error("state-1 and state-2 should have rolled off")
	}
}

func TestPushDeduplicatesCurrentState(t *testing.T) {
	stack := NewUndoStack(10)
	stack.Push("same", "1")
	stack.Push("same", "2")

	if stack.Size() != 1 {
		t.Errorf("size = %d, identical text should not stack", stack.Size())
	}
}

func TestUndoStackClear(t *testing.T) {
	stack := NewUndoStack(10)
	stack.Push("one", "")
	stack.Push("two", "")

	stack.Clear()

	if stack.Size() != 0 {
		t.Errorf("size = %d after clear", stack.Size())
	}
	if stack.CanUndo() || stack.CanRedo() {
		t.Error("cleared stack should allow neither undo nor redo")
	}
}

func TestUndoStackDefaultCapacity(t *testing.T) {
	stack := NewUndoStack(0)
	for i := 0; i < 150; i++ {
		stack.Push(fmt.Sprintf("state-%d", i), "")
	}
	if stack.Size() != 100 {
		t.Errorf("size = %d, want default capacity 100", stack.Size())
	}
}
