package tui

import (
	"errors"
	"time"
)

// docSnapshot represents a point-in-time state of the open document
type docSnapshot struct {
	// Text is the full document contents
	Text string
	// SelectedID is the canvas selection at snapshot time
	SelectedID string
	// Timestamp records when the snapshot was taken
	Timestamp time.Time
}

// UndoStack manages undo/redo history as a timeline of document states.
// The cursor always points at the current state; the snapshot at index 0
// is the document as it was opened.
type UndoStack struct {
	snapshots []docSnapshot
	cursor    int
	capacity  int
}

// NewUndoStack creates a new undo stack with the specified capacity
func NewUndoStack(capacity int) *UndoStack {
	if capacity <= 0 {
		capacity = 100 // Default capacity
	}

	return &UndoStack{
		snapshots: make([]docSnapshot, 0, capacity),
		cursor:    -1,
		capacity:  capacity,
	}
}

// Push records a new current state.
// Any redo history beyond the cursor is discarded. Pushing text identical
// to the current state is a no-op so repeated saves do not pollute history.
func (u *UndoStack) Push(text, selectedID string) {
	if u.cursor >= 0 && u.snapshots[u.cursor].Text == text {
		return
	}

	snapshot := docSnapshot{
		Text:       text,
		SelectedID: selectedID,
		Timestamp:  time.Now(),
	}

	if u.cursor < len(u.snapshots)-1 {
		u.snapshots = u.snapshots[:u.cursor+1]
	}

	if len(u.snapshots) >= u.capacity {
		// Circular buffer: drop the oldest snapshot
		copy(u.snapshots, u.snapshots[1:])
		u.snapshots[len(u.snapshots)-1] = snapshot
	} else {
		u.snapshots = append(u.snapshots, snapshot)
	}
	u.cursor = len(u.snapshots) - 1
}

// Undo moves back one state and returns it
func (u *UndoStack) Undo() (*docSnapshot, error) {
	if !u.CanUndo() {
		return nil, errors.New("nothing to undo")
	}

	u.cursor--
	return &u.snapshots[u.cursor], nil
}

// Redo moves forward one state and returns it
func (u *UndoStack) Redo() (*docSnapshot, error) {
	if !u.CanRedo() {
		return nil, errors.New("nothing to redo")
	}

	u.cursor++
	return &u.snapshots[u.cursor], nil
}

// CanUndo returns true if an earlier state exists
func (u *UndoStack) CanUndo() bool {
	return u.cursor > 0
}

// CanRedo returns true if a later state exists
func (u *UndoStack) CanRedo() bool {
	return len(u.snapshots) > 0 && u.cursor < len(u.snapshots)-1
}

// Clear resets the undo stack
func (u *UndoStack) Clear() {
	u.snapshots = make([]docSnapshot, 0, u.capacity)
	u.cursor = -1
}

// Size returns the current number of snapshots
func (u *UndoStack) Size() int {
	return len(u.snapshots)
}
