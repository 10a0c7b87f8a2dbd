// Package document holds the canonical JSON text of an open document and the
// editor-mirror buffer that tracks it. All mutation funnels through the
// Store: node edits are patched in by path, re-serialized in the canonical
// two-space form, and pushed to both the store contents and the mirror before
// subscribers (graph rebuild, text view) are notified.
package document

import (
	"sync"

	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// ChangeReason describes what caused a store update.
type ChangeReason string

// Change reasons reported to subscribers.
const (
	ReasonLoad     ChangeReason = "load"
	ReasonNodeEdit ChangeReason = "node-edit"
	ReasonDelete   ChangeReason = "delete"
	ReasonReplace  ChangeReason = "replace"
)

// Change is delivered to subscribers after the store contents update.
type Change struct {
	Reason   ChangeReason
	Revision uint64
	Contents string
	NodePath jsonpath.Path // set for node-edit and delete changes
}

// Store holds the canonical JSON text of the open document.
//
// The zero value is not usable; NewStore returns a store initialized with an
// empty object document. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	contents string
	revision uint64
	source   string
	mirror   *Mirror
	subs     []func(Change)
}

// NewStore creates a store holding an empty object document with a fresh
// mirror buffer.
func NewStore() *Store {
	s := &Store{contents: "{}", mirror: NewMirror()}
	s.mirror.Reset("{}")
	return s
}

// Mirror returns the editor-mirror buffer owned by this store.
func (s *Store) Mirror() *Mirror {
	return s.mirror
}

// Load replaces the document with text read from source (a file path or URL).
// The text is stored as given; callers that need validity use ParseValue or
// the graph builder, which report errors on their own terms. The mirror is
// reset to the loaded text and marked clean.
func (s *Store) Load(text, source string) {
	s.mu.Lock()
	s.contents = text
	s.source = source
	s.revision++
	change := s.changeLocked(ReasonLoad, nil)
	s.mu.Unlock()

	s.mirror.Reset(text)
	s.notify(change)
}

// Contents returns the current canonical document text.
func (s *Store) Contents() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contents
}

// Source returns the file path or URL the document was loaded from, if any.
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Revision returns a counter that increases with every store update.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SetContents replaces the document text wholesale, updating the mirror to
// match. Used by undo/redo and format-preserving rewrites.
func (s *Store) SetContents(text string) {
	s.mu.Lock()
	s.contents = text
	s.revision++
	change := s.changeLocked(ReasonReplace, nil)
	s.mu.Unlock()

	s.mirror.SetText(text)
	s.notify(change)
}

// SaveNodeText applies an edited node body to the document.
//
// The edited text must parse as a single JSON value; a parse failure is
// returned to the caller and no state changes. With an empty path the parsed
// value replaces the whole document. Otherwise the current document is
// parsed; if the current document itself does not parse, the edit falls back
// to full replacement. A parseable document is patched by walking the path,
// creating missing intermediate containers (array for index segments, object
// for key segments) and assigning the value at the final segment. The
// re-stringified result is written to the store and the mirror, and
// subscribers are notified.
func (s *Store) SaveNodeText(path jsonpath.Path, edited string) error {
	value, err := ParseValue(edited)
	if err != nil {
		return err
	}

	s.mu.Lock()
	var nextText string
	if len(path) == 0 {
		nextText, err = Stringify(value)
	} else if root, perr := ParseValue(s.contents); perr != nil {
		// Unparseable current document: the edit becomes the document.
		nextText, err = Stringify(value)
	} else {
		var patched interface{}
		patched, err = SetValueAtPath(root, path, value)
		if err == nil {
			nextText, err = Stringify(patched)
		}
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.contents = nextText
	s.revision++
	change := s.changeLocked(ReasonNodeEdit, path)
	s.mu.Unlock()

	s.mirror.SetText(nextText)
	s.notify(change)
	return nil
}

// DeleteAtPath removes the value at path from the document. The document
// must currently parse; the result is re-stringified and propagated like a
// node edit. Deleting the empty path resets the document to "{}".
func (s *Store) DeleteAtPath(path jsonpath.Path) error {
	s.mu.Lock()
	root, err := ParseValue(s.contents)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	remaining, err := DeleteValueAtPath(root, path)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	nextText, err := Stringify(remaining)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.contents = nextText
	s.revision++
	change := s.changeLocked(ReasonDelete, path)
	s.mu.Unlock()

	s.mirror.SetText(nextText)
	s.notify(change)
	return nil
}

// Subscribe registers fn to receive every subsequent store change.
// Callbacks run on the mutating goroutine after the store lock is released;
// they may read the store but should return quickly.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) changeLocked(reason ChangeReason, path jsonpath.Path) Change {
	return Change{
		Reason:   reason,
		Revision: s.revision,
		Contents: s.contents,
		NodePath: path.Clone(),
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	subs := make([]func(Change), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}

// Mirror is the editor-pane buffer paired with a Store. It tracks the text an
// editor widget displays plus the last text flushed to disk, so views can
// show an unsaved-changes indicator.
type Mirror struct {
	mu    sync.RWMutex
	text  string
	saved string
}

// NewMirror creates an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{}
}

// SetText updates the buffer text without touching the saved baseline.
func (m *Mirror) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// Text returns the current buffer text.
func (m *Mirror) Text() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text
}

// Dirty reports whether the buffer differs from the last saved baseline.
func (m *Mirror) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text != m.saved
}

// MarkSaved records the current text as the on-disk baseline.
func (m *Mirror) MarkSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = m.text
}

// Reset replaces the text and baseline together, leaving the buffer clean.
func (m *Mirror) Reset(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.saved = text
}
