package storage

import (
	"path/filepath"
	"testing"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStoreWithPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryStoreWithPath() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestHistoryRecentDocuments(t *testing.T) {
	s := newTestHistory(t)

	for _, path := range []string{"/data/a.json", "/data/b.json", "/data/c.json"} {
		if err := s.TouchDocument(path, 3); err != nil {
			t.Fatalf("TouchDocument(%s) error = %v", path, err)
		}
	}
	// Re-open the first document; it should move to the top.
	if err := s.TouchDocument("/data/a.json", 5); err != nil {
		t.Fatalf("TouchDocument() error = %v", err)
	}

	recent, err := s.RecentDocuments(10)
	if err != nil {
		t.Fatalf("RecentDocuments() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentDocuments() = %d entries, want 3", len(recent))
	}
	if recent[0].Path != "/data/a.json" {
		t.Errorf("most recent = %s, want /data/a.json", recent[0].Path)
	}
	if recent[0].OpenCount != 2 {
		t.Errorf("open count = %d, want 2", recent[0].OpenCount)
	}
	if recent[0].NodeCount != 5 {
		t.Errorf("node count = %d, want 5 after re-open", recent[0].NodeCount)
	}
	if recent[0].OpenedAt.IsZero() {
		t.Error("opened_at is zero")
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	s := newTestHistory(t)
	for _, path := range []string{"/a", "/b", "/c"} {
		if err := s.TouchDocument(path, 0); err != nil {
			t.Fatalf("TouchDocument() error = %v", err)
		}
	}
	recent, err := s.RecentDocuments(2)
	if err != nil {
		t.Fatalf("RecentDocuments() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("RecentDocuments(2) = %d entries, want 2", len(recent))
	}
}

func TestHistoryEdits(t *testing.T) {
	s := newTestHistory(t)

	id1, err := s.RecordEdit("/data/a.json", `$["users"][0]`, "replaced name")
	if err != nil {
		t.Fatalf("RecordEdit() error = %v", err)
	}
	if id1 == "" {
		t.Fatal("RecordEdit() returned empty id")
	}
	id2, err := s.RecordEdit("/data/a.json", `$["users"][1]`, "")
	if err != nil {
		t.Fatalf("RecordEdit() error = %v", err)
	}
	if _, err := s.RecordEdit("/data/other.json", "$", "whole document"); err != nil {
		t.Fatalf("RecordEdit() error = %v", err)
	}

	edits, err := s.EditsFor("/data/a.json", 10)
	if err != nil {
		t.Fatalf("EditsFor() error = %v", err)
	}
	if len(edits) != 2 {
		t.Fatalf("EditsFor() = %d entries, want 2", len(edits))
	}
	if edits[0].ID != id2 {
		t.Errorf("newest edit id = %s, want %s", edits[0].ID, id2)
	}
	if edits[1].NodePath != `$["users"][0]` || edits[1].Summary != "replaced name" {
		t.Errorf("oldest edit = %+v", edits[1])
	}
}

func TestHistoryForgetDocument(t *testing.T) {
	s := newTestHistory(t)

	if err := s.TouchDocument("/data/a.json", 1); err != nil {
		t.Fatalf("TouchDocument() error = %v", err)
	}
	if _, err := s.RecordEdit("/data/a.json", "$", ""); err != nil {
		t.Fatalf("RecordEdit() error = %v", err)
	}

	if err := s.ForgetDocument("/data/a.json"); err != nil {
		t.Fatalf("ForgetDocument() error = %v", err)
	}

	recent, err := s.RecentDocuments(10)
	if err != nil {
		t.Fatalf("RecentDocuments() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("recent after forget = %d entries, want 0", len(recent))
	}
	edits, err := s.EditsFor("/data/a.json", 10)
	if err != nil {
		t.Fatalf("EditsFor() error = %v", err)
	}
	if len(edits) != 0 {
		t.Errorf("edits after forget = %d entries, want 0", len(edits))
	}
}

func TestHistorySchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := NewHistoryStoreWithPath(path)
	if err != nil {
		t.Fatalf("first open error = %v", err)
	}
	if err := s1.TouchDocument("/a", 1); err != nil {
		t.Fatalf("TouchDocument() error = %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening must not rerun migration 1 or lose data.
	s2, err := NewHistoryStoreWithPath(path)
	if err != nil {
		t.Fatalf("second open error = %v", err)
	}
	defer func() { _ = s2.Close() }()
	recent, err := s2.RecentDocuments(10)
	if err != nil || len(recent) != 1 {
		t.Errorf("RecentDocuments() = %v, %v, want 1 entry", recent, err)
	}
}
