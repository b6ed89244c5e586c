package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kobzarvs/qblocks/internal/block"
)

func TestDocumentPathUsesStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	path, err := DocumentPath()
	if err != nil {
		t.Fatalf("DocumentPath error: %v", err)
	}
	if want := filepath.Join("/tmp/state", "qblocks", "document.json"); path != want {
		t.Fatalf("DocumentPath = %q, want %q", path, want)
	}
}

func TestMissingFileStartsEmpty(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "doc.json"), 0)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	doc, loaded := m.Document()
	if loaded || len(doc.Blocks) != 0 {
		t.Fatalf("Document = %#v, loaded %v", doc, loaded)
	}
	if m.Dirty() {
		t.Fatalf("fresh manager is dirty")
	}
}

func TestTrackSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	m, err := NewManager(path, 0)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	s, err := block.New("Notes", nil, block.Options{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer m.Track(s)()

	first := s.Blocks()[0].ID
	id, _ := s.InsertAfter(first, block.TypeTodo)
	s.Update(id, "ship it")
	if !m.Dirty() {
		t.Fatalf("mutation did not mark the document dirty")
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if m.Dirty() || m.LastSaved().IsZero() {
		t.Fatalf("Save left dirty=%v lastSaved=%v", m.Dirty(), m.LastSaved())
	}

	reopened, err := NewManager(path, 0)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	doc, loaded := reopened.Document()
	if !loaded || doc.Title != "Notes" || len(doc.Blocks) != 2 || doc.Blocks[1].Content != "ship it" {
		t.Fatalf("reloaded = %#v", doc)
	}
}

func TestInvalidFileIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"blocks":[{"id":"a","type":"paragraph","indent":9}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewManager(path, 0); err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("NewManager error = %v, want invalid document error", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"indent":9`) {
		t.Fatalf("damaged file was rewritten")
	}
}

func TestAutosaveAndStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	m, err := NewManager(path, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	m.Update(block.Document{Title: "auto", Blocks: []block.Block{{ID: "a", Type: block.TypeParagraph}}})

	deadline := time.Now().Add(2 * time.Second)
	for m.Dirty() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Dirty() {
		t.Fatalf("autosave did not run")
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not written: %v", err)
	}
}

func TestStopWithoutDocumentWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	m, err := NewManager(path, 0)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat = %v, want no file", err)
	}
}

func TestStopSavesUntouchedTrackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	m, err := NewManager(path, 0)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	s, err := block.New("Fresh", nil, block.Options{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	untrack := m.Track(s)
	defer untrack()
	if m.Dirty() {
		t.Fatalf("tracking marked the document dirty")
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	reopened, err := NewManager(path, 0)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	doc, loaded := reopened.Document()
	if !loaded || doc.Title != "Fresh" || len(doc.Blocks) != 1 {
		t.Fatalf("reloaded = %#v", doc)
	}
}
