package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/logger"
)

// Manager owns the document file: it loads it once, tracks unsaved
// changes and writes them back on an autosave ticker and on Stop.
type Manager struct {
	mu        sync.RWMutex
	doc       block.Document
	path      string
	loaded    bool
	dirty     bool
	lastSaved time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewManager opens the document at path, or at DocumentPath when path is
// empty. A missing file is not an error; an unreadable or invalid one is,
// so a damaged document is never overwritten. With interval > 0 changes
// are autosaved at that period.
func NewManager(path string, interval time.Duration) (*Manager, error) {
	if path == "" {
		p, err := DocumentPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	m := &Manager{
		path:     path,
		stopChan: make(chan struct{}),
	}
	if err := m.load(); err != nil {
		return nil, err
	}

	if interval > 0 {
		go m.autosaveLoop(interval)
	}
	return m, nil
}

// DocumentPath is the default document location under the XDG state
// directory.
func DocumentPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qblocks", "document.json"), nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	doc, err := block.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", m.path, err)
	}
	m.doc = doc
	m.loaded = true
	logger.Info("document loaded", "path", m.path, "blocks", len(doc.Blocks))
	return nil
}

// Document returns the current document and whether it came from disk.
func (m *Manager) Document() (block.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc, m.loaded
}

// Update replaces the document and marks it dirty. The caller hands over
// ownership of doc.
func (m *Manager) Update(doc block.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc
	m.dirty = true
}

// Track adopts the store's current document without marking it dirty and
// subscribes so every committed mutation is recorded. It returns the
// unsubscribe function.
func (m *Manager) Track(s *block.Store) func() {
	doc := s.Document()
	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()
	return s.Subscribe(func(snap block.Snapshot) {
		m.Update(block.Document{Title: snap.Title, Blocks: snap.Blocks})
	})
}

func (m *Manager) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) LastSaved() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSaved
}

// Save writes the document if it has unsaved changes. The file is replaced
// atomically. A manager that has no document yet writes nothing.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}
	if len(m.doc.Blocks) == 0 {
		// never loaded or tracked
		return nil
	}

	data, err := block.Marshal(m.doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return err
	}

	m.dirty = false
	m.lastSaved = time.Now()
	logger.Debug("document saved", "path", m.path, "blocks", len(m.doc.Blocks))
	return nil
}

// ForceSave saves even if not dirty
func (m *Manager) ForceSave() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Error("autosave failed", "path", m.path, "error", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop stops the autosave loop and saves final state
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	return m.ForceSave()
}
