package models

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"transcribeasy/internal/domain"
)

// Watcher observes the model directory so that a model file deleted
// outside the app downgrades its record without waiting for the next
// startup reconciliation.
type Watcher struct {
	manager  *Manager
	catalog  *Catalog
	modelDir string
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher builds a watcher for the manager's model directory.
func NewWatcher(manager *Manager, catalog *Catalog, modelDir string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		manager:  manager,
		catalog:  catalog,
		modelDir: modelDir,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The model directory is created if needed so the
// watch can attach on a fresh install.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.modelDir, 0o755); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.modelDir); err != nil {
		_ = fsw.Close()
		return err
	}

	w.fsw = fsw
	go w.loop()
	return nil
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	close(w.done)
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if id, known := w.modelForFile(filepath.Base(event.Name)); known {
				w.manager.NoteExternalRemoval(id)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model directory watch error", zap.Error(err))
		}
	}
}

// modelForFile maps a file name inside the model directory back to its
// catalog ID. Temp files never match.
func (w *Watcher) modelForFile(name string) (domain.ModelID, bool) {
	if strings.HasSuffix(name, partSuffix) {
		return "", false
	}
	for _, entry := range w.catalog.Entries() {
		if entry.FileName == name {
			return entry.ID, true
		}
	}
	return "", false
}
