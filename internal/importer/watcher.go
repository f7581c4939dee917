// This file implements the drop-directory watcher. Spreadsheets placed in
// the watched directory are imported automatically and renamed afterwards
// so they are not picked up twice.

package importer

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a drop directory for spreadsheet files and imports them.
type Watcher struct {
	svc       *Service
	path      string
	watcher   *fsnotify.Watcher
	pending   map[string]bool
	mu        sync.Mutex
	debounce  *time.Timer
	debounceD time.Duration
	stopChan  chan struct{}
}

// NewWatcher creates a watcher over the given drop directory.
func NewWatcher(svc *Service, path string) *Watcher {
	return &Watcher{
		svc:  svc,
		path: path,
		// Wait for writes to settle before importing a dropped file.
		debounceD: 2 * time.Second,
		pending:   make(map[string]bool),
		stopChan:  make(chan struct{}),
	}
}

// Start begins watching the drop directory.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Import watcher started for directory: %s", w.path)
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Import watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !isSpreadsheet(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = true
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceD, w.importPending)
	w.mu.Unlock()
}

func (w *Watcher) importPending() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue // removed before we got to it
		}
		result, err := w.svc.ImportFile(path)
		if err != nil {
			log.Printf("Import of %s failed: %v", path, err)
			continue
		}
		log.Printf("Imported %s: %d cases added, %d skipped", filepath.Base(path), result.Imported, result.Skipped)
		if err := os.Rename(path, path+".imported"); err != nil {
			log.Printf("Could not rename %s after import: %v", path, err)
		}
	}
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
