// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a single deck file, or every deck in one directory, and debounces
// the bursts of events editors produce for a single save.
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// DefaultDebounce is how long a deck must stay quiet before onChange fires.
const DefaultDebounce = 100 * time.Millisecond

// DeckExtension marks files picked up when a directory is watched.
const DeckExtension = ".nec"

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	logger   ports.Logger
	debounce time.Duration

	done    chan struct{}
	stopped bool
	timers  map[string]*time.Timer
	mu      sync.Mutex
}

// NewWatcher creates a new deck watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(logger ports.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fw:       fw,
		logger:   logger,
		debounce: debounce,
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring path. When path is a file only that file is
// reported; when it is a directory every *.nec file directly inside it is.
// The parent directory is watched in the file case so atomic saves, which
// replace the file, keep being seen.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	dir := absPath
	match := isDeckFile
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
		match = func(p string) bool { return p == absPath }
	}
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("Watching decks", "path", absPath)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !match(event.Name) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					w.schedule(event.Name, onChange)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Watcher error", "error", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			onChange(path)
		}
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	close(w.done)
	return w.fw.Close()
}

func isDeckFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), DeckExtension)
}
