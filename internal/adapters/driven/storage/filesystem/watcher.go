package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Watcher reports PDFs appearing in or disappearing from a directory,
// including files copied in without going through the store.
type Watcher struct {
	dir      string
	onChange func(name string)
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWatcher watches dir, creating it if needed. onChange receives the
// base name of each changed PDF.
func NewWatcher(dir string, onChange func(name string)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watcher callback is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create watched directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start delivers events until ctx is cancelled or Close is called.
// Calling Start more than once has no effect.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop(ctx)
	logger.Debug("watching %s for PDF changes", w.dir)
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if relevant(event) {
				name := filepath.Base(event.Name)
				logger.Debug("upload folder changed: %s %s", event.Op, name)
				w.onChange(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("upload watcher: %v", err)
		}
	}
}

// relevant keeps create, write, remove and rename events on visible PDFs.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !IsPDF(name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.done
	}
	return err
}
