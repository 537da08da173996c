package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
)

// DefaultDebounce is how long the watcher waits for more changes before firing
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per burst of changes with the changed JSON files,
// relative to the watched root and slash separated
type Handler func(ctx context.Context, changed []string)

// Watcher watches a data directory for JSON file changes
type Watcher struct {
	root     string
	debounce time.Duration
	handler  Handler
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}

	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher for root. Start must be called to begin watching.
func New(root string, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		handler:  handler,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds watches below root and begins processing events in background
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(ctx, w.root); err != nil {
		return err
	}

	w.started = true
	go w.run(ctx)

	logging.From(ctx).Info("Data directory watcher started",
		"root", w.root,
		"debounce", w.debounce.String())
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (w *Watcher) Stop() error {
	if w.started {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		return goerr.Wrap(err, "failed to close fsnotify watcher")
	}
	return nil
}

func (w *Watcher) addRecursive(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return goerr.Wrap(err, "failed to walk data directory", goerr.V("path", path))
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logging.From(ctx).Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.handleEvent(ctx, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.From(ctx).Error("Watcher error", "error", err)

		case <-timer.C:
			if changed := w.drain(); len(changed) > 0 {
				w.handler(ctx, changed)
			}
		}
	}
}

// handleEvent records a relevant change and reports whether one was recorded
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ctx, event.Name); err != nil {
				logging.From(ctx).Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return false
		}
	}

	if !isDataFile(event.Name) {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	w.mu.Unlock()
	return true
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	clear(w.pending)
	slices.Sort(changed)
	return changed
}

func isDataFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".json") && !strings.HasPrefix(base, ".")
}
