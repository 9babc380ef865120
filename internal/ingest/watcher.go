package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher reports created or modified files under a set of directories.
// Bursts of events for the same file are debounced into one.
type Watcher struct {
	roots    []string
	match    func(path string) bool
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets a logger for debug output.
func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a changed file is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over roots, recursively. match filters which
// files are reported; nil reports every file.
func NewWatcher(roots []string, match func(path string) bool, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		roots:    roots,
		match:    match,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. handle is called on the calling
// goroutine, one path at a time. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle func(ctx context.Context, path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := w.addTree(fw, root); err != nil {
			return err
		}
	}
	w.logger.Debug("watcher started", zap.Strings("roots", w.roots))

	ready := make(chan string)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-ready:
			handle(ctx, path)
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, ev, ready)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event, ready chan<- string) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := w.addTree(fw, ev.Name); err != nil {
			w.logger.Warn("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
		}
		// Files moved in with the directory produce no events of their own.
		_ = filepath.WalkDir(ev.Name, func(p string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() && w.matches(p) {
				w.schedule(ctx, p, ready)
			}
			return nil
		})
		return
	}
	if w.matches(ev.Name) {
		w.schedule(ctx, ev.Name, ready)
	}
}

func (w *Watcher) matches(path string) bool {
	return w.match == nil || w.match(path)
}

func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fw.Add(path)
	})
}
