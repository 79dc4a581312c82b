// Package watcher reloads files when they change on disk.
//
// It watches the parent directory of every registered file so that
// editors which save by renaming a temporary file are still noticed.
// Rapid changes are coalesced: the handler runs once the files have been
// quiet for the debounce delay.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are delivered.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates the file was created, or renamed into place.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a debounced change to one watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Exists reports whether the file should still be on disk after the change.
func (e Event) Exists() bool {
	return e.Op.Has(OpCreate) || e.Op.Has(OpWrite)
}

// Handler receives debounced events.
type Handler func(Event)

// Stats provides watcher status information.
type Stats struct {
	WatchedFiles int
	TotalEvents  int64
	Delivered    int64
	Errors       int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers events immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher delivers debounced change events for a set of files.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	// files are absolute paths; dirs counts watched files per directory.
	files map[string]bool
	dirs  map[string]int

	totalEvents int64
	delivered   int64
	errors      int64

	closed bool
}

// New creates a watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add starts watching path. The file itself need not exist yet, but its
// directory must.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[absPath] {
		return nil
	}

	delete(w.files, absPath)
	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.files))
}

// IsWatching returns true if path is being watched.
func (w *Watcher) IsWatching(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[absPath]
}

// Run delivers events to handler until ctx is done or the watcher is
// closed. The handler runs on Run's goroutine.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	pending := make(map[string]*Event)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		for _, path := range slices.Sorted(maps.Keys(pending)) {
			atomic.AddInt64(&w.delivered, 1)
			handler(*pending[path])
		}
		clear(pending)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			ev, ok := w.convert(fsEvent)
			if !ok {
				continue
			}
			atomic.AddInt64(&w.totalEvents, 1)

			if p, exists := pending[ev.Path]; exists {
				p.Op |= ev.Op
				p.Timestamp = ev.Timestamp
			} else {
				pending[ev.Path] = &ev
			}

			if w.debounce == 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			atomic.AddInt64(&w.errors, 1)
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// convert maps an fsnotify event on a watched file to an Event.
func (w *Watcher) convert(fsEvent fsnotify.Event) (Event, bool) {
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return Event{}, false
	}

	op := convertOp(fsEvent.Op)
	if op == 0 {
		return Event{}, false // chmod only
	}
	return Event{Path: path, Op: op, Timestamp: time.Now()}, true
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	files := len(w.files)
	w.mu.Unlock()

	return Stats{
		WatchedFiles: files,
		TotalEvents:  atomic.LoadInt64(&w.totalEvents),
		Delivered:    atomic.LoadInt64(&w.delivered),
		Errors:       atomic.LoadInt64(&w.errors),
	}
}

// Close stops the watcher; a running Run returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
