// Package watcher reports changes to configuration files.
//
// Files are watched through their parent directory, so editors that save
// by writing a new file and renaming it over the old one are still seen.
// Bursts of changes to one file are coalesced into a single event.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Errors returned by the watcher.
var (
	ErrWatcherClosed = errors.New("watcher closed")
	ErrNotWatching   = errors.New("path not watched")
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the last operation seen during the debounce window.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// ErrorHandler is called for errors reported by the underlying watcher.
type ErrorHandler func(err error)

// Watcher monitors files for changes. Handlers run on the watcher's own
// goroutine, one event at a time.
type Watcher struct {
	mu sync.Mutex

	fsw   *fsnotify.Watcher
	files map[string]struct{}
	dirs  map[string]int

	handlers []Handler
	onError  ErrorHandler

	debounce time.Duration
	pending  map[string]*pendingEvent
	fire     chan string

	running bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives errors from the file system notifier.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) { w.onError = h }
}

// New creates a file watcher. It does nothing until Start is called.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingEvent),
		fire:     make(chan string, 16),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file. The file may not exist yet, but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return ErrNotWatching
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins delivering events.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.closed {
		return
	}
	w.running = true
	go w.loop()
}

// Stop ends delivery and releases the notifier. A stopped watcher cannot
// be restarted.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.running = false
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.stop)
	w.mu.Unlock()

	if running {
		<-w.done
	}
	return w.fsw.Close()
}

// IsRunning reports whether the watcher is delivering events.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// WatchedFiles returns the watched paths in sorted order.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.queue(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}

		case path := <-w.fire:
			w.emit(path)
		}
	}
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return 0, false
	}
}

// queue starts or extends the debounce window for a watched file.
func (w *Watcher) queue(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, watched := w.files[abs]; !watched || w.closed {
		return
	}

	event := Event{Path: abs, Op: op, Time: time.Now()}
	if p, ok := w.pending[abs]; ok {
		p.event = event
		p.timer.Reset(w.debounce)
		return
	}
	w.pending[abs] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(w.debounce, func() {
			select {
			case w.fire <- abs:
			case <-w.stop:
			}
		}),
	}
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	handlers := slices.Clone(w.handlers)
	w.mu.Unlock()

	if !ok {
		return
	}
	for _, h := range handlers {
		safeCall(h, p.event)
	}
}

func safeCall(h Handler, event Event) {
	defer func() {
		// a failing handler must not stop the watcher
		_ = recover()
	}()
	h(event)
}
