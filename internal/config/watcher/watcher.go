// Package watcher reloads a rule-set file when it changes on disk.
//
// The watcher observes the file's directory rather than the file itself so
// that editors which save by writing a temporary file and renaming it over
// the original are still seen. Bursts of events are coalesced and delivered
// once the file has been quiet for the debounce interval.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Run when the underlying watcher is closed.
var ErrClosed = errors.New("watcher closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last coalesced change was seen.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, or renamed into place.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
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

// Logger receives diagnostics. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Watcher monitors one file for changes.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   Logger

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is delivered.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path. The file's directory must exist; the
// file itself may be created later.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{
		path:     absPath,
		fsw:      fsw,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change events until ctx is cancelled or the watcher is
// closed. Pending coalesced events are dropped on cancellation. Run closes
// the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	var (
		pending *Event
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			event, relevant := w.translate(ev)
			if !relevant {
				continue
			}
			w.logger.Debug("rule set %s: %s", event.Op, event.Path)
			pending = coalesce(pending, event)

			if w.debounce <= 0 {
				w.emit(*pending)
				pending = nil
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending != nil {
				w.emit(*pending)
				pending = nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("watch error on %s: %v", w.path, err)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	if filepath.Clean(ev.Name) != w.path {
		return Event{}, false
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Remove):
		op = OpRemove
	case ev.Has(fsnotify.Rename):
		op = OpRename
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	default:
		return Event{}, false
	}
	return Event{Path: w.path, Op: op, Time: time.Now()}, true
}

// coalesce folds a new event into the pending one:
// create + write => create, write + write => write, any + remove => remove,
// and a create after a remove or rename means the file is back.
func coalesce(pending *Event, event Event) *Event {
	if pending == nil {
		return &event
	}

	next := *pending
	next.Time = event.Time
	switch event.Op {
	case OpRemove, OpRename, OpCreate:
		next.Op = event.Op
	case OpWrite:
		if pending.Op == OpRemove || pending.Op == OpRename {
			next.Op = OpCreate
		}
	}
	return &next
}

// emit calls the handler with panic recovery to keep the watcher running.
func (w *Watcher) emit(event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("reload handler panicked: %v", r)
		}
	}()
	if w.handler != nil {
		w.handler(event)
	}
}
