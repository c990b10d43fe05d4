// Package watcher watches a directory tree and reports each file once writes
// to it have settled for the debounce period.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
)

// DefaultDebounce is the quiet period before a changed file is processed.
const DefaultDebounce = 800 * time.Millisecond

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	default:
		return "unknown"
	}
}

// Event is a settled change to one file.
type Event struct {
	Type      EventType
	Path      string // absolute
	Rel       string // slash-separated, relative to the watched root
	Timestamp time.Time
}

// Handler processes one settled event. Handlers run one at a time.
type Handler func(ctx context.Context, ev Event)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Excludes *Excludes
}

// Stats reports watcher counters.
type Stats struct {
	WatchedDirs int    `json:"watchedDirs"`
	Pending     int    `json:"pending"`
	Settled     uint64 `json:"settled"`
	Excluded    uint64 `json:"excluded"`
}

// Watcher watches a root directory recursively
type Watcher struct {
	root      string
	excludes  *Excludes
	logger    *slog.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	settled   chan Event

	settledCount  atomic.Uint64
	excludedCount atomic.Uint64
}

// New creates a watcher over root and registers every non-excluded directory
// beneath it. Changes made after New returns are observed by Run.
func New(root string, opts Options, logger *slog.Logger) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.PathUnresolved, "Cannot resolve watch root", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.New(errors.PathUnresolved, "Watch root does not exist", err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.PathUnresolved, "Watch root is not a directory", nil).
			WithDetails(map[string]string{"root": absRoot})
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Excludes == nil {
		opts.Excludes = NewExcludes()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to create file watcher", err)
	}

	w := &Watcher{
		root:      absRoot,
		excludes:  opts.Excludes,
		logger:    logger,
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(opts.Debounce),
		settled:   make(chan Event, 64),
	}

	if err := w.addTree(context.Background(), absRoot, false); err != nil {
		_ = fsWatcher.Close()
		return nil, errors.New(errors.PathUnresolved, "Failed to watch root", err)
	}
	return w, nil
}

// Root returns the absolute watched root.
func (w *Watcher) Root() string {
	return w.root
}

// Run dispatches filesystem notifications until ctx is cancelled. Settled
// events are handed to handler sequentially from a single goroutine. On
// cancellation pending timers are abandoned and Run returns after any
// in-flight handler call finishes.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.settled:
				handler(ctx, ev)
			}
		}
	}()

	w.logger.Info("Watching", "root", w.root, "debounce", w.debouncer.Delay().String())

	defer func() {
		w.debouncer.Cancel()
		_ = w.fsWatcher.Close()
		wg.Wait()
		w.logger.Info("Watcher stopped", "settled", w.settledCount.Load())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", "error", err.Error())
		}
	}
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	return Stats{
		WatchedDirs: len(w.fsWatcher.WatchList()),
		Pending:     w.debouncer.Pending(),
		Settled:     w.settledCount.Load(),
		Excluded:    w.excludedCount.Load(),
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// Only track writes and creates
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	rel := paths.RelativeTo(w.root, event.Name)
	if rel == "" || rel == "." {
		return
	}
	if w.excludes.Match(rel) {
		w.excludedCount.Add(1)
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(ctx, event.Name, true); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", rel, "error", err.Error())
			}
			return
		}
		w.schedule(ctx, EventCreate, event.Name, rel)
		return
	}

	w.schedule(ctx, EventModify, event.Name, rel)
}

func (w *Watcher) schedule(ctx context.Context, typ EventType, abs, rel string) {
	w.debouncer.Trigger(abs, func() {
		ev := Event{Type: typ, Path: abs, Rel: rel, Timestamp: time.Now().UTC()}
		select {
		case w.settled <- ev:
			w.settledCount.Add(1)
		case <-ctx.Done():
		}
	})
}

// addTree watches dir and every non-excluded directory below it. With
// announce set, files already present are scheduled as creations; they may
// have been written before the directory watch existed.
func (w *Watcher) addTree(ctx context.Context, dir string, announce bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			w.logger.Debug("Skipping unreadable path", "path", p, "error", err.Error())
			return nil
		}

		rel := paths.RelativeTo(w.root, p)
		if rel != "." && rel != "" && w.excludes.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			if announce {
				w.schedule(ctx, EventCreate, p, rel)
			}
			return nil
		}

		if err := w.fsWatcher.Add(p); err != nil {
			if p == dir {
				return err
			}
			w.logger.Warn("Failed to watch directory", "path", rel, "error", err.Error())
		}
		return nil
	})
}
