// Package tracker runs the settle cycle for one changed file: hash gate,
// diff, syntax annotation, conversation and git correlation, log append and
// state update.
package tracker

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"agenttrace/internal/conversation"
	"agenttrace/internal/diff"
	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
	"agenttrace/internal/repostate"
	"agenttrace/internal/state"
	"agenttrace/internal/syntax"
	"agenttrace/internal/tracelog"
	"agenttrace/internal/watcher"
)

// Options configures a Processor.
type Options struct {
	Root            string
	ConversationLog string
	WindowSize      int
	GitContext      bool
	// Session identifies the watcher run; a random UUID when empty.
	Session string
}

// Processor turns settled file events into trace entries. Process calls must
// not overlap; the watcher delivers events from one goroutine.
type Processor struct {
	opts      Options
	store     *state.Store
	writer    *tracelog.Writer
	annotator *syntax.Annotator
	logger    *slog.Logger

	now     func() time.Time
	gitInfo func(ctx context.Context, root string) repostate.GitInfo

	entropyMu sync.Mutex
	entropy   io.Reader
}

// New creates a Processor. The store and writer are owned by the caller.
func New(opts Options, store *state.Store, writer *tracelog.Writer, annotator *syntax.Annotator, logger *slog.Logger) *Processor {
	if opts.Session == "" {
		opts.Session = uuid.New().String()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if annotator == nil {
		annotator = syntax.NewAnnotator(nil, logger)
	}
	return &Processor{
		opts:      opts,
		store:     store,
		writer:    writer,
		annotator: annotator,
		logger:    logger,
		now:       time.Now,
		gitInfo:   repostate.ComputeGitInfo,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Session returns the run identifier stamped on every entry.
func (p *Processor) Session() string {
	return p.opts.Session
}

// HandleEvent is the watcher.Handler for a Processor. Failures are logged
// and confined to the event's cycle.
func (p *Processor) HandleEvent(ctx context.Context, ev watcher.Event) {
	entry, err := p.Process(ctx, ev.Path)
	if err != nil {
		if errors.Is(err, errors.ReadFailed) {
			p.logger.Debug("Skipping unreadable file", "path", ev.Rel, "error", err.Error())
			return
		}
		p.logger.Warn("Trace cycle failed", "path", ev.Rel, "error", err.Error())
		return
	}
	if entry != nil {
		p.logger.Info("Traced change", "file", entry.File, "summary", entry.Summary)
	}
}

// Process runs one settle cycle for absPath and returns the appended entry.
// It returns a nil entry without error when the file vanished, is not a
// regular file, lies outside the root or matches the recorded hash. State
// is updated only after the entry has been appended.
func (p *Processor) Process(ctx context.Context, absPath string) (*tracelog.Entry, error) {
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New(errors.ReadFailed, "Cannot stat file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	rel := paths.RelativeTo(p.opts.Root, absPath)
	if rel == "" {
		return nil, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.New(errors.ReadFailed, "Cannot read file", err)
	}
	text := string(data)

	prev, seen := p.store.Get(rel)
	hash := diff.ContentHash(text)
	if seen && prev.Hash == hash {
		return nil, nil
	}

	change := diff.Compute(prev.Content, text)
	result := p.annotator.Annotate(ctx, absPath, text, change.Hunks)

	git := repostate.GitInfo{}
	if p.opts.GitContext {
		git = p.gitInfo(ctx, p.opts.Root)
	}

	now := p.now().UTC()
	timestamp := now.Format(time.RFC3339)
	entry := &tracelog.Entry{
		TraceEntry:         true,
		SchemaVersion:      tracelog.SchemaVersion,
		ID:                 p.newID(now),
		Session:            p.opts.Session,
		Timestamp:          timestamp,
		Conversation:       conversation.Latest(p.opts.ConversationLog),
		ConversationWindow: conversation.Window(p.opts.ConversationLog, p.opts.WindowSize),
		File:               rel,
		Change:             change,
		AST:                result,
		Git:                git,
		Summary:            tracelog.BuildSummary(change, result.Nodes),
	}

	if err := p.writer.Append(entry); err != nil {
		return nil, err
	}

	p.store.Put(rel, state.FileState{Hash: hash, Content: text, UpdatedAt: timestamp})
	if err := p.store.Save(); err != nil {
		return entry, errors.New(errors.WriteFailed, "Cannot save state", err)
	}
	return entry, nil
}

func (p *Processor) newID(t time.Time) string {
	p.entropyMu.Lock()
	defer p.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), p.entropy).String()
}
