package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agenttrace/internal/config"
	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
	"agenttrace/internal/repostate"
	"agenttrace/internal/state"
	"agenttrace/internal/syntax"
	"agenttrace/internal/tracelog"
	"agenttrace/internal/tracker"
	"agenttrace/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the root and append a trace entry for every settled change",
	Long: `Watch the repository root recursively. Writes to a file are coalesced until
the file has been quiet for the debounce interval; then the file is diffed
against its last recorded content and a trace entry is appended to the log.

Stop with Ctrl+C. State is saved after every entry.

Examples:
  agenttrace watch
  agenttrace watch --conversation-log .agent/conversation.jsonl --window 8
  agenttrace watch --root ../repo --log docs/agent-trace.md --debounce-ms 500`,
	RunE: runWatch,
}

func init() {
	d := config.DefaultConfig()
	watchCmd.Flags().String("log", d.Watch.TraceLog, "Trace log path, relative to the root")
	watchCmd.Flags().String("conversation-log", "", "JSONL conversation log to correlate changes with")
	watchCmd.Flags().String("state", d.Watch.StateFile, "State file path, relative to the root")
	watchCmd.Flags().Int("debounce-ms", d.Watch.DebounceMs, "Quiet period before a change is processed")
	watchCmd.Flags().Int("window", d.Watch.WindowSize, "Number of recent conversation turns stored per entry")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, root)
	if err != nil {
		return err
	}
	defer closeLog()

	logPath := traceLogPath(cfg, root)
	statePath := paths.Resolve(root, cfg.Watch.StateFile)
	conversationPath, err := conversationLogPath(cmd, cfg, root)
	if err != nil {
		return err
	}

	writer, err := tracelog.NewWriter(logPath)
	if err != nil {
		return err
	}

	store, err := state.Load(statePath)
	if err != nil {
		logger.Warn("State file unreadable, starting empty", "path", statePath, "error", err)
	}

	excludes := watchExcludes(cfg, root, logPath, statePath, conversationPath)
	w, err := watcher.New(root, watcher.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Excludes: excludes,
	}, logger)
	if err != nil {
		return err
	}

	annotator := syntax.NewAnnotator(syntax.NewRegistry(), logger)
	proc := tracker.New(tracker.Options{
		Root:            root,
		ConversationLog: conversationPath,
		WindowSize:      cfg.Watch.WindowSize,
		GitContext:      cfg.Watch.GitContext,
	}, store, writer, annotator, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.GitContext {
		if top, err := repostate.GetRepoRoot(ctx, root); err != nil {
			logger.Info("Root is not inside a git repository, git context will be empty", "root", root)
		} else if top != root {
			logger.Debug("Watching a subdirectory of a repository", "repo", top)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (trace log: %s, Ctrl+C to stop)\n", root, logPath)
	logger.Info("Watcher started",
		"root", root,
		"session", proc.Session(),
		"tracked", store.Len(),
		"excludes", len(excludes.Patterns()),
	)

	if err := w.Run(ctx, proc.HandleEvent); err != nil && ctx.Err() == nil {
		return errors.New(errors.InternalError, "Watcher stopped", err)
	}

	stats := w.Stats()
	logger.Info("Watcher stopped", "settled", stats.Settled, "excluded", stats.Excluded)
	return nil
}

// conversationLogPath resolves the transcript path. A path given with
// --conversation-log is relative to the working directory; one read from
// configuration is relative to the root.
func conversationLogPath(cmd *cobra.Command, cfg *config.Config, root string) (string, error) {
	p := cfg.Watch.ConversationLog
	if p == "" {
		return "", nil
	}
	if !cmd.Flags().Changed("conversation-log") {
		return paths.Resolve(root, p), nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.New(errors.PathUnresolved, "Cannot resolve conversation log", err)
	}
	return abs, nil
}

// watchExcludes combines configured patterns with the files the watcher
// writes or reads itself, so they never produce entries.
func watchExcludes(cfg *config.Config, root string, owned ...string) *watcher.Excludes {
	excludes := watcher.NewExcludes(cfg.Watch.Excludes...)
	for _, p := range owned {
		if p == "" {
			continue
		}
		if rel := paths.RelativeTo(root, p); rel != "" && rel != "." {
			excludes = excludes.With(rel, rel+".tmp")
		}
	}
	if cfg.Logging.File != "" {
		if rel := paths.RelativeTo(root, paths.Resolve(root, cfg.Logging.File)); rel != "" {
			excludes = excludes.With(rel)
		}
	}
	return excludes
}
