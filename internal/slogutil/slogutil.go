package slogutil

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a new slog.Logger writing single-line records to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewLineHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// NewFileLogger creates a logger backed by a rotating file. Rotated backups
// are gzip-compressed when compress is set. A maxSize of "" disables rotation.
// The returned closer must be closed on shutdown.
func NewFileLogger(path string, level slog.Level, maxSize string, maxBackups int, compress bool) (*slog.Logger, io.Closer, error) {
	rf, err := OpenRotatingFile(path, ParseSize(maxSize), maxBackups)
	if err != nil {
		return nil, nil, err
	}
	rf.Compress = compress
	return NewLogger(rf, level), rf, nil
}

// NewTeeLogger creates a logger that writes the same records to every writer.
func NewTeeLogger(level slog.Level, writers ...io.Writer) *slog.Logger {
	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, NewLineHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&teeHandler{handlers: handlers})
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "quiet", "off":
		return slog.Level(100)
	default:
		return slog.LevelInfo
	}
}
