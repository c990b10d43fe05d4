package tracelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"agenttrace/internal/errors"
)

// Writer appends entries to a trace log. Existing content is never rewritten.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter creates a writer for the log at path and makes sure its parent
// directory exists.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(errors.OutputDirFailed, "Cannot create trace log directory", err).
			WithDetails(map[string]string{"path": filepath.Dir(path)})
	}
	return &Writer{path: path}, nil
}

// Path returns the log location.
func (w *Writer) Path() string {
	return w.path
}

// Append writes e to the end of the log.
func (w *Writer) Append(e *Entry) error {
	data, err := Format(e)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.New(errors.WriteFailed, "Cannot open trace log", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.New(errors.WriteFailed, "Cannot append trace entry", err)
	}
	if err := f.Close(); err != nil {
		return errors.New(errors.WriteFailed, "Cannot close trace log", err)
	}
	return nil
}

// Format renders the textual block for e: a blank line, a timestamp heading,
// the conversation line, an excerpt line when present, the file and summary
// lines and the entry as indented JSON inside a json fence. Lines are joined
// with "\n" and the block carries no trailing newline; the leading blank line
// of the next block separates them.
func Format(e *Entry) ([]byte, error) {
	body, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, errors.New(errors.InternalError, "Cannot encode trace entry", err)
	}

	conv := e.Conversation
	var buf bytes.Buffer
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "### %s\n", e.Timestamp)
	fmt.Fprintf(&buf, "Conversation: id=%s message_id=%s role=%s\n", orNull(conv.ID), orNull(conv.MessageID), orNull(conv.Role))
	if conv.Excerpt != nil && *conv.Excerpt != "" {
		fmt.Fprintf(&buf, "Excerpt: %s\n", *conv.Excerpt)
	}
	fmt.Fprintf(&buf, "File: `%s`\n", e.File)
	fmt.Fprintf(&buf, "Summary: %s\n", e.Summary)
	buf.WriteString("```json\n")
	buf.Write(body)
	buf.WriteString("\n```")
	return buf.Bytes(), nil
}
