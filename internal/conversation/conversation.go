// Package conversation reads the agent conversation log, a JSON-lines file
// with one message record per line, and exposes the references attached to
// trace entries.
package conversation

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// ExcerptLimit is the maximum excerpt length in runes.
const ExcerptLimit = 140

// Ref identifies one conversation message. Every field is nullable.
type Ref struct {
	ID        *string `json:"id"`
	MessageID *string `json:"message_id"`
	Role      *string `json:"role"`
	CreatedAt *string `json:"created_at"`
	Excerpt   *string `json:"excerpt"`
}

// record is the tolerant shape of one log line. Identifier and time fields
// may be strings or numbers.
type record struct {
	ConversationID json.RawMessage `json:"conversation_id"`
	ID             json.RawMessage `json:"id"`
	MessageID      json.RawMessage `json:"message_id"`
	Role           json.RawMessage `json:"role"`
	CreatedAt      json.RawMessage `json:"created_at"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Content        json.RawMessage `json:"content"`
}

func (r record) ref() Ref {
	content := coerceContent(r.Content)
	return Ref{
		ID:        firstNonNil(scalar(r.ConversationID), scalar(r.ID)),
		MessageID: firstNonNil(scalar(r.MessageID), scalar(r.ID)),
		Role:      scalar(r.Role),
		CreatedAt: firstNonNil(scalar(r.CreatedAt), scalar(r.Timestamp)),
		Excerpt:   Excerpt(&content),
	}
}

// scalar maps a raw field to its string form: strings as is, numbers and
// other values by their literal JSON text. Missing and null yield nil.
func scalar(raw json.RawMessage) *string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	return &trimmed
}

// coerceContent returns string content as is, joins array elements with
// spaces and maps anything else to "".
func coerceContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			parts = append(parts, str)
			continue
		}
		parts = append(parts, string(item))
	}
	return strings.Join(parts, " ")
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Excerpt trims content, flattens newlines to spaces and keeps the first
// ExcerptLimit runes. Empty content yields nil.
func Excerpt(content *string) *string {
	if content == nil {
		return nil
	}
	text := strings.TrimSpace(*content)
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > ExcerptLimit {
		text = string(runes[:ExcerptLimit])
	}
	return &text
}

// Latest returns the reference built from the last line of the log at path
// that parses as a JSON object. When path is empty, missing or unreadable, or
// no line parses, every field of the returned Ref is nil.
func Latest(path string) Ref {
	refs := parseRefs(path)
	if len(refs) == 0 {
		return Ref{}
	}
	return refs[len(refs)-1]
}

// Window returns the last n references of the log, oldest first. Lines that
// do not parse as objects are skipped.
func Window(path string, n int) []Ref {
	if n <= 0 {
		return []Ref{}
	}
	refs := parseRefs(path)
	if len(refs) > n {
		refs = refs[len(refs)-n:]
	}
	return refs
}

// IsEmpty reports whether no field of r is set.
func (r Ref) IsEmpty() bool {
	return r.ID == nil && r.MessageID == nil && r.Role == nil && r.CreatedAt == nil && r.Excerpt == nil
}

func parseRefs(path string) []Ref {
	refs := []Ref{}
	lines, err := nonEmptyLines(path)
	if err != nil {
		return refs
	}
	for _, line := range lines {
		if rec, ok := parseLine(line); ok {
			refs = append(refs, rec.ref())
		}
	}
	return refs
}

func parseLine(line string) (record, bool) {
	var rec record
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return rec, false
	}
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return rec, false
	}
	return rec, true
}

func nonEmptyLines(path string) ([]string, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := bufio.NewReader(f)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}
