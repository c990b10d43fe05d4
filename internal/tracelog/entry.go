// Package tracelog appends trace entries to the markdown trace log and reads
// them back from its fenced JSON blocks.
package tracelog

import (
	"encoding/json"
	"fmt"

	"agenttrace/internal/conversation"
	"agenttrace/internal/diff"
	"agenttrace/internal/repostate"
	"agenttrace/internal/syntax"
)

// SchemaVersion identifies the entry layout written by this package.
const SchemaVersion = "2026-02-07"

// Entry is one immutable trace record.
type Entry struct {
	TraceEntry         bool               `json:"trace_entry"`
	SchemaVersion      string             `json:"schema_version,omitempty"`
	ID                 string             `json:"id,omitempty"`
	Session            string             `json:"session,omitempty"`
	Timestamp          string             `json:"timestamp"`
	Conversation       conversation.Ref   `json:"conversation"`
	ConversationWindow []conversation.Ref `json:"conversation_window"`
	File               string             `json:"file"`
	Change             diff.Change        `json:"change"`
	AST                syntax.Result      `json:"ast"`
	Git                repostate.GitInfo  `json:"git"`
	Summary            string             `json:"summary"`

	// Raw holds the block the entry was parsed from.
	Raw json.RawMessage `json:"-"`
}

// BuildSummary renders "+<added> -<deleted>; <node summary>".
func BuildSummary(change diff.Change, nodes []syntax.Node) string {
	return fmt.Sprintf("+%d -%d; %s", change.Added, change.Deleted, syntax.SummarizeNodes(nodes))
}

// ConversationKey identifies the conversation message an entry belongs to.
// Missing fields render as "unknown".
func (e *Entry) ConversationKey() string {
	return orUnknown(e.Conversation.ID) + "::" + orUnknown(e.Conversation.MessageID) + "::" + orUnknown(e.Conversation.Role)
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "unknown"
	}
	return *s
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
