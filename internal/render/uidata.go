package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"agenttrace/internal/tracelog"
)

// ConversationNode is one unique conversation message in the UI payload.
type ConversationNode struct {
	Key         string  `json:"key" yaml:"key"`
	ID          *string `json:"id" yaml:"id"`
	MessageID   *string `json:"messageId" yaml:"messageId"`
	Role        *string `json:"role" yaml:"role"`
	Excerpt     *string `json:"excerpt" yaml:"excerpt"`
	ChangeCount int     `json:"changeCount" yaml:"changeCount"`
}

// ChangeRow holds the metrics of one trace entry.
type ChangeRow struct {
	Index           int    `json:"index" yaml:"index"`
	ConversationKey string `json:"conversationKey" yaml:"conversationKey"`
	Timestamp       string `json:"timestamp" yaml:"timestamp"`
	File            string `json:"file" yaml:"file"`
	Summary         string `json:"summary" yaml:"summary"`
	Added           int    `json:"added" yaml:"added"`
	Deleted         int    `json:"deleted" yaml:"deleted"`
	AstCount        int    `json:"astCount" yaml:"astCount"`
}

// FileRow aggregates every change to one file.
type FileRow struct {
	File    string `json:"file" yaml:"file"`
	Changes int    `json:"changes" yaml:"changes"`
	Added   int    `json:"added" yaml:"added"`
	Deleted int    `json:"deleted" yaml:"deleted"`
}

// UIData is the payload embedded in the interactive document.
type UIData struct {
	Conversations []ConversationNode `json:"conversations" yaml:"conversations"`
	Changes       []ChangeRow        `json:"changes" yaml:"changes"`
	Files         []FileRow          `json:"files" yaml:"files"`
}

// BuildUIData derives the three payload views from entries. Conversations
// and files keep first-seen order.
func BuildUIData(entries []tracelog.Entry) UIData {
	data := UIData{
		Conversations: []ConversationNode{},
		Changes:       make([]ChangeRow, 0, len(entries)),
		Files:         []FileRow{},
	}
	convIndex := make(map[string]int)
	fileIndex := make(map[string]int)

	for i, e := range entries {
		key := e.ConversationKey()
		ci, ok := convIndex[key]
		if !ok {
			ci = len(data.Conversations)
			convIndex[key] = ci
			data.Conversations = append(data.Conversations, ConversationNode{
				Key:       key,
				ID:        e.Conversation.ID,
				MessageID: e.Conversation.MessageID,
				Role:      e.Conversation.Role,
				Excerpt:   e.Conversation.Excerpt,
			})
		}
		data.Conversations[ci].ChangeCount++

		data.Changes = append(data.Changes, ChangeRow{
			Index:           i,
			ConversationKey: key,
			Timestamp:       e.Timestamp,
			File:            e.File,
			Summary:         e.Summary,
			Added:           e.Change.Added,
			Deleted:         e.Change.Deleted,
			AstCount:        len(e.AST.Nodes),
		})

		fi, ok := fileIndex[e.File]
		if !ok {
			fi = len(data.Files)
			fileIndex[e.File] = fi
			data.Files = append(data.Files, FileRow{File: e.File})
		}
		data.Files[fi].Changes++
		data.Files[fi].Added += e.Change.Added
		data.Files[fi].Deleted += e.Change.Deleted
	}

	return data
}

// Export formats for EncodeUIData.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EncodeUIData serializes data as indented JSON or YAML.
func EncodeUIData(data UIData, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatYAML, "yml":
		return yaml.Marshal(data)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
