package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"agenttrace/internal/index"
	"agenttrace/internal/schema"
)

// OutputFormat selects how command reports are printed.
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// IndexReport is printed by the index command.
type IndexReport struct {
	DB        string                 `json:"db"`
	Log       string                 `json:"log"`
	Synced    bool                   `json:"synced"`
	Reason    string                 `json:"reason,omitempty"`
	Added     int                    `json:"added"`
	Total     int                    `json:"total"`
	Churn     []index.FileChurn      `json:"churn"`
	Sessions  []index.SessionSummary `json:"sessions"`
	NodeTypes map[string]int         `json:"nodeTypes"`
}

// VerifyReport is printed by the verify command.
type VerifyReport struct {
	Log        string             `json:"log"`
	Entries    int                `json:"entries"`
	Violations []schema.Violation `json:"violations"`
}

// FormatReport renders a report in the requested format.
func FormatReport(report interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data), nil
	case FormatHuman, "":
		switch v := report.(type) {
		case *IndexReport:
			return formatIndexHuman(v), nil
		case *VerifyReport:
			return formatVerifyHuman(v), nil
		}
		return "", fmt.Errorf("no human format for %T", report)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatIndexHuman(r *IndexReport) string {
	var b strings.Builder

	if r.Synced {
		fmt.Fprintf(&b, "Synced %s: %d new, %d total\n", r.DB, r.Added, r.Total)
	} else {
		fmt.Fprintf(&b, "Index %s is up to date (%d entries)\n", r.DB, r.Total)
	}
	if r.Reason != "" {
		fmt.Fprintf(&b, "  reason: %s\n", r.Reason)
	}

	if len(r.Churn) > 0 {
		b.WriteString("\nFile churn:\n")
		width := 0
		for _, c := range r.Churn {
			width = max(width, len(c.File))
		}
		for _, c := range r.Churn {
			fmt.Fprintf(&b, "  %-*s  %3d changes  +%d -%d  last %s\n", width, c.File, c.Changes, c.Added, c.Deleted, c.LastChange)
		}
	}

	if len(r.Sessions) > 0 {
		b.WriteString("\nSessions:\n")
		for _, s := range r.Sessions {
			name := s.Session
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(&b, "  %s  %d entries  %s .. %s\n", name, s.Entries, s.First, s.Last)
		}
	}

	if len(r.NodeTypes) > 0 {
		types := make([]string, 0, len(r.NodeTypes))
		for typ := range r.NodeTypes {
			types = append(types, typ)
		}
		sort.Slice(types, func(i, j int) bool {
			if r.NodeTypes[types[i]] != r.NodeTypes[types[j]] {
				return r.NodeTypes[types[i]] > r.NodeTypes[types[j]]
			}
			return types[i] < types[j]
		})
		parts := make([]string, 0, len(types))
		for _, typ := range types {
			parts = append(parts, fmt.Sprintf("%s=%d", typ, r.NodeTypes[typ]))
		}
		fmt.Fprintf(&b, "\nSyntax nodes: %s\n", strings.Join(parts, ", "))
	}
	return b.String()
}

func formatVerifyHuman(r *VerifyReport) string {
	var b strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "entry %d (%s at %s): %s\n", v.Index, v.File, v.Timestamp, v.Message)
	}
	if len(r.Violations) == 0 {
		fmt.Fprintf(&b, "%s: %d entries valid\n", r.Log, r.Entries)
	} else {
		fmt.Fprintf(&b, "%s: %d of %d entries invalid\n", r.Log, len(r.Violations), r.Entries)
	}
	return b.String()
}
