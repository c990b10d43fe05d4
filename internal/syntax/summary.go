package syntax

import (
	"fmt"
	"strings"
)

// NoMatches is the summary for an empty node list.
const NoMatches = "no AST matches"

// SummarizeNodes renders up to three nodes as "<type> <name> (<start>-<end>)",
// comma-joined, with a trailing "..." part when more exist.
func SummarizeNodes(nodes []Node) string {
	if len(nodes) == 0 {
		return NoMatches
	}

	parts := make([]string, 0, 4)
	for i, n := range nodes {
		if i == 3 {
			parts = append(parts, "...")
			break
		}
		label := n.Type
		if n.Name != nil && *n.Name != "" {
			label += " " + *n.Name
		}
		parts = append(parts, fmt.Sprintf("%s (%d-%d)", label, n.Start, n.End))
	}
	return strings.Join(parts, ", ")
}
