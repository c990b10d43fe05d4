// Package render turns parsed trace entries into the conversation/change
// graph image and the interactive trace document.
package render

import (
	"fmt"
	"strings"

	"agenttrace/internal/tracelog"
)

// Graph layout shared by the static image and the interactive document.
const (
	RowHeight   = 52
	LeftX       = 40
	RightX      = 520
	GraphWidth  = 1000
	ConvBoxW    = 420
	ChangeBoxW  = 440
	BoxHeight   = 36
	MinHeight   = 180
	headerY     = 24
	firstRowY   = 52
	edgeYOffset = 18
)

// EmptySVG is the image rendered for a log without entries.
const EmptySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="120"></svg>`

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Sanitize escapes text for embedding in SVG. Empty text becomes "unknown".
func Sanitize(text string) string {
	if text == "" {
		return "unknown"
	}
	return xmlEscaper.Replace(text)
}

// SanitizePtr is Sanitize for nullable fields.
func SanitizePtr(text *string) string {
	if text == nil {
		return "unknown"
	}
	return Sanitize(*text)
}

// GraphHeight returns the image height for the given row counts.
func GraphHeight(entries, conversations int) int {
	return max(MinHeight, (max(entries, conversations)+1)*RowHeight)
}

// RenderSVG draws conversation nodes in the left column, one change row per
// entry in the right column and an edge from each change to its
// conversation node.
func RenderSVG(entries []tracelog.Entry) []byte {
	if len(entries) == 0 {
		return []byte(EmptySVG)
	}

	var convs []*tracelog.Entry
	convIndex := make(map[string]int)
	for i := range entries {
		key := entries[i].ConversationKey()
		if _, ok := convIndex[key]; !ok {
			convIndex[key] = len(convs)
			convs = append(convs, &entries[i])
		}
	}

	height := GraphHeight(len(entries), len(convs))

	parts := make([]string, 0, 6+2*len(convs)+4*len(entries))
	parts = append(parts,
		fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, GraphWidth, height),
		"<style>text{font-family:Arial,sans-serif;font-size:12px;}</style>",
		`<rect width="100%" height="100%" fill="#fff" />`,
		fmt.Sprintf(`<text x="%d" y="%d" fill="#111">Conversation</text>`, LeftX, headerY),
	)

	for i, e := range convs {
		y := firstRowY + i*RowHeight
		label := strings.TrimSpace(SanitizePtr(e.Conversation.Role) + " " + SanitizePtr(e.Conversation.MessageID))
		parts = append(parts,
			fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="#f2f4f8" stroke="#cbd5e1" />`, LeftX, y, ConvBoxW, BoxHeight),
			fmt.Sprintf(`<text x="%d" y="%d" fill="#111">%s</text>`, LeftX+10, y+22, label),
		)
	}

	parts = append(parts, fmt.Sprintf(`<text x="%d" y="%d" fill="#111">Change</text>`, RightX, headerY))
	for i := range entries {
		y := firstRowY + i*RowHeight
		parts = append(parts,
			fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="#eef6ff" stroke="#93c5fd" />`, RightX, y, ChangeBoxW, BoxHeight),
			fmt.Sprintf(`<text x="%d" y="%d" fill="#0f172a">%s</text>`, RightX+10, y+16, Sanitize(entries[i].File)),
			fmt.Sprintf(`<text x="%d" y="%d" fill="#475569">%s</text>`, RightX+10, y+30, Sanitize(entries[i].Summary)),
		)
	}

	for i := range entries {
		row := convIndex[entries[i].ConversationKey()]
		y1 := firstRowY + edgeYOffset + row*RowHeight
		y2 := firstRowY + edgeYOffset + i*RowHeight
		parts = append(parts, fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#94a3b8" stroke-width="1.5" />`, LeftX+ConvBoxW, y1, RightX, y2))
	}

	parts = append(parts, "</svg>")
	return []byte(strings.Join(parts, "\n"))
}
