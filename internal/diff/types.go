// Package diff computes content fingerprints and the positional line diff
// recorded in every trace entry.
package diff

// Hunk is one maximal contiguous span where old and new content diverge.
// Line numbers are 1-based. A side with no lines in the span keeps the
// position where the span would begin.
type Hunk struct {
	OldStart int `json:"old_start"`
	OldLines int `json:"old_lines"`
	NewStart int `json:"new_start"`
	NewLines int `json:"new_lines"`
}

// NewRange returns the inclusive 1-based line range the hunk covers on the
// new side. Pure deletions still cover the line they happened at.
func (h Hunk) NewRange() (start, end int) {
	start = h.NewStart
	if start < 1 {
		start = 1
	}
	n := h.NewLines
	if n < 1 {
		n = 1
	}
	return start, start + n - 1
}

// Change summarizes a file modification.
type Change struct {
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
	Hunks   []Hunk `json:"hunks"`
}

// IsEmpty reports whether the change touched no lines.
func (c Change) IsEmpty() bool {
	return len(c.Hunks) == 0
}
