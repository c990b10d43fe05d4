package diff

import "regexp"

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits text on \n or \r\n. An empty text is a single empty
// line and a trailing newline yields a trailing empty line, so line counts
// stay stable with the persisted log format.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Compute walks old and new line by line at the same index. It does not
// align insertions: an inserted line shifts every following line and the
// whole shifted span is reported as modified. Summary strings in existing
// logs depend on this, so it must not be replaced by an LCS diff.
func Compute(oldText, newText string) Change {
	oldLines := SplitLines(oldText)
	newLines := SplitLines(newText)

	change := Change{Hunks: []Hunk{}}
	oldLine, newLine := 1, 1

	var open bool
	var cur Hunk

	flush := func() {
		if open && (cur.OldLines > 0 || cur.NewLines > 0) {
			change.Hunks = append(change.Hunks, cur)
		}
		open = false
		cur = Hunk{}
	}

	n := max(len(oldLines), len(newLines))
	for i := 0; i < n; i++ {
		hasOld := i < len(oldLines)
		hasNew := i < len(newLines)

		if hasOld && hasNew && oldLines[i] == newLines[i] {
			flush()
			oldLine++
			newLine++
			continue
		}

		if !open {
			open = true
			cur.OldStart = oldLine
			cur.NewStart = newLine
		}
		if hasOld {
			cur.OldLines++
			change.Deleted++
			oldLine++
		}
		if hasNew {
			cur.NewLines++
			change.Added++
			newLine++
		}
	}
	flush()

	return change
}
