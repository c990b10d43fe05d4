package watcher

import (
	"path"
	"strings"
)

// Excludes decides which root-relative paths the watcher ignores. A path is
// excluded when any of its components equals a pattern, or when it equals a
// pattern or lies beneath it. An Excludes value is immutable.
type Excludes struct {
	patterns []string
}

// NewExcludes builds an exclusion set. Patterns are slash-separated and
// relative to the watched root; empty patterns are ignored.
func NewExcludes(patterns ...string) *Excludes {
	e := &Excludes{}
	e.add(patterns...)
	return e
}

// With returns a new set holding e's patterns plus patterns.
func (e *Excludes) With(patterns ...string) *Excludes {
	next := &Excludes{patterns: append([]string(nil), e.patterns...)}
	next.add(patterns...)
	return next
}

func (e *Excludes) add(patterns ...string) {
	for _, p := range patterns {
		p = strings.Trim(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
		if p == "" || p == "." {
			continue
		}
		e.patterns = append(e.patterns, p)
	}
}

// Patterns returns the normalized patterns.
func (e *Excludes) Patterns() []string {
	return append([]string(nil), e.patterns...)
}

// Match reports whether rel, a slash-separated root-relative path, is
// excluded.
func (e *Excludes) Match(rel string) bool {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "./")
	if rel == "" || rel == "." {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, p := range e.patterns {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
		for _, part := range parts {
			if part == p {
				return true
			}
		}
	}
	return false
}
