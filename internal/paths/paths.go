package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DotDir is the per-root directory holding agenttrace config, diagnostics and index files.
const DotDir = ".agenttrace"

// Resolve returns p unchanged when absolute, otherwise p joined onto base.
// The result is cleaned.
func Resolve(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// RelativeTo returns p relative to root with forward slashes, or "" when p
// lies outside root.
func RelativeTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	return rel
}

// EnsureParentDir creates the parent directory of path.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// GetDotDir returns <root>/.agenttrace
func GetDotDir(root string) string {
	return filepath.Join(root, DotDir)
}

// GetDiagnosticLogPath returns <root>/.agenttrace/logs/agenttrace.log
func GetDiagnosticLogPath(root string) string {
	return filepath.Join(root, DotDir, "logs", "agenttrace.log")
}
