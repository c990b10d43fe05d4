// Package repostate reports the git context attached to trace entries.
package repostate

import (
	"context"
	"os/exec"
	"strings"

	"agenttrace/internal/errors"
)

// GitInfo is the repository context of a trace entry. Every field is nil
// outside a git repository or when git is unavailable.
type GitInfo struct {
	Head   *string `json:"head"`
	Branch *string `json:"branch"`
	Dirty  *bool   `json:"dirty"`
}

// IsEmpty reports whether no git context was found.
func (g GitInfo) IsEmpty() bool {
	return g.Head == nil && g.Branch == nil && g.Dirty == nil
}

// ComputeGitInfo collects HEAD, the current branch and the dirty flag for
// repoRoot. Each probe fails independently to nil; a repository without
// commits has a branch but no head.
func ComputeGitInfo(ctx context.Context, repoRoot string) GitInfo {
	var info GitInfo
	if !IsGitRepository(ctx, repoRoot) {
		return info
	}

	if head, err := gitRevParse(ctx, repoRoot, "HEAD"); err == nil && head != "" {
		info.Head = &head
	}

	if branch, err := gitOutput(ctx, repoRoot, "symbolic-ref", "--short", "-q", "HEAD"); err == nil {
		if branch = strings.TrimSpace(branch); branch != "" {
			info.Branch = &branch
		}
	}

	if status, err := gitOutput(ctx, repoRoot, "status", "--porcelain"); err == nil {
		dirty := strings.TrimSpace(status) != ""
		info.Dirty = &dirty
	}

	return info
}

// gitRevParse executes git rev-parse
func gitRevParse(ctx context.Context, repoRoot string, args ...string) (string, error) {
	output, err := gitOutput(ctx, repoRoot, append([]string{"rev-parse"}, args...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func gitOutput(ctx context.Context, repoRoot string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return string(output), nil
}

// IsGitRepository checks if the given path is inside a git work tree
func IsGitRepository(ctx context.Context, repoRoot string) bool {
	out, err := gitRevParse(ctx, repoRoot, "--is-inside-work-tree")
	return err == nil && out == "true"
}

// GetRepoRoot finds the git repository root from the given directory
func GetRepoRoot(ctx context.Context, startPath string) (string, error) {
	root, err := gitRevParse(ctx, startPath, "--show-toplevel")
	if err != nil {
		return "", errors.New(errors.PathUnresolved, "Not a git repository", err)
	}
	return root, nil
}
