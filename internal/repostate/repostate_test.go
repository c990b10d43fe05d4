package repostate

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"agenttrace/internal/errors"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// initRepo creates a repository with one commit on branch main.
func initRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init", "-q")
	run("symbolic-ref", "HEAD", "refs/heads/main")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-q", "-m", "init")
	return dir
}

func TestComputeGitInfo_OutsideRepo(t *testing.T) {
	requireGit(t)
	info := ComputeGitInfo(context.Background(), t.TempDir())

	if info.Head != nil || info.Branch != nil || info.Dirty != nil {
		t.Errorf("expected all-nil git info outside a repo, got %+v", info)
	}
	if !info.IsEmpty() {
		t.Error("IsEmpty() should be true outside a repo")
	}
}

func TestComputeGitInfo_CleanRepo(t *testing.T) {
	dir := initRepo(t)
	info := ComputeGitInfo(context.Background(), dir)

	if info.Head == nil || len(*info.Head) != 40 {
		t.Fatalf("expected 40 char head, got %v", info.Head)
	}
	if info.Branch == nil || *info.Branch != "main" {
		t.Errorf("Branch = %v, expected main", info.Branch)
	}
	if info.Dirty == nil || *info.Dirty {
		t.Errorf("Dirty = %v, expected false", info.Dirty)
	}
}

func TestComputeGitInfo_DirtyRepo(t *testing.T) {
	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "new.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	info := ComputeGitInfo(context.Background(), dir)
	if info.Dirty == nil || !*info.Dirty {
		t.Errorf("Dirty = %v, expected true", info.Dirty)
	}
}

func TestIsGitRepository(t *testing.T) {
	dir := initRepo(t)

	t.Run("valid git repository", func(t *testing.T) {
		if !IsGitRepository(context.Background(), dir) {
			t.Errorf("Expected %s to be a git repository", dir)
		}
	})

	t.Run("non-git directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		if IsGitRepository(context.Background(), tmpDir) {
			t.Errorf("Expected %s to NOT be a git repository", tmpDir)
		}
	})
}

func TestGetRepoRoot(t *testing.T) {
	dir := initRepo(t)
	expected, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "src")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := GetRepoRoot(context.Background(), sub)
	if err != nil {
		t.Fatalf("GetRepoRoot from subdir failed: %v", err)
	}
	if got, _ := filepath.EvalSymlinks(root); got != expected {
		t.Errorf("GetRepoRoot(%s) = %s, expected %s", sub, got, expected)
	}

	t.Run("non-git directory returns error", func(t *testing.T) {
		_, err := GetRepoRoot(context.Background(), t.TempDir())
		if !errors.Is(err, errors.PathUnresolved) {
			t.Errorf("Expected PATH_UNRESOLVED error, got %v", err)
		}
	})
}
