package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
)

func TestHeadResolvesSymbolicRef(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "repo")
	repo, err := gogit.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	hash := addFileAndCommit(t, repo, repoPath, "f.txt", "x", "initial")

	got, err := Head(repoPath)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got != hash.String() {
		t.Errorf("Head = %s, want %s", got, hash.String())
	}
}

func TestHeadDetached(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "repo")
	gitDir := filepath.Join(repoPath, ".git")
	if err := os.MkdirAll(gitDir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	const hash = "0123456789abcdef0123456789abcdef01234567"
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte(hash+"\n"), 0o600); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}

	got, err := Head(repoPath)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got != hash {
		t.Errorf("Head = %s, want %s", got, hash)
	}
}

func TestHeadMissingRepo(t *testing.T) {
	if _, err := Head(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing repository")
	}
}
