// Helpers for building throwaway repositories in tests.
package repotest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type Author struct {
	Name  string
	Email string
}

// A repository under a test's temp dir. Commits get increasing timestamps so
// that newest-first ordering is deterministic.
type Repo struct {
	Path string

	t    *testing.T
	repo *gogit.Repository
	when time.Time
}

func New(t *testing.T) *Repo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("could not init test repo: %v", err)
	}

	return &Repo{
		Path: dir,
		t:    t,
		repo: repo,
		when: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Writes the given files (path to full contents) and commits them on HEAD.
func (r *Repo) Commit(author Author, files map[string]string) plumbing.Hash {
	r.t.Helper()
	return r.commit(author, files, nil)
}

// Writes the given files and commits them with HEAD and other as parents.
func (r *Repo) Merge(
	author Author,
	other plumbing.Hash,
	files map[string]string,
) plumbing.Hash {
	r.t.Helper()

	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("could not resolve HEAD: %v", err)
	}

	return r.commit(author, files, []plumbing.Hash{head.Hash(), other})
}

// Moves a file and commits the move on HEAD.
func (r *Repo) Rename(author Author, from string, to string) plumbing.Hash {
	r.t.Helper()

	contents, err := os.ReadFile(filepath.Join(r.Path, from))
	if err != nil {
		r.t.Fatalf("could not read %s: %v", from, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("could not get worktree: %v", err)
	}

	_, err = wt.Remove(from)
	if err != nil {
		r.t.Fatalf("could not remove %s: %v", from, err)
	}

	return r.commit(author, map[string]string{to: string(contents)}, nil)
}

func (r *Repo) commit(
	author Author,
	files map[string]string,
	parents []plumbing.Hash,
) plumbing.Hash {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("could not get worktree: %v", err)
	}

	for name, contents := range files {
		path := filepath.Join(r.Path, name)
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			r.t.Fatalf("could not create dir for %s: %v", name, err)
		}

		err = os.WriteFile(path, []byte(contents), 0o644)
		if err != nil {
			r.t.Fatalf("could not write %s: %v", name, err)
		}

		_, err = wt.Add(name)
		if err != nil {
			r.t.Fatalf("could not stage %s: %v", name, err)
		}
	}

	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{
		Name:  author.Name,
		Email: author.Email,
		When:  r.when,
	}

	hash, err := wt.Commit("test commit", &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.t.Fatalf("could not commit: %v", err)
	}

	return hash
}

// Skips the test when there is no git binary to run.
func RequireGit(t *testing.T) {
	t.Helper()

	_, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not found in PATH")
	}
}
