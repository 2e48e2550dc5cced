package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Reads history in-process with go-git. Slower than the cli backend on large
// repositories because diffs are computed in Go.
type goGitBackend struct {
	path string
	repo *gogit.Repository
}

func openGoGit(path string) (*goGitBackend, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &InvalidRepositoryError{Path: path, Err: err}
	} else if err != nil {
		return nil, &BackendError{Backend: GoGitBackend, Op: "open", Err: err}
	}

	if !info.IsDir() {
		return nil, &InvalidRepositoryError{Path: path, Err: errNotDir}
	}

	repo, err := gogit.PlainOpenWithOptions(
		path,
		&gogit.PlainOpenOptions{DetectDotGit: true},
	)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, &InvalidRepositoryError{Path: path, Err: err}
	} else if err != nil {
		return nil, &BackendError{Backend: GoGitBackend, Op: "open", Err: err}
	}

	logger().Debug("opened repository with go-git", "path", path)
	return &goGitBackend{path: path, repo: repo}, nil
}

func (b *goGitBackend) Name() string {
	return GoGitBackend
}

func (b *goGitBackend) log() (object.CommitIter, error) {
	head, err := b.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("could not resolve HEAD: %w", err)
	}

	return b.repo.Log(&gogit.LogOptions{
		From:  head.Hash(),
		Order: gogit.LogOrderCommitterTime,
	})
}

func (b *goGitBackend) CountCommits(ctx context.Context) (_ int, err error) {
	defer func() {
		if err != nil {
			err = &BackendError{Backend: GoGitBackend, Op: "count commits", Err: err}
		}
	}()

	commits, err := b.log()
	if err != nil {
		return 0, err
	}
	defer commits.Close()

	count := 0
	err = commits.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.NumParents() <= 1 {
			count += 1
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (b *goGitBackend) Commits(
	ctx context.Context,
) (iter.Seq[Commit], func() error) {
	var iterErr error

	seq := func(yield func(Commit) bool) {
		commits, err := b.log()
		if err != nil {
			iterErr = err
			return
		}
		defer commits.Close()

		for {
			if err := ctx.Err(); err != nil {
				iterErr = err
				return
			}

			c, err := commits.Next()
			if err == io.EOF {
				return
			} else if err != nil {
				iterErr = err
				return
			}

			if c.NumParents() > 1 {
				logger().Debug("skipping merge commit", "commit", c.Hash.String())
				continue
			}

			commit, err := fromObject(ctx, c)
			if err != nil {
				iterErr = err
				return
			}

			if !yield(commit) {
				return
			}
		}
	}

	finish := func() error {
		if iterErr != nil {
			return &BackendError{
				Backend: GoGitBackend,
				Op:      "read history",
				Err:     iterErr,
			}
		}

		return nil
	}

	return seq, finish
}

// Converts a go-git commit object, diffing it against its first parent (or the
// empty tree for a root commit). Renames are not detected, so a moved file
// counts as deleted and inserted lines like the cli backend.
func fromObject(ctx context.Context, c *object.Commit) (_ Commit, err error) {
	commit := Commit{
		Hash:        c.Hash.String(),
		IsMerge:     c.NumParents() > 1,
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf(
				"could not compute stats for commit %s: %w",
				commit.Name(),
				err,
			)
		}
	}()

	tree, err := c.Tree()
	if err != nil {
		return commit, err
	}

	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return commit, err
		}

		parentTree, err = parent.Tree()
		if err != nil {
			return commit, err
		}
	}

	changes, err := object.DiffTreeWithOptions(
		ctx,
		parentTree,
		tree,
		&object.DiffTreeOptions{DetectRenames: false},
	)
	if err != nil {
		return commit, err
	}

	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return commit, err
	}

	for _, s := range patch.Stats() {
		commit.Insertions += s.Addition
		commit.Deletions += s.Deletion
	}

	return commit, nil
}
