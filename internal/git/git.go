/*
* Wraps access to the commit history of a local repository.
*
* The default backend invokes Git directly as a subprocess and parses the
* output. A pure-Go backend built on go-git is available for machines without
* a git binary.
 */
package git

import (
	"context"
	"fmt"
	"iter"
)

type Commit struct {
	Hash        string
	IsMerge     bool
	AuthorName  string
	AuthorEmail string
	Insertions  int // Lines inserted across all files, 0 for binary files
	Deletions   int // Lines deleted across all files, 0 for binary files
}

func (c Commit) Name() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	} else if c.Hash != "" {
		return c.Hash
	} else {
		return "unknown"
	}
}

func (c Commit) String() string {
	return fmt.Sprintf(
		"{ hash:%s author:%s <%s> merge:%v +%d -%d }",
		c.Name(),
		c.AuthorName,
		c.AuthorEmail,
		c.IsMerge,
		c.Insertions,
		c.Deletions,
	)
}

// Identity is the key stats are grouped under: the author's display name, or
// their email when the name is empty.
//
// Authors committing under several names are not merged.
func Identity(name string, email string) string {
	if name == "" {
		return email
	}

	return name
}

const (
	CLIBackend   = "cli"
	GoGitBackend = "gogit"
)

type Options struct {
	Backend    string // CLIBackend or GoGitBackend; empty means CLIBackend
	UseMailmap bool   // Let git canonicalize author identities (cli only)
}

// Source of non-merge commits for a single repository.
type Backend interface {
	Name() string

	// Number of non-merge commits reachable from HEAD.
	//
	// Advisory: it may disagree with what Commits() yields if the repository
	// changes underneath us.
	CountCommits(ctx context.Context) (int, error)

	// Returns a single-use iterator over the non-merge commits reachable from
	// HEAD, newest first, and a finish() function that must be called once
	// iteration is done. finish() reports any error hit while iterating.
	Commits(ctx context.Context) (iter.Seq[Commit], func() error)
}

// Opens the repository at path.
//
// Fails with an *InvalidRepositoryError if path is not a git repository.
func Open(ctx context.Context, path string, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", CLIBackend:
		backend, err := openCLI(ctx, path, opts.UseMailmap)
		if err != nil {
			return nil, err
		}

		return backend, nil
	case GoGitBackend:
		if opts.UseMailmap {
			return nil, fmt.Errorf(
				"the %s backend does not support mailmap",
				GoGitBackend,
			)
		}

		backend, err := openGoGit(path)
		if err != nil {
			return nil, err
		}

		return backend, nil
	default:
		return nil, fmt.Errorf("unknown backend \"%s\"", opts.Backend)
	}
}
