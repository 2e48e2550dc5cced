/*
* Handles invoking Git as a subprocess.
 */
package cmd

import (
	"context"
	"fmt"
)

const (
	logFormat        = "--pretty=format:%H%x00%P%x00%an%x00%ae%x00"
	mailmapLogFormat = "--pretty=format:%H%x00%P%x00%aN%x00%aE%x00"
)

// Runs git log over the non-merge history reachable from HEAD.
//
// Renames are not detected so that a moved file counts as the lines deleted
// from the old path plus the lines inserted at the new one.
func RunLog(
	ctx context.Context,
	dir string,
	useMailmap bool,
) (*Subprocess, error) {
	var args []string

	if useMailmap {
		args = []string{
			"log",
			mailmapLogFormat,
			"-z",
			"--numstat",
			"--no-merges",
			"--no-renames",
			"--no-show-signature",
			"HEAD",
		}
	} else {
		args = []string{
			"log",
			logFormat,
			"-z",
			"--numstat",
			"--no-merges",
			"--no-renames",
			"--no-show-signature",
			"--no-mailmap",
			"HEAD",
		}
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git log: %w", err)
	}

	return subprocess, nil
}

// Runs git rev-list --count, which is much faster than printing then counting
// all the revisions when all you need is the count.
func RunRevListCount(ctx context.Context, dir string) (*Subprocess, error) {
	args := []string{
		"rev-list",
		"--count",
		"--no-merges",
		"HEAD",
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git rev-list: %w", err)
	}

	return subprocess, nil
}

// Runs git rev-parse --git-dir. Exits non-zero when dir is not inside a
// repository.
func RunRevParseGitDir(ctx context.Context, dir string) (*Subprocess, error) {
	args := []string{"rev-parse", "--git-dir"}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git rev-parse: %w", err)
	}

	return subprocess, nil
}
