package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strconv"

	"github.com/sinclairtarget/git-churn/internal/git/cmd"
)

// Reads history by running the git binary.
type cliBackend struct {
	path       string
	useMailmap bool
}

func openCLI(
	ctx context.Context,
	path string,
	useMailmap bool,
) (_ *cliBackend, err error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &InvalidRepositoryError{Path: path, Err: err}
	} else if err != nil {
		return nil, &BackendError{Backend: CLIBackend, Op: "open", Err: err}
	}

	// git runs with the path as its working directory
	if !info.IsDir() {
		return nil, &InvalidRepositoryError{Path: path, Err: errNotDir}
	}

	subprocess, err := cmd.RunRevParseGitDir(ctx, path)
	if err != nil {
		return nil, &BackendError{Backend: CLIBackend, Op: "open", Err: err}
	}

	gitDir, err := subprocess.StdoutText()
	if err != nil {
		return nil, &BackendError{Backend: CLIBackend, Op: "open", Err: err}
	}

	err = subprocess.Wait()
	if err != nil {
		var subprocessErr cmd.SubprocessErr
		if errors.As(err, &subprocessErr) {
			return nil, &InvalidRepositoryError{Path: path, Err: err}
		}

		return nil, &BackendError{Backend: CLIBackend, Op: "open", Err: err}
	}

	logger().Debug("opened repository", "path", path, "gitDir", gitDir)
	return &cliBackend{path: path, useMailmap: useMailmap}, nil
}

func (b *cliBackend) Name() string {
	return CLIBackend
}

func (b *cliBackend) CountCommits(ctx context.Context) (_ int, err error) {
	defer func() {
		if err != nil {
			err = &BackendError{Backend: CLIBackend, Op: "count commits", Err: err}
		}
	}()

	subprocess, err := cmd.RunRevListCount(ctx, b.path)
	if err != nil {
		return 0, err
	}

	text, err := subprocess.StdoutText()
	if err != nil {
		return 0, err
	}

	err = subprocess.Wait()
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("unexpected output from git rev-list: %w", err)
	}

	return count, nil
}

func (b *cliBackend) Commits(
	ctx context.Context,
) (iter.Seq[Commit], func() error) {
	subprocess, err := cmd.RunLog(ctx, b.path, b.useMailmap)
	if err != nil {
		empty := func(yield func(Commit) bool) {}
		return empty, func() error {
			return &BackendError{Backend: CLIBackend, Op: "read history", Err: err}
		}
	}

	lines, linesFinish := subprocess.StdoutNullDelimitedLines()
	commits, parseFinish := ParseCommits(lines)

	finish := func() error {
		// Always reap the subprocess, even if parsing failed
		waitErr := subprocess.Wait()

		err := errors.Join(linesFinish(), parseFinish(), waitErr)
		if err != nil {
			return &BackendError{Backend: CLIBackend, Op: "read history", Err: err}
		}

		return nil
	}

	return commits, finish
}
