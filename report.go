package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/colorprofile"

	"github.com/sinclairtarget/git-churn/internal/git"
	"github.com/sinclairtarget/git-churn/internal/iterutils"
	"github.com/sinclairtarget/git-churn/internal/pretty"
	"github.com/sinclairtarget/git-churn/internal/progress"
	"github.com/sinclairtarget/git-churn/internal/render"
	"github.com/sinclairtarget/git-churn/internal/tally"
)

type reportOptions struct {
	format       render.Format
	limit        int
	author       string
	gitOpts      git.Options
	copy         bool
	showProgress bool
}

// Tallies each repository in turn and writes one report per repository to
// out. The first failure stops the run; reports already written stay written.
func report(
	ctx context.Context,
	out io.Writer,
	paths []string,
	opts reportOptions,
) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"report\": %w", err)
		}
	}()

	logger().Debug(
		"called report()",
		"paths",
		paths,
		"format",
		opts.format,
		"limit",
		opts.limit,
		"author",
		opts.author,
		"backend",
		opts.gitOpts.Backend,
		"mailmap",
		opts.gitOpts.UseMailmap,
	)

	// Downsamples or strips colors depending on where out goes
	var w io.Writer = colorprofile.NewWriter(out, os.Environ())

	var copied strings.Builder
	if opts.copy {
		plain := &colorprofile.Writer{
			Forward: &copied,
			Profile: colorprofile.NoTTY,
		}
		w = io.MultiWriter(w, plain)
	}

	for _, path := range paths {
		result, err := tallyRepo(ctx, path, opts)
		if err != nil {
			return err
		}

		r := render.NewReport(path, result).
			FilterAuthors(opts.author).
			Limit(opts.limit)

		err = render.Render(w, r, opts.format)
		if err != nil {
			return err
		}
	}

	if opts.copy {
		if err := clipboard.WriteAll(copied.String()); err != nil {
			logger().Warn("failed to copy to clipboard", "err", err)
		}
	}

	return nil
}

// Walks the history of the repository at path and tallies it, drawing a
// progress bar on stderr while it works if stderr is a terminal.
func tallyRepo(
	ctx context.Context,
	path string,
	opts reportOptions,
) (tally.Result, error) {
	start := time.Now()

	backend, err := git.Open(ctx, path, opts.gitOpts)
	if err != nil {
		return tally.Result{}, err
	}

	total, err := backend.CountCommits(ctx)
	if err != nil {
		return tally.Result{}, err
	}

	commits, finish := backend.Commits(ctx)

	if opts.showProgress && pretty.AllowDynamic(os.Stderr) {
		bar := progress.NewProgressBar(total, fmt.Sprintf("Processing %s", path))
		bar.Start()
		defer bar.Stop()

		commits = iterutils.Tap(commits, func(i int, _ git.Commit) {
			bar.SetProgress(i + 1)
		})
	}

	result := tally.TallyCommits(commits)

	err = finish()
	if err != nil {
		return tally.Result{}, err
	}

	logger().Debug(
		"tallied repository",
		"path",
		path,
		"backend",
		backend.Name(),
		"commits",
		total,
		"authors",
		len(result.Authors),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)

	return result, nil
}
