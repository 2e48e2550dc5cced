package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-churn/internal/git"
	"github.com/sinclairtarget/git-churn/internal/render"
)

var Commit = "unknown"
var Version = "unknown"

type flags struct {
	markdown   string
	format     string
	backend    string
	limit      int
	author     string
	useMailmap bool
	copy       bool
	noProgress bool
	verbose    bool
}

// Main runs the root command and exits non-zero on the first error.
func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cmd := rootCmd()
	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		cancel()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "git-churn [flags] <repo>...",
		Short: "git-churn tallies lines changed by author",
		Long: strings.TrimSpace(`
git-churn walks the history of each given repository and prints a table
showing how many lines every author inserted and deleted, ranked by total
lines changed. Merge commits are not counted.
		`),
		Version:       fmt.Sprintf("%s %s", Version, Commit),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.verbose {
				configureLogging(slog.LevelDebug)
				logger().Debug("log level set to DEBUG")
			} else {
				configureLogging(slog.LevelInfo)
			}

			opts, err := f.reportOptions(cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}

			return report(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	fs := cmd.Flags()
	fs.StringVarP(
		&f.markdown,
		"markdown",
		"m",
		"false",
		"Render markdown instead of a table (true or false)",
	)
	fs.StringVarP(
		&f.format,
		"format",
		"f",
		string(render.TableFormat),
		"Output format: table, markdown or csv",
	)
	fs.StringVarP(
		&f.backend,
		"backend",
		"b",
		git.CLIBackend,
		"How history is read: cli (git binary) or gogit (pure Go)",
	)
	fs.IntVarP(&f.limit, "limit", "n", 0, "Limit rows per table (0 for no limit)")
	fs.StringVar(&f.author, "author", "", "Only show authors fuzzy-matching this pattern")
	fs.BoolVar(&f.useMailmap, "mailmap", false, "Resolve authors using .mailmap (cli backend only)")
	fs.BoolVarP(&f.copy, "copy", "c", false, "Also copy output to the clipboard")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Never show a progress bar")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enables debug logging")

	return cmd
}

// Validates flags before any repository is touched.
func (f flags) reportOptions(formatChanged bool) (reportOptions, error) {
	var opts reportOptions

	useMarkdown, err := strconv.ParseBool(f.markdown)
	if err != nil {
		return opts, fmt.Errorf(
			"-m flag must be true or false, got \"%s\"",
			f.markdown,
		)
	}

	outFormat, err := render.ParseFormat(f.format)
	if err != nil {
		return opts, err
	}

	if useMarkdown {
		if formatChanged && outFormat != render.MarkdownFormat {
			return opts, errors.New("-m and -f flags disagree on output format")
		}
		outFormat = render.MarkdownFormat
	}

	if f.limit < 0 {
		return opts, errors.New("-n flag must be a non-negative integer")
	}

	switch f.backend {
	case git.CLIBackend, git.GoGitBackend:
	default:
		return opts, fmt.Errorf(
			"unknown backend \"%s\" (expected %s or %s)",
			f.backend,
			git.CLIBackend,
			git.GoGitBackend,
		)
	}

	if f.useMailmap && f.backend != git.CLIBackend {
		return opts, fmt.Errorf(
			"--mailmap is only supported by the %s backend",
			git.CLIBackend,
		)
	}

	opts = reportOptions{
		format: outFormat,
		limit:  f.limit,
		author: f.author,
		gitOpts: git.Options{
			Backend:    f.backend,
			UseMailmap: f.useMailmap,
		},
		copy:         f.copy,
		showProgress: !f.noProgress,
	}
	return opts, nil
}

func configureLogging(level slog.Level) {
	handler := slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{
			Level: level,
		},
	)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
