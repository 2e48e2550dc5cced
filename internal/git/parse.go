package git

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/sinclairtarget/git-churn/internal/git/revision"
)

// Position of the next expected field within the current commit.
type field int

const (
	hashField field = iota
	parentsField
	nameField
	emailField
	diffField
)

func parseLinesChanged(s string, line string) (int, error) {
	// Binary files show up as "-"
	if s == "-" {
		return 0, nil
	}

	changed, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s as int on line \"%s\": %w",
			s,
			line,
			err,
		)
	}

	return changed, nil
}

// Parses a single --numstat line: "<added>\t<removed>\t<path>".
func parseNumstat(line string) (added int, removed int, err error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf(
			"expected 3 tab-separated fields but got %d on line \"%s\"",
			len(parts),
			line,
		)
	}

	added, err = parseLinesChanged(parts[0], line)
	if err != nil {
		return 0, 0, err
	}

	removed, err = parseLinesChanged(parts[1], line)
	if err != nil {
		return 0, 0, err
	}

	return added, removed, nil
}

// Turns an iterator over NULL-delimited lines from git log into an iterator of
// commits.
//
// Expects the fields hash, parents, author name and author email, each
// terminated by NULL, followed by zero or more --numstat lines. An empty line
// ends a commit. Merge commits are dropped.
func ParseCommits(lines iter.Seq[string]) (iter.Seq[Commit], func() error) {
	var iterErr error

	seq := func(yield func(Commit) bool) {
		var commit Commit
		next := hashField

		emit := func() bool {
			c := commit
			commit = Commit{}
			next = hashField

			if c.IsMerge {
				logger().Debug("skipping merge commit", "commit", c.Name())
				return true
			}

			return yield(c)
		}

		for line := range lines {
			switch next {
			case hashField:
				if len(line) == 0 {
					continue
				}

				if !revision.IsFullHash(line) {
					iterErr = fmt.Errorf(
						"expected commit hash but got \"%s\"",
						line,
					)
					return
				}

				commit.Hash = line
				next = parentsField
			case parentsField:
				commit.IsMerge = len(strings.Fields(line)) > 1
				next = nameField
			case nameField:
				commit.AuthorName = line
				next = emailField
			case emailField:
				commit.AuthorEmail = line
				next = diffField
			case diffField:
				if len(line) == 0 {
					if !emit() {
						return
					}
					continue
				}

				if revision.IsFullHash(line) {
					// No separator between commits; start the next one
					if !emit() {
						return
					}

					commit.Hash = line
					next = parentsField
					continue
				}

				added, removed, err := parseNumstat(line)
				if err != nil {
					iterErr = fmt.Errorf(
						"error parsing file diffs from commit %s: %w",
						commit.Name(),
						err,
					)
					return
				}

				commit.Insertions += added
				commit.Deletions += removed
			}
		}

		switch next {
		case hashField:
		case diffField:
			emit()
		default:
			iterErr = fmt.Errorf(
				"output ended in the middle of commit %s",
				commit.Name(),
			)
		}
	}

	finish := func() error {
		if iterErr != nil {
			iterErr = fmt.Errorf("error parsing git log output: %w", iterErr)
		}

		return iterErr
	}

	return seq, finish
}
