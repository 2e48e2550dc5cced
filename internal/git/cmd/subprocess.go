package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strings"
)

type SubprocessErr struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (err SubprocessErr) Error() string {
	if err.Stderr != "" {
		return fmt.Sprintf(
			"Git subprocess exited with code %d. Error output:\n%s",
			err.ExitCode,
			err.Stderr,
		)
	}

	return fmt.Sprintf("Git subprocess exited with code %d", err.ExitCode)
}

func (err SubprocessErr) Unwrap() error {
	return err.Err
}

type Subprocess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr <-chan capturedStderr
}

// Stderr is read in the background so git never blocks writing to it while
// the caller is still reading stdout.
type capturedStderr struct {
	text []byte
	err  error
}

func (s Subprocess) StdoutText() (string, error) {
	b, err := io.ReadAll(s.stdout)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

// Returns a single-use iterator over the output from git log -z.
//
// Lines are split on NULLs with some additional processing.
func (s Subprocess) StdoutNullDelimitedLines() (
	iter.Seq[string],
	func() error,
) {
	var iterErr error

	seq := func(yield func(string) bool) {
		scanner := bufio.NewScanner(s.stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
			null_i := bytes.IndexByte(data, '\x00')

			if null_i >= 0 {
				return null_i + 1, data[:null_i], nil
			}

			if atEOF {
				return 0, data, bufio.ErrFinalToken
			}

			return 0, nil, nil // Scan more
		})

		for scanner.Scan() {
			line := scanner.Text()

			// Handle annoying new line that exists between regular commit
			// fields and --numstat data
			processedLine := strings.TrimPrefix(line, "\n")

			if !yield(processedLine) {
				return
			}
		}

		iterErr = scanner.Err()
	}

	finish := func() error {
		if iterErr != nil {
			iterErr = fmt.Errorf("error while scanning: %w", iterErr)
		}

		return iterErr
	}

	return seq, finish
}

// Waits for the subprocess to exit.
//
// Any stdout the caller did not consume is discarded first, otherwise git can
// block forever on a full pipe.
func (s Subprocess) Wait() error {
	logger().Debug("waiting for subprocess...")

	_, err := io.Copy(io.Discard, s.stdout)
	if err != nil {
		return fmt.Errorf("could not drain stdout: %w", err)
	}

	captured := <-s.stderr
	if captured.err != nil {
		return fmt.Errorf("could not read stderr: %w", captured.err)
	}

	err = s.cmd.Wait()
	logger().Debug(
		"subprocess exited",
		"code",
		s.cmd.ProcessState.ExitCode(),
	)

	if err != nil {
		return SubprocessErr{
			ExitCode: s.cmd.ProcessState.ExitCode(),
			Stderr:   strings.TrimSpace(string(captured.text)),
			Err:      err,
		}
	}

	return nil
}

func run(
	ctx context.Context,
	dir string,
	args []string,
) (*Subprocess, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	logger().Debug("running subprocess", "cmd", cmd, "dir", dir)

	return start(cmd)
}

func start(cmd *exec.Cmd) (*Subprocess, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start subprocess: %w", err)
	}

	stderrCh := make(chan capturedStderr, 1)
	go func() {
		text, err := io.ReadAll(stderr)
		stderrCh <- capturedStderr{text: text, err: err}
	}()

	return &Subprocess{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderrCh,
	}, nil
}
