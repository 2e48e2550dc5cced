package git

import (
	"errors"
	"fmt"
)

var ErrInvalidRepository = errors.New("not a git repository")

var errNotDir = errors.New("not a directory")

// The given path does not point at a local git repository.
type InvalidRepositoryError struct {
	Path string
	Err  error // Underlying cause, may be nil
}

func (err *InvalidRepositoryError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf(
			"%s is %s: %v",
			err.Path,
			ErrInvalidRepository,
			err.Err,
		)
	}

	return fmt.Sprintf("%s is %s", err.Path, ErrInvalidRepository)
}

func (err *InvalidRepositoryError) Is(target error) bool {
	return target == ErrInvalidRepository
}

func (err *InvalidRepositoryError) Unwrap() error {
	return err.Err
}

// Reading history from the backend failed.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (err *BackendError) Error() string {
	return fmt.Sprintf("%s backend failed to %s: %v", err.Backend, err.Op, err.Err)
}

func (err *BackendError) Unwrap() error {
	return err.Err
}
