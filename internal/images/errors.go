package images

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirectory is returned when the given path is missing or is not a directory
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrReadFailure is matched by every ReadError
	ErrReadFailure = errors.New("read failure")
)

// ReadError is returned when a directory exists but cannot be enumerated
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read directory %s", e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is reports ErrReadFailure so that callers do not need errors.As
func (e *ReadError) Is(target error) bool {
	return target == ErrReadFailure
}

// IsInvalidDirectory returns true if the error is ErrInvalidDirectory
func IsInvalidDirectory(err error) bool {
	return errors.Is(err, ErrInvalidDirectory)
}

// IsReadFailure returns true if the error is a ReadError
func IsReadFailure(err error) bool {
	return errors.Is(err, ErrReadFailure)
}
