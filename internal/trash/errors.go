package trash

import "errors"

// ErrTrashFailure is matched by every Error
var ErrTrashFailure = errors.New("trash failure")

// Error is returned when the platform trash could not take a file.
// Its message is the path followed by the cause.
type Error struct {
	// Path is the path as given by the caller
	Path string

	// Err is the error reported by the backend
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrTrashFailure so that callers do not need errors.As
func (e *Error) Is(target error) bool {
	return target == ErrTrashFailure
}

// IsTrashFailure returns true if the error is a trash Error
func IsTrashFailure(err error) bool {
	return errors.Is(err, ErrTrashFailure)
}
