package core

import "errors"

// Common errors that can be returned by Backend implementations
var (
	ErrCrossDevice     = errors.New("no trash directory on the device of the file")
	ErrTrashingTrash   = errors.New("refusing to trash the trash directory")
	ErrOperationFailed = errors.New("trash operation was aborted")
)

// StorageError wraps an error with additional context about the backend operation
type StorageError struct {
	Op   string // Operation that failed (e.g., "put", "select", "parse")
	Path string // Path of the file that caused the error
	Err  error  // The underlying error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, path string, err error) error {
	return &StorageError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
