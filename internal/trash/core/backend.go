package core

// Backend is a platform trash facility
type Backend interface {
	// Put moves the file at path into the trash
	Put(path string) error

	// Name identifies the backend in logs
	Name() string
}
