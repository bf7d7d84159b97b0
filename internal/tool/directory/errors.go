package directory

import "fmt"

// NotFoundError is returned when the directory does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("directory does not exist: %s", e.Path)
}

func (e *NotFoundError) NotFound() bool { return true }

// NotDirectoryError is returned when the path points at a file.
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return fmt.Sprintf("path is not a directory: %s", e.Path)
}

func (e *NotDirectoryError) InvalidInput() bool { return true }
