package file

import "fmt"

// NotFoundError is returned when the target path does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file does not exist: %s", e.Path)
}

func (e *NotFoundError) NotFound() bool {
	return true
}

// IsDirectoryError is returned when a file operation targets a directory.
type IsDirectoryError struct {
	Path string
}

func (e *IsDirectoryError) Error() string {
	return fmt.Sprintf("path is a directory, not a file: %s", e.Path)
}

func (e *IsDirectoryError) InvalidInput() bool {
	return true
}

// BinaryFileError is returned when reading or editing a binary file.
type BinaryFileError struct {
	Path string
}

func (e *BinaryFileError) Error() string {
	return fmt.Sprintf("file appears to be binary: %s", e.Path)
}

func (e *BinaryFileError) InvalidInput() bool {
	return true
}

// NoMatchError is returned when the text to replace does not occur exactly once.
type NoMatchError struct {
	Path  string
	Count int
}

func (e *NoMatchError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("text to replace was not found in %s", e.Path)
	}
	return fmt.Sprintf("text to replace occurs %d times in %s; include more surrounding context so it matches exactly once", e.Count, e.Path)
}

func (e *NoMatchError) NoMatch() bool {
	return true
}

// Ambiguous reports whether the text matched more than once.
func (e *NoMatchError) Ambiguous() bool {
	return e.Count > 1
}

// FileTooLargeError is returned when edited content exceeds the size limit.
type FileTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s (size %d, limit %d)", e.Path, e.Size, e.Limit)
}

func (e *FileTooLargeError) InvalidInput() bool {
	return true
}
