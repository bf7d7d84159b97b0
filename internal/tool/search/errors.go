package search

import "fmt"

// NotFoundError is returned when the search path does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("search path does not exist: %s", e.Path)
}

func (e *NotFoundError) NotFound() bool { return true }

// InvalidGlobError is returned when file_glob is malformed.
type InvalidGlobError struct {
	Glob  string
	Cause error
}

func (e *InvalidGlobError) Error() string {
	return fmt.Sprintf("invalid file_glob %q: %v", e.Glob, e.Cause)
}

func (e *InvalidGlobError) Unwrap() error { return e.Cause }

func (e *InvalidGlobError) InvalidInput() bool { return true }
