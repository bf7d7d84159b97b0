package fsutil

import "fmt"

// FileTooLargeError is returned when a file exceeds the read limit.
type FileTooLargeError struct {
	Path  string
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file %s exceeds the %d byte limit", e.Path, e.Limit)
}

func (e *FileTooLargeError) InvalidInput() bool {
	return true
}

// WriteStep names the stage of an atomic write that failed.
type WriteStep string

const (
	StepCreateTemp WriteStep = "create temp file"
	StepWrite      WriteStep = "write temp file"
	StepSync       WriteStep = "sync temp file"
	StepClose      WriteStep = "close temp file"
	StepRename     WriteStep = "rename temp file"
	StepChmod      WriteStep = "set permissions"
)

// AtomicWriteError is returned by WriteFileAtomic. Path is the target file.
// Failures before StepRename leave the target untouched.
type AtomicWriteError struct {
	Path  string
	Step  WriteStep
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %v", e.Step, e.Path, e.Cause)
}

func (e *AtomicWriteError) Unwrap() error {
	return e.Cause
}

func (e *AtomicWriteError) IOError() bool {
	return true
}
