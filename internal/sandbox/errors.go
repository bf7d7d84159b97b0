package sandbox

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPathEscape is matched by every error for a path outside the workspace root.
	ErrPathEscape = errors.New("path escapes workspace")
	// ErrForbiddenCommand is matched by every error for a command on the deny-list.
	ErrForbiddenCommand = errors.New("forbidden command")
	// ErrTimeout is matched by every error for a command that exceeded its timeout.
	ErrTimeout = errors.New("command timed out")
)

// PathEscapeError is returned when a path resolves outside the workspace root.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q is outside the workspace", e.Path)
}

func (e *PathEscapeError) Is(target error) bool {
	return target == ErrPathEscape
}

func (e *PathEscapeError) PermissionDenied() bool {
	return true
}

// ForbiddenCommandError is returned when a command line matches a deny pattern.
type ForbiddenCommandError struct {
	Command string
	Pattern string
}

func (e *ForbiddenCommandError) Error() string {
	return fmt.Sprintf("command %q is blocked by safety policy (pattern %q)", e.Command, e.Pattern)
}

func (e *ForbiddenCommandError) Is(target error) bool {
	return target == ErrForbiddenCommand
}

func (e *ForbiddenCommandError) PermissionDenied() bool {
	return true
}

// TimeoutError is returned when a command exceeds its timeout and is killed.
type TimeoutError struct {
	Command  string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %v", e.Command, e.Duration)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// SymlinkError is returned when a symlink chain cannot be followed.
type SymlinkError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *SymlinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot resolve %s: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("cannot resolve %s: %s", e.Path, e.Reason)
}

func (e *SymlinkError) Unwrap() error {
	return e.Cause
}

// CommandError is returned when a command cannot be started.
type CommandError struct {
	Command string
	Cause   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Cause)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}
