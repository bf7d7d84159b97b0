package shell

import (
	"fmt"

	"github.com/Cyclone1070/vics/internal/sandbox"
)

// CommandTimeoutError carries the output captured before the command was killed.
type CommandTimeoutError struct {
	Cause   *sandbox.TimeoutError
	Partial string
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("%v\npartial output before timeout:\n%s", e.Cause, e.Partial)
}

func (e *CommandTimeoutError) Unwrap() error { return e.Cause }

func (e *CommandTimeoutError) Timeout() bool { return true }
