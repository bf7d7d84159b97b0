package shell

import (
	"fmt"
	"time"
)

// RunCommandRequest is the input of run_command.
type RunCommandRequest struct {
	Command string `mapstructure:"command"`
	// Timeout in seconds; zero selects the sandbox default.
	Timeout int `mapstructure:"timeout"`
}

func (r RunCommandRequest) String() string {
	return fmt.Sprintf("Running: %s", r.Command)
}

func (r RunCommandRequest) timeout() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}
