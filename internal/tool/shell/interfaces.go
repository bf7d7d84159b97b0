package shell

import (
	"context"
	"time"

	"github.com/Cyclone1070/vics/internal/sandbox"
)

// commandRunner checks and runs shell commands inside the workspace.
type commandRunner interface {
	AuthorizeCommand(commandLine string) error
	RunWithTimeout(ctx context.Context, commandLine string, timeout time.Duration) (*sandbox.Result, error)
}
