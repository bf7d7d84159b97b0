package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/tool"
)

// RunCommandTool runs shell commands in the workspace root.
type RunCommandTool struct {
	runner commandRunner
}

// NewRunCommandTool creates a new RunCommandTool with injected dependencies.
func NewRunCommandTool(runner commandRunner) *RunCommandTool {
	if runner == nil {
		panic("runner is required")
	}
	return &RunCommandTool{runner: runner}
}

func (t *RunCommandTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "run_command",
		Description: "Run a shell command in the workspace root and return its exit code and output. " +
			"Destructive or privileged commands are refused.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command": {Type: tool.TypeString, Description: "Shell command line to execute"},
				"timeout": {Type: tool.TypeInteger, Description: "Timeout in seconds", Minimum: tool.Float(1)},
			},
			Required: []string{"command"},
		},
	}
}

func (t *RunCommandTool) Handler() tool.Handler {
	return tool.HandlerFunc[RunCommandRequest](t.Run)
}

// Run checks the command against the deny-list and executes it.
// A non-zero exit code is reported in the output, not as an error.
func (t *RunCommandTool) Run(ctx context.Context, req RunCommandRequest) (string, error) {
	if strings.TrimSpace(req.Command) == "" {
		return "", &tool.ValidationError{Field: "command", Reason: "must not be empty"}
	}
	if err := t.runner.AuthorizeCommand(req.Command); err != nil {
		return "", err
	}

	res, err := t.runner.RunWithTimeout(ctx, req.Command, req.timeout())
	if err != nil {
		var timeoutErr *sandbox.TimeoutError
		if errors.As(err, &timeoutErr) && res != nil {
			return "", &CommandTimeoutError{Cause: timeoutErr, Partial: formatOutput(res)}
		}
		return "", err
	}
	return formatOutput(res), nil
}

func formatOutput(res *sandbox.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(exit code: %d)\n", res.ExitCode)

	stdout := strings.TrimRight(res.Stdout, "\n")
	stderr := strings.TrimRight(res.Stderr, "\n")
	if stdout == "" && stderr == "" {
		sb.WriteString("(no output)")
		return sb.String()
	}
	if stdout != "" {
		sb.WriteString(stdout)
		sb.WriteByte('\n')
	}
	if stderr != "" {
		sb.WriteString("--- stderr ---\n")
		sb.WriteString(stderr)
		sb.WriteByte('\n')
	}
	if res.Truncated {
		sb.WriteString("(output truncated)\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
