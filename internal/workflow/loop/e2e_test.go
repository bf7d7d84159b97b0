package loop

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/toolset"
	"github.com/Cyclone1070/vics/internal/workflow/toolmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fibScript = `a, b = 0, 1
out = []
for _ in range(10):
    out.append(str(a))
    a, b = b, a + b
print(" ".join(out))
`

func newWorkspace(t *testing.T) (string, *toolmanager.ToolManager) {
	t.Helper()
	policy, err := sandbox.NewPolicy(sandbox.PolicyConfig{Root: t.TempDir()})
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	registry := toolmanager.NewToolManager(cfg.Tools.MaxToolOutputChars, nil)
	require.NoError(t, toolset.Register(registry, sandbox.NewGuard(policy), cfg, nil))
	return policy.Root(), registry
}

func lastToolResult(conv []provider.Message) *tool.Result {
	for i := len(conv) - 1; i >= 0; i-- {
		if conv[i].ToolResult != nil {
			return conv[i].ToolResult
		}
	}
	return nil
}

func TestE2E_WriteAndRunFibonacci(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	root, registry := newWorkspace(t)

	var runOutput string
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("Writing the script.", provider.ToolCall{
			ID: "w", Name: "write_file",
			Arguments: map[string]any{"path": "fib.py", "content": fibScript},
		})),
		reply(provider.AssistantMessage("Running it.", provider.ToolCall{
			ID: "r", Name: "run_command",
			Arguments: map[string]any{"command": "python3 fib.py", "timeout": float64(30)},
		})),
		func(_ context.Context, conv []provider.Message) (*provider.Message, error) {
			runOutput = lastToolResult(conv).Output
			msg := provider.AssistantMessage("The first ten Fibonacci numbers are 0 1 1 2 3 5 8 13 21 34.")
			return &msg, nil
		},
	}}

	report := RunSession(context.Background(), adapter, registry, Options{},
		"Write a Python script that prints the first 10 Fibonacci numbers and run it.")

	require.Equal(t, StateFinished, report.State, report.Text)
	assert.Equal(t, 2, report.Iterations)
	assert.FileExists(t, filepath.Join(root, "fib.py"))
	assert.Equal(t, "(exit code: 0)\n0 1 1 2 3 5 8 13 21 34", runOutput)
	assert.Contains(t, report.Text, "0 1 1 2 3 5 8 13 21 34")
}

func TestE2E_TraversalDelete_PermissionDeniedAndNothingRemoved(t *testing.T) {
	_, registry := newWorkspace(t)
	before, err := os.Stat("/etc/passwd")
	if err != nil {
		t.Skip("/etc/passwd not present")
	}

	var result *tool.Result
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", provider.ToolCall{
			ID: "d", Name: "delete_file",
			Arguments: map[string]any{"path": "../../../etc/passwd"},
		})),
		func(_ context.Context, conv []provider.Message) (*provider.Message, error) {
			result = lastToolResult(conv)
			msg := provider.AssistantMessage("I cannot delete files outside the workspace.")
			return &msg, nil
		},
	}}

	report := RunSession(context.Background(), adapter, registry, Options{}, "delete ../../../etc/passwd")

	assert.Equal(t, StateFinished, report.State)
	require.NotNil(t, result)
	assert.Equal(t, tool.KindPermissionDenied, result.Kind)
	assert.Equal(t, "d", result.CallID)

	after, err := os.Stat("/etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, before.Size(), after.Size())
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestE2E_ForbiddenCommand_ReportedAndLoopContinues(t *testing.T) {
	_, registry := newWorkspace(t)

	var result *tool.Result
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", provider.ToolCall{
			ID: "x", Name: "run_command",
			Arguments: map[string]any{"command": "sudo rm -rf /"},
		})),
		func(_ context.Context, conv []provider.Message) (*provider.Message, error) {
			result = lastToolResult(conv)
			msg := provider.AssistantMessage("That command is not allowed.")
			return &msg, nil
		},
	}}

	report := RunSession(context.Background(), adapter, registry, Options{}, "wipe the disk")

	assert.Equal(t, StateFinished, report.State)
	require.NotNil(t, result)
	assert.Equal(t, tool.KindPermissionDenied, result.Kind)
}

func TestE2E_EditWithAmbiguousMatch_FileUnchanged(t *testing.T) {
	root, registry := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "cfg.txt"), []byte("x = 1\nx = 1\n"), 0o644))

	var result *tool.Result
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", provider.ToolCall{
			ID: "e", Name: "edit_file",
			Arguments: map[string]any{"path": "cfg.txt", "find": "x = 1", "replace": "x = 2"},
		})),
		func(_ context.Context, conv []provider.Message) (*provider.Message, error) {
			result = lastToolResult(conv)
			msg := provider.AssistantMessage("The text occurs twice.")
			return &msg, nil
		},
	}}

	RunSession(context.Background(), adapter, registry, Options{}, "set x to 2")

	require.NotNil(t, result)
	assert.Equal(t, tool.KindNoMatch, result.Kind)
	data, err := os.ReadFile(filepath.Join(root, "cfg.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\nx = 1\n", string(data))
}
