package file

import (
	"context"
	"fmt"
	"os"

	"github.com/Cyclone1070/vics/internal/tool"
)

// DeleteFileTool removes a single workspace file. There is no undo.
type DeleteFileTool struct {
	guard pathGuard
	fs    fileSystem
}

// NewDeleteFileTool creates a new DeleteFileTool with injected dependencies.
func NewDeleteFileTool(guard pathGuard, fs fileSystem) *DeleteFileTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	return &DeleteFileTool{guard: guard, fs: fs}
}

func (t *DeleteFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "delete_file",
		Description: "Delete a file. This cannot be undone. Directories are refused.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "Path of the file to delete"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *DeleteFileTool) Handler() tool.Handler {
	return tool.HandlerFunc[DeleteFileRequest](t.Run)
}

// Run deletes the file at req.Path.
func (t *DeleteFileTool) Run(ctx context.Context, req DeleteFileRequest) (string, error) {
	abs, err := t.guard.AuthorizePath(req.Path)
	if err != nil {
		return "", err
	}

	info, err := t.fs.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: req.Path}
		}
		return "", err
	}
	if info.IsDir() {
		return "", &IsDirectoryError{Path: req.Path}
	}

	if err := t.fs.Remove(abs); err != nil {
		return "", fmt.Errorf("failed to delete %s: %w", req.Path, err)
	}
	return fmt.Sprintf("Deleted %s", t.guard.Rel(abs)), nil
}
