package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/tool"
)

// WriteFileTool creates or overwrites workspace files atomically.
type WriteFileTool struct {
	guard  pathGuard
	fs     fileSystem
	config *config.Config
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(guard pathGuard, fs fileSystem, cfg *config.Config) *WriteFileTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &WriteFileTool{guard: guard, fs: fs, config: cfg}
}

func (t *WriteFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "write_file",
		Description: "Create or overwrite a file with the given content. Parent directories are created as needed.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "Path of the file to write"},
				"content": {Type: tool.TypeString, Description: "Full content of the file"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteFileTool) Handler() tool.Handler {
	return tool.HandlerFunc[WriteFileRequest](t.Run)
}

// Run writes req.Content to req.Path via temp file and rename. An existing
// file keeps its permissions; new files get 0644.
func (t *WriteFileTool) Run(ctx context.Context, req WriteFileRequest) (string, error) {
	abs, err := t.guard.AuthorizePath(req.Path)
	if err != nil {
		return "", err
	}

	size := int64(len(req.Content))
	if size > t.config.Tools.MaxFileSize {
		return "", &FileTooLargeError{Path: req.Path, Size: size, Limit: t.config.Tools.MaxFileSize}
	}

	perm := os.FileMode(0o644)
	info, err := t.fs.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return "", &IsDirectoryError{Path: req.Path}
	case err == nil:
		perm = info.Mode().Perm()
	case !os.IsNotExist(err):
		return "", err
	}

	if err := t.fs.EnsureDirs(filepath.Dir(abs)); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}

	if err := t.fs.WriteFileAtomic(abs, []byte(req.Content), perm); err != nil {
		return "", err
	}

	return fmt.Sprintf("Wrote %d bytes to %s", size, t.guard.Rel(abs)), nil
}
