package file

import (
	"context"
	"os"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/content"
)

// ReadFileTool returns the contents of a workspace file.
type ReadFileTool struct {
	guard  pathGuard
	fs     fileSystem
	config *config.Config
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(guard pathGuard, fs fileSystem, cfg *config.Config) *ReadFileTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReadFileTool{guard: guard, fs: fs, config: cfg}
}

func (t *ReadFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "read_file",
		Description: "Read the contents of a file. Path is relative to the workspace root.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "Path of the file to read"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadFileTool) Handler() tool.Handler {
	return tool.HandlerFunc[ReadFileRequest](t.Run)
}

// Run reads the file at req.Path. Directories and binary files are rejected.
func (t *ReadFileTool) Run(ctx context.Context, req ReadFileRequest) (string, error) {
	abs, err := t.guard.AuthorizePath(req.Path)
	if err != nil {
		return "", err
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: req.Path}
		}
		return "", err
	}
	if info.IsDir() {
		return "", &IsDirectoryError{Path: req.Path}
	}

	data, err := t.fs.ReadFile(abs, t.config.Tools.MaxFileSize)
	if err != nil {
		return "", err
	}
	if content.IsBinary(data) {
		return "", &BinaryFileError{Path: req.Path}
	}
	if len(data) == 0 {
		return "(empty file)", nil
	}
	return string(data), nil
}
