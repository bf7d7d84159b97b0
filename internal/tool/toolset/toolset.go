// Package toolset assembles the built-in tools for one workspace.
package toolset

import (
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/directory"
	"github.com/Cyclone1070/vics/internal/tool/file"
	"github.com/Cyclone1070/vics/internal/tool/fsutil"
	"github.com/Cyclone1070/vics/internal/tool/search"
	"github.com/Cyclone1070/vics/internal/tool/service/git"
	"github.com/Cyclone1070/vics/internal/tool/shell"
	"github.com/Cyclone1070/vics/internal/tool/think"
)

// registrar receives tools; *toolmanager.ToolManager implements it.
type registrar interface {
	Register(decl tool.Declaration, h tool.Handler) error
}

type builtin interface {
	Declaration() tool.Declaration
	Handler() tool.Handler
}

// Names lists the built-in tools in registration order.
var Names = []string{
	"read_file", "write_file", "edit_file", "list_directory",
	"search_files", "run_command", "delete_file", "think",
}

// Register creates every built-in tool bound to guard and adds it to reg.
// A .gitignore that cannot be read is logged and ignored.
func Register(reg registrar, guard *sandbox.Guard, cfg *config.Config, logger *slog.Logger) error {
	if reg == nil {
		panic("registrar is required")
	}
	if guard == nil {
		panic("guard is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	osFS := fsutil.NewOSFileSystem()

	var ignore interface {
		ShouldIgnore(relativePath string, isDir bool) bool
	}
	matcher, err := git.NewIgnoreMatcher(guard.Root(), osFS)
	if err != nil {
		logger.Warn("gitignore disabled", "error", err)
		ignore = git.NoOpMatcher{}
	} else {
		ignore = matcher
	}

	tools := []builtin{
		file.NewReadFileTool(guard, osFS, cfg),
		file.NewWriteFileTool(guard, osFS, cfg),
		file.NewEditFileTool(guard, osFS, cfg),
		directory.NewListDirectoryTool(guard, osFS, ignore, cfg),
		search.NewSearchFilesTool(guard, osFS, ignore, cfg),
		shell.NewRunCommandTool(guard),
		file.NewDeleteFileTool(guard, osFS),
		think.NewThinkTool(),
	}
	for _, t := range tools {
		if err := reg.Register(t.Declaration(), t.Handler()); err != nil {
			return fmt.Errorf("register %s: %w", t.Declaration().Name, err)
		}
	}
	return nil
}
