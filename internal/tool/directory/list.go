package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/tool"
)

// ListDirectoryTool handles directory listing operations.
type ListDirectoryTool struct {
	guard  pathGuard
	fs     fileSystem
	ignore ignoreMatcher
	config *config.Config
}

// NewListDirectoryTool creates a new ListDirectoryTool with injected dependencies.
func NewListDirectoryTool(guard pathGuard, fs fileSystem, ignore ignoreMatcher, cfg *config.Config) *ListDirectoryTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if ignore == nil {
		panic("ignore matcher is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ListDirectoryTool{guard: guard, fs: fs, ignore: ignore, config: cfg}
}

func (t *ListDirectoryTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "list_directory",
		Description: "List the entries of a workspace directory. Directories are suffixed with '/'.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":      {Type: tool.TypeString, Description: "Directory to list (default: workspace root)"},
				"recursive": {Type: tool.TypeBoolean, Description: "List nested entries, skipping hidden and gitignored paths"},
			},
		},
	}
}

func (t *ListDirectoryTool) Handler() tool.Handler {
	return tool.HandlerFunc[ListDirectoryRequest](t.Run)
}

// Run lists a directory inside the workspace.
// Entries are sorted by path. A recursive listing never follows symlinks and
// stops once MaxListEntries entries have been collected.
func (t *ListDirectoryTool) Run(ctx context.Context, req ListDirectoryRequest) (string, error) {
	if req.Path == "" {
		req.Path = "."
	}

	abs, err := t.guard.AuthorizePath(req.Path)
	if err != nil {
		return "", err
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: req.Path}
		}
		return "", fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}
	if !info.IsDir() {
		return "", &NotDirectoryError{Path: req.Path}
	}

	limit := t.config.Tools.MaxListEntries
	var entries []entry
	capped, err := t.collect(ctx, abs, "", req.Recursive, limit, &entries)
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return "(empty directory)", nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	if capped {
		fmt.Fprintf(&sb, "... (truncated at %d entries)\n", limit)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// collect appends the entries of dir to out and reports whether the limit was hit.
func (t *ListDirectoryTool) collect(ctx context.Context, dir, prefix string, recursive bool, limit int, out *[]entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	dirEntries, err := t.fs.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, de := range dirEntries {
		name := de.Name()
		childAbs := filepath.Join(dir, name)
		isDir := de.IsDir()

		if recursive {
			if strings.HasPrefix(name, ".") {
				continue
			}
			if t.ignore.ShouldIgnore(t.guard.Rel(childAbs), isDir) {
				continue
			}
		}

		if len(*out) >= limit {
			return true, nil
		}
		childRel := name
		if prefix != "" {
			childRel = prefix + "/" + name
		}
		*out = append(*out, entry{path: childRel, isDir: isDir})

		// DirEntry type bits come from lstat, so symlinked directories are not descended.
		if recursive && isDir {
			capped, err := t.collect(ctx, childAbs, childRel, recursive, limit, out)
			if err != nil || capped {
				return capped, err
			}
		}
	}
	return false, nil
}
