package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/content"
	"github.com/pmezard/go-difflib/difflib"
)

// EditFileTool replaces exactly one occurrence of a text snippet in a file.
type EditFileTool struct {
	guard  pathGuard
	fs     fileSystem
	config *config.Config
}

// NewEditFileTool creates a new EditFileTool with injected dependencies.
func NewEditFileTool(guard pathGuard, fs fileSystem, cfg *config.Config) *EditFileTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &EditFileTool{guard: guard, fs: fs, config: cfg}
}

func (t *EditFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "edit_file",
		Description: "Replace text in an existing file. The text to find must occur exactly once; " +
			"include enough surrounding lines to make it unique.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "Path of the file to edit"},
				"find":    {Type: tool.TypeString, Description: "Exact text to replace"},
				"replace": {Type: tool.TypeString, Description: "Replacement text"},
			},
			Required: []string{"path", "find", "replace"},
		},
	}
}

func (t *EditFileTool) Handler() tool.Handler {
	return tool.HandlerFunc[EditFileRequest](t.Run)
}

// Run applies the edit. Zero or multiple occurrences fail with *NoMatchError
// and leave the file untouched. CRLF files are matched on normalised content
// and written back with CRLF endings.
func (t *EditFileTool) Run(ctx context.Context, req EditFileRequest) (string, error) {
	if req.Find == "" {
		return "", &tool.ValidationError{Field: "find", Reason: "must not be empty"}
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

	raw := string(data)
	hasCRLF := strings.Contains(raw, "\r\n")
	oldContent := content.NormaliseLineEndings(raw)
	find := content.NormaliseLineEndings(req.Find)
	replace := content.NormaliseLineEndings(req.Replace)

	if count := strings.Count(oldContent, find); count != 1 {
		return "", &NoMatchError{Path: req.Path, Count: count}
	}
	newContent := strings.Replace(oldContent, find, replace, 1)

	final := newContent
	if hasCRLF {
		final = strings.ReplaceAll(newContent, "\n", "\r\n")
	}
	if size := int64(len(final)); size > t.config.Tools.MaxFileSize {
		return "", &FileTooLargeError{Path: req.Path, Size: size, Limit: t.config.Tools.MaxFileSize}
	}

	if err := t.fs.WriteFileAtomic(abs, []byte(final), info.Mode().Perm()); err != nil {
		return "", err
	}

	rel := t.guard.Rel(abs)
	diff, added, removed := computeUnifiedDiff(rel, oldContent, newContent)
	return fmt.Sprintf("Edited %s (+%d -%d)\n%s", rel, added, removed, diff), nil
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
