package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/vics/internal/tool/content"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreReadError is returned when .gitignore exists but cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed for gitignore loading.
type fileSystem interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
}

// maxGitignoreSize bounds how much of a .gitignore file is parsed.
const maxGitignoreSize = 1 << 20

// IgnoreMatcher implements gitignore pattern matching using go-git's gitignore matcher.
// The .git directory is always ignored.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from the workspace root.
// A missing .gitignore yields a matcher that only ignores .git.
func NewIgnoreMatcher(workspaceRoot string, fs fileSystem) (*IgnoreMatcher, error) {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	if fs == nil {
		panic("fs is required")
	}

	patterns := []gitignore.Pattern{gitignore.ParsePattern(".git/", nil)}

	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")
	data, err := fs.ReadFile(gitignorePath, maxGitignoreSize)
	switch {
	case err == nil:
		for _, line := range content.SplitLines(string(data)) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
	case !os.IsNotExist(err):
		return nil, &GitignoreReadError{Path: gitignorePath, Cause: err}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore checks if a workspace-relative path matches any gitignore pattern.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

// NoOpMatcher is a gitignore matcher that never ignores any files.
// It is used when gitignore loading fails.
type NoOpMatcher struct{}

// ShouldIgnore always returns false for NoOpMatcher.
func (NoOpMatcher) ShouldIgnore(string, bool) bool {
	return false
}
