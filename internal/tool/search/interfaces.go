package search

import (
	"io/fs"
	"os"
)

// pathGuard authorizes workspace paths.
type pathGuard interface {
	AuthorizePath(candidate string) (string, error)
	Rel(abs string) string
}

// fileSystem defines the filesystem operations needed for content search.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Open(path string) (*os.File, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// ignoreMatcher reports whether a workspace-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
