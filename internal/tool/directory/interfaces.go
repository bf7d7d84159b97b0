package directory

import "os"

// pathGuard authorizes workspace paths.
type pathGuard interface {
	AuthorizePath(candidate string) (string, error)
	Rel(abs string) string
}

// fileSystem defines the filesystem operations needed for directory listing.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

// ignoreMatcher reports whether a workspace-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
