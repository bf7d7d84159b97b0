package file

import "os"

// pathGuard authorizes workspace paths.
type pathGuard interface {
	AuthorizePath(candidate string) (string, error)
	Rel(abs string) string
}

// fileSystem is the filesystem surface the file tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
	Remove(path string) error
}
