package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// writeSyncCloser is the minimal writable file handle used by WriteFileAtomic.
type writeSyncCloser interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// OSFileSystem implements filesystem operations on the local OS.
// Syscalls used by WriteFileAtomic are function fields so tests can inject failures.
type OSFileSystem struct {
	createTemp func(dir, pattern string) (writeSyncCloser, error)
	rename     func(oldpath, newpath string) error
	chmod      func(name string, mode os.FileMode) error
	remove     func(name string) error
}

// NewOSFileSystem creates an OSFileSystem backed by real syscalls.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{
		createTemp: func(dir, pattern string) (writeSyncCloser, error) {
			return os.CreateTemp(dir, pattern)
		},
		rename: os.Rename,
		chmod:  os.Chmod,
		remove: os.Remove,
	}
}

// Stat returns file info for a path, following symlinks.
func (r *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Lstat returns file info for a path without following symlinks.
func (r *OSFileSystem) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// ReadFile reads the whole file, failing with *FileTooLargeError when it
// exceeds maxSize bytes. A non-positive maxSize disables the check.
func (r *OSFileSystem) ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxSize <= 0 {
		return io.ReadAll(f)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, &FileTooLargeError{Path: path, Limit: maxSize}
	}
	return data, nil
}

// WriteFileAtomic writes content to a temp file in the target's directory,
// syncs it and renames it over path, so readers see either the old or the new
// content and never a partial write.
func (r *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := r.createTemp(dir, ".vics-tmp-*")
	if err != nil {
		return &AtomicWriteError{Path: path, Step: StepCreateTemp, Cause: err}
	}

	tmpPath := tmpFile.Name()
	needsCleanup := true

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = r.remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &AtomicWriteError{Path: path, Step: StepWrite, Cause: err}
	}

	if err := tmpFile.Sync(); err != nil {
		return &AtomicWriteError{Path: path, Step: StepSync, Cause: err}
	}

	if err := tmpFile.Close(); err != nil {
		tmpFile = nil
		return &AtomicWriteError{Path: path, Step: StepClose, Cause: err}
	}
	tmpFile = nil

	if err := r.rename(tmpPath, path); err != nil {
		return &AtomicWriteError{Path: path, Step: StepRename, Cause: err}
	}
	needsCleanup = false

	if err := r.chmod(path, perm); err != nil {
		return &AtomicWriteError{Path: path, Step: StepChmod, Cause: err}
	}

	return nil
}

// EnsureDirs creates a directory and its parents if they don't exist.
func (r *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ReadDir lists the entries of a directory sorted by name.
func (r *OSFileSystem) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// Open opens a file for reading.
func (r *OSFileSystem) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// WalkDir walks the tree rooted at root in lexical order without following symlinks.
func (r *OSFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// Remove deletes a file.
func (r *OSFileSystem) Remove(path string) error {
	return r.remove(path)
}
