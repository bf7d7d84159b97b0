package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root  string
	guard *sandbox.Guard
	fs    *fsutil.OSFileSystem
	cfg   *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	policy, err := sandbox.NewPolicy(sandbox.PolicyConfig{Root: t.TempDir()})
	require.NoError(t, err)
	return &fixture{
		root:  policy.Root(),
		guard: sandbox.NewGuard(policy),
		fs:    fsutil.NewOSFileSystem(),
		cfg:   config.DefaultConfig(),
	}
}

func (f *fixture) write(t *testing.T, rel, data string) {
	t.Helper()
	path := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	require.NoError(t, err)
	return string(data)
}

// --- read_file ---

func TestReadFile_ReturnsContent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "hello.txt", "hi there")
	rt := NewReadFileTool(f.guard, f.fs, f.cfg)

	out, err := rt.Run(context.Background(), ReadFileRequest{Path: "hello.txt"})

	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestReadFile_Missing_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	rt := NewReadFileTool(f.guard, f.fs, f.cfg)

	_, err := rt.Run(context.Background(), ReadFileRequest{Path: "nope.txt"})

	assert.Equal(t, tool.KindNotFound, tool.Classify(err))
}

func TestReadFile_OutsideWorkspace_ReturnsPermissionDenied(t *testing.T) {
	f := newFixture(t)
	rt := NewReadFileTool(f.guard, f.fs, f.cfg)

	_, err := rt.Run(context.Background(), ReadFileRequest{Path: "../../etc/passwd"})

	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
	assert.Equal(t, tool.KindPermissionDenied, tool.Classify(err))
}

func TestReadFile_DirectoryAndBinary_Rejected(t *testing.T) {
	f := newFixture(t)
	f.write(t, "dir/bin.dat", "a\x00b")
	rt := NewReadFileTool(f.guard, f.fs, f.cfg)

	_, err := rt.Run(context.Background(), ReadFileRequest{Path: "dir"})
	var isDir *IsDirectoryError
	assert.True(t, errors.As(err, &isDir))

	_, err = rt.Run(context.Background(), ReadFileRequest{Path: "dir/bin.dat"})
	var bin *BinaryFileError
	assert.True(t, errors.As(err, &bin))
}

// --- write_file ---

func TestWriteFile_RoundTrip_CreatesParents(t *testing.T) {
	f := newFixture(t)
	wt := NewWriteFileTool(f.guard, f.fs, f.cfg)
	rt := NewReadFileTool(f.guard, f.fs, f.cfg)

	out, err := wt.Run(context.Background(), WriteFileRequest{Path: "a/b/c.txt", Content: "line1\nline2\n"})
	require.NoError(t, err)
	assert.Equal(t, "Wrote 12 bytes to a/b/c.txt", out)

	got, err := rt.Run(context.Background(), ReadFileRequest{Path: "a/b/c.txt"})
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", got)
}

func TestWriteFile_Overwrite_PreservesPermissions(t *testing.T) {
	f := newFixture(t)
	f.write(t, "run.sh", "old")
	require.NoError(t, os.Chmod(filepath.Join(f.root, "run.sh"), 0o755))
	wt := NewWriteFileTool(f.guard, f.fs, f.cfg)

	_, err := wt.Run(context.Background(), WriteFileRequest{Path: "run.sh", Content: "new"})

	require.NoError(t, err)
	assert.Equal(t, "new", f.read(t, "run.sh"))
	info, err := os.Stat(filepath.Join(f.root, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFile_OutsideWorkspace_NothingWritten(t *testing.T) {
	f := newFixture(t)
	outside := t.TempDir()
	wt := NewWriteFileTool(f.guard, f.fs, f.cfg)

	_, err := wt.Run(context.Background(), WriteFileRequest{Path: filepath.Join(outside, "x.txt"), Content: "x"})

	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
	_, statErr := os.Stat(filepath.Join(outside, "x.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFile_TooLarge_Rejected(t *testing.T) {
	f := newFixture(t)
	f.cfg.Tools.MaxFileSize = 4
	wt := NewWriteFileTool(f.guard, f.fs, f.cfg)

	_, err := wt.Run(context.Background(), WriteFileRequest{Path: "big.txt", Content: "12345"})

	var tooLarge *FileTooLargeError
	assert.True(t, errors.As(err, &tooLarge))
}

// --- edit_file ---

func TestEditFile_SingleMatch_Replaced(t *testing.T) {
	f := newFixture(t)
	f.write(t, "main.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	out, err := et.Run(context.Background(), EditFileRequest{Path: "main.go", Find: `println("hi")`, Replace: `println("bye")`})

	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {\n\tprintln(\"bye\")\n}\n", f.read(t, "main.go"))
	assert.Contains(t, out, "Edited main.go (+1 -1)")
	assert.Contains(t, out, "--- a/main.go")
}

func TestEditFile_NoOccurrence_ReturnsNoMatch(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "alpha beta")
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	_, err := et.Run(context.Background(), EditFileRequest{Path: "a.txt", Find: "gamma", Replace: "delta"})

	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.False(t, nm.Ambiguous())
	assert.Equal(t, tool.KindNoMatch, tool.Classify(err))
	assert.Equal(t, "alpha beta", f.read(t, "a.txt"))
}

func TestEditFile_MultipleOccurrences_ReturnsAmbiguousNoMatch(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "x = 1\nx = 1\n")
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	_, err := et.Run(context.Background(), EditFileRequest{Path: "a.txt", Find: "x = 1", Replace: "x = 2"})

	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.True(t, nm.Ambiguous())
	assert.Equal(t, 2, nm.Count)
	assert.Equal(t, "x = 1\nx = 1\n", f.read(t, "a.txt"), "file must not change")
}

func TestEditFile_CRLF_Preserved(t *testing.T) {
	f := newFixture(t)
	f.write(t, "win.txt", "one\r\ntwo\r\n")
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	_, err := et.Run(context.Background(), EditFileRequest{Path: "win.txt", Find: "one\ntwo", Replace: "uno\ndos"})

	require.NoError(t, err)
	assert.Equal(t, "uno\r\ndos\r\n", f.read(t, "win.txt"))
}

func TestEditFile_EmptyFind_ReturnsValidationError(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "x")
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	_, err := et.Run(context.Background(), EditFileRequest{Path: "a.txt", Find: "", Replace: "y"})

	assert.Equal(t, tool.KindValidation, tool.Classify(err))
}

func TestEditFile_Missing_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	et := NewEditFileTool(f.guard, f.fs, f.cfg)

	_, err := et.Run(context.Background(), EditFileRequest{Path: "ghost.txt", Find: "a", Replace: "b"})

	assert.Equal(t, tool.KindNotFound, tool.Classify(err))
}

// --- delete_file ---

func TestDeleteFile_RemovesFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "tmp/junk.txt", "junk")
	dt := NewDeleteFileTool(f.guard, f.fs)

	out, err := dt.Run(context.Background(), DeleteFileRequest{Path: "tmp/junk.txt"})

	require.NoError(t, err)
	assert.Equal(t, "Deleted tmp/junk.txt", out)
	_, statErr := os.Stat(filepath.Join(f.root, "tmp", "junk.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteFile_Missing_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	dt := NewDeleteFileTool(f.guard, f.fs)

	_, err := dt.Run(context.Background(), DeleteFileRequest{Path: "ghost.txt"})

	assert.Equal(t, tool.KindNotFound, tool.Classify(err))
}

func TestDeleteFile_Directory_Refused(t *testing.T) {
	f := newFixture(t)
	f.write(t, "keep/file.txt", "x")
	dt := NewDeleteFileTool(f.guard, f.fs)

	_, err := dt.Run(context.Background(), DeleteFileRequest{Path: "keep"})

	var isDir *IsDirectoryError
	assert.True(t, errors.As(err, &isDir))
	assert.DirExists(t, filepath.Join(f.root, "keep"))
}

func TestDeleteFile_Traversal_ReturnsPermissionDenied(t *testing.T) {
	f := newFixture(t)
	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("precious"), 0o644))
	dt := NewDeleteFileTool(f.guard, f.fs)

	rel, err := filepath.Rel(f.root, victim)
	require.NoError(t, err)
	_, err = dt.Run(context.Background(), DeleteFileRequest{Path: rel})

	assert.Equal(t, tool.KindPermissionDenied, tool.Classify(err))
	assert.FileExists(t, victim)
}

func TestConstructors_PanicOnNilDeps(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() { NewReadFileTool(nil, f.fs, f.cfg) })
	assert.Panics(t, func() { NewWriteFileTool(f.guard, nil, f.cfg) })
	assert.Panics(t, func() { NewEditFileTool(f.guard, f.fs, nil) })
	assert.Panics(t, func() { NewDeleteFileTool(nil, f.fs) })
}
