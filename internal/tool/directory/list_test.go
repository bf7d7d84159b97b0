package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/fsutil"
	"github.com/Cyclone1070/vics/internal/tool/service/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListTool(t *testing.T, files map[string]string) (*ListDirectoryTool, string, *config.Config) {
	t.Helper()
	policy, err := sandbox.NewPolicy(sandbox.PolicyConfig{Root: t.TempDir()})
	require.NoError(t, err)
	root := policy.Root()
	for rel, data := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		if data == "<dir>" {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	fs := fsutil.NewOSFileSystem()
	matcher, err := git.NewIgnoreMatcher(root, fs)
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	return NewListDirectoryTool(sandbox.NewGuard(policy), fs, matcher, cfg), root, cfg
}

func TestListDirectory_NonRecursive_SortedWithDirSuffix(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{
		"b.txt":       "b",
		"a.go":        "a",
		"src/main.go": "package main",
		".env":        "SECRET=1",
	})

	out, err := lt.Run(context.Background(), ListDirectoryRequest{})

	require.NoError(t, err)
	assert.Equal(t, ".env\na.go\nb.txt\nsrc/", out)
}

func TestListDirectory_Recursive_SkipsHiddenAndIgnored(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{
		".gitignore":          "build/\n*.log\n",
		"build/out.bin":       "x",
		"debug.log":           "x",
		".hidden/secret.txt":  "x",
		"src/main.go":         "package main",
		"src/util/strings.go": "package util",
	})

	out, err := lt.Run(context.Background(), ListDirectoryRequest{Path: ".", Recursive: true})

	require.NoError(t, err)
	assert.Equal(t, "src/\nsrc/main.go\nsrc/util/\nsrc/util/strings.go", out)
}

func TestListDirectory_Subdirectory(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{
		"pkg/a.go":   "a",
		"pkg/sub/b":  "b",
		"other/c.go": "c",
	})

	out, err := lt.Run(context.Background(), ListDirectoryRequest{Path: "pkg"})

	require.NoError(t, err)
	assert.Equal(t, "a.go\nsub/", out)
}

func TestListDirectory_Empty(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{"empty": "<dir>"})

	out, err := lt.Run(context.Background(), ListDirectoryRequest{Path: "empty"})

	require.NoError(t, err)
	assert.Equal(t, "(empty directory)", out)
}

func TestListDirectory_EntryCap(t *testing.T) {
	lt, _, cfg := newListTool(t, map[string]string{
		"a": "1", "b": "2", "c": "3", "d": "4",
	})
	cfg.Tools.MaxListEntries = 2

	out, err := lt.Run(context.Background(), ListDirectoryRequest{})

	require.NoError(t, err)
	assert.Contains(t, out, "... (truncated at 2 entries)")
}

func TestListDirectory_Errors(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{"file.txt": "x"})

	_, err := lt.Run(context.Background(), ListDirectoryRequest{Path: "missing"})
	assert.Equal(t, tool.KindNotFound, tool.Classify(err))

	_, err = lt.Run(context.Background(), ListDirectoryRequest{Path: "file.txt"})
	assert.Equal(t, tool.KindValidation, tool.Classify(err))

	_, err = lt.Run(context.Background(), ListDirectoryRequest{Path: "../.."})
	assert.Equal(t, tool.KindPermissionDenied, tool.Classify(err))
}

func TestListDirectory_Recursive_DoesNotFollowSymlinks(t *testing.T) {
	lt, root, _ := newListTool(t, map[string]string{"real/inner.txt": "x"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	out, err := lt.Run(context.Background(), ListDirectoryRequest{Recursive: true})

	require.NoError(t, err)
	assert.Equal(t, "link\nreal/\nreal/inner.txt", out)
}

func TestListDirectory_Cancelled(t *testing.T) {
	lt, _, _ := newListTool(t, map[string]string{"a": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lt.Run(ctx, ListDirectoryRequest{})

	assert.ErrorIs(t, err, context.Canceled)
}
