package sandbox

import (
	"os"
	"path/filepath"
	"strings"
)

// fileSystem is the minimal filesystem surface needed for path resolution.
type fileSystem interface {
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
	UserHomeDir() (string, error)
}

type osFileSystem struct{}

func (osFileSystem) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }
func (osFileSystem) Readlink(path string) (string, error)   { return os.Readlink(path) }
func (osFileSystem) UserHomeDir() (string, error)           { return os.UserHomeDir() }

// Guard decides whether a filesystem or process action may proceed.
// It holds no mutable state beyond its immutable Policy.
type Guard struct {
	policy *Policy
	fs     fileSystem
}

// NewGuard creates a Guard backed by the real filesystem.
func NewGuard(policy *Policy) *Guard {
	return NewGuardWithFS(policy, osFileSystem{})
}

// NewGuardWithFS creates a Guard with a custom filesystem (for testing).
func NewGuardWithFS(policy *Policy, fs fileSystem) *Guard {
	if policy == nil {
		panic("policy is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	return &Guard{policy: policy, fs: fs}
}

// Policy returns the guard's policy.
func (g *Guard) Policy() *Policy {
	return g.policy
}

// Root returns the canonical workspace root.
func (g *Guard) Root() string {
	return g.policy.root
}

// AuthorizePath resolves candidate against the workspace root and returns its
// canonical absolute form, or an error matching ErrPathEscape when the
// resolved path lies outside the root.
func (g *Guard) AuthorizePath(candidate string) (string, error) {
	return resolve(g.policy.root, g.fs, candidate)
}

// Rel renders an authorized absolute path relative to the root using forward slashes.
func (g *Guard) Rel(abs string) string {
	rel, err := filepath.Rel(g.policy.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// AuthorizeCommand fails with an error matching ErrForbiddenCommand when the
// command line matches any deny pattern.
func (g *Guard) AuthorizeCommand(commandLine string) error {
	normalised := normaliseCommand(commandLine)
	for _, rule := range g.policy.deny {
		if rule.re.MatchString(normalised) {
			return &ForbiddenCommandError{Command: commandLine, Pattern: rule.source}
		}
	}
	return nil
}

// normaliseCommand lowercases the command and collapses whitespace runs.
func normaliseCommand(commandLine string) string {
	return strings.Join(strings.Fields(strings.ToLower(commandLine)), " ")
}
