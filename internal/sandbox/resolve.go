package sandbox

import (
	"os"
	"path/filepath"
	"strings"
)

const maxSymlinkHops = 64

// resolve maps candidate to a canonical absolute path inside root.
// Symlinks are followed component by component and every target is walked
// again from the root, so a link can never smuggle in an outside directory.
// Missing trailing components are allowed.
func resolve(root string, fs fileSystem, candidate string) (string, error) {
	path := candidate
	if path == "" {
		path = "."
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := fs.UserHomeDir()
		if err != nil {
			return "", &PathEscapeError{Path: candidate}
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	var absInput string
	if filepath.IsAbs(path) {
		absInput = filepath.Clean(path)
	} else {
		absInput = filepath.Join(root, path)
	}

	hops := 0
	return walk(root, fs, absInput, candidate, &hops)
}

// walk resolves abs one component at a time. When a component is a symlink,
// the link target joined with the remaining components is walked afresh.
func walk(root string, fs fileSystem, abs, candidate string, hops *int) (string, error) {
	if !isWithin(abs, root) {
		return "", &PathEscapeError{Path: candidate}
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", &PathEscapeError{Path: candidate}
	}
	if rel == "." {
		return root, nil
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	current := root
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		next := filepath.Join(current, part)

		info, err := fs.Lstat(next)
		if err != nil {
			if os.IsNotExist(err) {
				// Nothing below a missing entry can be a symlink yet.
				return filepath.Join(append([]string{next}, parts[i+1:]...)...), nil
			}
			return "", &SymlinkError{Path: candidate, Reason: "lstat failed", Cause: err}
		}

		if info.Mode()&os.ModeSymlink == 0 {
			current = next
			continue
		}

		*hops++
		if *hops > maxSymlinkHops {
			return "", &SymlinkError{Path: candidate, Reason: "too many levels of symbolic links"}
		}

		target, err := fs.Readlink(next)
		if err != nil {
			return "", &SymlinkError{Path: candidate, Reason: "readlink failed", Cause: err}
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(current, target)
		}
		target = filepath.Clean(target)
		if !isWithin(target, root) {
			return "", &PathEscapeError{Path: candidate}
		}

		return walk(root, fs, filepath.Join(append([]string{target}, parts[i+1:]...)...), candidate, hops)
	}

	return current, nil
}

// isWithin reports whether path is root or a descendant of it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
