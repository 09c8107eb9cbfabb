package pathsafe

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a resolved path escapes the root directory.
var ErrOutsideRoot = errors.New("path escapes root directory")

// Resolve joins root with a user-supplied relative path and returns the
// canonical absolute result, or ErrOutsideRoot if the cleaned path is not a
// descendant of root. An empty relative path resolves to the root itself.
func Resolve(root, relativePath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	if relativePath == "" {
		return absRoot, nil
	}

	abs, err := filepath.Abs(filepath.Join(absRoot, relativePath))
	if err != nil {
		return "", err
	}

	if !IsWithin(absRoot, abs) {
		return "", ErrOutsideRoot
	}

	return abs, nil
}

// IsWithin reports whether path is root itself or a descendant of root.
// Both arguments must already be absolute and cleaned.
func IsWithin(root, path string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
