package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// IsSymlink reports whether path itself is a symbolic link. A missing path
// is not a symlink.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// ReadSymlinkTarget returns the absolute target of a symlink. Relative
// targets are resolved against the directory containing the link.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("reading symlink %s: %w", path, err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// RemoveSymlink removes the link itself, never the directory it points to.
func RemoveSymlink(path string) error {
	if !IsSymlink(path) {
		return fmt.Errorf("%s is not a symlink", path)
	}
	return os.Remove(path)
}
