package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceDir moves the fully prepared directory staged into place at dest.
// An existing dest is renamed aside to a hidden backup first and restored if
// the final rename fails, so dest always holds either the old or the new tree.
func ReplaceDir(staged, dest string) error {
	backupPath := ""
	if _, err := os.Lstat(dest); err == nil {
		backupPath = filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".backup")
		if err := os.RemoveAll(backupPath); err != nil {
			return fmt.Errorf("clearing stale backup %s: %w", backupPath, err)
		}
		if err := os.Rename(dest, backupPath); err != nil {
			return fmt.Errorf("moving %s aside: %w", dest, err)
		}
	}

	if err := os.Rename(staged, dest); err != nil {
		if backupPath != "" {
			if rbErr := RollbackDir(backupPath, dest); rbErr != nil {
				return fmt.Errorf("installing %s: %w (rollback failed: %v)", dest, err, rbErr)
			}
		}
		return fmt.Errorf("installing %s: %w", dest, err)
	}

	if backupPath != "" {
		if err := os.RemoveAll(backupPath); err != nil {
			return fmt.Errorf("removing backup %s: %w", backupPath, err)
		}
	}
	return nil
}

// RollbackDir restores a backup directory to its original location.
func RollbackDir(backupPath, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clearing %s: %w", dest, err)
	}
	if err := os.Rename(backupPath, dest); err != nil {
		return fmt.Errorf("restoring %s: %w", dest, err)
	}
	return nil
}
