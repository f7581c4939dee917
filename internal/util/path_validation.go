package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateDropDir checks that the import drop directory is usable: it
// must be (or be creatable as) a writable directory, with no traversal
// components. Missing directories are created.
func ValidateDropDir(path string) error {
	if path == "" {
		return fmt.Errorf("drop directory path cannot be empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("drop directory path contains invalid directory traversal")
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", cleanPath)
		}
		if err := checkWritePermission(cleanPath); err != nil {
			return fmt.Errorf("no write permission for drop directory: %w", err)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access drop directory: %w", err)
	}

	if err := os.MkdirAll(cleanPath, 0755); err != nil {
		return fmt.Errorf("cannot create drop directory: %w", err)
	}
	return checkWritePermission(cleanPath)
}

// checkWritePermission checks if we have write permission to a directory.
// The watcher renames processed files in place, so write access is
// required, not just read.
func checkWritePermission(dirPath string) error {
	tempFile := filepath.Join(dirPath, ".casetrack_temp_check")
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}
	file.Close()
	os.Remove(tempFile)
	return nil
}
