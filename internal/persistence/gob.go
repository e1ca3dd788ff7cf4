// Package persistence writes and reads gob files.
package persistence

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SaveGob encodes object with gob into filePath, creating parent directories.
// The file is written under a temporary name and renamed into place, so a
// reader never sees a half-written file.
func SaveGob(filePath string, object any) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := gob.NewEncoder(tmp).Encode(object); err != nil {
		closeQuietly(tmp, tmpPath)
		return fmt.Errorf("failed to gob encode to file %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filePath, err)
	}
	committed = true
	return nil
}

// LoadGob decodes the gob file at filePath into objectPointer.
// A missing file yields os.ErrNotExist so callers can treat it as a fresh start.
func LoadGob(filePath string, objectPointer any) error {
	file, err := os.Open(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer closeQuietly(file, filePath)

	if err := gob.NewDecoder(file).Decode(objectPointer); err != nil {
		return fmt.Errorf("failed to gob decode from file %s: %w", filePath, err)
	}
	return nil
}

func closeQuietly(file *os.File, path string) {
	if err := file.Close(); err != nil {
		slog.Warn("failed to close file", "path", path, "error", err)
	}
}
