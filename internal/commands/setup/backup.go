package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const backupSuffix = ".bak"

// BackupConfig copies the config at path to path.bak, replacing any older
// backup. It returns "" when there is no config to back up.
func BackupConfig(path string) (string, error) {
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("read config: %w", err)
	}

	dst := path + backupSuffix
	if err := os.WriteFile(dst, content, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	// WriteFile keeps the mode of a backup that already existed.
	if err := os.Chmod(dst, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	return dst, nil
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
