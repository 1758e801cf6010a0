package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// privateFileMode is used for every file written by this package.
const privateFileMode = 0o600

// readFile decodes the JSON document at path into v. It reports false when
// the file does not exist or is empty, leaving v untouched.
func readFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return true, nil
}

// writeFile writes v as indented JSON atomically: the document is written to
// a temp file with owner-only permissions and renamed over path.
func writeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := replaceWith(tmp, path, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func replaceWith(tmp, path string, data []byte) error {
	if err := os.WriteFile(tmp, data, privateFileMode); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing temp file.
	if err := os.Chmod(tmp, privateFileMode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
