package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DataFilesCheck verifies the data directory and that each data file, when
// present, holds valid JSON. With autofix set, files readable by other users
// are restricted to 0600.
type DataFilesCheck struct {
	dir     string
	files   []string
	autofix bool
}

// NewDataFilesCheck creates a new data files check. files are paths
// relative to dir or absolute.
func NewDataFilesCheck(dir string, files []string, autofix bool) *DataFilesCheck {
	return &DataFilesCheck{dir: dir, files: files, autofix: autofix}
}

func (c *DataFilesCheck) Name() string {
	return "Data Files"
}

func (c *DataFilesCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusPass,
			Detail: "not created yet",
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: fmt.Sprintf("inaccessible: %v", err),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: "path is not a directory",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{Label: c.dir, Status: StatusPass})

	for _, file := range c.files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, file)
		}
		result.Items = append(result.Items, c.checkJSONFile(path))
	}

	return result
}

func (c *DataFilesCheck) checkJSONFile(path string) CheckItem {
	label := filepath.Base(path)

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return CheckItem{Label: label, Status: StatusPass, Detail: "not created yet"}
	case err != nil:
		return CheckItem{Label: label, Status: StatusFail, Detail: fmt.Sprintf("unreadable: %v", err)}
	case len(data) == 0:
		return CheckItem{Label: label, Status: StatusPass, Detail: "empty"}
	case !json.Valid(data):
		return CheckItem{Label: label, Status: StatusFail, Detail: "invalid JSON"}
	}

	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm()&0o077 == 0 {
		return CheckItem{Label: label, Status: StatusPass}
	}

	if c.autofix {
		if err := os.Chmod(path, 0o600); err != nil {
			return CheckItem{Label: label, Status: StatusFail, Detail: fmt.Sprintf("chmod 600: %v", err), Fixable: true}
		}
		return CheckItem{Label: label, Status: StatusPass, Detail: "permissions set to 600"}
	}

	return CheckItem{
		Label:   label,
		Status:  StatusWarn,
		Detail:  fmt.Sprintf("permissions %o are broader than 600", info.Mode().Perm()),
		Fixable: true,
	}
}
