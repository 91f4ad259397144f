package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WorkspaceCheck verifies that the data directory and the JSON documents in
// it are readable. With autofix, unreadable documents are moved aside so
// the next command starts from defaults.
type WorkspaceCheck struct {
	dataDir string
	files   []string
	autofix bool
	now     func() time.Time
}

// NewWorkspaceCheck creates a new workspace check over the given files.
func NewWorkspaceCheck(dataDir string, files []string, autofix bool) *WorkspaceCheck {
	return &WorkspaceCheck{dataDir: dataDir, files: files, autofix: autofix, now: time.Now}
}

func (c *WorkspaceCheck) Name() string {
	return "Workspace"
}

func (c *WorkspaceCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dataDir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, item("data_dir", StatusPass, c.dataDir+" (created on first write)"))
		return result
	case err != nil:
		result.Items = append(result.Items, item("data_dir", StatusFail, fmt.Sprintf("inaccessible: %v", err)))
		return result
	case !info.IsDir():
		result.Items = append(result.Items, item("data_dir", StatusFail, "path is not a directory"))
		return result
	default:
		result.Items = append(result.Items, item("data_dir", StatusPass, c.dataDir))
	}

	for _, path := range c.files {
		result.Items = append(result.Items, c.checkFile(path))
	}

	return result
}

func (c *WorkspaceCheck) checkFile(path string) CheckItem {
	label := filepath.Base(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return item(label, StatusPass, "not created yet")
	}
	if err != nil {
		return item(label, StatusFail, fmt.Sprintf("unreadable: %v", err))
	}
	if len(data) == 0 || json.Valid(data) {
		return item(label, StatusPass, "")
	}

	if !c.autofix {
		return CheckItem{Label: label, Status: StatusFail, Detail: "invalid JSON", Fixable: true}
	}

	aside := fmt.Sprintf("%s.corrupt-%s", path, c.now().Format("20060102T150405"))
	if err := os.Rename(path, aside); err != nil {
		return item(label, StatusFail, fmt.Sprintf("invalid JSON, could not move aside: %v", err))
	}
	return item(label, StatusWarn, "invalid JSON, moved to "+filepath.Base(aside))
}
