// Package filex resolves and prepares on-disk locations for local state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the per-user directory name used when no data dir is given.
const AppDirName = "cookquest"

// userConfigDir is a test seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

// EnsureDataDir returns an absolute, existing directory for local state
// (SQLite database, dotfiles). An empty dir means the per-user config
// directory; a relative dir is resolved against the working directory.
// The directory is created with 0700 since it holds credentials.
func EnsureDataDir(dir string) (string, error) {
	if dir == "" {
		base, err := userConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
		dir = filepath.Join(base, AppDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// DataFile joins name onto the data dir, creating the dir when needed.
func DataFile(dir, name string) (string, error) {
	d, err := EnsureDataDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}
