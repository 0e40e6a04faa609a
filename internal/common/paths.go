package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ErrConfigDir is returned when the user config directory cannot be created
var ErrConfigDir = errors.New("failed to setup the config directory")

const (
	// AppName names the per-user config directory
	AppName = "fyde"

	// SQLiteFileName is the fixed database file name inside the config directory
	SQLiteFileName = "storage.db3"

	// BadgerDirName is the fixed badger directory name inside the config directory
	BadgerDirName = "storage.badger"

	// LogFileName is the log file name used when file logging has no explicit path
	LogFileName = "fyde.log"
)

// ConfigDir returns the application directory under the user config home,
// creating it when it does not exist yet. System config dirs are never used.
func ConfigDir() (string, error) {
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("%w: user config home is not set", ErrConfigDir)
	}
	dir := filepath.Join(xdg.ConfigHome, AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigDir, err)
	}
	return dir, nil
}

// ConfigFilePath resolves name inside the application config directory
func ConfigFilePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ResolveStoragePaths fills empty file-mode storage paths with their config directory defaults.
// Memory mode needs no path and is left untouched.
func ResolveStoragePaths(config *Config) error {
	if config.IsMemory() {
		return nil
	}

	switch config.Storage.Type {
	case StorageTypeBadger:
		if config.Storage.Badger.Path == "" {
			path, err := ConfigFilePath(BadgerDirName)
			if err != nil {
				return err
			}
			config.Storage.Badger.Path = path
		}
	default:
		if config.Storage.SQLite.Path == "" {
			path, err := ConfigFilePath(SQLiteFileName)
			if err != nil {
				return err
			}
			config.Storage.SQLite.Path = path
		}
	}
	return nil
}
