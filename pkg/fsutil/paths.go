package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "kagglehub"

	// CacheDirEnv overrides the cache root directory.
	CacheDirEnv = "KAGGLEHUB_CACHE"
)

// GetCacheDir returns the cache root. The KAGGLEHUB_CACHE override is read on
// every call so that changing it mid-process is observed.
// Default: ~/.cache/kagglehub
func GetCacheDir() (string, error) {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// GetConfigDir returns the platform-specific configuration directory for the application.
// On Linux: ~/.config/kagglehub/
// On macOS: ~/Library/Application Support/kagglehub/
// On Windows: %AppData%\kagglehub\
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
