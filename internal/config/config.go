// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
)

// Config holds all application configuration paths
type Config struct {
	HomeDir      string
	WatcherDir   string
	DatabasePath string
	SettingsPath string
	LogDir       string
}

// Load creates a Config instance with resolved paths
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	watcherDir := filepath.Join(home, ".poe-watcher")
	logDir := filepath.Join(watcherDir, "logs")

	// Ensure directories exist
	for _, dir := range []string{watcherDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Config{
		HomeDir:      home,
		WatcherDir:   watcherDir,
		DatabasePath: filepath.Join(watcherDir, "runs.db"),
		SettingsPath: filepath.Join(watcherDir, "settings.yaml"),
		LogDir:       logDir,
	}, nil
}
