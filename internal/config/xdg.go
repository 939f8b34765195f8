// Package config provides XDG path helpers and the TOML settings file.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "inputlogger"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultSettingsPath returns the default TOML settings path.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "settings.toml")
}

// DefaultDBPath returns the default path for the session index.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "sessions.db")
}
