package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "deutsch"

// GetConfigDir returns the OS-appropriate configuration directory for deutsch
func GetConfigDir() (string, error) {
	// xdg resolves $XDG_CONFIG_HOME, ~/Library/Application Support and
	// %LOCALAPPDATA% for us
	if xdg.ConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
	return filepath.Join(xdg.ConfigHome, appName), nil
}

// GetDataDir returns the directory holding the history database
func GetDataDir() (string, error) {
	if xdg.DataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".local", "share", appName), nil
	}
	return filepath.Join(xdg.DataHome, appName), nil
}

// GetConfigFile returns the path of config.toml
func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetDatabasePath returns the default history database location
func GetDatabasePath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.db"), nil
}

// EnsureConfigDirs creates the config and data directories if they don't exist
func EnsureConfigDirs() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	dataDir, err := GetDataDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	return nil
}
