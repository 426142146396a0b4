package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./tvingest.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tvingest", "config.toml")
}

// defaultHistoryPath returns the XDG-compliant default history database
// path.
func defaultHistoryPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./tvingest.db"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "tvingest", "history.db")
}

// Discover finds the config file using the standard search order:
//  1. TVINGEST_CONFIG environment variable
//  2. ./tvingest.toml (current directory)
//  3. $XDG_CONFIG_HOME/tvingest/config.toml
//  4. /etc/tvingest/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv("TVINGEST_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("TVINGEST_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	paths := []string{
		"./tvingest.toml",
		DefaultPath(),
		"/etc/tvingest/config.toml",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
