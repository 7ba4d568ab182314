// Package config handles global confpack configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global confpack configuration. Command-line flags
// override anything set here.
type Config struct {
	// BackendURL is the conference backend base URL.
	BackendURL string `toml:"backend_url"`

	// OutputDir is the default root for export output trees.
	OutputDir string `toml:"output_dir"`

	// SnapshotPath is the sqlite cache used for offline rebuilds.
	SnapshotPath string `toml:"snapshot_path"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown
	// rendering, as a hex color ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetOutputDir returns the configured output root, defaulting to ./out.
func (c *Config) GetOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return "out"
}

// GetSnapshotPath returns the snapshot database path, defaulting to a
// per-user cache location.
func (c *Config) GetSnapshotPath() string {
	if c.SnapshotPath != "" {
		return c.SnapshotPath
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "confpack", "snapshot.db")
	}
	return filepath.Join(".", "snapshot.db")
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/confpack/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "confpack", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "confpack", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}
