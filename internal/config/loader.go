package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/VasilisMylonas/libreflect/internal/constants"
	"github.com/VasilisMylonas/libreflect/internal/safe"
)

// Loader handles loading and saving the config file.
type Loader struct {
	homeDir string
	path    string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. LIBREFLECT_CONFIG_DIR environment variable.
//  2. User home directory (~/).
//  3. The system temporary directory.
//
// When no config file exists, Load returns defaults with environment
// overrides applied.
func NewLoader() *Loader {
	if baseDir := os.Getenv(constants.EnvConfigDir); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return &Loader{homeDir: homeDir}
	}

	return &Loader{homeDir: filepath.Join(os.TempDir(), "libreflect-fallback")}
}

// NewFileLoader creates a loader bound to an explicit config file path.
func NewFileLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the path to the config file.
func (l *Loader) Path() string {
	if l.path != "" {
		return l.path
	}
	return filepath.Join(l.homeDir, constants.DefaultDir, constants.ConfigFile)
}

// Load loads the config file, falling back to defaults when it does not
// exist, then applies environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()
	cfg := DefaultConfig()

	data, err := safe.ReadFile(path, nil)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := MergeFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to the config file.
func (l *Loader) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := safe.WriteFile(l.Path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
