// Package config provides configuration loading and management.
package config

import (
	"github.com/VasilisMylonas/libreflect/internal/constants"
	"github.com/VasilisMylonas/libreflect/internal/logging"
)

// SchemaVersion is the current config file schema version.
const SchemaVersion = "1"

// Config is the user configuration stored at ~/.libreflect/config.yaml.
type Config struct {
	Version string `yaml:"version"`

	// Format is the default output format of the dump command.
	Format string `yaml:"format" env:"FORMAT"`
	// MaxDepth bounds struct and pointer nesting when serializing.
	MaxDepth int `yaml:"max_depth" env:"MAX_DEPTH"`
	// CacheSize is the number of name lookups remembered per binary. Zero
	// disables the cache.
	CacheSize int `yaml:"cache_size" env:"CACHE_SIZE"`

	Log LogConfig `yaml:"log"`
}

// LogConfig contains logging preferences.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:   SchemaVersion,
		Format:    constants.DefaultFormat,
		MaxDepth:  constants.DefaultMaxDepth,
		CacheSize: constants.DefaultCacheSize,
		Log: LogConfig{
			Level:  constants.DefaultLogLevel,
			Pretty: constants.DefaultLogPretty,
		},
	}
}

// Logging returns the logger configuration derived from c.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Pretty = c.Log.Pretty
	return cfg
}
