package config

import (
	"fmt"

	"github.com/caarlos0/env/v8"

	"github.com/VasilisMylonas/libreflect/internal/constants"
)

// MergeFromEnv overrides fields of cfg with LIBREFLECT_* environment
// variables. Fields whose variable is unset keep their current value.
func MergeFromEnv(cfg *Config) error {
	return mergeFromEnv(cfg, nil)
}

func mergeFromEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: constants.EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
