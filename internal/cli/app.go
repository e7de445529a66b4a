package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/VasilisMylonas/libreflect/internal/config"
	"github.com/VasilisMylonas/libreflect/internal/logging"
	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

// app carries the global flags and the state they resolve to.
type app struct {
	configPath string
	logLevel   string
	pretty     bool

	cfg *config.Config
	// base has no component field; libraries add their own.
	base   zerolog.Logger
	logger zerolog.Logger
}

func (a *app) loader() *config.Loader {
	if a.configPath != "" {
		return config.NewFileLoader(a.configPath)
	}
	return config.NewLoader()
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Logs go to the command's error stream.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loader().Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := a.applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()

	a.cfg = cfg
	a.base = logging.New(lc)
	a.logger = logging.NewWithComponent(lc, "cli")
	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("format", cfg.Format).
		Int("cache_size", cfg.CacheSize).
		Int("max_depth", cfg.MaxDepth).
		Msg("Configuration loaded")
	return nil
}

// applyFlags overrides cfg with the global flags set on the command line.
func (a *app) applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("log-level") {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = a.pretty
	}
	return nil
}

// open loads the debugging information of the binary at path.
func (a *app) open(path string) (*reflection.Domain, error) {
	d, err := reflection.Load(path,
		reflection.WithLogger(a.base),
		reflection.WithCacheSize(a.cfg.CacheSize))
	if err != nil {
		return nil, err
	}
	return d, nil
}
