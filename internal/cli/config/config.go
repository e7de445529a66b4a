// Package config implements the 'libreflect config' command family.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/VasilisMylonas/libreflect/internal/config"
)

// NewConfigCmd creates the config command and its subcommands. loader
// resolves the config file honoring the global --config flag.
func NewConfigCmd(loader func() *config.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage libreflect configuration",
		Long: `Manage libreflect configuration.

Configuration Priority:
  1. Command line flags (highest)
  2. LIBREFLECT_* environment variables
  3. Config file (~/.libreflect/config.yaml)

Environment Variables:
  LIBREFLECT_CONFIG_DIR  Directory holding .libreflect/ (default: ~)
  LIBREFLECT_FORMAT      Default dump format (json, xml, c)
  LIBREFLECT_MAX_DEPTH   Maximum struct and pointer nesting
  LIBREFLECT_CACHE_SIZE  Name lookups cached per binary (0 disables)
  LIBREFLECT_LOG_LEVEL   Log level
  LIBREFLECT_LOG_PRETTY  Colored console logs`,
		// The config file may be invalid; these commands report on it
		// instead of failing up front.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	cmd.AddCommand(newPathCmd(loader))
	cmd.AddCommand(newViewCmd(loader))
	cmd.AddCommand(newValidateCmd(loader))
	cmd.AddCommand(newInitCmd(loader))

	return cmd
}

func newPathCmd(loader func() *config.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), loader().Path())
		},
	}
}

func newViewCmd(loader func() *config.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Display the configuration after the config file and environment variables
are merged. Command line flags are not included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader().Load()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newValidateCmd(loader func() *config.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader()
			if _, err := l.Load(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", l.Path())
			return nil
		},
	}
}

func newInitCmd(loader func() *config.Loader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader()
			path := l.Path()

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}

			if err := l.Save(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
