// Package cli implements the libreflect command line.
package cli

import (
	"github.com/spf13/cobra"

	configcmd "github.com/VasilisMylonas/libreflect/internal/cli/config"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
)

// NewRootCmd builds the libreflect command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "libreflect",
		Short: "Inspect C types and data through DWARF debugging information",
		Long: `libreflect reads the DWARF debugging information of a compiled binary
and answers questions about the program's types, functions and global
variables. It can also serialize the initial value of a global variable
straight from the binary image as JSON, XML or a C compound literal.

Configuration is read from ~/.libreflect/config.yaml, then LIBREFLECT_*
environment variables, then command line flags. --config names a config file
directly; LIBREFLECT_CONFIG_DIR replaces the home directory, so the file is
read from $LIBREFLECT_CONFIG_DIR/.libreflect/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file path; takes precedence over LIBREFLECT_CONFIG_DIR (default ~/.libreflect/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	flags.BoolVar(&a.pretty, "pretty", true, "Human-readable colored logs")
	lrerrors.Must(rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml"), "register config flag")

	rootCmd.AddCommand(newInfoCmd(a))
	rootCmd.AddCommand(newTypeCmd(a))
	rootCmd.AddCommand(newFuncCmd(a))
	rootCmd.AddCommand(newVarCmd(a))
	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(configcmd.NewConfigCmd(a.loader))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
