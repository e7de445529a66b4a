package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/pkg/serialize"
)

// AddOutputFlag adds a standard --output/-o flag selecting how listings are
// printed.
func AddOutputFlag(cmd *cobra.Command, outputVar *string, defaultOutput OutputFormat, supported []OutputFormat) {
	names := make([]string, len(supported))
	for i, f := range supported {
		names[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(names, ", "))
	cmd.Flags().StringVarP(outputVar, "output", "o", string(defaultOutput), description)

	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// AddFormatFlag adds a --format/-f flag naming a serialization format. An
// empty default defers to the configured format.
func AddFormatFlag(cmd *cobra.Command, formatVar *string) {
	description := fmt.Sprintf("Serialization format (%s)", strings.Join(serialize.FormatNames(), ", "))
	cmd.Flags().StringVarP(formatVar, "format", "f", "", description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return serialize.FormatNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateOutput checks if the output format is in the supported list.
func ValidateOutput(output string, supported []OutputFormat) error {
	for _, s := range supported {
		if output == string(s) {
			return nil
		}
	}

	names := make([]string, len(supported))
	for i, s := range supported {
		names[i] = string(s)
	}

	return fmt.Errorf("unsupported output %q, must be one of: %s",
		output, strings.Join(names, ", "))
}
