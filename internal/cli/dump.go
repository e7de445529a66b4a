package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/internal/cli/helpers"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
	"github.com/VasilisMylonas/libreflect/pkg/serialize"
)

func newDumpCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump <binary> <variable>",
		Short: "Serialize the initial value of a global variable",
		Long: `Serialize the value a global variable holds in the binary image, before the
program runs. Pointers are followed into the image; const char* members are
printed as strings.

The format defaults to the configured one (json unless changed). XML output
is wrapped in a root element named after the variable.`,
		Example: `  libreflect dump ./app config
  libreflect dump ./app config --format c`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			f, err := serialize.FormatByName(format)
			if err != nil {
				return err
			}

			d, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer lrerrors.DeferClose(a.logger, d, "failed to close binary")

			image := d.Container().Image()
			if image == nil {
				return errors.New("binary has no loadable sections")
			}

			v, err := d.VariableByName(args[1])
			if err != nil {
				return err
			}
			addr, err := v.Address()
			if err != nil {
				return fmt.Errorf("variable %s has no static address: %w", args[1], err)
			}
			typ, err := v.Type()
			if err != nil {
				return err
			}

			enc := serialize.NewEncoder(cmd.OutOrStdout(), f,
				serialize.WithLogger(a.base),
				serialize.WithMaxDepth(a.cfg.MaxDepth))
			xml := strings.EqualFold(format, "xml")
			return dump(cmd.OutOrStdout(), xml, args[1], func() error {
				return enc.EncodeAt(image, addr, typ)
			})
		},
	}

	helpers.AddFormatFlag(cmd, &format)

	return cmd
}

// dump runs encode, wrapping its output in a root element for XML.
func dump(w io.Writer, xml bool, name string, encode func() error) error {
	if xml {
		if _, err := fmt.Fprintf(w, "<%s>", name); err != nil {
			return err
		}
	}
	if err := encode(); err != nil {
		fmt.Fprintln(w)
		return err
	}
	if xml {
		if _, err := fmt.Fprintf(w, "</%s>", name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
