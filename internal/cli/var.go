package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/internal/cli/helpers"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

type globalInfo struct {
	Name     string `header:"Name" json:"name"`
	Type     string `header:"Type" json:"type"`
	Address  string `header:"Address" json:"address,omitempty"`
	Declared string `header:"Declared" json:"declared,omitempty"`
}

func newVarCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "var <binary> <name>",
		Short: "Describe a variable: type, address and declaration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateOutput(output, helpers.ListingOutputs); err != nil {
				return err
			}

			d, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer lrerrors.DeferClose(a.logger, d, "failed to close binary")

			v, err := d.VariableByName(args[1])
			if err != nil {
				return err
			}
			info, err := inspectGlobal(v)
			if err != nil {
				return err
			}

			formatter, err := helpers.NewFormatter(helpers.OutputFormat(output))
			if err != nil {
				return err
			}
			return formatter.Format(info, cmd.OutOrStdout())
		},
	}

	helpers.AddOutputFlag(cmd, &output, helpers.OutputTable, helpers.ListingOutputs)

	return cmd
}

func inspectGlobal(v reflection.Variable) (*globalInfo, error) {
	decl, err := inspectVariableDecl(v)
	if err != nil {
		return nil, err
	}
	info := &globalInfo{Name: decl.Name, Type: decl.Type}

	addr, err := v.Address()
	switch {
	case err == nil:
		info.Address = fmt.Sprintf("0x%x", addr)
	case errors.Is(err, reflection.ErrNoData):
		info.Address = "unavailable"
	default:
		return nil, err
	}

	loc, err := v.DeclLocation()
	switch {
	case err == nil:
		file := loc.File
		if file == "" {
			file = "?"
		}
		info.Declared = fmt.Sprintf("%s:%d:%d", file, loc.Line, loc.Column)
	case !errors.Is(err, reflection.ErrNoData):
		return nil, err
	}
	return info, nil
}
