package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/internal/cli/helpers"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

type variableInfo struct {
	Name string `header:"Name" json:"name"`
	Type string `header:"Type" json:"type"`
}

type functionInfo struct {
	Name      string         `json:"name"`
	Signature string         `json:"signature"`
	Returns   string         `json:"returns"`
	Extern    *bool          `json:"extern,omitempty"`
	Params    []variableInfo `json:"params"`
	Locals    []variableInfo `json:"locals"`
}

func newFuncCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "func <binary> <name>",
		Short: "Describe a function: signature, parameters and locals",
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

			fn, err := d.FunctionByName(args[1])
			if err != nil {
				return err
			}
			info, err := inspectFunction(fn)
			if err != nil {
				return err
			}
			return printFunction(cmd.OutOrStdout(), info, helpers.OutputFormat(output))
		},
	}

	helpers.AddOutputFlag(cmd, &output, helpers.OutputTable, helpers.ListingOutputs)

	return cmd
}

func inspectFunction(fn reflection.Function) (*functionInfo, error) {
	name, err := fn.Name()
	if err != nil {
		return nil, err
	}
	info := &functionInfo{Name: name, Returns: "void", Params: []variableInfo{}, Locals: []variableInfo{}}

	ret, err := fn.ReturnType()
	switch {
	case err == nil:
		info.Returns = helpers.Describe(ret)
	case !errors.Is(err, reflection.ErrNoData):
		return nil, err
	}

	if extern, err := fn.IsExtern(); err == nil {
		info.Extern = &extern
	}

	info.Params, err = collect(fn.NumParams, fn.ParamByIndex)
	if err != nil {
		return nil, err
	}
	info.Locals, err = collect(fn.NumVars, fn.VarByIndex)
	if err != nil {
		return nil, err
	}

	params := make([]string, len(info.Params))
	for i, p := range info.Params {
		params[i] = p.Type + " " + p.Name
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	info.Signature = fmt.Sprintf("%s %s(%s)", info.Returns, name, strings.Join(params, ", "))
	if info.Extern != nil && !*info.Extern {
		info.Signature = "static " + info.Signature
	}
	return info, nil
}

func collect(count func() (int, error), at func(int) (reflection.Variable, error)) ([]variableInfo, error) {
	n, err := count()
	if err != nil {
		return nil, err
	}
	out := make([]variableInfo, 0, n)
	for i := 0; i < n; i++ {
		v, err := at(i)
		if err != nil {
			return nil, err
		}
		vi, err := inspectVariableDecl(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vi)
	}
	return out, nil
}

func inspectVariableDecl(v reflection.Variable) (variableInfo, error) {
	name, err := v.Name()
	if err != nil {
		return variableInfo{}, err
	}
	vi := variableInfo{Name: name, Type: "?"}
	if typ, err := v.Type(); err == nil {
		vi.Type = helpers.Describe(typ)
	}
	return vi, nil
}

func printFunction(w io.Writer, info *functionInfo, output helpers.OutputFormat) error {
	if output == helpers.OutputJSON {
		return (&helpers.JSONFormatter{}).Format(info, w)
	}

	fmt.Fprintf(w, "%s\n", colorName(info.Signature))
	if len(info.Params) > 0 {
		fmt.Fprintf(w, "\n%s\n", colorLabel("parameters:"))
		if err := (&helpers.TableFormatter{}).Format(info.Params, w); err != nil {
			return err
		}
	}
	if len(info.Locals) > 0 {
		fmt.Fprintf(w, "\n%s\n", colorLabel("locals:"))
		if err := (&helpers.TableFormatter{}).Format(info.Locals, w); err != nil {
			return err
		}
	}
	return nil
}
