package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/internal/cli/helpers"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

var (
	colorKind  = color.New(color.FgMagenta).SprintFunc()
	colorName  = color.New(color.Bold).SprintFunc()
	colorLabel = color.New(color.FgHiBlack).SprintFunc()
)

type memberInfo struct {
	Name   string `header:"Member" json:"name"`
	Type   string `header:"Type" json:"type"`
	Offset int64  `header:"Offset" json:"offset"`
	Size   int64  `header:"Size" json:"size,omitempty"`
}

type typeInfo struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Underlying string       `json:"underlying,omitempty"`
	Size       int64        `json:"size,omitempty"`
	Repr       string       `json:"repr,omitempty"`
	Members    []memberInfo `json:"members,omitempty"`
}

func newTypeCmd(a *app) *cobra.Command {
	var (
		output string
		tree   bool
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "type <binary> <name>",
		Short: "Describe a named type",
		Long: `Describe a type declared in the binary: its kind, size and encoding, and
for structs and unions the members with their offsets.

Types are searched in compilation unit order and the first match wins; use
--all to show every type of that name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateOutput(output, helpers.ListingOutputs); err != nil {
				return err
			}

			d, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer lrerrors.DeferClose(a.logger, d, "failed to close binary")

			var types []reflection.Type
			if all {
				types, err = d.TypesByName(args[1])
			} else {
				var t reflection.Type
				t, err = d.TypeByName(args[1])
				types = []reflection.Type{t}
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, t := range types {
				if i > 0 && output == string(helpers.OutputTable) {
					fmt.Fprintln(w)
				}
				if tree {
					root, err := helpers.TypeTree(t)
					if err != nil {
						return err
					}
					fmt.Fprint(w, helpers.RenderTree(root))
					continue
				}
				if err := printType(w, t, helpers.OutputFormat(output)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	helpers.AddOutputFlag(cmd, &output, helpers.OutputTable, helpers.ListingOutputs)
	cmd.Flags().BoolVar(&tree, "tree", false, "Render nested members as a tree")
	cmd.Flags().BoolVar(&all, "all", false, "Show every type with this name")

	return cmd
}

func inspectType(t reflection.Type) (*typeInfo, error) {
	kind, err := t.Kind()
	if err != nil {
		return nil, err
	}
	info := &typeInfo{Name: helpers.Describe(t), Kind: kind.String()}

	peeled, err := t.Peel()
	if err != nil {
		return nil, err
	}
	if !peeled.Equal(t) {
		info.Underlying = helpers.Describe(peeled)
	}
	if size, err := peeled.Size(); err == nil {
		info.Size = size
	}
	if peeled.IsBuiltin() || peeled.IsCString() {
		if repr, err := peeled.Repr(); err == nil {
			info.Repr = repr.String()
		}
	}

	if peeled.IsStruct() || peeled.IsUnion() {
		root, err := helpers.TypeTree(peeled)
		if err != nil {
			return nil, err
		}
		info.Members = []memberInfo{}
		for _, n := range root.Children() {
			m := n.(*helpers.MemberNode)
			info.Members = append(info.Members, memberInfo{Name: m.Name, Type: m.Type, Offset: m.Offset, Size: m.Size})
		}
	}
	return info, nil
}

func printType(w io.Writer, t reflection.Type, output helpers.OutputFormat) error {
	info, err := inspectType(t)
	if err != nil {
		return err
	}

	if output == helpers.OutputJSON {
		return (&helpers.JSONFormatter{}).Format(info, w)
	}

	fmt.Fprintf(w, "%s\n", colorName(info.Name))
	fmt.Fprintf(w, "  %s %s\n", colorLabel("kind:"), colorKind(info.Kind))
	if info.Underlying != "" {
		fmt.Fprintf(w, "  %s %s\n", colorLabel("underlying:"), info.Underlying)
	}
	if info.Size > 0 {
		fmt.Fprintf(w, "  %s %d bytes\n", colorLabel("size:"), info.Size)
	}
	if info.Repr != "" {
		fmt.Fprintf(w, "  %s %s\n", colorLabel("repr:"), info.Repr)
	}
	if len(info.Members) > 0 {
		fmt.Fprintln(w)
		return (&helpers.TableFormatter{}).Format(info.Members, w)
	}
	return nil
}
