package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VasilisMylonas/libreflect/internal/cli/helpers"
	lrerrors "github.com/VasilisMylonas/libreflect/internal/errors"
)

type binaryInfo struct {
	Path        string   `header:"Path" json:"path"`
	Format      string   `header:"Format" json:"format"`
	Size        string   `header:"Size" json:"-"`
	Bytes       int64    `json:"size"`
	Fingerprint string   `header:"Fingerprint" json:"fingerprint"`
	Units       int      `header:"Units" json:"units"`
	Entries     int      `header:"Entries" json:"entries"`
	Mapped      string   `header:"Sections" json:"-"`
	Sections    []string `json:"sections"`
}

func newInfoCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "info <binary>",
		Short: "Summarize the debugging information of a binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateOutput(output, helpers.ListingOutputs); err != nil {
				return err
			}

			d, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer lrerrors.DeferClose(a.logger, d, "failed to close binary")

			c := d.Container()
			stats := c.Stats()
			info := binaryInfo{
				Path:        c.Path(),
				Format:      c.Format().String(),
				Size:        fmt.Sprintf("%s (%s bytes)", humanize.Bytes(uint64(c.Size())), humanize.Comma(c.Size())),
				Bytes:       c.Size(),
				Fingerprint: fmt.Sprintf("%016x", c.Fingerprint()),
				Units:       stats.Units,
				Entries:     stats.Entries,
				Sections:    []string{},
			}
			if image := c.Image(); image != nil {
				info.Sections = image.Sections()
			}
			info.Mapped = strings.Join(info.Sections, " ")

			formatter, err := helpers.NewFormatter(helpers.OutputFormat(output))
			if err != nil {
				return err
			}
			return formatter.Format(&info, cmd.OutOrStdout())
		},
	}

	helpers.AddOutputFlag(cmd, &output, helpers.OutputTable, helpers.ListingOutputs)

	return cmd
}
