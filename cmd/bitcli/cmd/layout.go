package cmd

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/bitstream/layout"
)

// layoutCmd represents the layout command.
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Work with layout files",
}

// layoutShowCmd represents the layout show command.
var layoutShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the fields of a layout with their bit offsets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := layout.LoadFile(args[0], layout.WithLogger(logger))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "layout %q: %d bits, %s\n", l.Name, l.BitSize(), bytefmt.ByteSize(uint64(l.ByteSize())))

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"field", "kind", "offset", "width"})
		table.SetBorder(true)
		table.SetAutoFormatHeaders(false)

		var offset uint
		for _, f := range l.Fields {
			table.Append([]string{
				f.Name,
				f.Kind.String(),
				strconv.FormatUint(uint64(offset), 10),
				strconv.FormatUint(uint64(f.Width), 10),
			})
			offset += f.Width
		}
		table.Render()
		return nil
	},
}

// layoutCompileCmd represents the layout compile command.
var layoutCompileCmd = &cobra.Command{
	Use:   "compile <file> <out" + layout.CompiledExt + ">",
	Short: "Validate a layout and persist it in compiled form",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := layout.LoadFile(args[0], layout.WithLogger(logger))
		if err != nil {
			return err
		}

		if err := l.Save(args[1]); err != nil {
			return err
		}

		logger.Info("layout compiled: " + args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutShowCmd)
	layoutCmd.AddCommand(layoutCompileCmd)
}
