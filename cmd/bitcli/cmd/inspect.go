package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/inspect"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <hex>",
	Short: "Show how a record is laid out in a bit stream",
	Long: `Inspect prints the input bytes MSB first, the bits of the first record split at
field boundaries, and the decoded values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(cmd)
		if err != nil {
			return err
		}

		data, err := parseHex(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bytes: %s\n", inspect.Bytes(data))
		fmt.Fprintf(out, "bits:  %s\n", inspect.Bits(data, l.BitSize(), l.Boundaries()))

		rec, err := l.Decode(bitstream.New(data))
		if err != nil {
			return err
		}
		inspect.Table(out, rec)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
