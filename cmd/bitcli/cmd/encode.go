package cmd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/layout"
)

const streamFrameSize = 4096

var (
	encodeRaw bool
	encodeAll bool
)

// encodeCmd represents the encode command.
var encodeCmd = &cobra.Command{
	Use:   "encode name=value...",
	Short: "Pack a record into a bit stream",
	Long: `Encode packs one record per group of assignments into a buffer and prints it as hex.
Every field of the layout must be assigned exactly once per record. Repeating the
assignments of a whole layout packs several records back to back.`,
	Example: `  bitcli encode -l sensor.yaml valid=true delta=-11 channel=6 reading=21.5 timestamp=42`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(cmd)
		if err != nil {
			return err
		}

		n := len(l.Fields)
		if len(args)%n != 0 {
			return fmt.Errorf("%w: %d assignments for %d fields per record", layout.ErrRecordMismatch, len(args), n)
		}

		if encodeRaw {
			return encodeStream(cmd.OutOrStdout(), l, args)
		}

		s := newStream(l)
		for i := 0; i < len(args); i += n {
			rec, err := l.ParseRecord(args[i : i+n])
			if err != nil {
				return err
			}
			if err := l.Encode(s, rec); err != nil {
				return err
			}
		}

		logger.Debug("records encoded",
			zap.Int("records", len(args)/n),
			zap.Uint("bits", s.Position()),
		)

		out := s.Used()
		if encodeAll {
			out = s.Data()
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().BoolVar(&encodeRaw, "raw", false, "Stream the packed bytes instead of hex, regardless of --buffer-size")
	encodeCmd.Flags().BoolVar(&encodeAll, "all", false, "Output the whole buffer rather than the bytes written")
}

// encodeStream packs records one at a time and streams them to w, so the
// output is not bounded by the buffer size. The last byte is zero padded.
func encodeStream(w io.Writer, l *layout.Layout, args []string) error {
	n := len(l.Fields)
	s := bitstream.New(make([]byte, l.ByteSize()))
	bw := bitstream.NewWriterSize(w, streamFrameSize)

	for i := 0; i < len(args); i += n {
		rec, err := l.ParseRecord(args[i : i+n])
		if err != nil {
			return err
		}

		s.Clear()
		if err := l.Encode(s, rec); err != nil {
			return err
		}
		if err := bw.WriteStream(s); err != nil {
			return err
		}
	}

	return bw.Flush(bitstream.Zero)
}
