package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/config"
	"github.com/spacemeshos/bitstream/inspect"
	"github.com/spacemeshos/bitstream/layout"
)

var decodeAll bool

// decodeCmd represents the decode command.
var decodeCmd = &cobra.Command{
	Use:   "decode <hex|->",
	Short: "Unpack records from a bit stream",
	Long: `Decode unpacks a record from hex input according to the layout. With --all,
records are unpacked back to back until fewer bits than a record remain.
Passing - reads raw bytes from stdin instead, as written by encode --raw.

Input is whole bytes, so for records narrower than a byte the zero padding of
the last byte could read as extra records. With --all, trailing all-zero
records which start inside the last byte are treated as padding and dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(cmd)
		if err != nil {
			return err
		}

		var records []layout.Record
		if args[0] == "-" {
			records, err = decodeStream(cmd.InOrStdin(), l, decodeAll)
		} else {
			var data []byte
			data, err = parseHex(args[0])
			if err != nil {
				return err
			}
			records, err = decodeRecords(l, bitstream.New(data), decodeAll)
		}
		if err != nil {
			return err
		}

		return writeRecords(cmd.OutOrStdout(), records)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().BoolVar(&decodeAll, "all", false, "Decode every complete record in the input, dropping all-zero records in the last byte's padding")
}

func decodeRecords(l *layout.Layout, s *bitstream.BitStream, all bool) ([]layout.Record, error) {
	var records []layout.Record
	for {
		rec, err := l.Decode(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)

		if !all || s.Remaining() < l.BitSize() || padding(s) {
			break
		}
	}

	logger.Debug("records decoded",
		zap.Int("records", len(records)),
		zap.Uint("trailing_bits", s.Remaining()),
	)
	return records, nil
}

// decodeStream reads records one at a time from r. A trailing partial
// record ends the stream, as do all-zero records in the last byte's padding.
func decodeStream(r io.Reader, l *layout.Layout, all bool) ([]layout.Record, error) {
	s := bitstream.New(make([]byte, l.ByteSize()))
	br := bitstream.NewReaderSize(r, streamFrameSize)

	var (
		records []layout.Record
		zeros   []bool
		tail    uint
	)
	for {
		s.Clear()
		err := br.ReadStream(s, l.BitSize())
		if err == io.EOF || (err == io.ErrUnexpectedEOF && len(records) > 0) {
			tail = s.Position()
			break
		}
		if err != nil {
			return nil, err
		}

		s.Restart()
		zero := zeroBits(s, l.BitSize())
		rec, err := l.Decode(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		zeros = append(zeros, zero)

		if !all {
			break
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no complete record in input", bitstream.ErrCapacityExhausted)
	}

	// The partial tail must be padding too before any record is dropped.
	s.Restart()
	if all && zeroBits(s, tail) {
		total := uint(len(records))*l.BitSize() + tail
		for len(records) > 1 {
			last := len(records) - 1
			if !zeros[last] || uint(last)*l.BitSize()+8 <= total {
				break
			}
			records, zeros = records[:last], zeros[:last]
		}
	}

	logger.Debug("records decoded from stream", zap.Int("records", len(records)))
	return records, nil
}

// padding reports whether the bits left in s lie within its last byte and are
// all zero.
func padding(s *bitstream.BitStream) bool {
	n := s.Remaining()
	return n > 0 && n < 8 && zeroBits(s, n)
}

// zeroBits reports whether the next n bits of s are all zero, without moving
// its cursor.
func zeroBits(s *bitstream.BitStream, n uint) bool {
	tail := *s
	for n > 0 {
		w := min(n, bitstream.MaxWidth)
		v, ok := tail.GetUint64(w)
		if !ok || v != 0 {
			return false
		}
		n -= w
	}
	return true
}

func writeRecords(w io.Writer, records []layout.Record) error {
	maps := make([]map[string]any, len(records))
	for i, rec := range records {
		maps[i] = rec.Map()
	}

	switch cfg.Format {
	case config.FormatJSON:
		for _, m := range maps {
			finiteJSON(m)
		}
		data, err := json.MarshalIndent(maps, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case config.FormatCBOR:
		data, err := cbor.Marshal(maps)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case config.FormatHex:
		// The CBOR encoding, hex encoded.
		data, err := cbor.Marshal(maps)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%x\n", data)
		return err
	default:
		for _, rec := range records {
			inspect.Table(w, rec)
		}
		return nil
	}
}

// finiteJSON replaces NaN and infinite floats in m, which JSON cannot
// represent, with their strconv spelling.
func finiteJSON(m map[string]any) {
	for k, v := range m {
		switch f := v.(type) {
		case float32:
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				m[k] = strconv.FormatFloat(float64(f), 'g', -1, 32)
			}
		case float64:
			if math.IsNaN(f) || math.IsInf(f, 0) {
				m[k] = strconv.FormatFloat(f, 'g', -1, 64)
			}
		}
	}
}
