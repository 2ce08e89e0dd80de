package cmd

import (
	"fmt"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/shared"
)

var (
	benchSize   string
	benchWidths []uint
)

type benchResult struct {
	width  uint
	fields uint
	put    time.Duration
	get    time.Duration
}

// benchCmd represents the bench command.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure put and get throughput per field width",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := bytefmt.ToBytes(benchSize)
		if err != nil {
			return fmt.Errorf("invalid --size: %w", err)
		}
		if size == 0 || size > shared.MaxBufferSize {
			return fmt.Errorf("invalid --size; expected: in (0, %s], given: %s",
				bytefmt.ByteSize(shared.MaxBufferSize), benchSize)
		}

		s := bitstream.New(make([]byte, size))

		var data [][]string
		for _, width := range benchWidths {
			res, err := benchWidth(s, width)
			if err != nil {
				return err
			}

			logger.Info("bench completed",
				zap.Uint("width", width),
				zap.Duration("put", res.put),
				zap.Duration("get", res.get),
			)

			data = append(data, []string{
				strconv.FormatUint(uint64(res.width), 10),
				strconv.FormatUint(uint64(res.fields), 10),
				bytefmt.ByteSize(size),
				throughput(size, res.put),
				throughput(size, res.get),
			})
		}

		header := []string{"width", "fields", "buffer", "put", "get"}
		report(cmd, header, data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchSize, "size", "1M", "Buffer size (e.g. 64K, 1M)")
	benchCmd.Flags().UintSliceVar(&benchWidths, "widths", []uint{1, 5, 8, 13, 32, 64}, "Field widths to measure")
}

func benchWidth(s *bitstream.BitStream, width uint) (benchResult, error) {
	if width < 1 || width > bitstream.MaxWidth {
		return benchResult{}, fmt.Errorf("%w: %d", bitstream.ErrWidthRange, width)
	}

	res := benchResult{width: width}
	s.Clear()

	t := time.Now()
	for s.PutUint64(uint64(res.fields), width) {
		res.fields++
	}
	res.put = time.Since(t)

	s.Restart()

	t = time.Now()
	for i := uint(0); i < res.fields; i++ {
		if _, ok := s.GetUint64(width); !ok {
			return res, fmt.Errorf("read back failed at field %d: %w", i, bitstream.ErrCapacityExhausted)
		}
	}
	res.get = time.Since(t)

	return res, nil
}

func throughput(size uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return bytefmt.ByteSize(uint64(float64(size)/d.Seconds())) + "/s"
}

func report(cmd *cobra.Command, header []string, data [][]string) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}
