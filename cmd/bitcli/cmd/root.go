package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/config"
	"github.com/spacemeshos/bitstream/layout"
	"github.com/spacemeshos/bitstream/shared"
)

var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()

	errLayoutRequired = errors.New("--layout flag is required")
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bitcli",
	Short: "Pack and unpack bit-level records",
	Long: `bitcli packs records into raw, schema-less bit streams and unpacks them again.
Fields are written MSB first, contiguously across byte boundaries, and multi-byte
values are Big-Endian. The field sequence is described by a layout file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := cfg.Level()
		if err != nil {
			return err
		}
		logger, err = shared.NewLogger(level)
		if err != nil {
			return fmt.Errorf("failed to initialize zap logger: %w", err)
		}

		if cfg.Debug {
			spew.Fdump(cmd.ErrOrStderr(), cfg)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.SetFlags(rootCmd, cfg)
}

func loadLayout(cmd *cobra.Command) (*layout.Layout, error) {
	if cfg.LayoutFile == "" {
		return nil, errLayoutRequired
	}

	l, err := layout.LoadFile(cfg.LayoutFile, layout.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		spew.Fdump(cmd.ErrOrStderr(), l)
	}
	return l, nil
}

// newStream allocates the buffer records are packed into.
func newStream(l *layout.Layout) *bitstream.BitStream {
	size := cfg.BufferSize
	if size == 0 {
		size = uint64(l.ByteSize())
	}

	logger.Debug("allocating buffer",
		zap.String("size", bytefmt.ByteSize(size)),
		zap.Uint("record_bits", l.BitSize()),
	)

	s := bitstream.New(make([]byte, size))
	s.Clear()
	return s
}

func parseHex(text string) ([]byte, error) {
	text = strings.Join(strings.Fields(text), "")
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")

	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidHex, err)
	}
	return data, nil
}
