package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitstream/shared"
)

const (
	DefaultConfigFileName = "config.yaml"
	DefaultFormat         = FormatTable
	DefaultLogLevel       = "info"

	// A zero buffer size sizes the buffer to the layout.
	DefaultBufferSize = 0
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCBOR  = "cbor"
	FormatHex   = "hex"
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), ".bitcli")
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)

	formats = []string{FormatTable, FormatJSON, FormatCBOR, FormatHex}
)

type Config struct {
	ConfigFile string `mapstructure:"config"`
	LayoutFile string `mapstructure:"layout"`
	BufferSize uint64 `mapstructure:"buffer-size"`
	Format     string `mapstructure:"format"`
	LogLevel   string `mapstructure:"log-level"`
	Debug      bool   `mapstructure:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		ConfigFile: DefaultConfigFile,
		BufferSize: DefaultBufferSize,
		Format:     DefaultFormat,
		LogLevel:   DefaultLogLevel,
	}
}

func (cfg *Config) Validate() error {
	if cfg.BufferSize > shared.MaxBufferSize {
		return fmt.Errorf("invalid `BufferSize`; expected: <= %d, given: %d", shared.MaxBufferSize, cfg.BufferSize)
	}

	valid := false
	for _, f := range formats {
		if cfg.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid `Format`; expected: one of %v, given: %q", formats, cfg.Format)
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("invalid `LogLevel`: %w", err)
	}

	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(cfg.LogLevel)
}

// SetFlags registers the persistent flags of cmd, defaulting to cfg.
func SetFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&cfg.ConfigFile, "config",
		cfg.ConfigFile, "Path to configuration file")

	flags.StringVarP(&cfg.LayoutFile, "layout", "l",
		cfg.LayoutFile, "Path to the field layout (yaml, json, toml or compiled .xdr)")

	flags.Uint64Var(&cfg.BufferSize, "buffer-size",
		cfg.BufferSize, "Buffer size in bytes (0 sizes the buffer to the layout)")

	flags.StringVarP(&cfg.Format, "format", "f",
		cfg.Format, fmt.Sprintf("Output format, one of %v", formats))

	flags.StringVar(&cfg.LogLevel, "log-level",
		cfg.LogLevel, "Log level (debug, info, warn, error)")

	flags.BoolVar(&cfg.Debug, "debug",
		cfg.Debug, "Dump the effective configuration and layout")
}

// Load merges the config file into the defaults, with the flags explicitly
// set on cmd taking precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	vip := viper.New()

	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	fileLocation := filepath.Clean(vip.GetString("config"))
	if err := loadConfigFile(fileLocation, vip); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(fileLocation string, vip *viper.Viper) error {
	if fileLocation == "" || fileLocation == "." {
		fileLocation = DefaultConfigFile
	}

	if _, err := os.Stat(fileLocation); err != nil {
		// The default config file is optional.
		if os.IsNotExist(err) && fileLocation == DefaultConfigFile {
			return nil
		}
		return fmt.Errorf("failed to read config file: %v", err)
	}

	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %v", err)
	}

	return nil
}
