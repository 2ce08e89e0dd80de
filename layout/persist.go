package layout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nullstyle/go-xdr/xdr3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitstream/shared"
)

// CompiledExt is the file extension of layouts persisted by Save.
const CompiledExt = ".xdr"

const compiledVersion = 1

// Limits of the compiled form, enforced on both Save and Load.
const (
	MaxCompiledFields = 4096
	MaxCompiledName   = 256
)

type compiled struct {
	Version uint32
	Name    string          `xdrmaxsize:"256"`
	Fields  []compiledField `xdrmaxsize:"4096"`
}

type compiledField struct {
	Name  string `xdrmaxsize:"256"`
	Kind  uint32
	Width uint32
}

type fieldSpec struct {
	Name  string `mapstructure:"name"`
	Kind  string `mapstructure:"kind"`
	Width uint   `mapstructure:"width"`
}

type layoutSpec struct {
	Name   string      `mapstructure:"name"`
	Fields []fieldSpec `mapstructure:"fields"`
}

// FromConfig builds a layout from the `name` and `fields` keys of vip.
func FromConfig(vip *viper.Viper) (*Layout, error) {
	var desc layoutSpec
	if err := vip.Unmarshal(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %v", err)
	}

	fields := make([]Field, len(desc.Fields))
	for i, fs := range desc.Fields {
		kind, err := ParseKind(fs.Kind)
		if err != nil {
			return nil, &FieldError{Field: fs.Name, Reason: "invalid kind", Err: err}
		}
		fields[i] = Field{Name: fs.Name, Kind: kind, Width: fs.Width}
	}

	return New(desc.Name, fields...)
}

// LoadFile reads a layout from a compiled file, or from any configuration
// format viper supports (yaml, json, toml, ...) otherwise.
func LoadFile(path string, options ...OptionFunc) (*Layout, error) {
	opts := applyOpts(options...)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", shared.ErrLayoutFileMissing, path)
		}
		return nil, err
	}

	var (
		l   *Layout
		err error
	)
	if strings.EqualFold(filepath.Ext(path), CompiledExt) {
		l, err = Load(path)
	} else {
		vip := viper.New()
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read layout file: %v", err)
		}
		l, err = FromConfig(vip)
	}
	if err != nil {
		return nil, err
	}

	opts.logger.Debug("layout loaded",
		zap.String("file", path),
		zap.String("name", l.Name),
		zap.Int("fields", len(l.Fields)),
		zap.Uint("bits", l.BitSize()),
	)
	return l, nil
}

// Save persists l to path in its compiled form.
func (l *Layout) Save(path string) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := l.checkCompiledLimits(); err != nil {
		return err
	}

	c := compiled{
		Version: compiledVersion,
		Name:    l.Name,
		Fields:  make([]compiledField, len(l.Fields)),
	}
	for i, f := range l.Fields {
		c.Fields[i] = compiledField{Name: f.Name, Kind: uint32(f.Kind), Width: uint32(f.Width)}
	}

	var w bytes.Buffer
	if _, err := xdr.Marshal(&w, &c); err != nil {
		return fmt.Errorf("serialization failure: %v", err)
	}

	if err := os.WriteFile(path, w.Bytes(), shared.OwnerReadWrite); err != nil {
		return fmt.Errorf("write to disk failure: %v", err)
	}

	return nil
}

// Load reads a layout persisted by Save.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", shared.ErrLayoutFileMissing, path)
		}
		return nil, fmt.Errorf("read file failure: %v", err)
	}

	c := &compiled{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), c); err != nil {
		return nil, fmt.Errorf("deserialization failure: %v", err)
	}

	if c.Version != compiledVersion {
		return nil, shared.LayoutMismatchError{
			Param:    "version",
			Expected: strconv.Itoa(compiledVersion),
			Found:    strconv.FormatUint(uint64(c.Version), 10),
			File:     path,
		}
	}

	l := &Layout{
		Name:   c.Name,
		Fields: make([]Field, len(c.Fields)),
	}
	for i, f := range c.Fields {
		l.Fields[i] = Field{Name: f.Name, Kind: Kind(f.Kind), Width: uint(f.Width)}
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) checkCompiledLimits() error {
	if len(l.Fields) > MaxCompiledFields {
		return fmt.Errorf("%w: %d fields exceed the compiled limit of %d", ErrCompiledLimit, len(l.Fields), MaxCompiledFields)
	}
	if len(l.Name) > MaxCompiledName {
		return fmt.Errorf("%w: layout name is %d bytes, limit is %d", ErrCompiledLimit, len(l.Name), MaxCompiledName)
	}
	for _, f := range l.Fields {
		if len(f.Name) > MaxCompiledName {
			return &FieldError{Field: f.Name[:16] + "...", Reason: "name too long", Err: ErrCompiledLimit}
		}
	}
	return nil
}
