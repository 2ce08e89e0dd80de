// Package layout describes the out-of-band agreement on the sequence of
// fields carried by a bit stream, and encodes and decodes whole records
// against it.
package layout

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/spacemeshos/bitstream/bitstream"
	"github.com/spacemeshos/bitstream/shared"
)

var (
	ErrEmptyLayout    = errors.New("layout has no fields")
	ErrRecordMismatch = errors.New("record does not match layout")
	ErrCompiledLimit  = errors.New("layout exceeds compiled form limits")
)

// FieldError reports a problem with a single field of a layout or record.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (err *FieldError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("field `%v`: %v: %v", err.Field, err.Reason, err.Err)
	}
	return fmt.Sprintf("field `%v`: %v", err.Field, err.Reason)
}

func (err *FieldError) Unwrap() error {
	return err.Err
}

type Field struct {
	Name  string
	Kind  Kind
	Width uint
}

type Layout struct {
	Name   string
	Fields []Field
}

// New builds a layout and validates it. A zero field width is replaced by
// the natural width of the field kind.
func New(name string, fields ...Field) (*Layout, error) {
	l := &Layout{
		Name:   name,
		Fields: make([]Field, len(fields)),
	}
	for i, f := range fields {
		if f.Width == 0 {
			f.Width = f.Kind.NaturalWidth()
		}
		l.Fields[i] = f
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) Validate() error {
	if len(l.Fields) == 0 {
		return ErrEmptyLayout
	}

	names := make(map[string]struct{}, len(l.Fields))
	for _, f := range l.Fields {
		if f.Name == "" {
			return &FieldError{Field: f.Name, Reason: "missing name"}
		}
		if _, ok := names[f.Name]; ok {
			return &FieldError{Field: f.Name, Reason: "duplicate name"}
		}
		names[f.Name] = struct{}{}

		if !f.Kind.valid() {
			return &FieldError{Field: f.Name, Reason: fmt.Sprintf("invalid kind %v", f.Kind)}
		}
		if f.Kind.fixedWidth() && f.Width != f.Kind.NaturalWidth() {
			return &FieldError{Field: f.Name, Reason: fmt.Sprintf("%v width must be %d, given: %d", f.Kind, f.Kind.NaturalWidth(), f.Width)}
		}
		if f.Width < 1 || f.Width > bitstream.MaxWidth {
			return &FieldError{Field: f.Name, Reason: fmt.Sprintf("width must be in [1, %d], given: %d", bitstream.MaxWidth, f.Width)}
		}
	}

	return nil
}

// Index returns the position of the named field, or -1.
func (l *Layout) Index(name string) int {
	for i, f := range l.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// BitSize returns the number of bits a record occupies.
func (l *Layout) BitSize() uint {
	var size uint
	for _, f := range l.Fields {
		size += f.Width
	}
	return size
}

// ByteSize returns the smallest buffer size able to hold a record.
func (l *Layout) ByteSize() uint {
	return shared.NumBytes(l.BitSize())
}

// Boundaries returns the set of bit positions at which a field starts.
func (l *Layout) Boundaries() *bitset.BitSet {
	b := bitset.New(l.BitSize())
	var pos uint
	for _, f := range l.Fields {
		b.Set(pos)
		pos += f.Width
	}
	return b
}
