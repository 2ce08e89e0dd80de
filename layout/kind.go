package layout

import (
	"fmt"
	"strings"
)

// Kind is the value type of a field.
type Kind uint8

var kinds = []string{
	"bool",
	"int",
	"uint",
	"float32",
	"float64",
}

const (
	Bool Kind = 1 + iota
	Int
	Uint
	Float32
	Float64
)

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k-1]
}

// ParseKind parses the textual name of a kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, k := range kinds {
		if k == name {
			return Kind(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q; expected one of %v", s, kinds)
}

func (k Kind) valid() bool {
	return k >= Bool && k <= Float64
}

// NaturalWidth is the width of a field of kind k when none is declared.
func (k Kind) NaturalWidth() uint {
	switch k {
	case Bool:
		return 1
	case Float32:
		return 32
	case Int, Uint, Float64:
		return 64
	default:
		return 0
	}
}

// fixedWidth reports whether a field of kind k cannot be narrowed or widened.
func (k Kind) fixedWidth() bool {
	return k == Bool || k == Float32 || k == Float64
}
