package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spacemeshos/bitstream/shared"
)

// Value is a single decoded or to-be-encoded field. V holds a bool, int64,
// uint64, float32 or float64 according to Kind.
type Value struct {
	Name  string
	Kind  Kind
	Width uint
	V     any
}

// Record is a sequence of values in layout order.
type Record []Value

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, v := range r {
		if v.Name == name {
			return v.V, true
		}
	}
	return nil, false
}

// Map returns the record keyed by field name.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, v := range r {
		m[v.Name] = v.V
	}
	return m
}

// NewRecord pairs values with the fields of l, converting each to the
// representation of its field kind.
func (l *Layout) NewRecord(values ...any) (Record, error) {
	if len(values) != len(l.Fields) {
		return nil, fmt.Errorf("%w: expected %d values, given: %d", ErrRecordMismatch, len(l.Fields), len(values))
	}

	rec := make(Record, len(values))
	for i, f := range l.Fields {
		v, err := coerce(f.Kind, values[i])
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid value", Err: err}
		}
		rec[i] = Value{Name: f.Name, Kind: f.Kind, Width: f.Width, V: v}
	}
	return rec, nil
}

// ParseRecord parses `name=value` assignments into a record. Every field
// must be assigned exactly once. Integer values must fit the field width.
func (l *Layout) ParseRecord(assignments []string) (Record, error) {
	values := make([]any, len(l.Fields))
	for _, a := range assignments {
		name, text, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q; expected: name=value", a)
		}

		i := l.Index(name)
		if i < 0 {
			return nil, &FieldError{Field: name, Reason: "unknown field"}
		}
		if values[i] != nil {
			return nil, &FieldError{Field: name, Reason: "assigned more than once"}
		}

		v, err := ParseValue(l.Fields[i], text)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	for i, v := range values {
		if v == nil {
			return nil, &FieldError{Field: l.Fields[i].Name, Reason: "missing value"}
		}
	}

	return l.NewRecord(values...)
}

// ParseValue parses the textual value of field f.
func ParseValue(f Field, text string) (any, error) {
	text = strings.TrimSpace(text)

	switch f.Kind {
	case Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid bool", Err: err}
		}
		return v, nil
	case Int:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid int", Err: err}
		}
		if uint(shared.NumSignedBits(v)) > f.Width {
			return nil, &FieldError{Field: f.Name, Reason: fmt.Sprintf("%d does not fit %d bits", v, f.Width)}
		}
		return v, nil
	case Uint:
		v, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid uint", Err: err}
		}
		if uint(shared.NumBits(v)) > f.Width {
			return nil, &FieldError{Field: f.Name, Reason: fmt.Sprintf("%d does not fit %d bits", v, f.Width)}
		}
		return v, nil
	case Float32:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid float32", Err: err}
		}
		return float32(v), nil
	case Float64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid float64", Err: err}
		}
		return v, nil
	default:
		return nil, &FieldError{Field: f.Name, Reason: fmt.Sprintf("invalid kind %v", f.Kind)}
	}
}

func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Int:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int8:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
	case Uint:
		switch n := v.(type) {
		case uint:
			return uint64(n), nil
		case uint8:
			return uint64(n), nil
		case uint16:
			return uint64(n), nil
		case uint32:
			return uint64(n), nil
		case uint64:
			return n, nil
		case int:
			if n >= 0 {
				return uint64(n), nil
			}
		}
	case Float32:
		switch n := v.(type) {
		case float32:
			return n, nil
		case float64:
			if math.IsInf(n, 0) || math.IsNaN(n) || math.Abs(n) <= math.MaxFloat32 {
				return float32(n), nil
			}
		}
	case Float64:
		switch n := v.(type) {
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		}
	}

	return nil, fmt.Errorf("cannot use %T(%v) as %v", v, v, kind)
}
