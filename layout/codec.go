package layout

import (
	"fmt"

	"github.com/spacemeshos/bitstream/bitstream"
)

// Encode writes rec at the cursor of s. Either every field is written or
// the stream is left unchanged.
func (l *Layout) Encode(s *bitstream.BitStream, rec Record) error {
	values, err := l.check(rec)
	if err != nil {
		return err
	}

	if need := l.BitSize(); need > s.Remaining() {
		return fmt.Errorf("%w: layout `%v` needs %d bits, %d remaining",
			bitstream.ErrCapacityExhausted, l.Name, need, s.Remaining())
	}

	for i, f := range l.Fields {
		if !put(s, f, values[i]) {
			// Unreachable once capacity and record are checked.
			return &FieldError{Field: f.Name, Reason: "write failed", Err: bitstream.ErrCapacityExhausted}
		}
	}

	return nil
}

// Decode reads a record at the cursor of s. Either every field is read or
// the cursor is left unchanged.
func (l *Layout) Decode(s *bitstream.BitStream) (Record, error) {
	if need := l.BitSize(); need > s.Remaining() {
		return nil, fmt.Errorf("%w: layout `%v` needs %d bits, %d remaining",
			bitstream.ErrCapacityExhausted, l.Name, need, s.Remaining())
	}

	rec := make(Record, len(l.Fields))
	for i, f := range l.Fields {
		v, ok := get(s, f)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "read failed", Err: bitstream.ErrCapacityExhausted}
		}
		rec[i] = Value{Name: f.Name, Kind: f.Kind, Width: f.Width, V: v}
	}

	return rec, nil
}

func (l *Layout) check(rec Record) ([]any, error) {
	if len(rec) != len(l.Fields) {
		return nil, fmt.Errorf("%w: expected %d values, given: %d", ErrRecordMismatch, len(l.Fields), len(rec))
	}

	values := make([]any, len(rec))
	for i, f := range l.Fields {
		if rec[i].Name != f.Name {
			return nil, &FieldError{Field: f.Name, Reason: fmt.Sprintf("found `%v` in its place", rec[i].Name), Err: ErrRecordMismatch}
		}
		v, err := coerce(f.Kind, rec[i].V)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "invalid value", Err: err}
		}
		values[i] = v
	}

	return values, nil
}

func put(s *bitstream.BitStream, f Field, v any) bool {
	switch f.Kind {
	case Bool:
		return s.PutBool(v.(bool))
	case Int:
		return bitstream.PutN(s, v.(int64), f.Width)
	case Uint:
		return bitstream.PutN(s, v.(uint64), f.Width)
	case Float32:
		return bitstream.PutFloat(s, v.(float32))
	case Float64:
		return bitstream.PutFloat(s, v.(float64))
	default:
		return false
	}
}

func get(s *bitstream.BitStream, f Field) (any, bool) {
	switch f.Kind {
	case Bool:
		return s.GetBool()
	case Int:
		var v int64
		ok := bitstream.GetN(s, &v, f.Width)
		return v, ok
	case Uint:
		var v uint64
		ok := bitstream.GetN(s, &v, f.Width)
		return v, ok
	case Float32:
		var v float32
		ok := bitstream.GetFloat(s, &v)
		return v, ok
	case Float64:
		var v float64
		ok := bitstream.GetFloat(s, &v)
		return v, ok
	default:
		return nil, false
	}
}
