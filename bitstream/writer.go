package bitstream

import (
	"errors"
	"io"
)

// ErrWidthRange is returned when a field width is outside [0, 64].
var ErrWidthRange = errors.New("bit width is out of range")

// Writer writes bit fields to an io.Writer, staging them in a fixed frame
// which is written out whenever it fills up.
type Writer struct {
	stream io.Writer
	frame  BitStream
}

// NewWriter returns a Writer which forwards every completed byte to w.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, 1)
}

// NewWriterSize returns a Writer which forwards data to w in frames of size bytes.
func NewWriterSize(w io.Writer, size int) *Writer {
	bw := new(Writer)
	bw.stream = w
	bw.frame.Reset(make([]byte, max(size, 1)))
	return bw
}

// Write writes the numBits of data to the stream, regardless of the alignment.
// Whole bytes are written first; the trailing numBits%8 bits are taken from
// the LS bits of the following byte.
func (bw *Writer) Write(data []byte, numBits int) error {
	if numBits < 0 || numBits > len(data)*8 {
		return ErrWidthRange
	}

	var idx int
	for numBits >= 8 {
		if err := bw.WriteByte(data[idx]); err != nil {
			return err
		}
		numBits -= 8
		idx++
	}

	if numBits > 0 {
		return bw.WriteUint64BE(uint64(data[idx]), numBits)
	}
	return nil
}

// WriteUint64BE writes the numBits LS bits of val, in Big-Endian byte order,
// regardless of the alignment.
func (bw *Writer) WriteUint64BE(val uint64, numBits int) error {
	if numBits < 0 || numBits > MaxWidth {
		return ErrWidthRange
	}

	width := uint(numBits)
	for width > 0 {
		if bw.frame.Remaining() == 0 {
			if err := bw.emit(); err != nil {
				return err
			}
		}

		// The field may straddle frames: write as many of its MS bits as fit.
		n := min(width, bw.frame.Remaining())
		bw.frame.PutUint64(val>>(width-n), n)
		width -= n

		if bw.frame.Remaining() == 0 {
			if err := bw.emit(); err != nil {
				return err
			}
		}
	}

	return nil
}

// WriteStream writes the bits of s from its start up to its cursor.
func (bw *Writer) WriteStream(s *BitStream) error {
	var src BitStream
	src.Reset(s.Data())

	for remaining := s.Position(); remaining > 0; {
		n := min(remaining, MaxWidth)
		v, _ := src.GetUint64(n)
		if err := bw.WriteUint64BE(v, int(n)); err != nil {
			return err
		}
		remaining -= n
	}

	return nil
}

// WriteByte writes a single byte to the stream, regardless of the alignment.
func (bw *Writer) WriteByte(b byte) error {
	return bw.WriteUint64BE(uint64(b), 8)
}

// WriteBit writes a single bit to the stream.
func (bw *Writer) WriteBit(bit Bit) error {
	var v uint64
	if bit {
		v = 1
	}
	return bw.WriteUint64BE(v, 1)
}

// Flush pads the pending byte with bit and writes the staged frame to the stream.
func (bw *Writer) Flush(bit Bit) error {
	for bw.frame.Position()%8 != 0 {
		if err := bw.WriteBit(bit); err != nil {
			return err
		}
	}

	if bw.frame.Position() == 0 {
		return nil
	}
	return bw.emit()
}

func (bw *Writer) emit() error {
	pending := bw.frame.Used()
	n, err := bw.stream.Write(pending)
	if err != nil {
		return err
	}
	if n != len(pending) {
		return io.ErrShortWrite
	}

	bw.frame.Clear()
	return nil
}
