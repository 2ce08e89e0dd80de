package bitstream

import (
	"io"
)

const maxEmptyReads = 100

// Reader reads bit fields from an io.Reader, refilling a fixed frame from
// the source whenever it runs out of bits.
type Reader struct {
	stream io.Reader
	buf    []byte
	frame  BitStream
}

// NewReader returns a Reader which pulls a single byte at a time from r.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, 1)
}

// NewReaderSize returns a Reader which pulls up to size bytes at a time from r.
func NewReaderSize(r io.Reader, size int) *Reader {
	br := new(Reader)
	br.stream = r
	br.buf = make([]byte, max(size, 1))
	br.frame.Reset(br.buf[:0])
	return br
}

// Read reads the next numBits from the stream, regardless of the alignment.
// The trailing numBits%8 bits are returned in the LS bits of the last byte.
func (br *Reader) Read(numBits uint) ([]byte, error) {
	size := numBits / 8
	if numBits%8 > 0 {
		size++
	}

	data := make([]byte, size)
	var idx int

	for numBits >= 8 {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && idx > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		data[idx] = b
		idx++
		numBits -= 8
	}

	if numBits > 0 {
		v, err := br.ReadUint64BE(int(numBits))
		if err != nil {
			if err == io.EOF && idx > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		data[idx] = byte(v)
	}

	return data, nil
}

// ReadUint64BE reads the next numBits from the stream as uint64 in Big-Endian
// byte order, regardless of the alignment. It returns io.EOF if the source is
// exhausted before the first bit, and io.ErrUnexpectedEOF if it is exhausted
// mid-field.
func (br *Reader) ReadUint64BE(numBits int) (uint64, error) {
	if numBits < 0 || numBits > MaxWidth {
		return 0, ErrWidthRange
	}

	var val uint64
	width := uint(numBits)
	consumed := false

	for width > 0 {
		if br.frame.Remaining() == 0 {
			if err := br.fill(); err != nil {
				if err == io.EOF && consumed {
					err = io.ErrUnexpectedEOF
				}
				return 0, err
			}
		}

		n := min(width, br.frame.Remaining())
		v, _ := br.frame.GetUint64(n)
		val = val<<n | v
		width -= n
		consumed = true
	}

	return val, nil
}

// ReadStream reads numBits from the stream into s at its cursor. If the
// source runs dry mid-way, the bits read so far are left in s.
func (br *Reader) ReadStream(s *BitStream, numBits uint) error {
	if numBits > s.Remaining() {
		return ErrCapacityExhausted
	}

	consumed := false
	for numBits > 0 {
		if br.frame.Remaining() == 0 {
			if err := br.fill(); err != nil {
				if err == io.EOF && consumed {
					err = io.ErrUnexpectedEOF
				}
				return err
			}
		}

		n := min(numBits, br.frame.Remaining(), MaxWidth)
		v, _ := br.frame.GetUint64(n)
		s.PutUint64(v, n)
		numBits -= n
		consumed = true
	}

	return nil
}

// ReadByte reads the next single byte from the stream, regardless of the alignment.
func (br *Reader) ReadByte() (byte, error) {
	v, err := br.ReadUint64BE(8)
	return byte(v), err
}

// ReadBit reads the next single bit from the stream.
func (br *Reader) ReadBit() (Bit, error) {
	v, err := br.ReadUint64BE(1)
	if err != nil {
		return Zero, err
	}
	return Bit(v == 1), nil
}

func (br *Reader) fill() error {
	for i := 0; i < maxEmptyReads; i++ {
		n, err := br.stream.Read(br.buf)
		if n > 0 {
			// A trailing error is reported by the next fill.
			br.frame.Reset(br.buf[:n])
			return nil
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}
