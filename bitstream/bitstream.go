// Package bitstream provides bit-granularity packing of booleans, integers of
// any width up to 64 bits and IEEE floating-point values into a fixed,
// caller-owned byte buffer.
//
// Fields are written most-significant bit first and packed contiguously
// across byte boundaries. Multi-byte values are always laid out in
// Big-Endian byte order, whatever the host byte order is. For example,
// writing the 5-bit fields 1, 21, 10 and 31 produces:
//
//	byte   0               1               2
//	      +---------------+---------------+-------
//	      |0 0 0 0 1 1 0 1|0 1 0 1 0 1 0 1|1 1 1 1
//	      +---------------+---------------+-------
//	field  0---------1---------2---------3--------
//
// There is no embedded length or type tag: the sequence of field kinds and
// widths is agreed between producer and consumer out of band.
//
// A BitStream is not safe for concurrent use.
package bitstream

import (
	"errors"
)

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// MaxWidth is the widest field a single put or get can address.
const MaxWidth = 64

// ErrCapacityExhausted is returned by the stream-backed helpers built on top
// of BitStream when the remaining capacity is too small for a field.
// BitStream itself reports the same condition with a false result.
var ErrCapacityExhausted = errors.New("bit stream capacity exhausted")

// BitStream is a bit cursor over a borrowed, fixed-size byte buffer.
type BitStream struct {
	data     []byte
	capacity uint
	position uint
}

// New returns a BitStream bound to buf. The buffer is neither copied nor
// cleared; call Clear to zero it. A zero-length buffer yields a stream on
// which every put and get fails.
func New(buf []byte) *BitStream {
	s := new(BitStream)
	s.Reset(buf)
	return s
}

// Reset rebinds the stream to buf and moves the cursor to the start.
func (s *BitStream) Reset(buf []byte) {
	s.data = buf
	s.capacity = uint(len(buf)) * 8
	s.position = 0
}

// Clear zeroes the whole buffer and moves the cursor to the start.
func (s *BitStream) Clear() {
	clear(s.data)
	s.position = 0
}

// Restart moves the cursor to the start, leaving the buffer untouched, so
// that previously written fields can be read back.
func (s *BitStream) Restart() {
	s.position = 0
}

// Position returns the bit cursor.
func (s *BitStream) Position() uint {
	return s.position
}

// Capacity returns the buffer size in bits.
func (s *BitStream) Capacity() uint {
	return s.capacity
}

// Remaining returns the number of bits between the cursor and the end of the buffer.
func (s *BitStream) Remaining() uint {
	return s.capacity - s.position
}

// Data returns the borrowed buffer.
func (s *BitStream) Data() []byte {
	return s.data
}

// Used returns the prefix of the buffer touched by the cursor, including a
// trailing partially written byte.
func (s *BitStream) Used() []byte {
	return s.data[:(s.position+7)/8]
}

// PutUint64 writes the width LS bits of val. It fails, leaving the stream
// unchanged, if width is not in [1, 64] or exceeds the remaining capacity.
func (s *BitStream) PutUint64(val uint64, width uint) bool {
	if !s.fits(width) {
		return false
	}
	s.writeBits(val, width)
	return true
}

// GetUint64 reads a width-bit field and zero-extends it.
func (s *BitStream) GetUint64(width uint) (uint64, bool) {
	if !s.fits(width) {
		return 0, false
	}
	return s.readBits(width), true
}

// GetInt64 reads a width-bit two's complement field and sign-extends it.
func (s *BitStream) GetInt64(width uint) (int64, bool) {
	if !s.fits(width) {
		return 0, false
	}
	shift := MaxWidth - width
	return int64(s.readBits(width)<<shift) >> shift, true
}

// PutBool writes a single bit, 1 for true.
func (s *BitStream) PutBool(v bool) bool {
	var bit uint64
	if v {
		bit = 1
	}
	return s.PutUint64(bit, 1)
}

// GetBool reads a single bit.
func (s *BitStream) GetBool() (v bool, ok bool) {
	bit, ok := s.GetUint64(1)
	return bit == 1, ok
}

// PutBytes writes every byte of p at the current bit position, regardless of
// the alignment. Either all of p is written or nothing is.
func (s *BitStream) PutBytes(p []byte) bool {
	if uint(len(p))*8 > s.Remaining() {
		return false
	}
	for _, b := range p {
		s.writeBits(uint64(b), 8)
	}
	return true
}

// GetBytes fills p from the current bit position, regardless of the alignment.
func (s *BitStream) GetBytes(p []byte) bool {
	if uint(len(p))*8 > s.Remaining() {
		return false
	}
	for i := range p {
		p[i] = byte(s.readBits(8))
	}
	return true
}

func (s *BitStream) fits(width uint) bool {
	return width > 0 && width <= MaxWidth && width <= s.capacity-s.position
}

// locate maps a bit position to the byte holding it and the number of bits
// preceding it within that byte, counted from the MS bit.
func locate(pos uint) (index uint, offset uint) {
	return pos / 8, pos % 8
}

// writeBits expects width to be in [1, 64] and to fit the remaining capacity.
func (s *BitStream) writeBits(val uint64, width uint) {
	// Eliminate unnecessary MS bits.
	val <<= MaxWidth - width

	for width > 0 {
		index, offset := locate(s.position)
		free := 8 - offset
		n := min(free, width)
		shift := free - n
		mask := byte(0xFF) >> (8 - n) << shift
		chunk := byte(val>>(MaxWidth-n)) << shift

		s.data[index] = s.data[index]&^mask | chunk

		val <<= n
		width -= n
		s.position += n
	}
}

// readBits expects width to be in [1, 64] and to fit the remaining capacity.
func (s *BitStream) readBits(width uint) uint64 {
	var val uint64

	for width > 0 {
		index, offset := locate(s.position)
		free := 8 - offset
		n := min(free, width)
		chunk := (s.data[index] >> (free - n)) & (byte(0xFF) >> (8 - n))

		val = val<<n | uint64(chunk)

		width -= n
		s.position += n
	}

	return val
}
