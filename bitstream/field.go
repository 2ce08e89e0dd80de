package bitstream

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Integer is the set of types Put and Get accept as integer fields.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float is the set of types PutFloat and GetFloat accept. Floating-point
// fields always occupy their natural width.
type Float interface {
	~float32 | ~float64
}

// BitWidth returns the natural width of T in bits.
func BitWidth[T Integer | Float]() uint {
	var zero T
	return uint(unsafe.Sizeof(zero)) * 8
}

// Signed reports whether T is a signed integer type.
func Signed[T Integer]() bool {
	var zero T
	return zero-1 < zero
}

// Put writes v at its natural width.
func Put[T Integer](s *BitStream, v T) bool {
	return PutN(s, v, BitWidth[T]())
}

// PutN writes the width LS bits of the two's complement representation of v.
// A width narrower than T truncates without any range check. A width wider
// than T sign-extends signed values and zero-extends unsigned ones.
func PutN[T Integer](s *BitStream, v T, width uint) bool {
	return s.PutUint64(uint64(v), width)
}

// Get reads a field of T's natural width into out.
func Get[T Integer](s *BitStream, out *T) bool {
	return GetN(s, out, BitWidth[T]())
}

// GetN reads a width-bit field into out, sign-extending it from bit width-1
// when T is signed. A width wider than T truncates the field to T.
// On failure out is left unchanged.
func GetN[T Integer](s *BitStream, out *T, width uint) bool {
	if Signed[T]() {
		v, ok := s.GetInt64(width)
		if ok {
			*out = T(v)
		}
		return ok
	}

	v, ok := s.GetUint64(width)
	if ok {
		*out = T(v)
	}
	return ok
}

// PutFloat writes the IEEE 754 bit pattern of v in Big-Endian byte order.
func PutFloat[T Float](s *BitStream, v T) bool {
	var buf [8]byte
	if BitWidth[T]() == 32 {
		binary.BigEndian.PutUint32(buf[:4], math.Float32bits(float32(v)))
		return s.PutBytes(buf[:4])
	}
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(v)))
	return s.PutBytes(buf[:])
}

// GetFloat reads a Big-Endian IEEE 754 bit pattern of T's natural width.
func GetFloat[T Float](s *BitStream, out *T) bool {
	var buf [8]byte
	if BitWidth[T]() == 32 {
		if !s.GetBytes(buf[:4]) {
			return false
		}
		*out = T(math.Float32frombits(binary.BigEndian.Uint32(buf[:4])))
		return true
	}
	if !s.GetBytes(buf[:]) {
		return false
	}
	*out = T(math.Float64frombits(binary.BigEndian.Uint64(buf[:])))
	return true
}
