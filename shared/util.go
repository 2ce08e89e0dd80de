package shared

import (
	"math/bits"
)

// NumBits returns the minimal number of bits required to represent n.
// Zero is represented with a single bit.
func NumBits(n uint64) int {
	if n == 0 {
		return 1
	}
	return bits.Len64(n)
}

// NumSignedBits returns the minimal two's complement width required to
// represent n, sign bit included.
func NumSignedBits(n int64) int {
	if n < 0 {
		return bits.Len64(uint64(^n)) + 1
	}
	return bits.Len64(uint64(n)) + 1
}

// NumBytes returns the number of bytes needed to hold numBits.
func NumBytes(numBits uint) uint {
	return (numBits + 7) / 8
}
