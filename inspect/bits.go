// Package inspect renders bit streams and decoded records for humans.
package inspect

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// FieldSeparator marks the start of a field in Bits output.
const FieldSeparator = '|'

func printByte(b byte) string {
	var sb strings.Builder
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if b&mask != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Bytes renders every byte of data MSB first, separated by spaces.
func Bytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = printByte(b)
	}
	return strings.Join(parts, " ")
}

// Bits renders the first nbits of data in stream order, MSB first, with a
// separator ahead of every field start in boundaries except the first bit.
// Bits beyond the end of data are not rendered.
func Bits(data []byte, nbits uint, boundaries *bitset.BitSet) string {
	nbits = min(nbits, uint(len(data))*8)

	var sb strings.Builder
	for i := uint(0); i < nbits; i++ {
		if i > 0 && boundaries != nil && boundaries.Test(i) {
			sb.WriteByte(FieldSeparator)
		}
		if data[i/8]&(0x80>>(i%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
