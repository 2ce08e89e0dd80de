package bitstream_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/bitstream/bitstream"
)

var New = bitstream.New

func TestPutBool(t *testing.T) {
	req := require.New(t)

	storage := []byte{0xFF}
	s := New(storage)
	s.Clear()
	req.Equal(byte(0), storage[0])

	for _, flag := range []bool{false, true, false, true, true, false, true, false} {
		req.True(s.PutBool(flag))
	}

	// One too many.
	req.False(s.PutBool(true))

	req.Equal(byte(0x5A), storage[0])
	req.Equal(uint(8), s.Position())
}

func TestPutGetBool(t *testing.T) {
	req := require.New(t)

	flags := []bool{false, true, false, true, true, false, true, false}
	s := New(make([]byte, 1))

	for _, flag := range flags {
		req.True(s.PutBool(flag))
	}

	s.Restart()

	for _, flag := range flags {
		v, ok := s.GetBool()
		req.True(ok)
		req.Equal(flag, v)
	}

	_, ok := s.GetBool()
	req.False(ok)
}

func TestPutInt8(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 256)
	s := New(storage)
	s.Clear()

	for i := 0; i < 256; i++ {
		req.True(bitstream.Put(s, int8(i)))
	}

	// One too many.
	req.False(bitstream.Put(s, int8(0)))

	for i := range storage {
		req.Equal(byte(i), storage[i])
	}
}

func TestPutUint8(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 256)
	s := New(storage)
	s.Clear()

	for i := 0; i < 256; i++ {
		req.True(bitstream.Put(s, uint8(i)))
	}

	req.False(bitstream.Put(s, uint8(0)))

	for i := range storage {
		req.Equal(byte(i), storage[i])
	}
}

func TestPutInt16(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 8)
	s := New(storage)
	s.Clear()

	for _, v := range []uint16{0x0001, 0x5AA5, 0xA55A, 0xFFFF} {
		req.True(bitstream.Put(s, int16(v)))
	}

	req.False(bitstream.Put(s, int16(0)))
	req.Equal([]byte{0x00, 0x01, 0x5A, 0xA5, 0xA5, 0x5A, 0xFF, 0xFF}, storage)
}

func TestPutUint16(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 8)
	s := New(storage)
	s.Clear()

	for _, v := range []uint16{0x0001, 0x5AA5, 0xA55A, 0xFFFF} {
		req.True(bitstream.Put(s, v))
	}

	req.False(bitstream.Put(s, uint16(0)))
	req.Equal([]byte{0x00, 0x01, 0x5A, 0xA5, 0xA5, 0x5A, 0xFF, 0xFF}, storage)
}

func TestPutInt32(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 16)
	s := New(storage)
	s.Clear()

	for _, v := range []uint32{0x00000001, 0x5AA5A55A, 0xA55A5AA5, 0xFFFFFFFF} {
		req.True(bitstream.Put(s, int32(v)))
	}

	req.False(bitstream.Put(s, int32(0)))
	req.Equal([]byte{
		0x00, 0x00, 0x00, 0x01,
		0x5A, 0xA5, 0xA5, 0x5A,
		0xA5, 0x5A, 0x5A, 0xA5,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, storage)
}

func TestPutUint32(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 16)
	s := New(storage)
	s.Clear()

	for _, v := range []uint32{0x00000001, 0x5AA5A55A, 0xA55A5AA5, 0xFFFFFFFF} {
		req.True(bitstream.Put(s, v))
	}

	req.False(bitstream.Put(s, uint32(0)))
	req.Equal([]byte{
		0x00, 0x00, 0x00, 0x01,
		0x5A, 0xA5, 0xA5, 0x5A,
		0xA5, 0x5A, 0x5A, 0xA5,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, storage)
}

func TestPutUint64(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 16)
	s := New(storage)

	req.True(bitstream.Put(s, uint64(0x0102030405060708)))
	req.True(bitstream.Put(s, int64(-2)))
	req.False(bitstream.Put(s, uint64(0)))

	req.Equal([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
	}, storage)

	s.Restart()

	var u uint64
	req.True(bitstream.Get(s, &u))
	req.Equal(uint64(0x0102030405060708), u)

	var i int64
	req.True(bitstream.Get(s, &i))
	req.Equal(int64(-2), i)
}

func TestPutFloat32(t *testing.T) {
	req := require.New(t)

	values := []float32{math.MaxFloat32, math.SmallestNonzeroFloat32, -math.MaxFloat32, 3.1415927}
	storage := make([]byte, 4*len(values))
	s := New(storage)
	s.Clear()

	for _, v := range values {
		req.True(bitstream.PutFloat(s, v))
	}

	// One too many.
	req.False(bitstream.PutFloat(s, float32(0)))

	for i, v := range values {
		bits := math.Float32bits(v)
		req.Equal([]byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}, storage[i*4:i*4+4])
	}

	s.Restart()

	for _, v := range values {
		var f float32
		req.True(bitstream.GetFloat(s, &f))
		req.Equal(v, f)
	}
}

func TestPutFloat64(t *testing.T) {
	req := require.New(t)

	values := []float64{math.MaxFloat64, math.SmallestNonzeroFloat64, -math.MaxFloat64, 3.1415927}
	storage := make([]byte, 8*len(values))
	s := New(storage)
	s.Clear()

	for _, v := range values {
		req.True(bitstream.PutFloat(s, v))
	}

	req.False(bitstream.PutFloat(s, 0.0))

	for i, v := range values {
		bits := math.Float64bits(v)
		for j := 0; j < 8; j++ {
			req.Equal(byte(bits>>(56-8*j)), storage[i*8+j])
		}
	}

	s.Restart()

	for _, v := range values {
		var f float64
		req.True(bitstream.GetFloat(s, &f))
		req.Equal(v, f)
	}
}

func TestFloatUnaligned(t *testing.T) {
	req := require.New(t)

	s := New(make([]byte, 13))

	req.True(s.PutBool(true))
	req.True(bitstream.PutFloat(s, float32(-1.5)))
	req.True(bitstream.PutFloat(s, math.Inf(-1)))
	req.Equal(uint(97), s.Position())

	s.Restart()

	flag, ok := s.GetBool()
	req.True(ok)
	req.True(flag)

	var f32 float32
	req.True(bitstream.GetFloat(s, &f32))
	req.Equal(float32(-1.5), f32)

	var f64 float64
	req.True(bitstream.GetFloat(s, &f64))
	req.True(math.IsInf(f64, -1))
}

func TestPutGetInt8(t *testing.T) {
	req := require.New(t)

	putData := []int8{0x01, 0x5A, -0x5B, -1}
	s := New(make([]byte, 4))
	s.Clear()

	for _, v := range putData {
		req.True(bitstream.Put(s, v))
	}

	s.Restart()

	for _, v := range putData {
		var got int8
		req.True(bitstream.Get(s, &got))
		req.Equal(v, got)
	}
}

func TestPutGetInt8_5Bits(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 4)
	putData := []int8{0x01, 0x15, 0x0A, 0x1F}
	expectData := []int8{1, -11, 10, -1}

	s := New(storage)
	s.Clear()

	for _, v := range putData {
		req.True(bitstream.PutN(s, v, 5))
	}

	// 20 bits: 00001 10101 01010 11111.
	req.Equal(uint(20), s.Position())
	req.Equal([]byte{0x0D, 0x55, 0xF0, 0x00}, storage)

	s.Restart()

	for _, expected := range expectData {
		var got int8
		req.True(bitstream.GetN(s, &got, 5))
		req.Equal(expected, got)
	}
}

func TestPutGetUnsigned_5Bits(t *testing.T) {
	req := require.New(t)

	s := New(make([]byte, 4))
	for _, v := range []uint8{0x01, 0x15, 0x0A, 0x1F} {
		req.True(bitstream.PutN(s, v, 5))
	}

	s.Restart()

	for _, expected := range []uint8{0x01, 0x15, 0x0A, 0x1F} {
		var got uint8
		req.True(bitstream.GetN(s, &got, 5))
		req.Equal(expected, got)
	}
}

func TestWidening(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 4)
	s := New(storage)

	req.True(bitstream.PutN(s, int8(-2), 16))
	req.True(bitstream.PutN(s, uint8(0xFE), 16))
	req.Equal([]byte{0xFF, 0xFE, 0x00, 0xFE}, storage)

	s.Restart()

	var i int8
	req.True(bitstream.GetN(s, &i, 16))
	req.Equal(int8(-2), i)

	var u uint8
	req.True(bitstream.GetN(s, &u, 16))
	req.Equal(uint8(0xFE), u)
}

func TestWidthRange(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 16)
	s := New(storage)

	req.False(bitstream.PutN(s, uint64(1), 0))
	req.False(bitstream.PutN(s, uint64(1), 65))
	req.False(s.PutUint64(1, 0))

	_, ok := s.GetUint64(65)
	req.False(ok)
	_, ok = s.GetInt64(0)
	req.False(ok)

	req.Equal(uint(0), s.Position())
	req.Equal(make([]byte, 16), storage)
}

func TestBoundaryWidths(t *testing.T) {
	req := require.New(t)

	s := New(make([]byte, 9))

	req.True(s.PutUint64(1, 1))
	req.True(s.PutUint64(math.MaxUint64, 64))
	req.True(s.PutUint64(0, 7))
	req.Equal(s.Capacity(), s.Position())

	s.Restart()

	v, ok := s.GetUint64(1)
	req.True(ok)
	req.Equal(uint64(1), v)

	v, ok = s.GetUint64(64)
	req.True(ok)
	req.Equal(uint64(math.MaxUint64), v)

	i, ok := s.GetInt64(7)
	req.True(ok)
	req.Equal(int64(0), i)

	s.Restart()
	s.GetUint64(1)
	i, ok = s.GetInt64(64)
	req.True(ok)
	req.Equal(int64(-1), i)
}

func TestCursorBoundaries(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 2)
	s := New(storage)
	req.Equal(uint(16), s.Capacity())

	// Position 0 to 7: a single bit at the LS end of the first byte.
	req.True(s.PutUint64(0, 7))
	req.True(s.PutBool(true))
	req.Equal(uint(8), s.Position())
	req.Equal(byte(0x01), storage[0])

	// Position 8: a single bit at the MS end of the second byte.
	req.True(s.PutBool(true))
	req.Equal(byte(0x80), storage[1])

	// Up to capacity-1, then the last bit.
	req.True(s.PutUint64(0, 6))
	req.Equal(uint(15), s.Position())
	req.Equal(uint(1), s.Remaining())
	req.False(s.PutUint64(0, 2))
	req.True(s.PutBool(true))
	req.Equal(byte(0x81), storage[1])

	// At capacity.
	req.Equal(uint(0), s.Remaining())
	req.False(s.PutBool(true))
	_, ok := s.GetBool()
	req.False(ok)
	req.Equal([]byte{0x01, 0x81}, storage)
}

func TestStraddlingFields(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 3)
	s := New(storage)

	// 3 + 13 + 8 bits: the 13-bit field spans all of the first two bytes.
	req.True(s.PutUint64(0x5, 3))
	req.True(s.PutUint64(0x1ABC, 13))
	req.True(s.PutUint64(0xC3, 8))
	req.Equal([]byte{0xBA, 0xBC, 0xC3}, storage)

	s.Restart()

	v, _ := s.GetUint64(3)
	req.Equal(uint64(0x5), v)
	v, _ = s.GetUint64(13)
	req.Equal(uint64(0x1ABC), v)
	v, _ = s.GetUint64(8)
	req.Equal(uint64(0xC3), v)
}

func TestNoPartialWrite(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 4)
	s := New(storage)

	req.True(s.PutUint64(0x3F, 6))
	snapshot := append([]byte(nil), storage...)

	req.False(bitstream.Put(s, uint32(0xFFFFFFFF)))
	req.Equal(snapshot, storage)
	req.Equal(uint(6), s.Position())

	req.False(bitstream.PutFloat(s, 1.0))
	req.False(s.PutBytes([]byte{1, 2, 3, 4}))
	req.Equal(snapshot, storage)
	req.Equal(uint(6), s.Position())

	s.Restart()
	var out uint64 = 42
	s.GetUint64(6)
	req.False(bitstream.Get(s, &out))
	req.Equal(uint64(42), out)
	req.Equal(uint(6), s.Position())
}

func TestCapacityEnforcement(t *testing.T) {
	for _, width := range []uint{1, 2, 3, 4, 5, 8, 13, 16, 32, 64} {
		req := require.New(t)

		const size = 16
		storage := make([]byte, size)
		s := New(storage)

		fields := size * 8 / width
		for i := uint(0); i < fields; i++ {
			req.True(s.PutUint64(uint64(i), width), "width %d field %d", width, i)
		}

		snapshot := append([]byte(nil), storage...)
		position := s.Position()

		req.False(s.PutUint64(math.MaxUint64, width), "width %d", width)
		req.Equal(snapshot, storage)
		req.Equal(position, s.Position())

		s.Restart()
		for i := uint(0); i < fields; i++ {
			v, ok := s.GetUint64(width)
			req.True(ok)
			req.Equal(uint64(i)&(math.MaxUint64>>(64-width)), v)
		}
	}
}

func TestZeroCapacity(t *testing.T) {
	req := require.New(t)

	s := New(nil)
	s.Clear()
	s.Restart()

	req.Equal(uint(0), s.Capacity())
	req.False(s.PutBool(true))
	req.False(bitstream.Put(s, int8(1)))
	req.False(bitstream.PutFloat(s, float32(1)))

	_, ok := s.GetBool()
	req.False(ok)
	req.Empty(s.Used())
}

func TestClearRestart(t *testing.T) {
	req := require.New(t)

	storage := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	s := New(storage)

	// Restart keeps the content.
	req.True(s.PutUint64(0x5, 4))
	s.Restart()
	req.Equal(uint(0), s.Position())
	req.Equal([]byte{0x5E, 0xAD, 0xBE, 0xEF}, storage)

	v, ok := s.GetUint64(16)
	req.True(ok)
	req.Equal(uint64(0x5EAD), v)

	// Clear zeroes everything.
	s.Clear()
	req.Equal(uint(0), s.Position())
	req.Equal(make([]byte, 4), storage)

	s.Clear()
	req.Equal(make([]byte, 4), storage)
}

func TestBytes(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 4)
	s := New(storage)

	req.True(s.PutUint64(0xF, 4))
	req.True(s.PutBytes([]byte{0xAB, 0xCD}))
	req.Equal([]byte{0xFA, 0xBC, 0xD0, 0x00}, storage)
	req.Equal(storage[:3], s.Used())

	s.Restart()
	s.GetUint64(4)

	out := make([]byte, 2)
	req.True(s.GetBytes(out))
	req.Equal([]byte{0xAB, 0xCD}, out)

	req.False(s.GetBytes(make([]byte, 2)))
}

func TestEndToEnd(t *testing.T) {
	req := require.New(t)

	storage := make([]byte, 4)
	s := New(storage)
	s.Clear()

	for _, v := range []int8{0x01, 0x15, 0x0A, 0x1F} {
		req.True(bitstream.PutN(s, v, 5))
	}

	req.Equal(uint(20), s.Position())
	req.Equal(byte(0), storage[3])
	req.Equal(byte(0), storage[2]&0x0F)

	s.Restart()

	got := make([]int8, 4)
	for i := range got {
		req.True(bitstream.GetN(s, &got[i], 5))
	}
	req.Equal([]int8{1, -11, 10, -1}, got)
}

func TestBitWidth(t *testing.T) {
	req := require.New(t)

	req.Equal(uint(8), bitstream.BitWidth[int8]())
	req.Equal(uint(16), bitstream.BitWidth[uint16]())
	req.Equal(uint(32), bitstream.BitWidth[float32]())
	req.Equal(uint(64), bitstream.BitWidth[float64]())
	req.Equal(uint(64), bitstream.BitWidth[int64]())

	req.True(bitstream.Signed[int16]())
	req.False(bitstream.Signed[uint16]())
}
