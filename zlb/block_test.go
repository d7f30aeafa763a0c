package zlb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/golidar/compress"
	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

func testBlock(n int, rgb bool, gps bool) *Block {
	blk := &Block{
		X:           make([]int32, n),
		Y:           make([]int32, n),
		Z:           make([]int32, n),
		Intensity:   make([]uint16, n),
		PointBit:    make([]byte, n),
		ClassBit:    make([]byte, n),
		ScanAngle:   make([]int16, n),
		UserData:    make([]byte, n),
		PointSource: make([]uint16, n),
	}
	if gps {
		blk.GpsTime = make([]float64, n)
	}
	if rgb {
		blk.Red = make([]uint16, n)
		blk.Green = make([]uint16, n)
		blk.Blue = make([]uint16, n)
	}

	for i := 0; i < n; i++ {
		blk.X[i] = int32(100000 + i*5)
		blk.Y[i] = int32(-200000 + i*3)
		blk.Z[i] = int32(5000 + (i%7)*40)
		blk.Intensity[i] = uint16(i * 11 % 65536)
		if i%3 == 0 {
			// First of two returns: an early return.
			blk.PointBit[i] = 0b0001_0001
		} else {
			// Single return, negative scan direction, not edge.
			blk.PointBit[i] = 0b0000_1001
		}
		blk.ClassBit[i] = byte(i % 19)
		blk.ScanAngle[i] = int16(i%181 - 90)
		blk.UserData[i] = byte(i % 256)
		blk.PointSource[i] = uint16(7000 + i%3)
		if gps {
			blk.GpsTime[i] = 211575.0 + float64(i)*0.0000046
		}
		if rgb {
			blk.Red[i] = uint16(i * 17 % 65536)
			blk.Green[i] = uint16(i * 29 % 65536)
			blk.Blue[i] = uint16(i * 43 % 65536)
		}
	}

	return blk
}

func requireBlockEqual(t *testing.T, want, got *Block) {
	t.Helper()
	require.Equal(t, want.X, got.X)
	require.Equal(t, want.Y, got.Y)
	require.Equal(t, want.Z, got.Z)
	require.Equal(t, want.Intensity, got.Intensity)
	require.Equal(t, want.PointBit, got.PointBit)
	require.Equal(t, want.ClassBit, got.ClassBit)
	require.Equal(t, want.ScanAngle, got.ScanAngle)
	require.Equal(t, want.UserData, got.UserData)
	require.Equal(t, want.PointSource, got.PointSource)
	require.Equal(t, want.Red, got.Red)
	require.Equal(t, want.Green, got.Green)
	require.Equal(t, want.Blue, got.Blue)
	if want.GpsTime == nil {
		require.Nil(t, got.GpsTime)
	} else {
		require.Len(t, got.GpsTime, len(want.GpsTime))
		for i := range want.GpsTime {
			require.InDelta(t, want.GpsTime[i], got.GpsTime[i], 1e-6)
		}
	}
}

func TestEncodeBlock_DecodeBlock_RoundTrip(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)

	tests := []struct {
		name string
		blk  *Block
	}{
		{"CoreFieldsOnly", testBlock(500, false, false)},
		{"WithGpsTime", testBlock(500, false, true)},
		{"WithRgbAndGpsTime", testBlock(500, true, true)},
		{"SinglePoint", testBlock(1, true, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := endian.NewWriter(endian.GetLittleEndianEngine(), 4096)
			require.NoError(t, EncodeBlock(w, tt.blk, codec))

			got, end, err := DecodeBlock(w.Bytes(), 0)
			require.NoError(t, err)
			require.Equal(t, w.Len(), end)
			require.Equal(t, tt.blk.Count(), got.Count())
			requireBlockEqual(t, tt.blk, got)
		})
	}
}

func TestEncodeBlock_AbsoluteOffsets(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)

	// Table offsets are absolute file positions, so blocks written after a
	// header prefix must decode from the same buffer at the same position.
	w := endian.NewWriter(endian.GetLittleEndianEngine(), 4096)
	w.PutZeros(236)

	first := testBlock(300, false, true)
	second := testBlock(77, false, true)
	require.NoError(t, EncodeBlock(w, first, codec))
	mid := w.Len()
	require.NoError(t, EncodeBlock(w, second, codec))

	got, end, err := DecodeBlock(w.Bytes(), 236)
	require.NoError(t, err)
	require.Equal(t, mid, end)
	requireBlockEqual(t, first, got)

	got, end, err = DecodeBlock(w.Bytes(), mid)
	require.NoError(t, err)
	require.Equal(t, w.Len(), end)
	requireBlockEqual(t, second, got)
}

func TestDecodeBlock_UnsupportedMethod(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)

	w := endian.NewWriter(endian.GetLittleEndianEngine(), 1024)
	require.NoError(t, EncodeBlock(w, testBlock(10, false, false), codec))

	data := w.Bytes()
	data[2] = 0x05 // method byte

	_, _, err := DecodeBlock(data, 0)
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestDecodeBlock_UnsupportedVersion(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)

	w := endian.NewWriter(endian.GetLittleEndianEngine(), 1024)
	require.NoError(t, EncodeBlock(w, testBlock(10, false, false), codec))

	data := w.Bytes()
	data[3] = 0x02 // codec version byte

	_, _, err := DecodeBlock(data, 0)
	require.ErrorIs(t, err, errs.ErrUnsupportedCodecVersion)
}

func TestDecodeBlock_TruncatedFile(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)

	w := endian.NewWriter(endian.GetLittleEndianEngine(), 1024)
	require.NoError(t, EncodeBlock(w, testBlock(50, false, false), codec))

	// Cut into the last payload: the table still parses but the payload
	// bounds check fails.
	data := w.Bytes()[:w.Len()-8]

	_, _, err := DecodeBlock(data, 0)
	require.ErrorIs(t, err, errs.ErrShortBuffer)
}

func TestDecodeBlock_MissingMandatoryColumn(t *testing.T) {
	// A table carrying only the point bit field fixes a count but leaves the
	// coordinate columns absent; that must be a typed error, not nil slices.
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)
	payload, err := codec.Compress([]byte{0b0000_1001, 0b0000_1001, 0b0000_1001})
	require.NoError(t, err)

	w := endian.NewWriter(endian.GetLittleEndianEngine(), 64)
	w.PutUint16(1)
	w.PutUint8(0) // deflate
	w.PutUint8(1) // version
	w.PutUint32(uint32(format.FieldPointBit))
	w.PutUint64(24)
	w.PutUint64(uint64(len(payload)))
	w.PutBytes(payload)

	_, _, err = DecodeBlock(w.Bytes(), 0)
	require.ErrorIs(t, err, errs.ErrMissingField)
}

func TestDecodeBlock_ZeroCountBlock(t *testing.T) {
	// A zero-length point bit payload would decode to an empty block whose
	// end equals its start; it must fail rather than let readers spin.
	w := endian.NewWriter(endian.GetLittleEndianEngine(), 64)
	w.PutUint16(1)
	w.PutUint8(0) // deflate
	w.PutUint8(1) // version
	w.PutUint32(uint32(format.FieldPointBit))
	w.PutUint64(0) // offset at the block start itself
	w.PutUint64(0)

	_, _, err := DecodeBlock(w.Bytes(), 0)
	require.ErrorIs(t, err, errs.ErrInvalidBlock)
}

func TestDecodeBlock_SkipsUnknownField(t *testing.T) {
	codec := compress.NewZlibCompressor(compress.DefaultCompressionLevel)
	engine := endian.GetLittleEndianEngine()

	src := testBlock(40, false, false)
	w := endian.NewWriter(engine, 1024)
	require.NoError(t, EncodeBlock(w, src, codec))

	// Rewrite the intensity entry (table index 3) with an unknown field
	// code; its non-empty payload must be ignored, not rejected.
	data := w.Bytes()
	entryPos := 4 + 3*fieldEntrySize
	require.Equal(t, uint32(format.FieldIntensity), engine.Uint32(data[entryPos:]))
	engine.PutUint32(data[entryPos:], 99)

	got, end, err := DecodeBlock(data, 0)
	require.NoError(t, err)
	require.Equal(t, w.Len(), end)
	require.Nil(t, got.Intensity)
	require.Equal(t, src.X, got.X)
	require.Equal(t, src.Z, got.Z)
	require.Equal(t, src.UserData, got.UserData)
}

func TestDecodeBlock_MissingPointBitField(t *testing.T) {
	// A table with a single x column and no point bit field cannot fix the
	// point count.
	w := endian.NewWriter(endian.GetLittleEndianEngine(), 64)
	w.PutUint16(1)
	w.PutUint8(0) // deflate
	w.PutUint8(1) // version
	w.PutUint32(0)
	w.PutUint64(24)
	w.PutUint64(0)

	_, _, err := DecodeBlock(w.Bytes(), 0)
	require.ErrorIs(t, err, errs.ErrMissingField)
}

func TestIsLateReturn(t *testing.T) {
	require.True(t, isLateReturn(0b0000_1001))  // return 1 of 1
	require.True(t, isLateReturn(0b0001_0010))  // return 2 of 2
	require.False(t, isLateReturn(0b0001_0001)) // return 1 of 2
	require.True(t, isLateReturn(0))            // zero fields read as 1 of 1
}
