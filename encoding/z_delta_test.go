package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/golidar/endian"
)

func TestZDeltaEncoder_DualBaselines(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	// Ground returns (late) and canopy returns (early) track separate running
	// baselines, so interleaving the two surfaces keeps both delta streams small.
	values := []int32{10000, 45000, 10020, 45010, 9990, 44980}
	late := []bool{true, false, true, false, true, false}

	enc := NewZDeltaEncoder(engine)
	for i, v := range values {
		enc.Write(v, late[i])
	}
	require.Equal(t, len(values), enc.Len())

	raw := enc.Bytes()
	wantDeltas := []int32{10000, 45000, 20, 10, -30, -30}
	for i, want := range wantDeltas {
		require.Equal(t, want, int32(engine.Uint32(raw[i*4:])), "delta index %d", i)
	}

	dec := NewZDeltaDecoder(engine)
	require.Equal(t, values, dec.Decode(raw, late))

	enc.Finish()
}

func TestZDeltaEncoder_AllSameReturnClass(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	values := []int32{500, 510, 505}
	late := []bool{true, true, true}

	enc := NewZDeltaEncoder(engine)
	for i, v := range values {
		enc.Write(v, late[i])
	}

	dec := NewZDeltaDecoder(engine)
	require.Equal(t, values, dec.Decode(enc.Bytes(), late))

	enc.Finish()
}

func TestZDeltaDecoder_TruncatedStream(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	enc := NewZDeltaEncoder(engine)
	enc.Write(100, true)
	enc.Write(200, false)

	// More flags than deltas: decoding stops at the data it has.
	dec := NewZDeltaDecoder(engine)
	got := dec.Decode(enc.Bytes(), []bool{true, false, true})
	require.Equal(t, []int32{100, 200}, got)

	enc.Finish()
}

func TestZDeltaEncoder_Reset(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	enc := NewZDeltaEncoder(engine)
	enc.Write(777, true)
	enc.Write(888, false)
	enc.Reset()
	require.Equal(t, 0, enc.Len())

	enc.Write(777, true)
	require.Equal(t, int32(777), int32(engine.Uint32(enc.Bytes())))

	enc.Finish()
}
