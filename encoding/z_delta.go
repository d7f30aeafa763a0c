package encoding

import (
	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/internal/pool"
)

// ZDeltaEncoder encodes the zlidar z column with two per-block running
// baselines, one for late returns (last or only return of a pulse) and one
// for early returns.
//
// Ground-hitting late returns and canopy-hitting early returns form two
// distinct elevation bands; delta-coding each band against its own baseline
// keeps the deltas small where a single baseline would oscillate between
// bands. Each point's delta is taken against the baseline selected by its
// late-return flag, and only that baseline is updated.
//
// Both baselines start at 0 for every block. The encoder does not fit the
// generic ColumnarEncoder interface because each value carries its
// late-return flag.
type ZDeltaEncoder struct {
	buf       *pool.ByteBuffer
	engine    endian.EndianEngine
	prevLate  int32
	prevEarly int32
	count     int
}

// NewZDeltaEncoder creates a dual-baseline z encoder using the given engine.
func NewZDeltaEncoder(engine endian.EndianEngine) *ZDeltaEncoder {
	return &ZDeltaEncoder{
		engine: engine,
		buf:    pool.GetColumnBuffer(),
	}
}

// Write encodes one raw z value against the baseline selected by late.
func (e *ZDeltaEncoder) Write(value int32, late bool) {
	e.buf.Grow(4)

	if late {
		e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(value-e.prevLate))
		e.prevLate = value
	} else {
		e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(value-e.prevEarly))
		e.prevEarly = value
	}
	e.count++
}

func (e *ZDeltaEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *ZDeltaEncoder) Len() int      { return e.count }
func (e *ZDeltaEncoder) Size() int     { return e.buf.Len() }

// Reset clears both baselines and the buffer for a new block.
func (e *ZDeltaEncoder) Reset() {
	e.prevLate = 0
	e.prevEarly = 0
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *ZDeltaEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// ZDeltaDecoder reconstructs a z column from its dual-baseline delta stream.
//
// The caller must supply the per-point late-return flags, which is why the
// zlidar read path decompresses the point bit field before the z field.
type ZDeltaDecoder struct {
	engine endian.EndianEngine
}

// NewZDeltaDecoder creates a dual-baseline z decoder using the given engine.
func NewZDeltaDecoder(engine endian.EndianEngine) ZDeltaDecoder {
	return ZDeltaDecoder{engine: engine}
}

// Decode reconstructs len(late) raw z values from data. Each delta is applied
// to, and updates, the baseline selected by the matching late flag.
func (d ZDeltaDecoder) Decode(data []byte, late []bool) []int32 {
	var prevLate, prevEarly int32

	n := len(late)
	if max := len(data) / 4; n > max {
		n = max
	}

	out := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		delta := int32(d.engine.Uint32(data[i*4:]))
		if late[i] {
			prevLate += delta
			out = append(out, prevLate)
		} else {
			prevEarly += delta
			out = append(out, prevEarly)
		}
	}

	return out
}
