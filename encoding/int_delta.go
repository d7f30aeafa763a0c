package encoding

import (
	"iter"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/internal/pool"
)

// Int32DeltaEncoder encodes a column of raw 32-bit integers as deltas against
// the previous value in the block, baseline 0.
//
// This is the coding for the zlidar x and y fields: consecutive points in a
// flightline are spatially close, so deltas cluster near zero and deflate
// squeezes them far below the 4 bytes each still occupies on the wire.
type Int32DeltaEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	prev   int32
	count  int
}

var _ ColumnarEncoder[int32] = (*Int32DeltaEncoder)(nil)

// NewInt32DeltaEncoder creates an int32 delta encoder using the given engine.
func NewInt32DeltaEncoder(engine endian.EndianEngine) *Int32DeltaEncoder {
	return &Int32DeltaEncoder{
		engine: engine,
		buf:    pool.GetColumnBuffer(),
	}
}

// Write encodes a single value as a delta against the previous one.
func (e *Int32DeltaEncoder) Write(value int32) {
	e.buf.Grow(4)
	e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(value-e.prev))
	e.prev = value
	e.count++
}

// WriteSlice encodes a slice of values.
func (e *Int32DeltaEncoder) WriteSlice(values []int32) {
	e.buf.Grow(4 * len(values))
	for _, v := range values {
		e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(v-e.prev))
		e.prev = v
	}
	e.count += len(values)
}

func (e *Int32DeltaEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *Int32DeltaEncoder) Len() int      { return e.count }
func (e *Int32DeltaEncoder) Size() int     { return e.buf.Len() }

// Reset clears the baseline and buffer for a new block.
func (e *Int32DeltaEncoder) Reset() {
	e.prev = 0
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *Int32DeltaEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// Int32DeltaDecoder reconstructs an int32 column from its delta stream.
type Int32DeltaDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[int32] = Int32DeltaDecoder{}

// NewInt32DeltaDecoder creates an int32 delta decoder using the given engine.
func NewInt32DeltaDecoder(engine endian.EndianEngine) Int32DeltaDecoder {
	return Int32DeltaDecoder{engine: engine}
}

// All yields the reconstructed values by running-summing the delta stream.
func (d Int32DeltaDecoder) All(data []byte, count int) iter.Seq[int32] {
	return func(yield func(int32) bool) {
		var prev int32
		for i := 0; i < count && (i+1)*4 <= len(data); i++ {
			prev += int32(d.engine.Uint32(data[i*4:]))
			if !yield(prev) {
				return
			}
		}
	}
}

// At reconstructs the value at index by scanning the deltas up to it.
func (d Int32DeltaDecoder) At(data []byte, index int, count int) (int32, bool) {
	if index < 0 || index >= count || (index+1)*4 > len(data) {
		return 0, false
	}

	var prev int32
	for i := 0; i <= index; i++ {
		prev += int32(d.engine.Uint32(data[i*4:]))
	}

	return prev, true
}

// Int16DeltaEncoder encodes a column of 16-bit signed integers as deltas
// against the previous value, baseline 0. Used for the scan-angle field.
type Int16DeltaEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	prev   int16
	count  int
}

var _ ColumnarEncoder[int16] = (*Int16DeltaEncoder)(nil)

// NewInt16DeltaEncoder creates an int16 delta encoder using the given engine.
func NewInt16DeltaEncoder(engine endian.EndianEngine) *Int16DeltaEncoder {
	return &Int16DeltaEncoder{
		engine: engine,
		buf:    pool.GetColumnBuffer(),
	}
}

// Write encodes a single value as a delta against the previous one.
func (e *Int16DeltaEncoder) Write(value int16) {
	e.buf.Grow(2)
	e.buf.B = e.engine.AppendUint16(e.buf.B, uint16(value-e.prev))
	e.prev = value
	e.count++
}

// WriteSlice encodes a slice of values.
func (e *Int16DeltaEncoder) WriteSlice(values []int16) {
	e.buf.Grow(2 * len(values))
	for _, v := range values {
		e.buf.B = e.engine.AppendUint16(e.buf.B, uint16(v-e.prev))
		e.prev = v
	}
	e.count += len(values)
}

func (e *Int16DeltaEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *Int16DeltaEncoder) Len() int      { return e.count }
func (e *Int16DeltaEncoder) Size() int     { return e.buf.Len() }

// Reset clears the baseline and buffer for a new block.
func (e *Int16DeltaEncoder) Reset() {
	e.prev = 0
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *Int16DeltaEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// Int16DeltaDecoder reconstructs an int16 column from its delta stream.
type Int16DeltaDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[int16] = Int16DeltaDecoder{}

// NewInt16DeltaDecoder creates an int16 delta decoder using the given engine.
func NewInt16DeltaDecoder(engine endian.EndianEngine) Int16DeltaDecoder {
	return Int16DeltaDecoder{engine: engine}
}

// All yields the reconstructed values by running-summing the delta stream.
func (d Int16DeltaDecoder) All(data []byte, count int) iter.Seq[int16] {
	return func(yield func(int16) bool) {
		var prev int16
		for i := 0; i < count && (i+1)*2 <= len(data); i++ {
			prev += int16(d.engine.Uint16(data[i*2:]))
			if !yield(prev) {
				return
			}
		}
	}
}

// At reconstructs the value at index by scanning the deltas up to it.
func (d Int16DeltaDecoder) At(data []byte, index int, count int) (int16, bool) {
	if index < 0 || index >= count || (index+1)*2 > len(data) {
		return 0, false
	}

	var prev int16
	for i := 0; i <= index; i++ {
		prev += int16(d.engine.Uint16(data[i*2:]))
	}

	return prev, true
}
