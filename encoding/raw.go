package encoding

import (
	"iter"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/internal/pool"
)

// ByteRawEncoder packs a byte column verbatim. Used for the point bit field,
// classification bit field, and user-data columns, which carry no delta
// coding: their value distribution is already narrow and deflate handles the
// repetition directly.
type ByteRawEncoder struct {
	buf   *pool.ByteBuffer
	count int
}

var _ ColumnarEncoder[byte] = (*ByteRawEncoder)(nil)

// NewByteRawEncoder creates a raw byte column encoder.
func NewByteRawEncoder() *ByteRawEncoder {
	return &ByteRawEncoder{buf: pool.GetColumnBuffer()}
}

// Write appends a single byte to the column.
func (e *ByteRawEncoder) Write(value byte) {
	e.buf.Grow(1)
	e.buf.B = append(e.buf.B, value)
	e.count++
}

// WriteSlice appends a slice of bytes to the column.
func (e *ByteRawEncoder) WriteSlice(values []byte) {
	e.buf.MustWrite(values)
	e.count += len(values)
}

func (e *ByteRawEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *ByteRawEncoder) Len() int      { return e.count }
func (e *ByteRawEncoder) Size() int     { return e.buf.Len() }

// Reset clears the buffer for a new block.
func (e *ByteRawEncoder) Reset() {
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *ByteRawEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// ByteRawDecoder reads a raw byte column.
type ByteRawDecoder struct{}

var _ ColumnarDecoder[byte] = ByteRawDecoder{}

// NewByteRawDecoder creates a raw byte column decoder.
func NewByteRawDecoder() ByteRawDecoder {
	return ByteRawDecoder{}
}

// All yields each byte of the column in order.
func (ByteRawDecoder) All(data []byte, count int) iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for i := 0; i < count && i < len(data); i++ {
			if !yield(data[i]) {
				return
			}
		}
	}
}

// At returns the byte at index.
func (ByteRawDecoder) At(data []byte, index int, count int) (byte, bool) {
	if index < 0 || index >= count || index >= len(data) {
		return 0, false
	}

	return data[index], true
}

// Uint16RawEncoder packs a uint16 column in little-endian order. Used for the
// intensity, point-source-id, and RGB channel columns.
type Uint16RawEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

var _ ColumnarEncoder[uint16] = (*Uint16RawEncoder)(nil)

// NewUint16RawEncoder creates a raw uint16 column encoder using the given engine.
func NewUint16RawEncoder(engine endian.EndianEngine) *Uint16RawEncoder {
	return &Uint16RawEncoder{
		engine: engine,
		buf:    pool.GetColumnBuffer(),
	}
}

// Write appends a single value to the column.
func (e *Uint16RawEncoder) Write(value uint16) {
	e.buf.Grow(2)
	e.buf.B = e.engine.AppendUint16(e.buf.B, value)
	e.count++
}

// WriteSlice appends a slice of values to the column.
func (e *Uint16RawEncoder) WriteSlice(values []uint16) {
	e.buf.Grow(2 * len(values))
	for _, v := range values {
		e.buf.B = e.engine.AppendUint16(e.buf.B, v)
	}
	e.count += len(values)
}

func (e *Uint16RawEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *Uint16RawEncoder) Len() int      { return e.count }
func (e *Uint16RawEncoder) Size() int     { return e.buf.Len() }

// Reset clears the buffer for a new block.
func (e *Uint16RawEncoder) Reset() {
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *Uint16RawEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// Uint16RawDecoder reads a little-endian uint16 column.
type Uint16RawDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[uint16] = Uint16RawDecoder{}

// NewUint16RawDecoder creates a raw uint16 column decoder using the given engine.
func NewUint16RawDecoder(engine endian.EndianEngine) Uint16RawDecoder {
	return Uint16RawDecoder{engine: engine}
}

// All yields each value of the column in order.
func (d Uint16RawDecoder) All(data []byte, count int) iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		for i := 0; i < count && (i+1)*2 <= len(data); i++ {
			if !yield(d.engine.Uint16(data[i*2:])) {
				return
			}
		}
	}
}

// At returns the value at index.
func (d Uint16RawDecoder) At(data []byte, index int, count int) (uint16, bool) {
	if index < 0 || index >= count || (index+1)*2 > len(data) {
		return 0, false
	}

	return d.engine.Uint16(data[index*2:]), true
}
