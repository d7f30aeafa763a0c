package encoding

import (
	"iter"
	"math"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/internal/pool"
)

// Float64DeltaEncoder encodes the GPS-time column as float64 deltas against
// the previous value, baseline 0. Points are stored in acquisition order, so
// consecutive GPS times differ by small pulse intervals whose bit patterns
// compress far better than monotonically growing absolutes.
//
// The reconstruction is a floating-point running sum, so round-trips are
// exact only up to float64 round-off; the block boundary resets accumulation
// every 50,000 points, which keeps the drift below observable precision for
// real GPS times.
type Float64DeltaEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	prev   float64
	count  int
}

var _ ColumnarEncoder[float64] = (*Float64DeltaEncoder)(nil)

// NewFloat64DeltaEncoder creates a float64 delta encoder using the given engine.
func NewFloat64DeltaEncoder(engine endian.EndianEngine) *Float64DeltaEncoder {
	return &Float64DeltaEncoder{
		engine: engine,
		buf:    pool.GetColumnBuffer(),
	}
}

// Write encodes a single value as a delta against the previous one.
func (e *Float64DeltaEncoder) Write(value float64) {
	e.buf.Grow(8)
	e.buf.B = e.engine.AppendUint64(e.buf.B, math.Float64bits(value-e.prev))
	e.prev = value
	e.count++
}

// WriteSlice encodes a slice of values.
func (e *Float64DeltaEncoder) WriteSlice(values []float64) {
	e.buf.Grow(8 * len(values))
	for _, v := range values {
		e.buf.B = e.engine.AppendUint64(e.buf.B, math.Float64bits(v-e.prev))
		e.prev = v
	}
	e.count += len(values)
}

func (e *Float64DeltaEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *Float64DeltaEncoder) Len() int      { return e.count }
func (e *Float64DeltaEncoder) Size() int     { return e.buf.Len() }

// Reset clears the baseline and buffer for a new block.
func (e *Float64DeltaEncoder) Reset() {
	e.prev = 0
	e.count = 0
	e.buf.Reset()
}

// Finish returns the buffer to the pool; the encoder is unusable afterwards.
func (e *Float64DeltaEncoder) Finish() {
	pool.PutColumnBuffer(e.buf)
	e.buf = nil
}

// Float64DeltaDecoder reconstructs a float64 column by running-summing deltas.
type Float64DeltaDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[float64] = Float64DeltaDecoder{}

// NewFloat64DeltaDecoder creates a float64 delta decoder using the given engine.
func NewFloat64DeltaDecoder(engine endian.EndianEngine) Float64DeltaDecoder {
	return Float64DeltaDecoder{engine: engine}
}

// All yields the reconstructed values by running-summing the delta stream.
func (d Float64DeltaDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		var prev float64
		for i := 0; i < count && (i+1)*8 <= len(data); i++ {
			prev += math.Float64frombits(d.engine.Uint64(data[i*8:]))
			if !yield(prev) {
				return
			}
		}
	}
}

// At reconstructs the value at index by scanning the deltas up to it.
func (d Float64DeltaDecoder) At(data []byte, index int, count int) (float64, bool) {
	if index < 0 || index >= count || (index+1)*8 > len(data) {
		return 0, false
	}

	var prev float64
	for i := 0; i <= index; i++ {
		prev += math.Float64frombits(d.engine.Uint64(data[i*8:]))
	}

	return prev, true
}
