// Package encoding implements the per-field value encodings of the zlidar
// format: the delta codings applied to coordinate, scan-angle, and GPS-time
// columns before compression, and the raw fixed-width codings for the
// remaining columns.
//
// Encoders accumulate one block's column into a pooled buffer; decoders are
// stateless and iterate over a decompressed payload. All output is
// little-endian and fixed-width per value, since the zlidar block table
// derives value counts from payload sizes.
package encoding

import "iter"

type ColumnarEncoder[T comparable] interface {
	// Bytes returns the encoded byte slice.
	// The returned slice is valid until the next call to Write, WriteSlice, or Reset.
	// The caller should not modify the returned slice.
	Bytes() []byte

	// Len returns the number of encoded values.
	Len() int

	// Size returns the number of bytes written to the internal buffer.
	Size() int

	// Reset clears the encoder state and buffer so the encoder can start a
	// new block. Delta baselines reset to zero.
	Reset()

	// Finish finalizes the encoding process and returns buffer resources to
	// the pool.
	//
	// After calling Finish() the encoder is no longer usable; any subsequent
	// call panics on the nil buffer. To encode more data, create a new
	// encoder instance.
	Finish()

	// Write encodes a single value.
	Write(value T)

	// WriteSlice encodes a slice of values.
	WriteSlice(values []T)
}

type ColumnarDecoder[T comparable] interface {
	// All returns an iterator that yields all decoded values from the
	// provided encoded data.
	//
	// The data should be the byte slice payload produced by a corresponding
	// encoder, after decompression. The count parameter specifies the
	// expected number of values; if the data is shorter, the iterator yields
	// fewer values and the caller is responsible for treating that as a
	// truncation error.
	All(data []byte, count int) iter.Seq[T]

	// At retrieves the value at the specified index from the encoded data.
	//
	// Returns false if the index is out of bounds or the data is too short.
	// For delta codings this is a sequential scan; prefer All for bulk reads.
	At(data []byte, index int, count int) (T, bool)
}
