package endian

import "math"

// Writer encodes fixed-width values sequentially into a growable buffer.
//
// Every Put method appends at the current end of the buffer; Len doubles as
// the absolute offset of the next write, which the zlidar block table relies
// on when recording payload offsets.
type Writer struct {
	engine EndianEngine
	buf    []byte
}

// NewWriter creates a Writer with the given engine and an initial capacity.
func NewWriter(engine EndianEngine, sizeHint int) *Writer {
	return &Writer{engine: engine, buf: make([]byte, 0, sizeHint)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer. The slice is valid until the next Put.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PutUint16(v uint16) {
	w.buf = w.engine.AppendUint16(w.buf, v)
}

func (w *Writer) PutUint32(v uint32) {
	w.buf = w.engine.AppendUint32(w.buf, v)
}

func (w *Writer) PutUint64(v uint64) {
	w.buf = w.engine.AppendUint64(w.buf, v)
}

func (w *Writer) PutInt8(v int8) {
	w.PutUint8(uint8(v))
}

func (w *Writer) PutInt16(v int16) {
	w.PutUint16(uint16(v))
}

func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

func (w *Writer) PutFloat32(v float32) {
	w.PutUint32(math.Float32bits(v))
}

func (w *Writer) PutFloat64(v float64) {
	w.PutUint64(math.Float64bits(v))
}

// PutBytes appends raw bytes verbatim.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutString appends s as a fixed-width field, NUL-padded or truncated to width.
func (w *Writer) PutString(s string, width int) {
	if len(s) > width {
		s = s[:width]
	}
	w.buf = append(w.buf, s...)
	w.PutZeros(width - len(s))
}

// PutZeros appends n zero bytes.
func (w *Writer) PutZeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Align pads the buffer with zeros up to the next multiple of n.
func (w *Writer) Align(n int) {
	if rem := len(w.buf) % n; rem != 0 {
		w.PutZeros(n - rem)
	}
}
