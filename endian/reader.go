package endian

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/golidar/errs"
)

// Reader decodes fixed-width values sequentially from an in-memory buffer.
//
// It tracks a cursor position and fails with errs.ErrShortBuffer on truncated
// input instead of panicking or returning zero values. The buffer is not
// copied; the Reader must not outlive it.
type Reader struct {
	engine EndianEngine
	buf    []byte
	pos    int
}

// NewReader creates a Reader over buf using the given engine.
func NewReader(buf []byte, engine EndianEngine) *Reader {
	return &Reader{engine: engine, buf: buf}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the cursor to an absolute position.
func (r *Reader) SetPos(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return fmt.Errorf("seek to %d in %d-byte buffer: %w", pos, len(r.buf), errs.ErrShortBuffer)
	}
	r.pos = pos

	return nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if _, err := r.take(n); err != nil {
		return err
	}

	return nil
}

// Bytes returns the next n bytes without copying and advances the cursor.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// String reads a fixed-width NUL-padded field and returns it with trailing
// NULs and spaces stripped.
func (r *Reader) String(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(string(b), "\x00 "), nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("read %d bytes at offset %d of %d: %w", n, r.pos, len(r.buf), errs.ErrShortBuffer)
	}

	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}
