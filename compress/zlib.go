package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultCompressionLevel is the fixed deflate level used for zlidar field
// payloads. Level 6 is the classic speed/ratio balance point; the format does
// not record the level, so any level round-trips.
const DefaultCompressionLevel = 6

// ZlibCompressor implements deflate (zlib-framed) compression, the only
// method the zlidar container defines.
type ZlibCompressor struct {
	level int
}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a zlib codec with the given compression level.
// Levels outside [zlib.HuffmanOnly, zlib.BestCompression] fall back to
// DefaultCompressionLevel.
func NewZlibCompressor(level int) *ZlibCompressor {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		level = DefaultCompressionLevel
	}

	return &ZlibCompressor{level: level}
}

// Compress compresses the input data as a zlib stream.
func (c *ZlibCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib flush: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream produced by Compress or any conforming
// deflate implementation.
func (c *ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}

	return out, nil
}
