// Package compress provides the compression backends for zlidar field payloads.
//
// The zlidar container stores one compression-method byte per block; this
// package maps that byte to a Codec. The format currently defines a single
// method (deflate), but the registry keeps the lookup shape so that a future
// method code is one new file.
package compress

import (
	"fmt"

	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

// Compressor compresses one field column of a zlidar block.
//
// The input is the delta-encoded, fixed-width column payload produced by the
// encoding package; columns run from a few bytes up to 400KB (50,000 points
// of 8-byte GPS time).
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller; the
	// input slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor mirrors Compressor for the read path.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original bytes.
	//
	// Returns an error if the data is corrupted or was produced by an
	// incompatible algorithm. The returned slice is newly allocated and owned
	// by the caller; the input slice is not modified.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionMethod]Codec{
	format.CompressionDeflate: NewZlibCompressor(DefaultCompressionLevel),
}

// GetCodec retrieves the built-in Codec for the given zlidar method byte.
//
// Any method other than format.CompressionDeflate fails with
// errs.ErrUnsupportedCompression.
func GetCodec(method format.CompressionMethod) (Codec, error) {
	if codec, ok := builtinCodecs[method]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("method %d (%s): %w", method, method, errs.ErrUnsupportedCompression)
}
