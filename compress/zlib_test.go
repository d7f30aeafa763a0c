package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

func TestZlibCodec_RoundTrip(t *testing.T) {
	codec, err := GetCodec(format.CompressionDeflate)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0x10, 0x20, 0x30, 0x40}, 4096)

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)
	require.Less(t, len(compressed), len(payload))

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, restored)
}

func TestZlibCodec_EmptyInput(t *testing.T) {
	codec := NewZlibCompressor(DefaultCompressionLevel)

	compressed, err := codec.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	restored, err := codec.Decompress(nil)
	require.NoError(t, err)
	require.Nil(t, restored)
}

func TestZlibCompressor_Levels(t *testing.T) {
	payload := bytes.Repeat([]byte("lidar point columns compress well "), 512)

	fast, err := NewZlibCompressor(1).Compress(payload)
	require.NoError(t, err)
	best, err := NewZlibCompressor(9).Compress(payload)
	require.NoError(t, err)

	for _, compressed := range [][]byte{fast, best} {
		restored, err := NewZlibCompressor(DefaultCompressionLevel).Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, payload, restored)
	}
}

func TestZlibCompressor_DecompressGarbage(t *testing.T) {
	_, err := NewZlibCompressor(DefaultCompressionLevel).Decompress([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.Error(t, err)
}

func TestGetCodec_UnknownMethod(t *testing.T) {
	_, err := GetCodec(format.CompressionMethod(7))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}
