package las

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// requirePointsEqual compares the full point set of two files. Coordinates
// are quantized by the scale factor on disk, so they match to half a step;
// gpsExact selects exact GPS comparison (plain container) or the delta
// tolerance of the running-sum reconstruction (zlidar).
func requirePointsEqual(t *testing.T, want, got *LasFile, gpsExact bool) {
	t.Helper()
	require.Equal(t, want.NumberPoints(), got.NumberPoints())

	for i := 0; i < want.NumberPoints(); i++ {
		wp, err := want.PointRecord(i)
		require.NoError(t, err)
		gp, err := got.PointRecord(i)
		require.NoError(t, err)

		require.InDelta(t, wp.X, gp.X, got.Header.XScaleFactor/2, "point %d x", i)
		require.InDelta(t, wp.Y, gp.Y, got.Header.YScaleFactor/2, "point %d y", i)
		require.InDelta(t, wp.Z, gp.Z, got.Header.ZScaleFactor/2, "point %d z", i)
		require.Equal(t, wp.Intensity, gp.Intensity, "point %d intensity", i)
		require.Equal(t, wp.BitField, gp.BitField, "point %d bit field", i)
		require.Equal(t, wp.ClassBitField, gp.ClassBitField, "point %d class", i)
		require.Equal(t, wp.ScanAngle, gp.ScanAngle, "point %d scan angle", i)
		require.Equal(t, wp.UserData, gp.UserData, "point %d user data", i)
		require.Equal(t, wp.PointSourceID, gp.PointSourceID, "point %d source id", i)

		if len(want.gpsData) > 0 {
			w, err := want.GpsTime(i)
			require.NoError(t, err)
			g, err := got.GpsTime(i)
			require.NoError(t, err)
			if gpsExact {
				require.Equal(t, w, g, "point %d gps time", i)
			} else {
				require.InDelta(t, w, g, 1e-6, "point %d gps time", i)
			}
		}
		if len(want.rgbData) > 0 {
			w, err := want.Rgb(i)
			require.NoError(t, err)
			g, err := got.Rgb(i)
			require.NoError(t, err)
			w.NIR = 0 // formats 0-3 and the zlidar field set drop NIR
			require.Equal(t, w, g, "point %d rgb", i)
		}
	}
}

func TestLasFile_PlainRoundTrip(t *testing.T) {
	for _, pf := range []byte{0, 1, 2, 3} {
		t.Run(fmt.Sprintf("Format%d", pf), func(t *testing.T) {
			fileName := filepath.Join(t.TempDir(), "tile.las")

			src := newPopulatedFile(t, fileName, pf, 150)
			require.NoError(t, src.Write())

			got, err := NewLasFile(fileName, "r")
			require.NoError(t, err)

			require.Equal(t, pf, got.Header.PointFormatID)
			require.Equal(t, byte(1), got.Header.VersionMajor)
			require.Equal(t, byte(3), got.Header.VersionMinor)
			require.Equal(t, uint16(235), got.Header.HeaderSize)
			require.Zero(t, got.Header.OffsetToPoints%4)
			require.Equal(t, uint64(150), got.Header.NumberPoints())

			counts := got.Header.PointsByReturn()
			require.Equal(t, uint64(75), counts[0])
			require.Equal(t, uint64(75), counts[1])

			requirePointsEqual(t, src, got, true)
		})
	}
}

func TestLasFile_PlainRoundTrip_BoundingBox(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tile.las")

	src := newPopulatedFile(t, fileName, 1, 40)
	// Stale caller-provided bounds must be recomputed at write time.
	src.Header.MinX, src.Header.MaxX = -1e9, 1e9
	require.NoError(t, src.Write())

	got, err := NewLasFile(fileName, "r")
	require.NoError(t, err)

	require.InDelta(t, 500.0, got.Header.MinX, 1e-9)
	require.InDelta(t, 500.0+39*0.005, got.Header.MaxX, 1e-9)
	require.InDelta(t, 95.25, got.Header.MinZ, 1e-9)

	ext := got.Extent()
	require.True(t, ext.Contains(500.0, -42.0, 95.25))
}

func TestLasFile_PlainWrite_DowngradesFormat(t *testing.T) {
	tests := []struct {
		source byte
		target byte
	}{
		{4, 1}, {5, 3}, {6, 1}, {7, 3}, {8, 3}, {9, 1}, {10, 3},
	}

	for _, tt := range tests {
		fileName := filepath.Join(t.TempDir(), "tile.las")

		src := newPopulatedFile(t, fileName, tt.source, 20)
		require.NoError(t, src.Write())
		require.NotEmpty(t, src.Warnings())

		got, err := NewLasFile(fileName, "r")
		require.NoError(t, err)
		require.Equal(t, tt.target, got.Header.PointFormatID, "source format %d", tt.source)

		requirePointsEqual(t, src, got, true)
	}
}

func TestLasFile_ZlidarRoundTrip(t *testing.T) {
	for _, pf := range []byte{0, 1, 2, 3, 6, 7, 8} {
		fileName := filepath.Join(t.TempDir(), "tile.zlidar")

		src := newPopulatedFile(t, fileName, pf, 150)
		require.NoError(t, src.Write())

		got, err := NewLasFile(fileName, "r")
		require.NoError(t, err)

		require.Equal(t, FileSignatureZlidar, got.Header.FileSignature)
		require.Equal(t, pf, got.Header.PointFormatID, "format %d", pf)
		require.Equal(t, uint64(150), got.Header.NumberPoints())

		requirePointsEqual(t, src, got, false)
	}
}

func TestLasFile_ZlidarRoundTrip_MultipleBlocks(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tile.zlidar")

	src := newPopulatedFile(t, fileName, 1, 0)
	src.blockSize = 64 // force several blocks
	points := newPopulatedFile(t, "unused.las", 1, 300)
	for i := 0; i < points.NumberPoints(); i++ {
		p, err := points.LasPoint(i)
		require.NoError(t, err)
		require.NoError(t, src.AddLasPoint(p))
	}
	require.NoError(t, src.Write())

	got, err := NewLasFile(fileName, "r")
	require.NoError(t, err)
	require.Equal(t, 300, got.NumberPoints())
	requirePointsEqual(t, points, got, false)
}

func TestLasFile_ZlidarWrite_DropsWaveformWithWarning(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tile.zlidar")

	src := newPopulatedFile(t, fileName, 4, 30)
	require.NoError(t, src.Write())
	require.NotEmpty(t, src.Warnings())

	got, err := NewLasFile(fileName, "r")
	require.NoError(t, err)
	// The format tag survives; waveform packets come back empty.
	require.Equal(t, byte(4), got.Header.PointFormatID)
	p, err := got.LasPoint(0)
	require.NoError(t, err)
	wave, err := p.Wave()
	require.NoError(t, err)
	require.Equal(t, WavePacket{}, wave)

	requirePointsEqual(t, src, got, false)
}

func TestLasFile_HeaderOnlyMode(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tile.las")

	src := newPopulatedFile(t, fileName, 1, 50)
	require.NoError(t, src.Close()) // Close flushes an unwritten file

	got, err := NewLasFile(fileName, "rh")
	require.NoError(t, err)
	require.Equal(t, uint64(50), got.Header.NumberPoints())
	require.Equal(t, 0, got.NumberPoints())
}

func TestLasFile_ZipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lasName := filepath.Join(dir, "tile.las")

	src := newPopulatedFile(t, lasName, 3, 80)
	require.NoError(t, src.Write())

	lasBytes, err := os.ReadFile(lasName)
	require.NoError(t, err)

	zipName := filepath.Join(dir, "tile.zip")
	zf, err := os.Create(zipName)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	entry, err := zw.Create("tile.las")
	require.NoError(t, err)
	_, err = entry.Write(lasBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	got, err := NewLasFile(zipName, "r")
	require.NoError(t, err)
	require.Equal(t, 80, got.NumberPoints())
	requirePointsEqual(t, src, got, true)
}

func TestLasFile_ZipRejectsNonLasEntry(t *testing.T) {
	zipName := filepath.Join(t.TempDir(), "tile.zip")
	zf, err := os.Create(zipName)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	entry, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("not a point cloud"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	_, err = NewLasFile(zipName, "r")
	require.Error(t, err)
}

func TestRawCoord(t *testing.T) {
	require.Equal(t, int32(-500000), rawCoord(500.0, 0.001, 1000.0))
	require.Equal(t, int32(500000), rawCoord(1500.0, 0.001, 1000.0))
	require.Equal(t, int32(0), rawCoord(1000.0, 0.001, 1000.0))

	// The decode direction of the same transform.
	require.InDelta(t, 500.0, float64(-500000)*0.001+1000.0, 1e-12)
}

func TestClampScanAngle(t *testing.T) {
	require.Equal(t, int8(90), clampScanAngle(90))
	require.Equal(t, int8(127), clampScanAngle(30000))
	require.Equal(t, int8(-128), clampScanAngle(-30000))
}
