package las

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/golidar/errs"
)

func TestNewLasFile_InvalidMode(t *testing.T) {
	_, err := NewLasFile("x.las", "a")
	require.ErrorIs(t, err, errs.ErrInvalidFileMode)

	_, err = NewLasFile("x.las", "")
	require.ErrorIs(t, err, errs.ErrInvalidFileMode)
}

func TestNewLasFile_OptionValidation(t *testing.T) {
	_, err := NewLasFile("x.las", "w", WithLogger(nil))
	require.Error(t, err)

	_, err = NewLasFile("x.las", "w", WithBlockSize(0))
	require.Error(t, err)

	_, err = NewLasFile("x.las", "w", WithBlockSize(100001))
	require.Error(t, err)

	lf, err := NewLasFile("x.las", "w",
		WithLogger(slog.Default()), WithBlockSize(1000), WithCompressionLevel(9))
	require.NoError(t, err)
	require.Equal(t, 1000, lf.blockSize)
	require.Equal(t, 9, lf.compressionLevel)
}

func TestAddHeader_Guards(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)

	require.ErrorIs(t, lf.AddHeader(Header{PointFormatID: 11}), errs.ErrUnsupportedPointFormat)

	require.ErrorIs(t, lf.AddVLR(VLR{}), errs.ErrNoHeader)
	p, err := NewLidarPointRecord(1, PointRecord0{})
	require.NoError(t, err)
	require.ErrorIs(t, lf.AddLasPoint(p), errs.ErrNoHeader)
}

func TestAddHeader_ResetsDerivedCounts(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)

	require.NoError(t, lf.AddHeader(Header{
		PointFormatID:      1,
		LegacyNumberPoints: 999,
		NumberPoints64:     999,
		NumberOfVLRs:       5,
	}))
	require.Equal(t, uint32(0), lf.Header.LegacyNumberPoints)
	require.Equal(t, uint64(0), lf.Header.NumberPoints64)
	require.Equal(t, uint32(0), lf.Header.NumberOfVLRs)
}

func TestAddHeader_VendorPaddingNeverWrittenBack(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)

	require.NoError(t, lf.AddHeader(Header{PointFormatID: 1, PointRecordLength: 33}))
	require.Equal(t, recordShape{intensity: true, userData: true}, lf.shape)
}

func TestAddLasPoint_FormatMismatch(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)
	require.NoError(t, lf.AddHeader(Header{PointFormatID: 1}))

	p, err := NewLidarPointRecord(2, PointRecord0{})
	require.NoError(t, err)
	require.ErrorIs(t, lf.AddLasPoint(p), errs.ErrFormatMismatch)
}

func TestAddLasPoint_ReadModeRejected(t *testing.T) {
	lf := &LasFile{fileMode: "r"}
	p, err := NewLidarPointRecord(0, PointRecord0{})
	require.NoError(t, err)
	require.ErrorIs(t, lf.AddLasPoint(p), errs.ErrNotWriteMode)
}

func newPopulatedFile(t *testing.T, fileName string, pointFormat byte, n int) *LasFile {
	t.Helper()

	lf, err := NewLasFile(fileName, "w")
	require.NoError(t, err)
	require.NoError(t, lf.AddHeader(Header{
		PointFormatID: pointFormat,
		XScaleFactor:  0.001, YScaleFactor: 0.001, ZScaleFactor: 0.001,
		XOffset: 1000.0, YOffset: 2000.0, ZOffset: 0,
	}))

	for i := 0; i < n; i++ {
		ret := byte(i%2 + 1)
		rec := PointRecord0{
			X:             500.0 + float64(i)*0.005,
			Y:             -42.0 + float64(i)*0.003,
			Z:             95.25 + float64(i%7)*0.04,
			Intensity:     uint16(i * 11),
			BitField:      NewPointBitField(ret, 2, i%2 == 0, false),
			ClassBitField: NewClassBitField(byte(i%19), false, false, false),
			ScanAngle:     int16(i%91 - 45),
			UserData:      byte(i % 256),
			PointSourceID: uint16(7000 + i%3),
		}
		p, err := NewLidarPointRecord(pointFormat, rec)
		require.NoError(t, err)
		if FormatHasGpsTime(pointFormat) {
			require.NoError(t, p.SetGpsTime(211575.0+float64(i)*0.0000046))
		}
		if FormatHasRgb(pointFormat) {
			require.NoError(t, p.SetRgb(RgbData{
				Red:   uint16(i * 17),
				Green: uint16(i * 29),
				Blue:  uint16(i * 43),
			}))
		}
		if FormatHasWave(pointFormat) {
			require.NoError(t, p.SetWave(WavePacket{DescriptorIndex: 1, Size: 64}))
		}
		require.NoError(t, lf.AddLasPoint(p))
	}

	return lf
}

func TestSetClassification_PreservesFlags(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)
	require.NoError(t, lf.AddHeader(Header{PointFormatID: 0}))

	p, err := NewLidarPointRecord(0, PointRecord0{
		ClassBitField: NewClassBitField(1, true, false, true),
	})
	require.NoError(t, err)
	require.NoError(t, lf.AddLasPoint(p))

	require.NoError(t, lf.SetClassification(0, 2))
	got, err := lf.PointRecord(0)
	require.NoError(t, err)
	require.Equal(t, byte(2), got.ClassBitField.ClassValue())
	require.True(t, got.ClassBitField.Synthetic())
	require.False(t, got.ClassBitField.Keypoint())
	require.True(t, got.ClassBitField.Withheld())

	require.ErrorIs(t, lf.SetClassification(1, 2), errs.ErrPointOutOfRange)
}

func TestSetZ(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)
	require.NoError(t, lf.AddHeader(Header{PointFormatID: 0}))

	p, err := NewLidarPointRecord(0, PointRecord0{Z: 10})
	require.NoError(t, err)
	require.NoError(t, lf.AddLasPoint(p))

	require.NoError(t, lf.SetZ(0, 12.5))
	got, err := lf.PointRecord(0)
	require.NoError(t, err)
	require.Equal(t, 12.5, got.Z)

	require.ErrorIs(t, lf.SetZ(-1, 0), errs.ErrPointOutOfRange)
}

func TestRgbAndGpsTime_AbsentOnFormat0(t *testing.T) {
	lf, err := NewLasFile("x.las", "w")
	require.NoError(t, err)
	require.NoError(t, lf.AddHeader(Header{PointFormatID: 0}))

	p, err := NewLidarPointRecord(0, PointRecord0{})
	require.NoError(t, err)
	require.NoError(t, lf.AddLasPoint(p))

	_, err = lf.Rgb(0)
	require.ErrorIs(t, err, errs.ErrNoRgb)
	_, err = lf.GpsTime(0)
	require.ErrorIs(t, err, errs.ErrNoGpsTime)
}

func TestLasPoint_RebuildsUnion(t *testing.T) {
	lf := newPopulatedFile(t, "x.las", 3, 5)

	p, err := lf.LasPoint(2)
	require.NoError(t, err)
	require.Equal(t, byte(3), p.Format())

	gps, err := p.GpsTime()
	require.NoError(t, err)
	require.InDelta(t, 211575.0+2*0.0000046, gps, 1e-9)

	rgb, err := p.Rgb()
	require.NoError(t, err)
	require.Equal(t, uint16(2*17), rgb.Red)

	_, err = lf.LasPoint(5)
	require.ErrorIs(t, err, errs.ErrPointOutOfRange)
}

func TestWrite_Guards(t *testing.T) {
	lf, err := NewLasFile(filepath.Join(t.TempDir(), "x.las"), "w")
	require.NoError(t, err)
	require.ErrorIs(t, lf.Write(), errs.ErrNoHeader)

	require.NoError(t, lf.AddHeader(Header{PointFormatID: 0}))
	// Zero scale factors cannot be inverted.
	require.Error(t, lf.Write())
}

func TestExtent_UnionAndContains(t *testing.T) {
	a := Extent{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10, MinZ: 0, MaxZ: 5}
	b := Extent{MinX: -5, MaxX: 8, MinY: 2, MaxY: 20, MinZ: 1, MaxZ: 9}

	u := a.Union(b)
	require.Equal(t, Extent{MinX: -5, MaxX: 10, MinY: 0, MaxY: 20, MinZ: 0, MaxZ: 9}, u)

	require.True(t, u.Contains(0, 0, 0))
	require.True(t, u.Contains(-5, 20, 9))
	require.False(t, u.Contains(11, 0, 0))
	require.False(t, u.Contains(0, 0, 9.1))
}
