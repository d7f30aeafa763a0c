package las

import (
	"fmt"
	"math"
	"os"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

// formatDowngrades remaps the point formats the plain writer does not
// support onto the nearest of formats 0-3, discarding waveform packets and
// the NIR channel. Lossy and warned, never silent.
var formatDowngrades = map[byte]byte{4: 1, 5: 3, 6: 1, 7: 3, 8: 3, 9: 1, 10: 3}

// Write serializes the accumulated model to the file's path. The container
// is selected by the filename suffix, matching the read side.
func (las *LasFile) Write() error {
	if las.fileMode != "w" {
		return errs.ErrNotWriteMode
	}
	if !las.headerIsSet {
		return errs.ErrNoHeader
	}
	if las.Header.XScaleFactor == 0 || las.Header.YScaleFactor == 0 || las.Header.ZScaleFactor == 0 {
		return fmt.Errorf("header scale factors must be non-zero")
	}
	if err := las.checkParallel(); err != nil {
		return err
	}

	if n := len(las.pointData); n <= 1 {
		las.warnf("writing %d points; downstream consumers may require at least 2", n)
	}

	var err error
	switch format.DetectContainer(las.fileName) {
	case format.ContainerLas:
		err = las.writeLas()
	case format.ContainerZlidar:
		err = las.writeZlidar()
	default:
		return fmt.Errorf("cannot write container type for %q", las.fileName)
	}
	if err != nil {
		return err
	}

	las.written = true

	return nil
}

// writeLas serializes the model as plain LAS. Only point formats 0-3 are
// supported; other formats are downgraded via formatDowngrades.
func (las *LasFile) writeLas() error {
	pf := las.Header.PointFormatID
	if target, ok := formatDowngrades[pf]; ok {
		las.warnf("point format %d is not supported for writing; downgrading to %d (waveform/NIR data is discarded)",
			pf, target)
		pf = target
	}

	recordLength := recordLengthFor(pf, las.shape)
	hdr := las.deriveHeader(FileSignatureLas, pf, recordLength)

	w := endian.NewWriter(endian.GetLittleEndianEngine(),
		int(hdr.OffsetToPoints)+len(las.pointData)*int(recordLength))

	w.PutBytes(hdr.Bytes())
	for i := range las.VlrData {
		las.VlrData[i].encode(w)
	}
	w.Align(4)

	for i := range las.pointData {
		las.encodePoint(w, &hdr, pf, i)
	}

	return os.WriteFile(las.fileName, w.Bytes(), 0o644)
}

// deriveHeader builds the header that actually goes to disk: the bounding
// box, point count, and per-return counts are recomputed from the
// accumulated points, and the extended 1.4 fields are cleared since the
// writer always emits the 1.3 layout.
func (las *LasFile) deriveHeader(signature string, pointFormat byte, recordLength uint16) Header {
	hdr := las.Header
	hdr.FileSignature = signature
	hdr.PointFormatID = pointFormat
	hdr.PointRecordLength = recordLength
	hdr.VersionMajor, hdr.VersionMinor = 1, 3
	hdr.HeaderSize = writtenHeaderSize
	hdr.NumberOfVLRs = uint32(len(las.VlrData))
	hdr.NumberPoints64 = 0
	hdr.PointsByReturn64 = [15]uint64{}
	hdr.ExtendedVlrOffset = 0
	hdr.NumberOfExtendedVlrs = 0

	hdr.LegacyNumberPoints = uint32(len(las.pointData))
	hdr.LegacyPointsByReturn = [5]uint32{}
	hdr.MinX, hdr.MinY, hdr.MinZ = math.MaxFloat64, math.MaxFloat64, math.MaxFloat64
	hdr.MaxX, hdr.MaxY, hdr.MaxZ = -math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64
	for i := range las.pointData {
		p := &las.pointData[i]
		hdr.MinX = math.Min(hdr.MinX, p.X)
		hdr.MaxX = math.Max(hdr.MaxX, p.X)
		hdr.MinY = math.Min(hdr.MinY, p.Y)
		hdr.MaxY = math.Max(hdr.MaxY, p.Y)
		hdr.MinZ = math.Min(hdr.MinZ, p.Z)
		hdr.MaxZ = math.Max(hdr.MaxZ, p.Z)

		if ret := p.BitField.ReturnNumber(); ret <= 5 {
			hdr.LegacyPointsByReturn[ret-1]++
		}
	}
	if len(las.pointData) == 0 {
		hdr.MinX, hdr.MinY, hdr.MinZ = 0, 0, 0
		hdr.MaxX, hdr.MaxY, hdr.MaxZ = 0, 0, 0
	}

	vlrBytes := 0
	for i := range las.VlrData {
		vlrBytes += las.VlrData[i].encodedSize()
	}
	offset := writtenHeaderSize + vlrBytes
	if rem := offset % 4; rem != 0 {
		offset += 4 - rem
	}
	hdr.OffsetToPoints = uint32(offset)

	return hdr
}

// encodePoint serializes point index i in the on-disk layout of formats 0-3.
func (las *LasFile) encodePoint(w *endian.Writer, hdr *Header, pointFormat byte, i int) {
	p := &las.pointData[i]

	w.PutInt32(rawCoord(p.X, hdr.XScaleFactor, hdr.XOffset))
	w.PutInt32(rawCoord(p.Y, hdr.YScaleFactor, hdr.YOffset))
	w.PutInt32(rawCoord(p.Z, hdr.ZScaleFactor, hdr.ZOffset))

	if las.shape.intensity {
		w.PutUint16(p.Intensity)
	}
	w.PutUint8(byte(p.BitField))
	w.PutUint8(byte(p.ClassBitField))
	w.PutInt8(clampScanAngle(p.ScanAngle))
	if las.shape.userData {
		w.PutUint8(p.UserData)
	}
	w.PutUint16(p.PointSourceID)

	if FormatHasGpsTime(pointFormat) {
		w.PutFloat64(las.gpsData[i])
	}
	if FormatHasRgb(pointFormat) {
		rgb := las.rgbData[i]
		w.PutUint16(rgb.Red)
		w.PutUint16(rgb.Green)
		w.PutUint16(rgb.Blue)
	}
}

// rawCoord applies the inverse coordinate transform: the real-world value
// back to the stored scaled integer.
func rawCoord(real, scale, offset float64) int32 {
	return int32(math.Round((real - offset) / scale))
}

// clampScanAngle narrows the model's 16-bit scan angle to the 8-bit storage
// of formats 0-5.
func clampScanAngle(angle int16) int8 {
	if angle > math.MaxInt8 {
		return math.MaxInt8
	}
	if angle < math.MinInt8 {
		return math.MinInt8
	}

	return int8(angle)
}
