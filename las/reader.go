package las

import (
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

const (
	// largeFileThreshold is the size above which files are read in fixed
	// chunks instead of one read call; single reads of multi-GB tiles run
	// into OS read-size limits.
	largeFileThreshold = 500 << 20
	readChunkSize      = 256 << 20

	// zipMethodBzip2 is the zip method id for bzip2 entries, which
	// archive/zip does not register by default.
	zipMethodBzip2 = 12
)

// read populates the model from disk, dispatching on the filename suffix.
func (las *LasFile) read() error {
	switch format.DetectContainer(las.fileName) {
	case format.ContainerLas:
		data, err := readFileChunks(las.fileName)
		if err != nil {
			return err
		}

		return las.parseLas(data)
	case format.ContainerZip:
		data, err := readZipEntry(las.fileName)
		if err != nil {
			return err
		}

		return las.parseLas(data)
	case format.ContainerZlidar:
		data, err := readFileChunks(las.fileName)
		if err != nil {
			return err
		}

		return las.parseZlidar(data)
	default:
		return fmt.Errorf("unrecognized file suffix on %q", las.fileName)
	}
}

// readFileChunks reads a whole file into memory. Files above
// largeFileThreshold are read in readChunkSize pieces.
func readFileChunks(fileName string) ([]byte, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := info.Size()
	buf := make([]byte, size)
	if size <= largeFileThreshold {
		_, err = io.ReadFull(f, buf)
		return buf, err
	}

	for off := int64(0); off < size; off += readChunkSize {
		end := off + readChunkSize
		if end > size {
			end = size
		}
		if _, err := io.ReadFull(f, buf[off:end]); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// readZipEntry extracts the single .las entry of a zip archive. Only the
// first entry is considered; it must carry a .las name and be stored,
// deflated, or bzip2-compressed.
func readZipEntry(fileName string) ([]byte, error) {
	zr, err := zip.OpenReader(fileName)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return nil, fmt.Errorf("%q is empty: %w", fileName, errs.ErrZipEntryNotLas)
	}

	entry := zr.File[0]
	if !strings.HasSuffix(strings.ToLower(entry.Name), ".las") {
		return nil, fmt.Errorf("first entry %q: %w", entry.Name, errs.ErrZipEntryNotLas)
	}

	switch entry.Method {
	case zip.Store, zip.Deflate:
	case zipMethodBzip2:
		zr.RegisterDecompressor(zipMethodBzip2, func(r io.Reader) io.ReadCloser {
			return io.NopCloser(bzip2.NewReader(r))
		})
	default:
		return nil, fmt.Errorf("entry %q method %d: %w", entry.Name, entry.Method, errs.ErrUnsupportedZipMethod)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// parseHeaderAndVlrs decodes the header and VLR list shared by the plain and
// zlidar containers.
func (las *LasFile) parseHeaderAndVlrs(data []byte, wantSignature string) error {
	if err := las.Header.Parse(data); err != nil {
		return err
	}
	if las.Header.FileSignature != wantSignature {
		return fmt.Errorf("signature %q, want %q: %w",
			las.Header.FileSignature, wantSignature, errs.ErrInvalidSignature)
	}

	shape, err := inferRecordShape(las.Header.PointFormatID, las.Header.PointRecordLength)
	if err != nil {
		return err
	}
	las.shape = shape
	if shape.skipBytes > 0 {
		las.warnf("record length %d exceeds the format %d maximum; dropping %d trailing bytes per point",
			las.Header.PointRecordLength, las.Header.PointFormatID, shape.skipBytes)
	}

	r := endian.NewReader(data, endian.GetLittleEndianEngine())
	if err := r.SetPos(int(las.Header.HeaderSize)); err != nil {
		return err
	}

	las.VlrData = make([]VLR, 0, las.Header.NumberOfVLRs)
	for i := uint32(0); i < las.Header.NumberOfVLRs; i++ {
		var vlr VLR
		if err := vlr.decode(r); err != nil {
			return fmt.Errorf("VLR %d: %w", i, err)
		}
		if err := las.absorbVLR(&vlr); err != nil {
			return fmt.Errorf("VLR %d: %w", i, err)
		}
		las.VlrData = append(las.VlrData, vlr)
	}

	return nil
}

// parseLas decodes a complete plain-LAS buffer into the model.
func (las *LasFile) parseLas(data []byte) error {
	if err := las.parseHeaderAndVlrs(data, FileSignatureLas); err != nil {
		return err
	}
	if las.fileMode == "rh" {
		return nil
	}

	numPoints := int(las.Header.NumberPoints())
	if numPoints <= 1 {
		las.warnf("file holds %d points; downstream consumers may require at least 2", numPoints)
	}

	las.allocatePointArrays(numPoints)

	r := endian.NewReader(data, endian.GetLittleEndianEngine())
	if err := r.SetPos(int(las.Header.OffsetToPoints)); err != nil {
		return err
	}

	for i := 0; i < numPoints; i++ {
		if err := las.decodePoint(r); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}

	return las.checkParallel()
}

func (las *LasFile) allocatePointArrays(numPoints int) {
	pf := las.Header.PointFormatID
	las.pointData = make([]PointRecord0, 0, numPoints)
	if FormatHasGpsTime(pf) {
		las.gpsData = make([]float64, 0, numPoints)
	}
	if FormatHasRgb(pf) {
		las.rgbData = make([]RgbData, 0, numPoints)
	}
	if FormatHasWave(pf) {
		las.waveData = make([]WavePacket, 0, numPoints)
	}
}

// decodePoint decodes one on-disk point record at the cursor and appends it
// to the parallel arrays.
func (las *LasFile) decodePoint(r *endian.Reader) error {
	pf := las.Header.PointFormatID

	var p PointRecord0
	rawX, err := r.Int32()
	if err != nil {
		return err
	}
	rawY, err := r.Int32()
	if err != nil {
		return err
	}
	rawZ, err := r.Int32()
	if err != nil {
		return err
	}
	p.X = float64(rawX)*las.Header.XScaleFactor + las.Header.XOffset
	p.Y = float64(rawY)*las.Header.YScaleFactor + las.Header.YOffset
	p.Z = float64(rawZ)*las.Header.ZScaleFactor + las.Header.ZOffset

	if las.shape.intensity {
		if p.Intensity, err = r.Uint16(); err != nil {
			return err
		}
	}

	if formatIsExtended(pf) {
		if err := las.decodeExtendedFlags(r, &p); err != nil {
			return err
		}
	} else {
		bitField, err := r.Uint8()
		if err != nil {
			return err
		}
		p.BitField = PointBitField(bitField)
		classField, err := r.Uint8()
		if err != nil {
			return err
		}
		p.ClassBitField = ClassBitField(classField)
		angle, err := r.Int8()
		if err != nil {
			return err
		}
		p.ScanAngle = int16(angle)
		if las.shape.userData {
			if p.UserData, err = r.Uint8(); err != nil {
				return err
			}
		}
	}

	if p.PointSourceID, err = r.Uint16(); err != nil {
		return err
	}

	las.pointData = append(las.pointData, p)

	if FormatHasGpsTime(pf) {
		gps, err := r.Float64()
		if err != nil {
			return err
		}
		las.gpsData = append(las.gpsData, gps)
	}
	if FormatHasRgb(pf) {
		if err := las.decodeRgb(r); err != nil {
			return err
		}
	}
	if FormatHasWave(pf) {
		if err := las.decodeWave(r); err != nil {
			return err
		}
	}

	return r.Skip(las.shape.skipBytes)
}

// decodeExtendedFlags decodes the formats 6-10 core tail between intensity
// and point source id, folding the 4-bit return fields and the separate flag
// nibble into the packed 8-bit model (return values clamp at 7, class codes
// mask to 5 bits).
func (las *LasFile) decodeExtendedFlags(r *endian.Reader, p *PointRecord0) error {
	returnByte, err := r.Uint8()
	if err != nil {
		return err
	}
	flagsByte, err := r.Uint8()
	if err != nil {
		return err
	}
	class, err := r.Uint8()
	if err != nil {
		return err
	}

	ret := returnByte & 0x0f
	if ret > 7 {
		ret = 7
	}
	num := returnByte >> 4
	if num > 7 {
		num = 7
	}
	p.BitField = NewPointBitField(ret, num, flagsByte&(1<<6) != 0, flagsByte&(1<<7) != 0)
	p.ClassBitField = NewClassBitField(class, flagsByte&1 != 0, flagsByte&2 != 0, flagsByte&4 != 0)

	if las.shape.userData {
		if p.UserData, err = r.Uint8(); err != nil {
			return err
		}
	}
	if p.ScanAngle, err = r.Int16(); err != nil {
		return err
	}

	return nil
}

func (las *LasFile) decodeRgb(r *endian.Reader) error {
	var rgb RgbData
	var err error
	if rgb.Red, err = r.Uint16(); err != nil {
		return err
	}
	if rgb.Green, err = r.Uint16(); err != nil {
		return err
	}
	if rgb.Blue, err = r.Uint16(); err != nil {
		return err
	}
	if FormatHasNir(las.Header.PointFormatID) {
		if rgb.NIR, err = r.Uint16(); err != nil {
			return err
		}
	}
	las.rgbData = append(las.rgbData, rgb)

	return nil
}

func (las *LasFile) decodeWave(r *endian.Reader) error {
	var wave WavePacket
	var err error
	if wave.DescriptorIndex, err = r.Uint8(); err != nil {
		return err
	}
	if wave.Offset, err = r.Uint64(); err != nil {
		return err
	}
	if wave.Size, err = r.Uint32(); err != nil {
		return err
	}
	if wave.ReturnPoint, err = r.Float32(); err != nil {
		return err
	}
	if wave.Xt, err = r.Float32(); err != nil {
		return err
	}
	if wave.Yt, err = r.Float32(); err != nil {
		return err
	}
	if wave.Zt, err = r.Float32(); err != nil {
		return err
	}
	las.waveData = append(las.waveData, wave)

	return nil
}
