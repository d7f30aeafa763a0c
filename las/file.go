package las

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/golidar/compress"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/internal/options"
	"github.com/arloliu/golidar/zlb"
)

// FileOption represents a functional option for configuring a LasFile.
type FileOption = options.Option[*LasFile]

// WithLogger sets the logger used for warning-level notices. The default is
// slog.Default().
func WithLogger(logger *slog.Logger) FileOption {
	return options.New(func(las *LasFile) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		las.logger = logger

		return nil
	})
}

// WithCompressionLevel sets the deflate level for the zlidar writer.
func WithCompressionLevel(level int) FileOption {
	return options.NoError(func(las *LasFile) {
		las.compressionLevel = level
	})
}

// WithBlockSize sets the zlidar writer's block partition size, bounded at
// zlb.MaxBlockPoints.
func WithBlockSize(size int) FileOption {
	return options.New(func(las *LasFile) error {
		if size <= 0 || size > zlb.MaxBlockPoints {
			return fmt.Errorf("block size %d outside (0, %d]", size, zlb.MaxBlockPoints)
		}
		las.blockSize = size

		return nil
	})
}

// LasFile is the in-memory model of one LAS or zlidar file and the facade
// every external tool consumes.
//
// Point attributes are stored as parallel arrays: pointData always, and
// gpsData, rgbData, waveData only when the active point format carries them.
// Index i across all non-empty arrays refers to the same physical point;
// the invariant is re-checked after every mutation.
//
// A LasFile is exclusively owned by one file-processing task; the codec
// takes no locks.
type LasFile struct {
	fileName string
	fileMode string

	Header  Header
	VlrData []VLR

	geokeys GeoKeys
	wktData string
	wkt     string
	wktDone bool

	pointData []PointRecord0
	gpsData   []float64
	rgbData   []RgbData
	waveData  []WavePacket

	shape       recordShape
	headerIsSet bool
	written     bool

	logger           *slog.Logger
	warnings         []string
	blockSize        int
	compressionLevel int
}

// NewLasFile opens fileName in one of three modes: "r" reads the whole file
// into memory, "rh" reads the header and VLRs only, and "w" creates an empty
// file model for writing (AddHeader must be called before anything else).
//
// The container is selected purely by the filename suffix: .las, .zip (a
// single .las entry), or .zlidar.
func NewLasFile(fileName, fileMode string, opts ...FileOption) (*LasFile, error) {
	if fileMode != "r" && fileMode != "rh" && fileMode != "w" {
		return nil, fmt.Errorf("mode %q: %w", fileMode, errs.ErrInvalidFileMode)
	}

	las := &LasFile{
		fileName:         fileName,
		fileMode:         fileMode,
		logger:           slog.Default(),
		blockSize:        zlb.MaxBlockPoints,
		compressionLevel: compress.DefaultCompressionLevel,
	}
	if err := options.Apply(las, opts...); err != nil {
		return nil, err
	}

	if fileMode == "r" || fileMode == "rh" {
		if err := las.read(); err != nil {
			return nil, err
		}
	}

	return las, nil
}

// AddHeader installs the header of a file being written. Scale, offset,
// point format, and record length come from the caller; the bounding box,
// point counts, and per-return counts are derived from the accumulated
// points at write time, never trusted from caller input.
func (las *LasFile) AddHeader(header Header) error {
	if las.fileMode != "w" {
		return errs.ErrNotWriteMode
	}
	if header.PointFormatID > 10 {
		return fmt.Errorf("format %d: %w", header.PointFormatID, errs.ErrUnsupportedPointFormat)
	}

	las.Header = header
	las.Header.NumberOfVLRs = 0
	las.Header.LegacyNumberPoints = 0
	las.Header.LegacyPointsByReturn = [5]uint32{}
	las.Header.NumberPoints64 = 0
	las.Header.PointsByReturn64 = [15]uint64{}

	las.shape = recordShape{intensity: true, userData: true}
	if header.PointRecordLength != 0 {
		shape, err := inferRecordShape(header.PointFormatID, header.PointRecordLength)
		if err != nil {
			return err
		}
		shape.skipBytes = 0 // vendor padding is never written back
		las.shape = shape
	}

	las.headerIsSet = true

	return nil
}

// AddVLR appends a variable length record. The header must be set first.
func (las *LasFile) AddVLR(vlr VLR) error {
	if las.fileMode != "w" {
		return errs.ErrNotWriteMode
	}
	if !las.headerIsSet {
		return errs.ErrNoHeader
	}

	if err := las.absorbVLR(&vlr); err != nil {
		return err
	}
	las.VlrData = append(las.VlrData, vlr)
	las.Header.NumberOfVLRs = uint32(len(las.VlrData))

	return nil
}

// AddLasPoint appends one point record. The record's format must match the
// header's point format; mixing formats is a programming error, not a
// coercion point.
func (las *LasFile) AddLasPoint(point LidarPointRecord) error {
	if las.fileMode != "w" {
		return errs.ErrNotWriteMode
	}
	if !las.headerIsSet {
		return errs.ErrNoHeader
	}
	if point.Format() != las.Header.PointFormatID {
		return fmt.Errorf("record format %d, file format %d: %w",
			point.Format(), las.Header.PointFormatID, errs.ErrFormatMismatch)
	}

	las.pointData = append(las.pointData, point.Point)
	if FormatHasGpsTime(las.Header.PointFormatID) {
		las.gpsData = append(las.gpsData, point.gpsTime)
	}
	if FormatHasRgb(las.Header.PointFormatID) {
		las.rgbData = append(las.rgbData, point.rgb)
	}
	if FormatHasWave(las.Header.PointFormatID) {
		las.waveData = append(las.waveData, point.wave)
	}

	return las.checkParallel()
}

// AddLasPoints appends a batch of point records.
func (las *LasFile) AddLasPoints(points []LidarPointRecord) error {
	for i := range points {
		if err := las.AddLasPoint(points[i]); err != nil {
			return err
		}
	}

	return nil
}

// NumberPoints returns the number of points in the in-memory model.
func (las *LasFile) NumberPoints() int {
	return len(las.pointData)
}

// LasPoint returns the complete tagged record for point index.
func (las *LasFile) LasPoint(index int) (LidarPointRecord, error) {
	if index < 0 || index >= len(las.pointData) {
		return LidarPointRecord{}, fmt.Errorf("index %d of %d points: %w",
			index, len(las.pointData), errs.ErrPointOutOfRange)
	}

	point := LidarPointRecord{format: las.Header.PointFormatID, Point: las.pointData[index]}
	if len(las.gpsData) > 0 {
		point.gpsTime = las.gpsData[index]
	}
	if len(las.rgbData) > 0 {
		point.rgb = las.rgbData[index]
	}
	if len(las.waveData) > 0 {
		point.wave = las.waveData[index]
	}

	return point, nil
}

// PointRecord returns the core scalar record for point index. Analysis tools
// iterating millions of points use this instead of the full union.
func (las *LasFile) PointRecord(index int) (PointRecord0, error) {
	if index < 0 || index >= len(las.pointData) {
		return PointRecord0{}, fmt.Errorf("index %d of %d points: %w",
			index, len(las.pointData), errs.ErrPointOutOfRange)
	}

	return las.pointData[index], nil
}

// SetClassification overwrites the classification code of point index,
// preserving the flag bits.
func (las *LasFile) SetClassification(index int, class byte) error {
	if index < 0 || index >= len(las.pointData) {
		return fmt.Errorf("index %d of %d points: %w", index, len(las.pointData), errs.ErrPointOutOfRange)
	}

	old := las.pointData[index].ClassBitField
	las.pointData[index].ClassBitField = NewClassBitField(class, old.Synthetic(), old.Keypoint(), old.Withheld())

	return las.checkParallel()
}

// SetZ overwrites the elevation of point index.
func (las *LasFile) SetZ(index int, z float64) error {
	if index < 0 || index >= len(las.pointData) {
		return fmt.Errorf("index %d of %d points: %w", index, len(las.pointData), errs.ErrPointOutOfRange)
	}

	las.pointData[index].Z = z

	return las.checkParallel()
}

// Rgb returns the color of point index; fails with errs.ErrNoRgb when the
// file's point format has no color.
func (las *LasFile) Rgb(index int) (RgbData, error) {
	if len(las.rgbData) == 0 {
		return RgbData{}, fmt.Errorf("format %d: %w", las.Header.PointFormatID, errs.ErrNoRgb)
	}
	if index < 0 || index >= len(las.rgbData) {
		return RgbData{}, fmt.Errorf("index %d of %d points: %w", index, len(las.rgbData), errs.ErrPointOutOfRange)
	}

	return las.rgbData[index], nil
}

// GpsTime returns the GPS time of point index; fails with errs.ErrNoGpsTime
// when the file's point format has no GPS time.
func (las *LasFile) GpsTime(index int) (float64, error) {
	if len(las.gpsData) == 0 {
		return 0, fmt.Errorf("format %d: %w", las.Header.PointFormatID, errs.ErrNoGpsTime)
	}
	if index < 0 || index >= len(las.gpsData) {
		return 0, fmt.Errorf("index %d of %d points: %w", index, len(las.gpsData), errs.ErrPointOutOfRange)
	}

	return las.gpsData[index], nil
}

// Extent returns the header's bounding box.
func (las *LasFile) Extent() Extent {
	return Extent{
		MinX: las.Header.MinX, MaxX: las.Header.MaxX,
		MinY: las.Header.MinY, MaxY: las.Header.MaxY,
		MinZ: las.Header.MinZ, MaxZ: las.Header.MaxZ,
	}
}

// Wkt returns the file's CRS as WKT: the WKT VLR when present, otherwise a
// derivation from the GeoKeys. The derivation runs once and is cached.
func (las *LasFile) Wkt() (string, error) {
	if las.wktData != "" {
		return las.wktData, nil
	}
	if las.wktDone {
		if las.wkt == "" {
			return "", errs.ErrNoCrs
		}

		return las.wkt, nil
	}

	wkt, err := las.geokeys.Wkt()
	las.wktDone = true
	if err != nil {
		return "", err
	}
	las.wkt = wkt

	return wkt, nil
}

// Warnings returns the warning notices accumulated so far: lossy format
// downgrades, dropped vendor padding, and degenerate point counts.
func (las *LasFile) Warnings() []string {
	return las.warnings
}

// Close finalizes the file. Write-mode files that were never written are
// flushed; read-mode files need no teardown.
func (las *LasFile) Close() error {
	if las.fileMode == "w" && !las.written {
		return las.Write()
	}

	return nil
}

// checkParallel enforces the parallel-array invariant: every non-empty
// optional array has the same length as the core point array.
func (las *LasFile) checkParallel() error {
	n := len(las.pointData)
	if len(las.gpsData) > 0 && len(las.gpsData) != n {
		return fmt.Errorf("gps array length %d, point array length %d", len(las.gpsData), n)
	}
	if len(las.rgbData) > 0 && len(las.rgbData) != n {
		return fmt.Errorf("rgb array length %d, point array length %d", len(las.rgbData), n)
	}
	if len(las.waveData) > 0 && len(las.waveData) != n {
		return fmt.Errorf("waveform array length %d, point array length %d", len(las.waveData), n)
	}

	return nil
}

// warnf records a warning and surfaces it at warn level on the logger.
func (las *LasFile) warnf(msg string, args ...any) {
	warning := fmt.Sprintf(msg, args...)
	las.warnings = append(las.warnings, warning)
	las.logger.Warn(warning, slog.String("file", las.fileName))
}
