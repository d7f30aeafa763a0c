package las

import (
	"fmt"

	"github.com/arloliu/golidar/errs"
)

// FormatHasGpsTime reports whether a point format carries a GPS time field.
// Only formats 0 and 2 lack it.
func FormatHasGpsTime(pointFormat byte) bool {
	return pointFormat != 0 && pointFormat != 2
}

// FormatHasRgb reports whether a point format carries color data.
func FormatHasRgb(pointFormat byte) bool {
	switch pointFormat {
	case 2, 3, 5, 7, 8, 10:
		return true
	default:
		return false
	}
}

// FormatHasNir reports whether a point format carries a near-infrared channel.
func FormatHasNir(pointFormat byte) bool {
	return pointFormat == 8 || pointFormat == 10
}

// FormatHasWave reports whether a point format carries a waveform packet.
func FormatHasWave(pointFormat byte) bool {
	switch pointFormat {
	case 4, 5, 9, 10:
		return true
	default:
		return false
	}
}

// formatIsExtended reports whether a point format uses the LAS 1.4 extended
// core layout (16-bit scan angle, mandatory GPS time).
func formatIsExtended(pointFormat byte) bool {
	return pointFormat >= 6
}

// LidarPointRecord is the tagged union over the 11 point formats: the core
// record plus the optional attachments the format defines. The zero value is
// unusable; construct records with NewLidarPointRecord, which fixes the
// format tag, and attach optional data through the format-checked setters.
// Attaching or reading data a format does not define fails with
// errs.ErrFormatMismatch rather than coercing.
type LidarPointRecord struct {
	format  byte
	Point   PointRecord0
	gpsTime float64
	rgb     RgbData
	wave    WavePacket
}

// NewLidarPointRecord creates a point record variant for the given format.
func NewLidarPointRecord(pointFormat byte, point PointRecord0) (LidarPointRecord, error) {
	if pointFormat > 10 {
		return LidarPointRecord{}, fmt.Errorf("format %d: %w", pointFormat, errs.ErrUnsupportedPointFormat)
	}

	return LidarPointRecord{format: pointFormat, Point: point}, nil
}

// Format returns the record's point format tag.
func (p *LidarPointRecord) Format() byte {
	return p.format
}

// SetGpsTime attaches a GPS time; fails for formats 0 and 2.
func (p *LidarPointRecord) SetGpsTime(gpsTime float64) error {
	if !FormatHasGpsTime(p.format) {
		return fmt.Errorf("format %d has no GPS time: %w", p.format, errs.ErrFormatMismatch)
	}
	p.gpsTime = gpsTime

	return nil
}

// GpsTime returns the attached GPS time; fails for formats 0 and 2.
func (p *LidarPointRecord) GpsTime() (float64, error) {
	if !FormatHasGpsTime(p.format) {
		return 0, fmt.Errorf("format %d has no GPS time: %w", p.format, errs.ErrFormatMismatch)
	}

	return p.gpsTime, nil
}

// SetRgb attaches a color sample; fails for formats without color.
func (p *LidarPointRecord) SetRgb(rgb RgbData) error {
	if !FormatHasRgb(p.format) {
		return fmt.Errorf("format %d has no RGB data: %w", p.format, errs.ErrFormatMismatch)
	}
	p.rgb = rgb

	return nil
}

// Rgb returns the attached color sample; fails for formats without color.
func (p *LidarPointRecord) Rgb() (RgbData, error) {
	if !FormatHasRgb(p.format) {
		return RgbData{}, fmt.Errorf("format %d has no RGB data: %w", p.format, errs.ErrFormatMismatch)
	}

	return p.rgb, nil
}

// SetWave attaches a waveform packet; fails for formats without waveforms.
func (p *LidarPointRecord) SetWave(wave WavePacket) error {
	if !FormatHasWave(p.format) {
		return fmt.Errorf("format %d has no waveform packet: %w", p.format, errs.ErrFormatMismatch)
	}
	p.wave = wave

	return nil
}

// Wave returns the attached waveform packet; fails for formats without
// waveforms.
func (p *LidarPointRecord) Wave() (WavePacket, error) {
	if !FormatHasWave(p.format) {
		return WavePacket{}, fmt.Errorf("format %d has no waveform packet: %w", p.format, errs.ErrFormatMismatch)
	}

	return p.wave, nil
}

// fullRecordLengths holds the canonical on-disk record length per point
// format with both optional scalar fields (intensity and user data) present.
var fullRecordLengths = [11]uint16{20, 28, 26, 34, 57, 63, 30, 36, 38, 59, 67}

// recordShape captures the outcome of the record-length inference: which of
// the two optional scalar fields are present, and how many vendor trailing
// bytes to skip after each record.
type recordShape struct {
	intensity bool
	userData  bool
	skipBytes int
}

// inferRecordShape infers intensity/user-data presence from the stored point
// record length.
//
// For each format there are four canonical lengths: both fields present
// (full), user data only (full-2), intensity only (full-1), and neither
// (full-3). A stored length above full assumes both fields present and
// treats the surplus as vendor padding to skip per record; real-world vendor
// output makes this a deliberate best-effort heuristic rather than a strict
// validation. A length below full-3 is an error.
func inferRecordShape(pointFormat byte, recordLength uint16) (recordShape, error) {
	if pointFormat > 10 {
		return recordShape{}, fmt.Errorf("format %d: %w", pointFormat, errs.ErrUnsupportedPointFormat)
	}

	full := fullRecordLengths[pointFormat]
	switch {
	case recordLength == full:
		return recordShape{intensity: true, userData: true}, nil
	case recordLength == full-1:
		return recordShape{intensity: true, userData: false}, nil
	case recordLength == full-2:
		return recordShape{intensity: false, userData: true}, nil
	case recordLength == full-3:
		return recordShape{intensity: false, userData: false}, nil
	case recordLength > full:
		return recordShape{intensity: true, userData: true, skipBytes: int(recordLength - full)}, nil
	default:
		return recordShape{}, fmt.Errorf("format %d record length %d below minimum %d: %w",
			pointFormat, recordLength, full-3, errs.ErrInvalidRecordLength)
	}
}

// recordLengthFor returns the on-disk record length for a format given the
// file's presence flags.
func recordLengthFor(pointFormat byte, shape recordShape) uint16 {
	length := fullRecordLengths[pointFormat]
	if !shape.intensity {
		length -= 2
	}
	if !shape.userData {
		length--
	}

	return length
}
