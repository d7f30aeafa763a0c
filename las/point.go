// Package las implements the LAS point-cloud data model and its codecs: the
// versioned header, variable length records, the polymorphic point record
// (formats 0-10), the plain LAS serialization, and the zlidar container built
// on the zlb block codec.
package las

// PointBitField is the packed per-point flag byte shared by all point
// formats: return number in bits 0-2, number of returns in bits 3-5, the
// scan-direction flag in bit 6, and the edge-of-flightline flag in bit 7.
type PointBitField byte

// NewPointBitField packs the four flag fields into one byte. Return values
// are masked to 3 bits.
func NewPointBitField(returnNum, numReturns byte, scanDirection, edgeOfFlightline bool) PointBitField {
	v := returnNum&0b0000_0111 | (numReturns&0b0000_0111)<<3
	if scanDirection {
		v |= 1 << 6
	}
	if edgeOfFlightline {
		v |= 1 << 7
	}

	return PointBitField(v)
}

// ReturnNumber returns the pulse return number in [1, 7]. A stored zero is
// treated as 1; some vendor writers leave the field unset.
func (b PointBitField) ReturnNumber() byte {
	ret := byte(b) & 0b0000_0111
	if ret == 0 {
		ret = 1
	}

	return ret
}

// NumberOfReturns returns the pulse's total return count in [1, 7], with a
// stored zero treated as 1.
func (b PointBitField) NumberOfReturns() byte {
	num := (byte(b) >> 3) & 0b0000_0111
	if num == 0 {
		num = 1
	}

	return num
}

// ScanDirectionFlag reports the mirror scan direction at the time of output.
func (b PointBitField) ScanDirectionFlag() bool {
	return b&(1<<6) != 0
}

// EdgeOfFlightlineFlag reports whether the point is at the end of a scan line.
func (b PointBitField) EdgeOfFlightlineFlag() bool {
	return b&(1<<7) != 0
}

// IsLateReturn reports whether the point is the last or only return of its
// pulse.
func (b PointBitField) IsLateReturn() bool {
	return b.ReturnNumber() == b.NumberOfReturns()
}

// IsFirstReturn reports whether the point is the first of several returns.
func (b PointBitField) IsFirstReturn() bool {
	return b.ReturnNumber() == 1 && b.NumberOfReturns() > 1
}

// IsIntermediateReturn reports whether the point is neither the first nor the
// last return of its pulse.
func (b PointBitField) IsIntermediateReturn() bool {
	ret := b.ReturnNumber()
	return ret > 1 && ret < b.NumberOfReturns()
}

// ClassBitField is the packed per-point classification byte: the class code
// in bits 0-4 and the synthetic, keypoint, and withheld flags in bits 5-7.
type ClassBitField byte

// NewClassBitField packs the classification code and flags into one byte.
// The class code is masked to 5 bits.
func NewClassBitField(class byte, synthetic, keypoint, withheld bool) ClassBitField {
	v := class & 0b0001_1111
	if synthetic {
		v |= 1 << 5
	}
	if keypoint {
		v |= 1 << 6
	}
	if withheld {
		v |= 1 << 7
	}

	return ClassBitField(v)
}

// ClassValue returns the classification code stored in bits 0-4.
func (b ClassBitField) ClassValue() byte {
	return byte(b) & 0b0001_1111
}

// Synthetic reports whether the point was created by a technique other than
// lidar collection.
func (b ClassBitField) Synthetic() bool {
	return b&(1<<5) != 0
}

// Keypoint reports whether the point is a model key-point that should survive
// thinning.
func (b ClassBitField) Keypoint() bool {
	return b&(1<<6) != 0
}

// Withheld reports whether the point should be excluded from processing.
func (b ClassBitField) Withheld() bool {
	return b&(1<<7) != 0
}

// ClassString returns the standard name of the point's classification code.
func (b ClassBitField) ClassString() string {
	return ClassString(b.ClassValue())
}

var classNames = [19]string{
	"Created, never classified",
	"Unclassified",
	"Ground",
	"Low vegetation",
	"Medium vegetation",
	"High vegetation",
	"Building",
	"Low point (noise)",
	"Model key-point (mass point)",
	"Water",
	"Rail",
	"Road surface",
	"Overlap points",
	"Wire - guard (shield)",
	"Wire - conductor (phase)",
	"Transmission tower",
	"Wire-structure connector (insulator)",
	"Bridge deck",
	"High noise",
}

// ClassString returns the standard name for a classification code. Every
// value 0-255 has a name: codes 0-18 use the fixed table, 19-63 are
// "Reserved", and 64-255 are "User defined".
func ClassString(code byte) string {
	switch {
	case code <= 18:
		return classNames[code]
	case code <= 63:
		return "Reserved"
	default:
		return "User defined"
	}
}

// PointRecord0 holds the core scalar fields common to every point format.
// X, Y, and Z are real-world coordinates: the codecs apply the header's scale
// and offset during decode, so in-memory values are already descaled.
type PointRecord0 struct {
	X             float64
	Y             float64
	Z             float64
	Intensity     uint16
	BitField      PointBitField
	ClassBitField ClassBitField
	ScanAngle     int16
	UserData      byte
	PointSourceID uint16
}

// RgbData holds one point's color sample. NIR is only meaningful for point
// formats 8 and 10; it stays zero elsewhere.
type RgbData struct {
	Red   uint16
	Green uint16
	Blue  uint16
	NIR   uint16
}

// WavePacket holds one point's waveform attachment (formats 4, 5, 9, and 10).
type WavePacket struct {
	DescriptorIndex byte
	Offset          uint64
	Size            uint32
	ReturnPoint     float32
	Xt              float32
	Yt              float32
	Zt              float32
}
