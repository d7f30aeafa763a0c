// Package zlb implements the zlidar block codec.
//
// Point data in a zlidar file is partitioned into sequential blocks of up to
// MaxBlockPoints points. Each block stores its columns independently: a field
// table names every column present, and each column is delta-coded (where the
// format says so), deflate-compressed, and laid out 4-byte-aligned after the
// table.
//
// The package works on raw integer columns and leaves the scale/offset
// transform and the point-record model to the las package, so it has no
// dependency on it.
package zlb

import "github.com/arloliu/golidar/format"

// MaxBlockPoints is the block partition size; the final block of a file may
// be shorter.
const MaxBlockPoints = 50000

// fieldEntrySize is the encoded size of one field table entry:
// uint32 field type, uint64 payload offset, uint64 compressed length.
const fieldEntrySize = 20

// FieldEntry is one row of a block's field table. Offset is absolute within
// the file; Length is the unpadded compressed payload length.
type FieldEntry struct {
	Type   format.FieldType
	Offset uint64
	Length uint64
}

// Block holds one block's point data as parallel raw columns.
//
// X, Y, and Z are raw scaled integers as stored on disk; the caller applies
// the header's scale and offset. Optional columns (Intensity, UserData,
// GpsTime, Red/Green/Blue) are nil when the block does not carry them; all
// non-nil columns have equal length.
type Block struct {
	X           []int32
	Y           []int32
	Z           []int32
	Intensity   []uint16
	PointBit    []byte
	ClassBit    []byte
	ScanAngle   []int16
	UserData    []byte
	PointSource []uint16
	GpsTime     []float64
	Red         []uint16
	Green       []uint16
	Blue        []uint16
}

// Count returns the number of points in the block.
func (b *Block) Count() int {
	return len(b.PointBit)
}

// mandatoryFields are the columns every block must carry besides the point
// bit field, which is validated separately because it is decoded first.
var mandatoryFields = []format.FieldType{
	format.FieldX, format.FieldY, format.FieldZ,
	format.FieldClassBit, format.FieldScanAngle, format.FieldPointSource,
}

// isLateReturn reports whether a raw point bit field byte marks a last-or-only
// return. Zero return counts are treated as 1, matching the accessor contract
// of the point model. The z column's dual-baseline delta coding keys on this.
func isLateReturn(bitField byte) bool {
	ret := bitField & 0b0000_0111
	if ret == 0 {
		ret = 1
	}
	num := (bitField >> 3) & 0b0000_0111
	if num == 0 {
		num = 1
	}

	return ret == num
}

// align4 rounds n up to the next 4-byte boundary.
func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}
