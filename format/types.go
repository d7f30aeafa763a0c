// Package format defines the shared constants of the LAS and zlidar
// container formats: container kinds, the zlidar compression-method and
// codec-version bytes, and the zlidar field-type codes.
package format

import (
	"path/filepath"
	"strings"
)

type (
	Container         uint8
	CompressionMethod uint8
	FieldType         uint32
)

const (
	ContainerUnknown Container = 0x0 // ContainerUnknown represents an unrecognized file suffix.
	ContainerLas     Container = 0x1 // ContainerLas represents a raw .las file.
	ContainerZip     Container = 0x2 // ContainerZip represents a .las file inside a .zip archive.
	ContainerZlidar  Container = 0x3 // ContainerZlidar represents a compressed .zlidar file.

	// CompressionDeflate is the only compression method the zlidar container
	// defines. Any other method byte in a block table is a decode error.
	CompressionDeflate CompressionMethod = 0x0

	// ZlidarVersion is the current zlidar codec version byte. Blocks carrying
	// a greater version are rejected.
	ZlidarVersion uint8 = 1
)

// Zlidar field-type codes, one per point-record column in a block's field
// table.
const (
	FieldX           FieldType = 0
	FieldY           FieldType = 1
	FieldZ           FieldType = 2
	FieldIntensity   FieldType = 3
	FieldPointBit    FieldType = 4
	FieldClassBit    FieldType = 5
	FieldScanAngle   FieldType = 6
	FieldUserData    FieldType = 7
	FieldPointSource FieldType = 8
	FieldGpsTime     FieldType = 9
	FieldRed         FieldType = 10
	FieldGreen       FieldType = 11
	FieldBlue        FieldType = 12
)

// DetectContainer selects the container type purely by filename suffix.
func DetectContainer(fileName string) Container {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".las":
		return ContainerLas
	case ".zip":
		return ContainerZip
	case ".zlidar":
		return ContainerZlidar
	default:
		return ContainerUnknown
	}
}

func (c Container) String() string {
	switch c {
	case ContainerLas:
		return "LAS"
	case ContainerZip:
		return "LAS/zip"
	case ContainerZlidar:
		return "zlidar"
	default:
		return "Unknown"
	}
}

func (m CompressionMethod) String() string {
	switch m {
	case CompressionDeflate:
		return "Deflate"
	default:
		return "Unknown"
	}
}

func (f FieldType) String() string {
	switch f {
	case FieldX:
		return "X"
	case FieldY:
		return "Y"
	case FieldZ:
		return "Z"
	case FieldIntensity:
		return "Intensity"
	case FieldPointBit:
		return "PointBitField"
	case FieldClassBit:
		return "ClassBitField"
	case FieldScanAngle:
		return "ScanAngle"
	case FieldUserData:
		return "UserData"
	case FieldPointSource:
		return "PointSourceID"
	case FieldGpsTime:
		return "GpsTime"
	case FieldRed:
		return "Red"
	case FieldGreen:
		return "Green"
	case FieldBlue:
		return "Blue"
	default:
		return "Unknown"
	}
}

// Width returns the per-point byte width of the field's decoded column.
func (f FieldType) Width() int {
	switch f {
	case FieldX, FieldY, FieldZ:
		return 4
	case FieldIntensity, FieldScanAngle, FieldPointSource, FieldRed, FieldGreen, FieldBlue:
		return 2
	case FieldPointBit, FieldClassBit, FieldUserData:
		return 1
	case FieldGpsTime:
		return 8
	default:
		return 0
	}
}
