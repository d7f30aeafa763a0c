package las

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
)

const (
	// FileSignatureLas and FileSignatureZlidar are the two accepted 4-byte
	// file signatures.
	FileSignatureLas    = "LASF"
	FileSignatureZlidar = "ZLDR"

	// writtenHeaderSize is the size of the LAS 1.3 header layout this module
	// emits. Readers accept whatever header size the file declares.
	writtenHeaderSize = 235

	// minProbeSize is the smallest buffer the version probe can work on: the
	// GUID-bearing layout keeps its version bytes at offsets 24/25.
	minProbeSize = 26
)

// GlobalEncoding is the 16-bit header bit field describing file-wide
// properties of the point data.
type GlobalEncoding uint16

// GpsTimeIsAdjustedStandard reports whether GPS times are adjusted standard
// GPS time rather than GPS week time.
func (g GlobalEncoding) GpsTimeIsAdjustedStandard() bool {
	return g&(1<<0) != 0
}

// WaveformDataInternal reports whether waveform packets are stored inside
// this file.
func (g GlobalEncoding) WaveformDataInternal() bool {
	return g&(1<<1) != 0
}

// WaveformDataExternal reports whether waveform packets live in an external
// auxiliary file.
func (g GlobalEncoding) WaveformDataExternal() bool {
	return g&(1<<2) != 0
}

// ReturnDataSynthetic reports whether return numbers were generated
// synthetically rather than observed.
func (g GlobalEncoding) ReturnDataSynthetic() bool {
	return g&(1<<3) != 0
}

// WktCrs reports whether the coordinate reference system is carried as a WKT
// VLR rather than GeoTIFF keys.
func (g GlobalEncoding) WktCrs() bool {
	return g&(1<<4) != 0
}

// Header is the versioned LAS/zlidar file header.
//
// The reader populates every field the file's version carries; the legacy
// 32-bit and extended 64-bit point counts are reconciled through
// NumberPoints and PointsByReturn rather than at decode time, so the raw
// stored values stay inspectable.
type Header struct {
	FileSignature        string
	FileSourceID         uint16
	GlobalEncoding       GlobalEncoding
	ProjectID            uuid.UUID
	GuidPresent          bool
	VersionMajor         byte
	VersionMinor         byte
	SystemID             string
	GeneratingSoftware   string
	FileCreationDay      uint16
	FileCreationYear     uint16
	HeaderSize           uint16
	OffsetToPoints       uint32
	NumberOfVLRs         uint32
	PointFormatID        byte
	PointRecordLength    uint16
	LegacyNumberPoints   uint32
	LegacyPointsByReturn [5]uint32
	XScaleFactor         float64
	YScaleFactor         float64
	ZScaleFactor         float64
	XOffset              float64
	YOffset              float64
	ZOffset              float64
	MaxX                 float64
	MinX                 float64
	MaxY                 float64
	MinY                 float64
	MaxZ                 float64
	MinZ                 float64
	WaveformDataStart    uint64
	ExtendedVlrOffset    uint64
	NumberOfExtendedVlrs uint32
	NumberPoints64       uint64
	PointsByReturn64     [15]uint64
}

// NumberPoints returns the effective point count: the larger of the legacy
// 32-bit and extended 64-bit counts.
func (h *Header) NumberPoints() uint64 {
	n := uint64(h.LegacyNumberPoints)
	if h.NumberPoints64 > n {
		n = h.NumberPoints64
	}

	return n
}

// PointsByReturn returns the effective per-return counts: the element-wise
// max of the legacy and extended arrays for returns 1-5, the extended values
// alone for returns 6-15.
func (h *Header) PointsByReturn() [15]uint64 {
	counts := h.PointsByReturn64
	for i, legacy := range h.LegacyPointsByReturn {
		if uint64(legacy) > counts[i] {
			counts[i] = uint64(legacy)
		}
	}

	return counts
}

// versionAtLeast reports whether the header's version is >= major.minor.
func (h *Header) versionAtLeast(major, minor byte) bool {
	if h.VersionMajor != major {
		return h.VersionMajor > major
	}

	return h.VersionMinor >= minor
}

// versionPlausible is the probe acceptance window per layout candidate.
func versionPlausible(major, minor byte) bool {
	return major >= 1 && major <= 2 && minor <= 5
}

// Parse decodes the header from the start of data.
//
// The version bytes are probed speculatively at two candidate offsets: 24/25
// for the layout carrying the optional 16-byte project GUID and 8/9 for the
// layout without it. Whichever candidate yields a plausible version pair
// fixes the layout; if neither does, decoding fails with
// errs.ErrInvalidVersion. After the probe, decoding proceeds strictly
// sequentially, skipping the already-consumed version bytes in place.
func (h *Header) Parse(data []byte) error {
	if len(data) < minProbeSize {
		return fmt.Errorf("header is %d bytes: %w", len(data), errs.ErrShortBuffer)
	}

	switch {
	case versionPlausible(data[24], data[25]):
		h.GuidPresent = true
		h.VersionMajor, h.VersionMinor = data[24], data[25]
	case versionPlausible(data[8], data[9]):
		h.GuidPresent = false
		h.VersionMajor, h.VersionMinor = data[8], data[9]
	default:
		return fmt.Errorf("version candidates %d.%d and %d.%d: %w",
			data[24], data[25], data[8], data[9], errs.ErrInvalidVersion)
	}

	r := endian.NewReader(data, endian.GetLittleEndianEngine())

	sig, err := r.Bytes(4)
	if err != nil {
		return err
	}
	h.FileSignature = string(sig)
	if h.FileSignature != FileSignatureLas && h.FileSignature != FileSignatureZlidar {
		return fmt.Errorf("signature %q: %w", h.FileSignature, errs.ErrInvalidSignature)
	}

	if h.FileSourceID, err = r.Uint16(); err != nil {
		return err
	}
	ge, err := r.Uint16()
	if err != nil {
		return err
	}
	h.GlobalEncoding = GlobalEncoding(ge)

	if h.GuidPresent {
		guid, err := r.Bytes(16)
		if err != nil {
			return err
		}
		h.ProjectID = guidFromLasBytes(guid)
	}

	// Version bytes were consumed by the probe.
	if err := r.Skip(2); err != nil {
		return err
	}

	if h.SystemID, err = r.String(32); err != nil {
		return err
	}
	if h.GeneratingSoftware, err = r.String(32); err != nil {
		return err
	}
	if h.FileCreationDay, err = r.Uint16(); err != nil {
		return err
	}
	if h.FileCreationYear, err = r.Uint16(); err != nil {
		return err
	}
	if h.HeaderSize, err = r.Uint16(); err != nil {
		return err
	}
	if h.OffsetToPoints, err = r.Uint32(); err != nil {
		return err
	}
	if h.NumberOfVLRs, err = r.Uint32(); err != nil {
		return err
	}
	if h.PointFormatID, err = r.Uint8(); err != nil {
		return err
	}
	if h.PointRecordLength, err = r.Uint16(); err != nil {
		return err
	}
	if h.LegacyNumberPoints, err = r.Uint32(); err != nil {
		return err
	}
	for i := range h.LegacyPointsByReturn {
		if h.LegacyPointsByReturn[i], err = r.Uint32(); err != nil {
			return err
		}
	}

	if h.XScaleFactor, err = r.Float64(); err != nil {
		return err
	}
	if h.YScaleFactor, err = r.Float64(); err != nil {
		return err
	}
	if h.ZScaleFactor, err = r.Float64(); err != nil {
		return err
	}
	if h.XOffset, err = r.Float64(); err != nil {
		return err
	}
	if h.YOffset, err = r.Float64(); err != nil {
		return err
	}
	if h.ZOffset, err = r.Float64(); err != nil {
		return err
	}
	if h.MaxX, err = r.Float64(); err != nil {
		return err
	}
	if h.MinX, err = r.Float64(); err != nil {
		return err
	}
	if h.MaxY, err = r.Float64(); err != nil {
		return err
	}
	if h.MinY, err = r.Float64(); err != nil {
		return err
	}
	if h.MaxZ, err = r.Float64(); err != nil {
		return err
	}
	if h.MinZ, err = r.Float64(); err != nil {
		return err
	}

	if h.versionAtLeast(1, 3) {
		if h.WaveformDataStart, err = r.Uint64(); err != nil {
			return err
		}
	}

	if h.versionAtLeast(1, 4) {
		if h.ExtendedVlrOffset, err = r.Uint64(); err != nil {
			return err
		}
		if h.NumberOfExtendedVlrs, err = r.Uint32(); err != nil {
			return err
		}
		if h.NumberPoints64, err = r.Uint64(); err != nil {
			return err
		}
		for i := range h.PointsByReturn64 {
			if h.PointsByReturn64[i], err = r.Uint64(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Bytes serializes the header in the LAS 1.3 layout.
//
// The writer intentionally downgrades every header to version 1.3 with a
// fixed 235-byte size and no extended fields; 1.4 writing is not supported.
// The caller is expected to have set OffsetToPoints, the point counts, and
// the bounding box first.
func (h *Header) Bytes() []byte {
	w := endian.NewWriter(endian.GetLittleEndianEngine(), writtenHeaderSize)

	sig := h.FileSignature
	if sig == "" {
		sig = FileSignatureLas
	}
	w.PutString(sig, 4)
	w.PutUint16(h.FileSourceID)
	w.PutUint16(uint16(h.GlobalEncoding))
	w.PutBytes(guidToLasBytes(h.ProjectID))
	w.PutUint8(1)
	w.PutUint8(3)
	w.PutString(h.SystemID, 32)
	w.PutString(h.GeneratingSoftware, 32)
	w.PutUint16(h.FileCreationDay)
	w.PutUint16(h.FileCreationYear)
	w.PutUint16(writtenHeaderSize)
	w.PutUint32(h.OffsetToPoints)
	w.PutUint32(h.NumberOfVLRs)
	w.PutUint8(h.PointFormatID)
	w.PutUint16(h.PointRecordLength)
	w.PutUint32(h.LegacyNumberPoints)
	for _, n := range h.LegacyPointsByReturn {
		w.PutUint32(n)
	}
	w.PutFloat64(h.XScaleFactor)
	w.PutFloat64(h.YScaleFactor)
	w.PutFloat64(h.ZScaleFactor)
	w.PutFloat64(h.XOffset)
	w.PutFloat64(h.YOffset)
	w.PutFloat64(h.ZOffset)
	w.PutFloat64(h.MaxX)
	w.PutFloat64(h.MinX)
	w.PutFloat64(h.MaxY)
	w.PutFloat64(h.MinY)
	w.PutFloat64(h.MaxZ)
	w.PutFloat64(h.MinZ)
	w.PutUint64(h.WaveformDataStart)

	return w.Bytes()
}

// guidFromLasBytes converts the header's 16 GUID bytes to a uuid.UUID. LAS
// stores the first three GUID groups little-endian (Microsoft layout); uuid
// is big-endian throughout.
func guidFromLasBytes(b []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:16])

	return u
}

// guidToLasBytes is the inverse of guidFromLasBytes.
func guidToLasBytes(u uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:], u[8:16])

	return b
}
