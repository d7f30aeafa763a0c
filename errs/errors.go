// Package errs defines the sentinel errors shared across the golidar packages.
//
// All decode failures are reported as (or wrapped around) one of these values
// so that callers can branch with errors.Is regardless of the added context.
package errs

import "errors"

var (
	// ErrInvalidSignature indicates the file signature is not "LASF" or "ZLDR".
	ErrInvalidSignature = errors.New("invalid file signature")
	// ErrInvalidVersion indicates neither header layout candidate yielded a
	// plausible version byte pair.
	ErrInvalidVersion = errors.New("invalid or unsupported LAS version")
	// ErrShortBuffer indicates the input ended before a complete field,
	// record, or header could be decoded.
	ErrShortBuffer = errors.New("buffer too short")
	// ErrInvalidRecordLength indicates the stored point record length is
	// smaller than the minimum for the point format.
	ErrInvalidRecordLength = errors.New("invalid point record length")
	// ErrUnsupportedPointFormat indicates a point format outside 0-10.
	ErrUnsupportedPointFormat = errors.New("unsupported point format")
	// ErrFormatMismatch indicates a point record variant inconsistent with the
	// header's point format.
	ErrFormatMismatch = errors.New("point record does not match point format")

	// ErrUnsupportedCompression indicates a zlidar block with a compression
	// method other than deflate.
	ErrUnsupportedCompression = errors.New("unsupported zlidar compression method")
	// ErrUnsupportedCodecVersion indicates a zlidar block written by a newer
	// codec version.
	ErrUnsupportedCodecVersion = errors.New("unsupported zlidar codec version")
	// ErrMissingField indicates a zlidar block table without a mandatory field.
	ErrMissingField = errors.New("zlidar block is missing a mandatory field")
	// ErrInvalidBlock indicates a structurally malformed zlidar block, such as
	// one that decodes to zero points or does not advance the read position.
	ErrInvalidBlock = errors.New("malformed zlidar block")

	// ErrZipEntryNotLas indicates the first zip entry does not carry a .las name.
	ErrZipEntryNotLas = errors.New("zip archive entry is not a .las file")
	// ErrUnsupportedZipMethod indicates a zip entry compressed with a method
	// other than store, deflate, or bzip2.
	ErrUnsupportedZipMethod = errors.New("unsupported zip compression method")

	// ErrNoHeader indicates a VLR or point was added before the header was set.
	ErrNoHeader = errors.New("header must be added before VLRs or points")
	// ErrInvalidFileMode indicates a file mode other than "r", "rh", or "w".
	ErrInvalidFileMode = errors.New(`file mode must be "r", "rh", or "w"`)
	// ErrNotWriteMode indicates a mutation attempted on a read-mode file.
	ErrNotWriteMode = errors.New("file is not opened in write mode")

	// ErrNoRgb indicates an RGB lookup on a point format without color data.
	ErrNoRgb = errors.New("point record does not carry RGB data")
	// ErrNoGpsTime indicates a GPS-time lookup on a point format without it.
	ErrNoGpsTime = errors.New("point record does not carry GPS time")
	// ErrPointOutOfRange indicates a point index outside [0, NumberPoints).
	ErrPointOutOfRange = errors.New("point index out of range")
	// ErrNoCrs indicates the file carries no usable CRS description.
	ErrNoCrs = errors.New("no coordinate reference system information")
)
