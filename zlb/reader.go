package zlb

import (
	"fmt"

	"github.com/arloliu/golidar/compress"
	"github.com/arloliu/golidar/encoding"
	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/format"
)

// DecodeBlock decodes one block whose field table starts at pos within data,
// which must be the complete file buffer (table offsets are absolute).
//
// It returns the decoded block and the position one past the block's last
// padded payload, which is where the next block's field table begins.
//
// The point bit field column is decompressed before any other column: it
// determines the block's point count, and the z column's dual-baseline delta
// coding needs each point's late-return flag before the z value can be
// reconstructed. All remaining columns are order-independent. A block missing
// any mandatory column fails with errs.ErrMissingField, one decoding to zero
// points with errs.ErrInvalidBlock; unknown field codes are skipped.
func DecodeBlock(data []byte, pos int) (*Block, int, error) {
	engine := endian.GetLittleEndianEngine()
	r := endian.NewReader(data, engine)
	if err := r.SetPos(pos); err != nil {
		return nil, 0, fmt.Errorf("block table at %d: %w", pos, err)
	}

	numFields, err := r.Uint16()
	if err != nil {
		return nil, 0, fmt.Errorf("block field count: %w", err)
	}
	method, err := r.Uint8()
	if err != nil {
		return nil, 0, fmt.Errorf("block compression method: %w", err)
	}
	version, err := r.Uint8()
	if err != nil {
		return nil, 0, fmt.Errorf("block codec version: %w", err)
	}
	if version > format.ZlidarVersion {
		return nil, 0, fmt.Errorf("version %d: %w", version, errs.ErrUnsupportedCodecVersion)
	}

	codec, err := compress.GetCodec(format.CompressionMethod(method))
	if err != nil {
		return nil, 0, err
	}

	entries := make([]FieldEntry, numFields)
	for i := range entries {
		ft, err := r.Uint32()
		if err != nil {
			return nil, 0, fmt.Errorf("field entry %d: %w", i, err)
		}
		offset, err := r.Uint64()
		if err != nil {
			return nil, 0, fmt.Errorf("field entry %d: %w", i, err)
		}
		length, err := r.Uint64()
		if err != nil {
			return nil, 0, fmt.Errorf("field entry %d: %w", i, err)
		}
		entries[i] = FieldEntry{Type: format.FieldType(ft), Offset: offset, Length: length}
	}

	// The point bit field column fixes the block's point count and the
	// late-return flags; decode it first.
	blk := &Block{}
	found := false
	for _, entry := range entries {
		if entry.Type != format.FieldPointBit {
			continue
		}
		payload, err := fieldPayload(data, entry)
		if err != nil {
			return nil, 0, err
		}
		blk.PointBit, err = codec.Decompress(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("field %s: %w", entry.Type, err)
		}
		found = true

		break
	}
	if !found {
		return nil, 0, fmt.Errorf("field %s: %w", format.FieldPointBit, errs.ErrMissingField)
	}

	count := len(blk.PointBit)
	if count == 0 {
		return nil, 0, fmt.Errorf("field %s decoded to 0 points: %w",
			format.FieldPointBit, errs.ErrInvalidBlock)
	}

	late := make([]bool, count)
	for i, b := range blk.PointBit {
		late[i] = isLateReturn(b)
	}

	var seen [format.FieldBlue + 1]bool
	seen[format.FieldPointBit] = true

	end := pos
	for _, entry := range entries {
		if e := int(align4(entry.Offset + entry.Length)); e > end {
			end = e
		}

		if entry.Type == format.FieldPointBit {
			continue
		}
		if entry.Type.Width() == 0 {
			// Unknown field codes are skipped; their offset and length still
			// advanced the block end, so the rest of the file stays aligned.
			continue
		}

		payload, err := fieldPayload(data, entry)
		if err != nil {
			return nil, 0, err
		}
		raw, err := codec.Decompress(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("field %s: %w", entry.Type, err)
		}
		if want := count * entry.Type.Width(); len(raw) != want {
			return nil, 0, fmt.Errorf("field %s: %d bytes decoded, want %d: %w",
				entry.Type, len(raw), want, errs.ErrShortBuffer)
		}

		decodeColumn(blk, entry.Type, raw, count, late, engine)
		seen[entry.Type] = true
	}

	for _, ft := range mandatoryFields {
		if !seen[ft] {
			return nil, 0, fmt.Errorf("field %s: %w", ft, errs.ErrMissingField)
		}
	}

	return blk, end, nil
}

// fieldPayload slices the compressed payload of one field table entry out of
// the file buffer, bounds-checked.
func fieldPayload(data []byte, entry FieldEntry) ([]byte, error) {
	start, end := entry.Offset, entry.Offset+entry.Length
	if end < start || end > uint64(len(data)) {
		return nil, fmt.Errorf("field %s payload [%d, %d) in %d-byte file: %w",
			entry.Type, start, end, len(data), errs.ErrShortBuffer)
	}

	return data[start:end], nil
}

func decodeColumn(blk *Block, ft format.FieldType, raw []byte, count int, late []bool, engine endian.EndianEngine) {
	switch ft {
	case format.FieldX:
		blk.X = collect(encoding.NewInt32DeltaDecoder(engine).All(raw, count), count)
	case format.FieldY:
		blk.Y = collect(encoding.NewInt32DeltaDecoder(engine).All(raw, count), count)
	case format.FieldZ:
		blk.Z = encoding.NewZDeltaDecoder(engine).Decode(raw, late)
	case format.FieldIntensity:
		blk.Intensity = collect(encoding.NewUint16RawDecoder(engine).All(raw, count), count)
	case format.FieldClassBit:
		blk.ClassBit = collect(encoding.NewByteRawDecoder().All(raw, count), count)
	case format.FieldScanAngle:
		blk.ScanAngle = collect(encoding.NewInt16DeltaDecoder(engine).All(raw, count), count)
	case format.FieldUserData:
		blk.UserData = collect(encoding.NewByteRawDecoder().All(raw, count), count)
	case format.FieldPointSource:
		blk.PointSource = collect(encoding.NewUint16RawDecoder(engine).All(raw, count), count)
	case format.FieldGpsTime:
		blk.GpsTime = collect(encoding.NewFloat64DeltaDecoder(engine).All(raw, count), count)
	case format.FieldRed:
		blk.Red = collect(encoding.NewUint16RawDecoder(engine).All(raw, count), count)
	case format.FieldGreen:
		blk.Green = collect(encoding.NewUint16RawDecoder(engine).All(raw, count), count)
	case format.FieldBlue:
		blk.Blue = collect(encoding.NewUint16RawDecoder(engine).All(raw, count), count)
	}
}

func collect[T comparable](seq func(func(T) bool), count int) []T {
	out := make([]T, 0, count)
	for v := range seq {
		out = append(out, v)
	}

	return out
}
