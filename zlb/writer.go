package zlb

import (
	"fmt"

	"github.com/arloliu/golidar/compress"
	"github.com/arloliu/golidar/encoding"
	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/format"
)

// EncodeBlock serializes one block at the current end of w, which must be the
// writer accumulating the whole file so that table offsets come out absolute.
//
// Layout: uint16 field count, method byte (deflate), codec version byte, the
// 20-byte field table entries, then each field's compressed payload in table
// order, zero-padded to the next 4-byte boundary. The table records the
// unpadded payload length.
func EncodeBlock(w *endian.Writer, blk *Block, codec compress.Codec) error {
	engine := endian.GetLittleEndianEngine()

	columns, err := encodeColumns(blk, engine, codec)
	if err != nil {
		return err
	}

	w.PutUint16(uint16(len(columns)))
	w.PutUint8(uint8(format.CompressionDeflate))
	w.PutUint8(format.ZlidarVersion)

	offset := uint64(w.Len() + len(columns)*fieldEntrySize)
	for _, col := range columns {
		w.PutUint32(uint32(col.fieldType))
		w.PutUint64(offset)
		w.PutUint64(uint64(len(col.payload)))
		offset = align4(offset + uint64(len(col.payload)))
	}

	for _, col := range columns {
		w.PutBytes(col.payload)
		w.Align(4)
	}

	return nil
}

type encodedColumn struct {
	fieldType format.FieldType
	payload   []byte
}

// encodeColumns delta-codes and compresses every column the block carries,
// in the canonical field order.
func encodeColumns(blk *Block, engine endian.EndianEngine, codec compress.Codec) ([]encodedColumn, error) {
	var columns []encodedColumn

	add := func(ft format.FieldType, raw []byte) error {
		payload, err := codec.Compress(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", ft, err)
		}
		columns = append(columns, encodedColumn{fieldType: ft, payload: payload})

		return nil
	}

	xEnc := encoding.NewInt32DeltaEncoder(engine)
	defer xEnc.Finish()
	xEnc.WriteSlice(blk.X)
	if err := add(format.FieldX, xEnc.Bytes()); err != nil {
		return nil, err
	}

	yEnc := encoding.NewInt32DeltaEncoder(engine)
	defer yEnc.Finish()
	yEnc.WriteSlice(blk.Y)
	if err := add(format.FieldY, yEnc.Bytes()); err != nil {
		return nil, err
	}

	zEnc := encoding.NewZDeltaEncoder(engine)
	defer zEnc.Finish()
	for i, z := range blk.Z {
		zEnc.Write(z, isLateReturn(blk.PointBit[i]))
	}
	if err := add(format.FieldZ, zEnc.Bytes()); err != nil {
		return nil, err
	}

	if blk.Intensity != nil {
		enc := encoding.NewUint16RawEncoder(engine)
		defer enc.Finish()
		enc.WriteSlice(blk.Intensity)
		if err := add(format.FieldIntensity, enc.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := add(format.FieldPointBit, blk.PointBit); err != nil {
		return nil, err
	}
	if err := add(format.FieldClassBit, blk.ClassBit); err != nil {
		return nil, err
	}

	angleEnc := encoding.NewInt16DeltaEncoder(engine)
	defer angleEnc.Finish()
	angleEnc.WriteSlice(blk.ScanAngle)
	if err := add(format.FieldScanAngle, angleEnc.Bytes()); err != nil {
		return nil, err
	}

	if blk.UserData != nil {
		if err := add(format.FieldUserData, blk.UserData); err != nil {
			return nil, err
		}
	}

	srcEnc := encoding.NewUint16RawEncoder(engine)
	defer srcEnc.Finish()
	srcEnc.WriteSlice(blk.PointSource)
	if err := add(format.FieldPointSource, srcEnc.Bytes()); err != nil {
		return nil, err
	}

	if blk.GpsTime != nil {
		enc := encoding.NewFloat64DeltaEncoder(engine)
		defer enc.Finish()
		enc.WriteSlice(blk.GpsTime)
		if err := add(format.FieldGpsTime, enc.Bytes()); err != nil {
			return nil, err
		}
	}

	if blk.Red != nil {
		for _, ch := range []struct {
			ft     format.FieldType
			values []uint16
		}{
			{format.FieldRed, blk.Red},
			{format.FieldGreen, blk.Green},
			{format.FieldBlue, blk.Blue},
		} {
			enc := encoding.NewUint16RawEncoder(engine)
			defer enc.Finish()
			enc.WriteSlice(ch.values)
			if err := add(ch.ft, enc.Bytes()); err != nil {
				return nil, err
			}
		}
	}

	return columns, nil
}
