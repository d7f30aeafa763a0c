package las

import (
	"fmt"
	"strings"

	"github.com/arloliu/golidar/endian"
)

// Record IDs with special-cased interpretation during read. The raw VLRs are
// still retained verbatim in the list for write-back.
const (
	recordIDGeoKeyDirectory = 34735
	recordIDGeoDoubleParams = 34736
	recordIDGeoAsciiParams  = 34737
	recordIDWktTransform    = 2112
)

// vlrHeaderSize is the fixed on-disk VLR header: reserved, user id, record
// id, payload length, description.
const vlrHeaderSize = 54

// VLR is a variable length record: a 54-byte header followed by a raw
// payload.
type VLR struct {
	Reserved                uint16
	UserID                  string
	RecordID                uint16
	RecordLengthAfterHeader uint16
	Description             string
	BinaryData              []byte
}

// decode reads one VLR at the reader's cursor.
func (v *VLR) decode(r *endian.Reader) error {
	var err error
	if v.Reserved, err = r.Uint16(); err != nil {
		return fmt.Errorf("VLR reserved: %w", err)
	}
	if v.UserID, err = r.String(16); err != nil {
		return fmt.Errorf("VLR user id: %w", err)
	}
	if v.RecordID, err = r.Uint16(); err != nil {
		return fmt.Errorf("VLR record id: %w", err)
	}
	if v.RecordLengthAfterHeader, err = r.Uint16(); err != nil {
		return fmt.Errorf("VLR payload length: %w", err)
	}
	if v.Description, err = r.String(32); err != nil {
		return fmt.Errorf("VLR description: %w", err)
	}

	payload, err := r.Bytes(int(v.RecordLengthAfterHeader))
	if err != nil {
		return fmt.Errorf("VLR %d payload: %w", v.RecordID, err)
	}
	v.BinaryData = append([]byte(nil), payload...)

	return nil
}

// encode mirrors decode: the 54-byte header followed by the raw payload.
func (v *VLR) encode(w *endian.Writer) {
	w.PutUint16(v.Reserved)
	w.PutString(v.UserID, 16)
	w.PutUint16(v.RecordID)
	w.PutUint16(uint16(len(v.BinaryData)))
	w.PutString(v.Description, 32)
	w.PutBytes(v.BinaryData)
}

// encodedSize returns the VLR's on-disk size.
func (v *VLR) encodedSize() int {
	return vlrHeaderSize + len(v.BinaryData)
}

// absorbVLR routes the four special-cased record IDs into the file's CRS
// state. Every VLR, special-cased or not, stays in the VLR list.
func (las *LasFile) absorbVLR(v *VLR) error {
	switch v.RecordID {
	case recordIDGeoKeyDirectory:
		if err := las.geokeys.addKeyDirectory(v.BinaryData); err != nil {
			return err
		}
	case recordIDGeoDoubleParams:
		las.geokeys.addDoubleParams(v.BinaryData)
	case recordIDGeoAsciiParams:
		las.geokeys.addAsciiParams(v.BinaryData)
	case recordIDWktTransform:
		las.wktData = strings.TrimRight(string(v.BinaryData), "\x00")
	}

	return nil
}
