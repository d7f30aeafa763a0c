package las

import (
	"fmt"
	"os"

	"github.com/arloliu/golidar/compress"
	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
	"github.com/arloliu/golidar/zlb"
)

// parseZlidar decodes a complete zlidar buffer into the model. The header
// and VLR layout match plain LAS with the "ZLDR" signature; point data is a
// sequence of zlb blocks scanned forward from the point-data offset until
// the header's point count is reached or the buffer ends.
func (las *LasFile) parseZlidar(data []byte) error {
	if err := las.parseHeaderAndVlrs(data, FileSignatureZlidar); err != nil {
		return err
	}
	if las.fileMode == "rh" {
		return nil
	}

	numPoints := int(las.Header.NumberPoints())
	if numPoints <= 1 {
		las.warnf("file holds %d points; downstream consumers may require at least 2", numPoints)
	}

	las.allocatePointArrays(numPoints)

	pos := int(las.Header.OffsetToPoints)
	read := 0
	for read < numPoints && pos < len(data) {
		blk, next, err := zlb.DecodeBlock(data, pos)
		if err != nil {
			return fmt.Errorf("block at offset %d: %w", pos, err)
		}
		if next <= pos {
			return fmt.Errorf("block at offset %d ends at %d: %w", pos, next, errs.ErrInvalidBlock)
		}

		las.appendBlock(blk)
		read += blk.Count()
		pos = next
	}

	if read < numPoints {
		las.warnf("header declares %d points but blocks held %d", numPoints, read)
	}

	return las.checkParallel()
}

// appendBlock descales a decoded block's raw columns into the parallel
// arrays.
func (las *LasFile) appendBlock(blk *zlb.Block) {
	pf := las.Header.PointFormatID
	hdr := &las.Header

	for i := 0; i < blk.Count(); i++ {
		p := PointRecord0{
			X:             float64(blk.X[i])*hdr.XScaleFactor + hdr.XOffset,
			Y:             float64(blk.Y[i])*hdr.YScaleFactor + hdr.YOffset,
			Z:             float64(blk.Z[i])*hdr.ZScaleFactor + hdr.ZOffset,
			BitField:      PointBitField(blk.PointBit[i]),
			ClassBitField: ClassBitField(blk.ClassBit[i]),
			ScanAngle:     blk.ScanAngle[i],
			PointSourceID: blk.PointSource[i],
		}
		if blk.Intensity != nil {
			p.Intensity = blk.Intensity[i]
		}
		if blk.UserData != nil {
			p.UserData = blk.UserData[i]
		}
		las.pointData = append(las.pointData, p)

		if FormatHasGpsTime(pf) {
			var gps float64
			if blk.GpsTime != nil {
				gps = blk.GpsTime[i]
			}
			las.gpsData = append(las.gpsData, gps)
		}
		if FormatHasRgb(pf) {
			var rgb RgbData
			if blk.Red != nil {
				rgb = RgbData{Red: blk.Red[i], Green: blk.Green[i], Blue: blk.Blue[i]}
			}
			las.rgbData = append(las.rgbData, rgb)
		}
		if FormatHasWave(pf) {
			// The zlidar field table has no waveform codes; keep the
			// parallel arrays aligned with empty packets.
			las.waveData = append(las.waveData, WavePacket{})
		}
	}
}

// writeZlidar serializes the model as a zlidar file. Unlike the plain
// writer there is no format downgrade: the block codec carries the formats
// 0-3 field set plus the GPS and color columns whenever the source format
// has them. Waveform packets have no field code and are dropped.
func (las *LasFile) writeZlidar() error {
	pf := las.Header.PointFormatID
	if FormatHasWave(pf) {
		las.warnf("the zlidar container has no waveform fields; waveform packets from format %d are discarded", pf)
	}

	recordLength := recordLengthFor(pf, las.shape)
	hdr := las.deriveHeader(FileSignatureZlidar, pf, recordLength)

	w := endian.NewWriter(endian.GetLittleEndianEngine(), int(hdr.OffsetToPoints)+len(las.pointData)*8)
	w.PutBytes(hdr.Bytes())
	for i := range las.VlrData {
		las.VlrData[i].encode(w)
	}
	w.Align(4)

	codec := compress.NewZlibCompressor(las.compressionLevel)
	for start := 0; start < len(las.pointData); start += las.blockSize {
		end := start + las.blockSize
		if end > len(las.pointData) {
			end = len(las.pointData)
		}

		blk := las.buildBlock(&hdr, start, end)
		if err := zlb.EncodeBlock(w, blk, codec); err != nil {
			return fmt.Errorf("block at point %d: %w", start, err)
		}
	}

	return os.WriteFile(las.fileName, w.Bytes(), 0o644)
}

// buildBlock converts points [start, end) into one block's raw columns.
func (las *LasFile) buildBlock(hdr *Header, start, end int) *zlb.Block {
	pf := hdr.PointFormatID
	n := end - start

	blk := &zlb.Block{
		X:           make([]int32, n),
		Y:           make([]int32, n),
		Z:           make([]int32, n),
		PointBit:    make([]byte, n),
		ClassBit:    make([]byte, n),
		ScanAngle:   make([]int16, n),
		PointSource: make([]uint16, n),
	}
	if las.shape.intensity {
		blk.Intensity = make([]uint16, n)
	}
	if las.shape.userData {
		blk.UserData = make([]byte, n)
	}
	if FormatHasGpsTime(pf) {
		blk.GpsTime = make([]float64, n)
	}
	if FormatHasRgb(pf) {
		blk.Red = make([]uint16, n)
		blk.Green = make([]uint16, n)
		blk.Blue = make([]uint16, n)
	}

	for i := 0; i < n; i++ {
		p := &las.pointData[start+i]
		blk.X[i] = rawCoord(p.X, hdr.XScaleFactor, hdr.XOffset)
		blk.Y[i] = rawCoord(p.Y, hdr.YScaleFactor, hdr.YOffset)
		blk.Z[i] = rawCoord(p.Z, hdr.ZScaleFactor, hdr.ZOffset)
		blk.PointBit[i] = byte(p.BitField)
		blk.ClassBit[i] = byte(p.ClassBitField)
		blk.ScanAngle[i] = p.ScanAngle
		blk.PointSource[i] = p.PointSourceID
		if blk.Intensity != nil {
			blk.Intensity[i] = p.Intensity
		}
		if blk.UserData != nil {
			blk.UserData[i] = p.UserData
		}
		if blk.GpsTime != nil {
			blk.GpsTime[i] = las.gpsData[start+i]
		}
		if blk.Red != nil {
			rgb := las.rgbData[start+i]
			blk.Red[i] = rgb.Red
			blk.Green[i] = rgb.Green
			blk.Blue[i] = rgb.Blue
		}
	}

	return blk
}
