// Package golidar provides reading and writing of LiDAR point clouds in the
// LAS binary format and its compressed columnar derivative, zlidar.
//
// The in-memory model is whole-file: opening a path decodes the header, the
// variable length records, and every point record into parallel attribute
// arrays. Analysis tools iterate or index the points, mutate classification
// and elevation fields, and write the result back out through the same
// facade.
//
// # Containers
//
// The container is selected purely by filename suffix:
//
//   - .las: the raw ASPRS LAS layout, point formats 0-10 on read, 0-3 on
//     write (other formats downgrade with a warning)
//   - .zip: a single .las entry (stored, deflated, or bzip2)
//   - .zlidar: point columns delta-coded per field and deflate-compressed in
//     blocks of up to 50,000 points
//
// # Basic Usage
//
// Reading a tile and reclassifying a point:
//
//	lf, err := golidar.Open("tile.las")
//	if err != nil {
//	    return err
//	}
//	p, _ := lf.PointRecord(0)
//	fmt.Println(p.Z, p.ClassBitField.ClassString())
//	_ = lf.SetClassification(0, 2)
//
// Writing a new file:
//
//	out, _ := golidar.Create("out.zlidar")
//	_ = out.AddHeader(las.Header{
//	    PointFormatID: 1,
//	    XScaleFactor:  0.001, YScaleFactor: 0.001, ZScaleFactor: 0.001,
//	})
//	pt, _ := las.NewLidarPointRecord(1, las.PointRecord0{X: 500.0, Y: 501.0, Z: 80.0})
//	_ = pt.SetGpsTime(411021.25)
//	_ = out.AddLasPoint(pt)
//	_ = out.Close()
//
// This package provides convenient top-level wrappers around the las
// package; for fine-grained control, use the las package directly.
package golidar

import "github.com/arloliu/golidar/las"

// Open reads a complete LAS, zipped LAS, or zlidar file into memory.
func Open(fileName string, opts ...las.FileOption) (*las.LasFile, error) {
	return las.NewLasFile(fileName, "r", opts...)
}

// OpenHeader reads only the header and VLR list; point data is skipped.
func OpenHeader(fileName string, opts ...las.FileOption) (*las.LasFile, error) {
	return las.NewLasFile(fileName, "rh", opts...)
}

// Create opens an empty file model for writing. AddHeader must be called
// before VLRs or points are added; the file is serialized by Write or Close.
func Create(fileName string, opts ...las.FileOption) (*las.LasFile, error) {
	return las.NewLasFile(fileName, "w", opts...)
}
