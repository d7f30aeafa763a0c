// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines Go's binary.ByteOrder and binary.AppendByteOrder interfaces into
// a single EndianEngine, and builds the cursor-based Reader and Writer used by
// every codec in this module. The LAS and zlidar formats are little-endian
// throughout, so GetLittleEndianEngine is the engine used everywhere outside
// of tests.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
//
// The interface is satisfied by binary.LittleEndian and binary.BigEndian,
// keeping it fully compatible with existing Go code while providing both
// read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
