package las

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointBitField_Accessors(t *testing.T) {
	// 0b00001001: return 1 (bits 0-2), 1 of 1 returns (bits 3-5), negative
	// scan direction, not edge of flightline.
	b := PointBitField(0b0000_1001)
	require.Equal(t, byte(1), b.ReturnNumber())
	require.Equal(t, byte(1), b.NumberOfReturns())
	require.False(t, b.ScanDirectionFlag())
	require.False(t, b.EdgeOfFlightlineFlag())
	require.True(t, b.IsLateReturn())
	require.False(t, b.IsFirstReturn())
	require.False(t, b.IsIntermediateReturn())

	b = NewPointBitField(2, 3, true, true)
	require.Equal(t, byte(2), b.ReturnNumber())
	require.Equal(t, byte(3), b.NumberOfReturns())
	require.True(t, b.ScanDirectionFlag())
	require.True(t, b.EdgeOfFlightlineFlag())
	require.False(t, b.IsLateReturn())
	require.False(t, b.IsFirstReturn())
	require.True(t, b.IsIntermediateReturn())
}

func TestPointBitField_ZeroReadsAsOne(t *testing.T) {
	// Some vendor writers leave the return fields unset.
	b := PointBitField(0)
	require.Equal(t, byte(1), b.ReturnNumber())
	require.Equal(t, byte(1), b.NumberOfReturns())
	require.True(t, b.IsLateReturn())
}

func TestPointBitField_FirstReturn(t *testing.T) {
	b := NewPointBitField(1, 2, false, false)
	require.True(t, b.IsFirstReturn())
	require.False(t, b.IsLateReturn())
	require.False(t, b.IsIntermediateReturn())
}

func TestNewPointBitField_MasksTo3Bits(t *testing.T) {
	b := NewPointBitField(0b1111_1010, 0b1111_1011, false, false)
	require.Equal(t, byte(2), b.ReturnNumber())
	require.Equal(t, byte(3), b.NumberOfReturns())
}

func TestClassBitField_Accessors(t *testing.T) {
	b := NewClassBitField(2, false, true, false)
	require.Equal(t, byte(2), b.ClassValue())
	require.False(t, b.Synthetic())
	require.True(t, b.Keypoint())
	require.False(t, b.Withheld())
	require.Equal(t, "Ground", b.ClassString())

	b = NewClassBitField(0b1110_0110, true, false, true)
	require.Equal(t, byte(6), b.ClassValue())
	require.True(t, b.Synthetic())
	require.False(t, b.Keypoint())
	require.True(t, b.Withheld())
	require.Equal(t, "Building", b.ClassString())
}

func TestClassString_CoversAllCodes(t *testing.T) {
	require.Equal(t, "Created, never classified", ClassString(0))
	require.Equal(t, "Unclassified", ClassString(1))
	require.Equal(t, "Water", ClassString(9))
	require.Equal(t, "High noise", ClassString(18))
	require.Equal(t, "Reserved", ClassString(19))
	require.Equal(t, "Reserved", ClassString(63))
	require.Equal(t, "User defined", ClassString(64))
	require.Equal(t, "User defined", ClassString(255))
}
