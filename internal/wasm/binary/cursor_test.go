package binary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_Vu32(t *testing.T) {
	c := newCursor([]byte{0xe5, 0x8e, 0x26})
	v, err := c.vu32()
	require.NoError(t, err)
	require.EqualValues(t, 624485, v)
	require.True(t, c.eof())
}

func TestCursor_Vu32_NotEnoughBytes(t *testing.T) {
	c := newCursor([]byte{0x80}) // continuation bit set, nothing follows
	_, err := c.vu32()
	require.Error(t, err)
}

func TestCursor_ReadBytes_ShortBuffer(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02})
	_, err := c.readBytes(5)
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestCursor_Name_ValidatesUTF8(t *testing.T) {
	c := newCursor([]byte{0x03, 'f', 'o', 'o'})
	s, err := c.name()
	require.NoError(t, err)
	require.Equal(t, "foo", s)
}

func TestCursor_Name_RejectsInvalidUTF8(t *testing.T) {
	c := newCursor([]byte{0x01, 0xff})
	_, err := c.name()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBadString)
}

func TestCursor_F32AndF64_LittleEndian(t *testing.T) {
	c := newCursor([]byte{0x00, 0x00, 0x80, 0x3f}) // 1.0f
	bits, err := c.f32()
	require.NoError(t, err)
	require.EqualValues(t, 0x3f800000, bits)

	c2 := newCursor([]byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}) // 1.0
	bits64, err := c2.f64()
	require.NoError(t, err)
	require.EqualValues(t, 0x3ff0000000000000, bits64)
}

func TestCursor_SubCursor_TracksAbsoluteOffset(t *testing.T) {
	c := newCursor([]byte{0, 0, 0})
	c.pos = 2
	sub := c.subCursor([]byte{1, 2, 3})
	require.EqualValues(t, 2, sub.base)
	require.EqualValues(t, 2, sub.offset())
}
