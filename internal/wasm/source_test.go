package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRange_String(t *testing.T) {
	require.Equal(t, "offset 0x6", Range{Start: 6, End: 6}.String())
	require.Equal(t, "offset 0x6-0x8", Range{Start: 6, End: 8}.String())
}

func TestAtEqual_IgnoresRange(t *testing.T) {
	a := WithRange(uint32(7), Range{Start: 0, End: 1})
	b := WithRange(uint32(7), Range{Start: 40, End: 44})
	c := WithRange(uint32(8), Range{Start: 0, End: 1})

	require.True(t, AtEqual(a, b))
	require.False(t, AtEqual(a, c))
}
