package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestDecodeVector_ExactCountIsNotReported(t *testing.T) {
	c := newCursor([]byte{0x02, 0x7f, 0x7e}) // count=2, i32, i64
	sink := wasm.NewSink()
	out, err := decodeVector(c, sink, "types", func(c *cursor) (byte, error) { return c.readByte() })
	require.NoError(t, err)
	require.Equal(t, []byte{0x7f, 0x7e}, out)
	require.True(t, sink.Empty())
}

func TestDecodeVector_ShortReadReportsDeclaredVsActualCount(t *testing.T) {
	c := newCursor([]byte{0x03, 0x7f, 0x7e}) // count=3, only 2 elements follow
	sink := wasm.NewSink()
	out, err := decodeVector(c, sink, "types", func(c *cursor) (byte, error) { return c.readByte() })
	require.Error(t, err)
	require.Equal(t, []byte{0x7f, 0x7e}, out)
	require.False(t, sink.Empty())
	require.Equal(t, "Expected types to have count 3, got 2", sink.Diagnostics[0].Message)
}
