package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestDecodeNameSection_ModuleAndFunctionNames(t *testing.T) {
	payload := []byte{
		0x00, 0x02, 0x01, 'm', // module name subsection: len=1, "m"
		0x01, 0x04, 0x01, 0x00, 0x01, 'f', // function names: count=1, idx=0, name="f"
	}
	sink := wasm.NewSink()
	ns, err := decodeNameSection(payload, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Equal(t, "m", ns.ModuleName)
	require.Len(t, ns.FunctionNames, 1)
	require.EqualValues(t, 0, ns.FunctionNames[0].Index)
	require.Equal(t, "f", ns.FunctionNames[0].Name)
}

func TestDecodeNameSection_UnknownSubsectionSkipped(t *testing.T) {
	payload := []byte{
		0x7f, 0x02, 0xAA, 0xBB, // subsection id 127 (unknown), size 2, arbitrary bytes
	}
	sink := wasm.NewSink()
	ns, err := decodeNameSection(payload, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Empty(t, ns.ModuleName)
	require.Empty(t, ns.FunctionNames)
}
