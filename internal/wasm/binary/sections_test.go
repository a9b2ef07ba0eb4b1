package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestDecodeImportSection_FuncAndTable(t *testing.T) {
	payload := []byte{
		0x02,                                // count = 2
		0x01, 'm', 0x01, 'f', 0x00, 0x00,    // "m"."f" func, type index 0
		0x01, 't', 0x01, 't', 0x01, 0x70, 0x00, 0x01, // "t"."t" table funcref, limits{min:1}
	}
	sink := wasm.NewSink()
	imports, err := decodeImportSection(payload, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Len(t, imports, 2)
	require.Equal(t, wasm.ExternalKindFunc, imports[0].Kind)
	require.EqualValues(t, 0, imports[0].DescFunc)
	require.Equal(t, wasm.ExternalKindTable, imports[1].Kind)
	require.NotNil(t, imports[1].DescTable)
}

func TestDecodeImportSection_BadKindByte(t *testing.T) {
	payload := []byte{0x01, 0x01, 'm', 0x01, 'f', 0x09}
	sink := wasm.NewSink()
	_, err := decodeImportSection(payload, wasm.Features20191205, sink)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBadExternalKind)
}

func TestDecodeGlobalSection(t *testing.T) {
	// mutable i32 global, init `i32.const 5; end`
	payload := []byte{
		0x01,                   // count = 1
		0x7f, 0x01,             // valtype i32, mutable=1
		0x41, 0x05, 0x0b,       // i32.const 5, end
	}
	sink := wasm.NewSink()
	globals, err := decodeGlobalSection(payload, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Len(t, globals, 1)
	require.Equal(t, wasm.ValueTypeI32, globals[0].Type.ValType)
	require.True(t, globals[0].Type.Mutable)
}

func TestDecodeGlobalSection_V128ConstInitializer(t *testing.T) {
	payload := []byte{
		0x01,       // count = 1
		0x7b, 0x00, // valtype v128, immutable
		0xfd, 0x0c, // v128.const
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
		0x0b, // end
	}
	sink := wasm.NewSink()
	globals, err := decodeGlobalSection(payload, wasm.Features20220419, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Len(t, globals, 1)
	require.Len(t, globals[0].Init.Instructions, 1)
	require.Equal(t, wasm.OpcodeSIMDPrefix, globals[0].Init.Instructions[0].Opcode)
	require.EqualValues(t, 0x0c, globals[0].Init.Instructions[0].Secondary)
}

func TestDecodeExportSection_DuplicateNameReported(t *testing.T) {
	payload := []byte{
		0x02,
		0x01, 'f', 0x00, 0x00, // "f" func 0
		0x01, 'f', 0x00, 0x01, // "f" func 1, duplicate name
	}
	sink := wasm.NewSink()
	exports, err := decodeExportSection(payload, sink)
	require.NoError(t, err)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "duplicate export name")

	// Both entries survive in declaration order; the diagnostic flags the
	// repeat without rewriting the section.
	require.Len(t, exports, 2)
	require.EqualValues(t, 0, exports[0].Index)
	require.EqualValues(t, 1, exports[1].Index)
}
