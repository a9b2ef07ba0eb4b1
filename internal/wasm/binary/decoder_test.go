package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestDecodeModule_HeaderOnly(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	sink := wasm.NewSink()
	m, err := DecodeModule(data, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Empty(t, m.TypeSection)
	require.Empty(t, m.CustomSections)
}

func TestDecodeModule_BadMagic(t *testing.T) {
	data := []byte{'w', 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	sink := wasm.NewSink()
	_, err := DecodeModule(data, wasm.Features20191205, sink)
	require.Error(t, err)
	require.False(t, sink.Empty())
	require.Equal(t, `Mismatch: expected "\00\61\73\6d", got "\77\61\73\6d"`, sink.Diagnostics[0].Message)
	require.Len(t, sink.Diagnostics[0].Contexts, 1)
	require.Equal(t, "magic", sink.Diagnostics[0].Contexts[0].Desc)
}

func TestDecodeModule_BadVersion(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}
	sink := wasm.NewSink()
	_, err := DecodeModule(data, wasm.Features20191205, sink)
	require.Error(t, err)
	require.Equal(t, `Mismatch: expected "\01\00\00\00", got "\02\00\00\00"`, sink.Diagnostics[0].Message)
	require.Equal(t, "version", sink.Diagnostics[0].Contexts[0].Desc)
}

func TestDecodeModule_OneEmptyFunctionType(t *testing.T) {
	// header + type section (id=1, size=4): count=1, form=func(0x60), 0 params, 0 results.
	data := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	}
	sink := wasm.NewSink()
	m, err := DecodeModule(data, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Len(t, m.TypeSection, 1)
	require.Equal(t, wasm.TypeDefFunc, m.TypeSection[0].Kind)
	require.Empty(t, m.TypeSection[0].Func.Params)
	require.Empty(t, m.TypeSection[0].Func.Results)
}

func TestDecodeModule_DuplicateSectionReported(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	}
	sink := wasm.NewSink()
	m, err := DecodeModule(data, wasm.Features20191205, sink)
	require.Error(t, err)
	require.Len(t, m.TypeSection, 1, "the second occurrence of a duplicate section is reported and skipped")
}

func TestDecodeModule_TruncatedNameSubsectionKeepsEarlierSubsections(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x0b, // custom section, 11 bytes
		0x04, 'n', 'a', 'm', 'e',
		0x00, 0x02, 0x01, 'm', // module name subsection: "m"
		0x01, 0x7f, // function names subsection claims 127 bytes, none follow
	}
	sink := wasm.NewSink()
	m, _ := DecodeModule(data, wasm.Features20191205, sink)
	require.False(t, sink.Empty())
	require.NotNil(t, m.NameSection, "subsections before the failure survive")
	require.Equal(t, "m", m.NameSection.ModuleName)
}

func TestDecodeModule_SectionLengthExceedsInput(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x7f, // type section claims 127 bytes, none follow
	}
	sink := wasm.NewSink()
	_, err := DecodeModule(data, wasm.Features20191205, sink)
	require.Error(t, err)
}

func TestDecodeModule_EmptySectionIsNotAnError(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x01, 0x00, // type section, count = 0
	}
	sink := wasm.NewSink()
	m, err := DecodeModule(data, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Empty(t, m.TypeSection)
}
