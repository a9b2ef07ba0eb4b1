package wat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestPrint_FuncWithExport(t *testing.T) {
	src := `(module (func $f (export "f") (param i32) (result i32) local.get 0))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.True(t, sink.Empty())

	out := Print(m)
	require.Contains(t, out, "(module")
	require.Contains(t, out, "(type")
	require.Contains(t, out, "(func")
	require.Contains(t, out, "(export \"f\"")
	require.Contains(t, out, "local.get 0")
}

func TestFloatText_RoundTrippableLiterals(t *testing.T) {
	require.Equal(t, "0x1p+00", floatText(0x3f800000, 32))
	require.Equal(t, "inf", floatText(0x7f800000, 32))
	require.Equal(t, "-inf", floatText(0xff800000, 32))
	require.Equal(t, "nan", floatText(0x7fc00000, 32))
	require.Equal(t, "nan:0x1", floatText(0x7f800001, 32))
	require.Equal(t, "0x1p+00", floatText(0x3ff0000000000000, 64))
	require.Equal(t, "-inf", floatText(0xfff0000000000000, 64))
}

func TestPrint_BlockResultTypeSurvives(t *testing.T) {
	src := `(module (func (result i32) block (result i32) i32.const 1 end))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.True(t, sink.Empty())
	out := Print(m)
	require.Contains(t, out, "block (result i32)")
}

func TestPrint_RendersOneTopLevelItemPerLine(t *testing.T) {
	src := `(module (memory 1) (global i32 (i32.const 0)))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.True(t, sink.Empty())

	out := Print(m)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3, "module header plus one line per item")
}
