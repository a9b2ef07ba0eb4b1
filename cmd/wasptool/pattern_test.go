package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestParseOpcodePattern(t *testing.T) {
	pattern, err := parseOpcodePattern("i32.const, i32.add")
	require.NoError(t, err)
	require.Equal(t, []wasm.Opcode{wasm.OpcodeI32Const, wasm.OpcodeI32Add}, pattern)
}

func TestParseOpcodePattern_UnknownMnemonic(t *testing.T) {
	_, err := parseOpcodePattern("not.a.real.opcode")
	require.Error(t, err)
}

func TestParseOpcodePattern_Empty(t *testing.T) {
	_, err := parseOpcodePattern("")
	require.Error(t, err)
}

func TestFindPattern_ReportsMatchStartOffset(t *testing.T) {
	body := []wasm.Instruction{
		{Opcode: wasm.OpcodeI32Const},
		{Opcode: wasm.OpcodeI32Const},
		{Opcode: wasm.OpcodeI32Add},
	}
	matches := findPattern(body, []wasm.Opcode{wasm.OpcodeI32Const, wasm.OpcodeI32Add})
	require.Equal(t, []int{1}, matches)
}

func TestFindPattern_NoMatch(t *testing.T) {
	body := []wasm.Instruction{{Opcode: wasm.OpcodeNop}}
	matches := findPattern(body, []wasm.Opcode{wasm.OpcodeI32Add})
	require.Empty(t, matches)
}
