package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestWriteCFGOutline_NestedBlocks(t *testing.T) {
	body := []wasm.Instruction{
		{Opcode: wasm.OpcodeBlock},
		{Opcode: wasm.OpcodeLoop},
		{Opcode: wasm.OpcodeEnd},
		{Opcode: wasm.OpcodeEnd},
	}
	var b strings.Builder
	writeCFGOutline(&b, body)
	out := b.String()
	require.Contains(t, out, "block")
	require.Contains(t, out, "loop")
	require.Contains(t, out, "end")
}

func TestWriteCFGOutline_IfElse(t *testing.T) {
	body := []wasm.Instruction{
		{Opcode: wasm.OpcodeIf},
		{Opcode: wasm.OpcodeElse},
		{Opcode: wasm.OpcodeEnd},
	}
	var b strings.Builder
	writeCFGOutline(&b, body)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "if")
	require.Contains(t, lines[1], "else")
}
