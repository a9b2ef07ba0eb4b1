package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
)

func TestEncodeModule_RoundTripsThroughDecode(t *testing.T) {
	m := &wasm.Module{
		TypeSection: []*wasm.TypeDef{
			{Kind: wasm.TypeDefFunc, Func: &wasm.FunctionType{
				Params:  []wasm.ValueType{wasm.ValueTypeI32},
				Results: []wasm.ValueType{wasm.ValueTypeI32},
			}},
		},
		FunctionSection: []wasm.Index{0},
		CodeSection: []*wasm.Code{{
			Body: []wasm.Instruction{
				{Opcode: wasm.OpcodeLocalGet, Immediate: wasm.Immediate{Kind: wasm.ImmVar, Var: wasm.IndexVar(0)}},
			},
		}},
		ExportSection: []*wasm.Export{
			{Name: "f", Kind: wasm.ExternalKindFunc, Index: 0},
		},
	}

	bin, err := encodeModule(m)
	require.NoError(t, err)

	sink := wasm.NewSink()
	decoded, err := binary.DecodeModule(bin, wasm.Features20191205, sink)
	require.NoError(t, err)
	require.True(t, sink.Empty())

	require.Len(t, decoded.TypeSection, 1)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, decoded.TypeSection[0].Func.Params)
	require.Len(t, decoded.FunctionSection, 1)
	require.Len(t, decoded.CodeSection, 1)
	require.Len(t, decoded.CodeSection[0].Body, 1)
	require.Equal(t, wasm.OpcodeLocalGet, decoded.CodeSection[0].Body[0].Opcode)
	require.Len(t, decoded.ExportSection, 1)
	require.Equal(t, "f", decoded.ExportSection[0].Name)
}

func TestEncodeElementSection_RejectsNonActiveSegments(t *testing.T) {
	_, err := encodeElementSection([]*wasm.ElementSegment{
		{Mode: wasm.ElementModePassive},
	})
	require.Error(t, err)
}
