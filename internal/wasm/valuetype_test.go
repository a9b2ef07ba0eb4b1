package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueType_IsNumeric(t *testing.T) {
	require.True(t, ValueTypeI32.IsNumeric())
	require.True(t, ValueTypeV128.IsNumeric())
	require.False(t, ValueTypeFuncref.IsNumeric())
	require.False(t, ValueTypeExternref.IsNumeric())
}

func TestValueType_String(t *testing.T) {
	require.Equal(t, "i32", ValueTypeI32.String())
	require.Equal(t, "funcref", ValueTypeFuncref.String())
	require.Equal(t, "unknown", ValueType(0x00).String())
}

func TestRefType_String(t *testing.T) {
	funcref := RefType{Nullable: true, Heap: HeapType{Kind: HeapKindFunc}}
	require.Equal(t, "funcref", funcref.String())

	nonNull := RefType{Nullable: false, Heap: HeapType{Kind: HeapKindEq}}
	require.Equal(t, "eq ref", nonNull.String())
}

func TestHeapType_String(t *testing.T) {
	require.Equal(t, "func", HeapType{Kind: HeapKindFunc}.String())
	require.Equal(t, "type-index", HeapType{Kind: HeapKindTypeIndex, Index: 3}.String())
}
