package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func TestDecodeValueType_Numeric(t *testing.T) {
	c := newCursor([]byte{0x7f})
	vt, err := decodeValueType(c, wasm.Features20191205)
	require.NoError(t, err)
	require.Equal(t, wasm.ValueTypeI32, vt)
}

func TestDecodeValueType_V128RequiresSIMD(t *testing.T) {
	c := newCursor([]byte{0x7b})
	_, err := decodeValueType(c, wasm.Features20191205)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBadValueType)
}

func TestDecodeValueType_BadByte(t *testing.T) {
	c := newCursor([]byte{0x00})
	_, err := decodeValueType(c, wasm.Features20220419)
	require.ErrorIs(t, err, ErrBadValueType)
}

func TestDecodeTypeDef_FunctionType(t *testing.T) {
	// (i32, i32) -> (i32)
	c := newCursor([]byte{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f})
	td, err := decodeTypeDef(c, wasm.Features20191205, wasm.NewSink())
	require.NoError(t, err)
	require.Equal(t, wasm.TypeDefFunc, td.Kind)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, td.Func.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, td.Func.Results)
}

func TestDecodeTypeDef_StructRequiresGC(t *testing.T) {
	c := newCursor([]byte{0x5f, 0x00}) // struct type, zero fields
	_, err := decodeTypeDef(c, wasm.Features20220419, wasm.NewSink())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestDecodeTypeDef_UnknownTag(t *testing.T) {
	c := newCursor([]byte{0x61})
	_, err := decodeTypeDef(c, wasm.Features20191205, wasm.NewSink())
	require.ErrorIs(t, err, ErrBadSection)
}

func TestDecodeBlockType_VoidAndValueAndIndex(t *testing.T) {
	voidC := newCursor([]byte{0x40})
	bt, err := decodeBlockType(voidC, wasm.Features20191205)
	require.NoError(t, err)
	require.Equal(t, wasm.BlockTypeVoid, bt.Kind)

	valueC := newCursor([]byte{0x7f})
	bt, err = decodeBlockType(valueC, wasm.Features20191205)
	require.NoError(t, err)
	require.Equal(t, wasm.BlockTypeValue, bt.Kind)
	require.Equal(t, wasm.ValueTypeI32, bt.ValueType)

	idxC := newCursor([]byte{0x05})
	bt, err = decodeBlockType(idxC, wasm.Features20220419)
	require.NoError(t, err)
	require.Equal(t, wasm.BlockTypeFuncType, bt.Kind)
	require.EqualValues(t, 5, bt.TypeIndex)
}

func TestDecodeBlockType_IndexRequiresMultiValue(t *testing.T) {
	idxC := newCursor([]byte{0x05})
	_, err := decodeBlockType(idxC, wasm.Features20191205)
	require.ErrorIs(t, err, ErrFeatureDisabled)
}
