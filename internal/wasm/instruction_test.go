package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVar_ResolvedVsSymbolic(t *testing.T) {
	resolved := IndexVar(3)
	require.True(t, resolved.IsResolved())
	require.Equal(t, "3", resolved.String())

	symbolic := NameVar("$foo", Range{})
	require.False(t, symbolic.IsResolved())
	require.Equal(t, "$foo", symbolic.String())
}

func TestFunctionType_EqualSignature(t *testing.T) {
	a := &FunctionType{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}}
	b := &FunctionType{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}, BoundParamNames: []string{"$x"}}
	c := &FunctionType{Params: []ValueType{ValueTypeI64}, Results: []ValueType{ValueTypeI32}}

	require.True(t, a.EqualSignature(b), "bound parameter names are not part of the signature")
	require.False(t, a.EqualSignature(c))
}
