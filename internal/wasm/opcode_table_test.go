package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupMnemonic_RoundTripsOpcode(t *testing.T) {
	op, info, ok := LookupMnemonic("i32.add")
	require.True(t, ok)
	require.Equal(t, "i32.add", info.Mnemonic)

	got, ok := op.Lookup()
	require.True(t, ok)
	require.Equal(t, "i32.add", got.Mnemonic)
}

func TestLookupMnemonic_UnknownReturnsFalse(t *testing.T) {
	_, _, ok := LookupMnemonic("not.a.real.opcode")
	require.False(t, ok)
}

func TestLookupMnemonic_FeatureGatedOpcodeCarriesItsFeature(t *testing.T) {
	_, info, ok := LookupMnemonic("try")
	require.True(t, ok)
	require.True(t, info.Feature.Get(FeatureExceptions))
}

func TestOpcode_LookupUnknownByteFails(t *testing.T) {
	_, ok := Opcode(0xee).Lookup()
	require.False(t, ok)
}

func TestLookupSIMDMnemonic_CoversFullOpcodeSpace(t *testing.T) {
	op, info, ok := LookupSIMDMnemonic("i16x8.extmul_low_i8x16_s")
	require.True(t, ok)
	require.Equal(t, uint32(0x9c), op)
	require.Equal(t, ImmNone, info.Immediate)
	require.True(t, info.Feature.Get(FeatureSIMD))

	op, info, ok = LookupSIMDMnemonic("v128.load16_lane")
	require.True(t, ok)
	require.Equal(t, uint32(0x55), op)
	require.Equal(t, ImmSimdMemoryLane, info.Immediate)
}

func TestLookupSIMD_UnassignedByteFails(t *testing.T) {
	_, ok := LookupSIMD(0x9a)
	require.False(t, ok)
}
