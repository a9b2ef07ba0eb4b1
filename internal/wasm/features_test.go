package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatures_GetSet(t *testing.T) {
	var f Features
	require.False(t, f.Get(FeatureSIMD))

	f = f.Set(FeatureSIMD, true)
	require.True(t, f.Get(FeatureSIMD))
	require.False(t, f.Get(FeatureGC))

	f = f.Set(FeatureSIMD, false)
	require.False(t, f.Get(FeatureSIMD))
}

func TestFeatures_GetRequiresEveryBit(t *testing.T) {
	f := FeatureSIMD | FeatureGC
	require.True(t, f.Get(FeatureSIMD|FeatureGC))
	require.False(t, f.Get(FeatureSIMD|FeatureThreads))
}

func TestFeatures_EmptyRequirementAlwaysSatisfied(t *testing.T) {
	// Ungated opcodes carry a zero Feature; their decode-time check must
	// pass under any feature set, including none at all.
	var f Features
	require.True(t, f.Get(0))
	require.NoError(t, f.Require(0))
}

func TestFeatures_Require(t *testing.T) {
	f := Features20191205
	require.NoError(t, f.Require(FeatureMutableGlobal))

	err := f.Require(FeatureSIMD)
	require.Error(t, err)
	require.Contains(t, err.Error(), "simd")
}

func TestFeatures_String(t *testing.T) {
	f := FeatureMutableGlobal | FeatureSIMD
	require.Equal(t, "mutable-global|simd", f.String())
}

func TestFeatures_Snapshots(t *testing.T) {
	require.True(t, Features20220419.Get(Features20191205))
	require.True(t, FeaturesFinished.Get(Features20220419))
	require.True(t, FeaturesFinished.Get(FeatureGC))
	require.False(t, Features20191205.Get(FeatureSIMD))
}
