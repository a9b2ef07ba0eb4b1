package wat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameMap_BoundAndUnbound(t *testing.T) {
	m := NewNameMap()
	require.EqualValues(t, 0, m.NewBound("$a"))
	require.EqualValues(t, 1, m.NewUnbound())
	require.EqualValues(t, 2, m.NewBound("$b"))
	require.EqualValues(t, 3, m.Size())

	require.True(t, m.HasSinceLastPush("$a"))
	require.False(t, m.HasSinceLastPush("$missing"))

	idx, ok := m.Get("$b")
	require.True(t, ok)
	require.EqualValues(t, 2, idx)

	_, ok = m.Get("$missing")
	require.False(t, ok)
}

func TestLabelStack_ResolvesByRelativeDepth(t *testing.T) {
	var s LabelStack
	s.Push("$outer")
	s.Push("")
	s.Push("$inner")

	depth, ok := s.Resolve("$inner")
	require.True(t, ok)
	require.EqualValues(t, 0, depth)

	depth, ok = s.Resolve("$outer")
	require.True(t, ok)
	require.EqualValues(t, 2, depth)

	_, ok = s.Resolve("$nope")
	require.False(t, ok)

	require.True(t, s.ResolveDepth(2))
	require.False(t, s.ResolveDepth(3))

	s.Pop()
	_, ok = s.Resolve("$inner")
	require.False(t, ok)
}

func TestLookupStructKeyword(t *testing.T) {
	kw, ok := LookupStructKeyword("func")
	require.True(t, ok)
	require.Equal(t, KwFunc, kw)

	_, ok = LookupStructKeyword("notakeyword")
	require.False(t, ok)

	_, ok = LookupStructKeyword("fun")
	require.False(t, ok)
}

func TestLookupInstructionKeyword(t *testing.T) {
	ik, ok := LookupInstructionKeyword("i32.add")
	require.True(t, ok)
	require.NotZero(t, ik.Opcode)

	_, ok = LookupInstructionKeyword("not.an.opcode")
	require.False(t, ok)
}
