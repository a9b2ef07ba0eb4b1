package wat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func parseResolveDesugar(t *testing.T, src string, features wasm.Features) (*Module, *wasm.Sink) {
	t.Helper()
	sink := wasm.NewSink()
	ctx := &ParseCtx{Features: features, Sink: sink}
	m := ParseModule(src, ctx)
	Resolve(m, sink)
	Desugar(m)
	return m, sink
}

func TestPipeline_FuncParamResultLocalGet(t *testing.T) {
	src := `(module (func $f (param i32) (result i32) local.get 0))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.True(t, sink.Empty())

	require.Len(t, m.Items, 2, "one synthesized type item, one func item")
	require.Equal(t, ItemType, m.Items[0].Kind, "desugar's stableItemOrder sorts types first")
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, m.Items[0].Type.Type.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, m.Items[0].Type.Type.Results)

	require.Equal(t, ItemFunc, m.Items[1].Kind)
	fn := m.Items[1].Func
	require.True(t, fn.Type.Index.IsResolved())
	require.EqualValues(t, 0, fn.Type.Index.Index)
	require.Len(t, fn.Body, 1)
	require.Equal(t, wasm.OpcodeLocalGet, fn.Body[0].Opcode)
	require.True(t, fn.Body[0].Immediate.Var.IsResolved())
	require.EqualValues(t, 0, fn.Body[0].Immediate.Var.Index)
}

func TestPipeline_FoldedOffsetElemStaysActiveSegment(t *testing.T) {
	src := `(module (table 2 funcref) (elem (i32.const 0) 0 1))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.True(t, sink.Empty())

	require.Len(t, m.Items, 2)
	require.Equal(t, ItemTable, m.Items[0].Kind)
	require.Nil(t, m.Items[0].Table.InlineElements)

	require.Equal(t, ItemElem, m.Items[1].Kind)
	el := m.Items[1].Elem
	require.Equal(t, wasm.ElementModeActive, el.Mode)
	require.EqualValues(t, 0, el.TableVar.Index)
	require.Len(t, el.Vars, 2)
	require.EqualValues(t, 0, el.Vars[0].Index)
	require.EqualValues(t, 1, el.Vars[1].Index)
}

func TestPipeline_DuplicateBindReportsAndAssignsAnonymousSlot(t *testing.T) {
	src := `(module (func $a) (func $a))`
	_, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "$a is already bound to index 0")
}

func TestResolve_IsIdempotent(t *testing.T) {
	src := `(module (func $f (param i32) (result i32) local.get 0) (export "f" (func $f)))`
	sink := wasm.NewSink()
	ctx := &ParseCtx{Features: wasm.Features20191205, Sink: sink}
	m := ParseModule(src, ctx)
	Resolve(m, sink)
	require.True(t, sink.Empty())

	before := Print(&Module{Items: append([]Item(nil), m.Items...)})
	Resolve(m, sink)
	after := Print(&Module{Items: append([]Item(nil), m.Items...)})
	require.Equal(t, before, after)
}

func TestDesugar_IsIdempotent(t *testing.T) {
	src := `(module (table 1 funcref) (elem (i32.const 0) 0))`
	sink := wasm.NewSink()
	ctx := &ParseCtx{Features: wasm.Features20191205, Sink: sink}
	m := ParseModule(src, ctx)
	Resolve(m, sink)
	Desugar(m)
	before := Print(m)
	Desugar(m)
	after := Print(m)
	require.Equal(t, before, after)
}

func TestParse_DisabledFeatureKeywordRejected(t *testing.T) {
	src := `(module (func (drop (ref.null funcref))))`
	_, sink := parseResolveDesugar(t, src, wasm.Features20191205)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "reference-types")
}

func TestParse_LinearTryCatch(t *testing.T) {
	src := `(module (event $e) (func try i32.const 1 drop catch $e end))`
	m, sink := parseResolveDesugar(t, src, wasm.Features20220419.Set(wasm.FeatureExceptions, true))
	require.True(t, sink.Empty())

	var fn *FuncItem
	for _, it := range m.Items {
		if it.Kind == ItemFunc {
			fn = it.Func
		}
	}
	require.NotNil(t, fn)
	require.Equal(t, wasm.OpcodeTry, fn.Body[0].Opcode)
	require.Equal(t, wasm.OpcodeCatch, fn.Body[3].Opcode)
	require.True(t, fn.Body[3].Immediate.Var.IsResolved())
	require.EqualValues(t, 0, fn.Body[3].Immediate.Var.Index)
	require.Equal(t, wasm.OpcodeEnd, fn.Body[4].Opcode)
}

func TestConvert_RoundTripsBinaryShapeThroughResolveAndDesugar(t *testing.T) {
	src := `(module (func $f (export "f") (param i32) (result i32) local.get 0))`
	sink := wasm.NewSink()
	ctx := &ParseCtx{Features: wasm.Features20191205, Sink: sink}
	m := ParseModule(src, ctx)
	Resolve(m, sink)
	require.True(t, sink.Empty())
	Desugar(m)

	bm := ToBinary(m)
	require.Len(t, bm.TypeSection, 1)
	require.Len(t, bm.FunctionSection, 1)
	require.Len(t, bm.CodeSection, 1)
	require.Len(t, bm.ExportSection, 1)

	back := FromBinary(bm)
	require.Len(t, back.Items, 3, "type, func, export")
}
