package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// resolveCtx holds the ten index spaces plus the function-type dedup map,
// accumulated during Define and consulted during the Resolve pass: one
// NameMap per space, plus a types slice for the (type N)-vs-inline-signature
// reconciliation every TypeUse needs.
type resolveCtx struct {
	sink *wasm.Sink

	typeNames    *NameMap
	funcNames    *NameMap
	tableNames   *NameMap
	memoryNames  *NameMap
	globalNames  *NameMap
	elemNames    *NameMap
	dataNames    *NameMap
	eventNames   *NameMap

	types []wasm.FunctionType // grows as implicit type uses are deduped in

	locals *NameMap
	labels LabelStack
}

func newResolveCtx(sink *wasm.Sink) *resolveCtx {
	return &resolveCtx{
		sink:        sink,
		typeNames:   NewNameMap(),
		funcNames:   NewNameMap(),
		tableNames:  NewNameMap(),
		memoryNames: NewNameMap(),
		globalNames: NewNameMap(),
		elemNames:   NewNameMap(),
		dataNames:   NewNameMap(),
		eventNames:  NewNameMap(),
	}
}

// Resolve runs the two-phase Define-then-Use pass over m in place: every
// wasm.Var that started out VarName becomes VarIndex, and every TypeUse
// gets its Type field populated regardless of which form the source used.
// Diagnostics are reported to sink; resolution never aborts, so a module
// with one bad reference still comes out with everything else resolved.
func Resolve(m *Module, sink *wasm.Sink) {
	ctx := newResolveCtx(sink)
	defineModule(ctx, m)
	declared := len(ctx.types)
	resolveModule(ctx, m)
	// Every type-use resolved above that had no matching declared (type N)
	// entry grew ctx.types past what defineModule saw; each of those gets
	// a trailing `type` item appended to the module so the index
	// dedupFunctionType handed out actually has something to name.
	for i := declared; i < len(ctx.types); i++ {
		m.Items = append(m.Items, Item{Kind: ItemType, Type: &TypeItem{Type: ctx.types[i]}})
	}
}

// --- Define pass ---

func define(ctx *resolveCtx, name OptName, nm *NameMap) {
	if !name.Present {
		nm.NewUnbound()
		return
	}
	if nm.HasSinceLastPush(name.Name) {
		prev, _ := nm.Get(name.Name)
		ctx.sink.Report(name.Loc, "Variable %s is already bound to index %d", name.Name, prev)
		nm.NewUnbound()
		return
	}
	nm.NewBound(name.Name)
}

func defineModule(ctx *resolveCtx, m *Module) {
	for i := range m.Items {
		it := &m.Items[i]
		switch it.Kind {
		case ItemType:
			define(ctx, it.Type.Name, ctx.typeNames)
			ctx.types = append(ctx.types, it.Type.Type)
		case ItemImport:
			switch it.Import.Kind {
			case wasm.ExternalKindFunc:
				define(ctx, it.Import.Name, ctx.funcNames)
			case wasm.ExternalKindTable:
				define(ctx, it.Import.Name, ctx.tableNames)
			case wasm.ExternalKindMemory:
				define(ctx, it.Import.Name, ctx.memoryNames)
			case wasm.ExternalKindGlobal:
				define(ctx, it.Import.Name, ctx.globalNames)
			case wasm.ExternalKindEvent:
				define(ctx, it.Import.Name, ctx.eventNames)
			}
		case ItemFunc:
			define(ctx, it.Func.Name, ctx.funcNames)
		case ItemTable:
			define(ctx, it.Table.Name, ctx.tableNames)
		case ItemMemory:
			define(ctx, it.Memory.Name, ctx.memoryNames)
		case ItemGlobal:
			define(ctx, it.Global.Name, ctx.globalNames)
		case ItemElem:
			define(ctx, it.Elem.Name, ctx.elemNames)
		case ItemData:
			define(ctx, it.Data.Name, ctx.dataNames)
		case ItemEvent:
			define(ctx, it.Event.Name, ctx.eventNames)
		case ItemExport, ItemStart:
			// Neither occupies an index space.
		}
	}
}

// --- Resolve pass ---

func resolveModule(ctx *resolveCtx, m *Module) {
	for i := range m.Items {
		it := &m.Items[i]
		switch it.Kind {
		case ItemType:
			resolveFuncType(ctx, &it.Type.Type)
		case ItemImport:
			resolveImport(ctx, it.Import)
		case ItemFunc:
			resolveFunc(ctx, it.Func)
		case ItemTable:
			resolveTable(ctx, it.Table)
		case ItemMemory:
			resolveMemory(ctx, it.Memory)
		case ItemGlobal:
			resolveGlobal(ctx, it.Global)
		case ItemExport:
			resolveExport(ctx, it.Export)
		case ItemStart:
			resolveVar(ctx, &it.Start.Var, ctx.funcNames)
		case ItemElem:
			resolveElem(ctx, it.Elem)
		case ItemData:
			resolveData(ctx, it.Data)
		case ItemEvent:
			resolveEvent(ctx, it.Event)
		}
	}
}

func resolveVar(ctx *resolveCtx, v *wasm.Var, nm *NameMap) {
	if v.Kind == wasm.VarIndex {
		return
	}
	idx, ok := nm.Get(v.Name)
	if !ok {
		ctx.sink.Report(v.Loc, "Undefined variable %s", v.Name)
		return
	}
	v.Index = idx
	v.Kind = wasm.VarIndex
}

func resolveVars(ctx *resolveCtx, vs []wasm.Var, nm *NameMap) {
	for i := range vs {
		resolveVar(ctx, &vs[i], nm)
	}
}

func resolveFuncType(ctx *resolveCtx, ft *wasm.FunctionType) {
	for i := range ft.Params {
		resolveValueType(ctx, &ft.Params[i])
	}
	for i := range ft.Results {
		resolveValueType(ctx, &ft.Results[i])
	}
}

// resolveValueType resolves a (ref $t)-style value type naming a type
// index by name. The MVP value types carry no Var, so this is a no-op for
// everything except the function-references/GC proposals' typed
// references, left for future extension; present now so callers have one
// place to route through.
func resolveValueType(ctx *resolveCtx, vt *wasm.ValueType) {}

// resolveTypeUse reconciles an optional `(type N)` with an optional
// explicit param/result clause, covering the two error cases that can
// arise: an out-of-range index, or an index whose signature doesn't match
// the explicit clause given alongside it.
func resolveTypeUse(ctx *resolveCtx, tu *TypeUse) {
	if tu.HasExplicit {
		resolveFuncType(ctx, &tu.Type)
	}

	switch {
	case tu.HasIndex:
		resolveVar(ctx, &tu.Index, ctx.typeNames)
		if tu.Index.Kind != wasm.VarIndex {
			return
		}
		if int(tu.Index.Index) >= len(ctx.types) {
			ctx.sink.Report(tu.Loc, "Invalid type index %d", tu.Index.Index)
			return
		}
		if tu.HasExplicit {
			declared := ctx.types[tu.Index.Index]
			if !declared.EqualSignature(&tu.Type) {
				ctx.sink.Report(tu.Loc, "Type use (type %d) does not match explicit type", tu.Index.Index)
			}
		} else {
			tu.Type = ctx.types[tu.Index.Index]
		}

	case tu.HasExplicit:
		tu.Index = wasm.IndexVar(dedupFunctionType(ctx, tu.Type))

	default:
		tu.Index = wasm.IndexVar(dedupFunctionType(ctx, wasm.FunctionType{}))
	}
}

// dedupFunctionType returns the index of an existing type with the same
// signature, or appends a new synthetic one — backing every implicit
// type-use (a function/call_indirect/block written with inline
// param/result and no `(type N)`).
func dedupFunctionType(ctx *resolveCtx, ft wasm.FunctionType) wasm.Index {
	for i := range ctx.types {
		if ctx.types[i].EqualSignature(&ft) {
			return wasm.Index(i)
		}
	}
	ctx.types = append(ctx.types, ft)
	return wasm.Index(len(ctx.types) - 1)
}

func resolveImport(ctx *resolveCtx, imp *ImportItem) {
	if imp.Kind == wasm.ExternalKindFunc || imp.Kind == wasm.ExternalKindEvent {
		resolveTypeUse(ctx, &imp.DescFunc)
	}
}

func resolveFunc(ctx *resolveCtx, fn *FuncItem) {
	resolveTypeUse(ctx, &fn.Type)

	ctx.locals = NewNameMap()
	for _, name := range fn.Type.Type.BoundParamNames {
		define(ctx, optNameOf(name), ctx.locals)
	}
	for _, l := range fn.Locals {
		define(ctx, l.Name, ctx.locals)
	}
	ctx.labels = LabelStack{}
	resolveInstructions(ctx, fn.Body)
	ctx.locals = nil
}

func optNameOf(name string) OptName {
	if name == "" {
		return OptName{}
	}
	return OptName{Present: true, Name: name}
}

func resolveTable(ctx *resolveCtx, t *TableItem) {
	if t.InlineElements != nil {
		resolveInlineElements(ctx, t.InlineElements)
	}
}

func resolveInlineElements(ctx *resolveCtx, ie *InlineElements) {
	if ie.UseExprs {
		for i := range ie.Exprs {
			resolveInstructions(ctx, ie.Exprs[i])
		}
		return
	}
	resolveVars(ctx, ie.Vars, ctx.funcNames)
}

func resolveMemory(ctx *resolveCtx, m *MemoryItem) {}

func resolveGlobal(ctx *resolveCtx, g *GlobalItem) {
	resolveInstructions(ctx, g.Init)
}

func resolveExport(ctx *resolveCtx, e *ExportItem) {
	switch e.Kind {
	case wasm.ExternalKindFunc:
		resolveVar(ctx, &e.Var, ctx.funcNames)
	case wasm.ExternalKindTable:
		resolveVar(ctx, &e.Var, ctx.tableNames)
	case wasm.ExternalKindMemory:
		resolveVar(ctx, &e.Var, ctx.memoryNames)
	case wasm.ExternalKindGlobal:
		resolveVar(ctx, &e.Var, ctx.globalNames)
	case wasm.ExternalKindEvent:
		resolveVar(ctx, &e.Var, ctx.eventNames)
	}
}

func resolveElem(ctx *resolveCtx, el *ElemItem) {
	if el.Mode == wasm.ElementModeActive {
		resolveVar(ctx, &el.TableVar, ctx.tableNames)
		resolveInstructions(ctx, el.Offset)
	}
	if el.UseExprs {
		for i := range el.Exprs {
			resolveInstructions(ctx, el.Exprs[i])
		}
		return
	}
	resolveVars(ctx, el.Vars, ctx.funcNames)
}

func resolveData(ctx *resolveCtx, d *DataItem) {
	if d.Mode == wasm.DataModeActive {
		resolveVar(ctx, &d.MemoryVar, ctx.memoryNames)
		resolveInstructions(ctx, d.Offset)
	}
}

func resolveEvent(ctx *resolveCtx, ev *EventItem) {
	resolveTypeUse(ctx, &ev.Type)
}

// resolveInstructions walks a body, tracking block-label scope and routing
// each instruction's Var fields through the right NameMap.
func resolveInstructions(ctx *resolveCtx, body []wasm.Instruction) {
	for i := range body {
		resolveInstruction(ctx, &body[i])
	}
}

func resolveInstruction(ctx *resolveCtx, in *wasm.Instruction) {
	switch in.Opcode {
	case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf, wasm.OpcodeTry:
		resolveBlockType(ctx, &in.Immediate.Block.Type)
		ctx.labels.Push(in.Immediate.Block.Label)
		return
	case wasm.OpcodeEnd:
		ctx.labels.Pop()
		return
	case wasm.OpcodeElse, wasm.OpcodeCatchAll:
		return
	}

	switch in.Immediate.Kind {
	case wasm.ImmVar, wasm.ImmIndex:
		resolveInstructionVar(ctx, in)
	case wasm.ImmBrTable:
		resolveLabels(ctx, in.Immediate.BrTable.Labels)
		resolveLabel(ctx, &in.Immediate.BrTable.Default)
	case wasm.ImmCallIndirect:
		resolveVar(ctx, &in.Immediate.CallIndirect.Table, ctx.tableNames)
		tu := TypeUse{HasIndex: true, Index: in.Immediate.CallIndirect.Type}
		resolveTypeUse(ctx, &tu)
		in.Immediate.CallIndirect.Type = tu.Index
	case wasm.ImmCopy:
		resolveCopyImmediate(ctx, in)
	case wasm.ImmSegmentDst:
		resolveSegmentImmediate(ctx, in)
	}
}

// resolveInstructionVar dispatches a plain ImmVar/ImmIndex immediate to
// the index space its opcode belongs to: locals for local.*, globals for
// global.*, functions for call/ref.func, tables for table.*, events for
// throw/rethrow, element/data segments for *.drop.
func resolveInstructionVar(ctx *resolveCtx, in *wasm.Instruction) {
	v := &in.Immediate.Var
	switch in.Opcode {
	case wasm.OpcodeLocalGet, wasm.OpcodeLocalSet, wasm.OpcodeLocalTee:
		resolveVar(ctx, v, ctx.locals)
	case wasm.OpcodeGlobalGet, wasm.OpcodeGlobalSet:
		resolveVar(ctx, v, ctx.globalNames)
	case wasm.OpcodeCall, wasm.OpcodeReturnCall, wasm.OpcodeRefFunc:
		resolveVar(ctx, v, ctx.funcNames)
	case wasm.OpcodeTableGet, wasm.OpcodeTableSet:
		resolveVar(ctx, v, ctx.tableNames)
	case wasm.OpcodeBr, wasm.OpcodeBrIf, wasm.OpcodeDelegate:
		resolveLabel(ctx, v)
	case wasm.OpcodeThrow, wasm.OpcodeRethrow, wasm.OpcodeCatch:
		resolveVar(ctx, v, ctx.eventNames)
	default:
		switch in.Secondary {
		case uint32(wasm.MiscOpcodeTableGrow), uint32(wasm.MiscOpcodeTableSize), uint32(wasm.MiscOpcodeTableFill):
			if in.Opcode == wasm.OpcodeMiscPrefix {
				resolveVar(ctx, v, ctx.tableNames)
			}
		case uint32(wasm.MiscOpcodeElemDrop):
			if in.Opcode == wasm.OpcodeMiscPrefix {
				resolveVar(ctx, v, ctx.elemNames)
			}
		case uint32(wasm.MiscOpcodeDataDrop):
			if in.Opcode == wasm.OpcodeMiscPrefix {
				resolveVar(ctx, v, ctx.dataNames)
			}
		}
	}
}

func resolveLabel(ctx *resolveCtx, v *wasm.Var) {
	if v.Kind == wasm.VarIndex {
		return
	}
	depth, ok := ctx.labels.Resolve(v.Name)
	if !ok {
		ctx.sink.Report(v.Loc, "Undefined label %s", v.Name)
		return
	}
	v.Index = depth
	v.Kind = wasm.VarIndex
}

func resolveLabels(ctx *resolveCtx, vs []wasm.Var) {
	for i := range vs {
		resolveLabel(ctx, &vs[i])
	}
}

func resolveCopyImmediate(ctx *resolveCtx, in *wasm.Instruction) {
	nm := ctx.tableNames
	if in.Opcode == wasm.OpcodeMiscPrefix && in.Secondary == uint32(wasm.MiscOpcodeMemoryCopy) {
		nm = ctx.memoryNames
	}
	resolveVar(ctx, &in.Immediate.Copy.Dst, nm)
	resolveVar(ctx, &in.Immediate.Copy.Src, nm)
}

func resolveSegmentImmediate(ctx *resolveCtx, in *wasm.Instruction) {
	if in.Opcode != wasm.OpcodeMiscPrefix {
		return
	}
	switch in.Secondary {
	case uint32(wasm.MiscOpcodeTableInit):
		resolveVar(ctx, &in.Immediate.Segment.Segment, ctx.elemNames)
		resolveVar(ctx, &in.Immediate.Segment.Dst, ctx.tableNames)
	case uint32(wasm.MiscOpcodeMemoryInit):
		resolveVar(ctx, &in.Immediate.Segment.Segment, ctx.dataNames)
		resolveVar(ctx, &in.Immediate.Segment.Dst, ctx.memoryNames)
	}
}

// resolveBlockType reconciles a block's type-use exactly like a function's:
// a bare value-result shorthand never needs a types-table entry, but a
// multi-value block does, using the same index-or-dedup logic as any other
// TypeUse. A BlockType produced by the binary decoder has neither
// HasTypeVar nor HasExplicitSig set, so it is always a no-op here.
func resolveBlockType(ctx *resolveCtx, bt *wasm.BlockType) {
	if bt.Kind != wasm.BlockTypeFuncType {
		return
	}
	if !bt.HasTypeVar && !bt.HasExplicitSig {
		return
	}
	tu := TypeUse{
		HasIndex:    bt.HasTypeVar,
		Index:       bt.TypeVar,
		HasExplicit: bt.HasExplicitSig,
		Type:        wasm.FunctionType{Params: bt.ExplicitParams, Results: bt.ExplicitResults},
	}
	resolveTypeUse(ctx, &tu)
	bt.TypeIndex = tu.Index.Index
	bt.HasTypeVar = false
	bt.HasExplicitSig = false
}
