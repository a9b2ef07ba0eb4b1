package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// Desugar rewrites m in place, replacing every inline sugar form with its
// canonical standalone item and reordering the result into the stable
// section order a binary encoder expects (type, import, func, table,
// memory, event, global, export, start, elem, data). It must run after
// Resolve: desugar's synthesized items reference their subject by the
// already-resolved numeric index, so no second resolve pass is needed for
// them.
//
// Inline import sugar on a func/table/memory/global/event turns that item
// into a plain ImportItem. Inline export sugar turns into one ExportItem
// per clause. A table's inline `(elem ...)` turns into a standalone active
// ElemItem; a memory's inline `(data ...)` turns into a standalone active
// DataItem.
func Desugar(m *Module) {
	var out []Item

	funcIdx, tableIdx, memIdx, globalIdx, eventIdx := wasm.Index(0), wasm.Index(0), wasm.Index(0), wasm.Index(0), wasm.Index(0)

	for _, it := range m.Items {
		switch it.Kind {
		case ItemFunc:
			idx := funcIdx
			funcIdx++
			if it.Func.InlineImport != nil {
				out = append(out, desugarFuncImport(it.Func))
				out = append(out, desugarExports(it.Func.InlineExports, wasm.ExternalKindFunc, idx)...)
				continue
			}
			exports := it.Func.InlineExports
			it.Func.InlineExports = nil
			out = append(out, it)
			out = append(out, desugarExports(exports, wasm.ExternalKindFunc, idx)...)

		case ItemTable:
			idx := tableIdx
			tableIdx++
			if it.Table.InlineImport != nil {
				out = append(out, desugarTableImport(it.Table))
				out = append(out, desugarExports(it.Table.InlineExports, wasm.ExternalKindTable, idx)...)
				continue
			}
			exports := it.Table.InlineExports
			it.Table.InlineExports = nil
			var inline *ElemItem
			if it.Table.InlineElements != nil {
				ie := it.Table.InlineElements
				it.Table.InlineElements = nil
				inline = &ElemItem{
					Mode:     wasm.ElementModeActive,
					TableVar: wasm.IndexVar(idx),
					Offset:   []wasm.Instruction{{Opcode: wasm.OpcodeI32Const, Immediate: wasm.Immediate{Kind: wasm.ImmI32}}},
					RefType:  ie.RefType,
					Vars:     ie.Vars,
					Exprs:    ie.Exprs,
					UseExprs: ie.UseExprs,
					Loc:      ie.Loc,
				}
			}
			out = append(out, it)
			out = append(out, desugarExports(exports, wasm.ExternalKindTable, idx)...)
			if inline != nil {
				out = append(out, Item{Kind: ItemElem, Loc: inline.Loc, Elem: inline})
			}

		case ItemMemory:
			idx := memIdx
			memIdx++
			if it.Memory.InlineImport != nil {
				out = append(out, desugarMemoryImport(it.Memory))
				out = append(out, desugarExports(it.Memory.InlineExports, wasm.ExternalKindMemory, idx)...)
				continue
			}
			exports := it.Memory.InlineExports
			it.Memory.InlineExports = nil
			var inline *DataItem
			if len(it.Memory.InlineData) > 0 {
				init := it.Memory.InlineData[0]
				it.Memory.InlineData = nil
				inline = &DataItem{
					Mode:      wasm.DataModeActive,
					MemoryVar: wasm.IndexVar(idx),
					Offset:    []wasm.Instruction{{Opcode: wasm.OpcodeI32Const, Immediate: wasm.Immediate{Kind: wasm.ImmI32}}},
					Init:      init,
				}
			}
			out = append(out, it)
			out = append(out, desugarExports(exports, wasm.ExternalKindMemory, idx)...)
			if inline != nil {
				out = append(out, Item{Kind: ItemData, Data: inline})
			}

		case ItemGlobal:
			idx := globalIdx
			globalIdx++
			if it.Global.InlineImport != nil {
				out = append(out, desugarGlobalImport(it.Global))
				out = append(out, desugarExports(it.Global.InlineExports, wasm.ExternalKindGlobal, idx)...)
				continue
			}
			exports := it.Global.InlineExports
			it.Global.InlineExports = nil
			out = append(out, it)
			out = append(out, desugarExports(exports, wasm.ExternalKindGlobal, idx)...)

		case ItemEvent:
			idx := eventIdx
			eventIdx++
			if it.Event.InlineImport != nil {
				out = append(out, desugarEventImport(it.Event))
				out = append(out, desugarExports(it.Event.InlineExports, wasm.ExternalKindEvent, idx)...)
				continue
			}
			exports := it.Event.InlineExports
			it.Event.InlineExports = nil
			out = append(out, it)
			out = append(out, desugarExports(exports, wasm.ExternalKindEvent, idx)...)

		case ItemImport:
			switch it.Import.Kind {
			case wasm.ExternalKindFunc:
				funcIdx++
			case wasm.ExternalKindTable:
				tableIdx++
			case wasm.ExternalKindMemory:
				memIdx++
			case wasm.ExternalKindGlobal:
				globalIdx++
			case wasm.ExternalKindEvent:
				eventIdx++
			}
			out = append(out, it)

		default:
			out = append(out, it)
		}
	}

	m.Items = stableItemOrder(out)
}

func desugarFuncImport(fn *FuncItem) Item {
	imp := &ImportItem{
		Name: fn.Name, Module: fn.InlineImport.Module, Field: fn.InlineImport.Field,
		Kind: wasm.ExternalKindFunc, DescFunc: fn.Type, Loc: fn.Loc,
	}
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func desugarTableImport(t *TableItem) Item {
	tt := t.Type
	imp := &ImportItem{
		Name: t.Name, Module: t.InlineImport.Module, Field: t.InlineImport.Field,
		Kind: wasm.ExternalKindTable, DescTable: &tt, Loc: t.Loc,
	}
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func desugarMemoryImport(m *MemoryItem) Item {
	mt := m.Type
	imp := &ImportItem{
		Name: m.Name, Module: m.InlineImport.Module, Field: m.InlineImport.Field,
		Kind: wasm.ExternalKindMemory, DescMemory: &mt, Loc: m.Loc,
	}
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func desugarGlobalImport(g *GlobalItem) Item {
	gt := g.Type
	imp := &ImportItem{
		Name: g.Name, Module: g.InlineImport.Module, Field: g.InlineImport.Field,
		Kind: wasm.ExternalKindGlobal, DescGlobal: &gt, Loc: g.Loc,
	}
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func desugarEventImport(e *EventItem) Item {
	imp := &ImportItem{
		Name: e.Name, Module: e.InlineImport.Module, Field: e.InlineImport.Field,
		Kind: wasm.ExternalKindEvent, DescFunc: e.Type, Loc: e.Loc,
	}
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func desugarExports(exports []InlineExport, kind wasm.ExternalKind, idx wasm.Index) []Item {
	var out []Item
	for _, e := range exports {
		ex := &ExportItem{Name: e.Name, Kind: kind, Var: wasm.IndexVar(idx), Loc: e.Loc}
		out = append(out, Item{Kind: ItemExport, Loc: e.Loc, Export: ex})
	}
	return out
}

// stableItemOrder groups items by kind in the canonical section order
// while preserving each group's relative order, exactly as a binary
// encoder needs: types before imports before definitions before exports
// before the start function before segments.
func stableItemOrder(items []Item) []Item {
	order := []ItemKind{
		ItemType, ItemImport, ItemFunc, ItemTable, ItemMemory, ItemEvent,
		ItemGlobal, ItemExport, ItemStart, ItemElem, ItemData,
	}
	var out []Item
	for _, k := range order {
		for _, it := range items {
			if it.Kind == k {
				out = append(out, it)
			}
		}
	}
	return out
}
