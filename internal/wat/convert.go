package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// FromBinary bridges a decoded binary module into the text AST: the
// inverse of Resolve+Desugar, used by the wasm2wat conversion path. The
// result already has every Var in resolved (VarIndex) form, matching what
// Resolve would have produced, so FromBinary's output can go straight to a
// printer without another resolve pass.
//
// Function and local names recovered from an optional "name" custom
// section are attached so the emitted text uses symbolic identifiers for
// them. Block labels are not named; BlockImmediate.Label stays empty.
func FromBinary(m *wasm.Module) *Module {
	c := &converter{src: m, funcNames: map[wasm.Index]string{}, localNames: map[wasm.Index]map[wasm.Index]string{}}
	if m.NameSection != nil {
		for _, na := range m.NameSection.FunctionNames {
			c.funcNames[na.Index] = na.Name
		}
		for _, ina := range m.NameSection.LocalNames {
			lm := map[wasm.Index]string{}
			for _, na := range ina.Names {
				lm[na.Index] = na.Name
			}
			c.localNames[ina.Index] = lm
		}
	}
	return c.convertModule()
}

type converter struct {
	src        *wasm.Module
	funcNames  map[wasm.Index]string
	localNames map[wasm.Index]map[wasm.Index]string
}

func nameOf(names map[wasm.Index]string, idx wasm.Index) OptName {
	if n, ok := names[idx]; ok {
		return OptName{Present: true, Name: "$" + n}
	}
	return OptName{}
}

func (c *converter) convertModule() *Module {
	out := &Module{}

	for _, td := range c.src.TypeSection {
		if td.Kind != wasm.TypeDefFunc {
			// Struct/array type declarations have no text-format surface
			// yet; the text grammar for GC composite types is left to a
			// future extension of the parser/printer.
			continue
		}
		out.Items = append(out.Items, Item{Kind: ItemType, Type: &TypeItem{Type: *td.Func}})
	}

	funcIdx, tableIdx, memIdx, globalIdx, eventIdx := wasm.Index(0), wasm.Index(0), wasm.Index(0), wasm.Index(0), wasm.Index(0)
	for _, imp := range c.src.ImportSection {
		item := ImportItem{Module: imp.Module, Field: imp.Name, Kind: imp.Kind}
		switch imp.Kind {
		case wasm.ExternalKindFunc:
			item.Name = nameOf(c.funcNames, funcIdx)
			item.DescFunc = TypeUse{HasIndex: true, Index: wasm.IndexVar(imp.DescFunc), HasExplicit: true, Type: *c.src.FuncTypeAt(imp.DescFunc)}
			funcIdx++
		case wasm.ExternalKindTable:
			item.DescTable = imp.DescTable
			tableIdx++
		case wasm.ExternalKindMemory:
			item.DescMemory = imp.DescMemory
			memIdx++
		case wasm.ExternalKindGlobal:
			item.DescGlobal = imp.DescGlobal
			globalIdx++
		case wasm.ExternalKindEvent:
			item.DescFunc = TypeUse{HasIndex: true, Index: wasm.IndexVar(imp.DescFunc)}
			eventIdx++
		}
		out.Items = append(out.Items, Item{Kind: ItemImport, Import: &item})
	}

	for i, typeIdx := range c.src.FunctionSection {
		idx := funcIdx + wasm.Index(i)
		code := c.src.CodeSection[i]
		fn := &FuncItem{
			Name: nameOf(c.funcNames, idx),
			Type: TypeUse{HasIndex: true, Index: wasm.IndexVar(typeIdx), HasExplicit: true, Type: *c.src.FuncTypeAt(typeIdx)},
			Body: code.Body,
		}
		locals := c.localNames[idx]
		for li, vt := range code.LocalTypes {
			fn.Locals = append(fn.Locals, LocalDecl{Name: nameOf(locals, wasm.Index(li)), Type: vt})
		}
		out.Items = append(out.Items, Item{Kind: ItemFunc, Func: fn})
	}

	for _, t := range c.src.TableSection {
		out.Items = append(out.Items, Item{Kind: ItemTable, Table: &TableItem{Type: *t}})
	}
	for _, mem := range c.src.MemorySection {
		out.Items = append(out.Items, Item{Kind: ItemMemory, Memory: &MemoryItem{Type: *mem}})
	}
	for _, g := range c.src.GlobalSection {
		out.Items = append(out.Items, Item{Kind: ItemGlobal, Global: &GlobalItem{Type: g.Type, Init: g.Init.Instructions}})
	}
	for _, ev := range c.src.EventSection {
		out.Items = append(out.Items, Item{Kind: ItemEvent, Event: &EventItem{Type: TypeUse{HasIndex: true, Index: wasm.IndexVar(ev.Type)}}})
	}

	for _, exp := range c.src.ExportSection {
		out.Items = append(out.Items, Item{Kind: ItemExport, Export: &ExportItem{Name: exp.Name, Kind: exp.Kind, Var: wasm.IndexVar(exp.Index)}})
	}
	if c.src.StartSection != nil {
		out.Items = append(out.Items, Item{Kind: ItemStart, Start: &StartItem{Var: wasm.IndexVar(*c.src.StartSection)}})
	}
	for _, el := range c.src.ElementSection {
		out.Items = append(out.Items, Item{Kind: ItemElem, Elem: convertElem(el)})
	}
	for _, d := range c.src.DataSection {
		out.Items = append(out.Items, Item{Kind: ItemData, Data: &DataItem{
			Mode: d.Mode, MemoryVar: wasm.IndexVar(d.MemoryIndex), Offset: d.Offset.Instructions, Init: d.Init,
		}})
	}

	return out
}

// ToBinary is the inverse of FromBinary: it lowers a resolved, desugared
// text Module into a *wasm.Module, the shape DecodeModule itself produces.
// It is the AST-shape half of wat2wasm; turning the result into bytes is
// left to the CLI's own text encoder rather than the codec core.
// Every item must already be canonical (no inline import/export/segment
// sugar: desugar's job) and every Var must already be resolved (resolve's
// job) — ToBinary does not re-run either pass.
func ToBinary(m *Module) *wasm.Module {
	out := &wasm.Module{}
	for _, it := range m.Items {
		switch it.Kind {
		case ItemType:
			out.TypeSection = append(out.TypeSection, &wasm.TypeDef{Kind: wasm.TypeDefFunc, Func: &it.Type.Type})
		case ItemImport:
			out.ImportSection = append(out.ImportSection, toBinaryImport(it.Import))
		case ItemFunc:
			out.FunctionSection = append(out.FunctionSection, it.Func.Type.Index.Index)
			out.CodeSection = append(out.CodeSection, toBinaryCode(it.Func))
		case ItemTable:
			t := it.Table.Type
			out.TableSection = append(out.TableSection, &t)
		case ItemMemory:
			mt := it.Memory.Type
			out.MemorySection = append(out.MemorySection, &mt)
		case ItemGlobal:
			out.GlobalSection = append(out.GlobalSection, &wasm.Global{
				Type: it.Global.Type,
				Init: wasm.ConstantExpression{Instructions: it.Global.Init},
			})
		case ItemExport:
			out.ExportSection = append(out.ExportSection, &wasm.Export{
				Name: it.Export.Name, Kind: it.Export.Kind, Index: it.Export.Var.Index,
			})
		case ItemStart:
			idx := it.Start.Var.Index
			out.StartSection = &idx
		case ItemElem:
			out.ElementSection = append(out.ElementSection, toBinaryElem(it.Elem))
		case ItemData:
			out.DataSection = append(out.DataSection, &wasm.DataSegment{
				Mode: it.Data.Mode, MemoryIndex: it.Data.MemoryVar.Index,
				Offset: wasm.ConstantExpression{Instructions: it.Data.Offset}, Init: it.Data.Init,
			})
		case ItemEvent:
			out.EventSection = append(out.EventSection, &wasm.Event{Type: it.Event.Type.Index.Index})
		}
	}
	return out
}

func toBinaryImport(imp *ImportItem) *wasm.Import {
	out := &wasm.Import{Module: imp.Module, Name: imp.Field, Kind: imp.Kind, Loc: imp.Loc}
	switch imp.Kind {
	case wasm.ExternalKindFunc, wasm.ExternalKindEvent:
		out.DescFunc = imp.DescFunc.Index.Index
	case wasm.ExternalKindTable:
		out.DescTable = imp.DescTable
	case wasm.ExternalKindMemory:
		out.DescMemory = imp.DescMemory
	case wasm.ExternalKindGlobal:
		out.DescGlobal = imp.DescGlobal
	}
	return out
}

func toBinaryCode(fn *FuncItem) *wasm.Code {
	code := &wasm.Code{Body: fn.Body, Loc: fn.Loc}
	for _, l := range fn.Locals {
		code.LocalTypes = append(code.LocalTypes, l.Type)
	}
	return code
}

func toBinaryElem(el *ElemItem) *wasm.ElementSegment {
	out := &wasm.ElementSegment{
		Mode: el.Mode, TableIndex: el.TableVar.Index,
		Offset: wasm.ConstantExpression{Instructions: el.Offset}, Type: el.RefType,
	}
	if el.UseExprs {
		out.AreInitExprs = true
		for _, e := range el.Exprs {
			out.InitExprs = append(out.InitExprs, wasm.ConstantExpression{Instructions: e})
		}
		return out
	}
	for _, v := range el.Vars {
		out.Init = append(out.Init, v.Index)
	}
	return out
}

func convertElem(el *wasm.ElementSegment) *ElemItem {
	out := &ElemItem{Mode: el.Mode, TableVar: wasm.IndexVar(el.TableIndex), Offset: el.Offset.Instructions, RefType: el.Type}
	if el.AreInitExprs {
		out.UseExprs = true
		for _, ce := range el.InitExprs {
			out.Exprs = append(out.Exprs, ce.Instructions)
		}
		return out
	}
	for _, idx := range el.Init {
		out.Vars = append(out.Vars, wasm.IndexVar(idx))
	}
	return out
}
