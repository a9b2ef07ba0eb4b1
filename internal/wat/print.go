package wat

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// Print renders a resolved Module as .wat text, in the unfolded (linear)
// instruction style: every instruction on its own line, block/loop/if
// bodies indented under their header and closed with an explicit `end`.
// This is always legal wat (the folded S-expression form is sugar the
// reader accepts but a writer never needs), and it is the style
// wasm2wat's output compares well against since every instruction keeps
// its own line for diffing.
func Print(m *Module) string {
	var b strings.Builder
	b.WriteString("(module\n")
	for _, it := range m.Items {
		printItem(&b, it)
	}
	b.WriteString(")\n")
	return b.String()
}

func printItem(b *strings.Builder, it Item) {
	switch it.Kind {
	case ItemType:
		fmt.Fprintf(b, "  (type%s (func%s))\n", optNameSuffix(it.Type.Name), funcTypeSuffix(it.Type.Type))
	case ItemImport:
		printImport(b, it.Import)
	case ItemFunc:
		printFunc(b, it.Func)
	case ItemTable:
		t := it.Table.Type
		fmt.Fprintf(b, "  (table%s %s)\n", optNameSuffix(it.Table.Name), tableTypeString(t))
	case ItemMemory:
		fmt.Fprintf(b, "  (memory%s %s)\n", optNameSuffix(it.Memory.Name), limitsString(it.Memory.Type.Limits))
	case ItemGlobal:
		printGlobal(b, it.Global)
	case ItemExport:
		fmt.Fprintf(b, "  (export %q (%s %s))\n", it.Export.Name, it.Export.Kind, varString(it.Export.Var))
	case ItemStart:
		fmt.Fprintf(b, "  (start %s)\n", varString(it.Start.Var))
	case ItemElem:
		printElem(b, it.Elem)
	case ItemData:
		printData(b, it.Data)
	case ItemEvent:
		fmt.Fprintf(b, "  (event%s%s)\n", optNameSuffix(it.Event.Name), typeUseSuffix(it.Event.Type))
	}
}

func optNameSuffix(n OptName) string {
	if !n.Present {
		return ""
	}
	return " " + n.Name
}

func funcTypeSuffix(ft wasm.FunctionType) string {
	var b strings.Builder
	for _, p := range ft.Params {
		fmt.Fprintf(&b, " (param %s)", p)
	}
	for _, r := range ft.Results {
		fmt.Fprintf(&b, " (result %s)", r)
	}
	return b.String()
}

func typeUseSuffix(tu TypeUse) string {
	if tu.HasIndex {
		return fmt.Sprintf(" (type %s)", varString(tu.Index))
	}
	return funcTypeSuffix(tu.Type)
}

func varString(v wasm.Var) string {
	if v.Kind == wasm.VarName {
		return v.Name
	}
	return strconv.FormatUint(uint64(v.Index), 10)
}

func limitsString(l wasm.Limits) string {
	if l.Max != nil {
		return fmt.Sprintf("%d %d", l.Min, *l.Max)
	}
	return strconv.FormatUint(uint64(l.Min), 10)
}

func refTypeString(rt wasm.RefType) string {
	if rt.Heap.Kind == wasm.HeapKindFunc {
		return "funcref"
	}
	if rt.Heap.Kind == wasm.HeapKindExtern {
		return "externref"
	}
	return rt.Heap.String() + "ref"
}

func tableTypeString(t wasm.TableType) string {
	return limitsString(t.Limits) + " " + refTypeString(t.ElemType)
}

func globalTypeString(g wasm.GlobalType) string {
	if g.Mutable {
		return fmt.Sprintf("(mut %s)", g.ValType)
	}
	return g.ValType.String()
}

func printImport(b *strings.Builder, imp *ImportItem) {
	var desc string
	switch imp.Kind {
	case wasm.ExternalKindFunc:
		desc = "(func" + optNameSuffix(imp.Name) + typeUseSuffix(imp.DescFunc) + ")"
	case wasm.ExternalKindTable:
		desc = "(table" + optNameSuffix(imp.Name) + " " + tableTypeString(*imp.DescTable) + ")"
	case wasm.ExternalKindMemory:
		desc = "(memory" + optNameSuffix(imp.Name) + " " + limitsString(imp.DescMemory.Limits) + ")"
	case wasm.ExternalKindGlobal:
		desc = "(global" + optNameSuffix(imp.Name) + " " + globalTypeString(*imp.DescGlobal) + ")"
	case wasm.ExternalKindEvent:
		desc = "(event" + optNameSuffix(imp.Name) + typeUseSuffix(imp.DescFunc) + ")"
	}
	fmt.Fprintf(b, "  (import %q %q %s)\n", imp.Module, imp.Field, desc)
}

func printFunc(b *strings.Builder, fn *FuncItem) {
	fmt.Fprintf(b, "  (func%s%s", optNameSuffix(fn.Name), typeUseSuffix(fn.Type))
	for _, l := range fn.Locals {
		fmt.Fprintf(b, " (local%s %s)", optNameSuffix(l.Name), l.Type)
	}
	b.WriteString("\n")
	printInstructions(b, fn.Body, 2)
	b.WriteString("  )\n")
}

func printGlobal(b *strings.Builder, g *GlobalItem) {
	fmt.Fprintf(b, "  (global%s %s ", optNameSuffix(g.Name), globalTypeString(g.Type))
	printInstructionsInline(b, g.Init)
	b.WriteString(")\n")
}

func printElem(b *strings.Builder, el *ElemItem) {
	fmt.Fprintf(b, "  (elem%s", optNameSuffix(el.Name))
	switch el.Mode {
	case wasm.ElementModeActive:
		fmt.Fprintf(b, " (table %s) (offset ", varString(el.TableVar))
		printInstructionsInline(b, el.Offset)
		b.WriteString(")")
	case wasm.ElementModeDeclared:
		b.WriteString(" declare")
	}
	if el.UseExprs {
		fmt.Fprintf(b, " %s", refTypeString(el.RefType))
		for _, e := range el.Exprs {
			b.WriteString(" (item ")
			printInstructionsInline(b, e)
			b.WriteString(")")
		}
	} else {
		b.WriteString(" func")
		for _, v := range el.Vars {
			fmt.Fprintf(b, " %s", varString(v))
		}
	}
	b.WriteString(")\n")
}

func printData(b *strings.Builder, d *DataItem) {
	fmt.Fprintf(b, "  (data%s", optNameSuffix(d.Name))
	if d.Mode == wasm.DataModeActive {
		fmt.Fprintf(b, " (memory %s) (offset ", varString(d.MemoryVar))
		printInstructionsInline(b, d.Offset)
		b.WriteString(")")
	}
	fmt.Fprintf(b, " %q)\n", escapeDataString(d.Init))
}

func escapeDataString(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "\\%02x", c)
	}
	return b.String()
}

func printInstructionsInline(b *strings.Builder, body []wasm.Instruction) {
	for i, in := range body {
		if in.Opcode == wasm.OpcodeEnd {
			continue
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(instructionText(in))
	}
}

func printInstructions(b *strings.Builder, body []wasm.Instruction, indent int) {
	depth := indent
	for _, in := range body {
		switch in.Opcode {
		case wasm.OpcodeElse, wasm.OpcodeCatch, wasm.OpcodeCatchAll:
			fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", depth-2), instructionText(in))
			continue
		case wasm.OpcodeEnd:
			depth -= 2
			fmt.Fprintf(b, "%send\n", strings.Repeat(" ", depth))
			continue
		}
		fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", depth), instructionText(in))
		switch in.Opcode {
		case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf, wasm.OpcodeTry:
			depth += 2
		}
	}
}

// instructionText renders one instruction's mnemonic plus its flat
// immediate. Opcode.Lookup/LookupMisc/LookupSIMD are the same reverse
// tables the text parser's keyword lookup is generated from, so the
// spelling emitted here is always one the parser accepts back.
func instructionText(in wasm.Instruction) string {
	mnemonic := opcodeMnemonic(in)
	imm := immediateText(in)
	if imm == "" {
		return mnemonic
	}
	return mnemonic + " " + imm
}

func opcodeMnemonic(in wasm.Instruction) string {
	switch in.Opcode {
	case wasm.OpcodeMiscPrefix:
		if info, ok := wasm.LookupMisc(in.Secondary); ok {
			return info.Mnemonic
		}
	case wasm.OpcodeSIMDPrefix:
		if info, ok := wasm.LookupSIMD(in.Secondary); ok {
			return info.Mnemonic
		}
	}
	if info, ok := in.Opcode.Lookup(); ok {
		if in.Opcode == wasm.OpcodeSelectT {
			return "select"
		}
		return info.Mnemonic
	}
	return fmt.Sprintf("unknown-0x%02x", byte(in.Opcode))
}

func immediateText(in wasm.Instruction) string {
	imm := in.Immediate
	switch imm.Kind {
	case wasm.ImmNone:
		return ""
	case wasm.ImmI32:
		return strconv.FormatInt(int64(imm.I32), 10)
	case wasm.ImmI64:
		return strconv.FormatInt(imm.I64, 10)
	case wasm.ImmF32:
		return floatText(uint64(imm.F32), 32)
	case wasm.ImmF64:
		return floatText(imm.F64, 64)
	case wasm.ImmVar, wasm.ImmIndex:
		return varString(imm.Var)
	case wasm.ImmMemArg:
		return memArgText(imm.MemArg)
	case wasm.ImmBlock:
		var parts []string
		if imm.Block.Label != "" {
			parts = append(parts, imm.Block.Label)
		}
		switch imm.Block.Type.Kind {
		case wasm.BlockTypeValue:
			parts = append(parts, fmt.Sprintf("(result %s)", imm.Block.Type.ValueType))
		case wasm.BlockTypeFuncType:
			parts = append(parts, fmt.Sprintf("(type %d)", imm.Block.Type.TypeIndex))
		}
		return strings.Join(parts, " ")
	case wasm.ImmBrTable:
		var parts []string
		for _, l := range imm.BrTable.Labels {
			parts = append(parts, varString(l))
		}
		parts = append(parts, varString(imm.BrTable.Default))
		return strings.Join(parts, " ")
	case wasm.ImmCallIndirect:
		return fmt.Sprintf("%s (type %s)", varString(imm.CallIndirect.Table), varString(imm.CallIndirect.Type))
	case wasm.ImmCopy:
		return fmt.Sprintf("%s %s", varString(imm.Copy.Dst), varString(imm.Copy.Src))
	case wasm.ImmSegmentDst:
		return fmt.Sprintf("%s %s", varString(imm.Segment.Segment), varString(imm.Segment.Dst))
	case wasm.ImmHeapType:
		return imm.Heap.String()
	case wasm.ImmSelectT:
		var parts []string
		for _, vt := range imm.ValueTypes {
			parts = append(parts, fmt.Sprintf("(result %s)", vt))
		}
		return strings.Join(parts, " ")
	case wasm.ImmSimdLane:
		return strconv.Itoa(int(imm.Lane))
	case wasm.ImmSimdMemoryLane:
		return memArgText(imm.SimdMemoryLane.MemArg) + " " + strconv.Itoa(int(imm.SimdMemoryLane.Lane))
	case wasm.ImmV128:
		var parts []string
		for _, b := range imm.V128 {
			parts = append(parts, strconv.Itoa(int(b)))
		}
		return "i8x16 " + strings.Join(parts, " ")
	case wasm.ImmShuffle:
		var parts []string
		for _, b := range imm.Shuffle {
			parts = append(parts, strconv.Itoa(int(b)))
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// floatText renders a raw-bits float immediate as a literal the lexer
// accepts back: inf/nan (with a payload suffix for non-canonical NaNs) for
// the non-finite encodings, the exact hex-float form otherwise.
func floatText(bits uint64, width int) string {
	var neg bool
	var exp, mant, canonicalNaN, maxExp uint64
	var f float64
	if width == 32 {
		neg = bits>>31 != 0
		exp, mant = (bits>>23)&0xff, bits&0x7fffff
		canonicalNaN, maxExp = 0x400000, 0xff
		f = float64(math.Float32frombits(uint32(bits)))
	} else {
		neg = bits>>63 != 0
		exp, mant = (bits>>52)&0x7ff, bits&0xfffffffffffff
		canonicalNaN, maxExp = 0x8000000000000, 0x7ff
		f = math.Float64frombits(bits)
	}
	if exp == maxExp {
		sign := ""
		if neg {
			sign = "-"
		}
		switch mant {
		case 0:
			return sign + "inf"
		case canonicalNaN:
			return sign + "nan"
		default:
			return sign + fmt.Sprintf("nan:0x%x", mant)
		}
	}
	return strconv.FormatFloat(f, 'x', -1, width)
}

func memArgText(ma wasm.MemArg) string {
	s := ""
	if ma.Offset != 0 {
		s += fmt.Sprintf("offset=%d", ma.Offset)
	}
	if ma.AlignLog2 != 0 {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("align=%d", uint32(1)<<ma.AlignLog2)
	}
	return s
}
