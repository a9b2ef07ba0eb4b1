package main

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/WebAssembly/wasp-sub003/internal/leb128"
	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// encodeModule is the `wat2wasm` command's text→binary lowering. It lives
// in the CLI package rather than internal/wasm/binary: it is an external
// collaborator consuming a resolved, desugared *wat.Module the same way
// the CLI consumes every other core output. It covers the instruction and
// section shapes the text parser itself produces (MVP, multi-value,
// bulk-memory, reference-types, SIMD, exceptions); GC/function-references
// immediates the parser does not yet accept in text have no encoder path
// either.
func encodeModule(m *wasm.Module) ([]byte, error) {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	out.Write([]byte{0x01, 0x00, 0x00, 0x00})

	if len(m.TypeSection) > 0 {
		if err := encodeSection(&out, 1, encodeTypeSection(m.TypeSection)); err != nil {
			return nil, err
		}
	}
	if len(m.ImportSection) > 0 {
		payload, err := encodeImportSection(m.ImportSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 2, payload); err != nil {
			return nil, err
		}
	}
	if len(m.FunctionSection) > 0 {
		var b bytes.Buffer
		writeVec(&b, len(m.FunctionSection), func(i int) { writeU32(&b, m.FunctionSection[i]) })
		if err := encodeSection(&out, 3, b.Bytes()); err != nil {
			return nil, err
		}
	}
	if len(m.TableSection) > 0 {
		var b bytes.Buffer
		writeVec(&b, len(m.TableSection), func(i int) { writeTableType(&b, m.TableSection[i]) })
		if err := encodeSection(&out, 4, b.Bytes()); err != nil {
			return nil, err
		}
	}
	if len(m.MemorySection) > 0 {
		var b bytes.Buffer
		writeVec(&b, len(m.MemorySection), func(i int) { writeLimits(&b, m.MemorySection[i].Limits) })
		if err := encodeSection(&out, 5, b.Bytes()); err != nil {
			return nil, err
		}
	}
	if len(m.EventSection) > 0 {
		var b bytes.Buffer
		writeVec(&b, len(m.EventSection), func(i int) {
			b.WriteByte(0) // attribute: exception
			writeU32(&b, m.EventSection[i].Type)
		})
		if err := encodeSection(&out, 13, b.Bytes()); err != nil {
			return nil, err
		}
	}
	if len(m.GlobalSection) > 0 {
		payload, err := encodeGlobalSection(m.GlobalSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 6, payload); err != nil {
			return nil, err
		}
	}
	if len(m.ExportSection) > 0 {
		payload, err := encodeExportSection(m.ExportSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 7, payload); err != nil {
			return nil, err
		}
	}
	if m.StartSection != nil {
		var b bytes.Buffer
		writeU32(&b, *m.StartSection)
		if err := encodeSection(&out, 8, b.Bytes()); err != nil {
			return nil, err
		}
	}
	if len(m.ElementSection) > 0 {
		payload, err := encodeElementSection(m.ElementSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 9, payload); err != nil {
			return nil, err
		}
	}
	if len(m.CodeSection) > 0 {
		payload, err := encodeCodeSection(m.CodeSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 10, payload); err != nil {
			return nil, err
		}
	}
	if len(m.DataSection) > 0 {
		payload, err := encodeDataSection(m.DataSection)
		if err != nil {
			return nil, err
		}
		if err := encodeSection(&out, 11, payload); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

func encodeSection(out *bytes.Buffer, id byte, payload []byte) error {
	out.WriteByte(id)
	writeU32(out, uint32(len(payload)))
	out.Write(payload)
	return nil
}

func writeVec(b *bytes.Buffer, n int, elem func(i int)) {
	writeU32(b, uint32(n))
	for i := 0; i < n; i++ {
		elem(i)
	}
}

func writeU32(b *bytes.Buffer, v uint32) { b.Write(leb128.EncodeUint32(v)) }
func writeI32(b *bytes.Buffer, v int32)  { b.Write(leb128.EncodeInt32(v)) }
func writeI64(b *bytes.Buffer, v int64)  { b.Write(leb128.EncodeInt64(v)) }

func writeName(b *bytes.Buffer, s string) {
	writeU32(b, uint32(len(s)))
	b.WriteString(s)
}

func writeLimits(b *bytes.Buffer, l wasm.Limits) {
	if l.Max != nil {
		b.WriteByte(1)
		writeU32(b, l.Min)
		writeU32(b, *l.Max)
		return
	}
	b.WriteByte(0)
	writeU32(b, l.Min)
}

func writeValueType(b *bytes.Buffer, vt wasm.ValueType) { b.WriteByte(byte(vt)) }

func writeRefType(b *bytes.Buffer, rt wasm.RefType) {
	switch rt.Heap.Kind {
	case wasm.HeapKindFunc:
		b.WriteByte(byte(wasm.ValueTypeFuncref))
	case wasm.HeapKindExtern:
		b.WriteByte(byte(wasm.ValueTypeExternref))
	default:
		b.WriteByte(byte(wasm.ValueTypeFuncref))
	}
}

func writeTableType(b *bytes.Buffer, t *wasm.TableType) {
	writeRefType(b, t.ElemType)
	writeLimits(b, t.Limits)
}

func encodeTypeSection(types []*wasm.TypeDef) []byte {
	var b bytes.Buffer
	writeVec(&b, len(types), func(i int) {
		td := types[i]
		switch td.Kind {
		case wasm.TypeDefFunc:
			b.WriteByte(0x60)
			writeVec(&b, len(td.Func.Params), func(j int) { writeValueType(&b, td.Func.Params[j]) })
			writeVec(&b, len(td.Func.Results), func(j int) { writeValueType(&b, td.Func.Results[j]) })
		default:
			// Struct/array declarations have no text-format surface yet
			// (internal/wat/convert.go's documented scope line); emit an
			// empty function type rather than corrupt the stream.
			b.WriteByte(0x60)
			writeU32(&b, 0)
			writeU32(&b, 0)
		}
	})
	return b.Bytes()
}

func encodeImportSection(imports []*wasm.Import) ([]byte, error) {
	var b bytes.Buffer
	var encErr error
	writeVec(&b, len(imports), func(i int) {
		imp := imports[i]
		writeName(&b, imp.Module)
		writeName(&b, imp.Name)
		b.WriteByte(byte(imp.Kind))
		switch imp.Kind {
		case wasm.ExternalKindFunc:
			writeU32(&b, imp.DescFunc)
		case wasm.ExternalKindTable:
			writeTableType(&b, imp.DescTable)
		case wasm.ExternalKindMemory:
			writeLimits(&b, imp.DescMemory.Limits)
		case wasm.ExternalKindGlobal:
			writeValueType(&b, imp.DescGlobal.ValType)
			writeBool(&b, imp.DescGlobal.Mutable)
		case wasm.ExternalKindEvent:
			b.WriteByte(0) // attribute: exception
			writeU32(&b, imp.DescFunc)
		default:
			encErr = errors.Errorf("import %s.%s: unsupported kind %v", imp.Module, imp.Name, imp.Kind)
		}
	})
	return b.Bytes(), encErr
}

func writeBool(b *bytes.Buffer, v bool) {
	if v {
		b.WriteByte(1)
		return
	}
	b.WriteByte(0)
}

func encodeGlobalSection(globals []*wasm.Global) ([]byte, error) {
	var b bytes.Buffer
	var encErr error
	writeVec(&b, len(globals), func(i int) {
		g := globals[i]
		writeValueType(&b, g.Type.ValType)
		writeBool(&b, g.Type.Mutable)
		if err := encodeConstExpr(&b, g.Init.Instructions); err != nil {
			encErr = err
		}
	})
	return b.Bytes(), encErr
}

func encodeExportSection(exports []*wasm.Export) ([]byte, error) {
	var b bytes.Buffer
	writeVec(&b, len(exports), func(i int) {
		e := exports[i]
		writeName(&b, e.Name)
		b.WriteByte(byte(e.Kind))
		writeU32(&b, e.Index)
	})
	return b.Bytes(), nil
}

func encodeElementSection(elems []*wasm.ElementSegment) ([]byte, error) {
	var b bytes.Buffer
	var encErr error
	writeVec(&b, len(elems), func(i int) {
		el := elems[i]
		if el.Mode != wasm.ElementModeActive || el.TableIndex != 0 {
			encErr = errors.New("element segment: only active table-0 segments are supported by the encoder")
			return
		}
		writeU32(&b, 0)
		if err := encodeConstExpr(&b, el.Offset.Instructions); err != nil {
			encErr = err
			return
		}
		writeVec(&b, len(el.Init), func(j int) { writeU32(&b, el.Init[j]) })
	})
	return b.Bytes(), encErr
}

func encodeDataSection(segs []*wasm.DataSegment) ([]byte, error) {
	var b bytes.Buffer
	var encErr error
	writeVec(&b, len(segs), func(i int) {
		d := segs[i]
		switch d.Mode {
		case wasm.DataModeActive:
			if d.MemoryIndex == 0 {
				writeU32(&b, 0)
			} else {
				writeU32(&b, 2)
				writeU32(&b, d.MemoryIndex)
			}
			if err := encodeConstExpr(&b, d.Offset.Instructions); err != nil {
				encErr = err
				return
			}
		case wasm.DataModePassive:
			writeU32(&b, 1)
		}
		writeU32(&b, uint32(len(d.Init)))
		b.Write(d.Init)
	})
	return b.Bytes(), encErr
}

func encodeCodeSection(codes []*wasm.Code) ([]byte, error) {
	var b bytes.Buffer
	var encErr error
	writeVec(&b, len(codes), func(i int) {
		body, err := encodeFunctionBody(codes[i])
		if err != nil {
			encErr = err
			return
		}
		writeU32(&b, uint32(len(body)))
		b.Write(body)
	})
	return b.Bytes(), encErr
}

func encodeFunctionBody(c *wasm.Code) ([]byte, error) {
	var b bytes.Buffer
	// Run-length encode consecutive identically-typed locals, matching the
	// (count, type) pack grammar the code-section decoder expects.
	type run struct {
		n  uint32
		vt wasm.ValueType
	}
	var runs []run
	for _, vt := range c.LocalTypes {
		if len(runs) > 0 && runs[len(runs)-1].vt == vt {
			runs[len(runs)-1].n++
			continue
		}
		runs = append(runs, run{1, vt})
	}
	writeVec(&b, len(runs), func(i int) {
		writeU32(&b, runs[i].n)
		writeValueType(&b, runs[i].vt)
	})
	if err := encodeInstructions(&b, c.Body); err != nil {
		return nil, err
	}
	b.WriteByte(byte(wasm.OpcodeEnd))
	return b.Bytes(), nil
}

func encodeConstExpr(b *bytes.Buffer, insts []wasm.Instruction) error {
	if err := encodeInstructions(b, insts); err != nil {
		return err
	}
	b.WriteByte(byte(wasm.OpcodeEnd))
	return nil
}

func encodeInstructions(b *bytes.Buffer, insts []wasm.Instruction) error {
	for _, in := range insts {
		if err := encodeInstruction(b, in); err != nil {
			return err
		}
	}
	return nil
}

func encodeInstruction(b *bytes.Buffer, in wasm.Instruction) error {
	b.WriteByte(byte(in.Opcode))
	switch in.Opcode {
	case wasm.OpcodeMiscPrefix, wasm.OpcodeSIMDPrefix, wasm.OpcodeAtomicPrefix:
		writeU32(b, in.Secondary)
	}
	switch in.Immediate.Kind {
	case wasm.ImmNone:
	case wasm.ImmI32:
		writeI32(b, in.Immediate.I32)
	case wasm.ImmI64:
		writeI64(b, in.Immediate.I64)
	case wasm.ImmF32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.Immediate.F32)
		b.Write(buf[:])
	case wasm.ImmF64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], in.Immediate.F64)
		b.Write(buf[:])
	case wasm.ImmV128:
		b.Write(in.Immediate.V128[:])
	case wasm.ImmVar, wasm.ImmIndex:
		if !in.Immediate.Var.IsResolved() {
			return errors.Errorf("%s: unresolved variable %s", in.Opcode, in.Immediate.Var)
		}
		writeU32(b, in.Immediate.Var.Index)
	case wasm.ImmMemArg:
		writeU32(b, in.Immediate.MemArg.AlignLog2)
		writeU32(b, in.Immediate.MemArg.Offset)
	case wasm.ImmSimdMemoryLane:
		writeU32(b, in.Immediate.SimdMemoryLane.MemArg.AlignLog2)
		writeU32(b, in.Immediate.SimdMemoryLane.MemArg.Offset)
		b.WriteByte(in.Immediate.SimdMemoryLane.Lane)
	case wasm.ImmSimdLane:
		b.WriteByte(in.Immediate.Lane)
	case wasm.ImmShuffle:
		b.Write(in.Immediate.Shuffle[:])
	case wasm.ImmCopy:
		writeU32(b, in.Immediate.Copy.Dst.Index)
		writeU32(b, in.Immediate.Copy.Src.Index)
	case wasm.ImmSegmentDst:
		writeU32(b, in.Immediate.Segment.Segment.Index)
		writeU32(b, in.Immediate.Segment.Dst.Index)
	case wasm.ImmCallIndirect:
		writeU32(b, in.Immediate.CallIndirect.Type.Index)
		writeU32(b, in.Immediate.CallIndirect.Table.Index)
	case wasm.ImmBrTable:
		writeVec(b, len(in.Immediate.BrTable.Labels), func(i int) {
			writeU32(b, in.Immediate.BrTable.Labels[i].Index)
		})
		writeU32(b, in.Immediate.BrTable.Default.Index)
	case wasm.ImmHeapType:
		writeRefType(b, wasm.RefType{Nullable: true, Heap: in.Immediate.Heap})
	case wasm.ImmSelectT:
		writeVec(b, len(in.Immediate.ValueTypes), func(i int) { writeValueType(b, in.Immediate.ValueTypes[i]) })
	case wasm.ImmBlock:
		return encodeBlockType(b, in.Immediate.Block.Type)
	default:
		return errors.Errorf("%s: immediate kind %d has no encoder (outside the text parser's supported surface)", in.Opcode, in.Immediate.Kind)
	}
	return nil
}

func encodeBlockType(b *bytes.Buffer, bt wasm.BlockType) error {
	switch bt.Kind {
	case wasm.BlockTypeVoid:
		b.Write(leb128.EncodeInt64(-0x40))
	case wasm.BlockTypeValue:
		// A single inline value type is the sLEB whose low 7 bits are the
		// type byte: 0x7f (i32) encodes as -0x01, 0x70 (funcref) as -0x10.
		b.Write(leb128.EncodeInt64(int64(bt.ValueType) - 0x80))
	case wasm.BlockTypeFuncType:
		b.Write(leb128.EncodeInt64(int64(bt.TypeIndex)))
	default:
		return fmt.Errorf("unknown block type kind %d", bt.Kind)
	}
	return nil
}
