package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// decodeExpr decodes a flat instruction sequence up to and including its
// matching top-level `end`, which is consumed but not appended — mirroring
// Code.Body's documented contract. Nested block/loop/if/try bodies stay
// flat in the returned slice; only depth bookkeeping distinguishes a
// structured instruction's own `end` from the expression's terminator.
func decodeExpr(c *cursor, features wasm.Features, sink *wasm.Sink) ([]wasm.Instruction, error) {
	var out []wasm.Instruction
	depth := 0
	for {
		start := c.offset()
		op, err := c.readByte()
		if err != nil {
			return out, fmt.Errorf("%w: missing end", ErrNotEnoughBytes)
		}
		opcode := wasm.Opcode(op)

		if opcode == wasm.OpcodeEnd && depth == 0 {
			return out, nil
		}

		inst, err := decodeOneInstruction(c, opcode, features, sink, start)
		if err != nil {
			return out, err
		}

		switch opcode {
		case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf, wasm.OpcodeTry:
			depth++
		case wasm.OpcodeEnd:
			depth--
		}
		out = append(out, inst)
	}
}

// decodeConstExpr decodes a const-expr (global/element/data initializer):
// the same instruction grammar as decodeExpr, restricted to the opcodes
// legal in const-expr position.
func decodeConstExpr(c *cursor, features wasm.Features, sink *wasm.Sink) (wasm.ConstantExpression, error) {
	start := c.offset()
	insts, err := decodeExpr(c, features, sink)
	if err != nil {
		return wasm.ConstantExpression{}, err
	}
	for _, in := range insts {
		if !isConstExprInstruction(in) {
			err := fmt.Errorf("%w: %s", ErrIllegalInstructionInConstExpr, in.Opcode)
			sink.Report(in.Loc, "%v", err)
			return wasm.ConstantExpression{}, err
		}
	}
	return wasm.ConstantExpression{Instructions: insts, Loc: c.rangeFrom(start)}, nil
}

// simdSecondaryV128Const is i8x16 v128.const's secondary opcode behind
// OpcodeSIMDPrefix; const-expr checking needs it by value since a decoded
// SIMD instruction carries only the prefix in Opcode.
const simdSecondaryV128Const = 0x0c

func isConstExprInstruction(in wasm.Instruction) bool {
	switch in.Opcode {
	case wasm.OpcodeI32Const, wasm.OpcodeI64Const, wasm.OpcodeF32Const, wasm.OpcodeF64Const,
		wasm.OpcodeGlobalGet, wasm.OpcodeRefNull, wasm.OpcodeRefFunc, wasm.OpcodeEnd:
		return true
	case wasm.OpcodeSIMDPrefix:
		return in.Secondary == simdSecondaryV128Const
	}
	return false
}

func decodeOneInstruction(c *cursor, opcode wasm.Opcode, features wasm.Features, sink *wasm.Sink, start uint32) (wasm.Instruction, error) {
	switch opcode {
	case wasm.OpcodeMiscPrefix:
		secondary, err := c.vu32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		info, ok := wasm.LookupMisc(secondary)
		if !ok {
			return wasm.Instruction{}, fmt.Errorf("%w: misc %#x", ErrUnknownOpcode, secondary)
		}
		if !requireFeature(sink, features, info.Feature, c.rangeFrom(start)) {
			return wasm.Instruction{}, fmt.Errorf("%w: %s", ErrFeatureDisabled, info.Mnemonic)
		}
		imm, err := decodeImmediate(c, info.Immediate, sink)
		if err != nil {
			return wasm.Instruction{}, err
		}
		return wasm.Instruction{Opcode: opcode, Secondary: secondary, Immediate: imm, Loc: c.rangeFrom(start)}, nil

	case wasm.OpcodeSIMDPrefix:
		secondary, err := c.vu32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		info, ok := wasm.LookupSIMD(secondary)
		if !ok {
			return wasm.Instruction{}, fmt.Errorf("%w: simd %#x", ErrUnknownOpcode, secondary)
		}
		if !requireFeature(sink, features, info.Feature, c.rangeFrom(start)) {
			return wasm.Instruction{}, fmt.Errorf("%w: %s", ErrFeatureDisabled, info.Mnemonic)
		}
		imm, err := decodeImmediate(c, info.Immediate, sink)
		if err != nil {
			return wasm.Instruction{}, err
		}
		return wasm.Instruction{Opcode: opcode, Secondary: secondary, Immediate: imm, Loc: c.rangeFrom(start)}, nil

	case wasm.OpcodeAtomicPrefix:
		secondary, err := c.vu32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		return wasm.Instruction{}, fmt.Errorf("%w: atomic %#x (threads proposal not decoded)", ErrUnknownOpcode, secondary)

	default:
		info, ok := opcode.Lookup()
		if !ok {
			return wasm.Instruction{}, fmt.Errorf("%w: %#x at %s", ErrUnknownOpcode, byte(opcode), c.rangeFrom(start))
		}
		if !requireFeature(sink, features, info.Feature, c.rangeFrom(start)) {
			return wasm.Instruction{}, fmt.Errorf("%w: %s", ErrFeatureDisabled, info.Mnemonic)
		}
		imm, err := decodeImmediateForOpcode(c, opcode, info.Immediate, features, sink)
		if err != nil {
			return wasm.Instruction{}, err
		}
		return wasm.Instruction{Opcode: opcode, Immediate: imm, Loc: c.rangeFrom(start)}, nil
	}
}

// decodeImmediateForOpcode handles the handful of ImmediateKinds whose
// decoding needs the enclosing Features (block types, ref.null's heap
// type); everything else goes through decodeImmediate.
func decodeImmediateForOpcode(c *cursor, opcode wasm.Opcode, kind wasm.ImmediateKind, features wasm.Features, sink *wasm.Sink) (wasm.Immediate, error) {
	switch kind {
	case wasm.ImmBlock:
		bt, err := decodeBlockType(c, features)
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Block: wasm.BlockImmediate{Type: bt}}, nil
	case wasm.ImmHeapType:
		h, err := decodeHeapType(c)
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Heap: h}, nil
	case wasm.ImmSelectT:
		vts, err := decodeVector(c, sink, "select types", func(c *cursor) (wasm.ValueType, error) { return decodeValueType(c, features) })
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, ValueTypes: vts}, nil
	default:
		return decodeImmediate(c, kind, sink)
	}
}

// decodeImmediate handles every ImmediateKind that needs no Features
// context.
func decodeImmediate(c *cursor, kind wasm.ImmediateKind, sink *wasm.Sink) (wasm.Immediate, error) {
	switch kind {
	case wasm.ImmNone:
		return wasm.Immediate{Kind: kind}, nil

	case wasm.ImmI32:
		v, err := c.vs32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, I32: v}, nil

	case wasm.ImmI64:
		v, err := c.vs64()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, I64: v}, nil

	case wasm.ImmF32:
		bits, err := c.f32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, F32: bits}, nil

	case wasm.ImmF64:
		bits, err := c.f64()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, F64: bits}, nil

	case wasm.ImmV128:
		b, err := c.readBytes(16)
		if err != nil {
			return wasm.Immediate{}, err
		}
		var v [16]byte
		copy(v[:], b)
		return wasm.Immediate{Kind: kind, V128: v}, nil

	case wasm.ImmVar:
		i, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Var: wasm.IndexVar(i)}, nil

	case wasm.ImmIndex:
		// Reserved byte, always 0 without the multi-memory proposal.
		i, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Var: wasm.IndexVar(i)}, nil

	case wasm.ImmBrTable:
		labels, err := decodeVector(c, sink, "br_table labels", func(c *cursor) (wasm.Var, error) {
			i, err := c.vu32()
			return wasm.IndexVar(i), err
		})
		if err != nil {
			return wasm.Immediate{}, err
		}
		def, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, BrTable: wasm.BrTableImmediate{Labels: labels, Default: wasm.IndexVar(def)}}, nil

	case wasm.ImmCallIndirect:
		typeIdx, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		tableIdx, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, CallIndirect: wasm.CallIndirectImmediate{
			Type: wasm.IndexVar(typeIdx), Table: wasm.IndexVar(tableIdx),
		}}, nil

	case wasm.ImmCopy:
		dst, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		src, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Copy: wasm.CopyImmediate{Dst: wasm.IndexVar(dst), Src: wasm.IndexVar(src)}}, nil

	case wasm.ImmSegmentDst:
		seg, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		dst, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Segment: wasm.SegmentImmediate{Segment: wasm.IndexVar(seg), Dst: wasm.IndexVar(dst)}}, nil

	case wasm.ImmMemArg:
		align, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		if align >= 32 {
			return wasm.Immediate{}, fmt.Errorf("%w: %d", ErrAlignOutOfRange, align)
		}
		offset, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, MemArg: wasm.MemArg{AlignLog2: align, Offset: offset}}, nil

	case wasm.ImmSimdMemoryLane:
		align, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		offset, err := c.vu32()
		if err != nil {
			return wasm.Immediate{}, err
		}
		lane, err := c.readByte()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, SimdMemoryLane: wasm.SimdMemoryLaneImmediate{
			MemArg: wasm.MemArg{AlignLog2: align, Offset: offset}, Lane: lane,
		}}, nil

	case wasm.ImmSimdLane:
		lane, err := c.readByte()
		if err != nil {
			return wasm.Immediate{}, err
		}
		return wasm.Immediate{Kind: kind, Lane: lane}, nil

	case wasm.ImmShuffle:
		b, err := c.readBytes(16)
		if err != nil {
			return wasm.Immediate{}, err
		}
		var v [16]byte
		copy(v[:], b)
		return wasm.Immediate{Kind: kind, Shuffle: v}, nil

	default:
		return wasm.Immediate{}, fmt.Errorf("%w: unsupported immediate kind %d", ErrBadSection, kind)
	}
}
