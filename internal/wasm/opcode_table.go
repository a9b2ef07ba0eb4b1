package wasm

// OpcodeInfo is the single source of truth mapping a byte code to its
// mnemonic, the shape of its immediate, and the proposal that introduced
// it. Binary decoding dispatches immediate parsing from this table; text
// parsing's keyword trie (internal/wat) is generated from the same
// mnemonics so the two surfaces never drift apart.
type OpcodeInfo struct {
	Mnemonic  string
	Immediate ImmediateKind
	Feature   Features
}

// opcodeTable covers every primary (non-prefixed) opcode.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpcodeUnreachable: {"unreachable", ImmNone, 0},
	OpcodeNop:         {"nop", ImmNone, 0},
	OpcodeBlock:       {"block", ImmBlock, 0},
	OpcodeLoop:        {"loop", ImmBlock, 0},
	OpcodeIf:          {"if", ImmBlock, 0},
	OpcodeElse:        {"else", ImmNone, 0},
	OpcodeTry:         {"try", ImmBlock, FeatureExceptions},
	OpcodeCatch:       {"catch", ImmVar, FeatureExceptions},
	OpcodeThrow:       {"throw", ImmVar, FeatureExceptions},
	OpcodeRethrow:     {"rethrow", ImmVar, FeatureExceptions},
	OpcodeEnd:         {"end", ImmNone, 0},
	OpcodeBr:          {"br", ImmVar, 0},
	OpcodeBrIf:        {"br_if", ImmVar, 0},
	OpcodeBrTable:     {"br_table", ImmBrTable, 0},
	OpcodeReturn:      {"return", ImmNone, 0},
	OpcodeCall:        {"call", ImmVar, 0},
	OpcodeCallIndirect: {"call_indirect", ImmCallIndirect, 0},
	OpcodeReturnCall:         {"return_call", ImmVar, FeatureTailCall},
	OpcodeReturnCallIndirect: {"return_call_indirect", ImmCallIndirect, FeatureTailCall},
	OpcodeDelegate:  {"delegate", ImmVar, FeatureExceptions},
	OpcodeCatchAll:  {"catch_all", ImmNone, FeatureExceptions},

	OpcodeDrop:    {"drop", ImmNone, 0},
	OpcodeSelect:  {"select", ImmNone, 0},
	OpcodeSelectT: {"select", ImmSelectT, FeatureReferenceTypes},

	OpcodeLocalGet:  {"local.get", ImmVar, 0},
	OpcodeLocalSet:  {"local.set", ImmVar, 0},
	OpcodeLocalTee:  {"local.tee", ImmVar, 0},
	OpcodeGlobalGet: {"global.get", ImmVar, 0},
	OpcodeGlobalSet: {"global.set", ImmVar, 0},

	OpcodeTableGet: {"table.get", ImmVar, FeatureReferenceTypes},
	OpcodeTableSet: {"table.set", ImmVar, FeatureReferenceTypes},

	OpcodeI32Load:    {"i32.load", ImmMemArg, 0},
	OpcodeI64Load:    {"i64.load", ImmMemArg, 0},
	OpcodeF32Load:    {"f32.load", ImmMemArg, 0},
	OpcodeF64Load:    {"f64.load", ImmMemArg, 0},
	OpcodeI32Load8S:  {"i32.load8_s", ImmMemArg, 0},
	OpcodeI32Load8U:  {"i32.load8_u", ImmMemArg, 0},
	OpcodeI32Load16S: {"i32.load16_s", ImmMemArg, 0},
	OpcodeI32Load16U: {"i32.load16_u", ImmMemArg, 0},
	OpcodeI64Load8S:  {"i64.load8_s", ImmMemArg, 0},
	OpcodeI64Load8U:  {"i64.load8_u", ImmMemArg, 0},
	OpcodeI64Load16S: {"i64.load16_s", ImmMemArg, 0},
	OpcodeI64Load16U: {"i64.load16_u", ImmMemArg, 0},
	OpcodeI64Load32S: {"i64.load32_s", ImmMemArg, 0},
	OpcodeI64Load32U: {"i64.load32_u", ImmMemArg, 0},
	OpcodeI32Store:   {"i32.store", ImmMemArg, 0},
	OpcodeI64Store:   {"i64.store", ImmMemArg, 0},
	OpcodeF32Store:   {"f32.store", ImmMemArg, 0},
	OpcodeF64Store:   {"f64.store", ImmMemArg, 0},
	OpcodeI32Store8:  {"i32.store8", ImmMemArg, 0},
	OpcodeI32Store16: {"i32.store16", ImmMemArg, 0},
	OpcodeI64Store8:  {"i64.store8", ImmMemArg, 0},
	OpcodeI64Store16: {"i64.store16", ImmMemArg, 0},
	OpcodeI64Store32: {"i64.store32", ImmMemArg, 0},
	OpcodeMemorySize: {"memory.size", ImmIndex, 0},
	OpcodeMemoryGrow: {"memory.grow", ImmIndex, 0},

	OpcodeI32Const: {"i32.const", ImmI32, 0},
	OpcodeI64Const: {"i64.const", ImmI64, 0},
	OpcodeF32Const: {"f32.const", ImmF32, 0},
	OpcodeF64Const: {"f64.const", ImmF64, 0},

	OpcodeRefNull:   {"ref.null", ImmHeapType, FeatureReferenceTypes},
	OpcodeRefIsNull: {"ref.is_null", ImmNone, FeatureReferenceTypes},
	OpcodeRefFunc:   {"ref.func", ImmVar, FeatureReferenceTypes},

	OpcodeI32Extend8S:  {"i32.extend8_s", ImmNone, FeatureSignExtensionOps},
	OpcodeI32Extend16S: {"i32.extend16_s", ImmNone, FeatureSignExtensionOps},
	OpcodeI64Extend8S:  {"i64.extend8_s", ImmNone, FeatureSignExtensionOps},
	OpcodeI64Extend16S: {"i64.extend16_s", ImmNone, FeatureSignExtensionOps},
	OpcodeI64Extend32S: {"i64.extend32_s", ImmNone, FeatureSignExtensionOps},
}

// numericOpcodeNames names the 0x45..0xbf comparison/arithmetic/conversion
// operators: every one takes no immediate at all, so rather than hand-list
// ~120 near-identical entries here, init() below fills opcodeTable for the
// contiguous numeric range using numericOpcodeNames.
var numericOpcodeNames = map[Opcode]string{
	0x45: "i32.eqz", 0x46: "i32.eq", 0x47: "i32.ne", 0x48: "i32.lt_s", 0x49: "i32.lt_u",
	0x4a: "i32.gt_s", 0x4b: "i32.gt_u", 0x4c: "i32.le_s", 0x4d: "i32.le_u", 0x4e: "i32.ge_s", 0x4f: "i32.ge_u",
	0x50: "i64.eqz", 0x51: "i64.eq", 0x52: "i64.ne", 0x53: "i64.lt_s", 0x54: "i64.lt_u",
	0x55: "i64.gt_s", 0x56: "i64.gt_u", 0x57: "i64.le_s", 0x58: "i64.le_u", 0x59: "i64.ge_s", 0x5a: "i64.ge_u",
	0x5b: "f32.eq", 0x5c: "f32.ne", 0x5d: "f32.lt", 0x5e: "f32.gt", 0x5f: "f32.le", 0x60: "f32.ge",
	0x61: "f64.eq", 0x62: "f64.ne", 0x63: "f64.lt", 0x64: "f64.gt", 0x65: "f64.le", 0x66: "f64.ge",
	0x67: "i32.clz", 0x68: "i32.ctz", 0x69: "i32.popcnt", 0x6a: "i32.add", 0x6b: "i32.sub", 0x6c: "i32.mul",
	0x6d: "i32.div_s", 0x6e: "i32.div_u", 0x6f: "i32.rem_s", 0x70: "i32.rem_u",
	0x71: "i32.and", 0x72: "i32.or", 0x73: "i32.xor", 0x74: "i32.shl", 0x75: "i32.shr_s", 0x76: "i32.shr_u",
	0x77: "i32.rotl", 0x78: "i32.rotr",
	0x79: "i64.clz", 0x7a: "i64.ctz", 0x7b: "i64.popcnt", 0x7c: "i64.add", 0x7d: "i64.sub", 0x7e: "i64.mul",
	0x7f: "i64.div_s", 0x80: "i64.div_u", 0x81: "i64.rem_s", 0x82: "i64.rem_u",
	0x83: "i64.and", 0x84: "i64.or", 0x85: "i64.xor", 0x86: "i64.shl", 0x87: "i64.shr_s", 0x88: "i64.shr_u",
	0x89: "i64.rotl", 0x8a: "i64.rotr",
	0x8b: "f32.abs", 0x8c: "f32.neg", 0x8d: "f32.ceil", 0x8e: "f32.floor", 0x8f: "f32.trunc", 0x90: "f32.nearest",
	0x91: "f32.sqrt", 0x92: "f32.add", 0x93: "f32.sub", 0x94: "f32.mul", 0x95: "f32.div", 0x96: "f32.min",
	0x97: "f32.max", 0x98: "f32.copysign",
	0x99: "f64.abs", 0x9a: "f64.neg", 0x9b: "f64.ceil", 0x9c: "f64.floor", 0x9d: "f64.trunc", 0x9e: "f64.nearest",
	0x9f: "f64.sqrt", 0xa0: "f64.add", 0xa1: "f64.sub", 0xa2: "f64.mul", 0xa3: "f64.div", 0xa4: "f64.min",
	0xa5: "f64.max", 0xa6: "f64.copysign",
	0xa7: "i32.wrap_i64", 0xa8: "i32.trunc_f32_s", 0xa9: "i32.trunc_f32_u", 0xaa: "i32.trunc_f64_s", 0xab: "i32.trunc_f64_u",
	0xac: "i64.extend_i32_s", 0xad: "i64.extend_i32_u", 0xae: "i64.trunc_f32_s", 0xaf: "i64.trunc_f32_u",
	0xb0: "i64.trunc_f64_s", 0xb1: "i64.trunc_f64_u",
	0xb2: "f32.convert_i32_s", 0xb3: "f32.convert_i32_u", 0xb4: "f32.convert_i64_s", 0xb5: "f32.convert_i64_u",
	0xb6: "f32.demote_f64",
	0xb7: "f64.convert_i32_s", 0xb8: "f64.convert_i32_u", 0xb9: "f64.convert_i64_s", 0xba: "f64.convert_i64_u",
	0xbb: "f64.promote_f32",
	0xbc: "i32.reinterpret_f32", 0xbd: "i64.reinterpret_f64", 0xbe: "f32.reinterpret_i32", 0xbf: "f64.reinterpret_i64",
}

// miscOpcodeTable covers secondary opcodes behind OpcodeMiscPrefix.
var miscOpcodeTable = map[uint32]OpcodeInfo{
	uint32(MiscOpcodeI32TruncSatF32S): {"i32.trunc_sat_f32_s", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI32TruncSatF32U): {"i32.trunc_sat_f32_u", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI32TruncSatF64S): {"i32.trunc_sat_f64_s", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI32TruncSatF64U): {"i32.trunc_sat_f64_u", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI64TruncSatF32S): {"i64.trunc_sat_f32_s", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI64TruncSatF32U): {"i64.trunc_sat_f32_u", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI64TruncSatF64S): {"i64.trunc_sat_f64_s", ImmNone, FeatureNonTrappingFloatToIntConversion},
	uint32(MiscOpcodeI64TruncSatF64U): {"i64.trunc_sat_f64_u", ImmNone, FeatureNonTrappingFloatToIntConversion},

	uint32(MiscOpcodeMemoryInit): {"memory.init", ImmSegmentDst, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeDataDrop):   {"data.drop", ImmVar, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeMemoryCopy): {"memory.copy", ImmCopy, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeMemoryFill): {"memory.fill", ImmIndex, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeTableInit):  {"table.init", ImmSegmentDst, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeElemDrop):   {"elem.drop", ImmVar, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeTableCopy):  {"table.copy", ImmCopy, FeatureBulkMemoryOperations},
	uint32(MiscOpcodeTableGrow):  {"table.grow", ImmVar, FeatureReferenceTypes},
	uint32(MiscOpcodeTableSize):  {"table.size", ImmVar, FeatureReferenceTypes},
	uint32(MiscOpcodeTableFill):  {"table.fill", ImmVar, FeatureReferenceTypes},
}

// simdOpcodeTable covers the full fixed-width SIMD (v128) secondary opcode
// space behind OpcodeSIMDPrefix, keyed by the one-byte secondary opcode.
// Unassigned byte values in the 0x00-0xff range are simply absent from the
// map, so a lookup miss there is treated as an unknown opcode like any
// other gap in the table.
var simdOpcodeTable = map[uint32]OpcodeInfo{
	0x00: {"v128.load", ImmMemArg, FeatureSIMD},
	0x01: {"v128.load8x8_s", ImmMemArg, FeatureSIMD},
	0x02: {"v128.load8x8_u", ImmMemArg, FeatureSIMD},
	0x03: {"v128.load16x4_s", ImmMemArg, FeatureSIMD},
	0x04: {"v128.load16x4_u", ImmMemArg, FeatureSIMD},
	0x05: {"v128.load32x2_s", ImmMemArg, FeatureSIMD},
	0x06: {"v128.load32x2_u", ImmMemArg, FeatureSIMD},
	0x07: {"v128.load8_splat", ImmMemArg, FeatureSIMD},
	0x08: {"v128.load16_splat", ImmMemArg, FeatureSIMD},
	0x09: {"v128.load32_splat", ImmMemArg, FeatureSIMD},
	0x0a: {"v128.load64_splat", ImmMemArg, FeatureSIMD},
	0x0b: {"v128.store", ImmMemArg, FeatureSIMD},
	0x0c: {"v128.const", ImmV128, FeatureSIMD},
	0x0d: {"i8x16.shuffle", ImmShuffle, FeatureSIMD},
	0x0e: {"i8x16.swizzle", ImmNone, FeatureSIMD},
	0x0f: {"i8x16.splat", ImmNone, FeatureSIMD},
	0x10: {"i16x8.splat", ImmNone, FeatureSIMD},
	0x11: {"i32x4.splat", ImmNone, FeatureSIMD},
	0x12: {"i64x2.splat", ImmNone, FeatureSIMD},
	0x13: {"f32x4.splat", ImmNone, FeatureSIMD},
	0x14: {"f64x2.splat", ImmNone, FeatureSIMD},
	0x15: {"i8x16.extract_lane_s", ImmSimdLane, FeatureSIMD},
	0x16: {"i8x16.extract_lane_u", ImmSimdLane, FeatureSIMD},
	0x17: {"i8x16.replace_lane", ImmSimdLane, FeatureSIMD},
	0x18: {"i16x8.extract_lane_s", ImmSimdLane, FeatureSIMD},
	0x19: {"i16x8.extract_lane_u", ImmSimdLane, FeatureSIMD},
	0x1a: {"i16x8.replace_lane", ImmSimdLane, FeatureSIMD},
	0x1b: {"i32x4.extract_lane", ImmSimdLane, FeatureSIMD},
	0x1c: {"i32x4.replace_lane", ImmSimdLane, FeatureSIMD},
	0x1d: {"i64x2.extract_lane", ImmSimdLane, FeatureSIMD},
	0x1e: {"i64x2.replace_lane", ImmSimdLane, FeatureSIMD},
	0x1f: {"f32x4.extract_lane", ImmSimdLane, FeatureSIMD},
	0x20: {"f32x4.replace_lane", ImmSimdLane, FeatureSIMD},
	0x21: {"f64x2.extract_lane", ImmSimdLane, FeatureSIMD},
	0x22: {"f64x2.replace_lane", ImmSimdLane, FeatureSIMD},
	0x23: {"i8x16.eq", ImmNone, FeatureSIMD},
	0x24: {"i8x16.ne", ImmNone, FeatureSIMD},
	0x25: {"i8x16.lt_s", ImmNone, FeatureSIMD},
	0x26: {"i8x16.lt_u", ImmNone, FeatureSIMD},
	0x27: {"i8x16.gt_s", ImmNone, FeatureSIMD},
	0x28: {"i8x16.gt_u", ImmNone, FeatureSIMD},
	0x29: {"i8x16.le_s", ImmNone, FeatureSIMD},
	0x2a: {"i8x16.le_u", ImmNone, FeatureSIMD},
	0x2b: {"i8x16.ge_s", ImmNone, FeatureSIMD},
	0x2c: {"i8x16.ge_u", ImmNone, FeatureSIMD},
	0x2d: {"i16x8.eq", ImmNone, FeatureSIMD},
	0x2e: {"i16x8.ne", ImmNone, FeatureSIMD},
	0x2f: {"i16x8.lt_s", ImmNone, FeatureSIMD},
	0x30: {"i16x8.lt_u", ImmNone, FeatureSIMD},
	0x31: {"i16x8.gt_s", ImmNone, FeatureSIMD},
	0x32: {"i16x8.gt_u", ImmNone, FeatureSIMD},
	0x33: {"i16x8.le_s", ImmNone, FeatureSIMD},
	0x34: {"i16x8.le_u", ImmNone, FeatureSIMD},
	0x35: {"i16x8.ge_s", ImmNone, FeatureSIMD},
	0x36: {"i16x8.ge_u", ImmNone, FeatureSIMD},
	0x37: {"i32x4.eq", ImmNone, FeatureSIMD},
	0x38: {"i32x4.ne", ImmNone, FeatureSIMD},
	0x39: {"i32x4.lt_s", ImmNone, FeatureSIMD},
	0x3a: {"i32x4.lt_u", ImmNone, FeatureSIMD},
	0x3b: {"i32x4.gt_s", ImmNone, FeatureSIMD},
	0x3c: {"i32x4.gt_u", ImmNone, FeatureSIMD},
	0x3d: {"i32x4.le_s", ImmNone, FeatureSIMD},
	0x3e: {"i32x4.le_u", ImmNone, FeatureSIMD},
	0x3f: {"i32x4.ge_s", ImmNone, FeatureSIMD},
	0x40: {"i32x4.ge_u", ImmNone, FeatureSIMD},
	0x41: {"f32x4.eq", ImmNone, FeatureSIMD},
	0x42: {"f32x4.ne", ImmNone, FeatureSIMD},
	0x43: {"f32x4.lt", ImmNone, FeatureSIMD},
	0x44: {"f32x4.gt", ImmNone, FeatureSIMD},
	0x45: {"f32x4.le", ImmNone, FeatureSIMD},
	0x46: {"f32x4.ge", ImmNone, FeatureSIMD},
	0x47: {"f64x2.eq", ImmNone, FeatureSIMD},
	0x48: {"f64x2.ne", ImmNone, FeatureSIMD},
	0x49: {"f64x2.lt", ImmNone, FeatureSIMD},
	0x4a: {"f64x2.gt", ImmNone, FeatureSIMD},
	0x4b: {"f64x2.le", ImmNone, FeatureSIMD},
	0x4c: {"f64x2.ge", ImmNone, FeatureSIMD},
	0x4d: {"v128.not", ImmNone, FeatureSIMD},
	0x4e: {"v128.and", ImmNone, FeatureSIMD},
	0x4f: {"v128.andnot", ImmNone, FeatureSIMD},
	0x50: {"v128.or", ImmNone, FeatureSIMD},
	0x51: {"v128.xor", ImmNone, FeatureSIMD},
	0x52: {"v128.bitselect", ImmNone, FeatureSIMD},
	0x53: {"v128.any_true", ImmNone, FeatureSIMD},
	0x54: {"v128.load8_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x55: {"v128.load16_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x56: {"v128.load32_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x57: {"v128.load64_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x58: {"v128.store8_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x59: {"v128.store16_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x5a: {"v128.store32_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x5b: {"v128.store64_lane", ImmSimdMemoryLane, FeatureSIMD},
	0x5c: {"v128.load32_zero", ImmMemArg, FeatureSIMD},
	0x5d: {"v128.load64_zero", ImmMemArg, FeatureSIMD},
	0x5e: {"f32x4.demote_f64x2_zero", ImmNone, FeatureSIMD},
	0x5f: {"f64x2.promote_low_f32x4", ImmNone, FeatureSIMD},
	0x60: {"i8x16.abs", ImmNone, FeatureSIMD},
	0x61: {"i8x16.neg", ImmNone, FeatureSIMD},
	0x62: {"i8x16.popcnt", ImmNone, FeatureSIMD},
	0x63: {"i8x16.all_true", ImmNone, FeatureSIMD},
	0x64: {"i8x16.bitmask", ImmNone, FeatureSIMD},
	0x65: {"i8x16.narrow_i16x8_s", ImmNone, FeatureSIMD},
	0x66: {"i8x16.narrow_i16x8_u", ImmNone, FeatureSIMD},
	0x67: {"f32x4.ceil", ImmNone, FeatureSIMD},
	0x68: {"f32x4.floor", ImmNone, FeatureSIMD},
	0x69: {"f32x4.trunc", ImmNone, FeatureSIMD},
	0x6a: {"f32x4.nearest", ImmNone, FeatureSIMD},
	0x6b: {"i8x16.shl", ImmNone, FeatureSIMD},
	0x6c: {"i8x16.shr_s", ImmNone, FeatureSIMD},
	0x6d: {"i8x16.shr_u", ImmNone, FeatureSIMD},
	0x6e: {"i8x16.add", ImmNone, FeatureSIMD},
	0x6f: {"i8x16.add_sat_s", ImmNone, FeatureSIMD},
	0x70: {"i8x16.add_sat_u", ImmNone, FeatureSIMD},
	0x71: {"i8x16.sub", ImmNone, FeatureSIMD},
	0x72: {"i8x16.sub_sat_s", ImmNone, FeatureSIMD},
	0x73: {"i8x16.sub_sat_u", ImmNone, FeatureSIMD},
	0x74: {"f64x2.ceil", ImmNone, FeatureSIMD},
	0x75: {"f64x2.floor", ImmNone, FeatureSIMD},
	0x76: {"i8x16.min_s", ImmNone, FeatureSIMD},
	0x77: {"i8x16.min_u", ImmNone, FeatureSIMD},
	0x78: {"i8x16.max_s", ImmNone, FeatureSIMD},
	0x79: {"i8x16.max_u", ImmNone, FeatureSIMD},
	0x7a: {"f64x2.trunc", ImmNone, FeatureSIMD},
	0x7b: {"i8x16.avgr_u", ImmNone, FeatureSIMD},
	0x7c: {"i16x8.extadd_pairwise_i8x16_s", ImmNone, FeatureSIMD},
	0x7d: {"i16x8.extadd_pairwise_i8x16_u", ImmNone, FeatureSIMD},
	0x7e: {"i32x4.extadd_pairwise_i16x8_s", ImmNone, FeatureSIMD},
	0x7f: {"i32x4.extadd_pairwise_i16x8_u", ImmNone, FeatureSIMD},
	0x80: {"i16x8.abs", ImmNone, FeatureSIMD},
	0x81: {"i16x8.neg", ImmNone, FeatureSIMD},
	0x82: {"i16x8.q15mulr_sat_s", ImmNone, FeatureSIMD},
	0x83: {"i16x8.all_true", ImmNone, FeatureSIMD},
	0x84: {"i16x8.bitmask", ImmNone, FeatureSIMD},
	0x85: {"i16x8.narrow_i32x4_s", ImmNone, FeatureSIMD},
	0x86: {"i16x8.narrow_i32x4_u", ImmNone, FeatureSIMD},
	0x87: {"i16x8.extend_low_i8x16_s", ImmNone, FeatureSIMD},
	0x88: {"i16x8.extend_high_i8x16_s", ImmNone, FeatureSIMD},
	0x89: {"i16x8.extend_low_i8x16_u", ImmNone, FeatureSIMD},
	0x8a: {"i16x8.extend_high_i8x16_u", ImmNone, FeatureSIMD},
	0x8b: {"i16x8.shl", ImmNone, FeatureSIMD},
	0x8c: {"i16x8.shr_s", ImmNone, FeatureSIMD},
	0x8d: {"i16x8.shr_u", ImmNone, FeatureSIMD},
	0x8e: {"i16x8.add", ImmNone, FeatureSIMD},
	0x8f: {"i16x8.add_sat_s", ImmNone, FeatureSIMD},
	0x90: {"i16x8.add_sat_u", ImmNone, FeatureSIMD},
	0x91: {"i16x8.sub", ImmNone, FeatureSIMD},
	0x92: {"i16x8.sub_sat_s", ImmNone, FeatureSIMD},
	0x93: {"i16x8.sub_sat_u", ImmNone, FeatureSIMD},
	0x94: {"f64x2.nearest", ImmNone, FeatureSIMD},
	0x95: {"i16x8.mul", ImmNone, FeatureSIMD},
	0x96: {"i16x8.min_s", ImmNone, FeatureSIMD},
	0x97: {"i16x8.min_u", ImmNone, FeatureSIMD},
	0x98: {"i16x8.max_s", ImmNone, FeatureSIMD},
	0x99: {"i16x8.max_u", ImmNone, FeatureSIMD},
	0x9b: {"i16x8.avgr_u", ImmNone, FeatureSIMD},
	0x9c: {"i16x8.extmul_low_i8x16_s", ImmNone, FeatureSIMD},
	0x9d: {"i16x8.extmul_high_i8x16_s", ImmNone, FeatureSIMD},
	0x9e: {"i16x8.extmul_low_i8x16_u", ImmNone, FeatureSIMD},
	0x9f: {"i16x8.extmul_high_i8x16_u", ImmNone, FeatureSIMD},
	0xa0: {"i32x4.abs", ImmNone, FeatureSIMD},
	0xa1: {"i32x4.neg", ImmNone, FeatureSIMD},
	0xa3: {"i32x4.all_true", ImmNone, FeatureSIMD},
	0xa4: {"i32x4.bitmask", ImmNone, FeatureSIMD},
	0xa7: {"i32x4.extend_low_i16x8_s", ImmNone, FeatureSIMD},
	0xa8: {"i32x4.extend_high_i16x8_s", ImmNone, FeatureSIMD},
	0xa9: {"i32x4.extend_low_i16x8_u", ImmNone, FeatureSIMD},
	0xaa: {"i32x4.extend_high_i16x8_u", ImmNone, FeatureSIMD},
	0xab: {"i32x4.shl", ImmNone, FeatureSIMD},
	0xac: {"i32x4.shr_s", ImmNone, FeatureSIMD},
	0xad: {"i32x4.shr_u", ImmNone, FeatureSIMD},
	0xae: {"i32x4.add", ImmNone, FeatureSIMD},
	0xb1: {"i32x4.sub", ImmNone, FeatureSIMD},
	0xb5: {"i32x4.mul", ImmNone, FeatureSIMD},
	0xb6: {"i32x4.min_s", ImmNone, FeatureSIMD},
	0xb7: {"i32x4.min_u", ImmNone, FeatureSIMD},
	0xb8: {"i32x4.max_s", ImmNone, FeatureSIMD},
	0xb9: {"i32x4.max_u", ImmNone, FeatureSIMD},
	0xba: {"i32x4.dot_i16x8_s", ImmNone, FeatureSIMD},
	0xbc: {"i32x4.extmul_low_i16x8_s", ImmNone, FeatureSIMD},
	0xbd: {"i32x4.extmul_high_i16x8_s", ImmNone, FeatureSIMD},
	0xbe: {"i32x4.extmul_low_i16x8_u", ImmNone, FeatureSIMD},
	0xbf: {"i32x4.extmul_high_i16x8_u", ImmNone, FeatureSIMD},
	0xc0: {"i64x2.abs", ImmNone, FeatureSIMD},
	0xc1: {"i64x2.neg", ImmNone, FeatureSIMD},
	0xc3: {"i64x2.all_true", ImmNone, FeatureSIMD},
	0xc4: {"i64x2.bitmask", ImmNone, FeatureSIMD},
	0xc7: {"i64x2.extend_low_i32x4_s", ImmNone, FeatureSIMD},
	0xc8: {"i64x2.extend_high_i32x4_s", ImmNone, FeatureSIMD},
	0xc9: {"i64x2.extend_low_i32x4_u", ImmNone, FeatureSIMD},
	0xca: {"i64x2.extend_high_i32x4_u", ImmNone, FeatureSIMD},
	0xcb: {"i64x2.shl", ImmNone, FeatureSIMD},
	0xcc: {"i64x2.shr_s", ImmNone, FeatureSIMD},
	0xcd: {"i64x2.shr_u", ImmNone, FeatureSIMD},
	0xce: {"i64x2.add", ImmNone, FeatureSIMD},
	0xd1: {"i64x2.sub", ImmNone, FeatureSIMD},
	0xd5: {"i64x2.mul", ImmNone, FeatureSIMD},
	0xd6: {"i64x2.eq", ImmNone, FeatureSIMD},
	0xd7: {"i64x2.ne", ImmNone, FeatureSIMD},
	0xd8: {"i64x2.lt_s", ImmNone, FeatureSIMD},
	0xd9: {"i64x2.gt_s", ImmNone, FeatureSIMD},
	0xda: {"i64x2.le_s", ImmNone, FeatureSIMD},
	0xdb: {"i64x2.ge_s", ImmNone, FeatureSIMD},
	0xdc: {"i64x2.extmul_low_i32x4_s", ImmNone, FeatureSIMD},
	0xdd: {"i64x2.extmul_high_i32x4_s", ImmNone, FeatureSIMD},
	0xde: {"i64x2.extmul_low_i32x4_u", ImmNone, FeatureSIMD},
	0xdf: {"i64x2.extmul_high_i32x4_u", ImmNone, FeatureSIMD},
	0xe0: {"f32x4.abs", ImmNone, FeatureSIMD},
	0xe1: {"f32x4.neg", ImmNone, FeatureSIMD},
	0xe3: {"f32x4.sqrt", ImmNone, FeatureSIMD},
	0xe4: {"f32x4.add", ImmNone, FeatureSIMD},
	0xe5: {"f32x4.sub", ImmNone, FeatureSIMD},
	0xe6: {"f32x4.mul", ImmNone, FeatureSIMD},
	0xe7: {"f32x4.div", ImmNone, FeatureSIMD},
	0xe8: {"f32x4.min", ImmNone, FeatureSIMD},
	0xe9: {"f32x4.max", ImmNone, FeatureSIMD},
	0xea: {"f32x4.pmin", ImmNone, FeatureSIMD},
	0xeb: {"f32x4.pmax", ImmNone, FeatureSIMD},
	0xec: {"f64x2.abs", ImmNone, FeatureSIMD},
	0xed: {"f64x2.neg", ImmNone, FeatureSIMD},
	0xef: {"f64x2.sqrt", ImmNone, FeatureSIMD},
	0xf0: {"f64x2.add", ImmNone, FeatureSIMD},
	0xf1: {"f64x2.sub", ImmNone, FeatureSIMD},
	0xf2: {"f64x2.mul", ImmNone, FeatureSIMD},
	0xf3: {"f64x2.div", ImmNone, FeatureSIMD},
	0xf4: {"f64x2.min", ImmNone, FeatureSIMD},
	0xf5: {"f64x2.max", ImmNone, FeatureSIMD},
	0xf6: {"f64x2.pmin", ImmNone, FeatureSIMD},
	0xf7: {"f64x2.pmax", ImmNone, FeatureSIMD},
	0xf8: {"i32x4.trunc_sat_f32x4_s", ImmNone, FeatureSIMD},
	0xf9: {"i32x4.trunc_sat_f32x4_u", ImmNone, FeatureSIMD},
	0xfa: {"f32x4.convert_i32x4_s", ImmNone, FeatureSIMD},
	0xfb: {"f32x4.convert_i32x4_u", ImmNone, FeatureSIMD},
	0xfc: {"i32x4.trunc_sat_f64x2_s_zero", ImmNone, FeatureSIMD},
	0xfd: {"i32x4.trunc_sat_f64x2_u_zero", ImmNone, FeatureSIMD},
	0xfe: {"f64x2.convert_low_i32x4_s", ImmNone, FeatureSIMD},
	0xff: {"f64x2.convert_low_i32x4_u", ImmNone, FeatureSIMD},
}

// opcodeNames backs Opcode.String(); populated in init from opcodeTable and
// numericOpcodeNames, plus the names "misc", "simd" and "atomic" for the
// three prefix bytes. Secondary opcodes of the prefix tables are not in it.
var opcodeNames = map[Opcode]string{}

// mnemonicToOpcode, mnemonicToMisc and mnemonicToSIMD are the reverse of
// opcodeTable/miscOpcodeTable/simdOpcodeTable, built once in init() so the
// text format's keyword table (internal/wat) is generated from exactly the
// same mnemonics the binary decoder uses — the two surfaces cannot drift.
var mnemonicToOpcode = map[string]Opcode{}
var mnemonicToMisc = map[string]uint32{}
var mnemonicToSIMD = map[string]uint32{}

func init() {
	for op, info := range opcodeTable {
		opcodeNames[op] = info.Mnemonic
	}
	for op, name := range numericOpcodeNames {
		opcodeTable[op] = OpcodeInfo{Mnemonic: name, Immediate: ImmNone}
		opcodeNames[op] = name
	}
	opcodeNames[OpcodeMiscPrefix] = "misc"
	opcodeNames[OpcodeSIMDPrefix] = "simd"
	opcodeNames[OpcodeAtomicPrefix] = "atomic"

	// select/select-t share a mnemonic; the plain (no-immediate) form wins
	// the keyword lookup deterministically, since text distinguishes them
	// by the presence of a `(result ...)` clause rather than by spelling.
	// Two passes over the (randomly ordered) map make that deterministic.
	for op, info := range opcodeTable {
		if info.Immediate == ImmNone {
			mnemonicToOpcode[info.Mnemonic] = op
		}
	}
	for op, info := range opcodeTable {
		if _, seen := mnemonicToOpcode[info.Mnemonic]; !seen {
			mnemonicToOpcode[info.Mnemonic] = op
		}
	}
	for op, info := range miscOpcodeTable {
		mnemonicToMisc[info.Mnemonic] = op
	}
	for op, info := range simdOpcodeTable {
		mnemonicToSIMD[info.Mnemonic] = op
	}

	// The modern trunc_fXX_{s,u} spellings are canonical and are what the
	// binary->text converter emits; the deprecated trunc_{s,u}/fXX forms
	// below are additional keyword aliases accepted only on input.
	deprecatedTruncAliases := map[string]string{
		"i32.trunc_s/f32": "i32.trunc_f32_s", "i32.trunc_u/f32": "i32.trunc_f32_u",
		"i32.trunc_s/f64": "i32.trunc_f64_s", "i32.trunc_u/f64": "i32.trunc_f64_u",
		"i64.trunc_s/f32": "i64.trunc_f32_s", "i64.trunc_u/f32": "i64.trunc_f32_u",
		"i64.trunc_s/f64": "i64.trunc_f64_s", "i64.trunc_u/f64": "i64.trunc_f64_u",
	}
	for old, modern := range deprecatedTruncAliases {
		if op, ok := mnemonicToOpcode[modern]; ok {
			mnemonicToOpcode[old] = op
		}
	}
}

// LookupMnemonic returns the primary opcode and its metadata for a text
// keyword, e.g. "i32.add".
func LookupMnemonic(name string) (Opcode, OpcodeInfo, bool) {
	op, ok := mnemonicToOpcode[name]
	if !ok {
		return 0, OpcodeInfo{}, false
	}
	info, _ := opcodeTable[op]
	if info.Mnemonic == "" {
		info.Mnemonic = name
	}
	return op, info, true
}

// LookupMiscMnemonic returns the secondary-opcode value and metadata for a
// misc-prefixed ("0xfc") text keyword, e.g. "memory.copy".
func LookupMiscMnemonic(name string) (uint32, OpcodeInfo, bool) {
	op, ok := mnemonicToMisc[name]
	if !ok {
		return 0, OpcodeInfo{}, false
	}
	return op, miscOpcodeTable[op], true
}

// LookupSIMDMnemonic returns the secondary-opcode value and metadata for a
// SIMD-prefixed ("0xfd") text keyword, e.g. "i32x4.add".
func LookupSIMDMnemonic(name string) (uint32, OpcodeInfo, bool) {
	op, ok := mnemonicToSIMD[name]
	if !ok {
		return 0, OpcodeInfo{}, false
	}
	return op, simdOpcodeTable[op], true
}

// Lookup returns the metadata for a primary opcode.
func (o Opcode) Lookup() (OpcodeInfo, bool) {
	info, ok := opcodeTable[o]
	return info, ok
}

// LookupMisc returns the metadata for a secondary opcode behind
// OpcodeMiscPrefix.
func LookupMisc(secondary uint32) (OpcodeInfo, bool) {
	info, ok := miscOpcodeTable[secondary]
	return info, ok
}

// LookupSIMD returns the metadata for a secondary opcode behind
// OpcodeSIMDPrefix.
func LookupSIMD(secondary uint32) (OpcodeInfo, bool) {
	info, ok := simdOpcodeTable[secondary]
	return info, ok
}
