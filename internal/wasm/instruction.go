package wasm

// VarKind distinguishes a symbolic text identifier from a resolved numeric
// index. Binary decode always produces VarIndex; text parsing produces
// VarName for `$foo` references until the name-resolution pass rewrites
// them in place.
type VarKind byte

const (
	VarIndex VarKind = iota
	VarName
)

// Var is a reference into one of the module's index spaces: either a
// symbolic name (pre-resolution text) or a numeric index (binary, or text
// after resolution). "In a resolved module, every Var is in its index()
// form" is the invariant the resolve pass (internal/wat) establishes.
type Var struct {
	Kind  VarKind
	Index Index
	Name  string
	Loc   Range
}

// IndexVar builds an already-resolved Var.
func IndexVar(i Index) Var { return Var{Kind: VarIndex, Index: i} }

// NameVar builds a symbolic Var, as text parsing does for `$foo`.
func NameVar(name string, loc Range) Var { return Var{Kind: VarName, Name: name, Loc: loc} }

func (v Var) IsResolved() bool { return v.Kind == VarIndex }

func (v Var) String() string {
	if v.Kind == VarName {
		return v.Name
	}
	return uitoa(v.Index)
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// ImmediateKind classifies the ~25 shapes an instruction's immediate can
// take. Decoders and the text parser both dispatch on this.
type ImmediateKind byte

const (
	ImmNone ImmediateKind = iota
	ImmI32
	ImmI64
	ImmF32
	ImmF64
	ImmV128
	ImmVar            // a single index/name: local.get, call, etc.
	ImmBlock          // BlockImmediate: label type-use for block/loop/if/try/let
	ImmBrTable        // vector of labels + default
	ImmBrOnExn        // label + event
	ImmCallIndirect   // type-use + table index
	ImmCopy           // (dst, src) indices — table.copy/memory.copy
	ImmLet            // block immediate + local declarations
	ImmMemArg         // (align-log2, offset)
	ImmHeapType       // ref.null
	ImmSelectT        // vector of value types
	ImmShuffle        // 16 lane-index bytes
	ImmSimdLane       // single lane index
	ImmSimdMemoryLane // MemArg + lane
	ImmFuncBind       // type-use
	ImmBrOnCast       // label + two heap types
	ImmRttSub         // heap-type pair
	ImmStructField    // struct type index + field index
	ImmSegmentDst     // segment index + table/memory index — memory.init/table.init
	ImmIndex          // a single plain numeric index that is never symbolic (e.g. memory.size)
)

// BlockImmediate is the shared shape of block/loop/if/try/let: a type-use
// and, for a source-level label, its optional bound name.
type BlockImmediate struct {
	Type  BlockType
	Label string // only meaningful for text ASTs; "" when anonymous
}

// MemArg is the (align-log2, offset) pair carried by every memory access
// instruction; align-log2 must be < 32.
type MemArg struct {
	AlignLog2 uint32
	Offset    uint32
}

// BrTableImmediate is br_table's vector of labels plus its default.
type BrTableImmediate struct {
	Labels  []Var
	Default Var
}

// CallIndirectImmediate is call_indirect's type-use plus table reference;
// the MVP encodes the table as a literal zero byte.
type CallIndirectImmediate struct {
	Type  Var
	Table Var
}

// CopyImmediate is the (dst, src) index pair of table.copy/memory.copy.
type CopyImmediate struct {
	Dst, Src Var
}

// SegmentImmediate names a passive segment plus the table/memory it
// initializes, for table.init/memory.init.
type SegmentImmediate struct {
	Segment Var
	Dst     Var
}

// SimdMemoryLaneImmediate is a SIMD load/store-lane's MemArg plus lane
// index.
type SimdMemoryLaneImmediate struct {
	MemArg MemArg
	Lane   byte
}

// Immediate is the payload of an Instruction, tagged by Kind. Exactly one
// of the fields is meaningful, per Kind; this mirrors a closed sum type
// using a single struct rather than an interface, since nearly every
// decode site already knows the expected Kind from the opcode table and
// the interface-per-variant approach buys nothing but allocations here.
type Immediate struct {
	Kind ImmediateKind

	I32  int32
	I64  int64
	F32  uint32 // raw bits
	F64  uint64 // raw bits
	V128 [16]byte

	Var            Var
	Block          BlockImmediate
	BrTable        BrTableImmediate
	CallIndirect   CallIndirectImmediate
	Copy           CopyImmediate
	Segment        SegmentImmediate
	MemArg         MemArg
	SimdMemoryLane SimdMemoryLaneImmediate
	Heap           HeapType
	ValueTypes     []ValueType
	Lane           byte
	Shuffle        [16]byte
}

// Instruction is (opcode, immediate) plus its source Range. Secondary is
// the LEB128 opcode that follows OpcodeMiscPrefix/OpcodeSIMDPrefix/
// OpcodeAtomicPrefix; it is zero and unused otherwise.
type Instruction struct {
	Opcode    Opcode
	Secondary uint32
	Immediate Immediate
	Loc       Range
}
