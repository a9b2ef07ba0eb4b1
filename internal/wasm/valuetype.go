package wasm

// ValueType is the binary encoding byte of a WebAssembly value type: a
// numeric type, a reference type, or (GC proposal) a Rtt. Block types and
// function signatures are built from these.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
	ValueTypeV128 ValueType = 0x7b

	// ValueTypeFuncref and ValueTypeExternref are the MVP/reference-types
	// shorthand encodings; decoding either yields a RefType with HeapType
	// kind set to HeapKindFunc or HeapKindExtern and Nullable true.
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

// IsNumeric reports whether v is i32, i64, f32, f64 or v128.
func (v ValueType) IsNumeric() bool {
	switch v {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128:
		return true
	}
	return false
}

func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

// HeapType identifies the referenced heap: either a well-known kind or (as
// Index) an entry in the type index space.
type HeapType struct {
	// Kind is one of the HeapKindXxx constants, or HeapKindTypeIndex if
	// this heap type names a declared function type.
	Kind  HeapKind
	Index Index // valid only when Kind == HeapKindTypeIndex
}

type HeapKind byte

const (
	HeapKindFunc HeapKind = iota
	HeapKindExtern
	HeapKindExn
	HeapKindEq
	HeapKindI31
	HeapKindAny
	HeapKindTypeIndex
)

func (h HeapType) String() string {
	switch h.Kind {
	case HeapKindFunc:
		return "func"
	case HeapKindExtern:
		return "extern"
	case HeapKindExn:
		return "exn"
	case HeapKindEq:
		return "eq"
	case HeapKindI31:
		return "i31"
	case HeapKindAny:
		return "any"
	default:
		return "type-index"
	}
}

// RefType is a reference value type: a nullability flag plus a HeapType.
// The classic shorthands funcref/externref desugar to (null, func) and
// (null, extern).
type RefType struct {
	Nullable bool
	Heap     HeapType
}

func (r RefType) String() string {
	suffix := "ref"
	if !r.Nullable {
		suffix = " ref"
	}
	return r.Heap.String() + suffix
}

// Rtt is the GC proposal's runtime type: a depth plus the heap type it
// asserts.
type Rtt struct {
	Depth uint32
	Heap  HeapType
}

// BlockTypeKind distinguishes the three shapes a block signature can take.
type BlockTypeKind byte

const (
	// BlockTypeVoid is the `-0x40` encoding: no params, no results.
	BlockTypeVoid BlockTypeKind = iota
	// BlockTypeValue is a single inline result type (no params).
	BlockTypeValue
	// BlockTypeFuncType indexes the type section (multi-value proposal).
	BlockTypeFuncType
)

// BlockType is the signature of a structured control instruction
// (block/loop/if/try/let).
//
// The FuncType case carries two representations simultaneously so both the
// binary decoder and the text parser can populate it without the other
// needing to know: the binary decoder sets TypeIndex directly (it never
// has names); the text parser sets TypeVar (possibly a VarName) plus, for
// an inline `(param...) (result...)` clause, ExplicitParams/Results, and
// leaves TypeIndex zero until name resolution fills it in from TypeVar or
// dedups the explicit signature into the type section.
type BlockType struct {
	Kind      BlockTypeKind
	ValueType ValueType // valid when Kind == BlockTypeValue

	TypeIndex       Index  // valid when Kind == BlockTypeFuncType, once resolved
	HasTypeVar      bool   // true if TypeVar should be consulted (text parsing only)
	TypeVar         Var    // text form of an explicit `(type N)` clause
	HasExplicitSig  bool   // true if an inline param/result clause was given
	ExplicitParams  []ValueType
	ExplicitResults []ValueType
}
