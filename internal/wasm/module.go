package wasm

// Index is a 32-bit offset into one of a module's ten index spaces:
// types, functions, tables, memories, globals, events, element-segments,
// data-segments, locals and labels. Imports occupy the head of their
// space, in declaration order.
type Index = uint32

// ExternalKind tags what an Import or Export refers to.
type ExternalKind byte

const (
	ExternalKindFunc ExternalKind = iota
	ExternalKindTable
	ExternalKindMemory
	ExternalKindGlobal
	ExternalKindEvent
)

func (k ExternalKind) String() string {
	switch k {
	case ExternalKindFunc:
		return "func"
	case ExternalKindTable:
		return "table"
	case ExternalKindMemory:
		return "memory"
	case ExternalKindGlobal:
		return "global"
	case ExternalKindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// FunctionType is an ordered parameter list and result list. Two function
// types are structurally equal when Params and Results match element-wise;
// BoundParamNames is carried only for the text format ("bound" function
// types attach optional local names to parameters) and is ignored by
// structural equality used for type-use deduplication.
type FunctionType struct {
	Params          []ValueType
	Results         []ValueType
	BoundParamNames []string // len == len(Params) when any name is set; entries may be ""

	Loc Range
}

// EqualSignature reports structural equality of params/results, ignoring
// names. This is the key the type-use deduplication map is keyed on.
func (f *FunctionType) EqualSignature(o *FunctionType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i, p := range f.Params {
		if o.Params[i] != p {
			return false
		}
	}
	for i, r := range f.Results {
		if o.Results[i] != r {
			return false
		}
	}
	return true
}

// FieldType is one field of a GC proposal struct or array type: a storage
// type (a full ValueType, or a packed i8/i16 narrowed on read) plus whether
// the field is mutable.
type FieldType struct {
	Type    ValueType
	Packed  bool // true when Type is one of the packed storage types (i8/i16)
	Mutable bool
}

// Packed storage-type byte codes, valid only inside a FieldType (never a
// plain value type elsewhere).
const (
	PackedTypeI8  ValueType = 0x78
	PackedTypeI16 ValueType = 0x77
)

// StructType is the GC proposal's struct composite type: an ordered list of
// fields, each independently mutable and independently packed.
type StructType struct {
	Fields []FieldType
	Loc    Range
}

// ArrayType is the GC proposal's array composite type: a single element
// field type, repeated to a length decided at ref-creation time.
type ArrayType struct {
	Element FieldType
	Loc     Range
}

// TypeDefKind tags which of FunctionType/StructType/ArrayType a TypeDef
// holds. The GC proposal lets the type section interleave all three in one
// shared index space; the non-GC sections (block types, call_indirect,
// dedup'd implicit type-uses) only ever populate the Func case.
type TypeDefKind byte

const (
	TypeDefFunc TypeDefKind = iota
	TypeDefStruct
	TypeDefArray
)

// TypeDef is one entry of the type index space. Decoding a pre-GC module
// (or parsing text, which does not yet surface struct/array declarations)
// only ever produces TypeDefFunc entries; decodeTypeSection also
// recognises the struct (0x5f) and array (0x5e) tags when FeatureGC is
// enabled and yields the other two kinds for instructions like
// struct.new/array.new (ImmStructField) and rtt.sub (ImmRttSub) to index
// into.
type TypeDef struct {
	Kind   TypeDefKind
	Func   *FunctionType
	Struct *StructType
	Array  *ArrayType
}

// Limits is the (min, optional max) pair shared by table and memory types.
type Limits struct {
	Min uint32
	Max *uint32
}

// TableType describes a table's element type and size limits.
type TableType struct {
	ElemType RefType
	Limits   Limits
}

// MemoryType is a memory's size limits, in 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType is a global's value type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Import is a single imported entity. Desc holds the index into the
// matching declared-type space (DescFunc), or the inline type (DescTable,
// DescMemory, DescGlobal).
type Import struct {
	Module, Name string
	Kind         ExternalKind

	DescFunc   Index
	DescTable  *TableType
	DescMemory *MemoryType
	DescGlobal *GlobalType

	Loc Range
}

// Export maps an external Name to an Index in the space named by Kind.
type Export struct {
	Name  string
	Kind  ExternalKind
	Index Index

	Loc Range
}

// ConstantExpression is an instruction sequence restricted to the opcodes
// legal in const-expr position (numeric const, global.get, ref.null,
// ref.func, v128.const), implicitly terminated by `end`.
type ConstantExpression struct {
	Instructions []Instruction
	Loc          Range
}

// Global is a single global variable declaration with its initializer.
type Global struct {
	Type GlobalType
	Init ConstantExpression
	Loc  Range
}

// ElementMode tags how an element segment is installed.
type ElementMode byte

const (
	ElementModeActive ElementMode = iota
	ElementModePassive
	ElementModeDeclared
)

// ElementSegment initializes a table, either eagerly at instantiation
// (active, with a table index and offset expression), lazily via
// table.init (passive), or never (declared — only ref.func may reference
// it).
type ElementSegment struct {
	Mode       ElementMode
	TableIndex Index // valid when Mode == ElementModeActive
	Offset     ConstantExpression
	Type       RefType
	// Init is either a vector of function indices (the common MVP case) or,
	// when AreInitExprs is true, a vector of const-expr initializers (the
	// bulk-memory/reference-types element-expression form).
	Init         []Index
	InitExprs    []ConstantExpression
	AreInitExprs bool

	Loc Range
}

// DataMode mirrors ElementMode for data segments: active segments install
// into a memory at instantiation, passive segments are installed lazily via
// memory.init.
type DataMode byte

const (
	DataModeActive DataMode = iota
	DataModePassive
)

// DataSegment initializes a memory region.
type DataSegment struct {
	Mode        DataMode
	MemoryIndex Index // valid when Mode == DataModeActive
	Offset      ConstantExpression
	Init        []byte

	Loc Range
}

// Code is the unpacked body of a function: the flattened locals list
// (declared locals only — parameters are not repeated here) followed by
// the instruction sequence, terminated by a top-level `end` that is not
// itself included.
type Code struct {
	LocalTypes []ValueType
	Body       []Instruction
	BodyLoc    Range
	Loc        Range
}

// Event is the exception-handling proposal's event declaration: a type-use
// naming the event's parameter signature.
type Event struct {
	Type Index // index into TypeSection

	Loc Range
}

// CustomSection is a non-standard or name/linking/relocation section kept
// verbatim; Data excludes the name itself.
type CustomSection struct {
	Name string
	Data []byte

	Loc Range
}

// NameSection is the decoded form of the well-known "name" custom section.
type NameSection struct {
	ModuleName string
	// FunctionNames and LocalNames keep the order in which the section lists
	// them; the decoder neither sorts them nor checks that indices ascend.
	FunctionNames []NameAssoc
	LocalNames    []IndirectNameAssoc
}

type NameAssoc struct {
	Index Index
	Name  string
}

type IndirectNameAssoc struct {
	Index Index
	Names []NameAssoc
}

// Module is the ordered concatenation of every section's items. Field
// order here does not prescribe section order on the wire: DecodeModule
// rejects a repeated section but does not check the order of sections, and
// the wasptool encoder writes sections in the canonical binary order.
type Module struct {
	TypeSection     []*TypeDef
	ImportSection   []*Import
	FunctionSection []Index // each entry indexes TypeSection
	TableSection    []*TableType
	MemorySection   []*MemoryType
	GlobalSection   []*Global
	ExportSection   []*Export
	StartSection    *Index
	ElementSection  []*ElementSegment
	CodeSection     []*Code
	DataSection     []*DataSegment
	EventSection    []*Event

	DataCountSection *uint32

	NameSection    *NameSection
	LinkingSection *LinkingSection
	Relocations    map[string][]RelocationEntry // keyed by the section name being relocated
	CustomSections []*CustomSection
}

// FuncTypeAt returns the function signature at the given type-space index,
// or nil if idx is out of range or names a struct/array composite type
// instead. Every caller that looks up a function/call_indirect/block
// type-use index expects a FunctionType; a GC struct/array entry there
// would itself be a validity error this package does not check.
func (m *Module) FuncTypeAt(idx Index) *FunctionType {
	if int(idx) >= len(m.TypeSection) {
		return nil
	}
	return m.TypeSection[idx].Func
}

// LinkingSection is the decoded form of the "linking" custom section used
// by the object-file (wasm-ld) toolchain: per-segment metadata, the symbol
// table, COMDAT groups, and the list of initializer functions.
type LinkingSection struct {
	Version       uint32
	SegmentInfos  []SegmentInfo
	SymbolTable   []SymbolInfo
	Comdats       []Comdat
	InitFunctions []InitFunction
}

// SegmentInfo names and aligns a data segment for the linker.
type SegmentInfo struct {
	Name      string
	Alignment uint32
	Flags     uint32
}

// SymbolFlags are the bit flags carried by each SymbolInfo.
type SymbolFlags uint32

const (
	SymbolFlagWeak         SymbolFlags = 1 << 0
	SymbolFlagLocal        SymbolFlags = 1 << 1
	SymbolFlagHidden       SymbolFlags = 1 << 2
	SymbolFlagUndefined    SymbolFlags = 1 << 4
	SymbolFlagExported     SymbolFlags = 1 << 5
	SymbolFlagExplicitName SymbolFlags = 1 << 6
	SymbolFlagNoStrip      SymbolFlags = 1 << 7
)

// SymbolKind tags the shape of a SymbolInfo's payload.
type SymbolKind byte

const (
	SymbolKindFunction SymbolKind = iota
	SymbolKindData
	SymbolKindGlobal
	SymbolKindSection
	SymbolKindEvent
	SymbolKindTable
)

// SymbolInfo is one entry of the linking section's symbol table.
type SymbolInfo struct {
	Kind  SymbolKind
	Flags SymbolFlags

	// Name is absent (empty) for an unnamed/implicit-name data symbol.
	Name string

	// Index is valid for Function/Global/Event/Table/Section kinds: the
	// index into the corresponding space (or, for Section, the section
	// index used by the reloc.* sections).
	Index Index

	// DataSegment/Offset/Size are valid only for SymbolKindData, and only
	// when the symbol is defined (SymbolFlagUndefined unset).
	DataSegment Index
	Offset      uint32
	Size        uint32
}

// Comdat groups a set of symbols that must be included or excluded from
// the final link together.
type Comdat struct {
	Name  string
	Flags uint32
	Syms  []ComdatSym
}

// ComdatSym identifies one member of a Comdat by kind and index into the
// corresponding index space (function, data segment, or section).
type ComdatSym struct {
	Kind  SymbolKind
	Index Index
}

// InitFunction names a function to run at load time, along with its
// relative priority (lower runs first).
type InitFunction struct {
	Priority Index
	Function Index
}

// RelocationKind identifies what an entry in a reloc.* section rewrites.
type RelocationKind byte

const (
	RelocationFunctionIndexLEB RelocationKind = iota
	RelocationTableIndexSLEB
	RelocationTableIndexI32
	RelocationMemoryAddrLEB
	RelocationMemoryAddrSLEB
	RelocationMemoryAddrI32
	RelocationTypeIndexLEB
	RelocationGlobalIndexLEB
	RelocationFunctionOffsetI32
	RelocationSectionOffsetI32
	RelocationEventIndexLEB
	RelocationMemoryAddrRelSLEB
	RelocationTableIndexRelSLEB
	RelocationGlobalIndexI32
)

// RelocationEntry is one entry of a reloc.<section> custom section: the
// byte Offset (into the target section) to patch, the Index into the
// symbol table, and an Addend used by the memory-address/section-offset/
// function-offset kinds.
type RelocationEntry struct {
	Kind   RelocationKind
	Offset uint32
	Index  Index
	Addend int32

	Loc Range
}
