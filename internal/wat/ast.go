package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// OptName is an optional `$identifier` bind-name. Present is false for an
// anonymous item: it still occupies one slot in its index space, but the
// slot is unbound.
type OptName struct {
	Present bool
	Name    string
	Loc     wasm.Range
}

// ItemKind tags a Module's top-level items. Desugaring removes
// InlineExport/inline segment sugar from an item and keeps its Kind, except
// that an item carrying an InlineImport is replaced by an ItemImport.
type ItemKind int

const (
	ItemType ItemKind = iota
	ItemImport
	ItemFunc
	ItemTable
	ItemMemory
	ItemGlobal
	ItemExport
	ItemStart
	ItemElem
	ItemData
	ItemEvent
)

// InlineImport is the `(import "a" "b")` sugar attachable to a func/table/
// memory/global/event item in place of a separate top-level import.
type InlineImport struct {
	Module, Field string
	Loc           wasm.Range
}

// InlineExport is one `(export "name")` sugar clause; an item may carry
// several.
type InlineExport struct {
	Name string
	Loc  wasm.Range
}

// TypeUse is a type-use position: an optional explicit `(type N)` and/or an
// explicit inline `param`/`result` clause. After name resolution, Type
// always holds the fully populated signature regardless of which form the
// source used.
type TypeUse struct {
	HasIndex    bool
	Index       wasm.Var
	HasExplicit bool
	Type        wasm.FunctionType
	Loc         wasm.Range
}

// LocalDecl is one declared local (not a parameter) in a function body.
type LocalDecl struct {
	Name OptName
	Type wasm.ValueType
}

// InlineElements is the `(elem ...)` sugar attached directly to a `table`
// item, desugared into a standalone active ElemItem.
type InlineElements struct {
	RefType  wasm.RefType
	Vars     []wasm.Var
	Exprs    [][]wasm.Instruction
	UseExprs bool
	Loc      wasm.Range
}

// TypeItem is a `(type $t (func ...))` declaration.
type TypeItem struct {
	Name OptName
	Type wasm.FunctionType
	Loc  wasm.Range
}

// ImportItem is a canonical (non-inline) `(import "a" "b" (func ...))`.
type ImportItem struct {
	Name   OptName // the described entity's own bind-name, if any
	Module string
	Field  string
	Kind   wasm.ExternalKind

	DescFunc   TypeUse
	DescTable  *wasm.TableType
	DescMemory *wasm.MemoryType
	DescGlobal *wasm.GlobalType
	Loc        wasm.Range
}

// FuncItem is a function definition. InlineImport/InlineExports are sugar
// removed by desugar; a desugared FuncItem never has InlineImport set and
// has a body (an imported function has no FuncItem at all post-desugar,
// only an ImportItem).
type FuncItem struct {
	Name          OptName
	InlineImport  *InlineImport
	InlineExports []InlineExport
	Type          TypeUse
	Locals        []LocalDecl
	Body          []wasm.Instruction
	Loc           wasm.Range
}

// TableItem is a table declaration.
type TableItem struct {
	Name           OptName
	InlineImport   *InlineImport
	InlineExports  []InlineExport
	Type           wasm.TableType
	InlineElements *InlineElements
	Loc            wasm.Range
}

// MemoryItem is a memory declaration.
type MemoryItem struct {
	Name          OptName
	InlineImport  *InlineImport
	InlineExports []InlineExport
	Type          wasm.MemoryType
	InlineData    [][]byte
	Loc           wasm.Range
}

// GlobalItem is a global declaration.
type GlobalItem struct {
	Name          OptName
	InlineImport  *InlineImport
	InlineExports []InlineExport
	Type          wasm.GlobalType
	Init          []wasm.Instruction
	Loc           wasm.Range
}

// ExportItem is a canonical (non-inline) `(export "name" (func $f))`.
type ExportItem struct {
	Name string
	Kind wasm.ExternalKind
	Var  wasm.Var
	Loc  wasm.Range
}

// StartItem is the module's `(start $f)` declaration.
type StartItem struct {
	Var wasm.Var
	Loc wasm.Range
}

// ElemItem is a standalone element segment.
type ElemItem struct {
	Name     OptName
	Mode     wasm.ElementMode
	TableVar wasm.Var // valid when Mode == ElementModeActive
	Offset   []wasm.Instruction
	RefType  wasm.RefType
	Vars     []wasm.Var
	Exprs    [][]wasm.Instruction
	UseExprs bool
	Loc      wasm.Range
}

// DataItem is a standalone data segment.
type DataItem struct {
	Name      OptName
	Mode      wasm.DataMode
	MemoryVar wasm.Var
	Offset    []wasm.Instruction
	Init      []byte
	Loc       wasm.Range
}

// EventItem is the exception-handling proposal's `(event ...)` declaration.
type EventItem struct {
	Name          OptName
	InlineImport  *InlineImport
	InlineExports []InlineExport
	Type          TypeUse
	Loc           wasm.Range
}

// Item is one top-level module item, tagged by Kind. Exactly one of the
// payload pointers is non-nil, mirroring wasm.Immediate's closed-sum-type
// shape.
type Item struct {
	Kind ItemKind
	Loc  wasm.Range

	Type   *TypeItem
	Import *ImportItem
	Func   *FuncItem
	Table  *TableItem
	Memory *MemoryItem
	Global *GlobalItem
	Export *ExportItem
	Start  *StartItem
	Elem   *ElemItem
	Data   *DataItem
	Event  *EventItem
}

// Module is the ordered list of top-level items a .wat module parses to,
// or that the binary->text converter produces from a decoded binary
// Module. It is the same shape before and after resolve/desugar; those
// passes rewrite the Vars inside it, remove sugar fields, and add or
// reorder items (type items for implicit type uses, export/elem/data items
// split out of sugar).
type Module struct {
	Items []Item
	Loc   wasm.Range
}

// ScriptCommand is one command of a .wast script: a module definition, a
// register directive, an action, or an assertion wrapping an action. Only
// enough structure to parse and round-trip scripts is kept — evaluating
// them is out of scope; the script/assertion language is an external
// collaborator this package doesn't own.
type ScriptCommand struct {
	Kind ScriptCommandKind
	Loc  wasm.Range

	Module         *Module
	ModuleName     OptName
	RegisterAs     string
	RegisterModule OptName
	Action         *Action
	AssertKind     StructKeyword      // one of the KwAssert* values, when Kind == ScriptAssertion
	Expected       []wasm.Instruction // assert_return's expected-value const list
	Failure        string             // assert_trap/_malformed/_invalid/_unlinkable/_exhaustion's message
}

type ScriptCommandKind int

const (
	ScriptModule ScriptCommandKind = iota
	ScriptRegister
	ScriptAction
	ScriptAssertion
)

// Action is `(invoke $name "export" args...)` or `(get $name "export")`.
type Action struct {
	Kind   StructKeyword // KwInvoke or KwGet
	Module OptName
	Export string
	Args   []wasm.Instruction
	Loc    wasm.Range
}
