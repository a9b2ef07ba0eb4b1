package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// StructKeyword enumerates the grammar keywords that aren't instruction
// mnemonics: module item headers, type shorthands, and block-structure
// words. Instruction mnemonics are looked up separately, straight off the
// opcode tables in internal/wasm, so the two keyword spaces never drift
// apart.
type StructKeyword int

const (
	KwModule StructKeyword = iota
	KwFunc
	KwParam
	KwResult
	KwType
	KwImport
	KwExport
	KwTable
	KwMemory
	KwGlobal
	KwElem
	KwData
	KwStart
	KwLocal
	KwEvent
	KwBlock
	KwLoop
	KwIf
	KwElse
	KwEnd
	KwThen
	KwMut
	KwOffset
	KwItem
	KwDeclare
	KwPassive
	KwI32
	KwI64
	KwF32
	KwF64
	KwV128
	KwFuncref
	KwExternref
	KwRegister
	KwAssertReturn
	KwAssertTrap
	KwAssertMalformed
	KwAssertInvalid
	KwAssertUnlinkable
	KwAssertExhaustion
	KwInvoke
	KwGet
)

var structKeywords = map[string]StructKeyword{
	"module": KwModule, "func": KwFunc, "param": KwParam, "result": KwResult,
	"type": KwType, "import": KwImport, "export": KwExport, "table": KwTable,
	"memory": KwMemory, "global": KwGlobal, "elem": KwElem, "data": KwData,
	"start": KwStart, "local": KwLocal, "event": KwEvent, "block": KwBlock,
	"loop": KwLoop, "if": KwIf, "else": KwElse, "end": KwEnd, "then": KwThen,
	"mut": KwMut, "offset": KwOffset, "item": KwItem, "declare": KwDeclare,
	"passive": KwPassive, "i32": KwI32, "i64": KwI64, "f32": KwF32, "f64": KwF64,
	"v128": KwV128, "funcref": KwFuncref, "externref": KwExternref,
	"register": KwRegister, "assert_return": KwAssertReturn,
	"assert_trap": KwAssertTrap, "assert_malformed": KwAssertMalformed,
	"assert_invalid": KwAssertInvalid, "assert_unlinkable": KwAssertUnlinkable,
	"assert_exhaustion": KwAssertExhaustion, "invoke": KwInvoke, "get": KwGet,
}

// trieNode is one node of the character-trie structKeywords is compiled
// into: a child per next byte, and (when this node terminates a keyword)
// the keyword it names.
type trieNode struct {
	children map[byte]*trieNode
	kw       StructKeyword
	isLeaf   bool
}

var keywordTrie = buildTrie(structKeywords)

func buildTrie(words map[string]StructKeyword) *trieNode {
	root := &trieNode{children: map[byte]*trieNode{}}
	for word, kw := range words {
		n := root
		for i := 0; i < len(word); i++ {
			b := word[i]
			child, ok := n.children[b]
			if !ok {
				child = &trieNode{children: map[byte]*trieNode{}}
				n.children[b] = child
			}
			n = child
		}
		n.kw = kw
		n.isLeaf = true
	}
	return root
}

// LookupStructKeyword walks the trie for an exact match of text. Used for
// every keyword token that isn't dispatched as an instruction mnemonic.
func LookupStructKeyword(text string) (StructKeyword, bool) {
	n := keywordTrie
	for i := 0; i < len(text); i++ {
		child, ok := n.children[text[i]]
		if !ok {
			return 0, false
		}
		n = child
	}
	if n.isLeaf {
		return n.kw, true
	}
	return 0, false
}

// InstructionKeyword is what LookupInstructionKeyword returns: enough to
// build an Instruction's opcode/secondary pair plus the immediate shape the
// parser must read next.
type InstructionKeyword struct {
	Opcode    wasm.Opcode
	Secondary uint32
	Immediate wasm.ImmediateKind
	Feature   wasm.Features
}

// LookupInstructionKeyword dispatches a bare mnemonic ("i32.add",
// "memory.copy", "i32x4.splat", ...) against the primary, misc-prefixed and
// SIMD-prefixed opcode tables in that order.
func LookupInstructionKeyword(text string) (InstructionKeyword, bool) {
	if op, info, ok := wasm.LookupMnemonic(text); ok {
		return InstructionKeyword{Opcode: op, Immediate: info.Immediate, Feature: info.Feature}, true
	}
	if sec, info, ok := wasm.LookupMiscMnemonic(text); ok {
		return InstructionKeyword{Opcode: wasm.OpcodeMiscPrefix, Secondary: sec, Immediate: info.Immediate, Feature: info.Feature}, true
	}
	if sec, info, ok := wasm.LookupSIMDMnemonic(text); ok {
		return InstructionKeyword{Opcode: wasm.OpcodeSIMDPrefix, Secondary: sec, Immediate: info.Immediate, Feature: info.Feature}, true
	}
	return InstructionKeyword{}, false
}
