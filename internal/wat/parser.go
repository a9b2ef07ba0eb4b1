package wat

import (
	"math"
	"strconv"
	"strings"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// ParseCtx carries the feature set across a single parse, the way
// wasm.Sink carries diagnostics: passed explicitly, never global.
type ParseCtx struct {
	Features wasm.Features
	Sink     *wasm.Sink
}

// Parser is recursive-descent over a token stream. It never aborts on a
// bad item: a malformed item is skipped up to its closing paren so the
// rest of the module can still be parsed, mirroring the binary decoder's
// "move on to the next entity" discipline.
type Parser struct {
	ctx   *ParseCtx
	lex   *Lexer
	tok   Token
	peek2 Token
	have2 bool
}

// NewParser tokenizes src lazily as the parser consumes it.
func NewParser(src string, ctx *ParseCtx) *Parser {
	p := &Parser{ctx: ctx, lex: NewLexer(src, ctx.Sink)}
	p.advance()
	return p
}

func (p *Parser) advance() Token {
	if p.have2 {
		p.tok = p.peek2
		p.have2 = false
	} else {
		p.tok = p.lex.Next()
	}
	return p.tok
}

func (p *Parser) peekNext() Token {
	if !p.have2 {
		p.peek2 = p.lex.Next()
		p.have2 = true
	}
	return p.peek2
}

func (p *Parser) err(format string, args ...any) {
	p.ctx.Sink.Report(p.tok.Loc, format, args...)
}

// skipToMatchingRPar consumes tokens (tracking paren depth) until the
// currently-open list is closed. Used to recover from a malformed item.
func (p *Parser) skipToMatchingRPar() {
	depth := 1
	for depth > 0 {
		switch p.tok.Kind {
		case TokenLPar:
			depth++
		case TokenRPar:
			depth--
		case TokenEOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) expectLPar() bool {
	if p.tok.Kind != TokenLPar {
		p.err("expected '('")
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectRPar() bool {
	if p.tok.Kind != TokenRPar {
		p.err("expected ')', got %s %q", p.tok.Kind, p.tok.Text)
		return false
	}
	p.advance()
	return true
}

func (p *Parser) atKeyword(kw StructKeyword) bool {
	if p.tok.Kind != TokenKeyword {
		return false
	}
	k, ok := LookupStructKeyword(p.tok.Text)
	return ok && k == kw
}

// optID consumes and returns a leading `$name`, if present.
func (p *Parser) optID() OptName {
	if p.tok.Kind != TokenID {
		return OptName{}
	}
	n := OptName{Present: true, Name: p.tok.Text, Loc: p.tok.Loc}
	p.advance()
	return n
}

// ParseModule parses a single `(module ...)` form, or (if the input has no
// enclosing `module` keyword) a bare sequence of module-level items — the
// abbreviation the text grammar always allows at the top level.
func ParseModule(src string, ctx *ParseCtx) *Module {
	p := NewParser(src, ctx)
	m := &Module{}
	start := p.tok.Loc.Start

	explicit := p.tok.Kind == TokenLPar && p.peekAtKeyword(KwModule)
	if explicit {
		p.advance() // (
		p.advance() // module
		_ = p.optID()
		for p.tok.Kind != TokenRPar && p.tok.Kind != TokenEOF {
			p.parseModuleItem(m)
		}
		p.expectRPar()
	} else {
		for p.tok.Kind != TokenEOF {
			p.parseModuleItem(m)
		}
	}
	m.Loc = wasm.Range{Start: start, End: p.tok.Loc.End}
	return m
}

// peekAtKeyword reports whether the *next* token (after the current LPar)
// is the given structural keyword, without consuming anything.
func (p *Parser) peekAtKeyword(kw StructKeyword) bool {
	n := p.peekNext()
	if n.Kind != TokenKeyword {
		return false
	}
	k, ok := LookupStructKeyword(n.Text)
	return ok && k == kw
}

func (p *Parser) parseModuleItem(m *Module) {
	if p.tok.Kind != TokenLPar {
		p.err("expected module item")
		p.advance()
		return
	}
	kw, ok := p.peekItemKeyword()
	if !ok {
		p.err("unknown module item")
		p.advance()
		p.skipToMatchingRPar()
		return
	}
	p.advance() // (
	p.advance() // keyword

	switch kw {
	case KwType:
		m.Items = append(m.Items, p.parseTypeItem())
	case KwImport:
		m.Items = append(m.Items, p.parseImportItem())
	case KwFunc:
		m.Items = append(m.Items, p.parseFuncItem()...)
	case KwTable:
		m.Items = append(m.Items, p.parseTableItem()...)
	case KwMemory:
		m.Items = append(m.Items, p.parseMemoryItem()...)
	case KwGlobal:
		m.Items = append(m.Items, p.parseGlobalItem()...)
	case KwExport:
		m.Items = append(m.Items, p.parseExportItem())
	case KwStart:
		m.Items = append(m.Items, p.parseStartItem())
	case KwElem:
		m.Items = append(m.Items, p.parseElemItem())
	case KwData:
		m.Items = append(m.Items, p.parseDataItem())
	case KwEvent:
		m.Items = append(m.Items, p.parseEventItem())
	default:
		p.err("unexpected module item")
		p.skipToMatchingRPar()
		return
	}
}

// peekItemKeyword identifies the keyword following the current "(" without
// advancing past the paren.
func (p *Parser) peekItemKeyword() (StructKeyword, bool) {
	n := p.peekNext()
	if n.Kind != TokenKeyword {
		return 0, false
	}
	return LookupStructKeyword(n.Text)
}

// --- type ---

func (p *Parser) parseTypeItem() Item {
	start := p.tok.Loc.Start
	name := p.optID()
	ft := wasm.FunctionType{}
	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwFunc) {
		p.advance()
		p.advance()
		ft = p.parseFuncTypeBody()
		p.expectRPar()
	}
	p.expectRPar()
	return Item{Kind: ItemType, Loc: p.rangeFrom(start), Type: &TypeItem{Name: name, Type: ft, Loc: p.rangeFrom(start)}}
}

// parseFuncTypeBody parses the param*/result* clauses inside `(func ...)`
// or `(type N)`'s explicit signature, assuming the opening `(func` (or
// equivalent) has already been consumed.
func (p *Parser) parseFuncTypeBody() wasm.FunctionType {
	var ft wasm.FunctionType
	for p.tok.Kind == TokenLPar {
		if p.peekAtKeyword(KwParam) {
			p.advance()
			p.advance()
			name := OptName{}
			if p.tok.Kind == TokenID {
				name = p.optID()
			}
			for p.tok.Kind == TokenKeyword {
				vt, ok := p.parseValueType()
				if !ok {
					break
				}
				ft.Params = append(ft.Params, vt)
				ft.BoundParamNames = append(ft.BoundParamNames, name.Name)
				name = OptName{}
			}
			p.expectRPar()
		} else if p.peekAtKeyword(KwResult) {
			p.advance()
			p.advance()
			for p.tok.Kind == TokenKeyword {
				vt, ok := p.parseValueType()
				if !ok {
					break
				}
				ft.Results = append(ft.Results, vt)
			}
			p.expectRPar()
		} else {
			break
		}
	}
	return ft
}

func (p *Parser) parseValueType() (wasm.ValueType, bool) {
	if p.tok.Kind != TokenKeyword {
		return 0, false
	}
	kw, ok := LookupStructKeyword(p.tok.Text)
	if !ok {
		p.err("expected value type, got %q", p.tok.Text)
		return 0, false
	}
	var vt wasm.ValueType
	switch kw {
	case KwI32:
		vt = wasm.ValueTypeI32
	case KwI64:
		vt = wasm.ValueTypeI64
	case KwF32:
		vt = wasm.ValueTypeF32
	case KwF64:
		vt = wasm.ValueTypeF64
	case KwV128:
		vt = wasm.ValueTypeV128
	case KwFuncref:
		vt = wasm.ValueTypeFuncref
	case KwExternref:
		vt = wasm.ValueTypeExternref
	default:
		p.err("expected value type, got %q", p.tok.Text)
		return 0, false
	}
	p.advance()
	return vt, true
}

// --- type use ---

// parseTypeUse parses an optional `(type N)` followed by optional explicit
// param/result clauses; either, both, or neither may be present. Resolution
// reconciles the two.
func (p *Parser) parseTypeUse() TypeUse {
	start := p.tok.Loc.Start
	var tu TypeUse
	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwType) {
		p.advance()
		p.advance()
		tu.HasIndex = true
		tu.Index = p.parseVar()
		p.expectRPar()
	}
	if p.tok.Kind == TokenLPar && (p.peekAtKeyword(KwParam) || p.peekAtKeyword(KwResult)) {
		tu.HasExplicit = true
		tu.Type = p.parseFuncTypeBody()
	}
	tu.Loc = p.rangeFrom(start)
	return tu
}

func (p *Parser) rangeFrom(start uint32) wasm.Range {
	return wasm.Range{Start: start, End: p.tok.Loc.Start}
}

// --- var ---

func (p *Parser) parseVar() wasm.Var {
	switch p.tok.Kind {
	case TokenID:
		v := wasm.NameVar(p.tok.Text, p.tok.Loc)
		p.advance()
		return v
	case TokenNat:
		n, err := strconv.ParseUint(stripUnderscores(p.tok.Text), 0, 32)
		loc := p.tok.Loc
		if err != nil {
			p.err("invalid index %q", p.tok.Text)
		}
		p.advance()
		return wasm.Var{Kind: wasm.VarIndex, Index: uint32(n), Loc: loc}
	default:
		p.err("expected identifier or index, got %s", p.tok.Kind)
		return wasm.Var{}
	}
}

func stripUnderscores(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}

// --- inline import/export sugar ---

func (p *Parser) tryParseInlineImport() *InlineImport {
	if p.tok.Kind != TokenLPar || !p.peekAtKeyword(KwImport) {
		return nil
	}
	start := p.tok.Loc.Start
	p.advance()
	p.advance()
	mod := p.parseStringLiteral()
	field := p.parseStringLiteral()
	p.expectRPar()
	return &InlineImport{Module: mod, Field: field, Loc: p.rangeFrom(start)}
}

func (p *Parser) tryParseInlineExports() []InlineExport {
	var out []InlineExport
	for p.tok.Kind == TokenLPar && p.peekAtKeyword(KwExport) {
		start := p.tok.Loc.Start
		p.advance()
		p.advance()
		name := p.parseStringLiteral()
		p.expectRPar()
		out = append(out, InlineExport{Name: name, Loc: p.rangeFrom(start)})
	}
	return out
}

func (p *Parser) parseStringLiteral() string {
	if p.tok.Kind != TokenString {
		p.err("expected string literal")
		return ""
	}
	s := string(p.tok.Decoded)
	p.advance()
	return s
}

// --- import ---

func (p *Parser) parseImportItem() Item {
	start := p.tok.Loc.Start
	mod := p.parseStringLiteral()
	field := p.parseStringLiteral()
	imp := &ImportItem{Module: mod, Field: field}

	if !p.expectLPar() {
		p.skipToMatchingRPar()
		return Item{Kind: ItemImport, Loc: p.rangeFrom(start), Import: imp}
	}
	kw, _ := LookupStructKeyword(p.tok.Text)
	p.advance()
	imp.Name = p.optID()
	switch kw {
	case KwFunc:
		imp.Kind = wasm.ExternalKindFunc
		imp.DescFunc = p.parseTypeUse()
	case KwTable:
		imp.Kind = wasm.ExternalKindTable
		tt := p.parseTableType()
		imp.DescTable = &tt
	case KwMemory:
		imp.Kind = wasm.ExternalKindMemory
		mt := p.parseMemoryType()
		imp.DescMemory = &mt
	case KwGlobal:
		imp.Kind = wasm.ExternalKindGlobal
		gt := p.parseGlobalType()
		imp.DescGlobal = &gt
	case KwEvent:
		imp.Kind = wasm.ExternalKindEvent
		imp.DescFunc = p.parseTypeUse()
	default:
		p.err("expected importable kind")
	}
	p.expectRPar()
	p.expectRPar()
	imp.Loc = p.rangeFrom(start)
	return Item{Kind: ItemImport, Loc: imp.Loc, Import: imp}
}

func (p *Parser) parseLimits() wasm.Limits {
	min := p.parseU32Literal()
	l := wasm.Limits{Min: min}
	if p.tok.Kind == TokenNat {
		max := p.parseU32Literal()
		l.Max = &max
	}
	return l
}

func (p *Parser) parseU32Literal() uint32 {
	if p.tok.Kind != TokenNat {
		p.err("expected integer literal")
		return 0
	}
	v, err := strconv.ParseUint(stripUnderscores(p.tok.Text), 0, 32)
	if err != nil {
		p.err("invalid integer literal %q", p.tok.Text)
	}
	p.advance()
	return uint32(v)
}

func (p *Parser) parseRefType() wasm.RefType {
	if p.tok.Kind != TokenKeyword {
		p.err("expected reference type")
		return wasm.RefType{}
	}
	kw, ok := LookupStructKeyword(p.tok.Text)
	if ok && kw == KwFuncref {
		p.advance()
		return wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}
	}
	if ok && kw == KwExternref {
		p.advance()
		return wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindExtern}}
	}
	p.err("expected reference type, got %q", p.tok.Text)
	p.advance()
	return wasm.RefType{}
}

func (p *Parser) parseTableType() wasm.TableType {
	l := p.parseLimits()
	rt := p.parseRefType()
	return wasm.TableType{ElemType: rt, Limits: l}
}

func (p *Parser) parseMemoryType() wasm.MemoryType {
	return wasm.MemoryType{Limits: p.parseLimits()}
}

func (p *Parser) parseGlobalType() wasm.GlobalType {
	mut := false
	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwMut) {
		p.advance()
		p.advance()
		mut = true
		vt, _ := p.parseValueType()
		p.expectRPar()
		return wasm.GlobalType{ValType: vt, Mutable: mut}
	}
	vt, _ := p.parseValueType()
	return wasm.GlobalType{ValType: vt, Mutable: mut}
}

// --- func ---

func (p *Parser) parseFuncItem() []Item {
	start := p.tok.Loc.Start
	name := p.optID()
	fn := &FuncItem{Name: name}
	fn.InlineImport = p.tryParseInlineImport()
	fn.InlineExports = p.tryParseInlineExports()
	fn.Type = p.parseTypeUse()

	if fn.InlineImport == nil {
		for p.tok.Kind == TokenLPar && p.peekAtKeyword(KwLocal) {
			p.advance()
			p.advance()
			lname := OptName{}
			if p.tok.Kind == TokenID {
				lname = p.optID()
			}
			for p.tok.Kind == TokenKeyword {
				vt, ok := p.parseValueType()
				if !ok {
					break
				}
				fn.Locals = append(fn.Locals, LocalDecl{Name: lname, Type: vt})
				lname = OptName{}
			}
			p.expectRPar()
		}
		p.parseInstructionSeq(&fn.Body)
	}
	p.expectRPar()
	fn.Loc = p.rangeFrom(start)
	return []Item{{Kind: ItemFunc, Loc: fn.Loc, Func: fn}}
}

// --- table ---

func (p *Parser) parseTableItem() []Item {
	start := p.tok.Loc.Start
	tbl := &TableItem{Name: p.optID()}
	tbl.InlineImport = p.tryParseInlineImport()
	tbl.InlineExports = p.tryParseInlineExports()

	// Inline-elements sugar: `(table $t funcref (elem $a $b))` — the limits
	// are implied by the element count rather than written out.
	rt := wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}
	if p.atKeyword(KwFuncref) || p.atKeyword(KwExternref) {
		rt = p.parseRefType()
	}
	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwElem) {
		p.advance()
		p.advance()
		ie := &InlineElements{RefType: rt}
		for p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			ie.Vars = append(ie.Vars, p.parseVar())
		}
		p.expectRPar()
		tbl.InlineElements = ie
		tbl.Type = wasm.TableType{ElemType: rt, Limits: wasm.Limits{Min: uint32(len(ie.Vars))}}
	} else {
		tbl.Type = p.parseTableType()
	}
	p.expectRPar()
	tbl.Loc = p.rangeFrom(start)
	return []Item{{Kind: ItemTable, Loc: tbl.Loc, Table: tbl}}
}

// --- memory ---

func (p *Parser) parseMemoryItem() []Item {
	start := p.tok.Loc.Start
	mem := &MemoryItem{Name: p.optID()}
	mem.InlineImport = p.tryParseInlineImport()
	mem.InlineExports = p.tryParseInlineExports()

	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwData) {
		p.advance()
		p.advance()
		var total []byte
		for p.tok.Kind == TokenString {
			total = append(total, p.tok.Decoded...)
			p.advance()
		}
		p.expectRPar()
		mem.InlineData = [][]byte{total}
		pages := (uint32(len(total)) + 65535) / 65536
		mem.Type = wasm.MemoryType{Limits: wasm.Limits{Min: pages, Max: &pages}}
	} else {
		mem.Type = p.parseMemoryType()
	}
	p.expectRPar()
	mem.Loc = p.rangeFrom(start)
	return []Item{{Kind: ItemMemory, Loc: mem.Loc, Memory: mem}}
}

// --- global ---

func (p *Parser) parseGlobalItem() []Item {
	start := p.tok.Loc.Start
	g := &GlobalItem{Name: p.optID()}
	g.InlineImport = p.tryParseInlineImport()
	g.InlineExports = p.tryParseInlineExports()
	g.Type = p.parseGlobalType()
	if g.InlineImport == nil {
		p.parseInstructionSeq(&g.Init)
	}
	p.expectRPar()
	g.Loc = p.rangeFrom(start)
	return []Item{{Kind: ItemGlobal, Loc: g.Loc, Global: g}}
}

// --- export ---

func (p *Parser) parseExportItem() Item {
	start := p.tok.Loc.Start
	name := p.parseStringLiteral()
	p.expectLPar()
	kw, _ := LookupStructKeyword(p.tok.Text)
	p.advance()
	var kind wasm.ExternalKind
	switch kw {
	case KwFunc:
		kind = wasm.ExternalKindFunc
	case KwTable:
		kind = wasm.ExternalKindTable
	case KwMemory:
		kind = wasm.ExternalKindMemory
	case KwGlobal:
		kind = wasm.ExternalKindGlobal
	case KwEvent:
		kind = wasm.ExternalKindEvent
	default:
		p.err("expected exportable kind")
	}
	v := p.parseVar()
	p.expectRPar()
	p.expectRPar()
	loc := p.rangeFrom(start)
	return Item{Kind: ItemExport, Loc: loc, Export: &ExportItem{Name: name, Kind: kind, Var: v, Loc: loc}}
}

// --- start ---

func (p *Parser) parseStartItem() Item {
	start := p.tok.Loc.Start
	v := p.parseVar()
	p.expectRPar()
	loc := p.rangeFrom(start)
	return Item{Kind: ItemStart, Loc: loc, Start: &StartItem{Var: v, Loc: loc}}
}

// --- elem ---

func (p *Parser) parseElemItem() Item {
	start := p.tok.Loc.Start
	el := &ElemItem{RefType: wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}}
	el.Name = p.optID()

	if p.atKeyword(KwDeclare) {
		p.advance()
		el.Mode = wasm.ElementModeDeclared
	} else {
		el.Mode = wasm.ElementModeActive
		if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwTable) {
			p.advance()
			p.advance()
			el.TableVar = p.parseVar()
			p.expectRPar()
		}
		if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwOffset) {
			p.advance()
			p.advance()
			p.parseInstructionSeq(&el.Offset)
			p.expectRPar()
		} else if p.tok.Kind == TokenLPar {
			// Abbreviated `(elem (i32.const 0) ...)` folded-offset form.
			p.parseFoldedInstr(&el.Offset)
		}
	}
	if p.atKeyword(KwFuncref) || p.atKeyword(KwExternref) {
		el.RefType = p.parseRefType()
		el.UseExprs = true
		for p.tok.Kind == TokenLPar {
			var exprs []wasm.Instruction
			p.advance()
			if p.atKeyword(KwItem) {
				p.advance()
			}
			p.parseInstructionSeq(&exprs)
			p.expectRPar()
			el.Exprs = append(el.Exprs, exprs)
		}
	} else {
		if p.atKeyword(KwFunc) {
			p.advance()
		}
		for p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			el.Vars = append(el.Vars, p.parseVar())
		}
	}
	p.expectRPar()
	el.Loc = p.rangeFrom(start)
	return Item{Kind: ItemElem, Loc: el.Loc, Elem: el}
}

// --- data ---

func (p *Parser) parseDataItem() Item {
	start := p.tok.Loc.Start
	d := &DataItem{}
	d.Name = p.optID()
	d.Mode = wasm.DataModeActive

	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwMemory) {
		p.advance()
		p.advance()
		d.MemoryVar = p.parseVar()
		p.expectRPar()
	}
	if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwOffset) {
		p.advance()
		p.advance()
		p.parseInstructionSeq(&d.Offset)
		p.expectRPar()
	} else if p.tok.Kind == TokenLPar {
		p.parseInstructionSeq(&d.Offset)
	} else {
		d.Mode = wasm.DataModePassive
	}
	for p.tok.Kind == TokenString {
		d.Init = append(d.Init, p.tok.Decoded...)
		p.advance()
	}
	p.expectRPar()
	d.Loc = p.rangeFrom(start)
	return Item{Kind: ItemData, Loc: d.Loc, Data: d}
}

// --- event ---

func (p *Parser) parseEventItem() Item {
	start := p.tok.Loc.Start
	ev := &EventItem{Name: p.optID()}
	ev.InlineImport = p.tryParseInlineImport()
	ev.InlineExports = p.tryParseInlineExports()
	ev.Type = p.parseTypeUse()
	p.expectRPar()
	ev.Loc = p.rangeFrom(start)
	return Item{Kind: ItemEvent, Loc: ev.Loc, Event: ev}
}

// --- instructions ---

// parseInstructionSeq parses a run of instructions (folded and/or linear,
// freely mixed) up to the enclosing ")" or a structural terminator
// (else/then/end) that belongs to an outer construct.
func (p *Parser) parseInstructionSeq(out *[]wasm.Instruction) {
	for {
		switch p.tok.Kind {
		case TokenRPar, TokenEOF:
			return
		case TokenLPar:
			p.parseFoldedInstr(out)
		case TokenKeyword:
			if kw, ok := LookupStructKeyword(p.tok.Text); ok {
				switch kw {
				case KwEnd, KwElse, KwThen:
					return
				}
			}
			p.parseLinearInstr(out)
		default:
			p.err("expected instruction, got %s %q", p.tok.Kind, p.tok.Text)
			p.advance()
		}
	}
}

// parseLinearInstr parses one non-folded instruction, including the
// unfolded `block`/`loop`/`if`/`try` forms that read their body up to a
// matching `end`.
func (p *Parser) parseLinearInstr(out *[]wasm.Instruction) {
	start := p.tok.Loc.Start
	text := p.tok.Text
	kw, isStruct := LookupStructKeyword(text)

	// `try` is an instruction mnemonic rather than a structural keyword,
	// but its linear form nests a body up to `end` exactly like block/loop/if,
	// with catch/catch_all flowing through the body as plain instructions.
	isTry := !isStruct && text == "try"
	if isTry && !p.ctx.Features.Get(wasm.FeatureExceptions) {
		p.err("unknown instruction %q (feature %q is disabled)", text, wasm.FeatureExceptions)
		p.advance()
		return
	}

	if (isStruct && (kw == KwBlock || kw == KwLoop || kw == KwIf)) || isTry {
		p.advance()
		label := p.optID()
		bt := p.parseBlockTypeUse()
		opcode := wasm.OpcodeTry
		switch {
		case isTry:
		case kw == KwBlock:
			opcode = wasm.OpcodeBlock
		case kw == KwLoop:
			opcode = wasm.OpcodeLoop
		case kw == KwIf:
			opcode = wasm.OpcodeIf
		}
		*out = append(*out, wasm.Instruction{
			Opcode:    opcode,
			Immediate: wasm.Immediate{Kind: wasm.ImmBlock, Block: wasm.BlockImmediate{Type: bt, Label: label.Name}},
			Loc:       p.rangeFrom(start),
		})
		p.parseInstructionSeq(out)
		if kw == KwIf && p.atKeyword(KwElse) {
			elseStart := p.tok.Loc.Start
			p.advance()
			_ = p.optEndLabel(label)
			*out = append(*out, wasm.Instruction{Opcode: wasm.OpcodeElse, Loc: p.rangeFrom(elseStart)})
			p.parseInstructionSeq(out)
		}
		if p.atKeyword(KwEnd) {
			endStart := p.tok.Loc.Start
			p.advance()
			p.optEndLabel(label)
			*out = append(*out, wasm.Instruction{Opcode: wasm.OpcodeEnd, Loc: p.rangeFrom(endStart)})
		} else {
			p.err("expected 'end'")
		}
		return
	}

	ik, ok := LookupInstructionKeyword(text)
	if !ok {
		p.err("unknown instruction %q", text)
		p.advance()
		return
	}
	if !p.featureEnabled(ik) {
		p.advance()
		return
	}
	p.advance()
	imm := p.parseImmediate(ik.Immediate)
	*out = append(*out, wasm.Instruction{Opcode: ik.Opcode, Secondary: ik.Secondary, Immediate: imm, Loc: p.rangeFrom(start)})
}

// featureEnabled rejects a keyword whose proposal is not enabled, the text
// counterpart of the binary decoder's requireFeature check.
func (p *Parser) featureEnabled(ik InstructionKeyword) bool {
	if ik.Feature == 0 || p.ctx.Features.Get(ik.Feature) {
		return true
	}
	p.err("unknown instruction %q (feature %q is disabled)", p.tok.Text, ik.Feature)
	return false
}

// optEndLabel consumes and checks a trailing label after `end`/`else`
// against the block's opening label — "if both present they must
// match" is enforced here at parse time rather than deferred to
// resolve, since both labels are still plain text at this point.
func (p *Parser) optEndLabel(open OptName) bool {
	if p.tok.Kind != TokenID {
		return true
	}
	if open.Present && p.tok.Text != open.Name {
		p.err("mismatching label %q, expected %q", p.tok.Text, open.Name)
	}
	p.advance()
	return true
}

// parseBlockTypeUse parses a block signature. An explicit param/result
// clause or a `(type N)` both carry through to resolve via
// BlockType's HasTypeVar/HasExplicitSig fields, since an unresolved
// symbolic type name can't yet be written into BlockType.TypeIndex. Only
// the single-inline-result shorthand (no params, one result, no type
// index) collapses straight to BlockTypeValue here, since it needs no type
// section entry at all.
func (p *Parser) parseBlockTypeUse() wasm.BlockType {
	tu := p.parseTypeUse()
	switch {
	case tu.HasExplicit && len(tu.Type.Params) == 0 && len(tu.Type.Results) == 1 && !tu.HasIndex:
		return wasm.BlockType{Kind: wasm.BlockTypeValue, ValueType: tu.Type.Results[0]}
	case tu.HasExplicit || tu.HasIndex:
		return wasm.BlockType{
			Kind:            wasm.BlockTypeFuncType,
			HasTypeVar:      tu.HasIndex,
			TypeVar:         tu.Index,
			HasExplicitSig:  tu.HasExplicit,
			ExplicitParams:  tu.Type.Params,
			ExplicitResults: tu.Type.Results,
		}
	default:
		return wasm.BlockType{Kind: wasm.BlockTypeVoid}
	}
}

// parseFoldedInstr parses one `(op operand...)` and appends its flattened
// linear form to out: operands first (each itself possibly folded),
// then the instruction itself — the standard folded-to-linear rewrite,
// canonicalising folded syntax into linear in place.
func (p *Parser) parseFoldedInstr(out *[]wasm.Instruction) {
	start := p.tok.Loc.Start
	p.advance() // (
	if p.tok.Kind != TokenKeyword {
		p.err("expected instruction keyword")
		p.skipToMatchingRPar()
		return
	}
	text := p.tok.Text
	kw, isStruct := LookupStructKeyword(text)

	if isStruct && (kw == KwBlock || kw == KwLoop) {
		p.advance()
		label := p.optID()
		bt := p.parseBlockTypeUse()
		opcode := wasm.OpcodeBlock
		if kw == KwLoop {
			opcode = wasm.OpcodeLoop
		}
		*out = append(*out, wasm.Instruction{
			Opcode: opcode, Loc: p.rangeFrom(start),
			Immediate: wasm.Immediate{Kind: wasm.ImmBlock, Block: wasm.BlockImmediate{Type: bt, Label: label.Name}},
		})
		p.parseInstructionSeq(out)
		*out = append(*out, wasm.Instruction{Opcode: wasm.OpcodeEnd, Loc: p.tok.Loc})
		p.expectRPar()
		return
	}
	if isStruct && kw == KwIf {
		p.advance()
		label := p.optID()
		bt := p.parseBlockTypeUse()
		// Folded condition operands precede the `(then ...)` clause.
		for p.tok.Kind == TokenLPar && !p.peekAtKeyword(KwThen) {
			p.parseFoldedInstr(out)
		}
		*out = append(*out, wasm.Instruction{
			Opcode: wasm.OpcodeIf, Loc: p.rangeFrom(start),
			Immediate: wasm.Immediate{Kind: wasm.ImmBlock, Block: wasm.BlockImmediate{Type: bt, Label: label.Name}},
		})
		if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwThen) {
			p.advance()
			p.advance()
			p.parseInstructionSeq(out)
			p.expectRPar()
		}
		if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwElse) {
			elseLoc := p.tok.Loc
			p.advance()
			p.advance()
			*out = append(*out, wasm.Instruction{Opcode: wasm.OpcodeElse, Loc: elseLoc})
			p.parseInstructionSeq(out)
			p.expectRPar()
		}
		*out = append(*out, wasm.Instruction{Opcode: wasm.OpcodeEnd, Loc: p.tok.Loc})
		p.expectRPar()
		return
	}

	ik, ok := LookupInstructionKeyword(text)
	if !ok {
		p.err("unknown instruction %q", text)
		p.skipToMatchingRPar()
		return
	}
	if !p.featureEnabled(ik) {
		p.skipToMatchingRPar()
		return
	}
	p.advance()
	imm := p.parseImmediate(ik.Immediate)
	for p.tok.Kind == TokenLPar {
		p.parseFoldedInstr(out)
	}
	*out = append(*out, wasm.Instruction{Opcode: ik.Opcode, Secondary: ik.Secondary, Immediate: imm, Loc: p.rangeFrom(start)})
	p.expectRPar()
}

// parseImmediate reads the flat (non-parenthesised) tokens making up one
// instruction's immediate, dispatching on the shape the opcode table
// assigned it — mirroring binary.decodeImmediate's switch one level up
// the stack (tokens instead of bytes).
func (p *Parser) parseImmediate(kind wasm.ImmediateKind) wasm.Immediate {
	switch kind {
	case wasm.ImmNone:
		return wasm.Immediate{Kind: kind}
	case wasm.ImmI32:
		return wasm.Immediate{Kind: kind, I32: int32(p.parseIntLiteral(32))}
	case wasm.ImmI64:
		return wasm.Immediate{Kind: kind, I64: p.parseIntLiteral(64)}
	case wasm.ImmF32:
		return wasm.Immediate{Kind: kind, F32: uint32(p.parseFloatBits(32))}
	case wasm.ImmF64:
		return wasm.Immediate{Kind: kind, F64: p.parseFloatBits(64)}
	case wasm.ImmVar:
		return wasm.Immediate{Kind: kind, Var: p.parseVar()}
	case wasm.ImmIndex:
		// memory.size/grow/fill's index is a reserved zero on the wire and
		// simply absent in the text form unless multi-memory spells it out.
		v := wasm.IndexVar(0)
		if p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			v = p.parseVar()
		}
		return wasm.Immediate{Kind: kind, Var: v}
	case wasm.ImmMemArg:
		return wasm.Immediate{Kind: kind, MemArg: p.parseMemArg()}
	case wasm.ImmSimdMemoryLane:
		ma := p.parseMemArg()
		lane := byte(p.parseU32Literal())
		return wasm.Immediate{Kind: kind, SimdMemoryLane: wasm.SimdMemoryLaneImmediate{MemArg: ma, Lane: lane}}
	case wasm.ImmSimdLane:
		return wasm.Immediate{Kind: kind, Lane: byte(p.parseU32Literal())}
	case wasm.ImmCopy:
		dst := p.parseVar()
		src := p.parseVar()
		return wasm.Immediate{Kind: kind, Copy: wasm.CopyImmediate{Dst: dst, Src: src}}
	case wasm.ImmSegmentDst:
		seg := p.parseVar()
		dst := wasm.Var{}
		if p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			dst = p.parseVar()
		}
		return wasm.Immediate{Kind: kind, Segment: wasm.SegmentImmediate{Segment: seg, Dst: dst}}
	case wasm.ImmCallIndirect:
		tableVar := wasm.IndexVar(0)
		// An explicit table index, when present, precedes the type-use.
		if p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			tableVar = p.parseVar()
		}
		tu := p.parseTypeUse()
		return wasm.Immediate{Kind: kind, CallIndirect: wasm.CallIndirectImmediate{
			Type: tu.Index, Table: tableVar,
		}}
	case wasm.ImmBrTable:
		var labels []wasm.Var
		for p.tok.Kind == TokenID || p.tok.Kind == TokenNat {
			labels = append(labels, p.parseVar())
		}
		if len(labels) == 0 {
			p.err("br_table requires at least a default label")
			return wasm.Immediate{Kind: kind}
		}
		def := labels[len(labels)-1]
		labels = labels[:len(labels)-1]
		return wasm.Immediate{Kind: kind, BrTable: wasm.BrTableImmediate{Labels: labels, Default: def}}
	case wasm.ImmHeapType:
		if p.atKeyword(KwFuncref) {
			p.advance()
			return wasm.Immediate{Kind: kind, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}
		}
		if p.atKeyword(KwExternref) {
			p.advance()
			return wasm.Immediate{Kind: kind, Heap: wasm.HeapType{Kind: wasm.HeapKindExtern}}
		}
		p.err("expected heap type")
		return wasm.Immediate{Kind: kind}
	case wasm.ImmSelectT:
		var vts []wasm.ValueType
		for p.tok.Kind == TokenLPar && p.peekAtKeyword(KwResult) {
			p.advance()
			p.advance()
			for p.tok.Kind == TokenKeyword {
				vt, ok := p.parseValueType()
				if !ok {
					break
				}
				vts = append(vts, vt)
			}
			p.expectRPar()
		}
		return wasm.Immediate{Kind: kind, ValueTypes: vts}
	case wasm.ImmV128:
		var v [16]byte
		for i := 0; i < 16 && (p.tok.Kind == TokenNat || p.tok.Kind == TokenInt); i++ {
			v[i] = byte(p.parseU32Literal())
		}
		return wasm.Immediate{Kind: kind, V128: v}
	case wasm.ImmShuffle:
		var v [16]byte
		for i := 0; i < 16; i++ {
			v[i] = byte(p.parseU32Literal())
		}
		return wasm.Immediate{Kind: kind, Shuffle: v}
	default:
		p.err("unsupported immediate kind in text parser")
		return wasm.Immediate{Kind: kind}
	}
}

func (p *Parser) parseMemArg() wasm.MemArg {
	ma := wasm.MemArg{}
	for p.tok.Kind == TokenKeyword && (strings.HasPrefix(p.tok.Text, "offset=") || strings.HasPrefix(p.tok.Text, "align=")) {
		text := p.tok.Text
		if strings.HasPrefix(text, "offset=") {
			v, _ := strconv.ParseUint(stripUnderscores(text[len("offset="):]), 0, 32)
			ma.Offset = uint32(v)
		} else {
			v, _ := strconv.ParseUint(stripUnderscores(text[len("align="):]), 0, 32)
			ma.AlignLog2 = log2(uint32(v))
		}
		p.advance()
	}
	return ma
}

func log2(v uint32) uint32 {
	var n uint32
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

func (p *Parser) parseIntLiteral(bits int) int64 {
	if p.tok.Kind != TokenNat && p.tok.Kind != TokenInt {
		p.err("expected integer literal, got %s", p.tok.Kind)
		return 0
	}
	text := stripUnderscores(p.tok.Text)
	loc := p.tok.Loc
	p.advance()
	v, err := strconv.ParseInt(text, 0, bits)
	if err != nil {
		// i32.const 0xffffffff and friends: the text grammar allows the
		// unsigned range too, reinterpreted as the signed bit pattern.
		if u, uerr := strconv.ParseUint(text, 0, bits); uerr == nil {
			return int64(u)
		}
		p.ctx.Sink.Report(loc, "invalid integer literal %q", text)
		return 0
	}
	return v
}

func (p *Parser) parseFloatBits(bits int) uint64 {
	if p.tok.Kind != TokenFloat && p.tok.Kind != TokenNat && p.tok.Kind != TokenInt {
		p.err("expected float literal, got %s", p.tok.Kind)
		return 0
	}
	text := stripUnderscores(p.tok.Text)
	p.advance()

	neg := strings.HasPrefix(text, "-")
	body := strings.TrimPrefix(strings.TrimPrefix(text, "+"), "-")
	switch {
	case body == "inf":
		if bits == 32 {
			bits32 := uint32(0x7f800000)
			if neg {
				bits32 |= 0x80000000
			}
			return uint64(bits32)
		}
		bits64 := uint64(0x7ff0000000000000)
		if neg {
			bits64 |= 0x8000000000000000
		}
		return bits64
	case strings.HasPrefix(body, "nan"):
		if bits == 32 {
			v := uint32(0x7fc00000)
			if neg {
				v |= 0x80000000
			}
			return uint64(v)
		}
		v := uint64(0x7ff8000000000000)
		if neg {
			v |= 0x8000000000000000
		}
		return v
	}
	f, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0
	}
	if bits == 32 {
		return uint64(math.Float32bits(float32(f)))
	}
	return math.Float64bits(f)
}
