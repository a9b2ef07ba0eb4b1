package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// ParseScript parses a .wast script: a sequence of module definitions,
// register directives, actions and assertions. Commands are parsed but
// never evaluated — the assertion/script language is only represented far
// enough to round-trip it and to hand the embedded modules to the same
// Resolve/Desugar pipeline a plain .wat goes through.
//
// A .wat file with no script commands at all (a bare module, possibly
// without even the `(module ...)` wrapper) parses as a single ScriptModule
// command, so callers can treat every text input uniformly.
func ParseScript(src string, ctx *ParseCtx) []ScriptCommand {
	p := NewParser(src, ctx)

	if !p.looksLikeScript() {
		m := ParseModule(src, ctx)
		return []ScriptCommand{{Kind: ScriptModule, Loc: m.Loc, Module: m}}
	}

	var out []ScriptCommand
	for p.tok.Kind != TokenEOF {
		cmd, ok := p.parseScriptCommand()
		if !ok {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// looksLikeScript reports whether the input starts with a script command.
// A bare item sequence (`(func ...)` at top level) is module shorthand,
// not a script.
func (p *Parser) looksLikeScript() bool {
	if p.tok.Kind != TokenLPar {
		return false
	}
	kw, ok := p.peekItemKeyword()
	if !ok {
		return false
	}
	switch kw {
	case KwModule, KwRegister, KwInvoke, KwGet,
		KwAssertReturn, KwAssertTrap, KwAssertMalformed,
		KwAssertInvalid, KwAssertUnlinkable, KwAssertExhaustion:
		return true
	}
	return false
}

func (p *Parser) parseScriptCommand() (ScriptCommand, bool) {
	start := p.tok.Loc.Start
	if p.tok.Kind != TokenLPar {
		p.err("expected script command")
		p.advance()
		return ScriptCommand{}, false
	}
	kw, ok := p.peekItemKeyword()
	if !ok {
		p.err("unknown script command")
		p.advance()
		p.skipToMatchingRPar()
		return ScriptCommand{}, false
	}

	switch kw {
	case KwModule:
		p.advance() // (
		p.advance() // module
		cmd := ScriptCommand{Kind: ScriptModule, ModuleName: p.optID()}
		m := &Module{}
		mStart := p.tok.Loc.Start
		for p.tok.Kind != TokenRPar && p.tok.Kind != TokenEOF {
			p.parseModuleItem(m)
		}
		m.Loc = wasm.Range{Start: mStart, End: p.tok.Loc.End}
		p.expectRPar()
		cmd.Module = m
		cmd.Loc = p.rangeFrom(start)
		return cmd, true

	case KwRegister:
		p.advance()
		p.advance()
		cmd := ScriptCommand{Kind: ScriptRegister}
		cmd.RegisterAs = p.parseStringLiteral()
		cmd.RegisterModule = p.optID()
		p.expectRPar()
		cmd.Loc = p.rangeFrom(start)
		return cmd, true

	case KwInvoke, KwGet:
		act := p.parseAction()
		return ScriptCommand{Kind: ScriptAction, Action: act, Loc: p.rangeFrom(start)}, true

	case KwAssertReturn, KwAssertTrap, KwAssertMalformed,
		KwAssertInvalid, KwAssertUnlinkable, KwAssertExhaustion:
		p.advance()
		p.advance()
		cmd := ScriptCommand{Kind: ScriptAssertion, AssertKind: kw}
		// The subject is either an action (invoke/get) or an embedded
		// module, depending on the assertion flavor.
		if p.tok.Kind == TokenLPar && (p.peekAtKeyword(KwInvoke) || p.peekAtKeyword(KwGet)) {
			cmd.Action = p.parseAction()
		} else if p.tok.Kind == TokenLPar && p.peekAtKeyword(KwModule) {
			sub, _ := p.parseScriptCommand()
			cmd.Module = sub.Module
			cmd.ModuleName = sub.ModuleName
		}
		switch kw {
		case KwAssertReturn:
			p.parseInstructionSeq(&cmd.Expected)
		default:
			if p.tok.Kind == TokenString {
				cmd.Failure = p.parseStringLiteral()
			}
		}
		p.expectRPar()
		cmd.Loc = p.rangeFrom(start)
		return cmd, true

	default:
		p.err("unexpected script command")
		p.advance()
		p.skipToMatchingRPar()
		return ScriptCommand{}, false
	}
}

// parseAction parses `(invoke $mod? "export" const...)` or
// `(get $mod? "export")`, with the current token at the opening "(".
func (p *Parser) parseAction() *Action {
	start := p.tok.Loc.Start
	p.advance() // (
	kw, _ := LookupStructKeyword(p.tok.Text)
	p.advance()
	act := &Action{Kind: kw}
	act.Module = p.optID()
	act.Export = p.parseStringLiteral()
	if kw == KwInvoke {
		p.parseInstructionSeq(&act.Args)
	}
	p.expectRPar()
	act.Loc = p.rangeFrom(start)
	return act
}
