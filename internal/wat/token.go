// Package wat implements the text-format surface of the module: the
// tokenizer and keyword table, the recursive-descent parser that builds
// the shared AST, the name-resolution pass, the desugar pass, and the
// binary-to-text converter. It depends on internal/wasm for the AST node
// types (Instruction, FunctionType, Var, ...) that both the binary decoder
// and this package populate. The converter takes an already-decoded
// *wasm.Module, so the package does not import internal/wasm/binary.
package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// TokenKind classifies one lexical token of the .wat surface grammar.
type TokenKind byte

const (
	TokenEOF TokenKind = iota
	TokenLPar
	TokenRPar
	TokenID       // $foo
	TokenKeyword  // module, func, i32.add, ...
	TokenReserved // any other bare run of idchars not starting with a lowercase letter
	TokenNat      // unsigned integer literal
	TokenInt      // signed integer literal (leading + or -)
	TokenFloat    // float literal, including nan:.../inf/hex-float
	TokenString   // "..."
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "eof"
	case TokenLPar:
		return "("
	case TokenRPar:
		return ")"
	case TokenID:
		return "id"
	case TokenKeyword:
		return "keyword"
	case TokenReserved:
		return "reserved"
	case TokenNat:
		return "nat"
	case TokenInt:
		return "int"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	default:
		return "unknown"
	}
}

// Token is one lexed unit: its Kind, the verbatim source Text it spans
// (quotes included for strings, `$` included for identifiers), and its
// source Loc.
type Token struct {
	Kind TokenKind
	Text string
	Loc  wasm.Range

	// Decoded is the string literal's decoded byte payload (C-style escapes,
	// \xx byte escapes, \u{...} codepoint escapes already applied). Only
	// meaningful when Kind == TokenString.
	Decoded []byte
}

// IsParen reports whether t is "(" or ")", the only tokens the recursive
// descent parser matches positionally rather than by keyword text.
func (t Token) IsParen() bool { return t.Kind == TokenLPar || t.Kind == TokenRPar }
