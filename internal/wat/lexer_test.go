package wat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func lexAll(t *testing.T, src string) ([]Token, *wasm.Sink) {
	t.Helper()
	sink := wasm.NewSink()
	l := NewLexer(src, sink)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, sink
		}
	}
}

func TestLexer_ParensAndKeyword(t *testing.T) {
	toks, sink := lexAll(t, "(module)")
	require.True(t, sink.Empty())
	require.Equal(t, TokenLPar, toks[0].Kind)
	require.Equal(t, TokenKeyword, toks[1].Kind)
	require.Equal(t, "module", toks[1].Text)
	require.Equal(t, TokenRPar, toks[2].Kind)
	require.Equal(t, TokenEOF, toks[3].Kind)
}

func TestLexer_IdentifierToken(t *testing.T) {
	toks, sink := lexAll(t, "$my-func")
	require.True(t, sink.Empty())
	require.Equal(t, TokenID, toks[0].Kind)
	require.Equal(t, "$my-func", toks[0].Text)
}

func TestLexer_NumberShapes(t *testing.T) {
	cases := map[string]TokenKind{
		"42":             TokenNat,
		"+42":            TokenInt,
		"-42":            TokenInt,
		"0x2a":           TokenNat,
		"3.14":           TokenFloat,
		"1e10":           TokenFloat,
		"0x1p4":          TokenFloat,
		"inf":            TokenFloat,
		"nan":            TokenFloat,
		"nan:0x1":        TokenFloat,
		"nan:canonical":  TokenFloat,
		"nan:arithmetic": TokenFloat,
	}
	for src, want := range cases {
		toks, sink := lexAll(t, src)
		require.True(t, sink.Empty(), src)
		require.Equal(t, want, toks[0].Kind, src)
	}
}

func TestLexer_LineAndBlockComments(t *testing.T) {
	toks, sink := lexAll(t, "(module ;; line comment\n (; block (; nested ;) comment ;) (func))")
	require.True(t, sink.Empty())
	var kinds []TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Contains(t, kinds, TokenKeyword)
}

func TestLexer_UnterminatedBlockCommentReported(t *testing.T) {
	_, sink := lexAll(t, "(; never closed")
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "unterminated block comment")
}

func TestLexer_StringEscapes(t *testing.T) {
	toks, sink := lexAll(t, `"a\nb\t\"\u{48}\69"`)
	require.True(t, sink.Empty())
	require.Equal(t, TokenString, toks[0].Kind)
	require.Equal(t, []byte("a\nb\t\"Hi"), toks[0].Decoded)
}

func TestLexer_UnterminatedStringReported(t *testing.T) {
	_, sink := lexAll(t, `"never closed`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "unterminated string literal")
}

func TestLexer_UnexpectedCharacterReportedAndSkipped(t *testing.T) {
	toks, sink := lexAll(t, "(\x01module)")
	require.False(t, sink.Empty())
	require.Contains(t, sink.Diagnostics[0].Message, "unexpected character")
	require.Equal(t, TokenLPar, toks[0].Kind)
	require.Equal(t, TokenKeyword, toks[1].Kind)
	require.Equal(t, "module", toks[1].Text)
}
