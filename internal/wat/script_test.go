package wat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func parseScript(t *testing.T, src string) ([]ScriptCommand, *wasm.Sink) {
	t.Helper()
	sink := wasm.NewSink()
	ctx := &ParseCtx{Features: wasm.Features20220419, Sink: sink}
	return ParseScript(src, ctx), sink
}

func TestParseScript_ModuleRegisterAssert(t *testing.T) {
	src := `
(module $m (func (export "f") (result i32) i32.const 42))
(register "mod" $m)
(assert_return (invoke $m "f") (i32.const 42))
(assert_trap (invoke "f") "unreachable")
`
	cmds, sink := parseScript(t, src)
	require.True(t, sink.Empty())
	require.Len(t, cmds, 4)

	require.Equal(t, ScriptModule, cmds[0].Kind)
	require.True(t, cmds[0].ModuleName.Present)
	require.Equal(t, "$m", cmds[0].ModuleName.Name)
	require.NotNil(t, cmds[0].Module)
	require.Len(t, cmds[0].Module.Items, 1)

	require.Equal(t, ScriptRegister, cmds[1].Kind)
	require.Equal(t, "mod", cmds[1].RegisterAs)
	require.Equal(t, "$m", cmds[1].RegisterModule.Name)

	require.Equal(t, ScriptAssertion, cmds[2].Kind)
	require.Equal(t, KwAssertReturn, cmds[2].AssertKind)
	require.NotNil(t, cmds[2].Action)
	require.Equal(t, KwInvoke, cmds[2].Action.Kind)
	require.Equal(t, "f", cmds[2].Action.Export)
	require.Len(t, cmds[2].Expected, 1)
	require.Equal(t, wasm.OpcodeI32Const, cmds[2].Expected[0].Opcode)
	require.EqualValues(t, 42, cmds[2].Expected[0].Immediate.I32)

	require.Equal(t, ScriptAssertion, cmds[3].Kind)
	require.Equal(t, KwAssertTrap, cmds[3].AssertKind)
	require.Equal(t, "unreachable", cmds[3].Failure)
}

func TestParseScript_AssertInvalidEmbedsModule(t *testing.T) {
	src := `(assert_invalid (module (func (result i32))) "type mismatch")`
	cmds, sink := parseScript(t, src)
	require.True(t, sink.Empty())
	require.Len(t, cmds, 1)
	require.Equal(t, KwAssertInvalid, cmds[0].AssertKind)
	require.NotNil(t, cmds[0].Module)
	require.Equal(t, "type mismatch", cmds[0].Failure)
}

func TestParseScript_BareModuleIsASingleCommand(t *testing.T) {
	cmds, sink := parseScript(t, `(func (result i32) i32.const 1)`)
	require.True(t, sink.Empty())
	require.Len(t, cmds, 1)
	require.Equal(t, ScriptModule, cmds[0].Kind)
	require.Len(t, cmds[0].Module.Items, 1)
}

func TestParseScript_GetAction(t *testing.T) {
	cmds, sink := parseScript(t, `(get "g")`)
	require.True(t, sink.Empty())
	require.Len(t, cmds, 1)
	require.Equal(t, ScriptAction, cmds[0].Kind)
	require.Equal(t, KwGet, cmds[0].Action.Kind)
	require.Equal(t, "g", cmds[0].Action.Export)
}
