package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
)

// newCfgCmd implements `cfg`: an indented control-flow outline per
// function, walking block/loop/if/try nesting over the already-decoded
// Code.Body. No new decoding capability is needed here — this just
// consumes the instruction decode.
func newCfgCmd() *cobra.Command {
	var flags featureFlags
	cmd := &cobra.Command{
		Use:   "cfg <module.wasm>",
		Short: "Print each function's block/loop/if/try nesting outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features, err := flags.resolve()
			if err != nil {
				return err
			}
			path := args[0]
			data, err := readFile(path)
			if err != nil {
				return err
			}
			sink := wasm.NewSink()
			m, _ := binary.DecodeModule(data, features, sink)
			reportDiagnostics(path, sink)

			var b strings.Builder
			for i, code := range m.CodeSection {
				fmt.Fprintf(&b, "func[%d]:\n", i)
				writeCFGOutline(&b, code.Body)
			}
			if err := writeOutput(cmd, flags.outPath, []byte(b.String())); err != nil {
				return err
			}
			log.Info(diagnosticSummary(path, sink))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// writeCFGOutline prints one line per structured control instruction,
// indented by current nesting depth; `end`/`else`/`catch` dedent or hold
// depth exactly as the block stack they close/continue does.
func writeCFGOutline(b *strings.Builder, body []wasm.Instruction) {
	depth := 1
	for _, in := range body {
		switch in.Opcode {
		case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf, wasm.OpcodeTry:
			indent(b, depth)
			fmt.Fprintf(b, "%s\n", opcodeOutlineName(in.Opcode))
			depth++
		case wasm.OpcodeElse, wasm.OpcodeCatch, wasm.OpcodeCatchAll:
			indent(b, depth-1)
			fmt.Fprintf(b, "%s\n", opcodeOutlineName(in.Opcode))
		case wasm.OpcodeEnd:
			depth--
			if depth < 1 {
				depth = 1
				continue
			}
			indent(b, depth)
			b.WriteString("end\n")
		}
	}
}

func opcodeOutlineName(op wasm.Opcode) string {
	info, ok := op.Lookup()
	if !ok {
		return "?"
	}
	return info.Mnemonic
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}
