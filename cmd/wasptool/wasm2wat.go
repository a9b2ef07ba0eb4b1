package main

import (
	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
	"github.com/WebAssembly/wasp-sub003/internal/wat"
)

// newWasm2WatCmd implements `wasm2wat`: decode a binary module, lower it to
// the text AST, and render it. The binary→text converter already yields
// fully resolved Vars, so no resolve/desugar pass runs on this path.
func newWasm2WatCmd() *cobra.Command {
	var flags featureFlags
	cmd := &cobra.Command{
		Use:   "wasm2wat <module.wasm>",
		Short: "Convert a binary module to text (.wat)",
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
			if !sink.Empty() {
				exitCode = 1
			}

			text := wat.Print(wat.FromBinary(m))
			if err := writeOutput(cmd, flags.outPath, []byte(text)); err != nil {
				return err
			}
			if !sink.Empty() {
				log.Error(diagnosticSummary(path, sink))
			} else {
				log.Info(diagnosticSummary(path, sink))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
