package main

import (
	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wat"
)

// newWat2WasmCmd implements `wat2wasm`: parse text, resolve names, desugar,
// then lower to bytes. Binary encoding isn't part of the codec core —
// encodeModule lives alongside this command since it's only ever needed
// here.
func newWat2WasmCmd() *cobra.Command {
	var flags featureFlags
	cmd := &cobra.Command{
		Use:   "wat2wasm <module.wat>",
		Short: "Convert a text (.wat) module to binary",
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
			ctx := &wat.ParseCtx{Features: features, Sink: sink}
			m := wat.ParseModule(string(data), ctx)
			wat.Resolve(m, sink)
			reportDiagnostics(path, sink)
			if !sink.Empty() {
				exitCode = 1
				log.Error(diagnosticSummary(path, sink))
				return nil
			}
			wat.Desugar(m)

			bin, err := encodeModule(wat.ToBinary(m))
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, flags.outPath, bin); err != nil {
				return err
			}
			log.Info(diagnosticSummary(path, sink))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
