package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
	"github.com/WebAssembly/wasp-sub003/internal/wat"
)

// newValidateCmd implements `validate`: run decode (binary) or
// parse+resolve+desugar (text) over a module and report whether any
// diagnostic was produced. This is shape validation only — does it
// decode/parse/resolve at all — not type-soundness checking.
func newValidateCmd() *cobra.Command {
	var flags featureFlags
	cmd := &cobra.Command{
		Use:   "validate <module.wasm|module.wat>",
		Short: "Check that a module decodes or parses and resolves without diagnostics",
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
			if isTextFile(path) {
				ctx := &wat.ParseCtx{Features: features, Sink: sink}
				// .wast scripts embed any number of modules; a plain .wat
				// parses as a single-module script, so both go through
				// ParseScript and every embedded module gets the full
				// resolve+desugar treatment.
				for _, cmd := range wat.ParseScript(string(data), ctx) {
					if cmd.Module == nil {
						continue
					}
					wat.Resolve(cmd.Module, sink)
					wat.Desugar(cmd.Module)
				}
			} else {
				binary.DecodeModule(data, features, sink)
			}
			reportDiagnostics(path, sink)

			if !sink.Empty() {
				exitCode = 1
				log.Error(diagnosticSummary(path, sink))
				return nil
			}
			log.Info(diagnosticSummary(path, sink))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func isTextFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wat") || strings.EqualFold(filepath.Ext(path), ".wast")
}
