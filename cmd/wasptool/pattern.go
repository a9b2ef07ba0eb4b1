package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
)

// newPatternCmd implements `pattern`: scan every function body for a
// caller-supplied opcode subsequence, e.g. `i32.const,i32.add`, reporting
// (function-index, instruction-offset) matches.
func newPatternCmd() *cobra.Command {
	var flags featureFlags
	var seq string
	cmd := &cobra.Command{
		Use:   "pattern <module.wasm>",
		Short: "Find a comma-separated opcode subsequence in every function body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features, err := flags.resolve()
			if err != nil {
				return err
			}
			pattern, err := parseOpcodePattern(seq)
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
			for fnIdx, code := range m.CodeSection {
				for _, off := range findPattern(code.Body, pattern) {
					fmt.Fprintf(&b, "func[%d]@%d\n", fnIdx, off)
				}
			}
			if err := writeOutput(cmd, flags.outPath, []byte(b.String())); err != nil {
				return err
			}
			log.Info(diagnosticSummary(path, sink))
			return nil
		},
	}
	cmd.Flags().StringVar(&seq, "opcodes", "", "comma-separated opcode mnemonics to search for, e.g. i32.const,i32.add")
	_ = cmd.MarkFlagRequired("opcodes")
	flags.register(cmd)
	return cmd
}

func parseOpcodePattern(seq string) ([]wasm.Opcode, error) {
	names := strings.Split(seq, ",")
	out := make([]wasm.Opcode, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		op, _, ok := wasm.LookupMnemonic(name)
		if !ok {
			return nil, errors.Errorf("unknown opcode mnemonic %q", name)
		}
		out = append(out, op)
	}
	if len(out) == 0 {
		return nil, errors.New("empty opcode pattern")
	}
	return out, nil
}

// findPattern returns the starting instruction offset of every occurrence
// of pattern within body, overlapping matches included.
func findPattern(body []wasm.Instruction, pattern []wasm.Opcode) []int {
	var matches []int
	if len(pattern) == 0 || len(body) < len(pattern) {
		return matches
	}
	for start := 0; start+len(pattern) <= len(body); start++ {
		ok := true
		for i, op := range pattern {
			if body[start+i].Opcode != op {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, start)
		}
	}
	return matches
}
