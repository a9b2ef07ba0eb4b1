package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
	"github.com/WebAssembly/wasp-sub003/internal/wasm/binary"
)

// newDumpCmd implements `dump`: decode a binary module and print a
// per-section human-readable summary, the way `wasm-objdump` would, but
// over the decoded AST rather than a running instance.
func newDumpCmd() *cobra.Command {
	var flags featureFlags
	cmd := &cobra.Command{
		Use:   "dump <module.wasm>",
		Short: "Dump a binary module's sections as human-readable text",
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
			if err := writeOutput(cmd, flags.outPath, []byte(dumpModule(m))); err != nil {
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

func dumpModule(m *wasm.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module:\n")
	fmt.Fprintf(&b, " - type[%d]\n", len(m.TypeSection))
	for i, td := range m.TypeSection {
		fmt.Fprintf(&b, "   - type[%d] %s\n", i, dumpTypeDef(td))
	}
	fmt.Fprintf(&b, " - import[%d]\n", len(m.ImportSection))
	for i, imp := range m.ImportSection {
		fmt.Fprintf(&b, "   - import[%d] %s.%s kind=%s\n", i, imp.Module, imp.Name, imp.Kind)
	}
	fmt.Fprintf(&b, " - func[%d]\n", len(m.FunctionSection))
	for i, t := range m.FunctionSection {
		fmt.Fprintf(&b, "   - func[%d] sig=%d\n", i, t)
	}
	fmt.Fprintf(&b, " - table[%d]\n", len(m.TableSection))
	fmt.Fprintf(&b, " - memory[%d]\n", len(m.MemorySection))
	fmt.Fprintf(&b, " - global[%d]\n", len(m.GlobalSection))
	fmt.Fprintf(&b, " - export[%d]\n", len(m.ExportSection))
	for _, e := range m.ExportSection {
		fmt.Fprintf(&b, "   - export %q kind=%s index=%d\n", e.Name, e.Kind, e.Index)
	}
	if m.StartSection != nil {
		fmt.Fprintf(&b, " - start: func[%d]\n", *m.StartSection)
	}
	fmt.Fprintf(&b, " - elem[%d]\n", len(m.ElementSection))
	fmt.Fprintf(&b, " - code[%d]\n", len(m.CodeSection))
	for i, c := range m.CodeSection {
		fmt.Fprintf(&b, "   - code[%d] locals=%d instrs=%d\n", i, len(c.LocalTypes), len(c.Body))
	}
	fmt.Fprintf(&b, " - data[%d]\n", len(m.DataSection))
	if m.NameSection != nil {
		fmt.Fprintf(&b, " - name: module=%q functions=%d locals=%d\n",
			m.NameSection.ModuleName, len(m.NameSection.FunctionNames), len(m.NameSection.LocalNames))
	}
	if m.LinkingSection != nil {
		fmt.Fprintf(&b, " - linking: segments=%d symbols=%d\n",
			len(m.LinkingSection.SegmentInfos), len(m.LinkingSection.SymbolTable))
	}
	for name, entries := range m.Relocations {
		fmt.Fprintf(&b, " - reloc.%s: %d entries\n", name, len(entries))
	}
	for _, cs := range m.CustomSections {
		fmt.Fprintf(&b, " - custom %q: %d bytes\n", cs.Name, len(cs.Data))
	}
	return b.String()
}

func dumpTypeDef(td *wasm.TypeDef) string {
	switch td.Kind {
	case wasm.TypeDefFunc:
		return fmt.Sprintf("func %s", funcSigString(td.Func))
	case wasm.TypeDefStruct:
		return fmt.Sprintf("struct fields=%d", len(td.Struct.Fields))
	case wasm.TypeDefArray:
		return "array"
	default:
		return "unknown"
	}
}

func funcSigString(ft *wasm.FunctionType) string {
	params := make([]string, len(ft.Params))
	for i, p := range ft.Params {
		params[i] = p.String()
	}
	results := make([]string, len(ft.Results))
	for i, r := range ft.Results {
		results[i] = r.String()
	}
	return fmt.Sprintf("(%s) -> (%s)", strings.Join(params, ", "), strings.Join(results, ", "))
}
