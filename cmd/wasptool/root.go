package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// featureFlags holds the flags common to every subcommand: --feature
// (repeatable), --enable-all and -o/--output.
type featureFlags struct {
	names     []string
	enableAll bool
	outPath   string
}

func (f *featureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.names, "feature", nil, "enable a named proposal (repeatable)")
	cmd.Flags().BoolVar(&f.enableAll, "enable-all", false, "enable every known proposal")
	cmd.Flags().StringVarP(&f.outPath, "output", "o", "", "write output to this path instead of stdout")
}

var featureByName = map[string]wasm.Features{
	"mutable-global":                      wasm.FeatureMutableGlobal,
	"sign-extension-ops":                  wasm.FeatureSignExtensionOps,
	"multi-value":                         wasm.FeatureMultiValue,
	"simd":                                wasm.FeatureSIMD,
	"bulk-memory-operations":              wasm.FeatureBulkMemoryOperations,
	"bulk-memory":                         wasm.FeatureBulkMemoryOperations,
	"reference-types":                     wasm.FeatureReferenceTypes,
	"nontrapping-float-to-int-conversion": wasm.FeatureNonTrappingFloatToIntConversion,
	"tail-call":                           wasm.FeatureTailCall,
	"function-references":                 wasm.FeatureFunctionReferences,
	"exceptions":                          wasm.FeatureExceptions,
	"gc":                                  wasm.FeatureGC,
	"threads":                             wasm.FeatureThreads,
}

func (f *featureFlags) resolve() (wasm.Features, error) {
	if f.enableAll {
		return wasm.FeaturesFinished | wasm.FeatureThreads, nil
	}
	features := wasm.Features20191205
	for _, name := range f.names {
		bit, ok := featureByName[name]
		if !ok {
			return 0, errors.Errorf("unknown feature %q", name)
		}
		features = features.Set(bit, true)
	}
	return features, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wasptool",
		Short:         "Inspect, convert, and search WebAssembly binary and text modules",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDumpCmd())
	root.AddCommand(newCfgCmd())
	root.AddCommand(newPatternCmd())
	root.AddCommand(newWat2WasmCmd())
	root.AddCommand(newWasm2WatCmd())
	root.AddCommand(newValidateCmd())
	return root
}

// writeOutput sends rendered text either to the -o path or to cmd's own
// stdout, matching every command's shared output-flag contract.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return errors.Wrapf(writeFile(path, data), "writing %s", path)
}

// reportDiagnostics logs one warning line per diagnostic. The core library
// itself never logs; only *wasm.Sink accumulates.
func reportDiagnostics(path string, sink *wasm.Sink) {
	for _, d := range sink.Diagnostics {
		log.WithField("file", path).WithField("range", d.Range.String()).Warn(d.Message)
	}
}

func diagnosticSummary(path string, sink *wasm.Sink) string {
	if sink.Empty() {
		return fmt.Sprintf("%s: ok", path)
	}
	return fmt.Sprintf("%s: %d diagnostic(s)", path, len(sink.Diagnostics))
}
