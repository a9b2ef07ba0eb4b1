package wasm

import (
	"fmt"
	"sort"
	"strings"
)

// Features is a bitset of WebAssembly proposals. It is checked at
// opcode-decode time, value-type-decode time, and reference-type-decode
// time. An opcode or keyword gated on a disabled feature gets its own
// "feature is disabled" diagnostic; it is not reported as an unknown
// opcode.
type Features uint64

const (
	FeatureMutableGlobal Features = 1 << iota
	FeatureSignExtensionOps
	FeatureMultiValue
	FeatureSIMD
	FeatureBulkMemoryOperations
	FeatureReferenceTypes
	FeatureNonTrappingFloatToIntConversion
	FeatureTailCall
	FeatureFunctionReferences
	FeatureExceptions
	FeatureGC
	FeatureThreads
)

var featureNames = map[Features]string{
	FeatureMutableGlobal:                   "mutable-global",
	FeatureSignExtensionOps:                "sign-extension-ops",
	FeatureMultiValue:                      "multi-value",
	FeatureSIMD:                            "simd",
	FeatureBulkMemoryOperations:            "bulk-memory-operations",
	FeatureReferenceTypes:                  "reference-types",
	FeatureNonTrappingFloatToIntConversion: "nontrapping-float-to-int-conversion",
	FeatureTailCall:                        "tail-call",
	FeatureFunctionReferences:              "function-references",
	FeatureExceptions:                      "exceptions",
	FeatureGC:                              "gc",
	FeatureThreads:                         "threads",
}

// Features20191205 is WebAssembly 1.0 (MVP): only mutable globals.
const Features20191205 = FeatureMutableGlobal

// Features20220419 is the "2.0" snapshot: MVP plus the proposals that had
// shipped by then.
const Features20220419 = FeatureMutableGlobal | FeatureSignExtensionOps | FeatureMultiValue |
	FeatureSIMD | FeatureBulkMemoryOperations | FeatureReferenceTypes | FeatureNonTrappingFloatToIntConversion

// FeaturesFinished tracks "finished" (but not necessarily W3C-ratified)
// proposals, for callers that want maximum tool compatibility.
const FeaturesFinished = Features20220419 | FeatureTailCall | FeatureFunctionReferences | FeatureExceptions | FeatureGC

// Get reports whether every bit in f is set. An empty requirement is
// always satisfied, so ungated opcodes (feature 0) pass every check.
func (flags Features) Get(f Features) bool {
	return flags&f == f
}

// Set returns flags with f set to enabled.
func (flags Features) Set(f Features, enabled bool) Features {
	if enabled {
		return flags | f
	}
	return flags &^ f
}

// Require returns an error unless every bit in f is set.
func (flags Features) Require(f Features) error {
	if flags.Get(f) {
		return nil
	}
	// Report the lowest unset bit's name, matching the single-feature
	// callers that dominate decode-time checks.
	for bit := Features(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit != 0 && flags&bit == 0 {
			return fmt.Errorf("feature %q is disabled", featureNames[bit])
		}
	}
	return fmt.Errorf("feature %q is disabled", f.String())
}

// String renders the set bits' names, alphabetically and pipe-joined.
func (flags Features) String() string {
	var names []string
	for bit, name := range featureNames {
		if flags&bit == bit && bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
