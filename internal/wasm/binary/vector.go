package binary

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// decodeVector reads a LEB128 element count followed by that many elements,
// each produced by elem. This is the one shape repeated by every section.
// If an element decoder fails before the declared count is reached, the
// already-yielded prefix is still returned, and sink gets a diagnostic
// naming the declared and actually-seen counts — the element decoder's own
// error is the reason iteration stopped, but the count mismatch is reported
// separately since callers that discard the inner error (most do, to keep
// decoding later sections) would otherwise lose that signal entirely.
func decodeVector[T any](c *cursor, sink *wasm.Sink, name string, elem func(*cursor) (T, error)) ([]T, error) {
	start := c.offset()
	n, err := c.vu32()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(int(n), 4096))
	for i := uint32(0); i < n; i++ {
		v, err := elem(c)
		if err != nil {
			sink.Report(c.rangeFrom(start), "Expected %s to have count %d, got %d", name, n, len(out))
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// requireFeature reports a `feature "x" is disabled` diagnostic and returns
// false when f is not enabled in features. Such an opcode is not treated as
// unknown: the callers stop decoding with ErrFeatureDisabled.
func requireFeature(sink *wasm.Sink, features wasm.Features, f wasm.Features, r wasm.Range) bool {
	if err := features.Require(f); err != nil {
		sink.Report(r, "%v", err)
		return false
	}
	return true
}
