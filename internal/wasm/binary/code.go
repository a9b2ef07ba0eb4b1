package binary

import (
	"fmt"
	"math"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// decodeLocals expands the run-length-encoded (count, type) pairs the
// binary format uses for a function's declared locals into a flat
// []ValueType, matching Code.LocalTypes' documented shape.
func decodeLocals(c *cursor, features wasm.Features, sink *wasm.Sink) ([]wasm.ValueType, error) {
	groups, err := decodeVector(c, sink, "locals", func(c *cursor) (struct {
		N  uint32
		VT wasm.ValueType
	}, error) {
		n, err := c.vu32()
		if err != nil {
			return struct {
				N  uint32
				VT wasm.ValueType
			}{}, err
		}
		vt, err := decodeValueType(c, features)
		return struct {
			N  uint32
			VT wasm.ValueType
		}{n, vt}, err
	})
	if err != nil {
		return nil, err
	}
	var total uint64
	for _, g := range groups {
		total += uint64(g.N)
	}
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many locals", ErrCountMismatch)
	}
	out := make([]wasm.ValueType, 0, int(total))
	for _, g := range groups {
		for i := uint32(0); i < g.N; i++ {
			out = append(out, g.VT)
		}
	}
	return out, nil
}

func decodeCode(c *cursor, features wasm.Features, sink *wasm.Sink) (*wasm.Code, error) {
	start := c.offset()
	size, err := c.vu32()
	if err != nil {
		return nil, err
	}
	bodyAbsStart := c.offset()
	body, err := c.readBytes(int(size))
	if err != nil {
		return nil, err
	}
	bc := &cursor{buf: body, base: int(bodyAbsStart)}
	locals, err := decodeLocals(bc, features, sink)
	if err != nil {
		return nil, err
	}
	bodyStart := bc.offset()
	insts, err := decodeExpr(bc, features, sink)
	if err != nil {
		return nil, err
	}
	return &wasm.Code{
		LocalTypes: locals,
		Body:       insts,
		BodyLoc:    bc.rangeFrom(bodyStart),
		Loc:        c.rangeFrom(start),
	}, nil
}

func decodeCodeSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.Code, error) {
	c := newCursor(payload)
	codes, err := decodeVector(c, sink, "code", func(c *cursor) (*wasm.Code, error) { return decodeCode(c, features, sink) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return codes, err
}
