package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

func decodeImport(c *cursor, features wasm.Features) (*wasm.Import, error) {
	start := c.offset()
	mod, err := c.name()
	if err != nil {
		return nil, err
	}
	name, err := c.name()
	if err != nil {
		return nil, err
	}
	kindByte, err := c.readByte()
	if err != nil {
		return nil, err
	}
	imp := &wasm.Import{Module: mod, Name: name}
	switch kindByte {
	case 0x00:
		imp.Kind = wasm.ExternalKindFunc
		imp.DescFunc, err = c.vu32()
	case 0x01:
		imp.Kind = wasm.ExternalKindTable
		imp.DescTable, err = decodeTableType(c, features)
	case 0x02:
		imp.Kind = wasm.ExternalKindMemory
		imp.DescMemory, err = decodeMemoryType(c)
	case 0x03:
		imp.Kind = wasm.ExternalKindGlobal
		imp.DescGlobal, err = decodeGlobalType(c, features)
	case 0x04:
		imp.Kind = wasm.ExternalKindEvent
		if ferr := features.Require(wasm.FeatureExceptions); ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeatureDisabled, ferr)
		}
		imp.DescFunc, err = c.vu32()
	default:
		return nil, fmt.Errorf("%w: %#x", ErrBadExternalKind, kindByte)
	}
	if err != nil {
		return nil, err
	}
	imp.Loc = c.rangeFrom(start)
	return imp, nil
}

func decodeImportSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.Import, error) {
	c := newCursor(payload)
	imports, err := decodeVector(c, sink, "imports", func(c *cursor) (*wasm.Import, error) { return decodeImport(c, features) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return imports, err
}

func decodeFunctionSection(payload []byte, sink *wasm.Sink) ([]wasm.Index, error) {
	c := newCursor(payload)
	fns, err := decodeVector(c, sink, "functions", func(c *cursor) (wasm.Index, error) { return c.vu32() })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return fns, err
}

func decodeTableSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.TableType, error) {
	c := newCursor(payload)
	tables, err := decodeVector(c, sink, "tables", func(c *cursor) (*wasm.TableType, error) { return decodeTableType(c, features) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return tables, err
}

func decodeMemorySection(payload []byte, sink *wasm.Sink) ([]*wasm.MemoryType, error) {
	c := newCursor(payload)
	mems, err := decodeVector(c, sink, "memories", func(c *cursor) (*wasm.MemoryType, error) { return decodeMemoryType(c) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return mems, err
}

func decodeGlobal(c *cursor, features wasm.Features, sink *wasm.Sink) (*wasm.Global, error) {
	start := c.offset()
	gt, err := decodeGlobalType(c, features)
	if err != nil {
		return nil, err
	}
	init, err := decodeConstExpr(c, features, sink)
	if err != nil {
		return nil, err
	}
	return &wasm.Global{Type: *gt, Init: init, Loc: c.rangeFrom(start)}, nil
}

func decodeGlobalSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.Global, error) {
	c := newCursor(payload)
	globals, err := decodeVector(c, sink, "globals", func(c *cursor) (*wasm.Global, error) { return decodeGlobal(c, features, sink) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return globals, err
}

func decodeExport(c *cursor) (*wasm.Export, error) {
	start := c.offset()
	name, err := c.name()
	if err != nil {
		return nil, err
	}
	kindByte, err := c.readByte()
	if err != nil {
		return nil, err
	}
	var kind wasm.ExternalKind
	switch kindByte {
	case 0x00:
		kind = wasm.ExternalKindFunc
	case 0x01:
		kind = wasm.ExternalKindTable
	case 0x02:
		kind = wasm.ExternalKindMemory
	case 0x03:
		kind = wasm.ExternalKindGlobal
	case 0x04:
		kind = wasm.ExternalKindEvent
	default:
		return nil, fmt.Errorf("%w: %#x", ErrBadExternalKind, kindByte)
	}
	idx, err := c.vu32()
	if err != nil {
		return nil, err
	}
	return &wasm.Export{Name: name, Kind: kind, Index: idx, Loc: c.rangeFrom(start)}, nil
}

func decodeExportSection(payload []byte, sink *wasm.Sink) ([]*wasm.Export, error) {
	c := newCursor(payload)
	list, err := decodeVector(c, sink, "exports", func(c *cursor) (*wasm.Export, error) { return decodeExport(c) })
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
		return list, err
	}
	// Declaration order is preserved; a repeated name is a validity problem
	// worth a diagnostic, but the entry itself is kept so the section
	// round-trips as written.
	seen := make(map[string]bool, len(list))
	for _, e := range list {
		if seen[e.Name] {
			sink.Report(e.Loc, "duplicate export name %q", e.Name)
			continue
		}
		seen[e.Name] = true
	}
	return list, nil
}

// decodeElementSegment handles all eight binary prefixes (0-3 carrying
// function-index vectors, 4-7 the "expression" flavors) defined
// across the MVP and the bulk-memory/reference-types proposals.
func decodeElementSegment(c *cursor, features wasm.Features, sink *wasm.Sink) (*wasm.ElementSegment, error) {
	start := c.offset()
	flags, err := c.vu32()
	if err != nil {
		return nil, err
	}
	seg := &wasm.ElementSegment{Type: wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}}

	decodeFuncIndices := func() ([]wasm.Index, error) {
		return decodeVector(c, sink, "elements", func(c *cursor) (wasm.Index, error) { return c.vu32() })
	}
	decodeExprs := func() ([]wasm.ConstantExpression, error) {
		return decodeVector(c, sink, "elements", func(c *cursor) (wasm.ConstantExpression, error) { return decodeConstExpr(c, features, sink) })
	}

	switch flags {
	case 0:
		seg.Mode = wasm.ElementModeActive
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
		if seg.Init, err = decodeFuncIndices(); err != nil {
			return nil, err
		}
	case 1:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModePassive
		if _, err := c.readByte(); err != nil { // elemkind, always 0x00 (funcref)
			return nil, err
		}
		if seg.Init, err = decodeFuncIndices(); err != nil {
			return nil, err
		}
	case 2:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModeActive
		if seg.TableIndex, err = c.vu32(); err != nil {
			return nil, err
		}
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
		if _, err := c.readByte(); err != nil {
			return nil, err
		}
		if seg.Init, err = decodeFuncIndices(); err != nil {
			return nil, err
		}
	case 3:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModeDeclared
		if _, err := c.readByte(); err != nil {
			return nil, err
		}
		if seg.Init, err = decodeFuncIndices(); err != nil {
			return nil, err
		}
	case 4:
		seg.Mode = wasm.ElementModeActive
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
		seg.AreInitExprs = true
		if seg.InitExprs, err = decodeExprs(); err != nil {
			return nil, err
		}
	case 5:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModePassive
		if seg.Type, err = decodeRefType(c, features); err != nil {
			return nil, err
		}
		seg.AreInitExprs = true
		if seg.InitExprs, err = decodeExprs(); err != nil {
			return nil, err
		}
	case 6:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModeActive
		if seg.TableIndex, err = c.vu32(); err != nil {
			return nil, err
		}
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
		if seg.Type, err = decodeRefType(c, features); err != nil {
			return nil, err
		}
		seg.AreInitExprs = true
		if seg.InitExprs, err = decodeExprs(); err != nil {
			return nil, err
		}
	case 7:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.ElementModeDeclared
		if seg.Type, err = decodeRefType(c, features); err != nil {
			return nil, err
		}
		seg.AreInitExprs = true
		if seg.InitExprs, err = decodeExprs(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: bad element segment flags %d", ErrBadSection, flags)
	}
	seg.Loc = c.rangeFrom(start)
	return seg, nil
}

func decodeElementSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.ElementSegment, error) {
	c := newCursor(payload)
	segs, err := decodeVector(c, sink, "elements", func(c *cursor) (*wasm.ElementSegment, error) {
		return decodeElementSegment(c, features, sink)
	})
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return segs, err
}

func decodeDataSegment(c *cursor, features wasm.Features, sink *wasm.Sink) (*wasm.DataSegment, error) {
	start := c.offset()
	flags, err := c.vu32()
	if err != nil {
		return nil, err
	}
	seg := &wasm.DataSegment{}
	switch flags {
	case 0:
		seg.Mode = wasm.DataModeActive
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
	case 1:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.DataModePassive
	case 2:
		if err := requireFeatureErr(features, wasm.FeatureBulkMemoryOperations); err != nil {
			return nil, err
		}
		seg.Mode = wasm.DataModeActive
		if seg.MemoryIndex, err = c.vu32(); err != nil {
			return nil, err
		}
		if seg.Offset, err = decodeConstExpr(c, features, sink); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: bad data segment flags %d", ErrBadSection, flags)
	}
	n, err := c.vu32()
	if err != nil {
		return nil, err
	}
	seg.Init, err = c.readBytes(int(n))
	if err != nil {
		return nil, err
	}
	seg.Loc = c.rangeFrom(start)
	return seg, nil
}

func decodeDataSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.DataSegment, error) {
	c := newCursor(payload)
	segs, err := decodeVector(c, sink, "datas", func(c *cursor) (*wasm.DataSegment, error) {
		return decodeDataSegment(c, features, sink)
	})
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return segs, err
}

func decodeEventSection(payload []byte, sink *wasm.Sink) ([]*wasm.Event, error) {
	c := newCursor(payload)
	events, err := decodeVector(c, sink, "events", func(c *cursor) (*wasm.Event, error) {
		start := c.offset()
		if _, err := c.readByte(); err != nil { // attribute, always 0x00 (exception)
			return nil, err
		}
		typeIdx, err := c.vu32()
		if err != nil {
			return nil, err
		}
		return &wasm.Event{Type: typeIdx, Loc: c.rangeFrom(start)}, nil
	})
	if err != nil {
		sink.Report(c.rangeFrom(0), "%v", err)
	}
	return events, err
}

func requireFeatureErr(features wasm.Features, f wasm.Features) error {
	if err := features.Require(f); err != nil {
		return fmt.Errorf("%w: %v", ErrFeatureDisabled, err)
	}
	return nil
}
