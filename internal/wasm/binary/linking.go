package binary

import (
	"fmt"
	"strings"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

const (
	linkingSubsectionSegmentInfo  = 5
	linkingSubsectionInitFuncs    = 6
	linkingSubsectionComdatInfo   = 7
	linkingSubsectionSymbolTable  = 8
)

// decodeLinkingSection parses the "linking" custom section: a version byte
// followed by a sequence of (subsection-id, length, payload) entries, much
// like the "name" section but with its own subsection grammar. Decoding
// stops at the first malformed subsection and keeps whatever subsections
// were decoded before it.
func decodeLinkingSection(payload []byte, sink *wasm.Sink) (*wasm.LinkingSection, error) {
	c := newCursor(payload)
	version, err := c.vu32()
	if err != nil {
		sink.Report(c.rangeFrom(0), "linking section: version: %v", err)
		return nil, err
	}
	ls := &wasm.LinkingSection{Version: version}

	for !c.eof() {
		id, err := c.readByte()
		if err != nil {
			return ls, err
		}
		size, err := c.vu32()
		if err != nil {
			sink.Report(c.rangeFrom(c.offset()), "linking section: %v", err)
			return ls, err
		}
		subStart := c.offset()
		sub, err := c.readBytes(int(size))
		if err != nil {
			sink.Report(c.rangeFrom(c.offset()), "linking section: %v", err)
			return ls, err
		}
		subC := &cursor{buf: sub, base: int(subStart)}

		switch id {
		case linkingSubsectionSegmentInfo:
			infos, err := decodeVector(subC, sink, "segment info", decodeSegmentInfo)
			if err != nil {
				sink.Report(subC.rangeFrom(0), "linking section: segment info: %v", err)
				return ls, err
			}
			ls.SegmentInfos = infos
		case linkingSubsectionInitFuncs:
			fns, err := decodeVector(subC, sink, "init functions", func(c *cursor) (wasm.InitFunction, error) {
				pri, err := c.vu32()
				if err != nil {
					return wasm.InitFunction{}, err
				}
				fn, err := c.vu32()
				return wasm.InitFunction{Priority: pri, Function: fn}, err
			})
			if err != nil {
				sink.Report(subC.rangeFrom(0), "linking section: init functions: %v", err)
				return ls, err
			}
			ls.InitFunctions = fns
		case linkingSubsectionComdatInfo:
			comdats, err := decodeVector(subC, sink, "comdat info", func(c *cursor) (wasm.Comdat, error) { return decodeComdat(c, sink) })
			if err != nil {
				sink.Report(subC.rangeFrom(0), "linking section: comdat info: %v", err)
				return ls, err
			}
			ls.Comdats = comdats
		case linkingSubsectionSymbolTable:
			syms, err := decodeVector(subC, sink, "symbol table", decodeSymbolInfo)
			if err != nil {
				sink.Report(subC.rangeFrom(0), "linking section: symbol table: %v", err)
				return ls, err
			}
			ls.SymbolTable = syms
		default:
			// Unknown subsections are skipped, matching the name section's
			// tolerance of future extensions.
		}
	}
	return ls, nil
}

func decodeSegmentInfo(c *cursor) (wasm.SegmentInfo, error) {
	name, err := c.name()
	if err != nil {
		return wasm.SegmentInfo{}, err
	}
	align, err := c.vu32()
	if err != nil {
		return wasm.SegmentInfo{}, err
	}
	flags, err := c.vu32()
	if err != nil {
		return wasm.SegmentInfo{}, err
	}
	return wasm.SegmentInfo{Name: name, Alignment: align, Flags: flags}, nil
}

func decodeSymbolInfo(c *cursor) (wasm.SymbolInfo, error) {
	kindByte, err := c.readByte()
	if err != nil {
		return wasm.SymbolInfo{}, err
	}
	flagsRaw, err := c.vu32()
	if err != nil {
		return wasm.SymbolInfo{}, err
	}
	flags := wasm.SymbolFlags(flagsRaw)
	sym := wasm.SymbolInfo{Flags: flags}

	switch kindByte {
	case 0, 2, 3, 5: // function, global, event, table: (index[, name])
		switch kindByte {
		case 0:
			sym.Kind = wasm.SymbolKindFunction
		case 2:
			sym.Kind = wasm.SymbolKindGlobal
		case 3:
			sym.Kind = wasm.SymbolKindEvent
		case 5:
			sym.Kind = wasm.SymbolKindTable
		}
		if sym.Index, err = c.vu32(); err != nil {
			return wasm.SymbolInfo{}, err
		}
		if flags&wasm.SymbolFlagUndefined == 0 || flags&wasm.SymbolFlagExplicitName != 0 {
			if sym.Name, err = c.name(); err != nil {
				return wasm.SymbolInfo{}, err
			}
		}
	case 1: // data: name, then (segment, offset, size) when defined
		sym.Kind = wasm.SymbolKindData
		if sym.Name, err = c.name(); err != nil {
			return wasm.SymbolInfo{}, err
		}
		if flags&wasm.SymbolFlagUndefined == 0 {
			if sym.DataSegment, err = c.vu32(); err != nil {
				return wasm.SymbolInfo{}, err
			}
			if sym.Offset, err = c.vu32(); err != nil {
				return wasm.SymbolInfo{}, err
			}
			if sym.Size, err = c.vu32(); err != nil {
				return wasm.SymbolInfo{}, err
			}
		}
	case 4: // section
		sym.Kind = wasm.SymbolKindSection
		if sym.Index, err = c.vu32(); err != nil {
			return wasm.SymbolInfo{}, err
		}
	default:
		return wasm.SymbolInfo{}, fmt.Errorf("%w: symbol kind %d", ErrBadSection, kindByte)
	}
	return sym, nil
}

func decodeComdat(c *cursor, sink *wasm.Sink) (wasm.Comdat, error) {
	name, err := c.name()
	if err != nil {
		return wasm.Comdat{}, err
	}
	flags, err := c.vu32()
	if err != nil {
		return wasm.Comdat{}, err
	}
	syms, err := decodeVector(c, sink, "comdat symbols", func(c *cursor) (wasm.ComdatSym, error) {
		kindByte, err := c.readByte()
		if err != nil {
			return wasm.ComdatSym{}, err
		}
		idx, err := c.vu32()
		if err != nil {
			return wasm.ComdatSym{}, err
		}
		var kind wasm.SymbolKind
		switch kindByte {
		case 0:
			kind = wasm.SymbolKindData
		case 1:
			kind = wasm.SymbolKindFunction
		case 2:
			kind = wasm.SymbolKindSection
		default:
			return wasm.ComdatSym{}, fmt.Errorf("%w: comdat symbol kind %d", ErrBadSection, kindByte)
		}
		return wasm.ComdatSym{Kind: kind, Index: idx}, nil
	})
	if err != nil {
		return wasm.Comdat{}, err
	}
	return wasm.Comdat{Name: name, Flags: flags, Syms: syms}, nil
}

// decodeRelocationSection parses a "reloc.<section>" custom section: a
// target-section index, then a vector of relocation entries. The addend is
// only present for the memory-address/section-offset/function-offset
// kinds.
func decodeRelocationSection(payload []byte, sink *wasm.Sink) ([]wasm.RelocationEntry, error) {
	c := newCursor(payload)
	if _, err := c.vu32(); err != nil { // target section index; callers key by name instead
		sink.Report(c.rangeFrom(0), "relocation section: %v", err)
		return nil, err
	}
	entries, err := decodeVector(c, sink, "relocations", decodeRelocationEntry)
	if err != nil {
		sink.Report(c.rangeFrom(0), "relocation section: %v", err)
	}
	return entries, err
}

func decodeRelocationEntry(c *cursor) (wasm.RelocationEntry, error) {
	start := c.offset()
	kindByte, err := c.readByte()
	if err != nil {
		return wasm.RelocationEntry{}, err
	}
	kind := wasm.RelocationKind(kindByte)
	offset, err := c.vu32()
	if err != nil {
		return wasm.RelocationEntry{}, err
	}
	index, err := c.vu32()
	if err != nil {
		return wasm.RelocationEntry{}, err
	}
	e := wasm.RelocationEntry{Kind: kind, Offset: offset, Index: index}
	if hasRelocationAddend(kind) {
		if e.Addend, err = c.vs32(); err != nil {
			return wasm.RelocationEntry{}, err
		}
	}
	e.Loc = c.rangeFrom(start)
	return e, nil
}

func hasRelocationAddend(kind wasm.RelocationKind) bool {
	switch kind {
	case wasm.RelocationMemoryAddrLEB, wasm.RelocationMemoryAddrSLEB, wasm.RelocationMemoryAddrI32,
		wasm.RelocationFunctionOffsetI32, wasm.RelocationSectionOffsetI32,
		wasm.RelocationMemoryAddrRelSLEB:
		return true
	}
	return false
}

// relocationTargetName extracts "foo" from a custom section named
// "reloc.foo".
func relocationTargetName(customName string) (string, bool) {
	const prefix = "reloc."
	if !strings.HasPrefix(customName, prefix) {
		return "", false
	}
	return customName[len(prefix):], true
}
