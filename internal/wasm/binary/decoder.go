package binary

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// Magic and version are the eight header bytes every binary module begins
// with.
var (
	Magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

// formatHeaderBytes renders a byte slice the way header mismatches are
// reported: a backslash-prefixed two-digit hex escape per byte.
func formatHeaderBytes(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		fmt.Fprintf(&sb, "\\%02x", c)
	}
	return sb.String()
}

// remainingForHeader returns whatever input bytes exist at [start, start+n),
// truncated short when the input itself ran out before n bytes — used when
// the header couldn't be read at all, so the mismatch message still shows
// what was actually there instead of nothing.
func remainingForHeader(data []byte, start, n int) []byte {
	if start >= len(data) {
		return nil
	}
	end := start + n
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

// Known section IDs. 0 is reserved for custom sections.
const (
	SectionIDCustom    = wasm.SectionIDCustom
	SectionIDType      = wasm.SectionIDType
	SectionIDImport    = wasm.SectionIDImport
	SectionIDFunction  = wasm.SectionIDFunction
	SectionIDTable     = wasm.SectionIDTable
	SectionIDMemory    = wasm.SectionIDMemory
	SectionIDGlobal    = wasm.SectionIDGlobal
	SectionIDExport    = wasm.SectionIDExport
	SectionIDStart     = wasm.SectionIDStart
	SectionIDElement   = wasm.SectionIDElement
	SectionIDCode      = wasm.SectionIDCode
	SectionIDData      = wasm.SectionIDData
	SectionIDDataCount = wasm.SectionIDDataCount
	SectionIDEvent     = wasm.SectionIDEvent
)

const (
	subsectionIDModuleName   = 0
	subsectionIDFunctionNames = 1
	subsectionIDLocalNames   = 2
)

// section is one step of the lazy section iterator: either a known,
// numbered section passed through verbatim for its own decoder, or a named
// custom section.
type section struct {
	id       byte
	name     string // only set when id == SectionIDCustom
	payload  []byte
	loc      wasm.Range
}

// sectionIter is the lazy, forward-only sequence of sections in a module:
// each step decodes one (id, len, payload) triple and advances.
type sectionIter struct {
	c    *cursor
	sink *wasm.Sink
}

// next decodes the next section, or returns ok=false once the input is
// exhausted.
func (it *sectionIter) next() (s section, ok bool) {
	if it.c.eof() {
		return section{}, false
	}
	start := it.c.offset()
	id, err := it.c.readByte()
	if err != nil {
		return section{}, false
	}
	size, err := it.c.vu32()
	if err != nil {
		it.sink.Report(it.c.rangeFrom(start), "section %s: %v", sectionName(id), err)
		return section{}, false
	}
	payload, err := it.c.readBytes(int(size))
	if err != nil {
		it.sink.Report(it.c.rangeFrom(start), "section %s: %v", sectionName(id), err)
		return section{}, false
	}
	s = section{id: id, payload: payload, loc: it.c.rangeFrom(start)}
	if id == SectionIDCustom {
		payloadStart := it.c.offset() - uint32(len(payload))
		pc := &cursor{buf: payload, base: int(payloadStart)}
		name, err := pc.name()
		if err != nil {
			it.sink.Report(s.loc, "section custom: %v", err)
			return section{}, false
		}
		s.name = name
		s.payload = payload[pc.pos:]
	}
	return s, true
}

func sectionName(id byte) string {
	switch id {
	case SectionIDCustom:
		return "custom"
	case SectionIDType:
		return "type"
	case SectionIDImport:
		return "import"
	case SectionIDFunction:
		return "function"
	case SectionIDTable:
		return "table"
	case SectionIDMemory:
		return "memory"
	case SectionIDGlobal:
		return "global"
	case SectionIDExport:
		return "export"
	case SectionIDStart:
		return "start"
	case SectionIDElement:
		return "element"
	case SectionIDCode:
		return "code"
	case SectionIDData:
		return "data"
	case SectionIDDataCount:
		return "data count"
	case SectionIDEvent:
		return "event"
	default:
		return fmt.Sprintf("unknown(%d)", id)
	}
}

// DecodeModule decodes the full binary format: an eight-byte header
// followed by any number of sections. A bad magic or version is reported
// but does not stop decoding from continuing into the sections, so callers
// see every problem in one pass rather than just the first.
func DecodeModule(data []byte, features wasm.Features, sink *wasm.Sink) (*wasm.Module, error) {
	c := newCursor(data)

	if magic, err := c.readBytes(4); err != nil || !bytes.Equal(magic, Magic) {
		if magic == nil {
			magic = remainingForHeader(data, 0, 4)
		}
		pop := sink.PushContext(wasm.Range{Start: 0, End: 4}, "magic")
		sink.Report(wasm.Range{Start: 0, End: 4}, "Mismatch: expected \"%s\", got \"%s\"", formatHeaderBytes(Magic), formatHeaderBytes(magic))
		pop()
	}
	if ver, err := c.readBytes(4); err != nil || !bytes.Equal(ver, version) {
		if ver == nil {
			ver = remainingForHeader(data, 4, 4)
		}
		pop := sink.PushContext(wasm.Range{Start: 4, End: 8}, "version")
		sink.Report(wasm.Range{Start: 4, End: 8}, "Mismatch: expected \"%s\", got \"%s\"", formatHeaderBytes(version), formatHeaderBytes(ver))
		pop()
	}

	m := &wasm.Module{}
	it := &sectionIter{c: c, sink: sink}
	seenName := false
	seenIDs := map[byte]bool{}

	for {
		s, ok := it.next()
		if !ok {
			break
		}
		if s.id == SectionIDCustom {
			pop := sink.PushContext(s.loc, "section custom")
			switch s.name {
			case "name":
				if seenName {
					sink.Report(s.loc, "section custom: redundant custom section name")
					pop()
					continue
				}
				seenName = true
				// The decoder stops at the first malformed subsection but
				// still returns everything decoded before it; keep that
				// partial result rather than discarding earlier subsections.
				ns, _ := decodeNameSection(s.payload, sink)
				if ns != nil {
					m.NameSection = ns
				}
			case "linking":
				if m.LinkingSection != nil {
					sink.Report(s.loc, "section custom: redundant custom section linking")
					pop()
					continue
				}
				ls, _ := decodeLinkingSection(s.payload, sink)
				if ls != nil {
					m.LinkingSection = ls
				}
			default:
				if target, ok := relocationTargetName(s.name); ok {
					entries, _ := decodeRelocationSection(s.payload, sink)
					if entries != nil {
						if m.Relocations == nil {
							m.Relocations = map[string][]wasm.RelocationEntry{}
						}
						m.Relocations[target] = entries
					}
					pop()
					continue
				}
				m.CustomSections = append(m.CustomSections, &wasm.CustomSection{
					Name: s.name, Data: s.payload, Loc: s.loc,
				})
			}
			pop()
			continue
		}

		if seenIDs[s.id] {
			sink.Report(s.loc, "section %s: duplicate section", sectionName(s.id))
			continue
		}
		seenIDs[s.id] = true

		pop := sink.PushContext(s.loc, "section "+sectionName(s.id))
		switch s.id {
		case SectionIDType:
			m.TypeSection, _ = decodeTypeSection(s.payload, features, sink)
		case SectionIDImport:
			m.ImportSection, _ = decodeImportSection(s.payload, features, sink)
		case SectionIDFunction:
			m.FunctionSection, _ = decodeFunctionSection(s.payload, sink)
		case SectionIDTable:
			m.TableSection, _ = decodeTableSection(s.payload, features, sink)
		case SectionIDMemory:
			m.MemorySection, _ = decodeMemorySection(s.payload, sink)
		case SectionIDGlobal:
			m.GlobalSection, _ = decodeGlobalSection(s.payload, features, sink)
		case SectionIDExport:
			m.ExportSection, _ = decodeExportSection(s.payload, sink)
		case SectionIDStart:
			idx, err := newCursor(s.payload).vu32()
			if err == nil {
				m.StartSection = &idx
			}
		case SectionIDElement:
			m.ElementSection, _ = decodeElementSection(s.payload, features, sink)
		case SectionIDCode:
			m.CodeSection, _ = decodeCodeSection(s.payload, features, sink)
		case SectionIDData:
			m.DataSection, _ = decodeDataSection(s.payload, features, sink)
		case SectionIDDataCount:
			n, err := newCursor(s.payload).vu32()
			if err == nil {
				m.DataCountSection = &n
			}
		case SectionIDEvent:
			m.EventSection, _ = decodeEventSection(s.payload, sink)
		default:
			sink.Report(s.loc, "invalid section id %d", s.id)
		}
		pop()
	}

	if err := sink.Err(); err != nil {
		return m, err
	}
	return m, nil
}
