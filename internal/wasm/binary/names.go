package binary

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// decodeNameSection parses the well-known "name" custom section's
// subsections: module name (0), function names (1), and local names (2).
// Unknown subsection IDs are skipped, not reported, since custom-section
// extensions are explicitly allowed to add more.
func decodeNameSection(payload []byte, sink *wasm.Sink) (*wasm.NameSection, error) {
	c := newCursor(payload)
	ns := &wasm.NameSection{}
	for !c.eof() {
		id, err := c.readByte()
		if err != nil {
			return ns, err
		}
		size, err := c.vu32()
		if err != nil {
			sink.Report(c.rangeFrom(c.offset()), "%v", err)
			return ns, err
		}
		subAbsStart := c.offset()
		sub, err := c.readBytes(int(size))
		if err != nil {
			sink.Report(c.rangeFrom(c.offset()), "%v", err)
			return ns, err
		}
		subC := &cursor{buf: sub, base: int(subAbsStart)}
		switch id {
		case subsectionIDModuleName:
			name, err := subC.name()
			if err != nil {
				sink.Report(subC.rangeFrom(0), "name section: module name: %v", err)
				return ns, err
			}
			ns.ModuleName = name
		case subsectionIDFunctionNames:
			assocs, err := decodeNameMap(subC, sink, "function names")
			if err != nil {
				sink.Report(subC.rangeFrom(0), "name section: function names: %v", err)
				return ns, err
			}
			ns.FunctionNames = assocs
		case subsectionIDLocalNames:
			indirect, err := decodeVector(subC, sink, "local names", func(c *cursor) (wasm.IndirectNameAssoc, error) {
				idx, err := c.vu32()
				if err != nil {
					return wasm.IndirectNameAssoc{}, err
				}
				names, err := decodeNameMap(c, sink, "local names")
				return wasm.IndirectNameAssoc{Index: idx, Names: names}, err
			})
			if err != nil {
				sink.Report(subC.rangeFrom(0), "name section: local names: %v", err)
				return ns, err
			}
			ns.LocalNames = indirect
		}
	}
	return ns, nil
}

func decodeNameMap(c *cursor, sink *wasm.Sink, name string) ([]wasm.NameAssoc, error) {
	return decodeVector(c, sink, name, func(c *cursor) (wasm.NameAssoc, error) {
		idx, err := c.vu32()
		if err != nil {
			return wasm.NameAssoc{}, err
		}
		name, err := c.name()
		return wasm.NameAssoc{Index: idx, Name: name}, err
	})
}
