package wasm

// Known binary section IDs. 0 is reserved for custom sections; 1-11 are the
// MVP sections; 12-13 are the data-count and event (exception-handling)
// proposals.
const (
	SectionIDCustom    byte = 0
	SectionIDType      byte = 1
	SectionIDImport    byte = 2
	SectionIDFunction  byte = 3
	SectionIDTable     byte = 4
	SectionIDMemory    byte = 5
	SectionIDGlobal    byte = 6
	SectionIDExport    byte = 7
	SectionIDStart     byte = 8
	SectionIDElement   byte = 9
	SectionIDCode      byte = 10
	SectionIDData      byte = 11
	SectionIDDataCount byte = 12
	SectionIDEvent     byte = 13
)
