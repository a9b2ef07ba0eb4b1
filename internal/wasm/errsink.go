package wasm

import "fmt"

// Context is one frame of a Sink's context stack at the moment a Diagnostic
// was reported: a source Range plus a short description such as "vu32" or
// "call_indirect".
type Context struct {
	Range Range
	Desc  string
}

// Diagnostic is a single reported problem: the context stack in effect when
// Report was called, followed by the terminal message.
type Diagnostic struct {
	Contexts []Context
	Range    Range
	Message  string
}

// Error implements error using only the terminal message, matching the
// verbatim error text relied on by callers and tests. Use Contexts for a
// fuller, human-facing trace.
func (d *Diagnostic) Error() string {
	return d.Message
}

// Sink accumulates Diagnostics without ever aborting decoding or parsing.
// It is passed explicitly to every decoder and parser; nothing in this
// module stashes one in a package-level variable.
type Sink struct {
	stack       []Context
	Diagnostics []*Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// PushContext pushes a context frame and returns a func that pops it. Used
// as `defer sink.PushContext(r, "section")()` so every return path restores
// the stack.
func (s *Sink) PushContext(r Range, desc string) func() {
	s.stack = append(s.stack, Context{Range: r, Desc: desc})
	depth := len(s.stack)
	return func() {
		if len(s.stack) >= depth {
			s.stack = s.stack[:depth-1]
		}
	}
}

// Report appends a Diagnostic capturing the current context stack.
func (s *Sink) Report(r Range, format string, args ...any) *Diagnostic {
	d := &Diagnostic{
		Range:    r,
		Message:  fmt.Sprintf(format, args...),
		Contexts: append([]Context(nil), s.stack...),
	}
	s.Diagnostics = append(s.Diagnostics, d)
	return d
}

// Empty reports whether no diagnostics have been recorded.
func (s *Sink) Empty() bool {
	return len(s.Diagnostics) == 0
}

// Err returns the first Diagnostic as an error, or nil if none were
// recorded. Convenient for callers that only care whether decoding
// succeeded at all.
func (s *Sink) Err() error {
	if len(s.Diagnostics) == 0 {
		return nil
	}
	return s.Diagnostics[0]
}
