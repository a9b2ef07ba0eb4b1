package wat

import "github.com/WebAssembly/wasp-sub003/internal/wasm"

// NameMap assigns sequential indices to an index space as items are
// defined, tracking which bind-names map to which index. One NameMap
// exists per index space (function, table, memory, global, element
// segment, data segment, event/tag, type, local; labels use LabelStack),
// built during the define pass and consulted read-only during the resolve pass.
type NameMap struct {
	byName map[string]wasm.Index
	count  wasm.Index
}

// NewNameMap returns an empty NameMap.
func NewNameMap() *NameMap {
	return &NameMap{byName: map[string]wasm.Index{}}
}

// NewBound assigns the next index to name, recording it for later lookup.
// Caller must already have checked HasSinceLastPush to detect shadowing.
func (m *NameMap) NewBound(name string) wasm.Index {
	i := m.count
	m.byName[name] = i
	m.count++
	return i
}

// NewUnbound consumes the next index without binding any name to it (an
// anonymous item still occupies a slot in its index space).
func (m *NameMap) NewUnbound() wasm.Index {
	i := m.count
	m.count++
	return i
}

// HasSinceLastPush reports whether name is already bound in this map. Used
// to detect a duplicate `$x` before silently letting the second definition
// shadow the first — resolve reports the redefinition, but does not stop
// the caller from continuing as unbound.
func (m *NameMap) HasSinceLastPush(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Get returns the index bound to name, if any.
func (m *NameMap) Get(name string) (wasm.Index, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// Size is the number of indices handed out so far (bound and unbound).
func (m *NameMap) Size() wasm.Index { return m.count }

// LabelStack tracks the nested block labels in scope while resolving a
// function body. Labels resolve by *relative* depth (innermost is 0), the
// opposite direction from every other index space, so it gets its own
// small stack type instead of reusing NameMap.
type LabelStack struct {
	labels []string // labels[len-1] is the innermost (depth 0)
}

// Push enters a new block, optionally naming its label.
func (s *LabelStack) Push(label string) {
	s.labels = append(s.labels, label)
}

// Pop leaves the innermost block.
func (s *LabelStack) Pop() {
	if len(s.labels) > 0 {
		s.labels = s.labels[:len(s.labels)-1]
	}
}

// Resolve looks up a label by name, returning its relative depth from the
// innermost enclosing block.
func (s *LabelStack) Resolve(name string) (wasm.Index, bool) {
	for depth, i := 0, len(s.labels)-1; i >= 0; depth, i = depth+1, i-1 {
		if s.labels[i] == name {
			return wasm.Index(depth), true
		}
	}
	return 0, false
}

// ResolveDepth reports whether a literal numeric depth is in range (it
// always resolves to itself; this only flags a br/br_if/br_table target
// that escapes every enclosing block).
func (s *LabelStack) ResolveDepth(depth wasm.Index) bool {
	return int(depth) < len(s.labels)
}
