package wings

import "github.com/zephyrtronium/contains"

// AttrTable is a per-value mapping from attribute names to values, plus an
// ordered list of parent tables. Lookups consult the local map first and then
// each parent in depth-first, left-to-right order; the first hit wins. Writes
// always go to the local map.
type AttrTable struct {
	names   []string
	slots   map[string]*Value
	parents []*AttrTable

	// id is used to deduplicate tables during chain traversal.
	id uintptr
}

// NewAttrTable creates an empty attribute table with no parents.
func NewAttrTable() *AttrTable {
	return &AttrTable{slots: map[string]*Value{}, id: nextID()}
}

// GetLocal returns the value of a local entry, or nil if there is none.
func (t *AttrTable) GetLocal(name string) *Value {
	return t.slots[name]
}

// Get searches t and then its parent chain in depth-first, left-to-right
// order for name. Returns nil if the name is not found anywhere.
func (t *AttrTable) Get(name string) *Value {
	if v, ok := t.slots[name]; ok {
		return v
	}
	return t.getAncestor(name)
}

// GetFromBase skips t's local entries and searches only the parent chain.
func (t *AttrTable) GetFromBase(name string) *Value {
	return t.getAncestor(name)
}

// getAncestor searches the parent chain without duplicates. The traversal
// holds an explicit stack rather than recursing so deep diamond hierarchies
// cannot exhaust the goroutine stack.
func (t *AttrTable) getAncestor(name string) *Value {
	var seen contains.Set
	seen.Add(t.id)
	stack := make([]*AttrTable, 0, len(t.parents))
	for i := len(t.parents) - 1; i >= 0; i-- {
		if p := t.parents[i]; seen.Add(p.id) {
			stack = append(stack, p)
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v, ok := p.slots[name]; ok {
			return v
		}
		for i := len(p.parents) - 1; i >= 0; i-- {
			if q := p.parents[i]; seen.Add(q.id) {
				stack = append(stack, q)
			}
		}
	}
	return nil
}

// Set creates or replaces a local entry.
func (t *AttrTable) Set(name string, v *Value) {
	if _, ok := t.slots[name]; !ok {
		t.names = append(t.names, name)
	}
	t.slots[name] = v
}

// Delete removes a local entry if present.
func (t *AttrTable) Delete(name string) {
	if _, ok := t.slots[name]; !ok {
		return
	}
	delete(t.slots, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
}

// AddParent appends a parent table, or prepends it if prepend is true.
func (t *AttrTable) AddParent(p *AttrTable, prepend bool) {
	if prepend {
		t.parents = append([]*AttrTable{p}, t.parents...)
	} else {
		t.parents = append(t.parents, p)
	}
}

// Copy clones the local entries and shares the parent list. It is how a
// class's instance-attribute template is materialized onto a new instance.
func (t *AttrTable) Copy() *AttrTable {
	n := &AttrTable{
		names:   append([]string(nil), t.names...),
		slots:   make(map[string]*Value, len(t.slots)),
		parents: append([]*AttrTable(nil), t.parents...),
		id:      nextID(),
	}
	for k, v := range t.slots {
		n.slots[k] = v
	}
	return n
}

// ForEach calls fn for each local entry in insertion order until fn returns
// false. Parents are not visited.
func (t *AttrTable) ForEach(fn func(name string, v *Value) bool) {
	for _, name := range t.names {
		if !fn(name, t.slots[name]) {
			return
		}
	}
}
