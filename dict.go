package wings

// Dict is the insertion-ordered mapping backing map and set values. Keys are
// restricted to hashable values; callers validate hashability and raise
// TypeError before inserting.
type Dict struct {
	entries []dictEntry
	// index maps a key hash to entry positions with that hash.
	index map[uint64][]int
	// dead counts tombstoned entries awaiting compaction.
	dead int
}

type dictEntry struct {
	key, value *Value
	// deleted marks a tombstone; tombstones preserve the positions stored
	// in the index.
	deleted bool
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{index: map[uint64][]int{}}
}

// Len returns the number of live entries.
func (d *Dict) Len() int { return len(d.entries) - d.dead }

func (d *Dict) find(key *Value) (int, bool) {
	for _, i := range d.index[key.primHash()] {
		e := &d.entries[i]
		if !e.deleted && primEqual(e.key, key) {
			return i, true
		}
	}
	return 0, false
}

// Get returns the value stored under key, if any.
func (d *Dict) Get(key *Value) (*Value, bool) {
	if i, ok := d.find(key); ok {
		return d.entries[i].value, true
	}
	return nil, false
}

// Set stores value under key, replacing any existing entry. A replaced key
// keeps its original insertion position.
func (d *Dict) Set(key, value *Value) {
	if i, ok := d.find(key); ok {
		d.entries[i].value = value
		return
	}
	h := key.primHash()
	d.index[h] = append(d.index[h], len(d.entries))
	d.entries = append(d.entries, dictEntry{key: key, value: value})
}

// Delete removes the entry under key, reporting whether it existed.
func (d *Dict) Delete(key *Value) bool {
	i, ok := d.find(key)
	if !ok {
		return false
	}
	d.entries[i] = dictEntry{deleted: true}
	d.dead++
	if d.dead > len(d.entries)/2 && d.dead > 8 {
		d.compact()
	}
	return true
}

func (d *Dict) compact() {
	entries := make([]dictEntry, 0, d.Len())
	index := make(map[uint64][]int, d.Len())
	for _, e := range d.entries {
		if e.deleted {
			continue
		}
		h := e.key.primHash()
		index[h] = append(index[h], len(entries))
		entries = append(entries, e)
	}
	d.entries = entries
	d.index = index
	d.dead = 0
}

// forEach visits live entries in insertion order until fn returns false.
func (d *Dict) forEach(fn func(key, value *Value) bool) {
	for i := range d.entries {
		e := &d.entries[i]
		if e.deleted {
			continue
		}
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Keys returns the live keys in insertion order.
func (d *Dict) Keys() []*Value {
	keys := make([]*Value, 0, d.Len())
	d.forEach(func(k, _ *Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}
