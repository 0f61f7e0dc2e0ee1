package lox

// tableMaxLoad is the load factor cap before a table's backing array grows.
const tableMaxLoad = 0.75

// entry is one slot of a Table. An empty slot has key == nil, value nil.
// A tombstone (left behind by Delete so probing past it still finds later
// entries) has key == nil, value == BoolValue(true).
type entry struct {
	key   *ObjString
	value Value
}

// Table is an open-addressed, linear-probing hash table keyed by the
// identity of an interned *ObjString.
type Table struct {
	count   int
	entries []entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

func (t *Table) Count() int { return t.count }

// findEntry locates the slot key would occupy (or already occupies),
// remembering the first tombstone seen so Set can reuse it.
func findEntry(entries []entry, key *ObjString) *entry {
	capacity := uint32(len(entries))
	index := key.hash % capacity
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(vm *VM, capacity int) {
	entries := make([]entry, capacity)
	for i := range entries {
		entries[i] = entry{value: NilValue()}
	}

	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dest := findEntry(entries, old.key)
		dest.key = old.key
		dest.value = old.value
		t.count++
	}

	if vm != nil {
		vm.trackAlloc((capacity - len(t.entries)) * entrySizeEstimate)
	}
	t.entries = entries
}

// entrySizeEstimate approximates the byte cost of a table slot for GC
// accounting purposes; it need not be exact, only monotonic with growth.
const entrySizeEstimate = 24

// Get looks up key, matching clox's tableGet.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if t.count == 0 {
		return Value{}, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return Value{}, false
	}
	return e.value, true
}

// Set inserts or overwrites key, growing the table first if needed, and
// reports whether the key is new.
func (t *Table) Set(vm *VM, key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		capacity := growCapacity(len(t.entries))
		t.adjustCapacity(vm, capacity)
	}

	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.value.IsNil() {
		t.count++
	}

	e.key = key
	e.value = value
	return isNewKey
}

// Delete leaves a tombstone in key's slot, matching clox's tableDelete.
func (t *Table) Delete(key *ObjString) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = BoolValue(true)
	return true
}

// AddAll copies every live entry of t into dst, used to implement class
// inheritance (INHERIT copies the superclass's method table).
func (t *Table) AddAll(vm *VM, dst *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			dst.Set(vm, e.key, e.value)
		}
	}
}

// FindString is the interning lookup: it probes by the identity of the raw
// bytes (content + hash + length) since the canonical *ObjString pointer
// for this content isn't known yet.
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if t.count == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				return nil
			}
		} else if e.key.hash == hash && e.key.chars == chars {
			return e.key
		}
		index = (index + 1) % capacity
	}
}

// RemoveWhite evicts every key whose mark bit is clear, preserving the weak
// reference semantics of the string intern table across a collection.
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.marked {
			t.Delete(e.key)
		}
	}
}

// Mark marks every live key and value in t, used for tables reachable as
// GC roots (globals) or via an object being traced (class methods,
// instance fields).
func (t *Table) Mark(vm *VM) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			vm.markObject(e.key)
		}
		vm.markValue(e.value)
	}
}

// Each calls fn for every live entry of t, in backing-array order. Used by
// the serializer to dump the intern table without depending on Table's
// internal layout.
func (t *Table) Each(fn func(key *ObjString, value Value)) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			fn(e.key, e.value)
		}
	}
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
