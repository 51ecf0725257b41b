package entity

// Table tracks every live entity of one pass, keyed by index slot. The
// serial of the current occupant is kept so stale handles from before a
// slot was reused never resolve to the new occupant.
//
// Table holds references into the decoder's live entities; reads that
// outlive the current callback must go through Get or CopyAll, which
// detach the state.
type Table struct {
	slots map[int32]*tableSlot
}

type tableSlot struct {
	handle Handle
	tick   uint32
	src    PropSource
}

// NewTable returns an empty entity table.
func NewTable() *Table {
	return &Table{slots: make(map[int32]*tableSlot)}
}

// Upsert records a create or update at the given tick and returns the
// handle the source now occupies. A new serial on an existing index evicts
// the previous occupant.
func (t *Table) Upsert(tick uint32, src PropSource) Handle {
	h := Handle{Index: src.GetIndex(), Serial: src.GetSerial()}
	slot, ok := t.slots[h.Index]
	if !ok {
		t.slots[h.Index] = &tableSlot{handle: h, tick: tick, src: src}
		return h
	}
	slot.handle = h
	slot.tick = tick
	slot.src = src
	return h
}

// Remove drops an entity. Unknown handles and stale serials are ignored
// and report false.
func (t *Table) Remove(tick uint32, h Handle) bool {
	slot, ok := t.slots[h.Index]
	if !ok || slot.handle.Serial != h.Serial {
		return false
	}
	delete(t.slots, h.Index)
	return true
}

// Get returns a detached copy of the entity state for a full handle.
// Stale serials miss.
func (t *Table) Get(h Handle) (State, bool) {
	slot, ok := t.slots[h.Index]
	if !ok || slot.handle.Serial != h.Serial {
		return State{}, false
	}
	return NewState(slot.tick, slot.src), true
}

// ByIndex returns the live occupant of an index slot.
func (t *Table) ByIndex(idx int32) (PropSource, bool) {
	slot, ok := t.slots[idx]
	if !ok {
		return nil, false
	}
	return slot.src, true
}

// Each visits every live entity until fn returns false.
func (t *Table) Each(fn func(PropSource) bool) {
	for _, slot := range t.slots {
		if !fn(slot.src) {
			return
		}
	}
}

// CopyAll deep-copies the whole table. The result shares nothing with the
// decoder and is what checkpoints store.
func (t *Table) CopyAll() map[Handle]State {
	out := make(map[Handle]State, len(t.slots))
	for _, slot := range t.slots {
		out[slot.handle] = NewState(slot.tick, slot.src)
	}
	return out
}

// Len returns the number of live entities.
func (t *Table) Len() int { return len(t.slots) }
