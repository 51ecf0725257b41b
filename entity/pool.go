package entity

// StatePool adapts a stored checkpoint copy to the Pool interface so views
// can be materialized from it without touching the decoder.
type StatePool struct {
	byIndex map[int32]State
}

// NewStatePool indexes a checkpoint's state map for lookup.
func NewStatePool(states map[Handle]State) *StatePool {
	p := &StatePool{byIndex: make(map[int32]State, len(states))}
	for h, s := range states {
		p.byIndex[h.Index] = s
	}
	return p
}

// ByIndex returns the stored entity at an index slot.
func (p *StatePool) ByIndex(idx int32) (PropSource, bool) {
	s, ok := p.byIndex[idx]
	if !ok {
		return nil, false
	}
	return s, true
}

// Each visits every stored entity until fn returns false.
func (p *StatePool) Each(fn func(PropSource) bool) {
	for _, s := range p.byIndex {
		if !fn(s) {
			return
		}
	}
}

// Len returns the number of stored entities.
func (p *StatePool) Len() int { return len(p.byIndex) }
