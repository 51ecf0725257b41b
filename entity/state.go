package entity

// State is a copied snapshot of one entity. It shares nothing with the
// decoder, so it stays valid after the pass moves on or the entity is
// deleted. State satisfies PropSource, letting view code read live
// entities and stored copies the same way.
type State struct {
	Handle Handle `json:"handle"`
	Class  string `json:"class"`
	// Tick is the last tick that touched this entity before the copy.
	Tick  uint32                 `json:"tick"`
	Props map[string]interface{} `json:"props"`
}

// NewState copies an entity into a detached State.
func NewState(tick uint32, src PropSource) State {
	return State{
		Handle: Handle{Index: src.GetIndex(), Serial: src.GetSerial()},
		Class:  src.GetClassName(),
		Tick:   tick,
		Props:  copyProps(src.Map()),
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Props = copyProps(s.Props)
	return out
}

// Merge applies property deltas onto the state, advancing its tick.
// Replaying the deltas recorded between two copies of the same entity
// reproduces the later copy.
func (s *State) Merge(tick uint32, deltas map[string]interface{}) {
	if s.Props == nil {
		s.Props = make(map[string]interface{}, len(deltas))
	}
	for k, v := range deltas {
		s.Props[k] = copyValue(v)
	}
	s.Tick = tick
}

// GetClassName returns the entity class name.
func (s State) GetClassName() string { return s.Class }

// GetIndex returns the entity index.
func (s State) GetIndex() int32 { return s.Handle.Index }

// GetSerial returns the entity serial.
func (s State) GetSerial() int32 { return s.Handle.Serial }

// Get returns the raw property value, nil when absent.
func (s State) Get(name string) interface{} { return s.Props[name] }

// GetInt32 reads a property as int32.
func (s State) GetInt32(name string) (int32, bool) {
	switch v := s.Props[name].(type) {
	case int32:
		return v, true
	case int64:
		return int32(v), true
	case int:
		return int32(v), true
	case uint32:
		return int32(v), true
	case uint64:
		return int32(v), true
	}
	return 0, false
}

// GetUint32 reads a property as uint32.
func (s State) GetUint32(name string) (uint32, bool) {
	switch v := s.Props[name].(type) {
	case uint32:
		return v, true
	case uint64:
		return uint32(v), true
	case int32:
		return uint32(v), true
	case int64:
		return uint32(v), true
	case int:
		return uint32(v), true
	}
	return 0, false
}

// GetUint64 reads a property as uint64.
func (s State) GetUint64(name string) (uint64, bool) {
	switch v := s.Props[name].(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case int32:
		return uint64(v), true
	case int:
		return uint64(v), true
	}
	return 0, false
}

// GetFloat32 reads a property as float32.
func (s State) GetFloat32(name string) (float32, bool) {
	switch v := s.Props[name].(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	}
	return 0, false
}

// GetString reads a property as string.
func (s State) GetString(name string) (string, bool) {
	if v, ok := s.Props[name].(string); ok {
		return v, true
	}
	return "", false
}

// GetBool reads a property as bool.
func (s State) GetBool(name string) (bool, bool) {
	if v, ok := s.Props[name].(bool); ok {
		return v, true
	}
	return false, false
}

// Map returns the property map. Callers must treat it as read-only; use
// Clone for a mutable copy.
func (s State) Map() map[string]interface{} { return s.Props }

func copyProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue duplicates the slice-valued properties the decoder produces
// (vectors). Scalars and strings are immutable and pass through.
func copyValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case []float32:
		out := make([]float32, len(vv))
		copy(out, vv)
		return out
	case []int32:
		out := make([]int32, len(vv))
		copy(out, vv)
		return out
	case []uint32:
		out := make([]uint32, len(vv))
		copy(out, vv)
		return out
	case []uint64:
		out := make([]uint64, len(vv))
		copy(out, vv)
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
