package entity_test

import (
	"testing"

	"demoscope/entity"
)

// TestTableUpsertAndGet verifies entities round-trip through the table
func TestTableUpsertAndGet(t *testing.T) {
	table := entity.NewTable()
	src := heroState(5, 1)

	h := table.Upsert(100, src)
	if h.Index != 5 || h.Serial != 1 {
		t.Errorf("Upsert handle = %s, want 5/1", h)
	}
	if table.Len() != 1 {
		t.Errorf("Len = %d, want 1", table.Len())
	}

	got, ok := table.Get(h)
	if !ok {
		t.Fatal("Get should find the upserted entity")
	}
	if got.GetClassName() != "CDOTA_Unit_Hero_Axe" {
		t.Errorf("Class mismatch: got %s, want CDOTA_Unit_Hero_Axe", got.GetClassName())
	}
	if got.Tick != 100 {
		t.Errorf("Tick mismatch: got %d, want 100", got.Tick)
	}
}

// TestTableGetDetaches verifies Get copies rather than aliases live state
func TestTableGetDetaches(t *testing.T) {
	table := entity.NewTable()
	src := heroState(5, 1)
	h := table.Upsert(100, src)

	got, _ := table.Get(h)
	got.Props["m_iCurrentLevel"] = int32(25)

	again, _ := table.Get(h)
	if v, _ := again.GetInt32("m_iCurrentLevel"); v != 6 {
		t.Errorf("Write to a Get copy leaked into the table: level = %d, want 6", v)
	}
}

// TestTableStaleSerial verifies reused slots reject handles from before
func TestTableStaleSerial(t *testing.T) {
	table := entity.NewTable()
	first := table.Upsert(100, heroState(5, 1))

	// The slot is reused by a new lifetime with a bumped serial.
	second := table.Upsert(200, heroState(5, 2))

	if _, ok := table.Get(first); ok {
		t.Error("Stale handle should not resolve to the new occupant")
	}
	if _, ok := table.Get(second); !ok {
		t.Error("Current handle should resolve")
	}

	if table.Remove(300, first) {
		t.Error("Remove with a stale serial should report false")
	}
	if table.Len() != 1 {
		t.Errorf("Stale remove must not evict the occupant: Len = %d, want 1", table.Len())
	}

	if !table.Remove(300, second) {
		t.Error("Remove with the current serial should report true")
	}
	if table.Len() != 0 {
		t.Errorf("Len after remove = %d, want 0", table.Len())
	}
}

// TestTableRemoveUnknown verifies removing an absent entity is harmless
func TestTableRemoveUnknown(t *testing.T) {
	table := entity.NewTable()
	if table.Remove(100, entity.Handle{Index: 9, Serial: 1}) {
		t.Error("Remove of an unknown handle should report false")
	}
}

// TestTableByIndex verifies live lookup by slot
func TestTableByIndex(t *testing.T) {
	table := entity.NewTable()
	table.Upsert(100, heroState(5, 1))

	src, ok := table.ByIndex(5)
	if !ok {
		t.Fatal("ByIndex should find the occupant")
	}
	if src.GetIndex() != 5 {
		t.Errorf("ByIndex returned index %d, want 5", src.GetIndex())
	}

	if _, ok := table.ByIndex(6); ok {
		t.Error("ByIndex of an empty slot should report false")
	}
}

// TestTableCopyAllIsolation verifies checkpoint copies share nothing live
func TestTableCopyAllIsolation(t *testing.T) {
	table := entity.NewTable()
	a := heroState(5, 1)
	b := heroState(6, 1)
	b.Class = "CDOTA_Unit_Hero_Juggernaut"
	table.Upsert(100, a)
	table.Upsert(100, b)

	states := table.CopyAll()
	if len(states) != 2 {
		t.Fatalf("CopyAll returned %d states, want 2", len(states))
	}

	h := entity.Handle{Index: 5, Serial: 1}
	st, ok := states[h]
	if !ok {
		t.Fatal("CopyAll should key by full handle")
	}
	st.Props["m_iCurrentLevel"] = int32(30)

	live, _ := table.Get(h)
	if v, _ := live.GetInt32("m_iCurrentLevel"); v != 6 {
		t.Errorf("Checkpoint write leaked into the live table: level = %d, want 6", v)
	}
}

// TestTableReplayDeterminism verifies the deltas recorded between two
// checkpoints rebuild the later checkpoint from the earlier one
func TestTableReplayDeterminism(t *testing.T) {
	table := entity.NewTable()
	src := heroState(5, 1)
	table.Upsert(100, src)

	first := table.CopyAll()

	// Updates strictly between the two checkpoints.
	deltas := map[string]interface{}{
		"m_iCurrentLevel": int32(7),
		"m_iHealth":       uint64(1460),
		"m_flMana":        float32(188.0),
	}
	for k, v := range deltas {
		src.Props[k] = v
	}
	table.Upsert(150, src)

	second := table.CopyAll()

	h := entity.Handle{Index: 5, Serial: 1}
	replayed := first[h].Clone()
	replayed.Merge(150, deltas)

	want := second[h]
	if replayed.Tick != want.Tick {
		t.Errorf("Replayed tick = %d, want %d", replayed.Tick, want.Tick)
	}
	if len(replayed.Props) != len(want.Props) {
		t.Fatalf("Replayed %d props, want %d", len(replayed.Props), len(want.Props))
	}
	for k, v := range want.Props {
		if replayed.Props[k] != v {
			t.Errorf("Prop %s = %v after replay, want %v", k, replayed.Props[k], v)
		}
	}
}

// TestTableEach verifies traversal visits every live entity
func TestTableEach(t *testing.T) {
	table := entity.NewTable()
	table.Upsert(100, heroState(5, 1))
	table.Upsert(100, heroState(6, 1))

	seen := 0
	table.Each(func(src entity.PropSource) bool {
		seen++
		return true
	})
	if seen != 2 {
		t.Errorf("Each visited %d entities, want 2", seen)
	}

	// Early stop.
	seen = 0
	table.Each(func(src entity.PropSource) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Each with early stop visited %d entities, want 1", seen)
	}
}

func BenchmarkTableUpsert(b *testing.B) {
	table := entity.NewTable()
	srcs := make([]entity.State, 1000)
	for i := range srcs {
		srcs[i] = heroState(int32(i), 1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Upsert(uint32(i), srcs[i%len(srcs)])
	}
}

func BenchmarkTableCopyAll(b *testing.B) {
	table := entity.NewTable()
	for i := int32(0); i < 1000; i++ {
		table.Upsert(100, heroState(i, 1))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if states := table.CopyAll(); len(states) != 1000 {
			b.Fatalf("CopyAll returned %d states", len(states))
		}
	}
}

// TestStatePool verifies checkpoint state serves the pool interface
func TestStatePool(t *testing.T) {
	states := map[entity.Handle]entity.State{
		{Index: 5, Serial: 1}: heroState(5, 1),
		{Index: 6, Serial: 2}: heroState(6, 2),
	}
	pool := entity.NewStatePool(states)

	if pool.Len() != 2 {
		t.Errorf("Len = %d, want 2", pool.Len())
	}

	src, ok := pool.ByIndex(5)
	if !ok {
		t.Fatal("ByIndex should find a stored entity")
	}
	if src.GetSerial() != 1 {
		t.Errorf("Serial mismatch: got %d, want 1", src.GetSerial())
	}

	if _, ok := pool.ByIndex(99); ok {
		t.Error("ByIndex of an absent slot should report false")
	}

	seen := 0
	pool.Each(func(src entity.PropSource) bool {
		seen++
		return true
	})
	if seen != 2 {
		t.Errorf("Each visited %d entities, want 2", seen)
	}
}
