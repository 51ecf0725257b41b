package entity_test

import (
	"testing"

	"demoscope/entity"
)

func heroState(index, serial int32) entity.State {
	return entity.State{
		Handle: entity.Handle{Index: index, Serial: serial},
		Class:  "CDOTA_Unit_Hero_Axe",
		Tick:   1000,
		Props: map[string]interface{}{
			"m_iCurrentLevel":        int32(6),
			"m_iHealth":              uint64(1240),
			"m_iTeamNum":             uint64(2),
			"m_flMana":               float32(312.5),
			"m_iszUnitName":          "npc_dota_hero_axe",
			"m_bIsIllusion":          false,
			"CBodyComponent.m_cellX": uint32(192),
			"CBodyComponent.m_vecX":  float32(64.0),
			"CBodyComponent.m_cellY": uint32(128),
			"CBodyComponent.m_vecY":  float32(0.0),
			"m_vecAbilities.0000":    uint64(12<<14 | 301),
		},
	}
}

// TestStateCoercingGetters verifies numeric props read across widths
func TestStateCoercingGetters(t *testing.T) {
	s := heroState(5, 1)

	// The decoder stores integer props in whatever width it decoded;
	// getters coerce to the requested width.
	if v, ok := s.GetInt32("m_iHealth"); !ok || v != 1240 {
		t.Errorf("GetInt32 over uint64 prop = %d, %v, want 1240, true", v, ok)
	}
	if v, ok := s.GetUint32("m_iCurrentLevel"); !ok || v != 6 {
		t.Errorf("GetUint32 over int32 prop = %d, %v, want 6, true", v, ok)
	}
	if v, ok := s.GetUint64("m_iCurrentLevel"); !ok || v != 6 {
		t.Errorf("GetUint64 over int32 prop = %d, %v, want 6, true", v, ok)
	}
	if v, ok := s.GetFloat32("m_flMana"); !ok || v != 312.5 {
		t.Errorf("GetFloat32 = %f, %v, want 312.5, true", v, ok)
	}
	if v, ok := s.GetString("m_iszUnitName"); !ok || v != "npc_dota_hero_axe" {
		t.Errorf("GetString = %q, %v, want npc_dota_hero_axe, true", v, ok)
	}
	if v, ok := s.GetBool("m_bIsIllusion"); !ok || v != false {
		t.Errorf("GetBool = %v, %v, want false, true", v, ok)
	}
}

// TestStateMissingProps verifies absent props report not-ok with zero values
func TestStateMissingProps(t *testing.T) {
	s := heroState(5, 1)

	if v, ok := s.GetInt32("m_iNoSuchProp"); ok || v != 0 {
		t.Errorf("Missing prop GetInt32 = %d, %v, want 0, false", v, ok)
	}
	if v, ok := s.GetString("m_iNoSuchProp"); ok || v != "" {
		t.Errorf("Missing prop GetString = %q, %v, want empty, false", v, ok)
	}
	if s.Get("m_iNoSuchProp") != nil {
		t.Error("Missing prop Get should be nil")
	}

	// Wrong-typed reads miss rather than panic.
	if _, ok := s.GetFloat32("m_iszUnitName"); ok {
		t.Error("GetFloat32 over a string prop should report false")
	}
}

// TestStateCloneIsolation verifies clones share no mutable data
func TestStateCloneIsolation(t *testing.T) {
	s := heroState(5, 1)
	s.Props["m_vecPath"] = []float32{1, 2, 3}

	c := s.Clone()
	c.Props["m_iCurrentLevel"] = int32(25)
	c.Props["m_vecPath"].([]float32)[0] = 99

	if v, _ := s.GetInt32("m_iCurrentLevel"); v != 6 {
		t.Errorf("Clone write leaked into original: level = %d, want 6", v)
	}
	if s.Props["m_vecPath"].([]float32)[0] != 1 {
		t.Error("Clone slice write leaked into original")
	}
}

// TestStateMerge verifies delta replay reproduces a later copy
func TestStateMerge(t *testing.T) {
	s := heroState(5, 1)
	later := s.Clone()
	later.Merge(2000, map[string]interface{}{
		"m_iCurrentLevel": int32(7),
		"m_iHealth":       uint64(1400),
	})

	if later.Tick != 2000 {
		t.Errorf("Merge tick mismatch: got %d, want 2000", later.Tick)
	}
	if v, _ := later.GetInt32("m_iCurrentLevel"); v != 7 {
		t.Errorf("Merged level = %d, want 7", v)
	}
	if v, _ := later.GetInt32("m_iHealth"); v != 1400 {
		t.Errorf("Merged health = %d, want 1400", v)
	}
	// Untouched props survive the merge.
	if v, _ := later.GetFloat32("m_flMana"); v != 312.5 {
		t.Errorf("Merge dropped untouched prop: mana = %f, want 312.5", v)
	}
	// The original is unaffected.
	if v, _ := s.GetInt32("m_iCurrentLevel"); v != 6 {
		t.Errorf("Merge mutated the source state: level = %d, want 6", v)
	}
}

// TestNewStateDetaches verifies the copy shares nothing with its source
func TestNewStateDetaches(t *testing.T) {
	src := heroState(5, 1)
	src.Props["m_vecPath"] = []float32{10, 20}

	copied := entity.NewState(1500, src)

	if copied.Tick != 1500 {
		t.Errorf("NewState tick = %d, want 1500", copied.Tick)
	}
	if copied.GetClassName() != "CDOTA_Unit_Hero_Axe" {
		t.Errorf("NewState class = %q, want CDOTA_Unit_Hero_Axe", copied.GetClassName())
	}
	if copied.GetIndex() != 5 || copied.GetSerial() != 1 {
		t.Errorf("NewState handle = %d/%d, want 5/1", copied.GetIndex(), copied.GetSerial())
	}

	src.Props["m_iCurrentLevel"] = int32(30)
	src.Props["m_vecPath"].([]float32)[0] = 99

	if v, _ := copied.GetInt32("m_iCurrentLevel"); v != 6 {
		t.Errorf("Source write leaked into copy: level = %d, want 6", v)
	}
	if copied.Props["m_vecPath"].([]float32)[0] != 10 {
		t.Error("Source slice write leaked into copy")
	}
}

// TestSourceHelpers verifies the zero-defaulting read helpers
func TestSourceHelpers(t *testing.T) {
	s := heroState(5, 1)

	if v := entity.Int32(s, "m_iHealth"); v != 1240 {
		t.Errorf("Int32 = %d, want 1240", v)
	}
	if v := entity.Int32(s, "m_iNoSuchProp"); v != 0 {
		t.Errorf("Int32 of missing prop = %d, want 0", v)
	}
	if v := entity.Str(s, "m_iszUnitName"); v != "npc_dota_hero_axe" {
		t.Errorf("Str = %q, want npc_dota_hero_axe", v)
	}
	if v := entity.TeamNum(s); v != 2 {
		t.Errorf("TeamNum = %d, want 2", v)
	}
}

// TestPosition verifies cell and offset compose into world coordinates
func TestPosition(t *testing.T) {
	s := heroState(5, 1)

	x, y, z := entity.Position(s)
	if x != 192*128+64-16384 {
		t.Errorf("X = %f, want %f", x, float32(192*128+64-16384))
	}
	if y != 128*128+0-16384 {
		t.Errorf("Y = %f, want %f", y, float32(128*128-16384))
	}
	// No cell Z props present.
	if z != 0 {
		t.Errorf("Z = %f, want 0", z)
	}
}

// TestVecSlot verifies indexed vector property naming
func TestVecSlot(t *testing.T) {
	if got := entity.VecSlot("m_vecAbilities", 3); got != "m_vecAbilities.0003" {
		t.Errorf("VecSlot = %q, want m_vecAbilities.0003", got)
	}
	if got := entity.VecSlot("m_vecPlayerTeamData", 0); got != "m_vecPlayerTeamData.0000" {
		t.Errorf("VecSlot = %q, want m_vecPlayerTeamData.0000", got)
	}
}
