package combatlog_test

import (
	"testing"

	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"

	"demoscope/combatlog"
)

// mapResolver mimics the post-pass CombatLogNames table.
func mapResolver(names map[uint32]string) combatlog.Resolver {
	return combatlog.ResolverFunc(func(idx uint32) (string, bool) {
		name, ok := names[idx]
		return name, ok
	})
}

// TestFromMessage verifies wire fields project onto the typed entry
func TestFromMessage(t *testing.T) {
	m := &dota.CMsgDOTACombatLogEntry{
		Type:             dota.DOTA_COMBATLOG_TYPES_DOTA_COMBATLOG_DAMAGE.Enum(),
		TargetName:       proto.Uint32(3),
		TargetSourceName: proto.Uint32(3),
		AttackerName:     proto.Uint32(7),
		DamageSourceName: proto.Uint32(7),
		InflictorName:    proto.Uint32(0),
		Value:            proto.Uint32(64),
		Health:           proto.Int32(820),
		Timestamp:        proto.Float32(812.4),
		IsAttackerHero:   proto.Bool(true),
		IsTargetHero:     proto.Bool(true),
		AttackerTeam:     proto.Uint32(2),
		TargetTeam:       proto.Uint32(3),
		AssistPlayers:    []int32{1, 4},
	}

	names := mapResolver(map[uint32]string{
		0: "dota_unknown",
		3: "npc_dota_hero_axe",
		7: "npc_dota_hero_juggernaut",
	})

	e := combatlog.FromMessage(m, 24500, 24498, names)

	if e.Tick != 24500 || e.NetTick != 24498 {
		t.Errorf("Ticks = %d/%d, want 24500/24498", e.Tick, e.NetTick)
	}
	if e.TypeName != "DOTA_COMBATLOG_DAMAGE" {
		t.Errorf("TypeName = %q, want DOTA_COMBATLOG_DAMAGE", e.TypeName)
	}
	if e.TargetName != "npc_dota_hero_axe" {
		t.Errorf("TargetName = %q, want npc_dota_hero_axe", e.TargetName)
	}
	if e.AttackerName != "npc_dota_hero_juggernaut" {
		t.Errorf("AttackerName = %q, want npc_dota_hero_juggernaut", e.AttackerName)
	}
	if e.InflictorName != "dota_unknown" {
		t.Errorf("InflictorName = %q, want dota_unknown", e.InflictorName)
	}
	if e.Value != 64 {
		t.Errorf("Value = %d, want 64", e.Value)
	}
	if e.Health != 820 {
		t.Errorf("Health = %d, want 820", e.Health)
	}
	if e.Timestamp != 812.4 {
		t.Errorf("Timestamp = %f, want 812.4", e.Timestamp)
	}
	if !e.IsAttackerHero || !e.IsTargetHero {
		t.Error("Hero flags should carry over")
	}
	if e.AttackerTeam != 2 || e.TargetTeam != 3 {
		t.Errorf("Teams = %d/%d, want 2/3", e.AttackerTeam, e.TargetTeam)
	}
	if len(e.AssistPlayers) != 2 || e.AssistPlayers[0] != 1 || e.AssistPlayers[1] != 4 {
		t.Errorf("AssistPlayers = %v, want [1 4]", e.AssistPlayers)
	}
}

// TestFromMessagePlaceholders verifies unresolvable indices keep the entry
func TestFromMessagePlaceholders(t *testing.T) {
	m := &dota.CMsgDOTACombatLogEntry{
		Type:         dota.DOTA_COMBATLOG_TYPES_DOTA_COMBATLOG_DEATH.Enum(),
		TargetName:   proto.Uint32(99),
		AttackerName: proto.Uint32(7),
	}

	names := mapResolver(map[uint32]string{
		0: "dota_unknown",
		7: "npc_dota_hero_juggernaut",
	})

	e := combatlog.FromMessage(m, 100, 100, names)

	if e.TargetName != "unknown_99" {
		t.Errorf("Unresolvable target = %q, want unknown_99", e.TargetName)
	}
	if e.AttackerName != "npc_dota_hero_juggernaut" {
		t.Errorf("AttackerName = %q, want npc_dota_hero_juggernaut", e.AttackerName)
	}
	// Secondary lookups stay empty instead of taking a placeholder.
	if e.ValueName != "" {
		t.Errorf("ValueName = %q, want empty", e.ValueName)
	}
}

// TestFromMessageValueName verifies purchase rows resolve value as a name
func TestFromMessageValueName(t *testing.T) {
	m := &dota.CMsgDOTACombatLogEntry{
		Type:         dota.DOTA_COMBATLOG_TYPES_DOTA_COMBATLOG_PURCHASE.Enum(),
		TargetName:   proto.Uint32(3),
		AttackerName: proto.Uint32(3),
		Value:        proto.Uint32(12),
	}

	names := mapResolver(map[uint32]string{
		0:  "dota_unknown",
		3:  "npc_dota_hero_axe",
		12: "item_blink",
	})

	e := combatlog.FromMessage(m, 100, 100, names)

	if e.ValueName != "item_blink" {
		t.Errorf("ValueName = %q, want item_blink", e.ValueName)
	}
	if e.Value != 12 {
		t.Errorf("Value = %d, want 12", e.Value)
	}
}

// TestPlaceholderName verifies the fallback naming
func TestPlaceholderName(t *testing.T) {
	if got := combatlog.PlaceholderName(42); got != "unknown_42" {
		t.Errorf("PlaceholderName(42) = %q, want unknown_42", got)
	}
}
