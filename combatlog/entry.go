// Package combatlog turns raw combat-log messages into typed entries and
// enriches them with entity state joined at matching ticks.
//
// Name indices in the wire format point into the CombatLogNames string
// table, which keeps growing during the pass, so entries hold the raw
// message until the pass ends and names resolve in a final sweep.
package combatlog

import (
	"fmt"

	"github.com/dotabuff/manta/dota"
)

// Resolver looks up CombatLogNames string-table entries. The parser
// satisfies it after the pass; tests satisfy it with a map.
type Resolver interface {
	LookupName(idx uint32) (string, bool)
}

// ResolverFunc adapts a lookup function to the Resolver interface.
type ResolverFunc func(idx uint32) (string, bool)

// LookupName calls fn.
func (fn ResolverFunc) LookupName(idx uint32) (string, bool) { return fn(idx) }

// PlaceholderName is the fallback for unresolvable name indices.
func PlaceholderName(idx uint32) string {
	return fmt.Sprintf("unknown_%d", idx)
}

// Entry is one fully resolved combat-log event. Tick is the decode
// position the message arrived at and is the ground truth for ordering;
// GameTime is derived after the pass once the horn anchor is known.
type Entry struct {
	Tick     uint32 `json:"tick"`
	NetTick  uint32 `json:"net_tick"`
	Type     int32  `json:"type"`
	TypeName string `json:"type_name"`

	TargetName       string `json:"target_name"`
	TargetSourceName string `json:"target_source_name"`
	AttackerName     string `json:"attacker_name"`
	DamageSourceName string `json:"damage_source_name"`
	InflictorName    string `json:"inflictor_name"`

	IsAttackerIllusion bool `json:"is_attacker_illusion"`
	IsAttackerHero     bool `json:"is_attacker_hero"`
	IsTargetIllusion   bool `json:"is_target_illusion"`
	IsTargetHero       bool `json:"is_target_hero"`
	IsVisibleRadiant   bool `json:"is_visible_radiant"`
	IsVisibleDire      bool `json:"is_visible_dire"`

	Value        int32   `json:"value"`
	ValueName    string  `json:"value_name,omitempty"`
	Health       int32   `json:"health"`
	Timestamp    float32 `json:"timestamp"`
	TimestampRaw float32 `json:"timestamp_raw"`
	// GameTime is seconds from the horn; the raw timestamp when the
	// anchor never resolved.
	GameTime float32 `json:"game_time"`

	StunDuration       float32 `json:"stun_duration"`
	SlowDuration       float32 `json:"slow_duration"`
	IsAbilityToggleOn  bool    `json:"is_ability_toggle_on"`
	IsAbilityToggleOff bool    `json:"is_ability_toggle_off"`
	AbilityLevel       int32   `json:"ability_level"`
	XP                 int32   `json:"xp"`
	Gold               int32   `json:"gold"`
	LastHits           int32   `json:"last_hits"`
	AttackerTeam       int32   `json:"attacker_team"`
	TargetTeam         int32   `json:"target_team"`
	LocationX          float32 `json:"location_x"`
	LocationY          float32 `json:"location_y"`

	AssistPlayer0 int32   `json:"assist_player0"`
	AssistPlayer1 int32   `json:"assist_player1"`
	AssistPlayer2 int32   `json:"assist_player2"`
	AssistPlayer3 int32   `json:"assist_player3"`
	AssistPlayers []int32 `json:"assist_players,omitempty"`

	DamageType     int32 `json:"damage_type"`
	DamageCategory int32 `json:"damage_category"`

	IsTargetBuilding  bool    `json:"is_target_building"`
	IsUltimateAbility bool    `json:"is_ultimate_ability"`
	IsHealSave        bool    `json:"is_heal_save"`
	TargetIsSelf      bool    `json:"target_is_self"`
	ModifierDuration  float32 `json:"modifier_duration"`
	StackCount        int32   `json:"stack_count"`

	HiddenModifier       bool `json:"hidden_modifier"`
	InvisibilityModifier bool `json:"invisibility_modifier"`

	// AttackerHeroLevel and TargetHeroLevel are never populated on the
	// wire; the enricher backfills them from tracked entity state. 0
	// means the participant could not be resolved.
	AttackerHeroLevel int32 `json:"attacker_hero_level"`
	TargetHeroLevel   int32 `json:"target_hero_level"`

	XPM                      int32   `json:"xpm"`
	GPM                      int32   `json:"gpm"`
	EventLocation            int32   `json:"event_location"`
	Networth                 int32   `json:"networth"`
	ObsWardsPlaced           int32   `json:"obs_wards_placed"`
	NeutralCampType          int32   `json:"neutral_camp_type"`
	NeutralCampTeam          int32   `json:"neutral_camp_team"`
	RuneType                 int32   `json:"rune_type"`
	BuildingType             int32   `json:"building_type"`
	ModifierElapsedDuration  float32 `json:"modifier_elapsed_duration"`
	SilenceModifier          bool    `json:"silence_modifier"`
	HealFromLifesteal        bool    `json:"heal_from_lifesteal"`
	ModifierPurged           bool    `json:"modifier_purged"`
	ModifierPurgeAbility     int32   `json:"modifier_purge_ability"`
	ModifierPurgeAbilityName string  `json:"modifier_purge_ability_name,omitempty"`
	ModifierPurgeNpc         int32   `json:"modifier_purge_npc"`
	ModifierPurgeNpcName     string  `json:"modifier_purge_npc_name,omitempty"`
	RootModifier             bool    `json:"root_modifier"`
	AuraModifier             bool    `json:"aura_modifier"`
	ArmorDebuffModifier      bool    `json:"armor_debuff_modifier"`
	NoPhysicalDamageModifier bool    `json:"no_physical_damage_modifier"`
	ModifierAbility          int32   `json:"modifier_ability"`
	ModifierAbilityName      string  `json:"modifier_ability_name,omitempty"`
	ModifierHidden           bool    `json:"modifier_hidden"`
	MotionControllerModifier bool    `json:"motion_controller_modifier"`
	SpellEvaded              bool    `json:"spell_evaded"`
	LongRangeKill            bool    `json:"long_range_kill"`
	TotalUnitDeathCount      int32   `json:"total_unit_death_count"`
	WillReincarnate          bool    `json:"will_reincarnate"`
	InflictorIsStolenAbility bool    `json:"inflictor_is_stolen_ability"`
	SpellGeneratedAttack     bool    `json:"spell_generated_attack"`
	UsesCharges              bool    `json:"uses_charges"`
	AtNightTime              bool    `json:"at_night_time"`
	AttackerHasScepter       bool    `json:"attacker_has_scepter"`
	RegeneratedHealth        float32 `json:"regenerated_health"`
	KillEaterEvent           int32   `json:"kill_eater_event"`
	UnitStatusLabel          int32   `json:"unit_status_label"`
	TrackedStatId            int32   `json:"tracked_stat_id"`
}

// FromMessage resolves one raw combat-log message into an Entry. The
// resolver must be the post-pass name table; resolving mid-pass would
// miss names registered later.
func FromMessage(m *dota.CMsgDOTACombatLogEntry, tick, netTick uint32, names Resolver) Entry {
	entryType := m.GetType()

	// The five primary participants always carry a name index; a miss
	// gets a stable placeholder so the entry survives.
	resolve := func(idx uint32) string {
		if name, ok := names.LookupName(idx); ok {
			return name
		}
		return PlaceholderName(idx)
	}
	// Secondary indices are best-effort and stay empty on a miss.
	tryResolve := func(idx uint32) string {
		name, _ := names.LookupName(idx)
		return name
	}

	assistPlayers := make([]int32, len(m.GetAssistPlayers()))
	copy(assistPlayers, m.GetAssistPlayers())

	// Purchase and item rows overload value as a name index; for other
	// types the lookup simply misses.
	valueName := tryResolve(m.GetValue())

	modifierAbilityName := ""
	if v := m.GetModifierAbility(); v > 0 {
		modifierAbilityName = tryResolve(v)
	}
	modifierPurgeAbilityName := ""
	if v := m.GetModifierPurgeAbility(); v > 0 {
		modifierPurgeAbilityName = tryResolve(v)
	}
	modifierPurgeNpcName := ""
	if v := m.GetModifierPurgeNpc(); v > 0 {
		modifierPurgeNpcName = tryResolve(v)
	}

	return Entry{
		Tick:                     tick,
		NetTick:                  netTick,
		Type:                     int32(entryType),
		TypeName:                 dota.DOTA_COMBATLOG_TYPES_name[int32(entryType)],
		TargetName:               resolve(m.GetTargetName()),
		TargetSourceName:         resolve(m.GetTargetSourceName()),
		AttackerName:             resolve(m.GetAttackerName()),
		DamageSourceName:         resolve(m.GetDamageSourceName()),
		InflictorName:            resolve(m.GetInflictorName()),
		IsAttackerIllusion:       m.GetIsAttackerIllusion(),
		IsAttackerHero:           m.GetIsAttackerHero(),
		IsTargetIllusion:         m.GetIsTargetIllusion(),
		IsTargetHero:             m.GetIsTargetHero(),
		IsVisibleRadiant:         m.GetIsVisibleRadiant(),
		IsVisibleDire:            m.GetIsVisibleDire(),
		Value:                    int32(m.GetValue()),
		ValueName:                valueName,
		Health:                   m.GetHealth(),
		Timestamp:                m.GetTimestamp(),
		TimestampRaw:             m.GetTimestampRaw(),
		StunDuration:             m.GetStunDuration(),
		SlowDuration:             m.GetSlowDuration(),
		IsAbilityToggleOn:        m.GetIsAbilityToggleOn(),
		IsAbilityToggleOff:       m.GetIsAbilityToggleOff(),
		AbilityLevel:             int32(m.GetAbilityLevel()),
		XP:                       int32(m.GetXpReason()),
		Gold:                     int32(m.GetGoldReason()),
		LastHits:                 int32(m.GetLastHits()),
		AttackerTeam:             int32(m.GetAttackerTeam()),
		TargetTeam:               int32(m.GetTargetTeam()),
		LocationX:                m.GetLocationX(),
		LocationY:                m.GetLocationY(),
		AssistPlayer0:            int32(m.GetAssistPlayer0()),
		AssistPlayer1:            int32(m.GetAssistPlayer1()),
		AssistPlayer2:            int32(m.GetAssistPlayer2()),
		AssistPlayer3:            int32(m.GetAssistPlayer3()),
		AssistPlayers:            assistPlayers,
		DamageType:               int32(m.GetDamageType()),
		DamageCategory:           int32(m.GetDamageCategory()),
		IsTargetBuilding:         m.GetIsTargetBuilding(),
		IsUltimateAbility:        m.GetIsUltimateAbility(),
		IsHealSave:               m.GetIsHealSave(),
		TargetIsSelf:             m.GetTargetIsSelf(),
		ModifierDuration:         m.GetModifierDuration(),
		StackCount:               int32(m.GetStackCount()),
		HiddenModifier:           m.GetHiddenModifier(),
		InvisibilityModifier:     m.GetInvisibilityModifier(),
		AttackerHeroLevel:        int32(m.GetAttackerHeroLevel()),
		TargetHeroLevel:          int32(m.GetTargetHeroLevel()),
		XPM:                      int32(m.GetXpm()),
		GPM:                      int32(m.GetGpm()),
		EventLocation:            int32(m.GetEventLocation()),
		Networth:                 int32(m.GetNetworth()),
		ObsWardsPlaced:           int32(m.GetObsWardsPlaced()),
		NeutralCampType:          int32(m.GetNeutralCampType()),
		NeutralCampTeam:          int32(m.GetNeutralCampTeam()),
		RuneType:                 int32(m.GetRuneType()),
		BuildingType:             int32(m.GetBuildingType()),
		ModifierElapsedDuration:  m.GetModifierElapsedDuration(),
		SilenceModifier:          m.GetSilenceModifier(),
		HealFromLifesteal:        m.GetHealFromLifesteal(),
		ModifierPurged:           m.GetModifierPurged(),
		ModifierPurgeAbility:     int32(m.GetModifierPurgeAbility()),
		ModifierPurgeAbilityName: modifierPurgeAbilityName,
		ModifierPurgeNpc:         int32(m.GetModifierPurgeNpc()),
		ModifierPurgeNpcName:     modifierPurgeNpcName,
		RootModifier:             m.GetRootModifier(),
		AuraModifier:             m.GetAuraModifier(),
		ArmorDebuffModifier:      m.GetArmorDebuffModifier(),
		NoPhysicalDamageModifier: m.GetNoPhysicalDamageModifier(),
		ModifierAbility:          int32(m.GetModifierAbility()),
		ModifierAbilityName:      modifierAbilityName,
		ModifierHidden:           m.GetModifierHidden(),
		MotionControllerModifier: m.GetMotionControllerModifier(),
		SpellEvaded:              m.GetSpellEvaded(),
		LongRangeKill:            m.GetLongRangeKill(),
		TotalUnitDeathCount:      int32(m.GetTotalUnitDeathCount()),
		WillReincarnate:          m.GetWillReincarnate(),
		InflictorIsStolenAbility: m.GetInflictorIsStolenAbility(),
		SpellGeneratedAttack:     m.GetSpellGeneratedAttack(),
		UsesCharges:              m.GetUsesCharges(),
		AtNightTime:              m.GetAtNightTime(),
		AttackerHasScepter:       m.GetAttackerHasScepter(),
		RegeneratedHealth:        m.GetRegeneratedHealth(),
		KillEaterEvent:           int32(m.GetKillEaterEvent()),
		UnitStatusLabel:          int32(m.GetUnitStatusLabel()),
		TrackedStatId:            int32(m.GetTrackedStatId()),
	}
}
