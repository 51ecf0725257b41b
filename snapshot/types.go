// Package snapshot materializes typed views from raw entity state. Views
// are plain value types detached from the decoder; missing numeric
// properties read as 0 and missing flags as false, never as errors.
package snapshot

import "demoscope/entity"

// Team numbers as they appear in m_iTeamNum.
const (
	TeamRadiant int32 = 2
	TeamDire    int32 = 3
)

// StateView is the typed projection of one captured entity table.
type StateView struct {
	// Tick is the checkpoint tick the view was materialized from.
	Tick uint32 `json:"tick"`
	// RequestedTick is the tick the caller asked for; Tick is the first
	// checkpoint at or after it.
	RequestedTick uint32 `json:"requested_tick"`
	// GameTime is seconds from the horn, tick-relative when the anchor
	// never resolved.
	GameTime float32 `json:"game_time"`
	// GameTimeKnown is false when the horn was never observed and
	// GameTime is tick-relative.
	GameTimeKnown bool `json:"game_time_known"`

	Heroes    []Hero      `json:"heroes"`
	Teams     []TeamState `json:"teams,omitempty"`
	Creeps    []Creep     `json:"creeps,omitempty"`
	Buildings []Building  `json:"buildings,omitempty"`
}

// Hero is the typed view of one hero unit plus the per-player bookkeeping
// rows that describe it.
type Hero struct {
	Handle   entity.Handle `json:"handle"`
	PlayerID int           `json:"player_id"`
	HeroID   int           `json:"hero_id"`
	// UnitName is the npc_dota_hero_* name derived from the entity class.
	UnitName  string `json:"unit_name"`
	ClassName string `json:"class_name"`
	Team      int32  `json:"team"`

	Level     int     `json:"level"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"max_health"`
	Mana      float32 `json:"mana"`
	MaxMana   float32 `json:"max_mana"`
	IsAlive   bool    `json:"is_alive"`

	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`

	Kills        int `json:"kills"`
	Deaths       int `json:"deaths"`
	Assists      int `json:"assists"`
	LastHits     int `json:"last_hits"`
	Denies       int `json:"denies"`
	Gold         int `json:"gold"`
	NetWorth     int `json:"net_worth"`
	XP           int `json:"xp"`
	CampsStacked int `json:"camps_stacked"`

	Strength        float32 `json:"strength"`
	Agility         float32 `json:"agility"`
	Intellect       float32 `json:"intellect"`
	Armor           float32 `json:"armor"`
	MagicResistance float32 `json:"magic_resistance"`
	DamageMin       int     `json:"damage_min"`
	DamageMax       int     `json:"damage_max"`
	AttackRange     int     `json:"attack_range"`
	AbilityPoints   int     `json:"ability_points"`

	IsIllusion bool `json:"is_illusion,omitempty"`
	IsClone    bool `json:"is_clone,omitempty"`
	// HasUltimate reports a leveled ultimate in the ultimate slot.
	HasUltimate bool `json:"has_ultimate"`

	Abilities []Ability `json:"abilities,omitempty"`
	Talents   []Talent  `json:"talents,omitempty"`
}

// Ability is one leveled ability slot on a hero.
type Ability struct {
	Slot        int     `json:"slot"`
	Name        string  `json:"name"`
	Level       int     `json:"level"`
	Cooldown    float32 `json:"cooldown"`
	MaxCooldown float32 `json:"max_cooldown"`
	ManaCost    int     `json:"mana_cost"`
	Charges     int     `json:"charges"`
	IsUltimate  bool    `json:"is_ultimate"`
}

// Talent is one chosen talent-tree branch.
type Talent struct {
	Tier   int    `json:"tier"`
	Slot   int    `json:"slot"`
	IsLeft bool   `json:"is_left"`
	Name   string `json:"name"`
}

// TeamState is the scoreline of one side.
type TeamState struct {
	TeamID int32 `json:"team_id"`
	Score  int   `json:"score"`
}

// Creep is the typed view of one lane or neutral creep. Only living
// creeps are materialized.
type Creep struct {
	Handle    entity.Handle `json:"handle"`
	ClassName string        `json:"class_name"`
	UnitName  string        `json:"unit_name,omitempty"`
	Team      int32         `json:"team"`
	IsLane    bool          `json:"is_lane"`
	IsNeutral bool          `json:"is_neutral"`
	Health    int           `json:"health"`
	MaxHealth int           `json:"max_health"`
	X         float32       `json:"x"`
	Y         float32       `json:"y"`
}

// Building is the typed view of one standing map structure.
type Building struct {
	Handle    entity.Handle `json:"handle"`
	ClassName string        `json:"class_name"`
	UnitName  string        `json:"unit_name,omitempty"`
	Team      int32         `json:"team"`
	Health    int           `json:"health"`
	MaxHealth int           `json:"max_health"`
	X         float32       `json:"x"`
	Y         float32       `json:"y"`
}
