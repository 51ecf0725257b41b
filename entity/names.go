package entity

import "strings"

// Class name prefixes for the entity families the views care about.
const (
	HeroClassPrefix     = "CDOTA_Unit_Hero_"
	PlayerResourceClass = "CDOTA_PlayerResource"
	DataRadiantClass    = "CDOTA_DataRadiant"
	DataDireClass       = "CDOTA_DataDire"
	GamerulesClass      = "CDOTAGamerulesProxy"
	LaneCreepClass      = "CDOTA_BaseNPC_Creep_Lane"
	NeutralCreepClass   = "CDOTA_BaseNPC_Creep_Neutral"
)

// IsHeroClass reports whether a class name is a hero unit.
func IsHeroClass(className string) bool {
	return strings.HasPrefix(className, HeroClassPrefix)
}

// IsBuildingClass reports whether a class name is a map structure.
func IsBuildingClass(className string) bool {
	return strings.Contains(className, "CDOTA_BaseNPC_Tower") ||
		strings.Contains(className, "CDOTA_BaseNPC_Barracks") ||
		strings.Contains(className, "CDOTA_BaseNPC_Fort") ||
		strings.Contains(className, "CDOTA_BaseNPC_Building")
}

// UnitNameFromClass converts a hero entity class to its npc_dota_hero_*
// unit name: "CDOTA_Unit_Hero_TrollWarlord" becomes
// "npc_dota_hero_troll_warlord". Classes with embedded underscores
// normalize to single separators ("Shadow_Demon" is not "shadow__demon").
// Returns "" for non-hero classes.
func UnitNameFromClass(className string) string {
	if !strings.HasPrefix(className, HeroClassPrefix) {
		return ""
	}
	name := "npc_dota_hero_" + camelToSnake(strings.TrimPrefix(className, HeroClassPrefix))
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// UnitNameMatchesClass reports whether a npc_dota_hero_* name refers to a
// hero entity class, ignoring case and underscore placement.
func UnitNameMatchesClass(unitName, className string) bool {
	if !strings.HasPrefix(unitName, "npc_dota_hero_") || !strings.HasPrefix(className, HeroClassPrefix) {
		return false
	}
	a := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(unitName, "npc_dota_hero_"), "_", ""))
	b := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(className, HeroClassPrefix), "_", ""))
	return a == b
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
