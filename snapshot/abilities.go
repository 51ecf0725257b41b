package snapshot

import (
	"sort"
	"strings"

	"demoscope/entity"
)

// abilitySlots is the widest ability vector a hero carries.
const abilitySlots = 24

// ultimateSlot is where the ultimate normally sits in m_vecAbilities.
const ultimateSlot = 5

// sharedAbilityFragments name map-wide abilities that occupy hero slots
// but belong to no hero kit (outposts, portals, lotus lamps, plus toys).
var sharedAbilityFragments = []string{
	"Capture",
	"Portal_Warp",
	"Lamp_Use",
	"Plus_HighFive",
	"Plus_GuildBanner",
}

// extractAbilities resolves the hero's ability vector against the pool.
// HasUltimate is always computed; the full ability and talent lists only
// when withList is set.
func extractAbilities(pool entity.Pool, heroSrc entity.PropSource, hero *Hero, withList bool) {
	talentSlots := make([]int, 0, 8)
	talentLevels := make(map[int]int32, 8)
	talentNames := make(map[int]string, 8)

	for slot := 0; slot < abilitySlots; slot++ {
		raw := entity.Uint64(heroSrc, entity.VecSlot("m_vecAbilities", slot))
		if !entity.RawIsSet(raw) {
			continue
		}
		abilitySrc, ok := pool.ByIndex(entity.IndexOfRaw(raw))
		if !ok {
			continue
		}

		name := abilitySrc.GetClassName()
		level := entity.Int32(abilitySrc, "m_iLevel")

		if slot == ultimateSlot && level > 0 {
			hero.HasUltimate = true
		}
		if !withList {
			if hero.HasUltimate {
				return
			}
			continue
		}

		// Talents ride the same vector; split them out by name.
		if strings.Contains(name, "Special_Bonus") {
			talentSlots = append(talentSlots, slot)
			talentLevels[slot] = level
			talentNames[slot] = name
			continue
		}

		if entity.Bool(abilitySrc, "m_bHidden") && level == 0 {
			continue
		}
		if isSharedAbility(name) {
			continue
		}

		hero.Abilities = append(hero.Abilities, Ability{
			Slot:        slot,
			Name:        name,
			Level:       int(level),
			Cooldown:    entity.Float32(abilitySrc, "m_fCooldown"),
			MaxCooldown: entity.Float32(abilitySrc, "m_flCooldownLength"),
			ManaCost:    int(entity.Int32(abilitySrc, "m_iManaCost")),
			Charges:     int(entity.Int32(abilitySrc, "m_nAbilityCurrentCharges")),
			IsUltimate:  slot == ultimateSlot,
		})
	}

	if !withList {
		return
	}

	// Talents pair up left/right per tier in ascending slot order.
	sort.Ints(talentSlots)
	tiers := []int{10, 15, 20, 25}
	for i := 0; i < len(talentSlots) && i/2 < len(tiers); i += 2 {
		tier := tiers[i/2]
		left := talentSlots[i]
		if talentLevels[left] > 0 {
			hero.Talents = append(hero.Talents, Talent{
				Tier: tier, Slot: left, IsLeft: true, Name: talentNames[left],
			})
		}
		if i+1 < len(talentSlots) {
			right := talentSlots[i+1]
			if talentLevels[right] > 0 {
				hero.Talents = append(hero.Talents, Talent{
					Tier: tier, Slot: right, IsLeft: false, Name: talentNames[right],
				})
			}
		}
	}
}

func isSharedAbility(name string) bool {
	for _, fragment := range sharedAbilityFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}
