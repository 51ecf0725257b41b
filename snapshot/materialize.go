package snapshot

import (
	"sort"
	"strings"

	"demoscope/entity"
)

// Options select which view families Materialize builds. Hero rows and
// team scores are always included.
type Options struct {
	// IncludeAbilities adds per-hero ability and talent lists.
	IncludeAbilities bool
	// IncludeCreeps adds living lane and neutral creeps.
	IncludeCreeps bool
	// IncludeBuildings adds standing towers, barracks and ancients.
	IncludeBuildings bool
	// IncludeIllusions adds illusion and clone hero rows.
	IncludeIllusions bool
	// TargetHeroes narrows hero rows to the named npc_dota_hero_* units.
	TargetHeroes []string
}

// DefaultOptions is the full view.
func DefaultOptions() Options {
	return Options{
		IncludeAbilities: true,
		IncludeCreeps:    true,
		IncludeBuildings: true,
		IncludeIllusions: true,
	}
}

// Materialize builds the typed view of one entity pool. The pool may be
// the live table mid-pass or a stored checkpoint; no decoding happens
// here. Output ordering is deterministic: heroes by player then handle,
// everything else by handle.
func Materialize(pool entity.Pool, tick uint32, opts Options) StateView {
	view := StateView{
		Tick:          tick,
		RequestedTick: tick,
		Heroes:        make([]Hero, 0, 10),
	}

	var playerResource, dataRadiant, dataDire entity.PropSource
	heroSources := make([]entity.PropSource, 0, 16)

	pool.Each(func(src entity.PropSource) bool {
		className := src.GetClassName()
		switch {
		case strings.Contains(className, entity.PlayerResourceClass):
			playerResource = src
		case strings.Contains(className, entity.DataRadiantClass):
			dataRadiant = src
		case strings.Contains(className, entity.DataDireClass):
			dataDire = src
		case entity.IsHeroClass(className):
			heroSources = append(heroSources, src)
		}
		return true
	})

	mainHeroes := make(map[int32]bool, 10)

	if playerResource != nil {
		for playerID := 0; playerID < 10; playerID++ {
			// Unpicked slots carry -1.
			heroID := int(entity.Int32(playerResource, entity.VecSlot("m_vecPlayerTeamData", playerID)+".m_nSelectedHeroID"))
			if heroID <= 0 {
				continue
			}

			raw := entity.Uint64(playerResource, entity.VecSlot("m_vecPlayerTeamData", playerID)+".m_hSelectedHero")
			if !entity.RawIsSet(raw) {
				continue
			}
			heroSrc, ok := pool.ByIndex(entity.IndexOfRaw(raw))
			if !ok || !entity.IsHeroClass(heroSrc.GetClassName()) {
				continue
			}
			if len(opts.TargetHeroes) > 0 && !heroMatchesTargets(heroSrc.GetClassName(), opts.TargetHeroes) {
				continue
			}

			hero := extractHero(pool, heroSrc, playerID, heroID, opts.IncludeAbilities)
			applyEconomy(&hero, playerResource, dataRadiant, dataDire, playerID)
			// The hero entity's own level is fresher than the
			// bookkeeping row when both are present.
			if level, ok := heroSrc.GetInt32("m_iCurrentLevel"); ok {
				hero.Level = int(level)
			}
			mainHeroes[heroSrc.GetIndex()] = true
			view.Heroes = append(view.Heroes, hero)
		}
	}

	if opts.IncludeIllusions {
		for _, src := range heroSources {
			if mainHeroes[src.GetIndex()] {
				continue
			}
			if len(opts.TargetHeroes) > 0 && !heroMatchesTargets(src.GetClassName(), opts.TargetHeroes) {
				continue
			}
			playerID := -1
			// NPC player IDs count by twos; fold back to the 0-9 range.
			if pid, ok := src.GetInt32("m_iPlayerID"); ok {
				playerID = int(pid) / 2
			}
			hero := extractHero(pool, src, playerID, 0, false)
			if entity.Bool(src, "m_bIsIllusion") {
				hero.IsIllusion = true
			}
			if rep := entity.Uint64(src, "m_hReplicatingOtherHeroModel"); entity.RawIsSet(rep) {
				hero.IsClone = true
			}
			if !hero.IsIllusion && !hero.IsClone {
				hero.IsClone = true
			}
			view.Heroes = append(view.Heroes, hero)
		}
	}

	sort.Slice(view.Heroes, func(i, j int) bool {
		a, b := view.Heroes[i], view.Heroes[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.Handle.Index < b.Handle.Index
	})

	view.Teams = extractTeams(pool)

	if opts.IncludeCreeps {
		view.Creeps = extractCreeps(pool)
	}
	if opts.IncludeBuildings {
		view.Buildings = extractBuildings(pool)
	}

	return view
}

func heroMatchesTargets(className string, targets []string) bool {
	for _, t := range targets {
		if entity.UnitNameMatchesClass(t, className) {
			return true
		}
	}
	return false
}

// extractHero projects one hero entity into a Hero row. Economy fields
// come from the bookkeeping entities and are filled by applyEconomy.
func extractHero(pool entity.Pool, src entity.PropSource, playerID, heroID int, withAbilities bool) Hero {
	hero := Hero{
		Handle:    entity.Handle{Index: src.GetIndex(), Serial: src.GetSerial()},
		PlayerID:  playerID,
		HeroID:    heroID,
		UnitName:  entity.UnitNameFromClass(src.GetClassName()),
		ClassName: src.GetClassName(),
		IsAlive:   true,
	}

	if playerID >= 0 && playerID < 5 {
		hero.Team = TeamRadiant
	} else if playerID >= 5 {
		hero.Team = TeamDire
	}
	if team := entity.TeamNum(src); team > 0 {
		hero.Team = team
	}

	if level, ok := src.GetInt32("m_iCurrentLevel"); ok {
		hero.Level = int(level)
	}
	if health, ok := src.GetInt32("m_iHealth"); ok {
		hero.Health = int(health)
		hero.IsAlive = health > 0
	}
	hero.MaxHealth = int(entity.Int32(src, "m_iMaxHealth"))
	hero.Mana = entity.Float32(src, "m_flMana")
	hero.MaxMana = entity.Float32(src, "m_flMaxMana")
	hero.AbilityPoints = int(entity.Int32(src, "m_iAbilityPoints"))

	hero.X, hero.Y, hero.Z = entity.Position(src)

	hero.Armor = entity.Float32(src, "m_flPhysicalArmorValue")
	hero.MagicResistance = entity.Float32(src, "m_flMagicalResistanceValue")
	hero.DamageMin = int(entity.Int32(src, "m_iDamageMin"))
	hero.DamageMax = int(entity.Int32(src, "m_iDamageMax"))
	hero.AttackRange = int(entity.Int32(src, "m_iAttackRange"))
	hero.Strength = entity.Float32(src, "m_flStrengthTotal")
	hero.Agility = entity.Float32(src, "m_flAgilityTotal")
	hero.Intellect = entity.Float32(src, "m_flIntellectTotal")

	extractAbilities(pool, src, &hero, withAbilities)

	return hero
}

// applyEconomy fills the per-player bookkeeping stats. Kills, deaths and
// assists live on the player resource; farm and gold live on the per-team
// data entities, indexed by slot within the team.
func applyEconomy(hero *Hero, playerResource, dataRadiant, dataDire entity.PropSource, playerID int) {
	player := entity.VecSlot("m_vecPlayerTeamData", playerID)
	if hero.Level == 0 {
		hero.Level = int(entity.Int32(playerResource, player+".m_iLevel"))
	}
	hero.Kills = int(entity.Int32(playerResource, player+".m_iKills"))
	hero.Deaths = int(entity.Int32(playerResource, player+".m_iDeaths"))
	hero.Assists = int(entity.Int32(playerResource, player+".m_iAssists"))

	var data entity.PropSource
	if hero.Team == TeamRadiant {
		data = dataRadiant
	} else if hero.Team == TeamDire {
		data = dataDire
	}
	if data == nil {
		return
	}
	slot := entity.VecSlot("m_vecDataTeam", playerID%5)
	hero.LastHits = int(entity.Int32(data, slot+".m_iLastHitCount"))
	hero.Denies = int(entity.Int32(data, slot+".m_iDenyCount"))
	hero.NetWorth = int(entity.Int32(data, slot+".m_iNetWorth"))
	hero.Gold = int(entity.Int32(data, slot+".m_iReliableGold")) + int(entity.Int32(data, slot+".m_iUnreliableGold"))
	hero.XP = int(entity.Int32(data, slot+".m_iTotalEarnedXP"))
	hero.CampsStacked = int(entity.Int32(data, slot+".m_iCampsStacked"))
}

func extractTeams(pool entity.Pool) []TeamState {
	teams := make([]TeamState, 0, 2)
	pool.Each(func(src entity.PropSource) bool {
		className := src.GetClassName()
		if !strings.Contains(className, entity.DataRadiantClass) &&
			!strings.Contains(className, entity.DataDireClass) &&
			!strings.Contains(className, "CDOTATeam") {
			return true
		}
		state := TeamState{}
		if strings.Contains(className, "Radiant") {
			state.TeamID = TeamRadiant
		} else if strings.Contains(className, "Dire") {
			state.TeamID = TeamDire
		} else {
			state.TeamID = entity.TeamNum(src)
		}
		state.Score = int(entity.Int32(src, "m_iScore"))
		if state.TeamID > 0 {
			teams = append(teams, state)
		}
		return true
	})
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	// Both bookkeeping and team entities may report the same side; keep
	// the first row per team id.
	n := 0
	for i, t := range teams {
		if i > 0 && t.TeamID == teams[n-1].TeamID {
			continue
		}
		teams[n] = t
		n++
	}
	return teams[:n]
}

func extractCreeps(pool entity.Pool) []Creep {
	creeps := make([]Creep, 0, 100)
	pool.Each(func(src entity.PropSource) bool {
		className := src.GetClassName()
		isLane := strings.Contains(className, entity.LaneCreepClass)
		isNeutral := strings.Contains(className, entity.NeutralCreepClass)
		if !isLane && !isNeutral {
			return true
		}
		health := int(entity.Int32(src, "m_iHealth"))
		if health <= 0 {
			return true
		}
		c := Creep{
			Handle:    entity.Handle{Index: src.GetIndex(), Serial: src.GetSerial()},
			ClassName: className,
			UnitName:  entity.Str(src, "m_iszUnitName"),
			Team:      entity.TeamNum(src),
			IsLane:    isLane,
			IsNeutral: isNeutral,
			Health:    health,
			MaxHealth: int(entity.Int32(src, "m_iMaxHealth")),
		}
		c.X, c.Y, _ = entity.Position(src)
		creeps = append(creeps, c)
		return true
	})
	sort.Slice(creeps, func(i, j int) bool { return creeps[i].Handle.Index < creeps[j].Handle.Index })
	return creeps
}

func extractBuildings(pool entity.Pool) []Building {
	buildings := make([]Building, 0, 64)
	pool.Each(func(src entity.PropSource) bool {
		className := src.GetClassName()
		if !entity.IsBuildingClass(className) {
			return true
		}
		health := int(entity.Int32(src, "m_iHealth"))
		if health <= 0 {
			return true
		}
		b := Building{
			Handle:    entity.Handle{Index: src.GetIndex(), Serial: src.GetSerial()},
			ClassName: className,
			UnitName:  entity.Str(src, "m_iszUnitName"),
			Team:      entity.TeamNum(src),
			Health:    health,
			MaxHealth: int(entity.Int32(src, "m_iMaxHealth")),
		}
		b.X, b.Y, _ = entity.Position(src)
		buildings = append(buildings, b)
		return true
	})
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].Handle.Index < buildings[j].Handle.Index })
	return buildings
}
