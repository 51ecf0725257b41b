package combatlog

import (
	"sort"
	"strings"

	"demoscope/entity"
	"demoscope/keyframe"
)

// Enricher backfills hero levels onto combat-log entries by joining them
// against entity state at matching ticks. It learns the name-to-handle
// mapping and per-hero level timelines incrementally from entity updates
// during the pass; the join itself runs after the pass, reading only
// state stamped at or before each event's tick.
type Enricher struct {
	candidates map[string][]candidate
	timelines  map[entity.Handle][]levelPoint
	index      *keyframe.Index
	unresolved uint64
}

type candidate struct {
	handle   entity.Handle
	illusion bool
	team     int32
}

type levelPoint struct {
	tick  uint32
	level int32
}

// NewEnricher returns an empty enricher.
func NewEnricher() *Enricher {
	return &Enricher{
		candidates: make(map[string][]candidate),
		timelines:  make(map[entity.Handle][]levelPoint),
	}
}

// SetIndex adds a checkpoint index as a fallback level source for handles
// whose live timeline never covered an event's tick.
func (en *Enricher) SetIndex(ix *keyframe.Index) { en.index = ix }

// Observe feeds one hero entity update into the enricher's tables. The
// caller filters to hero-class entities.
func (en *Enricher) Observe(tick uint32, src entity.PropSource) {
	h := entity.Handle{Index: src.GetIndex(), Serial: src.GetSerial()}

	name := entity.Str(src, "m_iszUnitName")
	if name == "" {
		name = entity.UnitNameFromClass(src.GetClassName())
	}
	if name == "" {
		return
	}

	illusion := entity.Bool(src, "m_bIsIllusion") ||
		entity.RawIsSet(entity.Uint64(src, "m_hReplicatingOtherHeroModel"))

	known := false
	for i, c := range en.candidates[name] {
		if c.handle == h {
			known = true
			// Illusion flags can arrive after the create.
			en.candidates[name][i].illusion = illusion
			if team := entity.TeamNum(src); team > 0 {
				en.candidates[name][i].team = team
			}
			break
		}
	}
	if !known {
		en.candidates[name] = append(en.candidates[name], candidate{
			handle:   h,
			illusion: illusion,
			team:     entity.TeamNum(src),
		})
	}

	if level, ok := src.GetInt32("m_iCurrentLevel"); ok && level > 0 {
		tl := en.timelines[h]
		if n := len(tl); n > 0 && tl[n-1].tick == tick {
			tl[n-1].level = level
		} else if n == 0 || tl[n-1].level != level {
			tl = append(tl, levelPoint{tick: tick, level: level})
		}
		en.timelines[h] = tl
	}
}

// LevelAt resolves a unit name to its hero level as of the given tick.
// Candidates matching the illusion flag and team are preferred; ties go
// to the lowest handle so repeated runs agree.
func (en *Enricher) LevelAt(name string, tick uint32, wantIllusion bool, team int32) (int32, bool) {
	all := en.candidates[name]
	if len(all) == 0 {
		return 0, false
	}

	ranked := make([]candidate, len(all))
	copy(ranked, all)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ra, rb := rankCandidate(a, wantIllusion, team), rankCandidate(b, wantIllusion, team); ra != rb {
			return ra < rb
		}
		return a.handle.Index < b.handle.Index
	})

	for _, c := range ranked {
		if level, ok := en.levelFromTimeline(c.handle, tick); ok {
			return level, true
		}
		if level, ok := en.levelFromIndex(c.handle, tick); ok {
			return level, true
		}
	}
	return 0, false
}

// rankCandidate orders candidates: exact illusion+team match first, then
// illusion match, then the rest.
func rankCandidate(c candidate, wantIllusion bool, team int32) int {
	switch {
	case c.illusion == wantIllusion && (team == 0 || c.team == 0 || c.team == team):
		return 0
	case c.illusion == wantIllusion:
		return 1
	default:
		return 2
	}
}

// levelFromTimeline returns the last level recorded at or before tick.
func (en *Enricher) levelFromTimeline(h entity.Handle, tick uint32) (int32, bool) {
	tl := en.timelines[h]
	if len(tl) == 0 {
		return 0, false
	}
	i := sort.Search(len(tl), func(i int) bool { return tl[i].tick > tick })
	if i == 0 {
		return 0, false
	}
	return tl[i-1].level, true
}

// levelFromIndex reads the level out of the nearest checkpoint at or
// before tick. Joining against a later checkpoint would read state the
// event had not caused yet.
func (en *Enricher) levelFromIndex(h entity.Handle, tick uint32) (int32, bool) {
	if en.index == nil {
		return 0, false
	}
	cp, err := en.index.ResolveBefore(tick)
	if err != nil {
		return 0, false
	}
	st, ok := cp.State[h]
	if !ok {
		return 0, false
	}
	level, ok := st.GetInt32("m_iCurrentLevel")
	return level, ok && level > 0
}

// Enrich fills the hero-level fields of one entry in place. Participants
// that cannot be resolved keep level 0 and the entry survives; attempted
// resolutions that miss are counted.
func (en *Enricher) Enrich(e *Entry) {
	if e.AttackerHeroLevel == 0 && wantsLevel(e.IsAttackerHero, e.AttackerName) {
		if level, ok := en.LevelAt(e.AttackerName, e.Tick, e.IsAttackerIllusion, e.AttackerTeam); ok {
			e.AttackerHeroLevel = level
		} else {
			en.unresolved++
		}
	}
	if e.TargetHeroLevel == 0 && wantsLevel(e.IsTargetHero, e.TargetName) {
		if level, ok := en.LevelAt(e.TargetName, e.Tick, e.IsTargetIllusion, e.TargetTeam); ok {
			e.TargetHeroLevel = level
		} else {
			en.unresolved++
		}
	}
}

// wantsLevel reports whether a participant refers to a hero at all; only
// those resolutions are attempted, so summons and buildings never count
// as misses.
func wantsLevel(heroFlag bool, name string) bool {
	return heroFlag || strings.HasPrefix(name, "npc_dota_hero_")
}

// Unresolved returns how many attempted level resolutions missed.
func (en *Enricher) Unresolved() uint64 { return en.unresolved }

// TrackedHeroes returns how many distinct unit names have candidates.
func (en *Enricher) TrackedHeroes() int { return len(en.candidates) }
