package demoscope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"

	"demoscope/entity"
)

// resolveUnitName looks a raw handle up in the state table and names
// the entity behind it.
func (s *session) resolveUnitName(raw int64) (string, error) {
	packed := uint64(uint32(raw))
	if !entity.RawIsSet(packed) {
		return "", fmt.Errorf("%w: handle %d is unset", ErrUnresolvedReference, raw)
	}
	src, ok := s.table.ByIndex(entity.IndexOfRaw(packed))
	if !ok {
		return "", fmt.Errorf("%w: no entity at index %d", ErrUnresolvedReference, entity.IndexOfRaw(packed))
	}
	if name, ok := src.GetString("m_iszUnitName"); ok && name != "" {
		return name, nil
	}
	if name := entity.UnitNameFromClass(src.GetClassName()); name != "" {
		return name, nil
	}
	return src.GetClassName(), nil
}

// attacksCollector keeps attack projectile launches with both endpoints
// named from the state table at launch time.
type attacksCollector struct {
	cfg *AttacksConfig
	st  *CollectorStatus
}

func (c *attacksCollector) name() string { return "attacks" }

func (c *attacksCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribe("CDOTAUserMsg_TE_Projectile", s.guard(c.name(), func(m proto.Message) {
		p, ok := m.(*dota.CDOTAUserMsg_TE_Projectile)
		if !ok || !p.GetIsAttack() {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxEvents) {
			return
		}

		sourceHandle := int64(p.GetSource())
		targetHandle := int64(p.GetTarget())
		ev := AttackEvent{
			Tick:            s.parser.Tick,
			NetTick:         s.parser.NetTick,
			SourceHandle:    sourceHandle,
			TargetHandle:    targetHandle,
			SourceIndex:     entity.IndexOfRaw(uint64(uint32(sourceHandle))),
			TargetIndex:     entity.IndexOfRaw(uint64(uint32(targetHandle))),
			ProjectileSpeed: p.GetMoveSpeed(),
			Dodgeable:       p.GetDodgeable(),
			LaunchTick:      p.GetLaunchTick(),
		}
		ev.GameTime, ev.GameTimeKnown = s.gameTimeAt(ev.Tick)

		var err error
		if ev.SourceName, err = s.resolveUnitName(sourceHandle); errors.Is(err, ErrUnresolvedReference) {
			c.st.UnresolvedReferences++
		}
		if ev.TargetName, err = s.resolveUnitName(targetHandle); errors.Is(err, ErrUnresolvedReference) {
			c.st.UnresolvedReferences++
		}

		s.result.Attacks = append(s.result.Attacks, ev)
		c.st.Items++
	}))
}

// finalize repairs game times for attacks seen before the anchor
// resolved.
func (c *attacksCollector) finalize(s *session) {
	if !s.anchor.Known() {
		return
	}
	for i := range s.result.Attacks {
		ev := &s.result.Attacks[i]
		if !ev.GameTimeKnown {
			ev.GameTime, ev.GameTimeKnown = s.gameTimeAt(ev.Tick)
		}
	}
}

func (c *attacksCollector) done() bool {
	return c.cfg.MaxEvents > 0 && c.st != nil && c.st.Items >= c.cfg.MaxEvents
}

// deathsCollector watches life state transitions on the live entity
// set. A unit dying and a unit leaving the visible set are different
// things; only the former is recorded.
type deathsCollector struct {
	cfg       *DeathsConfig
	lifeState map[int32]uint32
	st        *CollectorStatus
}

func newDeathsCollector(cfg *DeathsConfig) *deathsCollector {
	return &deathsCollector{
		cfg:       cfg,
		lifeState: make(map[int32]uint32),
	}
}

func (c *deathsCollector) name() string { return "deaths" }

func (c *deathsCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribeEntity(s.guardEntity(c.name(), func(e *manta.Entity, op manta.EntityOp) {
		idx := e.GetIndex()
		if op&manta.EntityOpDeleted != 0 {
			delete(c.lifeState, idx)
			return
		}

		life, ok := e.GetUint32("m_lifeState")
		if !ok {
			if v, ok2 := e.GetInt32("m_lifeState"); ok2 {
				life = uint32(v)
			} else {
				return
			}
		}
		prev, seen := c.lifeState[idx]
		c.lifeState[idx] = life
		if !seen || prev != 0 || life == 0 {
			return
		}

		className := e.GetClassName()
		if c.cfg.ClassFilter != "" && !strings.Contains(className, c.cfg.ClassFilter) {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxDeaths) {
			return
		}

		unitName := entity.Str(e, "m_iszUnitName")
		if unitName == "" {
			unitName = entity.UnitNameFromClass(className)
		}
		x, y, _ := entity.Position(e)
		death := EntityDeath{
			Tick:      s.parser.Tick,
			Handle:    entity.Handle{Index: idx, Serial: e.GetSerial()},
			ClassName: className,
			UnitName:  unitName,
			Team:      entity.TeamNum(e),
			X:         x,
			Y:         y,
			IsHero:    entity.IsHeroClass(className),
		}
		death.GameTime, death.GameTimeKnown = s.gameTimeAt(death.Tick)

		s.result.Deaths = append(s.result.Deaths, death)
		c.st.Items++
	}))
}

// finalize repairs game times for deaths seen before the anchor
// resolved.
func (c *deathsCollector) finalize(s *session) {
	if !s.anchor.Known() {
		return
	}
	for i := range s.result.Deaths {
		d := &s.result.Deaths[i]
		if !d.GameTimeKnown {
			d.GameTime, d.GameTimeKnown = s.gameTimeAt(d.Tick)
		}
	}
}

func (c *deathsCollector) done() bool {
	return c.cfg.MaxDeaths > 0 && c.st != nil && c.st.Items >= c.cfg.MaxDeaths
}
