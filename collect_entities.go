package demoscope

import (
	"github.com/dotabuff/manta"

	"demoscope/internal/config"
	"demoscope/keyframe"
	"demoscope/snapshot"
)

// entitiesCollector materializes typed views of the live state table on
// an interval grid or at explicit target ticks, during the same pass
// that maintains the table.
type entitiesCollector struct {
	cfg  *EntitiesConfig
	plan *keyframe.Plan
	opts snapshot.Options
	st   *CollectorStatus
}

func newEntitiesCollector(cfg *EntitiesConfig, limits config.Limits) *entitiesCollector {
	c := &entitiesCollector{
		cfg: cfg,
		opts: snapshot.Options{
			IncludeAbilities: cfg.IncludeAbilities,
			IncludeCreeps:    cfg.IncludeCreeps,
			IncludeBuildings: cfg.IncludeBuildings,
			IncludeIllusions: cfg.IncludeIllusions,
			TargetHeroes:     cfg.TargetHeroes,
		},
	}
	if len(cfg.TargetTicks) > 0 {
		c.plan = keyframe.NewTargetPlan(cfg.TargetTicks)
	} else {
		interval := cfg.Interval
		if interval == 0 {
			interval = limits.CheckpointInterval
		}
		c.plan = keyframe.NewIntervalPlan(interval)
	}
	return c
}

func (c *entitiesCollector) name() string { return "entities" }

func (c *entitiesCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribeEntity(s.guardEntity(c.name(), func(e *manta.Entity, op manta.EntityOp) {
		tick := s.parser.Tick
		if !s.inRange(tick) {
			return
		}
		if c.plan.Done() || !c.plan.Due(tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxSnapshots) {
			return
		}

		view := snapshot.Materialize(s.table, tick, c.opts)
		view.GameTime, view.GameTimeKnown = s.gameTimeAt(tick)
		s.result.Snapshots = append(s.result.Snapshots, view)
		c.st.Items++
	}))
}

// finalize repairs game times for snapshots taken before the anchor
// resolved. Raw ticks are ground truth, so the repair is exact.
func (c *entitiesCollector) finalize(s *session) {
	if !s.anchor.Known() {
		return
	}
	for i := range s.result.Snapshots {
		view := &s.result.Snapshots[i]
		if !view.GameTimeKnown {
			view.GameTime, view.GameTimeKnown = s.gameTimeAt(view.Tick)
		}
	}
}

func (c *entitiesCollector) done() bool {
	if c.plan.Done() {
		return true
	}
	return c.cfg.MaxSnapshots > 0 && c.st != nil && c.st.Items >= c.cfg.MaxSnapshots
}
