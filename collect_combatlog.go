package demoscope

import (
	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"

	"demoscope/combatlog"
	"demoscope/internal/metrics"
)

// combatLogCollector retains raw combat log messages during the pass
// and resolves them afterwards. Resolving mid-pass would miss names the
// string table registers later and hero levels the entities reach in
// between, so the join runs over raw ticks once the stream is done.
type combatLogCollector struct {
	cfg      *CombatLogConfig
	types    map[string]bool
	st       *CollectorStatus
	retained []retainedLogEntry
}

type retainedLogEntry struct {
	m       *dota.CMsgDOTACombatLogEntry
	tick    uint32
	netTick uint32
}

func newCombatLogCollector(cfg *CombatLogConfig) *combatLogCollector {
	c := &combatLogCollector{cfg: cfg}
	if len(cfg.Types) > 0 {
		c.types = make(map[string]bool, len(cfg.Types))
		for _, t := range cfg.Types {
			c.types[t] = true
		}
	}
	return c
}

func (c *combatLogCollector) name() string { return "combat_log" }

func (c *combatLogCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribe("CMsgDOTACombatLogEntry", s.guard(c.name(), func(m proto.Message) {
		entry, ok := m.(*dota.CMsgDOTACombatLogEntry)
		if !ok {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if c.cfg.HeroesOnly && !entry.GetIsAttackerHero() && !entry.GetIsTargetHero() {
			return
		}
		if c.types != nil && !c.types[dota.DOTA_COMBATLOG_TYPES_name[int32(entry.GetType())]] {
			return
		}
		if s.capped(c.name(), len(c.retained), c.cfg.MaxEntries) {
			return
		}
		// The decoder reuses message buffers between callbacks.
		c.retained = append(c.retained, retainedLogEntry{
			m:       proto.Clone(entry).(*dota.CMsgDOTACombatLogEntry),
			tick:    s.parser.Tick,
			netTick: s.parser.NetTick,
		})
	}))
}

// finalize resolves names against the completed string table, repairs
// game times and backfills hero levels from tracked entity state.
func (c *combatLogCollector) finalize(s *session) {
	resolver := combatlog.ResolverFunc(func(idx uint32) (string, bool) {
		return s.parser.LookupStringByIndex("CombatLogNames", int32(idx))
	})

	entries := make([]combatlog.Entry, 0, len(c.retained))
	for _, r := range c.retained {
		e := combatlog.FromMessage(r.m, r.tick, r.netTick, resolver)
		if s.anchor.Known() {
			e.GameTime = e.Timestamp - s.anchorStamp
		} else {
			e.GameTime = e.Timestamp
		}
		if s.enricher != nil {
			s.enricher.Enrich(&e)
		}
		if c.cfg.Match != nil && !c.cfg.Match(&e) {
			continue
		}
		entries = append(entries, e)
	}

	s.result.CombatLog = entries
	c.st.Items = len(entries)
	if s.enricher != nil {
		misses := int(s.enricher.Unresolved())
		c.st.UnresolvedReferences = misses
		metrics.RecordEnrichmentMisses(misses)
	}
	c.retained = nil
}

func (c *combatLogCollector) done() bool {
	return c.cfg.MaxEntries > 0 && len(c.retained) >= c.cfg.MaxEntries
}
