package demoscope

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	"demoscope/combatlog"
	"demoscope/entity"
	"demoscope/gametime"
	"demoscope/internal/config"
	"demoscope/internal/metrics"
	"demoscope/keyframe"
)

// collector is one independent consumer of the decode stream. A failing
// collector is disabled for the rest of the pass; the others keep going.
type collector interface {
	// name identifies the collector in statuses and logs.
	name() string
	// attach subscribes the collector to the session dispatcher.
	attach(s *session)
	// finalize runs once after the pass, repairing game times and
	// running joins that need the complete stream.
	finalize(s *session)
	// done reports whether the collector needs nothing further from
	// the stream. When every collector is done the pass stops early.
	done() bool
}

// session is one decode pass over a demo file.
type session struct {
	demo   *Demo
	cfg    Config
	limits config.Limits
	log    *logrus.Entry

	file   *os.File
	parser *manta.Parser

	table       *entity.Table
	anchor      *gametime.Anchor
	anchorStamp float32

	// enricher and its opportunistic checkpoint grid are built only
	// when a combat log collector asks for hero level enrichment.
	enricher    *combatlog.Enricher
	enrichPlan  *keyframe.Plan
	enrichIndex *keyframe.Index

	// rangeStart and rangeEnd bound what collectors keep. The state
	// table is maintained from tick zero regardless; skipping entity
	// traffic would corrupt every later snapshot.
	rangeStart uint32
	rangeEnd   uint32

	// indexPlan and index are set for checkpoint index builds.
	indexPlan *keyframe.Plan
	index     *keyframe.Index
	indexErr  error

	collectors []collector
	statuses   map[string]*CollectorStatus
	result     *Result

	msgSubs      map[string][]func(m proto.Message)
	entitySubs   []func(e *manta.Entity, op manta.EntityOp)
	modifierSubs []func(m *dota.CDOTAModifierBuffTableEntry)

	progress *rate.Limiter
	stopped  bool
}

// newSession opens the demo file and wires collectors for one pass.
func newSession(d *Demo, cfg Config) (*session, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}

	p, err := manta.NewStreamParser(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	s := &session{
		demo:     d,
		cfg:      cfg,
		limits:   d.limits,
		log:      d.log,
		file:     f,
		parser:   p,
		table:    entity.NewTable(),
		anchor:   &gametime.Anchor{},
		statuses: make(map[string]*CollectorStatus),
		result: &Result{
			Collectors: make(map[string]CollectorStatus),
		},
		msgSubs: make(map[string][]func(m proto.Message)),
	}

	s.subscribeEntity(s.onEntityOp)
	s.subscribe("CMsgDOTACombatLogEntry", s.onCombatLogAnchor)
	if cfg.Progress != nil {
		s.progress = rate.NewLimiter(rate.Limit(d.limits.ProgressPerSecond), 1)
		s.subscribe("CNETMsg_Tick", s.onNetTick)
	}

	if cfg.CombatLog != nil && cfg.CombatLog.EnrichHeroLevels {
		s.enricher = combatlog.NewEnricher()
		s.enrichPlan = keyframe.NewIntervalPlan(d.limits.CheckpointInterval)
		s.enrichIndex = &keyframe.Index{Interval: d.limits.CheckpointInterval}
	}

	s.buildCollectors()
	for _, c := range s.collectors {
		c.attach(s)
	}

	return s, nil
}

// buildCollectors turns each non-nil config section into a collector.
func (s *session) buildCollectors() {
	if s.cfg.Header != nil {
		s.add(&headerCollector{})
	}
	if s.cfg.GameInfo != nil {
		s.add(&gameInfoCollector{})
	}
	if s.cfg.CombatLog != nil {
		s.add(newCombatLogCollector(s.cfg.CombatLog))
	}
	if s.cfg.Entities != nil {
		s.add(newEntitiesCollector(s.cfg.Entities, s.limits))
	}
	if s.cfg.GameEvents != nil {
		s.add(newGameEventsCollector(s.cfg.GameEvents))
	}
	if s.cfg.Messages != nil {
		s.add(&messagesCollector{cfg: s.cfg.Messages})
	}
	if s.cfg.Modifiers != nil {
		s.add(&modifiersCollector{cfg: s.cfg.Modifiers})
	}
	if s.cfg.StringTables != nil {
		s.add(newStringTablesCollector(s.cfg.StringTables))
	}
	if s.cfg.Attacks != nil {
		s.add(&attacksCollector{cfg: s.cfg.Attacks})
	}
	if s.cfg.Deaths != nil {
		s.add(newDeathsCollector(s.cfg.Deaths))
	}
	if s.cfg.Chat != nil {
		s.add(&chatCollector{cfg: s.cfg.Chat})
	}
}

func (s *session) add(c collector) {
	s.collectors = append(s.collectors, c)
	s.statuses[c.name()] = &CollectorStatus{Enabled: true}
}

// status returns the mutable status record for a collector.
func (s *session) status(name string) *CollectorStatus {
	return s.statuses[name]
}

// guard wraps a message handler so a panic disables only its collector.
func (s *session) guard(name string, fn func(m proto.Message)) func(m proto.Message) {
	return func(m proto.Message) {
		st := s.statuses[name]
		if st.Err != "" {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				s.disable(name, r)
			}
		}()
		fn(m)
	}
}

// guardEntity wraps an entity handler the same way guard does.
func (s *session) guardEntity(name string, fn func(e *manta.Entity, op manta.EntityOp)) func(e *manta.Entity, op manta.EntityOp) {
	return func(e *manta.Entity, op manta.EntityOp) {
		st := s.statuses[name]
		if st.Err != "" {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				s.disable(name, r)
			}
		}()
		fn(e, op)
	}
}

// guardModifier wraps a buff table handler the same way guard does.
func (s *session) guardModifier(name string, fn func(m *dota.CDOTAModifierBuffTableEntry)) func(m *dota.CDOTAModifierBuffTableEntry) {
	return func(m *dota.CDOTAModifierBuffTableEntry) {
		st := s.statuses[name]
		if st.Err != "" {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				s.disable(name, r)
			}
		}()
		fn(m)
	}
}

func (s *session) disable(name string, cause interface{}) {
	s.statuses[name].Err = fmt.Sprintf("%v", cause)
	metrics.RecordCollectorFailure(name)
	s.log.WithFields(logrus.Fields{
		"collector": name,
		"tick":      s.parser.Tick,
	}).Warnf("collector disabled: %v", cause)
}

// inRange reports whether records at tick should be kept.
func (s *session) inRange(tick uint32) bool {
	if tick < s.rangeStart {
		return false
	}
	if s.rangeEnd > 0 && tick > s.rangeEnd {
		return false
	}
	return true
}

// capped applies the cap bookkeeping for one incoming record. It
// returns true when the record must be dropped.
func (s *session) capped(name string, kept, max int) bool {
	if max <= 0 || kept < max {
		return false
	}
	st := s.statuses[name]
	st.Truncated = true
	st.Dropped++
	metrics.RecordDropped(name)
	return true
}

// onEntityOp maintains the state table. It runs before every other
// entity subscriber so they observe post-operation state.
func (s *session) onEntityOp(e *manta.Entity, op manta.EntityOp) {
	tick := s.parser.Tick
	s.result.Stats.EntityOps++

	switch {
	case op&manta.EntityOpCreated != 0:
		metrics.RecordEntityOp("create")
		s.table.Upsert(tick, e)
	case op&manta.EntityOpUpdated != 0:
		metrics.RecordEntityOp("update")
		s.table.Upsert(tick, e)
	case op&manta.EntityOpDeleted != 0:
		metrics.RecordEntityOp("delete")
		h := entity.Handle{Index: e.GetIndex(), Serial: e.GetSerial()}
		if !s.table.Remove(tick, h) {
			s.log.WithFields(logrus.Fields{
				"tick":   tick,
				"handle": h.String(),
			}).Debug("delete for untracked entity")
		}
		return
	default:
		return
	}

	className := e.GetClassName()

	// The game rules proxy is the anchor fallback for replays whose
	// combat log never reports the in-progress transition.
	if !s.anchor.Known() && strings.Contains(className, entity.GamerulesClass) {
		if start, ok := e.GetFloat32("m_pGameRules.m_flGameStartTime"); ok && start > 0 {
			if s.anchor.Resolve(tick) {
				s.anchorStamp = start
				s.log.WithFields(logrus.Fields{
					"tick":  tick,
					"stamp": start,
				}).Debug("game clock anchored by game rules")
			}
		}
	}

	if s.enricher != nil {
		if entity.IsHeroClass(className) {
			s.enricher.Observe(tick, e)
		}
		if s.enrichPlan.Due(tick) {
			s.captureEnrichCheckpoint(tick)
		}
	}

	if s.indexPlan != nil && s.indexErr == nil && s.indexPlan.Due(tick) {
		s.captureCheckpoint(tick)
	}
}

// onCombatLogAnchor watches for the game entering the in-progress
// state, the primary game clock anchor.
func (s *session) onCombatLogAnchor(m proto.Message) {
	if s.anchor.Known() {
		return
	}
	entry, ok := m.(*dota.CMsgDOTACombatLogEntry)
	if !ok {
		return
	}
	if entry.GetType() != dota.DOTA_COMBATLOG_TYPES_DOTA_COMBATLOG_GAME_STATE {
		return
	}
	if entry.GetValue() != uint32(gameStateInProgress) {
		return
	}
	if s.anchor.Resolve(s.parser.Tick) {
		s.anchorStamp = entry.GetTimestamp()
		s.log.WithFields(logrus.Fields{
			"tick":  s.parser.Tick,
			"stamp": s.anchorStamp,
		}).Debug("game clock anchored by combat log")
	}
}

// gameStateInProgress is the game rules state value at the horn.
const gameStateInProgress = 5

func (s *session) onNetTick(proto.Message) {
	if s.progress.Allow() {
		s.cfg.Progress(s.parser.Tick)
	}
}

// gameTimeAt converts a tick to game seconds. The second return value
// reports whether the anchor resolved; until then times are relative to
// the start of the stream.
func (s *session) gameTimeAt(tick uint32) (float32, bool) {
	if s.anchor.Known() {
		return gametime.TickToGameTime(tick, s.anchor.Tick()), true
	}
	return gametime.TickToReplayTime(tick), false
}

// captureEnrichCheckpoint copies the state table into the enrichment
// grid. Hitting the checkpoint limit stops the grid, not the pass; the
// enricher degrades to its level timelines.
func (s *session) captureEnrichCheckpoint(tick uint32) {
	if s.limits.MaxCheckpoints > 0 && s.enrichIndex.Len() >= s.limits.MaxCheckpoints {
		return
	}
	cp := keyframe.Checkpoint{Tick: tick, State: s.table.CopyAll()}
	if err := s.enrichIndex.Append(cp); err != nil {
		return
	}
	s.result.Stats.Checkpoints++
	metrics.RecordCheckpoint()
}

// captureCheckpoint copies the full state table into the index.
func (s *session) captureCheckpoint(tick uint32) {
	if s.limits.MaxCheckpoints > 0 && s.index.Len() >= s.limits.MaxCheckpoints {
		s.indexErr = fmt.Errorf("%w: limit %d hit at tick %d",
			ErrTooManyCheckpoints, s.limits.MaxCheckpoints, tick)
		s.stop("checkpoint limit hit")
		return
	}
	cp := keyframe.Checkpoint{Tick: tick, State: s.table.CopyAll()}
	if err := s.index.Append(cp); err != nil {
		return
	}
	s.result.Stats.Checkpoints++
	metrics.RecordCheckpoint()
}

// maybeStop stops the pass once nothing left in the stream is wanted.
func (s *session) maybeStop() {
	if s.stopped {
		return
	}
	if s.rangeEnd > 0 && s.parser.Tick > s.rangeEnd {
		s.stop("past range end")
		return
	}
	if s.indexPlan != nil {
		if s.indexPlan.Done() {
			s.stop("all target checkpoints captured")
		}
		return
	}
	if len(s.collectors) == 0 {
		return
	}
	for _, c := range s.collectors {
		if !c.done() {
			return
		}
	}
	s.stop("all collectors done")
}

func (s *session) stop(reason string) {
	if s.stopped {
		return
	}
	s.stopped = true
	s.log.WithFields(logrus.Fields{
		"reason": reason,
		"tick":   s.parser.Tick,
	}).Debug("stopping decode early")
	s.parser.Stop()
}

// run executes the pass and finalizes every collector. On a decode
// failure the partial result is returned alongside the error.
func (s *session) run() (*Result, error) {
	defer func() { _ = s.file.Close() }()

	if err := s.bindCallbacks(); err != nil {
		return nil, err
	}

	start := time.Now()
	err := s.runStart()
	elapsed := time.Since(start)

	metrics.RecordDecodePass(elapsed)
	s.result.Stats.DecodePasses = 1
	s.result.Stats.LastTick = s.parser.Tick
	s.result.Stats.NetTick = s.parser.NetTick

	s.finalize()

	if err != nil && !s.stopped {
		s.result.Partial = true
		s.log.WithFields(logrus.Fields{
			"tick": s.parser.Tick,
		}).Warnf("decode failed, keeping partial result: %v", err)
		return s.result, &DecodeError{Path: s.demo.path, Tick: s.parser.Tick, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"ticks":    s.parser.Tick,
		"messages": s.result.Stats.MessagesSeen,
		"elapsed":  elapsed.Round(time.Millisecond).String(),
	}).Info("decode pass complete")
	return s.result, nil
}

// runStart shields the pass from decoder panics so collectors keep
// what they gathered before the failure.
func (s *session) runStart() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return s.parser.Start()
}

// finalize repairs times, runs post-pass joins and publishes statuses.
func (s *session) finalize() {
	s.result.AnchorKnown = s.anchor.Known()
	s.result.AnchorTick = s.anchor.Tick()

	if s.enricher != nil {
		s.enricher.SetIndex(s.enrichIndex)
	}
	for _, c := range s.collectors {
		c.finalize(s)
	}
	for name, st := range s.statuses {
		s.result.Collectors[name] = *st
	}

	if s.index != nil {
		s.index.AnchorKnown = s.anchor.Known()
		s.index.AnchorTick = s.anchor.Tick()
		s.index.FinalTick = s.parser.Tick
	}
}
