package keyframe

import "sort"

// Plan decides when the pass should capture a checkpoint. Interval plans
// fire every N ticks for the whole pass; target plans fire once per
// pre-declared tick and report Done when the last target is consumed so
// the pass can stop early.
//
// Entity traffic does not land on exact tick boundaries, so a boundary is
// satisfied by the first observed tick at or beyond it. One capture
// satisfies every boundary it passes.
type Plan struct {
	interval uint32
	targets  []uint32
	nextIdx  int
	lastTick uint32
	captured bool
}

// NewIntervalPlan captures every interval ticks; 0 means DefaultInterval.
func NewIntervalPlan(interval uint32) *Plan {
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Plan{interval: interval}
}

// NewTargetPlan captures at each explicit tick. Targets are sorted and
// deduplicated.
func NewTargetPlan(ticks []uint32) *Plan {
	targets := make([]uint32, len(ticks))
	copy(targets, ticks)
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	n := 0
	for i, t := range targets {
		if i > 0 && t == targets[n-1] {
			continue
		}
		targets[n] = t
		n++
	}
	return &Plan{targets: targets[:n]}
}

// Due reports whether a checkpoint should be captured at tick, consuming
// every boundary the tick has passed. It fires at most once per distinct
// tick, keeping checkpoint ticks unique.
func (p *Plan) Due(tick uint32) bool {
	if p.captured && tick == p.lastTick {
		return false
	}
	if p.targets != nil {
		due := false
		for p.nextIdx < len(p.targets) && tick >= p.targets[p.nextIdx] {
			p.nextIdx++
			due = true
		}
		if due {
			p.lastTick = tick
			p.captured = true
		}
		return due
	}
	if !p.captured || tick >= p.lastTick+p.interval {
		p.lastTick = tick
		p.captured = true
		return true
	}
	return false
}

// Done reports that every explicit target has been captured. Interval
// plans are never done before the stream ends.
func (p *Plan) Done() bool {
	return p.targets != nil && p.nextIdx >= len(p.targets)
}

// Remaining returns how many explicit targets are still pending.
func (p *Plan) Remaining() int {
	if p.targets == nil {
		return 0
	}
	return len(p.targets) - p.nextIdx
}
