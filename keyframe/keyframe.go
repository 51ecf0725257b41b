// Package keyframe gives random access into a single forward decode by
// storing full entity-state copies (checkpoints) at chosen ticks.
package keyframe

import (
	"errors"
	"fmt"
	"sort"

	"demoscope/entity"
)

// DefaultInterval is the checkpoint spacing when the caller does not pick
// one: 1800 ticks, about one minute of game time.
const DefaultInterval uint32 = 1800

var (
	// ErrNoCheckpoints is returned when resolving against an empty index.
	ErrNoCheckpoints = errors.New("keyframe: index has no checkpoints")
	// ErrAfterLastCheckpoint is returned when the target tick is beyond
	// the final checkpoint. Resolution never falls back to an earlier
	// tick.
	ErrAfterLastCheckpoint = errors.New("keyframe: target tick after last checkpoint")
	// ErrBeforeFirstCheckpoint is returned by ResolveBefore when no
	// checkpoint precedes the target tick.
	ErrBeforeFirstCheckpoint = errors.New("keyframe: target tick before first checkpoint")
)

// Checkpoint is one captured copy of the full entity state table, tagged
// with the tick it was taken at. The state shares nothing with the
// decoder.
type Checkpoint struct {
	Tick  uint32                         `json:"tick"`
	State map[entity.Handle]entity.State `json:"state"`
}

// Pool adapts the checkpoint for view materialization.
func (cp *Checkpoint) Pool() *entity.StatePool {
	return entity.NewStatePool(cp.State)
}

// Index is the ordered checkpoint set built during one pass. Checkpoint
// ticks are strictly increasing and unique.
type Index struct {
	// Interval is the capture spacing, 0 when built from explicit targets.
	Interval uint32 `json:"interval"`
	// TargetTicks are the explicit capture points, when used.
	TargetTicks []uint32 `json:"target_ticks,omitempty"`
	// Checkpoints in ascending tick order.
	Checkpoints []Checkpoint `json:"checkpoints"`
	// AnchorKnown reports whether the horn was seen during the pass.
	AnchorKnown bool `json:"anchor_known"`
	// AnchorTick is the horn tick, 0 when unknown.
	AnchorTick uint32 `json:"anchor_tick"`
	// FinalTick is the last tick the pass reached.
	FinalTick uint32 `json:"final_tick"`
	// Fingerprint identifies the demo file the index was built from.
	Fingerprint string `json:"fingerprint"`
}

// Append adds a checkpoint, rejecting out-of-order or duplicate ticks.
func (ix *Index) Append(cp Checkpoint) error {
	if n := len(ix.Checkpoints); n > 0 {
		if last := ix.Checkpoints[n-1].Tick; cp.Tick <= last {
			return fmt.Errorf("keyframe: checkpoint tick %d not after %d", cp.Tick, last)
		}
	}
	ix.Checkpoints = append(ix.Checkpoints, cp)
	return nil
}

// Resolve returns the checkpoint at the first tick at or after target,
// never an earlier one. A target beyond the final checkpoint is
// ErrAfterLastCheckpoint, not a silent fallback.
func (ix *Index) Resolve(target uint32) (*Checkpoint, error) {
	if len(ix.Checkpoints) == 0 {
		return nil, ErrNoCheckpoints
	}
	i := sort.Search(len(ix.Checkpoints), func(i int) bool {
		return ix.Checkpoints[i].Tick >= target
	})
	if i == len(ix.Checkpoints) {
		return nil, fmt.Errorf("%w: target %d, last %d",
			ErrAfterLastCheckpoint, target, ix.Checkpoints[len(ix.Checkpoints)-1].Tick)
	}
	return &ix.Checkpoints[i], nil
}

// ResolveBefore returns the checkpoint at the last tick at or before
// target. Event enrichment uses it: joining an event against state
// captured later than the event would read effects before their cause.
func (ix *Index) ResolveBefore(target uint32) (*Checkpoint, error) {
	if len(ix.Checkpoints) == 0 {
		return nil, ErrNoCheckpoints
	}
	i := sort.Search(len(ix.Checkpoints), func(i int) bool {
		return ix.Checkpoints[i].Tick > target
	})
	if i == 0 {
		return nil, fmt.Errorf("%w: target %d, first %d",
			ErrBeforeFirstCheckpoint, target, ix.Checkpoints[0].Tick)
	}
	return &ix.Checkpoints[i-1], nil
}

// Ticks returns the checkpoint ticks in order.
func (ix *Index) Ticks() []uint32 {
	out := make([]uint32, len(ix.Checkpoints))
	for i, cp := range ix.Checkpoints {
		out[i] = cp.Tick
	}
	return out
}

// Len returns the number of checkpoints.
func (ix *Index) Len() int { return len(ix.Checkpoints) }
