package keyframe_test

import (
	"testing"

	"demoscope/keyframe"
)

// TestIntervalPlanSpacing verifies captures land once per interval
func TestIntervalPlanSpacing(t *testing.T) {
	plan := keyframe.NewIntervalPlan(1800)

	// The first observed tick captures immediately.
	if !plan.Due(33) {
		t.Error("First tick should be due")
	}
	if plan.Due(34) {
		t.Error("Tick inside the interval should not be due")
	}
	if plan.Due(1832) {
		t.Error("Tick one short of the boundary should not be due")
	}
	if !plan.Due(1833) {
		t.Error("Tick at the boundary should be due")
	}
	if !plan.Due(3700) {
		t.Error("Tick past the next boundary should be due")
	}

	if plan.Done() {
		t.Error("Interval plans are never done")
	}
	if plan.Remaining() != 0 {
		t.Errorf("Interval plan Remaining = %d, want 0", plan.Remaining())
	}
}

// TestIntervalPlanDefault verifies interval 0 falls back to the default
func TestIntervalPlanDefault(t *testing.T) {
	plan := keyframe.NewIntervalPlan(0)

	if !plan.Due(0) {
		t.Error("First tick should be due")
	}
	if plan.Due(keyframe.DefaultInterval - 1) {
		t.Error("Tick inside the default interval should not be due")
	}
	if !plan.Due(keyframe.DefaultInterval) {
		t.Error("Tick at the default boundary should be due")
	}
}

// TestPlanDueOncePerTick verifies repeated queries at one tick fire once
func TestPlanDueOncePerTick(t *testing.T) {
	plan := keyframe.NewIntervalPlan(1800)

	if !plan.Due(100) {
		t.Fatal("First query should be due")
	}
	// Multiple entity updates arrive at the same tick; only the first
	// may capture or checkpoint ticks would collide.
	if plan.Due(100) {
		t.Error("Second query at the same tick should not be due")
	}
	if plan.Due(100) {
		t.Error("Third query at the same tick should not be due")
	}
}

// TestTargetPlanConsumesPassedBoundaries verifies one capture covers
// every target the tick has passed
func TestTargetPlanConsumesPassedBoundaries(t *testing.T) {
	plan := keyframe.NewTargetPlan([]uint32{1000, 2000, 3000})

	if plan.Due(500) {
		t.Error("Tick before the first target should not be due")
	}
	if plan.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", plan.Remaining())
	}

	// Entity traffic jumped over two targets at once.
	if !plan.Due(2400) {
		t.Error("Tick past two targets should be due")
	}
	if plan.Remaining() != 1 {
		t.Errorf("Remaining after double consume = %d, want 1", plan.Remaining())
	}
	if plan.Done() {
		t.Error("Plan with a pending target should not be done")
	}

	if !plan.Due(3000) {
		t.Error("Tick at the last target should be due")
	}
	if !plan.Done() {
		t.Error("Plan should be done after the last target")
	}
	if plan.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", plan.Remaining())
	}

	if plan.Due(4000) {
		t.Error("Done plan should never be due again")
	}
}

// TestTargetPlanSortsAndDedupes verifies unordered duplicate targets normalize
func TestTargetPlanSortsAndDedupes(t *testing.T) {
	plan := keyframe.NewTargetPlan([]uint32{3000, 1000, 3000, 2000, 1000})

	if plan.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3 after dedup", plan.Remaining())
	}

	if !plan.Due(1000) {
		t.Error("First sorted target should be due")
	}
	if plan.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", plan.Remaining())
	}
}

// TestTargetPlanDoesNotMutateInput verifies the caller's slice is untouched
func TestTargetPlanDoesNotMutateInput(t *testing.T) {
	ticks := []uint32{3000, 1000, 2000}
	keyframe.NewTargetPlan(ticks)

	if ticks[0] != 3000 || ticks[1] != 1000 || ticks[2] != 2000 {
		t.Errorf("Input slice was reordered: %v", ticks)
	}
}
