package keyframe_test

import (
	"errors"
	"testing"

	"demoscope/entity"
	"demoscope/keyframe"
)

func indexWithTicks(ticks ...uint32) *keyframe.Index {
	ix := &keyframe.Index{}
	for _, tick := range ticks {
		cp := keyframe.Checkpoint{
			Tick: tick,
			State: map[entity.Handle]entity.State{
				{Index: 5, Serial: 1}: {
					Handle: entity.Handle{Index: 5, Serial: 1},
					Class:  "CDOTA_Unit_Hero_Axe",
					Tick:   tick,
					Props:  map[string]interface{}{"m_iCurrentLevel": int32(tick / 1800)},
				},
			},
		}
		if err := ix.Append(cp); err != nil {
			panic(err)
		}
	}
	return ix
}

// TestAppendRejectsNonMonotonic verifies checkpoint ticks stay strictly increasing
func TestAppendRejectsNonMonotonic(t *testing.T) {
	ix := &keyframe.Index{}

	if err := ix.Append(keyframe.Checkpoint{Tick: 1800}); err != nil {
		t.Fatalf("First append failed: %v", err)
	}
	if err := ix.Append(keyframe.Checkpoint{Tick: 3600}); err != nil {
		t.Fatalf("Ascending append failed: %v", err)
	}

	if err := ix.Append(keyframe.Checkpoint{Tick: 3600}); err == nil {
		t.Error("Duplicate tick should be rejected")
	}
	if err := ix.Append(keyframe.Checkpoint{Tick: 900}); err == nil {
		t.Error("Out-of-order tick should be rejected")
	}
	if ix.Len() != 2 {
		t.Errorf("Rejected appends must not grow the index: Len = %d, want 2", ix.Len())
	}
}

// TestResolveNearestAfter verifies resolution picks the first tick at or after target
func TestResolveNearestAfter(t *testing.T) {
	ix := indexWithTicks(1803, 3601, 5400, 90000)

	cases := []struct {
		name   string
		target uint32
		want   uint32
	}{
		{"exact hit", 3601, 3601},
		{"between checkpoints", 1804, 3601},
		{"before first", 0, 1803},
		{"just after a grid slot", 5399, 5400},
		{"far target", 89999, 90000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cp, err := ix.Resolve(tc.target)
			if err != nil {
				t.Fatalf("Resolve(%d) failed: %v", tc.target, err)
			}
			if cp.Tick != tc.want {
				t.Errorf("Resolve(%d) = tick %d, want %d", tc.target, cp.Tick, tc.want)
			}
			if cp.Tick < tc.target {
				t.Errorf("Resolve(%d) returned an earlier tick %d", tc.target, cp.Tick)
			}
		})
	}
}

// TestResolveAfterLast verifies targets beyond the index fail loudly
func TestResolveAfterLast(t *testing.T) {
	ix := indexWithTicks(1800, 3600)

	_, err := ix.Resolve(3601)
	if err == nil {
		t.Fatal("Resolve past the last checkpoint should fail")
	}
	if !errors.Is(err, keyframe.ErrAfterLastCheckpoint) {
		t.Errorf("Error should wrap ErrAfterLastCheckpoint, got %v", err)
	}
}

// TestResolveEmptyIndex verifies the empty index reports ErrNoCheckpoints
func TestResolveEmptyIndex(t *testing.T) {
	ix := &keyframe.Index{}

	if _, err := ix.Resolve(100); !errors.Is(err, keyframe.ErrNoCheckpoints) {
		t.Errorf("Resolve on empty index should be ErrNoCheckpoints, got %v", err)
	}
	if _, err := ix.ResolveBefore(100); !errors.Is(err, keyframe.ErrNoCheckpoints) {
		t.Errorf("ResolveBefore on empty index should be ErrNoCheckpoints, got %v", err)
	}
}

// TestResolveBefore verifies backward resolution for causal joins
func TestResolveBefore(t *testing.T) {
	ix := indexWithTicks(1800, 3600, 5400)

	cp, err := ix.ResolveBefore(3700)
	if err != nil {
		t.Fatalf("ResolveBefore(3700) failed: %v", err)
	}
	if cp.Tick != 3600 {
		t.Errorf("ResolveBefore(3700) = tick %d, want 3600", cp.Tick)
	}

	cp, err = ix.ResolveBefore(3600)
	if err != nil {
		t.Fatalf("ResolveBefore(3600) failed: %v", err)
	}
	if cp.Tick != 3600 {
		t.Errorf("ResolveBefore(3600) = tick %d, want 3600", cp.Tick)
	}

	if _, err := ix.ResolveBefore(1799); !errors.Is(err, keyframe.ErrBeforeFirstCheckpoint) {
		t.Errorf("ResolveBefore(1799) should be ErrBeforeFirstCheckpoint, got %v", err)
	}
}

// TestTicks verifies the tick listing stays in append order
func TestTicks(t *testing.T) {
	ix := indexWithTicks(1800, 3600, 5400)

	ticks := ix.Ticks()
	want := []uint32{1800, 3600, 5400}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks returned %d entries, want %d", len(ticks), len(want))
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("Ticks[%d] = %d, want %d", i, ticks[i], want[i])
		}
	}
}

// TestCheckpointPool verifies stored state materializes through the pool
func TestCheckpointPool(t *testing.T) {
	ix := indexWithTicks(1800)

	cp, err := ix.Resolve(0)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	pool := cp.Pool()
	src, ok := pool.ByIndex(5)
	if !ok {
		t.Fatal("Checkpoint pool should serve the stored entity")
	}
	if src.GetClassName() != "CDOTA_Unit_Hero_Axe" {
		t.Errorf("Class mismatch: got %s, want CDOTA_Unit_Hero_Axe", src.GetClassName())
	}
	if level, _ := src.GetInt32("m_iCurrentLevel"); level != 1 {
		t.Errorf("Stored level = %d, want 1", level)
	}
}
