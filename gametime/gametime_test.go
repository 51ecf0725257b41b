package gametime_test

import (
	"testing"

	"demoscope/gametime"
)

// TestTickToGameTime verifies tick-to-seconds conversion around the anchor
func TestTickToGameTime(t *testing.T) {
	cases := []struct {
		name       string
		tick       uint32
		anchorTick uint32
		want       float32
	}{
		{"at anchor", 45000, 45000, 0},
		{"one second after", 45030, 45000, 1},
		{"pre-horn", 43800, 45000, -40},
		{"long game", 45000 + 30*3600, 45000, 3600},
		{"anchor zero", 900, 0, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := gametime.TickToGameTime(tc.tick, tc.anchorTick)
			if got != tc.want {
				t.Errorf("TickToGameTime(%d, %d) = %f, want %f", tc.tick, tc.anchorTick, got, tc.want)
			}
		})
	}
}

// TestGameTimeToTickRoundTrip verifies the conversion is an exact inverse
func TestGameTimeToTickRoundTrip(t *testing.T) {
	const anchorTick = 47731

	ticks := []uint32{0, 1, 29, 30, 47731, 47732, 100000, 250001}
	for _, tick := range ticks {
		seconds := gametime.TickToGameTime(tick, anchorTick)
		back := gametime.GameTimeToTick(seconds, anchorTick)
		if back != tick {
			t.Errorf("Round trip for tick %d went through %f and came back as %d", tick, seconds, back)
		}
	}
}

// TestTickToReplayTime verifies replay-relative time ignores the anchor
func TestTickToReplayTime(t *testing.T) {
	if got := gametime.TickToReplayTime(0); got != 0 {
		t.Errorf("TickToReplayTime(0) = %f, want 0", got)
	}
	if got := gametime.TickToReplayTime(90); got != 3 {
		t.Errorf("TickToReplayTime(90) = %f, want 3", got)
	}
}

// TestAnchorResolveIsOneWay verifies the first resolution wins
func TestAnchorResolveIsOneWay(t *testing.T) {
	var a gametime.Anchor

	if a.Known() {
		t.Error("Zero-value anchor should not be known")
	}
	if a.State() != gametime.StateUnknown {
		t.Errorf("Zero-value anchor state should be unknown, got %s", a.State())
	}

	if !a.Resolve(45000) {
		t.Error("First Resolve should report true")
	}
	if !a.Known() {
		t.Error("Anchor should be known after Resolve")
	}
	if a.Tick() != 45000 {
		t.Errorf("Anchor tick mismatch: got %d, want 45000", a.Tick())
	}

	if a.Resolve(50000) {
		t.Error("Second Resolve should report false")
	}
	if a.Tick() != 45000 {
		t.Errorf("Second Resolve must not move the anchor: got %d, want 45000", a.Tick())
	}
}

// TestAnchorGameTime verifies the unresolved anchor yields tick-relative time
func TestAnchorGameTime(t *testing.T) {
	var a gametime.Anchor

	// Unresolved anchor behaves as anchor tick 0.
	if got := a.GameTime(300); got != 10 {
		t.Errorf("Unresolved GameTime(300) = %f, want 10", got)
	}

	a.Resolve(45000)
	if got := a.GameTime(45030); got != 1 {
		t.Errorf("Resolved GameTime(45030) = %f, want 1", got)
	}
	if got := a.GameTime(44970); got != -1 {
		t.Errorf("Resolved GameTime(44970) = %f, want -1", got)
	}
}

// TestAnchorStateString verifies the state names
func TestAnchorStateString(t *testing.T) {
	if got := gametime.StateUnknown.String(); got != "unknown" {
		t.Errorf("StateUnknown.String() = %q, want %q", got, "unknown")
	}
	if got := gametime.StateKnown.String(); got != "known" {
		t.Errorf("StateKnown.String() = %q, want %q", got, "known")
	}
}

// TestFormatGameTime verifies clock rendering including negative times
func TestFormatGameTime(t *testing.T) {
	cases := []struct {
		seconds float32
		want    string
	}{
		{0, "0:00"},
		{7, "0:07"},
		{60, "1:00"},
		{187, "3:07"},
		{-40, "-0:40"},
		{-125, "-2:05"},
		{3599, "59:59"},
		{3661, "61:01"},
	}

	for _, tc := range cases {
		if got := gametime.FormatGameTime(tc.seconds); got != tc.want {
			t.Errorf("FormatGameTime(%f) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
