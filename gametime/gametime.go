// Package gametime converts between replay ticks and in-match game time.
//
// Raw ticks are the ground truth for every timestamp in this module. Game
// time is a derived value relative to the horn tick (the anchor), which is
// only discoverable mid-stream, so consumers repair game times after the
// pass instead of trusting values computed before the anchor resolved.
package gametime

import (
	"errors"
	"fmt"
	"math"
)

// TicksPerSecond is the Source 2 server tick rate for Dota 2 replays.
const TicksPerSecond float32 = 30.0

// ErrAnchorUnknown is returned by conversions that require a resolved anchor.
var ErrAnchorUnknown = errors.New("gametime: anchor not resolved")

// State reports whether the game-start anchor has been discovered.
type State uint8

const (
	// StateUnknown means no anchor signal has been seen yet.
	StateUnknown State = iota
	// StateKnown means the anchor tick is fixed for the rest of the pass.
	StateKnown
)

// String returns a human-readable anchor state.
func (s State) String() string {
	if s == StateKnown {
		return "known"
	}
	return "unknown"
}

// Anchor is the game-start reference discovered at most once per pass.
// The zero value is an unresolved anchor; times computed against it are
// tick-relative (anchor tick 0). The unknown-to-known transition is
// one-way.
type Anchor struct {
	state State
	tick  uint32
}

// Resolve fixes the anchor at the given tick. Once known, later signals
// are ignored and Resolve reports false.
func (a *Anchor) Resolve(tick uint32) bool {
	if a.state == StateKnown {
		return false
	}
	a.state = StateKnown
	a.tick = tick
	return true
}

// State returns the current anchor state.
func (a *Anchor) State() State { return a.state }

// Known reports whether the anchor has been resolved.
func (a *Anchor) Known() bool { return a.state == StateKnown }

// Tick returns the anchor tick, 0 while unresolved.
func (a *Anchor) Tick() uint32 { return a.tick }

// GameTime converts a tick to seconds relative to the anchor. While the
// anchor is unresolved the result is tick-relative.
func (a *Anchor) GameTime(tick uint32) float32 {
	return TickToGameTime(tick, a.tick)
}

// TickToGameTime converts a tick to seconds from the horn. Negative values
// are pre-horn time.
func TickToGameTime(tick, anchorTick uint32) float32 {
	return float32(int32(tick)-int32(anchorTick)) / TicksPerSecond
}

// GameTimeToTick converts seconds from the horn back to the tick it names.
// Rounding keeps the conversion an exact inverse of TickToGameTime for any
// tick within replay range.
func GameTimeToTick(gameTime float32, anchorTick uint32) uint32 {
	return uint32(int32(anchorTick) + int32(math.Round(float64(gameTime)*float64(TicksPerSecond))))
}

// TickToReplayTime converts a tick to seconds from replay start.
func TickToReplayTime(tick uint32) float32 {
	return float32(tick) / TicksPerSecond
}

// FormatGameTime renders seconds as the in-game clock.
// Examples: -40.0 is "-0:40", 187.0 is "3:07", 0.0 is "0:00".
func FormatGameTime(seconds float32) string {
	negative := seconds < 0
	abs := seconds
	if negative {
		abs = -seconds
	}
	mins := int(abs) / 60
	secs := int(abs) % 60
	if negative {
		return fmt.Sprintf("-%d:%02d", mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
