// Package demoscope indexes entity state in Dota 2 replay files. One
// forward-only decode pass maintains a live entity table, captures
// point-in-time copies of it, and fans messages out to independent
// collectors; snapshots materialize from captured state afterwards
// without touching the file again.
package demoscope

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"demoscope/gametime"
	"demoscope/internal/cache"
	"demoscope/internal/config"
	"demoscope/internal/logger"
	"demoscope/internal/metrics"
	"demoscope/keyframe"
	"demoscope/snapshot"
)

// fingerprintBytes is how much of the file head feeds the fingerprint.
// Combined with the file size it identifies a replay without a decode.
const fingerprintBytes = 64 * 1024

// Demo is one replay file opened for analysis. A Demo is cheap; each
// operation that reads the stream opens its own handle, so one Demo can
// serve concurrent passes.
type Demo struct {
	path   string
	limits config.Limits
	log    *logrus.Entry
	id     string
}

// Open validates the demo path and prepares a Demo. The stream is not
// read until a pass runs.
func Open(path string) (*Demo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat demo: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	limits, err := config.LimitsFromEnv()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	d := &Demo{
		path:   path,
		limits: limits,
		log:    logger.WithSession(id, filepath.Base(path)),
		id:     id,
	}
	d.log.WithField("size", info.Size()).Info("demo opened")
	return d, nil
}

// Path returns the demo file path.
func (d *Demo) Path() string { return d.path }

// SessionID returns the identifier stamped on this Demo's log lines.
func (d *Demo) SessionID() string { return d.id }

// Parse runs one decode pass with the configured collectors. On a
// decode failure the returned result holds everything collected before
// the failure and the error unwraps to a DecodeError.
func (d *Demo) Parse(cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := newSession(d, cfg)
	if err != nil {
		return nil, err
	}
	return s.run()
}

// ParseRange runs one decode pass keeping only records between
// startTick and endTick inclusive. An endTick of zero means the end of
// the stream. Entity state is still tracked from tick zero; it has to
// be, or every snapshot inside the range would be missing the state
// accumulated before it.
func (d *Demo) ParseRange(startTick, endTick uint32, cfg Config) (*Result, error) {
	if endTick > 0 && endTick < startTick {
		return nil, fmt.Errorf("invalid range: end %d before start %d", endTick, startTick)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := newSession(d, cfg)
	if err != nil {
		return nil, err
	}
	s.rangeStart = startTick
	s.rangeEnd = endTick
	return s.run()
}

// IndexOptions configures one checkpoint index build.
type IndexOptions struct {
	// Interval spaces checkpoints that many ticks apart. Zero uses
	// the engine default unless TargetTicks is set.
	Interval uint32
	// TargetTicks captures checkpoints at exactly these ticks instead
	// of an interval grid. The pass stops once all are captured.
	TargetTicks []uint32
	// NoCache skips the persistent cache for this build.
	NoCache bool
	// Progress, when set, receives the current demo tick a few times
	// per second while the build runs.
	Progress func(tick uint32)
}

// BuildIndex decodes the stream once, capturing deep copies of the
// entity table per the options. Builds are served from the persistent
// cache when one is configured and the fingerprint matches. On a decode
// failure the partial index is returned alongside the error.
func (d *Demo) BuildIndex(opts IndexOptions) (*keyframe.Index, error) {
	fingerprint, err := d.fingerprint()
	if err != nil {
		return nil, err
	}

	interval := opts.Interval
	if interval == 0 {
		interval = d.limits.CheckpointInterval
	}

	var store *cache.Store
	if d.limits.CachePath != "" && !opts.NoCache {
		store, err = cache.Open(d.limits.CachePath)
		if err != nil {
			d.log.Warnf("index cache unavailable: %v", err)
			store = nil
		} else {
			defer func() { _ = store.Close() }()
			if ix, found, getErr := store.Get(fingerprint); getErr == nil && found && indexMatches(ix, interval, opts.TargetTicks) {
				metrics.RecordCacheHit()
				d.log.WithFields(logrus.Fields{
					"checkpoints": ix.Len(),
					"fingerprint": fingerprint[:12],
				}).Info("index served from cache")
				return ix, nil
			}
			metrics.RecordCacheMiss()
		}
	}

	s, err := newSession(d, Config{Progress: opts.Progress})
	if err != nil {
		return nil, err
	}
	if len(opts.TargetTicks) > 0 {
		s.indexPlan = keyframe.NewTargetPlan(opts.TargetTicks)
	} else {
		s.indexPlan = keyframe.NewIntervalPlan(interval)
	}
	s.index = &keyframe.Index{
		Interval:    interval,
		TargetTicks: opts.TargetTicks,
		Fingerprint: fingerprint,
	}

	_, runErr := s.run()
	if s.indexErr != nil {
		return nil, s.indexErr
	}
	if runErr != nil {
		return s.index, runErr
	}

	// Interval builds get a final checkpoint at the last tick so the
	// whole stream resolves, not just the last full interval.
	if len(opts.TargetTicks) == 0 {
		s.captureFinalCheckpoint()
	}

	d.log.WithFields(logrus.Fields{
		"checkpoints":  s.index.Len(),
		"final_tick":   s.index.FinalTick,
		"anchor_known": s.index.AnchorKnown,
	}).Info("index built")

	if store != nil {
		if putErr := store.Put(fingerprint, s.index); putErr != nil {
			d.log.Warnf("index cache write failed: %v", putErr)
		}
	}
	return s.index, nil
}

// captureFinalCheckpoint appends an end-of-stream checkpoint when the
// stream ran past the last captured boundary.
func (s *session) captureFinalCheckpoint() {
	if s.table.Len() == 0 {
		return
	}
	if s.limits.MaxCheckpoints > 0 && s.index.Len() >= s.limits.MaxCheckpoints {
		return
	}
	last := uint32(0)
	if n := s.index.Len(); n > 0 {
		last = s.index.Checkpoints[n-1].Tick
	}
	if s.parser.Tick <= last {
		return
	}
	cp := keyframe.Checkpoint{Tick: s.parser.Tick, State: s.table.CopyAll()}
	if err := s.index.Append(cp); err == nil {
		metrics.RecordCheckpoint()
	}
}

// Snapshot materializes a typed view of the checkpoint covering
// targetTick. The checkpoint is the nearest one at or after the target;
// state captured before the target can never stand in for it. No part
// of the stream is decoded again.
func (d *Demo) Snapshot(ix *keyframe.Index, targetTick uint32, opts snapshot.Options) (snapshot.StateView, error) {
	cp, err := ix.Resolve(targetTick)
	if err != nil {
		return snapshot.StateView{}, err
	}

	view := snapshot.Materialize(cp.Pool(), cp.Tick, opts)
	view.RequestedTick = targetTick
	if ix.AnchorKnown {
		view.GameTime = gametime.TickToGameTime(cp.Tick, ix.AnchorTick)
		view.GameTimeKnown = true
	} else {
		view.GameTime = gametime.TickToReplayTime(cp.Tick)
	}

	d.log.WithFields(logrus.Fields{
		"requested": targetTick,
		"resolved":  cp.Tick,
	}).Debug("snapshot materialized")
	return view, nil
}

// fingerprint hashes the file size and head. Reading the head is enough
// to tell demo files apart and keeps index builds at one decode pass.
func (d *Demo) fingerprint() (string, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return "", fmt.Errorf("open demo: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat demo: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%d:", info.Size())
	if _, err := io.CopyN(h, f, fingerprintBytes); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read demo head: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// indexMatches reports whether a cached index covers the requested
// checkpoint layout.
func indexMatches(ix *keyframe.Index, interval uint32, targets []uint32) bool {
	if len(targets) > 0 {
		if len(ix.TargetTicks) != len(targets) {
			return false
		}
		for i, t := range targets {
			if ix.TargetTicks[i] != t {
				return false
			}
		}
		return true
	}
	return len(ix.TargetTicks) == 0 && ix.Interval == interval
}
