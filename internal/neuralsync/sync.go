// Package neuralsync applies residual corrections against configured
// baselines. The fast learning rate shapes within-session corrections;
// the slow rate only scales the turn-averaged residuals handed to the
// cross-session consolidation store at shutdown.
package neuralsync

import (
	"fmt"

	"liminal/internal/signal"
	"liminal/internal/stabilizer"
)

// Baselines are the configured rest points the residuals are measured
// against.
type Baselines struct {
	Drift     float64
	Resonance float64
}

// Seeds bias the first turn of a session from persisted state.
type Seeds struct {
	PaceBias      float64
	PauseBiasMs   int64
	ResonanceWarm float64
	DriftSoft     float64
}

// Config holds the correction rates. MaxStep bounds any single-turn
// pace adjustment: that is the backpressure that keeps one outlier turn
// from destabilizing tempo.
type Config struct {
	LRFast  float64
	LRSlow  float64
	MaxStep float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{LRFast: 0.5, LRSlow: 0.1, MaxStep: 0.05}
}

// Correction is one turn's residual correction output.
type Correction struct {
	PaceDelta      float64
	PauseDeltaMs   int64
	ResonanceBoost float64
	DriftReduction float64
}

// Magnitude collapses a correction to the scalar observed by the
// meta-cognition layer.
func (c Correction) Magnitude() float64 {
	pace := c.PaceDelta
	if pace < 0 {
		pace = -pace
	}
	return pace + float64(c.PauseDeltaMs)/100.0
}

// Sync accumulates residuals and emits per-turn corrections.
type Sync struct {
	cfg        Config
	baselines  Baselines
	seeds      Seeds
	accumDrift float64
	accumRes   float64
	steps      int
}

// New builds a sync layer against the given baselines.
func New(cfg Config, base Baselines) *Sync {
	if cfg.MaxStep < 0 {
		cfg.MaxStep = -cfg.MaxStep
	}
	return &Sync{cfg: cfg, baselines: base}
}

// WarmStart installs session seeds and clears the residual accumulators.
func (s *Sync) WarmStart(seeds Seeds) {
	s.seeds = seeds
	s.accumDrift = 0
	s.accumRes = 0
	s.steps = 0
}

// Seeds returns the installed session seeds.
func (s *Sync) Seeds() Seeds { return s.seeds }

// Step computes the residual correction for one turn. Residuals are
// baseline minus measured; pace follows the resonance residual, pause
// the drift residual, and the boost/reduction terms only act on
// positive residuals.
func (s *Sync) Step(drift, resonance float64, state stabilizer.State) Correction {
	residDrift := signal.Clamp(s.baselines.Drift-drift, -1, 1)
	residRes := signal.Clamp(s.baselines.Resonance-resonance, -1, 1)

	s.accumDrift += residDrift
	s.accumRes += residRes
	s.steps++

	step := s.cfg.MaxStep
	c := Correction{
		PaceDelta:      signal.Clamp(residRes*s.cfg.LRFast, -step, step),
		PauseDeltaMs:   clampMs(int64(residDrift*s.cfg.LRFast*80), -20, 40),
		ResonanceBoost: signal.Clamp(s.cfg.LRFast*max0(residRes)*0.05, 0, step),
		DriftReduction: signal.Clamp(s.cfg.LRFast*max0(residDrift)*0.05, 0, step),
	}

	if state == stabilizer.Overheat {
		c.PaceDelta -= 0.01
		c.PauseDeltaMs += 10
		// Backpressure invariant holds even through the Overheat nudge.
		c.PaceDelta = signal.Clamp(c.PaceDelta, -step, step)
	}

	return c
}

// SlowIncrements returns the turn-averaged residuals scaled by the slow
// rate, bounded to a gentle +-0.03 bias for the consolidation store.
func (s *Sync) SlowIncrements() (driftBias, resBias float64) {
	if s.steps == 0 {
		return 0, 0
	}
	meanDrift := s.accumDrift / float64(s.steps)
	meanRes := s.accumRes / float64(s.steps)
	driftBias = signal.Clamp(meanDrift*s.cfg.LRSlow, -0.03, 0.03)
	resBias = signal.Clamp(meanRes*s.cfg.LRSlow, -0.03, 0.03)
	return driftBias, resBias
}

// Status renders the one-line status for the turn's correction.
func (s *Sync) Status(c Correction) string {
	return fmt.Sprintf("[sync] pace=%+.3f pause=%+dms boost=%.3f relief=%.3f",
		c.PaceDelta, c.PauseDeltaMs, c.ResonanceBoost, c.DriftReduction)
}

// MergeSeeds combines the persisted collaborator biases into one seed
// set: device memory supplies pace/pause, the emotive and trace stores
// split the warm-up evenly.
func MergeSeeds(emoteRes, emoteDrift, devPace float64, devPauseMs int64, traceRes, traceDrift float64) Seeds {
	return Seeds{
		PaceBias:      devPace,
		PauseBiasMs:   devPauseMs,
		ResonanceWarm: (emoteRes + traceRes) * 0.5,
		DriftSoft:     (emoteDrift + traceDrift) * 0.5,
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampMs(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
