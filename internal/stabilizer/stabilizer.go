// Package stabilizer implements the hysteresis layer of the pipeline: an
// exponential moving average over drift and resonance driving a small
// state machine that recommends pace, pause, and articulation nudges.
//
// The machine never jumps from Normal straight to Overheat. A hot
// reading first passes through Warming, and Overheat always latches one
// turn into Cooldown before recovery, which keeps a single noisy turn
// from flapping the state.
package stabilizer

import (
	"fmt"

	"liminal/internal/signal"
)

// State is the stabilizer's hysteresis state, passed by value to every
// downstream layer.
type State int

const (
	Normal State = iota
	Warming
	Overheat
	Cooldown
)

// String returns the canonical state label.
func (s State) String() string {
	switch s {
	case Warming:
		return "Warming"
	case Overheat:
		return "Overheat"
	case Cooldown:
		return "Cooldown"
	default:
		return "Normal"
	}
}

// Config holds the stabilizer thresholds. Values are sanitized by New.
type Config struct {
	Alpha        float64 // EMA smoothing factor
	WarmDrift    float64 // Normal -> Warming on EMA(drift)
	HotDrift     float64 // Warming -> Overheat on EMA(drift)
	LowResonance float64 // Overheat also requires EMA(res) at or below this
	CoolSteps    int     // turns Cooldown holds before Normal
	CalmBoost    float64 // extra Overheat advice, clamped to [0,0.2]
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.4,
		WarmDrift:    0.32,
		HotDrift:     0.42,
		LowResonance: 0.58,
		CoolSteps:    3,
		CalmBoost:    0.08,
	}
}

// Advice is the per-state output nudge set.
type Advice struct {
	PaceDelta        float64
	PauseDeltaMs     int64
	ArticulationHint float64
}

// Stabilizer smooths the raw signal and tracks the hysteresis state.
type Stabilizer struct {
	cfg          Config
	state        State
	stepsInState int
	emaDrift     float64
	emaRes       float64
	initialized  bool
}

// New builds a stabilizer in the Normal state, sanitizing the config.
func New(cfg Config) *Stabilizer {
	cfg.Alpha = signal.Clamp01(cfg.Alpha)
	cfg.WarmDrift = signal.Clamp01(cfg.WarmDrift)
	cfg.HotDrift = signal.Clamp01(cfg.HotDrift)
	cfg.LowResonance = signal.Clamp01(cfg.LowResonance)
	if cfg.CoolSteps < 1 {
		cfg.CoolSteps = 1
	}
	cfg.CalmBoost = signal.Clamp(cfg.CalmBoost, 0, 0.2)

	return &Stabilizer{cfg: cfg, state: Normal}
}

// Observe folds one turn's reading into the EMAs and advances the state
// machine. Inputs are clamped, so Observe is total: it cannot fail.
func (s *Stabilizer) Observe(drift, resonance float64) {
	drift = signal.Clamp01(drift)
	resonance = signal.Clamp01(resonance)

	if !s.initialized {
		s.emaDrift = drift
		s.emaRes = resonance
		s.initialized = true
	} else {
		a := s.cfg.Alpha
		s.emaDrift = a*drift + (1-a)*s.emaDrift
		s.emaRes = a*resonance + (1-a)*s.emaRes
	}
	s.emaDrift = signal.Clamp01(s.emaDrift)
	s.emaRes = signal.Clamp01(s.emaRes)

	next := s.next()
	if next != s.state {
		s.state = next
		s.stepsInState = 0
	} else if s.stepsInState < s.cfg.CoolSteps*2 {
		s.stepsInState++
	}
}

// next evaluates the transition rules against the current EMAs. The
// re-entrant Normal check runs first: a genuinely calm signal exits any
// state immediately.
func (s *Stabilizer) next() State {
	if s.emaDrift < s.cfg.WarmDrift && s.emaRes > s.cfg.LowResonance {
		return Normal
	}

	switch s.state {
	case Normal:
		if s.emaDrift >= s.cfg.WarmDrift {
			return Warming
		}
		return Normal
	case Warming:
		if s.emaDrift >= s.cfg.HotDrift && s.emaRes <= s.cfg.LowResonance {
			return Overheat
		}
		return Warming
	case Overheat:
		// One-turn latch: Overheat always decays through Cooldown.
		return Cooldown
	case Cooldown:
		if s.stepsInState+1 >= s.cfg.CoolSteps {
			return Normal
		}
		return Cooldown
	}
	return Normal
}

// State returns the current hysteresis state.
func (s *Stabilizer) State() State { return s.state }

// EMADrift returns the smoothed drift.
func (s *Stabilizer) EMADrift() float64 { return s.emaDrift }

// EMAResonance returns the smoothed resonance.
func (s *Stabilizer) EMAResonance() float64 { return s.emaRes }

// Advice returns the output nudges for the current state. Overheat
// produces the largest correction, Normal none at all.
func (s *Stabilizer) Advice() Advice {
	switch s.state {
	case Warming:
		return Advice{PaceDelta: -0.03, PauseDeltaMs: 10, ArticulationHint: 0.02}
	case Overheat:
		return Advice{
			PaceDelta:        -0.07 - s.cfg.CalmBoost,
			PauseDeltaMs:     30 + int64(s.cfg.CalmBoost*100+0.5),
			ArticulationHint: 0.05,
		}
	case Cooldown:
		return Advice{PaceDelta: -0.04, PauseDeltaMs: 20, ArticulationHint: 0.03}
	default:
		return Advice{}
	}
}

// Status renders the one-line status consumed verbatim by logging.
func (s *Stabilizer) Status() string {
	return fmt.Sprintf("[stabilizer] state=%s ema_drift=%.2f ema_res=%.2f",
		s.state, s.emaDrift, s.emaRes)
}
