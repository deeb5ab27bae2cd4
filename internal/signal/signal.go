// Package signal defines the per-turn prosody reading and the simulated
// analysis that produces it. A Signal is immutable once built: every
// downstream layer reads it, none mutate it.
package signal

// Tone classifies the perceived delivery of an utterance.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneCalm
	ToneEnergetic
)

// String returns the canonical label used in logs and session snapshots.
func (t Tone) String() string {
	switch t {
	case ToneCalm:
		return "Calm"
	case ToneEnergetic:
		return "Energetic"
	default:
		return "Neutral"
	}
}

// Signal is one turn's raw prosody reading.
// Drift and Resonance are clamped to [0,1] at construction.
type Signal struct {
	Drift     float64
	Resonance float64
	Tone      Tone
	WPM       float64
	PauseMs   int64
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v into [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
