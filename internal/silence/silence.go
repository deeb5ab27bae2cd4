// Package silence types conversational pauses and decides when to
// break them. Classification is a strict first-match rule list over the
// pre-silence turn's signals and the current suffering level; each type
// carries its own interruption policy.
package silence

import (
	"fmt"
	"time"

	"liminal/internal/signal"
	"liminal/internal/stabilizer"
)

// Type classifies a pause once it passes the minimum duration.
type Type int

const (
	TypeNone Type = iota
	TypeContemplation
	TypePeace
	TypeUncertainty
	TypeFear
	TypeDisconnect
)

// String returns the canonical label.
func (t Type) String() string {
	switch t {
	case TypeContemplation:
		return "Contemplation"
	case TypePeace:
		return "Peace"
	case TypeUncertainty:
		return "Uncertainty"
	case TypeFear:
		return "Fear"
	case TypeDisconnect:
		return "Disconnect"
	default:
		return "None"
	}
}

// DefaultMinDuration gates classification: shorter pauses are ordinary
// turn-taking, not silence.
const DefaultMinDuration = 1500 * time.Millisecond

// Context is the pre-silence turn state the rules evaluate against.
type Context struct {
	Drift           float64
	Resonance       float64
	Tone            signal.Tone
	Suffering       float64
	StabilizerState stabilizer.State
}

// Tracker holds the current pause and the session aggregates. Current
// fields clear on Reset; the cumulative counters do not.
type Tracker struct {
	Current         time.Duration
	Type            Type
	Quality         float64
	IsGenerative    bool
	ShouldInterrupt bool

	Count       int
	TotalTime   time.Duration
	MaxDuration time.Duration
	AvgQuality  float64

	minDuration time.Duration
	active      bool
}

// NewTracker builds a tracker; min <= 0 selects the default gate.
func NewTracker(min time.Duration) *Tracker {
	if min <= 0 {
		min = DefaultMinDuration
	}
	return &Tracker{minDuration: min}
}

// Observe types the elapsed pause against the pre-silence context.
// Below the minimum duration the type stays None and no interruption is
// requested. The episode counter increments once per pause, when it
// first crosses the gate.
func (t *Tracker) Observe(elapsed time.Duration, ctx Context) {
	t.Current = elapsed

	if elapsed < t.minDuration {
		t.Type = TypeNone
		t.Quality = 0
		t.IsGenerative = false
		t.ShouldInterrupt = false
		return
	}

	if !t.active {
		t.active = true
		t.Count++
	}
	if elapsed > t.MaxDuration {
		t.MaxDuration = elapsed
	}

	t.Type = classify(elapsed, ctx)
	t.Quality = signal.Clamp01(0.5 +
		0.4*(ctx.Resonance-0.5) +
		0.3*(0.5-ctx.Drift) +
		0.3*(1-ctx.Suffering))
	t.IsGenerative = (t.Type == TypePeace || t.Type == TypeContemplation) && t.Quality > 0.6
	t.ShouldInterrupt = t.shouldInterrupt(elapsed)
}

// classify applies the first-match rule list.
func classify(elapsed time.Duration, ctx Context) Type {
	switch {
	case ctx.Drift < 0.3 && ctx.Resonance > 0.7 && ctx.Tone == signal.ToneCalm:
		return TypePeace
	case elapsed < 5*time.Second && ctx.Drift < 0.5 && ctx.Resonance > 0.5 &&
		(ctx.Tone == signal.ToneNeutral || ctx.Tone == signal.ToneCalm):
		return TypeContemplation
	case ctx.Suffering > 0.6 && elapsed > 3*time.Second:
		return TypeFear
	case ctx.Drift > 0.6 && ctx.Resonance < 0.4:
		return TypeDisconnect
	case ctx.StabilizerState == stabilizer.Overheat || ctx.StabilizerState == stabilizer.Warming:
		return TypeUncertainty
	default:
		return TypeContemplation
	}
}

// shouldInterrupt applies the type-specific interruption policy.
func (t *Tracker) shouldInterrupt(elapsed time.Duration) bool {
	switch t.Type {
	case TypePeace, TypeContemplation:
		// Generative silences earn a longer leash.
		if t.Quality > 0.6 {
			return elapsed > 12*time.Second
		}
		return elapsed > 6*time.Second
	case TypeFear, TypeDisconnect:
		return elapsed > 4*time.Second
	case TypeUncertainty:
		return elapsed > 5*time.Second
	default:
		return false
	}
}

// Reset closes the current pause on new user input: the closed period's
// quality folds into the running session average and its duration into
// the session total, then the current fields clear. Calling Reset again
// with no intervening detection changes nothing.
func (t *Tracker) Reset() {
	if t.active {
		t.TotalTime += t.Current
		if t.Current > t.MaxDuration {
			t.MaxDuration = t.Current
		}
		n := float64(t.Count)
		if n > 0 {
			t.AvgQuality = (t.AvgQuality*(n-1) + t.Quality) / n
		}
		t.active = false
	}

	t.Current = 0
	t.Type = TypeNone
	t.Quality = 0
	t.IsGenerative = false
	t.ShouldInterrupt = false
}

// Status renders the one-line status consumed verbatim by logging.
func (t *Tracker) Status() string {
	if t.Type == TypeNone {
		return fmt.Sprintf("[silence] none elapsed=%.1fs", t.Current.Seconds())
	}
	return fmt.Sprintf("[silence] type=%s quality=%.2f generative=%t interrupt=%t elapsed=%.1fs",
		t.Type, t.Quality, t.IsGenerative, t.ShouldInterrupt, t.Current.Seconds())
}
