// Package compassion detects user suffering from conversational signals
// and derives the kindness response. Scoring is additive over
// independent patterns, clamped, then thresholded into a suffering
// type; the response adjustments scale linearly with the activation
// level.
package compassion

import (
	"fmt"

	"liminal/internal/signal"
	"liminal/internal/stabilizer"
)

// SufferingType buckets the clamped suffering score.
type SufferingType int

const (
	SufferingNone SufferingType = iota
	SufferingMild
	SufferingModerate
	SufferingSevere
)

// String returns the canonical label.
func (t SufferingType) String() string {
	switch t {
	case SufferingMild:
		return "Mild"
	case SufferingModerate:
		return "Moderate"
	case SufferingSevere:
		return "Severe"
	default:
		return "None"
	}
}

// Detector holds the compassion state across turns.
type Detector struct {
	UserSuffering    float64
	Type             SufferingType
	ResponseKindness float64
	HealingIntent    float64
	Level            float64
	SufferingCount   int
	SufferingStreak  int

	prevSuffering float64
}

// New starts with neutral kindness and a baseline of care.
func New() *Detector {
	return &Detector{
		ResponseKindness: 0.5,
		HealingIntent:    0.3,
	}
}

// DetectSuffering scores this turn's signals. The streak resets to zero
// on any turn where the repeated-theme signal is false; the episode
// count increments only when the score crosses above 0.2.
func (d *Detector) DetectSuffering(drift, resonance float64, tone signal.Tone, wpm float64, state stabilizer.State, repeatedTheme bool) {
	score := 0.0

	// High drift with low resonance reads as emotional chaos.
	if drift > 0.5 && resonance < 0.6 {
		score += (drift - 0.5) * 2.0
		score += (0.6 - resonance) * 1.5
	}

	// Overheat means overwhelmed.
	if state == stabilizer.Overheat {
		score += 0.3
	}

	// Fast energetic speech reads as anxiety.
	if tone == signal.ToneEnergetic && wpm > 180 {
		score += 0.2
	}

	// Circling the same theme without progress.
	if repeatedTheme {
		score += 0.25
		d.SufferingStreak++
	} else {
		d.SufferingStreak = 0
	}

	if d.SufferingStreak > 2 {
		score += 0.3
	}

	d.UserSuffering = signal.Clamp01(score)

	switch {
	case d.UserSuffering < 0.2:
		d.Type = SufferingNone
	case d.UserSuffering < 0.4:
		d.Type = SufferingMild
	case d.UserSuffering < 0.7:
		d.Type = SufferingModerate
	default:
		d.Type = SufferingSevere
	}

	if d.UserSuffering > 0.2 && d.prevSuffering <= 0.2 {
		d.SufferingCount++
	}
	d.prevSuffering = d.UserSuffering

	d.HealingIntent = signal.Clamp01(0.3 + d.UserSuffering*0.7)
}

// CalculateKindness scores the gentleness of the actions actually taken
// this turn, from a neutral base of 0.5.
func (d *Detector) CalculateKindness(rephrased bool, paceDelta float64, pauseDeltaMs int64, resonanceBoost float64) {
	kindness := 0.5

	if rephrased {
		kindness += 0.2
	}

	if paceDelta < 0 {
		kindness += -paceDelta * 0.5
	}

	if pauseDeltaMs > 0 {
		space := float64(pauseDeltaMs) / 100.0
		if space > 0.2 {
			space = 0.2
		}
		kindness += space
	}

	if resonanceBoost > 0 {
		kindness += resonanceBoost * 2.0
	}

	d.ResponseKindness = signal.Clamp01(kindness)
}

// UpdateLevel recomputes the overall activation level from suffering,
// healing intent, and kindness.
func (d *Detector) UpdateLevel() {
	d.Level = signal.Clamp01(d.UserSuffering*0.5 + d.HealingIntent*0.3 + d.ResponseKindness*0.2)
}

// ShouldActivate reports whether compassionate mode engages this turn.
func (d *Detector) ShouldActivate() bool {
	return d.Level > 0.5
}

// ShouldOfferSupport reports whether explicit support is warranted.
func (d *Detector) ShouldOfferSupport() bool {
	return d.Type == SufferingModerate || d.Type == SufferingSevere
}

// Status renders the one-line status consumed verbatim by logging.
func (d *Detector) Status() string {
	switch d.Type {
	case SufferingMild:
		return fmt.Sprintf("Compassion: Gentle Care (suffering=%.2f, healing=%.2f)",
			d.UserSuffering, d.HealingIntent)
	case SufferingModerate:
		return fmt.Sprintf("Compassion: Active Support (suffering=%.2f, kindness=%.2f)",
			d.UserSuffering, d.ResponseKindness)
	case SufferingSevere:
		return fmt.Sprintf("Compassion: Deep Care (suffering=%.2f, streak=%d)",
			d.UserSuffering, d.SufferingStreak)
	default:
		return fmt.Sprintf("Compassion: Observing (suffering=%.2f)", d.UserSuffering)
	}
}

// Adjustments are the response deltas applied when compassion activates.
type Adjustments struct {
	ResonanceBoost    float64
	PaceAdjustment    float64
	PauseAdjustmentMs int64
	DriftReduction    float64
}

// Adjustments scales the response linearly with the activation level.
func (d *Detector) Adjustments() Adjustments {
	level := d.Level
	return Adjustments{
		ResonanceBoost:    level * 0.1,
		PaceAdjustment:    -level * 0.05,
		PauseAdjustmentMs: int64(level * 30.0),
		DriftReduction:    level * 0.08,
	}
}
