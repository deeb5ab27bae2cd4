// Package metacog is the self-observation layer: it watches the
// stabilizer state and the sync correction magnitude and derives the
// system's confidence, clarity, and doubt about its own measurements.
package metacog

import (
	"fmt"

	"liminal/internal/signal"
	"liminal/internal/stabilizer"
)

// MetaCognition tracks the system's view of its own state. All
// probability-like fields stay in [0,1]; doubt never drops below 0.1.
type MetaCognition struct {
	SelfDrift        float64
	SelfResonance    float64
	Confidence       float64
	Clarity          float64
	Doubt            float64
	ObservationCount int
}

// New starts from a neutral self-assessment.
func New() *MetaCognition {
	return &MetaCognition{
		SelfResonance: 1.0,
		Confidence:    0.5,
		Clarity:       0.5,
		Doubt:         0.5,
	}
}

// Observe folds one turn into the self-assessment. syncCorrection is
// the magnitude of the sync layer's correction this turn; large
// corrections mean the system's own parameters are moving.
func (m *MetaCognition) Observe(measuredDrift, measuredRes float64, state stabilizer.State, syncCorrection float64) {
	m.ObservationCount++

	if syncCorrection < 0 {
		syncCorrection = -syncCorrection
	}
	m.SelfDrift = signal.Clamp01(syncCorrection * 5.0)

	offset := 0.0
	switch state {
	case stabilizer.Normal:
		offset = 0.1
	case stabilizer.Overheat:
		offset = -0.2
	case stabilizer.Cooldown:
		offset = -0.1
	}
	m.SelfResonance = signal.Clamp01(measuredRes + offset)

	m.Confidence = signal.Clamp01((1.0 - measuredDrift) * measuredRes)

	// Clarity is confidence plus a bounded familiarity bonus: it can
	// exceed confidence, never by more than 0.3.
	bonus := float64(m.ObservationCount) * 0.05
	if bonus > 0.3 {
		bonus = 0.3
	}
	m.Clarity = signal.Clamp01(m.Confidence + bonus)

	// Doubt is never fully extinguished.
	m.Doubt = signal.Clamp01(1.0 - m.Confidence)
	if m.Doubt < 0.1 {
		m.Doubt = 0.1
	}
}

// ShouldExpressDoubt reports whether the system should surface its
// uncertainty.
func (m *MetaCognition) ShouldExpressDoubt() bool {
	return m.Doubt > 0.6 && m.Confidence < 0.4
}

// IsClearAndStable reports whether the system reads its own state as
// settled.
func (m *MetaCognition) IsClearAndStable() bool {
	return m.Clarity > 0.7 && m.SelfDrift < 0.3
}

// SelfAssess renders the one-line status consumed verbatim by logging.
func (m *MetaCognition) SelfAssess() string {
	state := "Observing"
	switch {
	case m.IsClearAndStable():
		state = "Clear & Stable"
	case m.ShouldExpressDoubt():
		state = "Uncertain"
	case m.SelfDrift > 0.5:
		state = "Self-Adjusting"
	}
	return fmt.Sprintf("self_state=%s conf=%.2f clarity=%.2f doubt=%.2f",
		state, m.Confidence, m.Clarity, m.Doubt)
}

// Smoother stabilizes the meta-cognition layer itself with EMAs of
// self-drift and confidence.
type Smoother struct {
	emaSelfDrift  float64
	emaConfidence float64
	alpha         float64
}

// NewSmoother builds a smoother with the given EMA rate.
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{emaConfidence: 0.5, alpha: signal.Clamp01(alpha)}
}

// Update folds the current observation into the EMAs.
func (s *Smoother) Update(m *MetaCognition) {
	s.emaSelfDrift = s.alpha*m.SelfDrift + (1-s.alpha)*s.emaSelfDrift
	s.emaConfidence = s.alpha*m.Confidence + (1-s.alpha)*s.emaConfidence
}

// Metrics returns the smoothed self-drift and confidence.
func (s *Smoother) Metrics() (selfDrift, confidence float64) {
	return s.emaSelfDrift, s.emaConfidence
}

// NeedsMoreAwareness reports whether the smoothed view calls for more
// self-observation.
func (s *Smoother) NeedsMoreAwareness() bool {
	return s.emaSelfDrift > 0.4 || s.emaConfidence < 0.5
}
