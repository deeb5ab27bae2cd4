// Package health accumulates per-session breach statistics and renders
// the end-of-run summary.
package health

import "fmt"

// Stats accumulates the session's breach counters and extremes.
type Stats struct {
	DriftBreaches     int
	ResonanceBreaches int
	Total             int
	MaxDrift          float64
	MinResonance      float64

	driftLimit float64
	resLimit   float64
}

// New returns stats tracking against the given limits.
func New(driftLimit, resonanceLimit float64) *Stats {
	return &Stats{
		MinResonance: 1.0,
		driftLimit:   driftLimit,
		resLimit:     resonanceLimit,
	}
}

// Update folds one turn's measured pair into the stats.
func (s *Stats) Update(drift, resonance float64) {
	s.Total++
	if drift > s.driftLimit {
		s.DriftBreaches++
	}
	if resonance < s.resLimit {
		s.ResonanceBreaches++
	}
	if drift > s.MaxDrift {
		s.MaxDrift = drift
	}
	if resonance < s.MinResonance {
		s.MinResonance = resonance
	}
}

// Breached reports whether any turn crossed a limit.
func (s *Stats) Breached() bool {
	return s.DriftBreaches > 0 || s.ResonanceBreaches > 0
}

// OK reports a clean session.
func (s *Stats) OK() bool {
	return !s.Breached()
}

// SummaryLines renders the end-of-run health block.
func (s *Stats) SummaryLines() []string {
	status := "ok"
	if s.Breached() {
		status = "attention"
	}
	return []string{
		fmt.Sprintf("[health] status=%s turns=%d", status, s.Total),
		fmt.Sprintf("[health] drift_breaches=%d res_breaches=%d", s.DriftBreaches, s.ResonanceBreaches),
		fmt.Sprintf("[health] max_drift=%.2f min_res=%.2f", s.MaxDrift, s.MinResonance),
	}
}
